// Package harness runs the branch stress suite under a set of predictor
// models and reports per-phase misprediction statistics, the way the
// hardware flow compares predictor builds.
package harness

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sarchlab/branchstress/completion"
	"github.com/sarchlab/branchstress/mem"
	"github.com/sarchlab/branchstress/predictor"
	"github.com/sarchlab/branchstress/stress"
)

// Version is recorded in every report.
const Version = "1.0.0"

// NamedConfig is a predictor configuration with a display name.
type NamedConfig struct {
	Name   string
	Config *predictor.Config
}

// HarnessConfig configures the harness.
type HarnessConfig struct {
	// Predictors are run in order; each gets a fresh predictor and suite
	Predictors []NamedConfig

	// CompletionBase is where the completion registers live in simulated memory
	CompletionBase uint64

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables per-phase progress output
	Verbose bool
}

// DefaultConfig returns a configuration that runs every preset predictor.
func DefaultConfig() HarnessConfig {
	config := HarnessConfig{Output: os.Stdout}
	for _, name := range predictor.PresetNames() {
		c, _ := predictor.Preset(name)
		config.Predictors = append(config.Predictors, NamedConfig{Name: name, Config: c})
	}
	return config
}

// Validate checks the completion base and that every predictor has a unique
// name and a buildable configuration. Names key stored results, so duplicates are rejected.
func (c HarnessConfig) Validate() error {
	if c.CompletionBase > completion.MaxBase {
		return fmt.Errorf("completion base 0x%X must be at most 0x%X", c.CompletionBase, completion.MaxBase)
	}

	seen := make(map[string]bool, len(c.Predictors))
	for _, p := range c.Predictors {
		if err := validatePredictor(p); err != nil {
			return err
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate predictor name %q", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

func validatePredictor(p NamedConfig) error {
	if p.Name == "" {
		return fmt.Errorf("predictor name must not be empty")
	}
	if p.Config == nil {
		return fmt.Errorf("predictor %s: missing config", p.Name)
	}
	if err := p.Config.Validate(); err != nil {
		return fmt.Errorf("predictor %s: %w", p.Name, err)
	}
	return nil
}

// PhaseResult holds the statistics of one phase under one predictor.
type PhaseResult struct {
	Predictor         string  `json:"predictor"`
	Phase             string  `json:"phase"`
	Score             int32   `json:"score"`
	Branches          uint64  `json:"branches"`
	Mispredictions    uint64  `json:"mispredictions"`
	Indirect          uint64  `json:"indirect"`
	IndirectMisses    uint64  `json:"indirect_misses"`
	MispredictionRate float64 `json:"misprediction_rate_percent"`
	PenaltyCycles     uint64  `json:"penalty_cycles"`
}

// PredictorResult holds a whole suite run under one predictor.
type PredictorResult struct {
	Predictor string         `json:"predictor"`
	Kind      predictor.Kind `json:"kind"`
	Phases    []PhaseResult  `json:"phases"`

	// Result and Status are read back from the completion registers
	Result    int32  `json:"result"`
	Status    uint32 `json:"status"`
	Completed bool   `json:"completed"`

	Branches          uint64  `json:"branches"`
	Mispredictions    uint64  `json:"mispredictions"`
	Indirect          uint64  `json:"indirect"`
	IndirectMisses    uint64  `json:"indirect_misses"`
	MispredictionRate float64 `json:"misprediction_rate_percent"`

	// DirectionAccuracy and DirectionMispredictionRate cover conditional
	// branches only
	DirectionAccuracy          float64 `json:"direction_accuracy_percent"`
	DirectionMispredictionRate float64 `json:"direction_misprediction_rate_percent"`

	BTBHitRate        float64 `json:"btb_hit_rate_percent"`
	PenaltyCycles     uint64  `json:"penalty_cycles"`

	TraceDigest string        `json:"trace_digest"`
	WallTime    time.Duration `json:"wall_time_ns"`
}

// Report is the complete output of a harness run.
type Report struct {
	RunID      string            `json:"run_id"`
	Timestamp  string            `json:"timestamp"`
	Version    string            `json:"version"`
	Predictors []PredictorResult `json:"predictors"`

	// Consistent is true when every predictor saw the same branch trace
	Consistent bool `json:"consistent"`
}

// Harness runs the suite under each configured predictor.
type Harness struct {
	config  HarnessConfig
	printer *message.Printer

	// memory backs the completion registers; cleared before each predictor
	memory *mem.Memory
}

// NewHarness creates a new harness. The configuration is expected to pass
// HarnessConfig.Validate; AddPredictor checks each addition itself.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:  config,
		printer: message.NewPrinter(language.English),
		memory:  mem.NewMemory(),
	}
}

// AddPredictor validates and appends a copy of a predictor configuration.
func (h *Harness) AddPredictor(name string, config *predictor.Config) error {
	p := NamedConfig{Name: name, Config: config}
	if err := validatePredictor(p); err != nil {
		return err
	}
	for _, existing := range h.config.Predictors {
		if existing.Name == name {
			return fmt.Errorf("duplicate predictor name %q", name)
		}
	}

	p.Config = config.Clone()
	h.config.Predictors = append(h.config.Predictors, p)
	return nil
}

// RunAll runs the suite once per predictor.
func (h *Harness) RunAll() Report {
	report := Report{
		RunID:      uuid.NewString(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Version:    Version,
		Predictors: make([]PredictorResult, 0, len(h.config.Predictors)),
		Consistent: true,
	}

	for _, p := range h.config.Predictors {
		result := h.runPredictor(p)
		if len(report.Predictors) > 0 && result.TraceDigest != report.Predictors[0].TraceDigest {
			report.Consistent = false
		}
		report.Predictors = append(report.Predictors, result)
	}

	return report
}

func rate(misses, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(misses) / float64(total) * 100
}

// runPredictor mirrors the phase driver, sampling predictor statistics
// between phases.
func (h *Harness) runPredictor(p NamedConfig) PredictorResult {
	bp := predictor.NewBranchPredictor(*p.Config)
	digest := newTraceDigest()
	suite := stress.NewSuite(stress.WithTracer(&predictorTracer{bp: bp, digest: digest}))

	result := PredictorResult{
		Predictor: p.Name,
		Kind:      bp.Config().Kind,
	}

	if h.config.Verbose {
		_, _ = fmt.Fprintf(h.config.Output, "Running %s (%s)\n", p.Name, result.Kind)
	}

	start := time.Now()
	suite.Sequence().Reset()
	var total int32
	for _, phase := range stress.Phases() {
		before := bp.Stats()
		beforePenalty := bp.PenaltyCycles()

		score := suite.RunPhase(phase)
		total += score

		delta := bp.Stats().Sub(before)
		pr := PhaseResult{
			Predictor:         p.Name,
			Phase:             phase.Name,
			Score:             score,
			Branches:          delta.Predictions,
			Mispredictions:    delta.Mispredictions,
			Indirect:          delta.Indirect,
			IndirectMisses:    delta.IndirectMisses,
			MispredictionRate: rate(delta.Mispredictions+delta.IndirectMisses, delta.Predictions+delta.Indirect),
			PenaltyCycles:     bp.PenaltyCycles() - beforePenalty,
		}
		result.Phases = append(result.Phases, pr)

		if h.config.Verbose {
			_, _ = h.printer.Fprintf(h.config.Output, "  %-16s score %d, %d branches, %.2f%% mispredicted\n",
				phase.Name, score, pr.Branches+pr.Indirect, pr.MispredictionRate)
		}
	}
	result.WallTime = time.Since(start)

	h.memory.Reset()
	stress.Report(completion.NewMemorySink(h.memory, h.config.CompletionBase), total)
	if c, ok := completion.Read(h.memory, h.config.CompletionBase); ok {
		result.Result = c.Result
		result.Status = c.Status
		result.Completed = true
	}

	stats := bp.Stats()
	result.Branches = stats.Predictions
	result.Mispredictions = stats.Mispredictions
	result.Indirect = stats.Indirect
	result.IndirectMisses = stats.IndirectMisses
	result.MispredictionRate = rate(stats.Mispredictions+stats.IndirectMisses, stats.Predictions+stats.Indirect)
	result.DirectionAccuracy = stats.Accuracy()
	result.DirectionMispredictionRate = stats.MispredictionRate()
	result.BTBHitRate = stats.BTBHitRate()
	result.PenaltyCycles = bp.PenaltyCycles()
	result.TraceDigest = digest.sum()

	return result
}
