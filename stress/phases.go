package stress

import "github.com/sarchlab/branchstress/completion"

// Iterations is how many times each phase repeats its generator.
const Iterations = 20

// Phase is one generator with its fixed arguments.
type Phase struct {
	// Name identifies the phase
	Name string

	// Description explains which predictor behavior the phase targets
	Description string

	// Params are the fixed arguments passed to the generator
	Params []int32

	// Run invokes the generator once
	Run func(s *Suite) int32
}

// PhaseResult is the summed score of one phase.
type PhaseResult struct {
	Phase string
	Score int32
}

// Phases returns the phases in execution order. The order is fixed: the
// random phase leaves the sequence generator in a state that depends on
// everything drawn before it.
func Phases() []Phase {
	return []Phase{
		{
			Name:        "correlated",
			Description: "outcomes correlated with earlier branches - global history",
			Params:      []int32{64},
			Run:         func(s *Suite) int32 { return s.Correlated(64) },
		},
		{
			Name:        "random",
			Description: "LFSR-driven outcomes - unpredictable by design",
			Params:      []int32{64},
			Run:         func(s *Suite) int32 { return s.Random(64) },
		},
		{
			Name:        "nested_loops",
			Description: "varying inner trip counts with early exits - loop exits",
			Params:      []int32{16, 8},
			Run:         func(s *Suite) int32 { return s.NestedLoops(16, 8) },
		},
		{
			Name:        "indirect_calls",
			Description: "cyclic calls through a 4-entry table - indirect targets",
			Params:      []int32{32},
			Run:         func(s *Suite) int32 { return s.IndirectCalls(32) },
		},
		{
			Name:        "alternating",
			Description: "taken, not taken, repeat - 2-cycle pattern",
			Params:      []int32{128},
			Run:         func(s *Suite) int32 { return s.Alternating(128) },
		},
		{
			Name:        "bimodal",
			Description: "taken 7 of 8 - counter hysteresis",
			Params:      []int32{128},
			Run:         func(s *Suite) int32 { return s.Bimodal(128) },
		},
		{
			Name:        "long_history",
			Description: "outcome from bits 0, 2, 5 of local history - history length",
			Params:      []int32{128},
			Run:         func(s *Suite) int32 { return s.LongHistory(128) },
		},
		{
			Name:        "switch",
			Description: "8-way dispatch on the loop index - many targets per PC",
			Params:      []int32{64},
			Run:         func(s *Suite) int32 { return s.Switch(64) },
		},
	}
}

// RunPhase runs p Iterations times and returns the summed score. It does
// not reset the sequence generator.
func (s *Suite) RunPhase(p Phase) int32 {
	var total int32
	for i := 0; i < Iterations; i++ {
		total += p.Run(s)
	}
	return total
}

// RunPhases reseeds the sequence generator and runs every phase in order.
func (s *Suite) RunPhases() []PhaseResult {
	s.seq.Reset()

	phases := Phases()
	results := make([]PhaseResult, 0, len(phases))
	for _, p := range phases {
		results = append(results, PhaseResult{Phase: p.Name, Score: s.RunPhase(p)})
	}
	return results
}

// Run reseeds the sequence generator, runs every phase and returns the
// accumulated score.
func (s *Suite) Run() int32 {
	return Total(s.RunPhases())
}

// Total sums phase scores with wraparound.
func Total(results []PhaseResult) int32 {
	var total int32
	for _, r := range results {
		total += r.Score
	}
	return total
}

// Report signals the result to the harness. The suite has no reference
// value to check against, so the status is always pass.
func Report(sink completion.Sink, result int32) {
	completion.Signal(sink, result, completion.StatusPass)
}

// Execute runs the whole suite and reports the result, which it also
// returns.
func (s *Suite) Execute(sink completion.Sink) int32 {
	result := s.Run()
	Report(sink, result)
	return result
}
