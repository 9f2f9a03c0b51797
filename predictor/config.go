package predictor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sugawarayuuta/sonnet"
	"gopkg.in/yaml.v3"
)

// Kind selects the direction-prediction scheme.
type Kind string

const (
	// KindBimodal indexes 2-bit counters by PC only.
	KindBimodal Kind = "bimodal"
	// KindGShare indexes 2-bit counters by PC XOR global history.
	KindGShare Kind = "gshare"
	// KindTournament picks between bimodal and gshare per branch.
	KindTournament Kind = "tournament"
)

// Config holds configuration for the branch predictor.
type Config struct {
	// Kind is the direction-prediction scheme. Default: tournament.
	Kind Kind `json:"kind" yaml:"kind"`

	// BHTSize is the number of 2-bit counters in each history table.
	// Must be a power of 2. Default: 1024.
	BHTSize uint32 `json:"bht_size" yaml:"bht_size"`

	// BTBSets is the number of sets in the Branch Target Buffer.
	// Must be a power of 2. Default: 64.
	BTBSets int `json:"btb_sets" yaml:"btb_sets"`

	// BTBWays is the BTB associativity. Default: 4.
	BTBWays int `json:"btb_ways" yaml:"btb_ways"`

	// GlobalHistoryLength is the number of outcome bits gshare folds into
	// its index. Ignored by bimodal. Default: 8.
	GlobalHistoryLength uint32 `json:"global_history_length" yaml:"global_history_length"`

	// MispredictPenalty is the number of cycles charged per misprediction.
	// Default: 12 cycles.
	MispredictPenalty uint64 `json:"mispredict_penalty" yaml:"mispredict_penalty"`
}

// DefaultConfig returns the default tournament configuration.
func DefaultConfig() *Config {
	return &Config{
		Kind:                KindTournament,
		BHTSize:             1024,
		BTBSets:             64,
		BTBWays:             4,
		GlobalHistoryLength: 8,
		MispredictPenalty:   12,
	}
}

// Presets returns the named predictor configurations, one per scheme.
func Presets() map[string]*Config {
	bimodal := DefaultConfig()
	bimodal.Kind = KindBimodal
	bimodal.GlobalHistoryLength = 0

	gshare := DefaultConfig()
	gshare.Kind = KindGShare

	return map[string]*Config{
		"bimodal":    bimodal,
		"gshare":     gshare,
		"tournament": DefaultConfig(),
	}
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	presets := Presets()
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset looks up a named configuration.
func Preset(name string) (*Config, error) {
	c, ok := Presets()[name]
	if !ok {
		return nil, fmt.Errorf("unknown predictor %q: must be one of %v", name, PresetNames())
	}
	return c, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadConfig loads a Config from a JSON or YAML file, chosen by extension.
// Fields missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read predictor config file: %w", err)
	}

	config := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = sonnet.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse predictor config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON or YAML file, chosen by extension.
func (c *Config) SaveConfig(path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = sonnet.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to serialize predictor config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write predictor config file: %w", err)
	}

	return nil
}

func isPowerOfTwo(v uint64) bool {
	return v != 0 && v&(v-1) == 0
}

// Validate checks that the configuration describes a buildable predictor.
func (c *Config) Validate() error {
	switch c.Kind {
	case KindBimodal, KindGShare, KindTournament:
	default:
		return fmt.Errorf("kind must be one of bimodal, gshare, tournament, got %q", c.Kind)
	}
	if !isPowerOfTwo(uint64(c.BHTSize)) {
		return fmt.Errorf("bht_size must be a power of 2, got %d", c.BHTSize)
	}
	if c.BTBSets <= 0 || !isPowerOfTwo(uint64(c.BTBSets)) {
		return fmt.Errorf("btb_sets must be a power of 2, got %d", c.BTBSets)
	}
	if c.BTBWays <= 0 {
		return fmt.Errorf("btb_ways must be > 0")
	}
	if c.Kind != KindBimodal && (c.GlobalHistoryLength == 0 || c.GlobalHistoryLength > 32) {
		return fmt.Errorf("global_history_length must be in 1..32 for %s", c.Kind)
	}
	if c.MispredictPenalty == 0 {
		return fmt.Errorf("mispredict_penalty must be > 0")
	}
	return nil
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
