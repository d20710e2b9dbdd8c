// Package config loads the segmentation planner's tunables from YAML,
// with command-line flags taking precedence over a config file and a
// config file taking precedence over built-in defaults.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/go-ift/segmenter/encoder"
	"github.com/go-ift/segmenter/ifterr"
	"github.com/go-ift/segmenter/merge"
)

// Config is the YAML-serializable form of every planner tunable.
type Config struct {
	PatchSizeMinBytes                 int     `yaml:"patch_size_min_bytes"`
	PatchSizeMaxBytes                 int     `yaml:"patch_size_max_bytes"`
	Strategy                          string  `yaml:"strategy"`
	NetworkOverheadBytes              int     `yaml:"network_overhead_bytes"`
	MinimumGroupSize                  int     `yaml:"minimum_group_size"`
	OptimizationCutoffFraction        float64 `yaml:"optimization_cutoff_fraction"`
	InitFontMergeThreshold            int     `yaml:"init_font_merge_threshold"`
	InitFontMergeProbabilityThreshold float64 `yaml:"init_font_merge_probability_threshold"`
	UsePatchMerges                    bool    `yaml:"use_patch_merges"`
	EstimateCompressionQuality        int     `yaml:"estimate_compression_quality"`
}

// StrategyHeuristic and StrategyCost are the two merge strategies a
// configuration may select, aliasing the merge package's own
// constants so callers can validate against either name.
const (
	StrategyHeuristic = merge.StrategyHeuristic
	StrategyCost      = merge.StrategyCost
)

// Default returns the built-in default configuration.
func Default() Config {
	return Config{
		PatchSizeMinBytes:                 0,
		PatchSizeMaxBytes:                 0,
		Strategy:                          StrategyCost,
		NetworkOverheadBytes:              75,
		MinimumGroupSize:                  1,
		OptimizationCutoffFraction:        0.1,
		InitFontMergeThreshold:            0,
		InitFontMergeProbabilityThreshold: 0.01,
		UsePatchMerges:                    true,
		EstimateCompressionQuality:        9,
	}
}

// Load reads and parses a YAML config file, starting from Default and
// overwriting only the fields the file sets.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, ifterr.Wrap("Load", ifterr.InvalidArgument, err, "reading config file %q", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, ifterr.Wrap("Load", ifterr.InvalidArgument, err, "parsing config file %q", path)
	}
	return cfg, nil
}

// MergeConfig translates the tunables into a merge.Config.
func (c Config) MergeConfig() merge.Config {
	return merge.Config{
		NetworkOverheadBytes:       c.NetworkOverheadBytes,
		OptimizationCutoffFraction: c.OptimizationCutoffFraction,
		InertProbabilityThreshold:  c.InitFontMergeProbabilityThreshold,
		Strategy:                   c.Strategy,
		PatchSizeMinBytes:          c.PatchSizeMinBytes,
		PatchSizeMaxBytes:          c.PatchSizeMaxBytes,
		UsePatchMerges:             c.UsePatchMerges,
		InitFontMergeThreshold:     float64(c.InitFontMergeThreshold),
	}
}

// SegmenterConfig translates the tunables into an encoder.Config.
func (c Config) SegmenterConfig(runOracleCheck bool) encoder.Config {
	return encoder.Config{
		MinimumGroupSize: c.MinimumGroupSize,
		Merge:            c.MergeConfig(),
		RunOracleCheck:   runOracleCheck,
	}
}

// Validate reports whether the configuration's values are internally
// consistent.
func (c Config) Validate() error {
	if c.PatchSizeMinBytes < 0 || c.PatchSizeMaxBytes < 0 {
		return ifterr.New("Validate", ifterr.InvalidArgument, "patch size bounds must be non-negative")
	}
	if c.PatchSizeMaxBytes != 0 && c.PatchSizeMinBytes > c.PatchSizeMaxBytes {
		return ifterr.New("Validate", ifterr.InvalidArgument, "patch_size_min_bytes (%d) exceeds patch_size_max_bytes (%d)", c.PatchSizeMinBytes, c.PatchSizeMaxBytes)
	}
	if c.Strategy != StrategyHeuristic && c.Strategy != StrategyCost {
		return ifterr.New("Validate", ifterr.InvalidArgument, "unknown strategy %q", c.Strategy)
	}
	if c.OptimizationCutoffFraction < 0 || c.OptimizationCutoffFraction > 1 {
		return ifterr.New("Validate", ifterr.InvalidArgument, "optimization_cutoff_fraction must be in [0, 1]")
	}
	if c.EstimateCompressionQuality < 0 || c.EstimateCompressionQuality > 11 {
		return ifterr.New("Validate", ifterr.InvalidArgument, "estimate_compression_quality must be in [0, 11]")
	}
	return nil
}
