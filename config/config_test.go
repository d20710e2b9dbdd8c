package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesOnlySetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("minimum_group_size: 4\nstrategy: heuristic\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MinimumGroupSize != 4 {
		t.Errorf("MinimumGroupSize = %d, want 4", cfg.MinimumGroupSize)
	}
	if cfg.Strategy != StrategyHeuristic {
		t.Errorf("Strategy = %q, want %q", cfg.Strategy, StrategyHeuristic)
	}
	if cfg.PatchSizeMaxBytes != Default().PatchSizeMaxBytes {
		t.Errorf("unset field PatchSizeMaxBytes should keep its default, got %d", cfg.PatchSizeMaxBytes)
	}
}

func TestValidateRejectsInvertedBounds(t *testing.T) {
	cfg := Default()
	cfg.PatchSizeMinBytes = 1000
	cfg.PatchSizeMaxBytes = 10
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for min > max patch size bounds")
	}
}

func TestValidateRejectsUnknownStrategy(t *testing.T) {
	cfg := Default()
	cfg.Strategy = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for an unknown strategy")
	}
}

func TestDefaultPassesValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestMergeConfigWiresHeuristicTunables(t *testing.T) {
	cfg := Default()
	cfg.Strategy = StrategyHeuristic
	cfg.PatchSizeMinBytes = 2048
	cfg.PatchSizeMaxBytes = 4096
	cfg.UsePatchMerges = true
	cfg.InitFontMergeThreshold = -50

	mc := cfg.MergeConfig()
	if mc.Strategy != StrategyHeuristic {
		t.Errorf("Strategy = %q, want %q", mc.Strategy, StrategyHeuristic)
	}
	if mc.PatchSizeMinBytes != 2048 {
		t.Errorf("PatchSizeMinBytes = %d, want 2048", mc.PatchSizeMinBytes)
	}
	if mc.PatchSizeMaxBytes != 4096 {
		t.Errorf("PatchSizeMaxBytes = %d, want 4096", mc.PatchSizeMaxBytes)
	}
	if !mc.UsePatchMerges {
		t.Error("UsePatchMerges should carry through to merge.Config")
	}
	if mc.InitFontMergeThreshold != -50 {
		t.Errorf("InitFontMergeThreshold = %v, want -50", mc.InitFontMergeThreshold)
	}
}
