package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesDocumentedBaseline(t *testing.T) {
	cfg := Default()
	if cfg.Timeout != 5 {
		t.Errorf("expected default timeout 5, got %d", cfg.Timeout)
	}
	if !cfg.APIMode {
		t.Errorf("expected APIMode true by default")
	}
	if cfg.Cache.Namespace != "autocrack" {
		t.Errorf("expected default namespace 'autocrack', got %q", cfg.Cache.Namespace)
	}
	if cfg.Cache.MaxSeenSetEntries != 100_000 {
		t.Errorf("expected default MaxSeenSetEntries 100000, got %d", cfg.Cache.MaxSeenSetEntries)
	}
	if cfg.KeyManager.Provider != "local" {
		t.Errorf("expected default key manager provider 'local', got %q", cfg.KeyManager.Provider)
	}
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := "timeout: 30\nhuman_checker_on: true\ndecoders_to_run:\n  - base64\n  - caesar\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeout != 30 {
		t.Errorf("expected overlaid timeout 30, got %d", cfg.Timeout)
	}
	if len(cfg.DecodersToRun) != 2 {
		t.Errorf("expected 2 decoders_to_run entries, got %v", cfg.DecodersToRun)
	}
	// Untouched fields should keep their defaults.
	if cfg.Cache.Namespace != "autocrack" {
		t.Errorf("expected untouched namespace to keep default, got %q", cfg.Cache.Namespace)
	}
}

func TestLoadReturnsErrorForMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml", nil)
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestLoadToleratesUnknownKeysWithoutError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("timeout: 10\nsome_future_key: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("expected unknown keys to be tolerated, got error: %v", err)
	}
	if cfg.Timeout != 10 {
		t.Errorf("expected known keys to still apply, got timeout=%d", cfg.Timeout)
	}
}

func TestValidateDisablesHumanCheckerWhenTopResultsSet(t *testing.T) {
	cfg := Default()
	cfg.TopResults = true
	cfg.HumanCheckerOn = true
	validated := Validate(cfg, nil)
	if validated.HumanCheckerOn {
		t.Errorf("expected human_checker_on to be disabled when top_results is set")
	}
}

func TestValidateClampsDepthPenaltyAndBatchSize(t *testing.T) {
	cfg := Default()
	cfg.DepthPenalty = -1
	cfg.DecoderBatchSize = 1000
	validated := Validate(cfg, nil)
	if validated.DepthPenalty != 0 {
		t.Errorf("expected negative depth penalty clamped to 0, got %v", validated.DepthPenalty)
	}
	if validated.DecoderBatchSize != 20 {
		t.Errorf("expected oversized batch size clamped to 20, got %d", validated.DecoderBatchSize)
	}
}

func TestValidateRestoresZeroTimeoutToDefault(t *testing.T) {
	cfg := Default()
	cfg.Timeout = 0
	validated := Validate(cfg, nil)
	if validated.Timeout != 5 {
		t.Errorf("expected zero timeout restored to 5, got %d", validated.Timeout)
	}
}

func TestGetDefaultsWithoutExplicitSetGlobal(t *testing.T) {
	cfg := Get()
	if cfg.Cache.Namespace == "" {
		t.Errorf("expected Get() to return a populated default configuration")
	}
}

func TestSetGlobalThenGetRoundTrips(t *testing.T) {
	custom := Default()
	custom.Timeout = 42
	SetGlobal(custom)
	defer SetGlobal(Default())

	got := Get()
	if got.Timeout != 42 {
		t.Errorf("expected SetGlobal/Get round trip, got timeout=%d", got.Timeout)
	}
}
