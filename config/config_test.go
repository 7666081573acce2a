package config

import (
	"strings"
	"testing"
	"time"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	if cfg.ChunkSize != 1024 {
		t.Errorf("ChunkSize = %d, want 1024", cfg.ChunkSize)
	}
	if cfg.TrackerBackoffInitial != 5*time.Second {
		t.Errorf("TrackerBackoffInitial = %v, want 5s", cfg.TrackerBackoffInitial)
	}
	if cfg.TrackerBackoffCap != 1800*time.Second {
		t.Errorf("TrackerBackoffCap = %v, want 1800s", cfg.TrackerBackoffCap)
	}
	if cfg.RemovalSweepInterval != 5*time.Second || cfg.IdleSweepInterval != 1*time.Second {
		t.Errorf("sweep intervals = %v/%v, want 5s/1s", cfg.RemovalSweepInterval, cfg.IdleSweepInterval)
	}
}

func TestDecodeOverridesDefaults(t *testing.T) {
	const doc = `
ChunkSize = 2048
MaxActiveSwarms = 10
`
	cfg, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cfg.ChunkSize != 2048 {
		t.Errorf("ChunkSize = %d, want 2048", cfg.ChunkSize)
	}
	if cfg.MaxActiveSwarms != 10 {
		t.Errorf("MaxActiveSwarms = %d, want 10", cfg.MaxActiveSwarms)
	}
	// Fields not present in the document keep NewConfig's defaults.
	if cfg.DiscardWindow != 0 {
		t.Errorf("DiscardWindow = %d, want default 0", cfg.DiscardWindow)
	}
	if cfg.TrackerBackoffMultiplier != 1.1 {
		t.Errorf("TrackerBackoffMultiplier = %v, want default 1.1", cfg.TrackerBackoffMultiplier)
	}
}

func TestDecodeRejectsUnknownField(t *testing.T) {
	const doc = `NotARealField = true`
	if _, err := Decode(strings.NewReader(doc)); err == nil {
		t.Fatal("expected an error for an unrecognized TOML field")
	}
}
