package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SampleRate != 44100 {
		t.Errorf("expected default sample rate 44100, got %d", cfg.SampleRate)
	}
	if cfg.DeviceInitTimeout != 3*time.Second {
		t.Errorf("expected default device timeout 3s, got %v", cfg.DeviceInitTimeout)
	}
	if cfg.SinkPoolCap != 4 {
		t.Errorf("expected default pool cap 4, got %d", cfg.SinkPoolCap)
	}
	if cfg.Tick != 100*time.Millisecond {
		t.Errorf("expected default tick 100ms, got %v", cfg.Tick)
	}
	if cfg.HistoryCap != 50 {
		t.Errorf("expected default history cap 50, got %d", cfg.HistoryCap)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HDXPLAY_SAMPLE_RATE", "48000")
	t.Setenv("HDXPLAY_SINK_POOL_CAP", "8")
	t.Setenv("HDXPLAY_TICK", "50ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SampleRate != 48000 {
		t.Errorf("expected sample rate 48000, got %d", cfg.SampleRate)
	}
	if cfg.SinkPoolCap != 8 {
		t.Errorf("expected pool cap 8, got %d", cfg.SinkPoolCap)
	}
	if cfg.Tick != 50*time.Millisecond {
		t.Errorf("expected tick 50ms, got %v", cfg.Tick)
	}
}
