/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the engine configuration loaded from environment variables.
type Config struct {
	SampleRate        int           `env:"HDXPLAY_SAMPLE_RATE" envDefault:"44100"`
	SpeakerBuffer     time.Duration `env:"HDXPLAY_SPEAKER_BUFFER" envDefault:"100ms"`
	DeviceInitTimeout time.Duration `env:"HDXPLAY_DEVICE_TIMEOUT" envDefault:"3s"`
	SinkPoolCap       int           `env:"HDXPLAY_SINK_POOL_CAP" envDefault:"4"`
	SinkWarmUp        int           `env:"HDXPLAY_SINK_WARMUP" envDefault:"1"`
	Tick              time.Duration `env:"HDXPLAY_TICK" envDefault:"100ms"`
	HistoryCap        int           `env:"HDXPLAY_HISTORY_CAP" envDefault:"50"`
	SocketPath        string        `env:"HDXPLAY_SOCKET" envDefault:"/tmp/hdxplay.sock"`
	LibraryDir        string        `env:"HDXPLAY_LIBRARY_DIR"`
}

// Load reads an optional .env file, then parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
