/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"log/slog"
	"os"

	"hdxplay/internal/config"
	"hdxplay/internal/engine"
	"hdxplay/internal/library"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("bad configuration", "error", err)
		os.Exit(1)
	}

	eng := engine.New(cfg)
	defer eng.Shutdown()

	if cfg.LibraryDir != "" {
		tracks, err := library.Scan(cfg.LibraryDir)
		if err != nil {
			slog.Error("library scan failed", "dir", cfg.LibraryDir, "error", err)
			os.Exit(1)
		}
		slog.Info("library loaded", "dir", cfg.LibraryDir, "tracks", len(tracks))
		if len(tracks) > 0 {
			if err := eng.LoadPlaylist(tracks); err != nil {
				slog.Error("playlist load failed", "error", err)
				os.Exit(1)
			}
		}
	}

	startIPC(eng, cfg.SocketPath)
}
