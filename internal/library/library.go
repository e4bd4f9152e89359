/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package library

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhowden/tag"

	"hdxplay/internal/media"
)

var audioExts = map[string]bool{
	".mp3":  true,
	".flac": true,
	".wav":  true,
	".ogg":  true,
	".oga":  true,
	".opus": true,
}

// Scan walks a directory tree and builds track records for every audio
// file found, with metadata read from the embedded tags. Files with
// unreadable tags are still included by filename.
func Scan(dir string) ([]media.Track, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if audioExts[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	tracks := make([]media.Track, 0, len(paths))
	for i, path := range paths {
		tracks = append(tracks, readTrack(int64(i+1), path))
	}
	return tracks, nil
}

func readTrack(id int64, path string) media.Track {
	t := media.Track{
		ID:    id,
		Path:  path,
		Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	f, err := os.Open(path)
	if err != nil {
		slog.Warn("cannot open file for tags", "path", path, "error", err)
		return t
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return t
	}

	if title := m.Title(); title != "" {
		t.Title = title
	}
	t.Artist = m.Artist()
	t.Album = m.Album()
	if pic := m.Picture(); pic != nil {
		t.Artwork = pic.Data
	}
	return t
}
