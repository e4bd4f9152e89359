/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package media

import (
	"fmt"
	"strings"
)

// Track is one playable entry. Immutable once built; actors exchange
// clones because a Track carries no exclusive resource.
type Track struct {
	ID         int64
	Path       string // local file path or "scheme://serverid#remotepath"
	Title      string
	Artist     string
	Album      string
	DurationMs int64
	Artwork    []byte
}

// Clone returns an independent copy, including the artwork bytes.
func (t Track) Clone() Track {
	c := t
	if t.Artwork != nil {
		c.Artwork = make([]byte, len(t.Artwork))
		copy(c.Artwork, t.Artwork)
	}
	return c
}

func (t Track) String() string {
	if t.Title != "" {
		return fmt.Sprintf("#%d %s - %s", t.ID, t.Artist, t.Title)
	}
	return fmt.Sprintf("#%d %s", t.ID, t.Path)
}

// Locator is a parsed streaming reference.
type Locator struct {
	Scheme     string
	ServerID   string
	RemotePath string
}

// IsStreamPath reports whether a track path is a streaming reference
// rather than a local file.
func IsStreamPath(path string) bool {
	return strings.Contains(path, "://")
}

// ParseLocator splits "scheme://serverid#remotepath". The remote path
// part is optional for plain URLs (http://host/file.mp3 has no fragment
// and keeps everything after the scheme in ServerID).
func ParseLocator(path string) (Locator, bool) {
	i := strings.Index(path, "://")
	if i < 0 {
		return Locator{}, false
	}
	loc := Locator{Scheme: path[:i]}
	rest := path[i+len("://"):]
	if j := strings.Index(rest, "#"); j >= 0 {
		loc.ServerID = rest[:j]
		loc.RemotePath = rest[j+1:]
	} else {
		loc.ServerID = rest
	}
	return loc, loc.Scheme != ""
}
