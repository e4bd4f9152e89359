/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package state

import "hdxplay/internal/media"

// PlayerState is the externally observable player state. The single
// authoritative copy lives in the Actor; everything published outside
// is an immutable snapshot.
type PlayerState struct {
	IsPlaying    bool
	CurrentTrack *media.Track
	PositionMs   int64
	Volume       float64
	Repeat       media.RepeatMode
	Shuffle      bool
}

// Equal compares snapshots; tracks compare by identity, not metadata.
func (s PlayerState) Equal(o PlayerState) bool {
	if s.IsPlaying != o.IsPlaying ||
		s.PositionMs != o.PositionMs ||
		s.Volume != o.Volume ||
		s.Repeat != o.Repeat ||
		s.Shuffle != o.Shuffle {
		return false
	}
	switch {
	case s.CurrentTrack == nil && o.CurrentTrack == nil:
		return true
	case s.CurrentTrack == nil || o.CurrentTrack == nil:
		return false
	default:
		return s.CurrentTrack.ID == o.CurrentTrack.ID
	}
}

func (s PlayerState) clone() PlayerState {
	c := s
	if s.CurrentTrack != nil {
		t := s.CurrentTrack.Clone()
		c.CurrentTrack = &t
	}
	return c
}
