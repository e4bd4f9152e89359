/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package playlist

import (
	"errors"
	"math/rand"

	"hdxplay/internal/media"
)

var (
	ErrEmptyPlaylist = errors.New("playlist is empty")
	ErrTrackNotFound = errors.New("track not found in playlist")
)

// DefaultHistoryCap bounds the "previous" ring.
const DefaultHistoryCap = 50

// Sequencer is the pure ordering logic: shuffle, repeat modes,
// history-based previous, index management. No audio I/O anywhere.
type Sequencer struct {
	original   []media.Track // load order
	working    []media.Track // shuffled copy when shuffle is on
	index      int
	current    media.Track
	hasCurrent bool
	history    []media.Track
	historyCap int
	repeat     media.RepeatMode
	shuffle    bool
}

func NewSequencer(historyCap int) *Sequencer {
	if historyCap < 1 {
		historyCap = DefaultHistoryCap
	}
	return &Sequencer{historyCap: historyCap}
}

// Load replaces the playlist: index reset, history cleared, working
// queue rebuilt (shuffled when shuffle is on).
func (s *Sequencer) Load(tracks []media.Track) error {
	if len(tracks) == 0 {
		return ErrEmptyPlaylist
	}
	s.original = make([]media.Track, len(tracks))
	copy(s.original, tracks)
	s.index = 0
	s.hasCurrent = false
	s.history = s.history[:0]
	s.rebuildWorking()
	return nil
}

func (s *Sequencer) rebuildWorking() {
	s.working = make([]media.Track, len(s.original))
	copy(s.working, s.original)
	if s.shuffle {
		rand.Shuffle(len(s.working), func(i, j int) {
			s.working[i], s.working[j] = s.working[j], s.working[i]
		})
	}
}

func (s *Sequencer) remember(t media.Track) {
	if len(s.history) == s.historyCap {
		copy(s.history, s.history[1:])
		s.history = s.history[:s.historyCap-1]
	}
	s.history = append(s.history, t)
}

func (s *Sequencer) setCurrent(t media.Track) *media.Track {
	s.current = t
	s.hasCurrent = true
	c := t.Clone()
	return &c
}

// Current returns the last track handed out, or nil when nothing has
// been selected since the last load.
func (s *Sequencer) Current() *media.Track {
	if !s.hasCurrent {
		return nil
	}
	c := s.current.Clone()
	return &c
}

// Next advances the sequence. RepeatOne hands back the same track
// without moving. Shuffle pops the working queue, refilling it with a
// fresh shuffle only under RepeatAll. Linear mode wraps only under
// RepeatAll. A nil return means the playlist ended.
func (s *Sequencer) Next() *media.Track {
	if len(s.original) == 0 {
		return nil
	}

	if s.repeat == media.RepeatOne && s.hasCurrent {
		c := s.current.Clone()
		return &c
	}

	if s.shuffle {
		if len(s.working) == 0 {
			if s.repeat != media.RepeatAll {
				return nil
			}
			s.rebuildWorking()
		}
		if s.hasCurrent {
			s.remember(s.current)
		}
		t := s.working[0]
		s.working = s.working[1:]
		return s.setCurrent(t)
	}

	if !s.hasCurrent {
		// First advance after a load starts at the top.
		return s.setCurrent(s.working[s.index])
	}

	next := s.index + 1
	if next >= len(s.working) {
		if s.repeat != media.RepeatAll {
			return nil
		}
		next = 0
	}
	s.remember(s.current)
	s.index = next
	return s.setCurrent(s.working[s.index])
}

// Previous prefers the history ring (what actually played); with an
// empty history it walks the index back, wrapping only under RepeatAll.
func (s *Sequencer) Previous() *media.Track {
	if len(s.original) == 0 {
		return nil
	}

	if n := len(s.history); n > 0 {
		t := s.history[n-1]
		s.history = s.history[:n-1]
		// Realign the linear index with the track we went back to.
		for i := range s.working {
			if s.working[i].ID == t.ID {
				s.index = i
				break
			}
		}
		return s.setCurrent(t)
	}

	prev := s.index - 1
	if prev < 0 {
		if s.repeat != media.RepeatAll {
			return nil
		}
		prev = len(s.working) - 1
	}
	s.index = prev
	return s.setCurrent(s.working[s.index])
}

// JumpTo selects a track by id, bypassing sequencing but updating the
// index so later Next/Previous calls continue from there.
func (s *Sequencer) JumpTo(trackID int64) (*media.Track, error) {
	if s.shuffle {
		for i := range s.original {
			if s.original[i].ID == trackID {
				t := s.original[i]
				// Pull the track out of the pending queue so it does
				// not come around twice.
				for j := range s.working {
					if s.working[j].ID == trackID {
						s.working = append(s.working[:j], s.working[j+1:]...)
						break
					}
				}
				return s.setCurrent(t), nil
			}
		}
		return nil, ErrTrackNotFound
	}

	for i := range s.working {
		if s.working[i].ID == trackID {
			s.index = i
			return s.setCurrent(s.working[i]), nil
		}
	}
	return nil, ErrTrackNotFound
}

// SetShuffle toggles shuffle. Turning it on reshuffles the working
// queue immediately; turning it off keeps the current order and only
// affects subsequent Next calls.
func (s *Sequencer) SetShuffle(enabled bool) {
	if enabled && !s.shuffle {
		s.shuffle = true
		if len(s.original) > 0 {
			s.rebuildWorking()
		}
		return
	}
	if !enabled && s.shuffle {
		s.shuffle = false
		// Restore the linear working view; playback continues from the
		// current track's original position.
		s.rebuildWorking()
		if s.hasCurrent {
			for i := range s.working {
				if s.working[i].ID == s.current.ID {
					s.index = i
					break
				}
			}
		}
	}
}

func (s *Sequencer) SetRepeat(mode media.RepeatMode) {
	s.repeat = mode
}

func (s *Sequencer) Repeat() media.RepeatMode { return s.repeat }
func (s *Sequencer) Shuffle() bool            { return s.shuffle }

// Tracks returns a copy of the playlist in load order.
func (s *Sequencer) Tracks() []media.Track {
	out := make([]media.Track, len(s.original))
	for i := range s.original {
		out[i] = s.original[i].Clone()
	}
	return out
}
