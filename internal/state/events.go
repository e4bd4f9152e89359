/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package state

import (
	"log/slog"
	"sync"
	"time"

	"hdxplay/internal/media"
)

// EventType discriminates discrete engine events.
type EventType int

const (
	EventStateChanged EventType = iota
	EventTrackChanged
	EventPositionChanged
	EventPlaybackError
	EventTrackCompleted
	EventPlaylistCompleted
	EventSeekCompleted
	EventDeviceReady
	EventDeviceFailed
)

func (t EventType) String() string {
	switch t {
	case EventStateChanged:
		return "StateChanged"
	case EventTrackChanged:
		return "TrackChanged"
	case EventPositionChanged:
		return "PositionChanged"
	case EventPlaybackError:
		return "PlaybackError"
	case EventTrackCompleted:
		return "TrackCompleted"
	case EventPlaylistCompleted:
		return "PlaylistCompleted"
	case EventSeekCompleted:
		return "SeekCompleted"
	case EventDeviceReady:
		return "AudioDeviceReady"
	case EventDeviceFailed:
		return "AudioDeviceFailed"
	default:
		return "Unknown"
	}
}

// Event is one entry on the ordered event stream. Events notify
// transitions; they are not the authoritative state.
type Event struct {
	Type        EventType
	Track       *media.Track
	PositionMs  int64
	Elapsed     time.Duration
	Err         error
	Recoverable bool
	State       *PlayerState
}

// DefaultEventBufferSize is the per-subscriber channel buffer.
const DefaultEventBufferSize = 100

// Bus fans the ordered event stream out to subscribers. Publishing is
// non-blocking: a subscriber that falls behind loses events with a
// warning rather than stalling the engine.
type Bus struct {
	mu     sync.Mutex
	subs   []chan Event
	closed bool
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe returns a new ordered event channel.
func (b *Bus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, DefaultEventBufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

// Unsubscribe removes and closes a channel returned by Subscribe.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub == ch {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(sub)
			return
		}
	}
}

// Publish delivers the event to every subscriber in order.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		slog.Warn("publish on closed event bus", "type", ev.Type.String())
		return
	}
	for _, sub := range b.subs {
		select {
		case sub <- ev:
		default:
			slog.Warn("event buffer full, dropping event", "type", ev.Type.String())
		}
	}
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subs {
		close(sub)
	}
	b.subs = nil
}
