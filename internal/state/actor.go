/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package state

import (
	"log/slog"
	"sync"

	"hdxplay/internal/media"
)

// Actor is the single source of truth for PlayerState. Updates arrive
// through its mailbox, are deduplicated against the current value, and
// effective changes are broadcast as snapshots on latest-value watch
// channels plus a StateChanged event on the bus.
type Actor struct {
	inbox chan message
	quit  chan struct{}
	bus   *Bus

	cur PlayerState

	watchMu  sync.Mutex
	watchers []chan PlayerState
}

type message struct {
	mutate func(*PlayerState)
	get    chan PlayerState
}

func NewActor(bus *Bus) *Actor {
	a := &Actor{
		inbox: make(chan message, 64),
		quit:  make(chan struct{}),
		bus:   bus,
		cur:   PlayerState{Volume: 1.0},
	}
	go a.run()
	return a
}

func (a *Actor) run() {
	for {
		select {
		case msg := <-a.inbox:
			if msg.get != nil {
				msg.get <- a.cur.clone()
				continue
			}
			next := a.cur.clone()
			msg.mutate(&next)
			if next.Equal(a.cur) {
				// Unchanged values are dropped to avoid notification
				// storms, position ticks especially.
				continue
			}
			a.cur = next
			a.broadcast(next.clone())
		case <-a.quit:
			slog.Debug("state actor stopped")
			return
		}
	}
}

func (a *Actor) broadcast(snap PlayerState) {
	a.watchMu.Lock()
	for _, w := range a.watchers {
		// Latest-value semantics: drop the stale snapshot, then the
		// buffered send below cannot block.
		select {
		case <-w:
		default:
		}
		select {
		case w <- snap:
		default:
		}
	}
	a.watchMu.Unlock()

	if a.bus != nil {
		s := snap.clone()
		a.bus.Publish(Event{Type: EventStateChanged, State: &s})
	}
}

// Close stops the mailbox loop.
func (a *Actor) Close() {
	close(a.quit)
}

func (a *Actor) apply(mutate func(*PlayerState)) {
	select {
	case a.inbox <- message{mutate: mutate}:
	case <-a.quit:
	}
}

// Get returns a synchronous snapshot of the current state.
func (a *Actor) Get() PlayerState {
	get := make(chan PlayerState, 1)
	select {
	case a.inbox <- message{get: get}:
		return <-get
	case <-a.quit:
		return PlayerState{}
	}
}

// Watch returns a latest-value channel: a reader always sees the most
// recent snapshot, never queued history.
func (a *Actor) Watch() <-chan PlayerState {
	ch := make(chan PlayerState, 1)
	a.watchMu.Lock()
	a.watchers = append(a.watchers, ch)
	a.watchMu.Unlock()
	return ch
}

func (a *Actor) UpdatePlaying(playing bool) {
	a.apply(func(s *PlayerState) { s.IsPlaying = playing })
}

func (a *Actor) UpdateTrack(t *media.Track) {
	a.apply(func(s *PlayerState) {
		if t == nil {
			s.CurrentTrack = nil
			return
		}
		c := t.Clone()
		s.CurrentTrack = &c
	})
}

func (a *Actor) UpdatePosition(positionMs int64) {
	a.apply(func(s *PlayerState) { s.PositionMs = positionMs })
}

func (a *Actor) UpdateVolume(volume float64) {
	a.apply(func(s *PlayerState) { s.Volume = volume })
}

func (a *Actor) UpdateRepeat(mode media.RepeatMode) {
	a.apply(func(s *PlayerState) { s.Repeat = mode })
}

func (a *Actor) UpdateShuffle(enabled bool) {
	a.apply(func(s *PlayerState) { s.Shuffle = enabled })
}
