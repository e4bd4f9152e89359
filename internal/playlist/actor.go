/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package playlist

import (
	"log/slog"

	"hdxplay/internal/media"
)

// Actor wraps the Sequencer behind a private ordered mailbox so its
// state is only ever touched by one goroutine. Requests from a single
// caller are served in send order.
type Actor struct {
	seq   *Sequencer
	inbox chan request
	quit  chan struct{}
}

type request struct {
	apply func(*Sequencer)
	done  chan struct{}
}

func NewActor(historyCap int) *Actor {
	a := &Actor{
		seq:   NewSequencer(historyCap),
		inbox: make(chan request, 16),
		quit:  make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Actor) run() {
	for {
		select {
		case req := <-a.inbox:
			req.apply(a.seq)
			close(req.done)
		case <-a.quit:
			slog.Debug("playlist actor stopped")
			return
		}
	}
}

// Close stops the mailbox loop.
func (a *Actor) Close() {
	close(a.quit)
}

func (a *Actor) do(apply func(*Sequencer)) {
	req := request{apply: apply, done: make(chan struct{})}
	select {
	case a.inbox <- req:
		<-req.done
	case <-a.quit:
	}
}

func (a *Actor) Load(tracks []media.Track) error {
	var err error
	a.do(func(s *Sequencer) { err = s.Load(tracks) })
	return err
}

func (a *Actor) Next() *media.Track {
	var t *media.Track
	a.do(func(s *Sequencer) { t = s.Next() })
	return t
}

func (a *Actor) Previous() *media.Track {
	var t *media.Track
	a.do(func(s *Sequencer) { t = s.Previous() })
	return t
}

func (a *Actor) Current() *media.Track {
	var t *media.Track
	a.do(func(s *Sequencer) { t = s.Current() })
	return t
}

func (a *Actor) JumpTo(trackID int64) (*media.Track, error) {
	var (
		t   *media.Track
		err error
	)
	a.do(func(s *Sequencer) { t, err = s.JumpTo(trackID) })
	if t == nil && err == nil {
		// The mailbox is closed; the request never ran.
		err = ErrTrackNotFound
	}
	return t, err
}

func (a *Actor) SetShuffle(enabled bool) {
	a.do(func(s *Sequencer) { s.SetShuffle(enabled) })
}

func (a *Actor) SetRepeat(mode media.RepeatMode) {
	a.do(func(s *Sequencer) { s.SetRepeat(mode) })
}

func (a *Actor) Repeat() media.RepeatMode {
	var m media.RepeatMode
	a.do(func(s *Sequencer) { m = s.Repeat() })
	return m
}

func (a *Actor) Shuffle() bool {
	var v bool
	a.do(func(s *Sequencer) { v = s.Shuffle() })
	return v
}

func (a *Actor) Tracks() []media.Track {
	var out []media.Track
	a.do(func(s *Sequencer) { out = s.Tracks() })
	return out
}
