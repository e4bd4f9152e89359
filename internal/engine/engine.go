/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package engine

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/faiface/beep"

	"hdxplay/internal/config"
	"hdxplay/internal/device"
	"hdxplay/internal/media"
	"hdxplay/internal/playback"
	"hdxplay/internal/playlist"
	"hdxplay/internal/sink"
	"hdxplay/internal/state"
)

// ErrNoNextTrack means sequencing produced nothing to play.
var ErrNoNextTrack = errors.New("no next track")

// Engine is the coordinator: it routes commands to the playlist actor
// (which track) and the playback actor (render it), and both report
// into the state actor, the single authority a UI subscribes to.
type Engine struct {
	playlist *playlist.Actor
	playback *playback.Actor
	st       *state.Actor
	bus      *state.Bus

	quit     chan struct{}
	stopOnce sync.Once
}

// New wires a production engine from configuration.
func New(cfg *config.Config) *Engine {
	bus := state.NewBus()
	st := state.NewActor(bus)

	gate := device.NewGate(
		device.SpeakerInit(beepRate(cfg.SampleRate), cfg.SpeakerBuffer),
		cfg.DeviceInitTimeout,
	)
	pool := sink.NewPool(sink.NewSpeakerSink, cfg.SinkPoolCap)

	pb := playback.NewActor(gate, pool, st, bus, playback.Options{
		Tick:      cfg.Tick,
		WarmSinks: cfg.SinkWarmUp,
	})

	e := &Engine{
		playlist: playlist.NewActor(cfg.HistoryCap),
		playback: pb,
		st:       st,
		bus:      bus,
		quit:     make(chan struct{}),
	}
	pb.Start()
	go e.advanceLoop()
	return e
}

// newWired assembles an engine from pre-built actors (test seam).
func newWired(pl *playlist.Actor, pb *playback.Actor, st *state.Actor, bus *state.Bus) *Engine {
	e := &Engine{
		playlist: pl,
		playback: pb,
		st:       st,
		bus:      bus,
		quit:     make(chan struct{}),
	}
	go e.advanceLoop()
	return e
}

// advanceLoop consumes natural track completions and keeps the
// playlist moving.
func (e *Engine) advanceLoop() {
	for {
		select {
		case tr := <-e.playback.Completions():
			e.advanceAfter(tr)
		case <-e.quit:
			return
		}
	}
}

func (e *Engine) advanceAfter(finished media.Track) {
	next := e.playlist.Next()
	if next == nil {
		slog.Info("playlist completed", "last_track", finished.ID)
		_ = e.playback.Stop()
		e.st.UpdatePlaying(false)
		e.bus.Publish(state.Event{Type: state.EventPlaylistCompleted})
		return
	}
	if err := e.playback.Play(*next); err != nil {
		slog.Error("auto advance failed", "track", next.ID, "error", err)
	}
}

// LoadPlaylist replaces the playlist.
func (e *Engine) LoadPlaylist(tracks []media.Track) error {
	return e.playlist.Load(tracks)
}

// Play starts the identified track, updating the playlist position so
// Next/Previous continue from there.
func (e *Engine) Play(trackID int64) error {
	track, err := e.playlist.JumpTo(trackID)
	if err != nil {
		return err
	}
	return e.playback.Play(*track)
}

// PlayCurrent plays the current playlist track, advancing to the first
// one when nothing was selected yet.
func (e *Engine) PlayCurrent() error {
	track := e.playlist.Current()
	if track == nil {
		track = e.playlist.Next()
	}
	if track == nil {
		return ErrNoNextTrack
	}
	return e.playback.Play(*track)
}

func (e *Engine) Pause() error {
	return e.playback.Pause()
}

func (e *Engine) Resume() error {
	return e.playback.Resume()
}

func (e *Engine) Stop() error {
	return e.playback.Stop()
}

func (e *Engine) Seek(positionMs int64) error {
	return e.playback.Seek(positionMs)
}

// Next advances the sequence; at the end of the playlist under
// RepeatOff it stops and reports completion.
func (e *Engine) Next() error {
	next := e.playlist.Next()
	if next == nil {
		_ = e.playback.Stop()
		e.st.UpdatePlaying(false)
		e.bus.Publish(state.Event{Type: state.EventPlaylistCompleted})
		return ErrNoNextTrack
	}
	return e.playback.Play(*next)
}

// Previous steps back through play history.
func (e *Engine) Previous() error {
	prev := e.playlist.Previous()
	if prev == nil {
		return ErrNoNextTrack
	}
	return e.playback.Play(*prev)
}

// SetVolume applies the level to the live sink and records it in the
// state actor, keeping the two in lockstep.
func (e *Engine) SetVolume(v float64) error {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	if err := e.playback.SetVolume(v); err != nil {
		return err
	}
	e.st.UpdateVolume(v)
	return nil
}

func (e *Engine) SetRepeatMode(mode media.RepeatMode) {
	e.playlist.SetRepeat(mode)
	e.st.UpdateRepeat(mode)
}

func (e *Engine) SetShuffle(enabled bool) {
	e.playlist.SetShuffle(enabled)
	e.st.UpdateShuffle(enabled)
}

// State returns a synchronous snapshot.
func (e *Engine) State() state.PlayerState {
	return e.st.Get()
}

// Watch returns a latest-value state channel.
func (e *Engine) Watch() <-chan state.PlayerState {
	return e.st.Watch()
}

// Events subscribes to the ordered event stream.
func (e *Engine) Events() <-chan state.Event {
	return e.bus.Subscribe()
}

// DropEvents removes an event subscription.
func (e *Engine) DropEvents(ch <-chan state.Event) {
	e.bus.Unsubscribe(ch)
}

// Tracks lists the loaded playlist in load order.
func (e *Engine) Tracks() []media.Track {
	return e.playlist.Tracks()
}

// Shutdown stops every actor. Idempotent.
func (e *Engine) Shutdown() {
	e.stopOnce.Do(func() {
		close(e.quit)
		e.playback.Close()
		e.playlist.Close()
		e.st.Close()
		e.bus.Close()
	})
}

func beepRate(sr int) beep.SampleRate {
	return beep.SampleRate(sr)
}
