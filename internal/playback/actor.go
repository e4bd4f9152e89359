/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package playback

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/faiface/beep"

	"hdxplay/internal/device"
	"hdxplay/internal/media"
	"hdxplay/internal/sink"
	"hdxplay/internal/source"
	"hdxplay/internal/state"
)

var (
	ErrShutdown   = errors.New("playback actor shut down")
	ErrNoTrack    = errors.New("no track loaded")
	ErrNotPlaying = errors.New("playback is stopped")
	// ErrSeekFailed wraps every seek refusal, including the
	// not-yet-cached case (source.ErrNotCached underneath).
	ErrSeekFailed = errors.New("seek failed")
)

// completionGuard suppresses the false "finished" signal in the window
// between appending audio and the hardware starting to consume it.
const completionGuard = 500 * time.Millisecond

// Resolver maps a streaming reference to a fetchable URL. The protocol
// clients behind it are collaborators; the engine only needs the byte
// stream.
type Resolver func(media.Locator) (string, error)

// DefaultResolver accepts direct http(s) references and rejects every
// other scheme.
func DefaultResolver(loc media.Locator) (string, error) {
	switch loc.Scheme {
	case "http", "https":
		url := loc.Scheme + "://" + loc.ServerID
		if loc.RemotePath != "" {
			url += loc.RemotePath
		}
		return url, nil
	default:
		return "", fmt.Errorf("no byte-stream client for scheme %q", loc.Scheme)
	}
}

// Options tunes the actor.
type Options struct {
	Tick       time.Duration
	WarmSinks  int
	Resolver   Resolver
	HTTPClient *http.Client

	// OpenLocal and OpenStream override the source openers; nil keeps
	// the file/HTTP defaults. Injection point for alternate byte-stream
	// collaborators and for tests.
	OpenLocal  func(path string) (*source.Source, error)
	OpenStream func(locator, url string) (*source.Source, error)
}

// Actor owns the device gate, the sink pool, and the currently playing
// source. It runs on a dedicated OS thread: the audio handle must not
// move across threads, so every interaction goes through the mailbox.
type Actor struct {
	gate *device.Gate
	pool *sink.Pool
	st   *state.Actor
	bus  *state.Bus

	tick      time.Duration
	warmSinks int
	resolver  Resolver
	client    *http.Client

	cmds        chan func()
	cacheCh     chan source.CacheResult
	quit        chan struct{}
	completions chan media.Track

	openLocal  func(path string) (*source.Source, error)
	openStream func(locator, url string) (*source.Source, error)

	// private bookkeeping, only touched on the actor goroutine
	handle      device.Handle
	deviceReady bool
	track       *media.Track
	src         *source.Source
	lease       *sink.Lease
	cache       *source.Cache
	decoding    string // locator of the in-flight background full decode
	playing     bool
	paused      bool
	baseMs      int64
	startedAt   time.Time // zero while paused or stopped
	trackStart  time.Time
	volume      float64
}

func NewActor(gate *device.Gate, pool *sink.Pool, st *state.Actor, bus *state.Bus, opts Options) *Actor {
	if opts.Tick <= 0 {
		opts.Tick = 100 * time.Millisecond
	}
	if opts.Resolver == nil {
		opts.Resolver = DefaultResolver
	}
	a := &Actor{
		gate:        gate,
		pool:        pool,
		st:          st,
		bus:         bus,
		tick:        opts.Tick,
		warmSinks:   opts.WarmSinks,
		resolver:    opts.Resolver,
		client:      opts.HTTPClient,
		cmds:        make(chan func(), 32),
		cacheCh:     make(chan source.CacheResult, 4),
		quit:        make(chan struct{}),
		completions: make(chan media.Track, 4),
		volume:      1.0,
	}
	a.openLocal = opts.OpenLocal
	if a.openLocal == nil {
		a.openLocal = source.OpenLocal
	}
	a.openStream = opts.OpenStream
	if a.openStream == nil {
		a.openStream = func(locator, url string) (*source.Source, error) {
			return source.OpenStream(locator, url, a.client)
		}
	}
	return a
}

// Start launches the mailbox loop. Call exactly once.
func (a *Actor) Start() {
	go a.run()
}

func (a *Actor) run() {
	// The device handle is not safely transferable between threads
	// once created; pin the loop that owns it.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ticker := time.NewTicker(a.tick)
	defer ticker.Stop()

	for {
		select {
		case fn := <-a.cmds:
			fn()
		case res := <-a.cacheCh:
			a.handleCacheResult(res)
		case <-ticker.C:
			a.handleTick()
		case <-a.quit:
			a.releasePlayback()
			slog.Debug("playback actor stopped")
			return
		}
	}
}

// Close stops the loop and releases the current sink.
func (a *Actor) Close() {
	close(a.quit)
}

// Completions delivers tracks that finished naturally.
func (a *Actor) Completions() <-chan media.Track {
	return a.completions
}

func (a *Actor) call(fn func() error) error {
	reply := make(chan error, 1)
	select {
	case a.cmds <- func() { reply <- fn() }:
	case <-a.quit:
		return ErrShutdown
	}
	select {
	case err := <-reply:
		return err
	case <-a.quit:
		return ErrShutdown
	}
}

// Play starts the given track from the beginning.
func (a *Actor) Play(t media.Track) error {
	return a.call(func() error { return a.handlePlay(t) })
}

// Pause freezes playback and position.
func (a *Actor) Pause() error {
	return a.call(func() error { a.handlePause(); return nil })
}

// Resume continues from the frozen position.
func (a *Actor) Resume() error {
	return a.call(func() error { a.handleResume(); return nil })
}

// Stop clears the sink and resets position bookkeeping. Safe to call
// repeatedly.
func (a *Actor) Stop() error {
	return a.call(func() error { a.handleStop(); return nil })
}

// Seek jumps to position_ms per the cache policy: exact and
// synchronous when possible, fail-fast otherwise.
func (a *Actor) Seek(positionMs int64) error {
	return a.call(func() error { return a.handleSeek(positionMs) })
}

// SetVolume clamps to [0,1] and applies to the live sink. State
// bookkeeping is the caller's job.
func (a *Actor) SetVolume(v float64) error {
	return a.call(func() error { a.handleSetVolume(v); return nil })
}

// PositionMs reports the current computed position.
func (a *Actor) PositionMs() int64 {
	var pos int64
	_ = a.call(func() error { pos = a.position(); return nil })
	return pos
}

// ---------------------------------------------------------------
// Handlers (actor goroutine only)
// ---------------------------------------------------------------

func (a *Actor) ensureDevice() error {
	if a.deviceReady {
		return nil
	}
	h, err := a.gate.Acquire()
	if err != nil {
		recoverable := errors.Is(err, device.ErrInitTimeout)
		a.bus.Publish(state.Event{
			Type:        state.EventDeviceFailed,
			Err:         err,
			Recoverable: recoverable,
		})
		return err
	}
	a.handle = h
	a.deviceReady = true
	a.bus.Publish(state.Event{Type: state.EventDeviceReady})
	if a.warmSinks > 0 {
		if err := a.pool.WarmUp(a.warmSinks); err != nil {
			slog.Warn("sink warm up failed", "error", err)
		}
	}
	return nil
}

func (a *Actor) position() int64 {
	pos := a.baseMs
	if !a.startedAt.IsZero() {
		pos += time.Since(a.startedAt).Milliseconds()
	}
	return pos
}

// releasePlayback returns the sink and closes the decoder. The sink is
// cleared first (inside the lease release), so closing the source
// afterwards cannot race the speaker.
func (a *Actor) releasePlayback() {
	if a.lease != nil {
		a.lease.Release()
		a.lease = nil
	}
	if a.src != nil {
		a.src.Close()
		a.src = nil
	}
}

func (a *Actor) deviceStreamer(st beep.Streamer, format beep.Format) beep.Streamer {
	if format.SampleRate != a.handle.SampleRate {
		return beep.Resample(4, format.SampleRate, a.handle.SampleRate, st)
	}
	return st
}

func (a *Actor) openTrack(t media.Track) (*source.Source, error) {
	if !media.IsStreamPath(t.Path) {
		return a.openLocal(t.Path)
	}
	loc, ok := media.ParseLocator(t.Path)
	if !ok {
		return nil, fmt.Errorf("bad streaming reference %q", t.Path)
	}
	url, err := a.resolver(loc)
	if err != nil {
		return nil, err
	}
	return a.openStream(t.Path, url)
}

func (a *Actor) handlePlay(t media.Track) error {
	if err := a.ensureDevice(); err != nil {
		return err
	}

	// A different track invalidates the sample cache.
	if a.track != nil && a.track.Path != t.Path {
		a.cache = nil
	}

	a.releasePlayback()

	var (
		streamer beep.Streamer
		format   beep.Format
		isStream = media.IsStreamPath(t.Path)
	)
	switch {
	case a.cache.Matches(t.Path):
		streamer = a.cache.StreamerFrom(0)
		format = a.cache.Format()
	default:
		src, err := a.openTrack(t)
		if err != nil {
			a.failTrack(t, err)
			return err
		}
		a.src = src
		streamer = src.Streamer
		format = src.Format

		if isStream && a.decoding != t.Path {
			// Kick off the background full decode that makes this
			// track seekable later. A second fetch; the live one
			// keeps playing undisturbed. A replay while the first
			// decode is still in flight must not fetch a third time.
			a.decoding = t.Path
			source.FullDecode(t.Path, func() (*source.Source, error) {
				return a.openTrack(t)
			}, a.cacheCh)
		}
	}

	lease, err := a.pool.Acquire()
	if err != nil {
		a.releasePlayback()
		a.failTrack(t, err)
		return err
	}
	a.lease = lease

	out := lease.Output()
	out.SetVolume(a.volume)
	out.Append(a.deviceStreamer(streamer, format), nil)

	now := time.Now()
	a.track = &t
	a.playing = true
	a.paused = false
	a.baseMs = 0
	a.startedAt = now
	a.trackStart = now

	a.st.UpdateTrack(&t)
	a.st.UpdatePosition(0)
	a.st.UpdatePlaying(true)
	c := t.Clone()
	a.bus.Publish(state.Event{Type: state.EventTrackChanged, Track: &c})

	slog.Info("playing track", "id", t.ID, "path", t.Path, "stream", isStream)
	return nil
}

// failTrack reports a per-track failure and leaves the actor stopped.
// One bad track never takes the engine down.
func (a *Actor) failTrack(t media.Track, err error) {
	a.releasePlayback()
	a.playing = false
	a.paused = false
	a.baseMs = 0
	a.startedAt = time.Time{}
	a.st.UpdatePlaying(false)
	c := t.Clone()
	a.bus.Publish(state.Event{Type: state.EventPlaybackError, Track: &c, Err: err})
	slog.Error("track playback failed", "id", t.ID, "error", err)
}

func (a *Actor) handlePause() {
	if !a.playing || a.paused {
		return
	}
	a.baseMs = a.position()
	a.startedAt = time.Time{}
	a.paused = true
	if a.lease != nil {
		a.lease.Output().SetPaused(true)
	}
	a.st.UpdatePlaying(false)
}

func (a *Actor) handleResume() {
	if !a.playing || !a.paused {
		return
	}
	a.paused = false
	a.startedAt = time.Now()
	if a.lease != nil {
		a.lease.Output().SetPaused(false)
	}
	a.st.UpdatePlaying(true)
}

func (a *Actor) handleStop() {
	a.releasePlayback()
	a.playing = false
	a.paused = false
	a.baseMs = 0
	a.startedAt = time.Time{}
	a.st.UpdatePlaying(false)
	a.st.UpdatePosition(0)
}

func (a *Actor) handleSeek(positionMs int64) error {
	started := time.Now()

	if a.track == nil {
		return fmt.Errorf("%w: %w", ErrSeekFailed, ErrNoTrack)
	}
	if !a.playing {
		// Stopped (or completed) playback is only restarted by Play.
		return fmt.Errorf("%w: %w", ErrSeekFailed, ErrNotPlaying)
	}
	if positionMs < 0 {
		positionMs = 0
	}

	var (
		streamer beep.Streamer
		format   beep.Format
		newSrc   *source.Source
	)
	if media.IsStreamPath(a.track.Path) {
		// Streaming tracks can only seek through the finished cache.
		if !a.cache.Matches(a.track.Path) {
			return fmt.Errorf("%w: %w", ErrSeekFailed, source.ErrNotCached)
		}
		streamer = a.cache.StreamerFrom(positionMs)
		format = a.cache.Format()
	} else {
		src, err := a.openLocal(a.track.Path)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSeekFailed, err)
		}
		if err := src.SeekTo(positionMs); err != nil {
			src.Close()
			return fmt.Errorf("%w: %w", ErrSeekFailed, err)
		}
		newSrc = src
		streamer = src.Streamer
		format = src.Format
	}

	a.releasePlayback()
	lease, err := a.pool.Acquire()
	if err != nil {
		if newSrc != nil {
			newSrc.Close()
		}
		return fmt.Errorf("%w: %w", ErrSeekFailed, err)
	}
	a.lease = lease
	a.src = newSrc

	out := lease.Output()
	out.SetVolume(a.volume)
	out.SetPaused(a.paused)
	out.Append(a.deviceStreamer(streamer, format), nil)

	now := time.Now()
	a.baseMs = positionMs
	if a.paused {
		a.startedAt = time.Time{}
	} else {
		a.startedAt = now
	}
	a.trackStart = now

	a.st.UpdatePosition(positionMs)
	a.bus.Publish(state.Event{
		Type:       state.EventSeekCompleted,
		PositionMs: positionMs,
		Elapsed:    time.Since(started),
	})
	return nil
}

func (a *Actor) handleSetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	a.volume = v
	if a.lease != nil {
		a.lease.Output().SetVolume(v)
	}
}

func (a *Actor) handleCacheResult(res source.CacheResult) {
	if res.Locator == a.decoding {
		a.decoding = ""
	}
	if res.Err != nil {
		slog.Warn("background decode failed", "locator", res.Locator, "error", res.Err)
		return
	}
	if a.track == nil || a.track.Path != res.Locator {
		// Track changed while decoding; the result is stale.
		slog.Debug("discarding stale cache", "locator", res.Locator)
		return
	}
	a.cache = res.Cache
	slog.Info("track fully cached, seek enabled", "locator", res.Locator)
}

func (a *Actor) handleTick() {
	if !a.playing || a.paused {
		return
	}

	pos := a.position()
	a.st.UpdatePosition(pos)
	a.bus.Publish(state.Event{Type: state.EventPositionChanged, PositionMs: pos})

	if a.lease != nil && a.lease.Output().Drained() &&
		time.Since(a.trackStart) >= completionGuard {
		finished := a.track.Clone()
		a.releasePlayback()
		a.playing = false
		a.paused = false
		a.baseMs = 0
		a.startedAt = time.Time{}
		a.st.UpdatePlaying(false)
		a.bus.Publish(state.Event{Type: state.EventTrackCompleted, Track: &finished})
		select {
		case a.completions <- finished:
		default:
			slog.Warn("completion channel full, dropping", "id", finished.ID)
		}
	}
}
