package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/faiface/beep"

	"hdxplay/internal/device"
	"hdxplay/internal/media"
	"hdxplay/internal/playback"
	"hdxplay/internal/playlist"
	"hdxplay/internal/sink"
	"hdxplay/internal/source"
	"hdxplay/internal/state"
)

type fakeOutput struct {
	drained bool
}

func (f *fakeOutput) Append(s beep.Streamer, onDone func()) {}
func (f *fakeOutput) Clear()                                {}
func (f *fakeOutput) SetPaused(p bool)                      {}
func (f *fakeOutput) SetVolume(v float64)                   {}
func (f *fakeOutput) Drained() bool                         { return f.drained }

func testEngine(t *testing.T) (*Engine, <-chan state.Event) {
	t.Helper()

	bus := state.NewBus()
	events := bus.Subscribe()
	st := state.NewActor(bus)

	gate := device.NewGate(func() (device.Handle, error) {
		return device.Handle{SampleRate: 44100}, nil
	}, time.Second)
	pool := sink.NewPool(func() (sink.Output, error) {
		return &fakeOutput{}, nil
	}, 2)

	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	pb := playback.NewActor(gate, pool, st, bus, playback.Options{
		Tick: 10 * time.Millisecond,
		OpenLocal: func(path string) (*source.Source, error) {
			return &source.Source{
				Kind:     source.KindLocal,
				Locator:  path,
				Format:   format,
				Streamer: beep.Silence(44100),
			}, nil
		},
	})
	pb.Start()

	e := newWired(playlist.NewActor(0), pb, st, bus)
	t.Cleanup(e.Shutdown)
	return e, events
}

func threeTracks() []media.Track {
	return []media.Track{
		{ID: 1, Path: "/music/a.mp3", Title: "A"},
		{ID: 2, Path: "/music/b.mp3", Title: "B"},
		{ID: 3, Path: "/music/c.mp3", Title: "C"},
	}
}

func TestPlaySelectsTrackAndResetsPosition(t *testing.T) {
	e, _ := testEngine(t)

	if err := e.LoadPlaylist(threeTracks()); err != nil {
		t.Fatal(err)
	}
	if err := e.Play(2); err != nil {
		t.Fatalf("Play(2) failed: %v", err)
	}

	snap := e.State()
	if snap.CurrentTrack == nil || snap.CurrentTrack.ID != 2 {
		t.Fatalf("expected current track B, got %+v", snap.CurrentTrack)
	}
	if snap.PositionMs > 100 {
		t.Errorf("position should reset to ~0, got %d", snap.PositionMs)
	}
	if !snap.IsPlaying {
		t.Error("expected playing state")
	}
}

func TestNextAdvancesAndCompletesPlaylist(t *testing.T) {
	e, events := testEngine(t)

	if err := e.LoadPlaylist(threeTracks()); err != nil {
		t.Fatal(err)
	}
	if err := e.Play(2); err != nil {
		t.Fatal(err)
	}

	if err := e.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	snap := e.State()
	if snap.CurrentTrack == nil || snap.CurrentTrack.ID != 3 {
		t.Fatalf("expected track C after Next, got %+v", snap.CurrentTrack)
	}

	// No more tracks under RepeatOff: playlist completes, playback
	// stops.
	if err := e.Next(); !errors.Is(err, ErrNoNextTrack) {
		t.Fatalf("expected ErrNoNextTrack, got %v", err)
	}
	snap = e.State()
	if snap.IsPlaying {
		t.Error("expected is_playing=false after playlist completion")
	}

	deadline := time.After(time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type == state.EventPlaylistCompleted {
				return
			}
		case <-deadline:
			t.Fatal("no PlaylistCompleted event")
		}
	}
}

func TestPreviousReturnsToHistory(t *testing.T) {
	e, _ := testEngine(t)

	if err := e.LoadPlaylist(threeTracks()); err != nil {
		t.Fatal(err)
	}
	if err := e.Next(); err != nil { // A
		t.Fatal(err)
	}
	if err := e.Next(); err != nil { // B
		t.Fatal(err)
	}
	if err := e.Previous(); err != nil { // back to A
		t.Fatal(err)
	}
	snap := e.State()
	if snap.CurrentTrack == nil || snap.CurrentTrack.ID != 1 {
		t.Errorf("expected track A after Previous, got %+v", snap.CurrentTrack)
	}
}

func TestEmptyLoadRejected(t *testing.T) {
	e, _ := testEngine(t)
	if err := e.LoadPlaylist(nil); !errors.Is(err, playlist.ErrEmptyPlaylist) {
		t.Errorf("expected ErrEmptyPlaylist, got %v", err)
	}
}

func TestPlayUnknownTrack(t *testing.T) {
	e, _ := testEngine(t)
	if err := e.LoadPlaylist(threeTracks()); err != nil {
		t.Fatal(err)
	}
	if err := e.Play(99); !errors.Is(err, playlist.ErrTrackNotFound) {
		t.Errorf("expected ErrTrackNotFound, got %v", err)
	}
}

func TestVolumeFlowsThroughStateActor(t *testing.T) {
	e, _ := testEngine(t)
	if err := e.SetVolume(0.3); err != nil {
		t.Fatal(err)
	}
	if got := e.State().Volume; got != 0.3 {
		t.Errorf("expected volume 0.3 in state, got %v", got)
	}

	// Out-of-range input is clamped before it reaches anything.
	if err := e.SetVolume(4); err != nil {
		t.Fatal(err)
	}
	if got := e.State().Volume; got != 1.0 {
		t.Errorf("expected clamped volume 1.0, got %v", got)
	}
}

func TestRepeatAndShuffleFlowThroughStateActor(t *testing.T) {
	e, _ := testEngine(t)
	e.SetRepeatMode(media.RepeatAll)
	e.SetShuffle(true)

	snap := e.State()
	if snap.Repeat != media.RepeatAll || !snap.Shuffle {
		t.Errorf("unexpected state: %+v", snap)
	}
}

func TestShutdownIdempotent(t *testing.T) {
	e, _ := testEngine(t)
	e.Shutdown()
	e.Shutdown()
}
