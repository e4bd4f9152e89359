package state

import (
	"testing"
	"time"

	"hdxplay/internal/media"
)

func waitEvent(t *testing.T, ch <-chan Event, want EventType) Event {
	t.Helper()
	select {
	case ev := <-ch:
		if ev.Type != want {
			t.Fatalf("expected %v event, got %v", want, ev.Type)
		}
		return ev
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for %v event", want)
		return Event{}
	}
}

func TestActorDropsUnchangedUpdates(t *testing.T) {
	bus := NewBus()
	defer bus.Close()
	events := bus.Subscribe()

	a := NewActor(bus)
	defer a.Close()

	a.UpdatePosition(1000)
	waitEvent(t, events, EventStateChanged)

	// The same position again must not broadcast.
	a.UpdatePosition(1000)
	a.UpdatePosition(1000)

	select {
	case ev := <-events:
		t.Fatalf("unexpected event for unchanged state: %v", ev.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestActorBroadcastsEffectiveChange(t *testing.T) {
	bus := NewBus()
	defer bus.Close()
	events := bus.Subscribe()

	a := NewActor(bus)
	defer a.Close()

	tr := media.Track{ID: 42, Title: "song"}
	a.UpdateTrack(&tr)
	ev := waitEvent(t, events, EventStateChanged)
	if ev.State == nil || ev.State.CurrentTrack == nil || ev.State.CurrentTrack.ID != 42 {
		t.Errorf("event snapshot missing track: %+v", ev.State)
	}

	got := a.Get()
	if got.CurrentTrack == nil || got.CurrentTrack.ID != 42 {
		t.Errorf("Get snapshot missing track: %+v", got)
	}
}

func TestWatchSeesLatestValueOnly(t *testing.T) {
	a := NewActor(nil)
	defer a.Close()

	w := a.Watch()

	// Push several changes without reading; the watcher must end up
	// with only the newest.
	for i := int64(1); i <= 5; i++ {
		a.UpdatePosition(i * 100)
	}
	// Drain the mailbox.
	a.Get()

	select {
	case snap := <-w:
		if snap.PositionMs != 500 {
			t.Errorf("expected latest position 500, got %d", snap.PositionMs)
		}
	case <-time.After(time.Second):
		t.Fatal("watcher never received a snapshot")
	}
}

func TestGetReturnsIndependentSnapshot(t *testing.T) {
	a := NewActor(nil)
	defer a.Close()

	tr := media.Track{ID: 1, Artwork: []byte{1}}
	a.UpdateTrack(&tr)

	snap := a.Get()
	snap.CurrentTrack.Artwork[0] = 99

	again := a.Get()
	if again.CurrentTrack.Artwork[0] != 1 {
		t.Error("snapshot mutation leaked into the actor's state")
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch := bus.Subscribe()
	bus.Unsubscribe(ch)

	if _, open := <-ch; open {
		t.Error("unsubscribed channel should be closed")
	}

	// Publishing after unsubscribe must not panic.
	bus.Publish(Event{Type: EventTrackChanged})
}

func TestVolumeAndModeUpdatesFlowThroughActor(t *testing.T) {
	a := NewActor(nil)
	defer a.Close()

	a.UpdateVolume(0.5)
	a.UpdateRepeat(media.RepeatAll)
	a.UpdateShuffle(true)
	a.UpdatePlaying(true)

	got := a.Get()
	if got.Volume != 0.5 || got.Repeat != media.RepeatAll || !got.Shuffle || !got.IsPlaying {
		t.Errorf("unexpected state: %+v", got)
	}
}
