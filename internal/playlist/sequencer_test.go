package playlist

import (
	"errors"
	"testing"

	"hdxplay/internal/media"
)

func tracks(n int) []media.Track {
	out := make([]media.Track, n)
	for i := range out {
		out[i] = media.Track{ID: int64(i + 1), Path: "/t.mp3"}
	}
	return out
}

func TestLoadEmptyPlaylist(t *testing.T) {
	s := NewSequencer(0)
	if err := s.Load(nil); !errors.Is(err, ErrEmptyPlaylist) {
		t.Errorf("expected ErrEmptyPlaylist, got %v", err)
	}
}

func TestUnloadedNextPreviousReturnNil(t *testing.T) {
	s := NewSequencer(0)
	if s.Next() != nil {
		t.Error("Next on unloaded playlist should be nil")
	}
	if s.Previous() != nil {
		t.Error("Previous on unloaded playlist should be nil")
	}
	if s.Current() != nil {
		t.Error("Current on unloaded playlist should be nil")
	}
}

func TestLinearNextRepeatOff(t *testing.T) {
	s := NewSequencer(0)
	if err := s.Load(tracks(3)); err != nil {
		t.Fatal(err)
	}

	var got []int64
	for {
		n := s.Next()
		if n == nil {
			break
		}
		got = append(got, n.ID)
	}
	want := []int64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	// Exhausted playlist stays exhausted under RepeatOff.
	if n := s.Next(); n != nil {
		t.Errorf("expected nil after exhaustion, got %v", n.ID)
	}
}

func TestRepeatAllRevisitsEveryTrack(t *testing.T) {
	s := NewSequencer(0)
	if err := s.Load(tracks(5)); err != nil {
		t.Fatal(err)
	}
	s.SetRepeat(media.RepeatAll)

	seen := map[int64]int{}
	for i := 0; i < 25; i++ {
		n := s.Next()
		if n == nil {
			t.Fatal("RepeatAll must never return nil")
		}
		seen[n.ID]++
	}
	for id := int64(1); id <= 5; id++ {
		if seen[id] == 0 {
			t.Errorf("track %d never revisited", id)
		}
	}
}

func TestRepeatOneReturnsSameTrack(t *testing.T) {
	s := NewSequencer(0)
	if err := s.Load(tracks(3)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.JumpTo(2); err != nil {
		t.Fatal(err)
	}
	s.SetRepeat(media.RepeatOne)

	for i := 0; i < 4; i++ {
		n := s.Next()
		if n == nil || n.ID != 2 {
			t.Fatalf("RepeatOne should keep returning track 2, got %v", n)
		}
	}
}

func TestShuffleIsPermutationWithoutRepeats(t *testing.T) {
	s := NewSequencer(0)
	if err := s.Load(tracks(100)); err != nil {
		t.Fatal(err)
	}
	s.SetShuffle(true)

	seen := map[int64]bool{}
	for i := 0; i < 100; i++ {
		n := s.Next()
		if n == nil {
			t.Fatalf("queue exhausted early at %d", i)
		}
		if seen[n.ID] {
			t.Fatalf("track %d repeated before exhaustion", n.ID)
		}
		seen[n.ID] = true
	}
	if len(seen) != 100 {
		t.Errorf("expected permutation of 100 ids, got %d", len(seen))
	}
	if n := s.Next(); n != nil {
		t.Errorf("expected nil after shuffle exhaustion under RepeatOff, got %v", n.ID)
	}
}

func TestShuffleRefillsUnderRepeatAll(t *testing.T) {
	s := NewSequencer(0)
	if err := s.Load(tracks(4)); err != nil {
		t.Fatal(err)
	}
	s.SetShuffle(true)
	s.SetRepeat(media.RepeatAll)

	for i := 0; i < 12; i++ {
		if s.Next() == nil {
			t.Fatal("shuffle under RepeatAll must refill, got nil")
		}
	}
}

func TestPreviousUsesHistory(t *testing.T) {
	s := NewSequencer(0)
	if err := s.Load(tracks(3)); err != nil {
		t.Fatal(err)
	}

	first := s.Next()  // 1
	second := s.Next() // 2
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("unexpected sequence: %d, %d", first.ID, second.ID)
	}

	prev := s.Previous()
	if prev == nil || prev.ID != 1 {
		t.Fatalf("expected history to give back track 1, got %v", prev)
	}
}

func TestPreviousWithoutHistoryWrapsOnlyUnderRepeatAll(t *testing.T) {
	s := NewSequencer(0)
	if err := s.Load(tracks(3)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.JumpTo(1); err != nil {
		t.Fatal(err)
	}

	if p := s.Previous(); p != nil {
		t.Errorf("expected nil at playlist start under RepeatOff, got %v", p.ID)
	}

	s.SetRepeat(media.RepeatAll)
	p := s.Previous()
	if p == nil || p.ID != 3 {
		t.Fatalf("expected wraparound to track 3, got %v", p)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	s := NewSequencer(5)
	if err := s.Load(tracks(3)); err != nil {
		t.Fatal(err)
	}
	s.SetRepeat(media.RepeatAll)

	for i := 0; i < 40; i++ {
		s.Next()
	}
	if len(s.history) > 5 {
		t.Errorf("history exceeded its cap: %d", len(s.history))
	}
}

func TestJumpTo(t *testing.T) {
	s := NewSequencer(0)
	if err := s.Load(tracks(3)); err != nil {
		t.Fatal(err)
	}

	got, err := s.JumpTo(2)
	if err != nil {
		t.Fatalf("JumpTo failed: %v", err)
	}
	if got.ID != 2 {
		t.Errorf("expected track 2, got %d", got.ID)
	}

	// Sequencing continues from the jump target.
	n := s.Next()
	if n == nil || n.ID != 3 {
		t.Fatalf("expected track 3 after jump, got %v", n)
	}

	if _, err := s.JumpTo(99); !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("expected ErrTrackNotFound, got %v", err)
	}
}

func TestSetShuffleOffKeepsPosition(t *testing.T) {
	s := NewSequencer(0)
	if err := s.Load(tracks(10)); err != nil {
		t.Fatal(err)
	}
	s.SetRepeat(media.RepeatAll)
	s.SetShuffle(true)
	cur := s.Next()
	s.SetShuffle(false)

	// After shuffle off the walk continues linearly from the current
	// track's original position, wrapping under RepeatAll.
	n := s.Next()
	if n == nil {
		t.Fatal("expected a track after shuffle off")
	}
	want := cur.ID%10 + 1
	if n.ID != want {
		t.Errorf("expected linear continuation %d after %d, got %d", want, cur.ID, n.ID)
	}
}

func TestActorServesRequests(t *testing.T) {
	a := NewActor(0)
	defer a.Close()

	if err := a.Load(tracks(3)); err != nil {
		t.Fatal(err)
	}
	n := a.Next()
	if n == nil || n.ID != 1 {
		t.Fatalf("expected track 1 via actor, got %v", n)
	}
	a.SetRepeat(media.RepeatAll)
	if a.Repeat() != media.RepeatAll {
		t.Error("repeat mode not applied through actor")
	}
	if got := len(a.Tracks()); got != 3 {
		t.Errorf("expected 3 tracks, got %d", got)
	}
}
