package library

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanFiltersAndOrders(t *testing.T) {
	dir := t.TempDir()
	files := []string{"b.mp3", "a.flac", "notes.txt", "c.OGG"}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "d.wav"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tracks, err := Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 4 {
		t.Fatalf("expected 4 tracks, got %d", len(tracks))
	}
	// Sorted by path, IDs sequential from 1.
	wantTitles := []string{"a", "b", "c", "d"}
	for i, tr := range tracks {
		if tr.ID != int64(i+1) {
			t.Errorf("track %d: expected ID %d, got %d", i, i+1, tr.ID)
		}
		if tr.Title != wantTitles[i] {
			t.Errorf("track %d: expected title %q, got %q", i, wantTitles[i], tr.Title)
		}
	}
}

func TestScanMissingDir(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestUnreadableTagsFallBackToFilename(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "song.mp3"), []byte("not real audio"), 0644); err != nil {
		t.Fatal(err)
	}
	tracks, err := Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 1 || tracks[0].Title != "song" {
		t.Fatalf("expected filename title fallback, got %+v", tracks)
	}
}
