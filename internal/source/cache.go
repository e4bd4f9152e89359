/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package source

import (
	"errors"
	"log/slog"

	"github.com/faiface/beep"
)

// ErrNotCached means a seek was requested on a streaming track before
// its background full decode finished. Deliberately not retried here;
// the caller decides what to do with it.
var ErrNotCached = errors.New("audio not yet fully cached")

// Cache is the fully decoded sample buffer for one track. Immutable
// once built; any number of seeks slice it concurrently without
// copying.
type Cache struct {
	locator string
	buf     *beep.Buffer
}

// Matches reports whether this cache belongs to the given locator. A
// mismatch on arrival means the track changed while decoding; the
// result is stale and must be discarded.
func (c *Cache) Matches(locator string) bool {
	return c != nil && c.locator == locator
}

// Len returns the buffered length in sample frames.
func (c *Cache) Len() int {
	return c.buf.Len()
}

// Format returns the buffered sample format.
func (c *Cache) Format() beep.Format {
	return c.buf.Format()
}

// StreamerFrom returns a zero-copy streamer over the shared buffer
// starting at position_ms.
func (c *Cache) StreamerFrom(positionMs int64) beep.StreamSeeker {
	frame := FrameAt(positionMs, c.buf.Format().SampleRate)
	if frame > c.buf.Len() {
		frame = c.buf.Len()
	}
	return c.buf.Streamer(frame, c.buf.Len())
}

// CacheResult is the completion message of a background full decode,
// tagged with the locator for staleness checking.
type CacheResult struct {
	Locator string
	Cache   *Cache
	Err     error
}

// FullDecode decodes an entire source into a Cache in the background
// and delivers the result on out. The open callback must return a fresh
// source (second fetch for network streams); the in-flight read is
// never cancelled, a superseded result is dropped by the receiver via
// Matches. Delivery is non-blocking so the goroutine always terminates
// even when the receiver is gone.
func FullDecode(locator string, open func() (*Source, error), out chan<- CacheResult) {
	go func() {
		deliver := func(res CacheResult) {
			select {
			case out <- res:
			default:
				slog.Warn("dropping cache result, receiver not draining",
					"locator", locator)
			}
		}

		src, err := open()
		if err != nil {
			deliver(CacheResult{Locator: locator, Err: err})
			return
		}
		defer src.Close()

		buf := beep.NewBuffer(src.Format)
		buf.Append(src.Streamer)

		slog.Debug("full decode complete",
			"locator", locator,
			"frames", buf.Len())
		deliver(CacheResult{Locator: locator, Cache: &Cache{locator: locator, buf: buf}})
	}()
}
