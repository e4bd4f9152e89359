/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package sink

import (
	"sync/atomic"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
)

// Output is one open audio channel accepting queued sample data.
type Output interface {
	// Append queues a streamer; onDone fires when it drains naturally.
	Append(s beep.Streamer, onDone func())
	// Clear drops everything queued on this output.
	Clear()
	SetPaused(paused bool)
	// SetVolume takes a linear 0..1 level.
	SetVolume(v float64)
	// Drained reports whether every appended streamer has finished.
	Drained() bool
}

// speakerSink is an Output over the initialized speaker: a private
// mixer fed through a pause control and a volume stage. The mixer keeps
// streaming silence when empty, so the whole chain is parked on the
// speaker once and reused across tracks.
type speakerSink struct {
	mixer  *beep.Mixer
	ctrl   *beep.Ctrl
	vol    *effects.Volume
	queued int32
}

// NewSpeakerSink builds a sink and parks it on the speaker. Creation
// is the expensive path (observed 50-100ms on first play), which is why
// the pool reuses these.
func NewSpeakerSink() (Output, error) {
	s := &speakerSink{mixer: &beep.Mixer{}}
	s.ctrl = &beep.Ctrl{Streamer: s.mixer}
	s.vol = &effects.Volume{Streamer: s.ctrl, Base: 2, Volume: 0}
	speaker.Play(s.vol)
	return s, nil
}

func (s *speakerSink) Append(st beep.Streamer, onDone func()) {
	atomic.AddInt32(&s.queued, 1)
	speaker.Lock()
	s.mixer.Add(beep.Seq(st, beep.Callback(func() {
		atomic.AddInt32(&s.queued, -1)
		if onDone != nil {
			onDone()
		}
	})))
	speaker.Unlock()
}

func (s *speakerSink) Clear() {
	speaker.Lock()
	s.mixer.Clear()
	s.ctrl.Paused = false
	speaker.Unlock()
	atomic.StoreInt32(&s.queued, 0)
}

func (s *speakerSink) SetPaused(paused bool) {
	speaker.Lock()
	s.ctrl.Paused = paused
	speaker.Unlock()
}

// SetVolume maps the linear slider onto the base-2 log scale, unity at
// 1.0, silent at 0.
func (s *speakerSink) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	speaker.Lock()
	if v == 0 {
		s.vol.Silent = true
	} else {
		s.vol.Silent = false
		s.vol.Volume = 2 * (v - 1)
	}
	speaker.Unlock()
}

func (s *speakerSink) Drained() bool {
	return atomic.LoadInt32(&s.queued) == 0
}
