/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package device

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

var (
	// ErrInitTimeout means the hardware did not answer within the
	// configured window. Distinct from a failure the hardware reported
	// itself.
	ErrInitTimeout = errors.New("audio device init timed out")
)

// Handle describes the initialized output device.
type Handle struct {
	SampleRate beep.SampleRate
}

// InitFunc performs the actual one-shot hardware initialization.
type InitFunc func() (Handle, error)

// SpeakerInit returns the production InitFunc: claims the process-wide
// default output via the speaker package.
func SpeakerInit(sr beep.SampleRate, buffer time.Duration) InitFunc {
	return func() (Handle, error) {
		if err := speaker.Init(sr, sr.N(buffer)); err != nil {
			return Handle{}, fmt.Errorf("speaker init: %w", err)
		}
		return Handle{SampleRate: sr}, nil
	}
}

// Gate runs device initialization exactly once. Every caller observes
// the same attempt and the same result; there is no reset. Recovering
// from a failed device means building a new Gate.
type Gate struct {
	init    InitFunc
	timeout time.Duration

	once   sync.Once
	handle Handle
	err    error
}

func NewGate(init InitFunc, timeout time.Duration) *Gate {
	return &Gate{init: init, timeout: timeout}
}

type initResult struct {
	handle Handle
	err    error
}

// Acquire returns the device handle, triggering initialization on the
// first call. If the attempt outlives the timeout the gate is latched
// to ErrInitTimeout; a late success is discarded, never applied.
func (g *Gate) Acquire() (Handle, error) {
	g.once.Do(func() {
		done := make(chan initResult, 1)
		go func() {
			h, err := g.init()
			done <- initResult{handle: h, err: err}
		}()

		select {
		case r := <-done:
			g.handle, g.err = r.handle, r.err
		case <-time.After(g.timeout):
			g.err = ErrInitTimeout
		}
	})
	return g.handle, g.err
}
