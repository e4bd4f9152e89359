/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package sink

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrExhausted means the pool is at capacity with every sink handed
// out. It is a backpressure signal: the pool never blocks or queues.
var ErrExhausted = errors.New("sink pool exhausted")

// Factory constructs one Output against the initialized device.
type Factory func() (Output, error)

// Pool is a bounded set of reusable outputs. It is owned and driven
// exclusively by the playback actor's sequential loop, so it carries no
// internal locking.
type Pool struct {
	newSink     Factory
	capacity    int
	free        []Output
	outstanding int
}

func NewPool(factory Factory, capacity int) *Pool {
	if capacity < 1 {
		capacity = 1
	}
	return &Pool{newSink: factory, capacity: capacity}
}

// WarmUp pre-creates up to n sinks so the first play does not pay the
// creation latency.
func (p *Pool) WarmUp(n int) error {
	for len(p.free)+p.outstanding < p.capacity && n > 0 {
		s, err := p.newSink()
		if err != nil {
			return fmt.Errorf("warm up sink: %w", err)
		}
		p.free = append(p.free, s)
		n--
	}
	return nil
}

// Acquire returns a leased output: a cleared free sink when one exists,
// a fresh one while under capacity, otherwise ErrExhausted immediately.
func (p *Pool) Acquire() (*Lease, error) {
	if n := len(p.free); n > 0 {
		s := p.free[n-1]
		p.free = p.free[:n-1]
		s.Clear()
		p.outstanding++
		return &Lease{pool: p, out: s}, nil
	}
	if p.outstanding+len(p.free) >= p.capacity {
		return nil, ErrExhausted
	}
	s, err := p.newSink()
	if err != nil {
		return nil, fmt.Errorf("create sink: %w", err)
	}
	p.outstanding++
	return &Lease{pool: p, out: s}, nil
}

func (p *Pool) put(s Output) {
	p.outstanding--
	s.Clear()
	if len(p.free)+p.outstanding >= p.capacity {
		slog.Debug("sink pool at capacity, discarding returned sink")
		return
	}
	p.free = append(p.free, s)
}

// Lease is a borrowed pool slot. Release is safe on every exit path
// and idempotent.
type Lease struct {
	pool *Pool
	out  Output
	once sync.Once
}

// Output returns the leased sink.
func (l *Lease) Output() Output { return l.out }

// Release clears the sink and hands it back; only the first call has
// any effect.
func (l *Lease) Release() {
	l.once.Do(func() {
		l.pool.put(l.out)
	})
}
