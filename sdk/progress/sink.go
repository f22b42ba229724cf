// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"sync"
	"sync/atomic"
)

// Sink receives the number of bytes delivered by each read of a tracked
// source. Implementations must be safe for concurrent use: the same sink may
// be shared by every file of a batch.
type Sink interface {
	Report(n int64)
}

// Func adapts a plain callback to a Sink, serialising invocations so the
// callback may mutate captured state without its own locking.
type Func struct {
	mu sync.Mutex
	fn func(n int64)
}

func NewFunc(fn func(n int64)) *Func {
	return &Func{fn: fn}
}

func (f *Func) Report(n int64) {
	if f == nil || f.fn == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fn(n)
}

// Counter accumulates reported bytes.
type Counter struct {
	total atomic.Int64
	calls atomic.Int64
}

func (c *Counter) Report(n int64) {
	c.total.Add(n)
	c.calls.Add(1)
}

// Total returns the sum of every report so far.
func (c *Counter) Total() int64 {
	return c.total.Load()
}

// Calls returns how many reports were received.
func (c *Counter) Calls() int64 {
	return c.calls.Load()
}

type tee []Sink

func (t tee) Report(n int64) {
	for _, s := range t {
		s.Report(n)
	}
}

// Tee fans every report out to all non-nil sinks. It returns nil when no
// sink is left.
func Tee(sinks ...Sink) Sink {
	var out tee
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return out
}
