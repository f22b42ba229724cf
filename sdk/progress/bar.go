// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/docker/go-units"
)

/* ------------ single-line aggregate progress ------------ */

var spinner = []rune{'|', '/', '-', '\\'}

// Bar is a Sink rendering the aggregate progress of one or more transfers on
// a single terminal line.
type Bar struct {
	mu       sync.Mutex
	w        io.Writer
	label    string
	total    int64
	done     int64
	spinIdx  int
	lastTick time.Time
	interval time.Duration
	finished bool
}

// NewBar renders to w. total may be zero when the size is unknown, the bar
// then shows a spinner and the byte count only.
func NewBar(w io.Writer, label string, total int64) *Bar {
	return &Bar{
		w:        w,
		label:    label,
		total:    total,
		interval: 100 * time.Millisecond,
	}
}

func (b *Bar) Report(n int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.done += n
	b.render(false)
}

// Done forces a final render and terminates the line. Further calls are no-ops.
func (b *Bar) Done() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return
	}
	b.finished = true
	b.render(true)
	fmt.Fprintln(b.w)
}

// Transferred returns the bytes reported so far.
func (b *Bar) Transferred() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}

func (b *Bar) render(force bool) {
	if b.finished && !force {
		return
	}
	// throttle to ~10 updates per second
	if !force && time.Since(b.lastTick) < b.interval {
		return
	}
	b.lastTick = time.Now()

	if b.total > 0 {
		done := min(b.done, b.total)
		pct := float64(done) / float64(b.total) * 100
		fmt.Fprintf(b.w, "\r%s: %6.2f%% (%s / %s)   ",
			b.label, pct, units.BytesSize(float64(done)), units.BytesSize(float64(b.total)))
		return
	}
	ch := spinner[b.spinIdx%len(spinner)]
	b.spinIdx++
	fmt.Fprintf(b.w, "\r%s: [%c] %s   ", b.label, ch, units.BytesSize(float64(b.done)))
}
