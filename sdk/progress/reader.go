// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"io"
	"sync/atomic"
)

// Reader decorates a byte source and reports every non-empty read to a sink
// as the consumer pulls data. Nothing is read ahead.
type Reader struct {
	r     io.Reader
	sink  Sink
	count atomic.Int64
}

// NewReader wraps r. sink may be nil, in which case only the internal
// counter advances.
func NewReader(r io.Reader, sink Sink) *Reader {
	return &Reader{r: r, sink: sink}
}

func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		r.count.Add(int64(n))
		if r.sink != nil {
			r.sink.Report(int64(n))
		}
	}
	return n, err
}

// Count returns the bytes read so far.
func (r *Reader) Count() int64 {
	return r.count.Load()
}

// Close closes the wrapped source when it is closable.
func (r *Reader) Close() error {
	if c, ok := r.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
