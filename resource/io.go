package resource

import (
	"context"
	"io"
)

// RateLimitedWriter wraps an io.Writer with the controller's IO limit.
type RateLimitedWriter struct {
	ctx context.Context
	rc  *Controller
	w   io.Writer
}

// NewRateLimitedWriter creates a new RateLimitedWriter.
func NewRateLimitedWriter(ctx context.Context, rc *Controller, w io.Writer) *RateLimitedWriter {
	return &RateLimitedWriter{ctx: ctx, rc: rc, w: w}
}

func (w *RateLimitedWriter) Write(p []byte) (n int, err error) {
	if err := w.rc.AcquireIO(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

// RateLimitedReader wraps an io.Reader with the controller's IO limit.
type RateLimitedReader struct {
	ctx context.Context
	rc  *Controller
	r   io.Reader
}

// NewRateLimitedReader creates a new RateLimitedReader.
func NewRateLimitedReader(ctx context.Context, rc *Controller, r io.Reader) *RateLimitedReader {
	return &RateLimitedReader{ctx: ctx, rc: rc, r: r}
}

func (r *RateLimitedReader) Read(p []byte) (n int, err error) {
	// The upcoming read size is unknown, so reserve the buffer size.
	if err := r.rc.AcquireIO(r.ctx, len(p)); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
