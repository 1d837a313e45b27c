// Package sink opens the byte sinks that LED frames are written to. Every
// sink receives exactly one Write per frame, already in wire order.
package sink

import (
	"context"
	"io"
)

// Sink is a byte sink for LED frames.
type Sink interface {
	io.WriteCloser
	// Run services the sink until ctx is canceled. Sinks without a
	// background task return when ctx is done.
	Run(ctx context.Context) error
}

type idle struct{}

func (idle) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
