// internal/events/sink.go
package events

import "context"

// Sink delivers one event to an external system. Deliver may be retried.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, evt Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc struct {
	SinkName string
	Fn       func(ctx context.Context, evt Event) error
}

func (s SinkFunc) Name() string { return s.SinkName }

func (s SinkFunc) Deliver(ctx context.Context, evt Event) error { return s.Fn(ctx, evt) }
