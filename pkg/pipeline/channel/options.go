package channel

import "time"

// DefaultCapacity is the number of messages a channel buffers before its Writer blocks.
const DefaultCapacity = 16

// Tracer receives the time each side of a channel spent blocked.
type Tracer interface {
	// Pushed is called after every successful push with the time the Writer waited for room.
	Pushed(wait time.Duration)
	// Received is called after every message handed to the Reader with the time it waited for it.
	Received(wait time.Duration)
}

type Option func(c *Channel)

// WithCapacity sets the buffer size. A capacity lower or equal to 0 makes the channel unbounded.
func WithCapacity(capacity int) Option {
	return func(c *Channel) {
		c.capacity = capacity
	}
}

func WithTracer(tracer Tracer) Option {
	return func(c *Channel) {
		c.tracer = tracer
	}
}
