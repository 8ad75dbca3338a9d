package channel

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Writer is the producing endpoint of a Channel.
type Writer struct {
	ch *Channel
}

// Channel returns the channel the writer pushes to.
func (w *Writer) Channel() *Channel {
	return w.ch
}

// Push enqueues a copy of msg. On a full bounded channel it blocks until the Reader makes room, ctx is done or the
// channel is shut down. Pushing after Close always fails with ErrWriteAfterClose.
func (w *Writer) Push(ctx context.Context, msg Message) error {
	c := w.ch
	start := time.Now()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()

		return errors.Wrapf(ErrWriteAfterClose, "channel %s", c.name)
	}

	err := c.wait(ctx, func() bool {
		return c.full() && !c.shutdown
	})
	if err != nil {
		c.mu.Unlock()

		return errors.Wrapf(err, "push on channel %s", c.name)
	}

	if c.shutdown {
		c.mu.Unlock()

		return errors.Wrapf(ErrShutdown, "channel %s", c.name)
	}

	c.queue = append(c.queue, append(Message(nil), msg...))
	c.cond.Broadcast()
	c.mu.Unlock()

	if c.tracer != nil {
		c.tracer.Pushed(time.Since(start))
	}

	return nil
}

// PushString is a shorthand for pushing the bytes of s.
func (w *Writer) PushString(ctx context.Context, s string) error {
	return w.Push(ctx, Message(s))
}

// Close marks the end of the stream. Messages already pushed are still delivered. Closing twice fails with
// ErrAlreadyClosed.
func (w *Writer) Close() error {
	c := w.ch

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.Wrapf(ErrAlreadyClosed, "channel %s", c.name)
	}

	c.closed = true
	c.cond.Broadcast()

	return nil
}

// Closed reports whether Close has been called.
func (w *Writer) Closed() bool {
	c := w.ch

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}
