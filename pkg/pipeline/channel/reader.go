package channel

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
)

// Reader is the consuming endpoint of a Channel.
type Reader struct {
	ch *Channel

	// guarded by ch.mu
	drained    bool
	subscribed bool
}

// Channel returns the channel the reader consumes.
func (r *Reader) Channel() *Channel {
	return r.ch
}

// Read blocks until a message is available and returns it. Once the Writer closed the channel and every buffered
// message has been read, Read returns io.EOF. Reading again after that is a protocol violation.
func (r *Reader) Read(ctx context.Context) (Message, error) {
	r.ch.mu.Lock()
	subscribed := r.subscribed
	r.ch.mu.Unlock()

	if subscribed {
		return nil, errors.Wrapf(ErrSubscribed, "channel %s", r.ch.name)
	}

	return r.read(ctx)
}

func (r *Reader) read(ctx context.Context) (Message, error) {
	c := r.ch
	start := time.Now()

	c.mu.Lock()
	if r.drained {
		c.mu.Unlock()

		return nil, errors.Wrapf(ErrReadAfterClose, "channel %s", c.name)
	}

	err := c.wait(ctx, func() bool {
		return len(c.queue) == 0 && !c.closed && !c.shutdown
	})

	switch {
	case err != nil:
		c.mu.Unlock()

		return nil, errors.Wrapf(err, "read on channel %s", c.name)
	case c.shutdown:
		c.mu.Unlock()

		return nil, errors.Wrapf(ErrShutdown, "channel %s", c.name)
	case len(c.queue) == 0:
		r.drained = true
		c.mu.Unlock()

		return nil, io.EOF
	}

	msg := c.queue[0]
	c.queue[0] = nil
	c.queue = c.queue[1:]
	c.cond.Broadcast()
	c.mu.Unlock()

	if c.tracer != nil {
		c.tracer.Received(time.Since(start))
	}

	return msg, nil
}

// IsClosed reports whether the Writer closed the channel and every message has been read, so that the next Read
// would return io.EOF. It never blocks and is only a hint: a false result can be followed by a Read observing the
// closure. A shut down channel the Writer never closed is not closed, Read reports ErrShutdown instead.
func (r *Reader) IsClosed() bool {
	c := r.ch

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed && len(c.queue) == 0
}
