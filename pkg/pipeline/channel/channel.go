package channel

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Message is an opaque byte sequence. The channel never interprets it.
type Message []byte

func (m Message) String() string {
	return string(m)
}

// Channel is a closable FIFO queue shared by one Writer and one Reader.
type Channel struct {
	id       string
	name     string
	capacity int
	tracer   Tracer

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []Message
	closed   bool
	shutdown bool

	reader *Reader
	writer *Writer
}

// New creates an open channel. The channel is bounded by DefaultCapacity unless WithCapacity says otherwise.
func New(name string, opts ...Option) *Channel {
	ch := &Channel{
		id:       uuid.NewString(),
		name:     name,
		capacity: DefaultCapacity,
	}
	for _, opt := range opts {
		opt(ch)
	}

	ch.cond = sync.NewCond(&ch.mu)
	ch.reader = &Reader{ch: ch}
	ch.writer = &Writer{ch: ch}

	return ch
}

func (c *Channel) ID() string {
	return c.id
}

func (c *Channel) Name() string {
	return c.name
}

func (c *Channel) Capacity() int {
	return c.capacity
}

// Reader returns the consuming endpoint. It is the same value on every call.
func (c *Channel) Reader() *Reader {
	return c.reader
}

// Writer returns the producing endpoint. It is the same value on every call.
func (c *Channel) Writer() *Writer {
	return c.writer
}

// Len returns the number of buffered messages.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.queue)
}

// Shutdown discards buffered messages and wakes up both endpoints with ErrShutdown.
// It can be called any number of times, from any goroutine.
func (c *Channel) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shutdown {
		return
	}

	c.shutdown = true
	c.queue = nil
	c.cond.Broadcast()
}

func (c *Channel) full() bool {
	return c.capacity > 0 && len(c.queue) >= c.capacity
}

// wait blocks until blocked returns false or ctx is done. c.mu must be held.
func (c *Channel) wait(ctx context.Context, blocked func() bool) error {
	if !blocked() {
		return nil
	}

	// sync.Cond knows nothing about contexts, wake every waiter once ctx is done.
	stop := context.AfterFunc(ctx, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.cond.Broadcast()
	})
	defer stop()

	for blocked() {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.cond.Wait()
	}

	return nil
}
