package channel_test

import (
	"context"
	"io"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-stage/pkg/pipeline/channel"
)

const blockedFor = 50 * time.Millisecond

func pushAll(t *testing.T, ctx context.Context, w *channel.Writer, total int) {
	t.Helper()

	for i := range total {
		assert.NoError(t, w.PushString(ctx, strconv.Itoa(i)))
	}
	assert.NoError(t, w.Close())
}

func TestReadInOrderThenEOF(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		total    int
		capacity int
	}{
		"empty":               {total: 0, capacity: 1},
		"one":                 {total: 1, capacity: 1},
		"more than buffer":    {total: 100, capacity: 4},
		"unbounded":           {total: 100, capacity: 0},
		"default capacity":    {total: 10, capacity: channel.DefaultCapacity},
		"exactly buffer size": {total: 8, capacity: 8},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := t.Context()
			ch := channel.New(name, channel.WithCapacity(tc.capacity))

			go pushAll(t, ctx, ch.Writer(), tc.total)

			got := []string{}
			for range tc.total {
				msg, err := ch.Reader().Read(ctx)
				require.NoError(t, err)
				got = append(got, msg.String())
			}

			_, err := ch.Reader().Read(ctx)
			require.ErrorIs(t, err, io.EOF)

			expected := []string{}
			for i := range tc.total {
				expected = append(expected, strconv.Itoa(i))
			}
			assert.Equal(t, expected, got)

			_, err = ch.Reader().Read(ctx)
			assert.ErrorIs(t, err, channel.ErrReadAfterClose)
			assert.True(t, channel.IsProtocolViolation(err))
		})
	}
}

func TestReadBlocksWhileOpen(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	ch := channel.New("blocking")
	got := make(chan channel.Message, 1)

	go func() {
		msg, err := ch.Reader().Read(ctx)
		assert.NoError(t, err)
		got <- msg
	}()

	select {
	case <-got:
		t.Fatal("read returned before anything was pushed")
	case <-time.After(blockedFor):
	}

	require.NoError(t, ch.Writer().PushString(ctx, "hello"))
	assert.Equal(t, "hello", (<-got).String())
}

func TestReadObservesCloseWhileBlocked(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	ch := channel.New("close while blocked")
	errC := make(chan error, 1)

	go func() {
		_, err := ch.Reader().Read(ctx)
		errC <- err
	}()

	time.Sleep(blockedFor)
	require.NoError(t, ch.Writer().Close())
	assert.ErrorIs(t, <-errC, io.EOF)
}

func TestIsClosed(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	ch := channel.New("is closed")
	reader := ch.Reader()

	assert.False(t, reader.IsClosed())

	require.NoError(t, ch.Writer().PushString(ctx, "a"))
	require.NoError(t, ch.Writer().PushString(ctx, "b"))
	require.NoError(t, ch.Writer().Close())
	assert.False(t, reader.IsClosed(), "messages are still buffered")

	msg, err := reader.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", msg.String())
	assert.False(t, reader.IsClosed(), "one message is still buffered")

	msg, err = reader.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", msg.String())
	assert.True(t, reader.IsClosed())

	_, err = reader.Read(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestIsClosedAfterShutdown(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	ch := channel.New("shut down")

	require.NoError(t, ch.Writer().PushString(ctx, "1"))
	ch.Shutdown()

	assert.False(t, ch.Reader().IsClosed())

	_, err := ch.Reader().Read(ctx)
	require.ErrorIs(t, err, channel.ErrShutdown)
	assert.False(t, ch.Reader().IsClosed())
}

func TestPushAfterClose(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	ch := channel.New("push after close")
	require.NoError(t, ch.Writer().Close())
	assert.True(t, ch.Writer().Closed())

	for range 3 {
		err := ch.Writer().PushString(ctx, "late")
		require.ErrorIs(t, err, channel.ErrWriteAfterClose)
		assert.True(t, channel.IsProtocolViolation(err))
	}
	assert.Zero(t, ch.Len())
}

func TestDoubleClose(t *testing.T) {
	t.Parallel()

	ch := channel.New("double close")
	require.NoError(t, ch.Writer().Close())
	assert.ErrorIs(t, ch.Writer().Close(), channel.ErrAlreadyClosed)
}

func TestPushCopiesMessage(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	ch := channel.New("copy")
	msg := channel.Message("abc")

	require.NoError(t, ch.Writer().Push(ctx, msg))
	msg[0] = 'z'

	got, err := ch.Reader().Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.String())
}

func TestPushBlocksOnFullBuffer(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	ch := channel.New("backpressure", channel.WithCapacity(1))
	require.NoError(t, ch.Writer().PushString(ctx, "first"))

	done := make(chan error, 1)
	go func() {
		done <- ch.Writer().PushString(ctx, "second")
	}()

	select {
	case <-done:
		t.Fatal("push returned while the buffer was full")
	case <-time.After(blockedFor):
	}
	assert.Equal(t, 1, ch.Len())

	msg, err := ch.Reader().Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", msg.String())
	require.NoError(t, <-done)

	msg, err = ch.Reader().Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", msg.String())
}

func TestContextCancel(t *testing.T) {
	t.Parallel()

	t.Run("read", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		ch := channel.New("cancel read")
		errC := make(chan error, 1)

		go func() {
			_, err := ch.Reader().Read(ctx)
			errC <- err
		}()

		time.Sleep(blockedFor)
		cancel()
		assert.ErrorIs(t, <-errC, context.Canceled)
	})

	t.Run("push", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		ch := channel.New("cancel push", channel.WithCapacity(1))
		require.NoError(t, ch.Writer().PushString(ctx, "fill"))
		errC := make(chan error, 1)

		go func() {
			errC <- ch.Writer().PushString(ctx, "blocked")
		}()

		time.Sleep(blockedFor)
		cancel()
		assert.ErrorIs(t, <-errC, context.Canceled)
		assert.Equal(t, 1, ch.Len())
	})

	t.Run("already cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		ch := channel.New("cancelled")

		_, err := ch.Reader().Read(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestShutdown(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	full := channel.New("shutdown", channel.WithCapacity(1))
	empty := channel.New("shutdown empty")
	require.NoError(t, full.Writer().PushString(ctx, "fill"))

	pushErr := make(chan error, 1)
	readErr := make(chan error, 1)

	go func() {
		pushErr <- full.Writer().PushString(ctx, "blocked")
	}()
	go func() {
		_, err := empty.Reader().Read(ctx)
		readErr <- err
	}()

	time.Sleep(blockedFor)
	full.Shutdown()
	empty.Shutdown()
	empty.Shutdown()

	assert.ErrorIs(t, <-pushErr, channel.ErrShutdown)
	assert.ErrorIs(t, <-readErr, channel.ErrShutdown)
	assert.False(t, empty.Reader().IsClosed(), "the writer never closed it")
	assert.Zero(t, full.Len())

	_, err := full.Reader().Read(ctx)
	assert.ErrorIs(t, err, channel.ErrShutdown)
	assert.False(t, channel.IsProtocolViolation(err))
}

func TestConcurrentProducerConsumer(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	total := 1000
	ch := channel.New("concurrent", channel.WithCapacity(4))

	go pushAll(t, ctx, ch.Writer(), total)

	next := 0
	for {
		msg, err := ch.Reader().Read(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.Equal(t, strconv.Itoa(next), msg.String())
		next++
	}
	assert.Equal(t, total, next)
}

type countTracer struct {
	mu       sync.Mutex
	pushed   int
	received int
}

func (c *countTracer) Pushed(time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushed++
}

func (c *countTracer) Received(time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.received++
}

func TestTracer(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	tracer := &countTracer{}
	ch := channel.New("traced", channel.WithTracer(tracer))

	pushAll(t, ctx, ch.Writer(), 5)
	for range 5 {
		_, err := ch.Reader().Read(ctx)
		require.NoError(t, err)
	}
	_, err := ch.Reader().Read(ctx)
	require.ErrorIs(t, err, io.EOF)

	assert.Equal(t, 5, tracer.pushed)
	assert.Equal(t, 5, tracer.received)
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	first := channel.New("first", channel.WithCapacity(3))
	second := channel.New("second")

	assert.NotEqual(t, first.ID(), second.ID())
	assert.Equal(t, "first", first.Name())
	assert.Equal(t, 3, first.Capacity())
	assert.Same(t, first.Reader(), first.Reader())
	assert.Same(t, first.Writer(), first.Writer())
	assert.Same(t, first, first.Reader().Channel())
	assert.Same(t, first, first.Writer().Channel())
}
