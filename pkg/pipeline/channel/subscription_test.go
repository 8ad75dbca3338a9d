package channel_test

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-stage/pkg/pipeline/channel"
)

type recorder struct {
	mu        sync.Mutex
	messages  []string
	completed int
	errs      []error
}

func (r *recorder) OnNext(_ context.Context, msg channel.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg.String())

	return nil
}

func (r *recorder) OnComplete() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++

	return nil
}

func (r *recorder) OnError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		total int
	}{
		"empty": {total: 0},
		"one":   {total: 1},
		"many":  {total: 50},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := t.Context()
			ch := channel.New(name, channel.WithCapacity(2))
			rec := &recorder{}

			sub, err := ch.Reader().Subscribe(ctx, rec)
			require.NoError(t, err)

			pushAll(t, ctx, ch.Writer(), tc.total)
			require.NoError(t, sub.Wait(ctx))

			expected := []string{}
			for i := range tc.total {
				expected = append(expected, strconv.Itoa(i))
			}
			assert.Equal(t, expected, append([]string{}, rec.messages...))
			assert.Equal(t, 1, rec.completed)
			assert.Empty(t, rec.errs)

			select {
			case <-sub.Done():
			default:
				t.Fatal("done must be closed after wait returned")
			}
		})
	}
}

func TestSubscribeTwice(t *testing.T) {
	t.Parallel()

	ch := channel.New("twice")
	_, err := ch.Reader().Subscribe(t.Context(), &recorder{})
	require.NoError(t, err)

	_, err = ch.Reader().Subscribe(t.Context(), &recorder{})
	assert.ErrorIs(t, err, channel.ErrAlreadySubscribed)

	_, err = ch.Reader().Read(t.Context())
	assert.ErrorIs(t, err, channel.ErrSubscribed)

	require.NoError(t, ch.Writer().Close())
}

func TestSubscribeAfterDrained(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	ch := channel.New("drained")
	require.NoError(t, ch.Writer().Close())
	_, err := ch.Reader().Read(ctx)
	require.Error(t, err)

	_, err = ch.Reader().Subscribe(ctx, &recorder{})
	assert.ErrorIs(t, err, channel.ErrReadAfterClose)
}

func TestSubscribeNextError(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	ch := channel.New("next error")
	var errs []error

	sub, err := ch.Reader().Subscribe(ctx, channel.ObserverFuncs{
		Next: func(_ context.Context, msg channel.Message) error {
			if msg.String() == "bad" {
				return assert.AnError
			}

			return nil
		},
		Complete: func() error {
			t.Error("complete must not be called after an error")

			return nil
		},
		Error: func(err error) {
			errs = append(errs, err)
		},
	})
	require.NoError(t, err)

	require.NoError(t, ch.Writer().PushString(ctx, "good"))
	require.NoError(t, ch.Writer().PushString(ctx, "bad"))

	assert.ErrorIs(t, sub.Wait(ctx), assert.AnError)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], assert.AnError)
}

func TestSubscribeShutdown(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	ch := channel.New("shutdown subscription")
	rec := &recorder{}

	sub, err := ch.Reader().Subscribe(ctx, rec)
	require.NoError(t, err)

	ch.Shutdown()
	assert.ErrorIs(t, sub.Wait(ctx), channel.ErrShutdown)
	assert.Zero(t, rec.completed)
	assert.Len(t, rec.errs, 1)
}

func TestSubscriptionCompleteError(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	ch := channel.New("complete error")

	sub, err := ch.Reader().Subscribe(ctx, channel.ObserverFuncs{
		Complete: func() error {
			return assert.AnError
		},
	})
	require.NoError(t, err)
	require.NoError(t, ch.Writer().Close())

	assert.ErrorIs(t, sub.Wait(ctx), assert.AnError)
}

func TestSubscriptionWaitContext(t *testing.T) {
	t.Parallel()

	ch := channel.New("wait context")
	sub, err := ch.Reader().Subscribe(t.Context(), &recorder{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	assert.ErrorIs(t, sub.Wait(ctx), context.Canceled)

	require.NoError(t, ch.Writer().Close())
	assert.NoError(t, sub.Wait(t.Context()))
}

func TestMap(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	dst := channel.New("upper", channel.WithCapacity(0))

	writer, sub, err := channel.Map(ctx, dst.Writer(), func(msg channel.Message) (channel.Message, error) {
		return channel.Message(strings.ToUpper(msg.String())), nil
	})
	require.NoError(t, err)

	for _, s := range []string{"a", "b", "c"} {
		require.NoError(t, writer.PushString(ctx, s))
	}
	require.NoError(t, writer.Close())
	require.NoError(t, sub.Wait(ctx))

	got := []string{}
	for !dst.Reader().IsClosed() {
		msg, err := dst.Reader().Read(ctx)
		require.NoError(t, err)
		got = append(got, msg.String())
	}
	assert.Equal(t, []string{"A", "B", "C"}, got)
}

func TestMapError(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	dst := channel.New("failing")

	writer, sub, err := channel.Map(ctx, dst.Writer(), func(channel.Message) (channel.Message, error) {
		return nil, assert.AnError
	})
	require.NoError(t, err)
	require.NoError(t, writer.PushString(ctx, "x"))

	assert.ErrorIs(t, sub.Wait(ctx), assert.AnError)
	assert.False(t, dst.Writer().Closed())
	assert.ErrorIs(t, writer.PushString(ctx, "y"), channel.ErrShutdown)
}
