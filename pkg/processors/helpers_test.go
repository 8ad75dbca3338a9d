package processors_test

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/go-stage/pkg/pipeline/args"
	"github.com/askiada/go-stage/pkg/pipeline/channel"
	"github.com/askiada/go-stage/pkg/pipeline/stage"
)

type record struct {
	level   slog.Level
	message string
	attrs   map[string]string
}

// recorder keeps every log record in memory.
type recorder struct {
	mu      *sync.Mutex
	records *[]record
	attrs   []slog.Attr
}

func newRecorder() *recorder {
	return &recorder{mu: &sync.Mutex{}, records: &[]record{}}
}

func (r *recorder) Enabled(context.Context, slog.Level) bool {
	return true
}

func (r *recorder) Handle(_ context.Context, rec slog.Record) error {
	attrs := make(map[string]string)
	for _, a := range r.attrs {
		attrs[a.Key] = a.Value.String()
	}

	rec.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.String()

		return true
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	*r.records = append(*r.records, record{level: rec.Level, message: rec.Message, attrs: attrs})

	return nil
}

func (r *recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &recorder{mu: r.mu, records: r.records, attrs: append(append([]slog.Attr{}, r.attrs...), attrs...)}
}

func (r *recorder) WithGroup(string) slog.Handler {
	return r
}

func (r *recorder) logger() *slog.Logger {
	return slog.New(r)
}

// values returns the attribute key of every record logged with message.
func (r *recorder) values(message, key string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := []string{}
	for _, rec := range *r.records {
		if rec.message == message {
			res = append(res, rec.attrs[key])
		}
	}

	return res
}

// runIsolated runs factory over a closed input holding inputs and returns what it pushed to its output.
func runIsolated(t *testing.T, factory stage.Factory, extra map[string]args.Value, inputs ...string) ([]string, error) {
	t.Helper()

	ctx := t.Context()
	in := channel.New("in", channel.WithCapacity(0))
	out := channel.New("out", channel.WithCapacity(0))

	for _, s := range inputs {
		require.NoError(t, in.Writer().PushString(ctx, s))
	}
	require.NoError(t, in.Writer().Close())

	values := map[string]args.Value{
		"input":  args.Reader(in.Reader()),
		"output": args.Writer(out.Writer()),
	}
	for k, v := range extra {
		values[k] = v
	}

	lc, err := stage.New("isolated", factory, args.NewStore(values), nil)
	if err != nil {
		return nil, err
	}

	require.NoError(t, lc.Setup(ctx))

	execErr := lc.Exec(ctx)

	got := []string{}
	for {
		msg, err := out.Reader().Read(ctx)
		if err != nil {
			if err != io.EOF {
				require.ErrorIs(t, err, channel.ErrShutdown)
			}

			break
		}

		got = append(got, msg.String())
	}

	return got, execErr
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

func keys[V any](m map[string]V) []string {
	return slices.Collect(maps.Keys(m))
}
