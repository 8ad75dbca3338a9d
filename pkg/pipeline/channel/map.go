package channel

import (
	"context"

	"github.com/pkg/errors"
)

// MapFunc transforms one message.
type MapFunc func(msg Message) (Message, error)

// Map returns a Writer whose messages are transformed by fn and pushed to dst. Closing the returned Writer closes
// dst once every pending message has been forwarded. The returned Subscription reports forwarding errors.
func Map(ctx context.Context, dst *Writer, fn MapFunc, opts ...Option) (*Writer, *Subscription, error) {
	src := New(dst.ch.name+"/map", opts...)

	sub, err := src.Reader().Subscribe(ctx, ObserverFuncs{
		Next: func(ctx context.Context, msg Message) error {
			out, err := fn(msg)
			if err != nil {
				return errors.Wrapf(err, "mapping message on %s", src.name)
			}

			return dst.Push(ctx, out)
		},
		Complete: dst.Close,
		Error: func(error) {
			src.Shutdown()
		},
	})
	if err != nil {
		return nil, nil, err
	}

	return src.Writer(), sub, nil
}
