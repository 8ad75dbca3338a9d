package processors

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/go-stage/pkg/pipeline/channel"
	"github.com/askiada/go-stage/pkg/pipeline/stage"
)

// Transparent forwards its input unchanged. It consumes its input as a push stream: the subscription is made in
// Setup and Exec only waits for it to complete.
type Transparent struct {
	stage.Base
	input  *channel.Reader
	output *channel.Writer
	sub    *channel.Subscription
}

func NewTransparent(base stage.Base) (stage.Stage, error) {
	input, output, err := bindTransform(base)
	if err != nil {
		return nil, err
	}

	return &Transparent{Base: base, input: input, output: output}, nil
}

func (t *Transparent) Setup(ctx context.Context) error {
	sub, err := t.input.Subscribe(ctx, channel.ObserverFuncs{
		Next: func(ctx context.Context, msg channel.Message) error {
			return t.output.Push(ctx, msg)
		},
		Complete: t.output.Close,
		Error: func(err error) {
			t.Log.Error("subscription failed", "error", err.Error())
		},
	})
	if err != nil {
		return errors.Wrap(err, "unable to subscribe")
	}

	t.sub = sub

	return nil
}

func (t *Transparent) Exec(ctx context.Context) error {
	return t.sub.Wait(ctx)
}

