package channel

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// Observer receives the messages of a subscribed Reader, in order, followed by exactly one terminal event.
type Observer interface {
	// OnNext handles one message. Returning an error ends the subscription with OnError.
	OnNext(ctx context.Context, msg Message) error
	// OnComplete is called once the channel is closed and drained.
	OnComplete() error
	// OnError is called when the subscription stops for any other reason.
	OnError(err error)
}

// ObserverFuncs adapts plain functions to an Observer. Nil functions are skipped.
type ObserverFuncs struct {
	Next     func(ctx context.Context, msg Message) error
	Complete func() error
	Error    func(err error)
}

func (o ObserverFuncs) OnNext(ctx context.Context, msg Message) error {
	if o.Next == nil {
		return nil
	}

	return o.Next(ctx, msg)
}

func (o ObserverFuncs) OnComplete() error {
	if o.Complete == nil {
		return nil
	}

	return o.Complete()
}

func (o ObserverFuncs) OnError(err error) {
	if o.Error != nil {
		o.Error(err)
	}
}

// Subscription is the handle of a running push-style consumer.
type Subscription struct {
	done chan struct{}
	err  error
}

// Done is closed after the terminal event has been delivered.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the subscription terminates and returns its terminal error, nil on normal completion.
func (s *Subscription) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for subscription")
	case <-s.done:
		return s.err
	}
}

// Subscribe turns the Reader into a push-style source. A background loop reads the channel and hands every message
// to obs until the channel closes, an error occurs or ctx is done. After Subscribe, Read fails with ErrSubscribed.
func (r *Reader) Subscribe(ctx context.Context, obs Observer) (*Subscription, error) {
	r.ch.mu.Lock()
	switch {
	case r.subscribed:
		r.ch.mu.Unlock()

		return nil, errors.Wrapf(ErrAlreadySubscribed, "channel %s", r.ch.name)
	case r.drained:
		r.ch.mu.Unlock()

		return nil, errors.Wrapf(ErrReadAfterClose, "channel %s", r.ch.name)
	}
	r.subscribed = true
	r.ch.mu.Unlock()

	sub := &Subscription{done: make(chan struct{})}

	go func() {
		defer close(sub.done)

		for {
			msg, err := r.read(ctx)
			if errors.Is(err, io.EOF) {
				sub.err = obs.OnComplete()

				return
			}

			if err == nil {
				err = obs.OnNext(ctx, msg)
			}

			if err != nil {
				sub.err = err
				obs.OnError(err)

				return
			}
		}
	}()

	return sub, nil
}
