package stage

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-stage/pkg/pipeline/args"
	"github.com/askiada/go-stage/pkg/pipeline/channel"
)

var (
	// ErrInvalidTransition is returned when Setup or Exec is called out of order or more than once.
	ErrInvalidTransition = errors.New("invalid stage transition")
	// ErrPanic wraps a panic recovered from a stage.
	ErrPanic = errors.New("stage panicked")
)

// State is the position of a stage in its lifecycle.
type State int32

const (
	StateConstructed State = iota
	StateSetUp
	StateRunning
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateSetUp:
		return "setup"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Lifecycle drives one stage through Constructed, SetUp, Running and Terminated.
type Lifecycle struct {
	name  string
	stage Stage
	store *args.Store
	log   *slog.Logger
	state atomic.Int32
}

// New constructs the stage with factory. A construction error is logged and returned, no Lifecycle exists for a
// stage which failed to bind its arguments.
func New(name string, factory Factory, store *args.Store, logger *slog.Logger) (*Lifecycle, error) {
	base := NewBase(name, store, logger)

	var st Stage
	err := guard(func() error {
		var err error
		st, err = factory(base)

		return err
	})
	if err == nil && st == nil {
		err = errors.New("factory returned no stage")
	}
	if err != nil {
		base.Log.Error("unable to construct stage", "error", err.Error())

		return nil, errors.Wrapf(err, "construct stage %s", name)
	}

	base.Log.Debug("stage constructed", "arguments", base.Args.Store().Names())

	return &Lifecycle{
		name:  name,
		stage: st,
		store: base.Args.Store(),
		log:   base.Log,
	}, nil
}

func (l *Lifecycle) Name() string {
	return l.name
}

func (l *Lifecycle) Stage() Stage {
	return l.stage
}

func (l *Lifecycle) Store() *args.Store {
	return l.store
}

func (l *Lifecycle) State() State {
	return State(l.state.Load())
}

func (l *Lifecycle) transition(from, to State) error {
	if !l.state.CompareAndSwap(int32(from), int32(to)) {
		return errors.Wrapf(ErrInvalidTransition, "cannot move from %s to %s", l.State(), to)
	}

	return nil
}

// Setup calls the stage Setup. It must be the first lifecycle call.
func (l *Lifecycle) Setup(ctx context.Context) error {
	if err := l.transition(StateConstructed, StateSetUp); err != nil {
		return err
	}

	l.log.Debug("setting up stage")

	err := guard(func() error {
		return l.stage.Setup(ctx)
	})
	if err != nil {
		l.state.Store(int32(StateTerminated))
		l.log.Error("stage setup failed", "error", err.Error())
		l.shutdownWriters()

		return errors.Wrap(err, "setup")
	}

	return nil
}

// Exec calls the stage Exec and blocks until it returns. Afterwards the stage is terminated: writers it left open
// are closed on success and shut down on failure, so that its neighbours never wait forever.
func (l *Lifecycle) Exec(ctx context.Context) error {
	if err := l.transition(StateSetUp, StateRunning); err != nil {
		return err
	}

	l.log.Debug("executing stage")
	start := time.Now()

	err := guard(func() error {
		return l.stage.Exec(ctx)
	})
	l.state.Store(int32(StateTerminated))

	if err != nil {
		l.log.Error("stage failed", "error", err.Error(), "elapsed", time.Since(start))
		l.shutdownWriters()

		return errors.Wrap(err, "exec")
	}

	l.closeWriters()
	l.log.Debug("stage terminated", "elapsed", time.Since(start))

	return nil
}

// Shutdown force closes every channel the stage is connected to. It unblocks a stuck stage and may be called at
// any time, from any goroutine.
func (l *Lifecycle) Shutdown() {
	for _, r := range l.store.Readers() {
		r.Channel().Shutdown()
	}
	l.shutdownWriters()
}

func (l *Lifecycle) closeWriters() {
	for _, w := range l.store.Writers() {
		if w.Closed() {
			continue
		}

		l.log.Warn("stage terminated without closing its output, closing it", "channel", w.Channel().Name())

		err := w.Close()
		if err != nil && !errors.Is(err, channel.ErrAlreadyClosed) {
			l.log.Error("unable to close output", "channel", w.Channel().Name(), "error", err.Error())
		}
	}
}

func (l *Lifecycle) shutdownWriters() {
	for _, w := range l.store.Writers() {
		w.Channel().Shutdown()
	}
}

func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrPanic, "%v", r)
		}
	}()

	return fn()
}
