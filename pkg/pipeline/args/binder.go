package args

import (
	"io"
	"log/slog"

	"github.com/pkg/errors"
)

// Binder resolves the arguments of one stage.
type Binder struct {
	stage  string
	store  *Store
	logger *slog.Logger
}

// NewBinder creates a binder over store. A nil logger discards the lookup logs.
func NewBinder(stage string, store *Store, logger *slog.Logger) *Binder {
	if store == nil {
		store = NewStore(nil)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Binder{
		stage:  stage,
		store:  store,
		logger: logger,
	}
}

func (b *Binder) Stage() string {
	return b.stage
}

func (b *Binder) Store() *Store {
	return b.store
}

// Sub returns a binder over the nested store held by the argument name.
func (b *Binder) Sub(name string) (*Binder, error) {
	store, err := Require[*Store](b, name)
	if err != nil {
		return nil, err
	}

	return NewBinder(b.stage+"."+name, store, b.logger), nil
}

func (b *Binder) fail(name string, err error) error {
	cfgErr := &ConfigError{Stage: b.stage, Argument: name, Err: err}
	b.logger.Error("invalid stage configuration", "stage", b.stage, "argument", name, "error", err.Error())

	return cfgErr
}

// Require returns the argument name converted to T. A missing argument or a value which cannot be used as T is a
// *ConfigError.
func Require[T any](b *Binder, name string) (T, error) {
	var zero T

	b.logger.Debug("binding argument", "stage", b.stage, "argument", name)

	v, ok := b.store.Lookup(name)
	if !ok {
		return zero, b.fail(name, ErrMissingArgument)
	}

	out, err := As[T](v)
	if err != nil {
		return zero, b.fail(name, err)
	}

	return out, nil
}

// Optional behaves like Require but an absent argument yields an empty Option instead of an error.
func Optional[T any](b *Binder, name string) (Option[T], error) {
	b.logger.Debug("binding argument", "stage", b.stage, "argument", name, "optional", true)

	v, ok := b.store.Lookup(name)
	if !ok {
		return None[T](), nil
	}

	out, err := As[T](v)
	if err != nil {
		return None[T](), b.fail(name, errors.Wrap(err, "optional argument"))
	}

	return Some(out), nil
}
