package args

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrMissingArgument  = errors.New("missing required argument")
	ErrTypeMismatch     = errors.New("argument type mismatch")
	ErrNotSingle        = errors.New("argument does not hold exactly one value")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrUnsupportedType  = errors.New("unsupported argument type")
	ErrNilEndpoint      = errors.New("nil channel endpoint")
)

// ConfigError is a fatal configuration problem of a stage. The stage must not be started.
type ConfigError struct {
	Stage    string
	Argument string
	Err      error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("stage %q: argument %q: %v", e.Stage, e.Argument, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Invalid reports a parameter which is present and well typed but rejected by the stage itself.
func Invalid(stage, argument, reason string) error {
	return &ConfigError{
		Stage:    stage,
		Argument: argument,
		Err:      errors.Wrap(ErrInvalidParameter, reason),
	}
}

// IsConfigError reports whether err comes from a stage configuration problem.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError

	return errors.As(err, &cfgErr)
}
