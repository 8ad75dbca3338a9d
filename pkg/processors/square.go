package processors

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-stage/pkg/pipeline/args"
	"github.com/askiada/go-stage/pkg/pipeline/channel"
	"github.com/askiada/go-stage/pkg/pipeline/stage"
)

// ErrMalformedValue is returned by the integer transforms when a message is not a decimal integer.
var ErrMalformedValue = errors.New("malformed integer")

func bindTransform(base stage.Base) (*channel.Reader, *channel.Writer, error) {
	input, err := args.Require[*channel.Reader](base.Args, "input")
	if err != nil {
		return nil, nil, err
	}

	output, err := args.Require[*channel.Writer](base.Args, "output")
	if err != nil {
		return nil, nil, err
	}

	return input, output, nil
}

func parseInt(msg channel.Message) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(msg.String()))
	if err != nil {
		return 0, errors.Wrapf(ErrMalformedValue, "%q", msg.String())
	}

	return value, nil
}

// Square pushes the square of every integer it reads. A malformed message stops the stage.
type Square struct {
	stage.Base
	input  *channel.Reader
	output *channel.Writer
}

func NewSquare(base stage.Base) (stage.Stage, error) {
	input, output, err := bindTransform(base)
	if err != nil {
		return nil, err
	}

	return &Square{Base: base, input: input, output: output}, nil
}

func (s *Square) Exec(ctx context.Context) error {
	for {
		msg, err := s.input.Read(ctx)
		if err == io.EOF {
			return s.output.Close()
		}

		if err != nil {
			return err
		}

		value, err := parseInt(msg)
		if err != nil {
			return err
		}

		err = s.output.PushString(ctx, strconv.Itoa(value*value))
		if err != nil {
			return err
		}
	}
}

// Negator pushes the opposite of every integer it reads, through a mapped writer. A malformed message stops the
// stage.
type Negator struct {
	stage.Base
	input  *channel.Reader
	output *channel.Writer
}

func NewNegator(base stage.Base) (stage.Stage, error) {
	input, output, err := bindTransform(base)
	if err != nil {
		return nil, err
	}

	return &Negator{Base: base, input: input, output: output}, nil
}

func negate(msg channel.Message) (channel.Message, error) {
	value, err := parseInt(msg)
	if err != nil {
		return nil, err
	}

	return channel.Message(strconv.Itoa(-value)), nil
}

func (n *Negator) Exec(ctx context.Context) error {
	mapped, sub, err := channel.Map(ctx, n.output, negate)
	if err != nil {
		return errors.Wrap(err, "unable to map output")
	}

	for {
		msg, err := n.input.Read(ctx)
		if err == io.EOF {
			break
		}

		if err != nil {
			mapped.Channel().Shutdown()

			return err
		}

		err = mapped.Push(ctx, msg)
		if err != nil {
			// The subscription stopped first, its error is the cause.
			return errors.Wrap(sub.Wait(ctx), "unable to negate")
		}
	}

	err = mapped.Close()
	if err != nil {
		return err
	}

	return sub.Wait(ctx)
}
