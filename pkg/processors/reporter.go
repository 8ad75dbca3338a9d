package processors

import (
	"context"
	"io"

	"github.com/askiada/go-stage/pkg/pipeline/args"
	"github.com/askiada/go-stage/pkg/pipeline/channel"
	"github.com/askiada/go-stage/pkg/pipeline/stage"
)

// Reporter logs every message it receives at info level.
type Reporter struct {
	stage.Base
	input  *channel.Reader
	prefix string
}

func NewReporter(base stage.Base) (stage.Stage, error) {
	input, err := args.Require[*channel.Reader](base.Args, "input")
	if err != nil {
		return nil, err
	}

	prefix, err := args.Optional[string](base.Args, "prefix")
	if err != nil {
		return nil, err
	}

	return &Reporter{
		Base:   base,
		input:  input,
		prefix: prefix.OrElse(""),
	}, nil
}

func (r *Reporter) Exec(ctx context.Context) error {
	received := 0

	for !r.input.IsClosed() {
		msg, err := r.input.Read(ctx)
		if err == io.EOF {
			break
		}

		if err != nil {
			return err
		}

		received++
		r.Log.Info("received item", "item", r.prefix+msg.String())
	}

	r.Log.Debug("input closed", "received", received)

	return nil
}
