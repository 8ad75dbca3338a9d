package processors

import (
	"context"
	"math"
	"strconv"

	"github.com/pkg/errors"

	"github.com/askiada/go-stage/pkg/pipeline/args"
	"github.com/askiada/go-stage/pkg/pipeline/channel"
	"github.com/askiada/go-stage/pkg/pipeline/stage"
)

// Range emits start, start+step, ... up to end, excluded.
type Range struct {
	stage.Base
	start  int
	end    int
	step   int
	output *channel.Writer
}

// NewRange binds start, end, step and output. A step of 0 is rejected.
func NewRange(base stage.Base) (stage.Stage, error) {
	start, err := args.Require[int](base.Args, "start")
	if err != nil {
		return nil, err
	}

	end, err := args.Require[int](base.Args, "end")
	if err != nil {
		return nil, err
	}

	step, err := args.Require[int](base.Args, "step")
	if err != nil {
		return nil, err
	}

	if step == 0 {
		return nil, args.Invalid(base.Name, "step", "step must not be 0")
	}

	output, err := args.Require[*channel.Writer](base.Args, "output")
	if err != nil {
		return nil, err
	}

	return &Range{
		Base:   base,
		start:  start,
		end:    end,
		step:   step,
		output: output,
	}, nil
}

func (r *Range) Exec(ctx context.Context) error {
	for i := r.start; r.more(i); i += r.step {
		err := r.output.PushString(ctx, strconv.Itoa(i))
		if err != nil {
			return errors.Wrapf(err, "unable to push %d", i)
		}

		if r.last(i) {
			break
		}
	}

	return r.output.Close()
}

func (r *Range) more(i int) bool {
	if r.step > 0 {
		return i < r.end
	}

	return i > r.end
}

// last reports whether i+step would overflow int.
func (r *Range) last(i int) bool {
	if r.step > 0 {
		return i > math.MaxInt-r.step
	}

	return i < math.MinInt-r.step
}
