package pipeline_test

import (
	"context"
	"io"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/askiada/go-stage/pkg/pipeline/args"
	"github.com/askiada/go-stage/pkg/pipeline/channel"
	"github.com/askiada/go-stage/pkg/pipeline/stage"
)

// source pushes 0..total-1 to its output. A negative total never stops.
type source struct {
	stage.Base
	output   *channel.Writer
	total    int
	failAt   int
	keepOpen bool
}

func newSource(base stage.Base) (stage.Stage, error) {
	output, err := args.Require[*channel.Writer](base.Args, "output")
	if err != nil {
		return nil, err
	}

	total, err := args.Require[int](base.Args, "total")
	if err != nil {
		return nil, err
	}

	failAt, err := args.Optional[int](base.Args, "failAt")
	if err != nil {
		return nil, err
	}

	keepOpen, err := args.Optional[bool](base.Args, "keepOpen")
	if err != nil {
		return nil, err
	}

	return &source{
		Base:     base,
		output:   output,
		total:    total,
		failAt:   failAt.OrElse(-1),
		keepOpen: keepOpen.OrElse(false),
	}, nil
}

func (s *source) Exec(ctx context.Context) error {
	for i := 0; s.total < 0 || i < s.total; i++ {
		if i == s.failAt {
			return assert.AnError
		}

		err := s.output.PushString(ctx, strconv.Itoa(i))
		if err != nil {
			return err
		}
	}

	if s.keepOpen {
		return nil
	}

	return s.output.Close()
}

type relay struct {
	stage.Base
	input  *channel.Reader
	output *channel.Writer
}

func newRelay(base stage.Base) (stage.Stage, error) {
	input, err := args.Require[*channel.Reader](base.Args, "input")
	if err != nil {
		return nil, err
	}

	output, err := args.Require[*channel.Writer](base.Args, "output")
	if err != nil {
		return nil, err
	}

	return &relay{Base: base, input: input, output: output}, nil
}

func (r *relay) Exec(ctx context.Context) error {
	for {
		msg, err := r.input.Read(ctx)
		if err == io.EOF {
			return r.output.Close()
		}

		if err != nil {
			return err
		}

		err = r.output.Push(ctx, msg)
		if err != nil {
			return err
		}
	}
}

// collector gathers every message of its input.
type collector struct {
	mu    sync.Mutex
	items []string
	// after is called with the number of items collected so far.
	after func(count int)
}

func (c *collector) factory(base stage.Base) (stage.Stage, error) {
	input, err := args.Require[*channel.Reader](base.Args, "input")
	if err != nil {
		return nil, err
	}

	return &sink{Base: base, input: input, c: c}, nil
}

func (c *collector) got() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string{}, c.items...)
}

type sink struct {
	stage.Base
	input *channel.Reader
	c     *collector
}

func (s *sink) Exec(ctx context.Context) error {
	for {
		msg, err := s.input.Read(ctx)
		if err == io.EOF {
			return nil
		}

		if err != nil {
			return err
		}

		s.c.mu.Lock()
		s.c.items = append(s.c.items, msg.String())
		count := len(s.c.items)
		s.c.mu.Unlock()

		if s.c.after != nil {
			s.c.after(count)
		}
	}
}

type failingSetup struct {
	stage.Base
}

func (failingSetup) Setup(context.Context) error {
	return assert.AnError
}

func (failingSetup) Exec(context.Context) error {
	return nil
}

func numbers(t *testing.T, total int) []string {
	t.Helper()

	res := []string{}
	for i := range total {
		res = append(res, strconv.Itoa(i))
	}

	return res
}
