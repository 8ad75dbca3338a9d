package processors

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/askiada/go-stage/pkg/pipeline/args"
	"github.com/askiada/go-stage/pkg/pipeline/channel"
	"github.com/askiada/go-stage/pkg/pipeline/stage"
)

// Filter forwards the integers of its whitelist and drops everything else. Malformed messages are logged and skipped.
type Filter struct {
	stage.Base
	whitelist map[int]struct{}
	input     *channel.Reader
	output    *channel.Writer
}

func NewFilter(base stage.Base) (stage.Stage, error) {
	whitelist, err := args.Require[[]int](base.Args, "whitelist")
	if err != nil {
		return nil, err
	}

	input, err := args.Require[*channel.Reader](base.Args, "input")
	if err != nil {
		return nil, err
	}

	output, err := args.Require[*channel.Writer](base.Args, "output")
	if err != nil {
		return nil, err
	}

	allowed := make(map[int]struct{}, len(whitelist))
	for _, v := range whitelist {
		allowed[v] = struct{}{}
	}

	return &Filter{
		Base:      base,
		whitelist: allowed,
		input:     input,
		output:    output,
	}, nil
}

func (f *Filter) Exec(ctx context.Context) error {
	for {
		msg, err := f.input.Read(ctx)
		if err == io.EOF {
			break
		}

		if err != nil {
			return err
		}

		value, err := strconv.Atoi(strings.TrimSpace(msg.String()))
		if err != nil {
			f.Log.Warn("skipping malformed value", "value", msg.String(), "error", err.Error())

			continue
		}

		if _, ok := f.whitelist[value]; !ok {
			f.Log.Debug("blocked value", "value", value)

			continue
		}

		f.Log.Debug("allowed value", "value", value)

		err = f.output.Push(ctx, msg)
		if err != nil {
			return err
		}
	}

	return f.output.Close()
}
