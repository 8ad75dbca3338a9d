// Package demo assembles the pipelines run by stagerun. Every demo starts with a range stage and ends with a
// reporter stage logging what reaches it.
package demo

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/pkg/errors"

	"github.com/askiada/go-stage/internal/config"
	"github.com/askiada/go-stage/pkg/pipeline"
	"github.com/askiada/go-stage/pkg/pipeline/args"
	"github.com/askiada/go-stage/pkg/pipeline/model"
	"github.com/askiada/go-stage/pkg/processors"
)

var ErrUnknownDemo = errors.New("unknown demo")

type link struct {
	processor string
	values    map[string]args.Value
}

type builder func(cfg config.Config) ([]link, error)

var demos = map[string]builder{
	"range":  rangeDemo,
	"square": squareDemo,
	"negate": negateDemo,
	"script": scriptDemo,
}

// Names returns the sorted names of the demos.
func Names() []string {
	return slices.Sorted(maps.Keys(demos))
}

func source(cfg config.Config) link {
	return link{processor: "range", values: map[string]args.Value{
		"start": args.Int(int64(cfg.Range.Start)),
		"end":   args.Int(int64(cfg.Range.End)),
		"step":  args.Int(int64(cfg.Range.Step)),
	}}
}

func reporter(prefix string) link {
	return link{processor: "reporter", values: map[string]args.Value{"prefix": args.String(prefix)}}
}

func rangeDemo(cfg config.Config) ([]link, error) {
	whitelist := make([]args.Value, 0, len(cfg.Filter.Whitelist))
	for _, v := range cfg.Filter.Whitelist {
		whitelist = append(whitelist, args.Int(int64(v)))
	}

	return []link{
		source(cfg),
		{processor: "filter", values: map[string]args.Value{"whitelist": args.List(whitelist...)}},
		reporter(""),
	}, nil
}

func squareDemo(cfg config.Config) ([]link, error) {
	return []link{source(cfg), {processor: "square"}, reporter("squared: ")}, nil
}

func negateDemo(cfg config.Config) ([]link, error) {
	return []link{source(cfg), {processor: "transparent"}, {processor: "negator"}, reporter("negated: ")}, nil
}

func scriptDemo(cfg config.Config) ([]link, error) {
	src, err := cfg.ScriptSource()
	if err != nil {
		return nil, err
	}

	return []link{
		source(cfg),
		{processor: "script", values: map[string]args.Value{
			"script":   args.String(src),
			"function": args.String(cfg.Script.Function),
		}},
		reporter(""),
	}, nil
}

// Build creates the pipeline of the demo name. Each stage is named after its processor and reads the output of the
// previous one.
func Build(ctx context.Context, name string, cfg config.Config, logger *slog.Logger, opts ...model.PipelineOption,
) (*pipeline.Pipeline, error) {
	build, ok := demos[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownDemo, "%q, expected one of %v", name, Names())
	}

	links, err := build(cfg)
	if err != nil {
		return nil, err
	}

	pipe, err := pipeline.New(ctx,
		pipeline.WithLogger(logger),
		pipeline.WithCapacity(cfg.Pipeline.Capacity),
		pipeline.WithOptions(opts...),
	)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create pipeline")
	}

	var previous *args.Value

	for i, l := range links {
		factory, ok := processors.Lookup(l.processor)
		if !ok {
			return nil, errors.Errorf("unknown processor %s", l.processor)
		}

		values := maps.Clone(l.values)
		if values == nil {
			values = make(map[string]args.Value)
		}

		if previous != nil {
			values["input"] = *previous
		}

		if i < len(links)-1 {
			ch, err := pipe.AddChannel(l.processor + "-out")
			if err != nil {
				return nil, errors.Wrap(err, "unable to add channel")
			}

			values["output"] = args.Writer(ch.Writer())
			next := args.Reader(ch.Reader())
			previous = &next
		}

		err = pipe.AddStage(l.processor, factory, values)
		if err != nil {
			return nil, err
		}
	}

	return pipe, nil
}
