package pipeline

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-stage/pkg/pipeline/args"
	"github.com/askiada/go-stage/pkg/pipeline/channel"
	"github.com/askiada/go-stage/pkg/pipeline/model"
	"github.com/askiada/go-stage/pkg/pipeline/stage"
)

// Pipeline is a set of stages connected by channels.
type Pipeline struct {
	ctx      context.Context
	id       string
	logger   *slog.Logger
	capacity int
	opts     []model.PipelineOption
	hookMu   sync.Mutex
	errcList *errorChans

	mu           sync.Mutex
	channels     map[string]*wiredChannel
	channelOrder []string
	stages       []*wiredStage
	stageNames   map[string]struct{}
	ran          bool
}

type wiredChannel struct {
	ch   *channel.Channel
	info *model.ChannelInfo
}

type wiredStage struct {
	lc   *stage.Lifecycle
	info *model.StageInfo
}

// New creates a new pipeline. ctx bounds the whole run.
func New(ctx context.Context, opts ...Option) (*Pipeline, error) {
	pipe := &Pipeline{
		ctx:        ctx,
		id:         uuid.NewString(),
		capacity:   channel.DefaultCapacity,
		errcList:   &errorChans{},
		channels:   make(map[string]*wiredChannel),
		stageNames: make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(pipe)
	}

	if pipe.logger == nil {
		pipe.logger = slog.Default()
	}

	pipe.logger = pipe.logger.With("pipeline", pipe.id)

	for _, opt := range pipe.opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// ID returns the unique identifier of the pipeline, attached to every log record.
func (p *Pipeline) ID() string {
	return p.id
}

// Channel returns the channel registered under name.
func (p *Pipeline) Channel(name string) (*channel.Channel, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	wc, ok := p.channels[name]
	if !ok {
		return nil, false
	}

	return wc.ch, true
}

// AddChannel creates a channel owned by the pipeline. Its Writer and its Reader can then be handed to one stage
// each, through AddStage.
func (p *Pipeline) AddChannel(name string) (*channel.Channel, error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}

	if name == "" {
		return nil, ErrNameMustBeSet
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ran {
		return nil, ErrAlreadyRun
	}

	if _, ok := p.channels[name]; ok {
		return nil, errors.Wrapf(ErrDuplicateChannel, "channel %s", name)
	}

	info := &model.ChannelInfo{
		Name:     name,
		Capacity: p.capacity,
	}

	chOpts := []channel.Option{channel.WithCapacity(p.capacity)}
	if len(p.opts) > 0 {
		chOpts = append(chOpts, channel.WithTracer(&channelTracer{p: p, info: info}))
	}

	ch := channel.New(name, chOpts...)
	info.ID = ch.ID()

	p.channels[name] = &wiredChannel{ch: ch, info: info}
	p.channelOrder = append(p.channelOrder, name)

	return ch, nil
}

// AddStage constructs the stage name from factory over values. Every Reader and Writer found in values becomes owned
// by the stage: wiring an endpoint into a second stage fails. Configuration errors reported by the factory are
// returned as they are.
func (p *Pipeline) AddStage(name string, factory stage.Factory, values map[string]args.Value) error {
	if p == nil {
		return ErrPipelineMustBeSet
	}

	if name == "" {
		return ErrNameMustBeSet
	}

	if factory == nil {
		return errors.Wrapf(ErrFactoryMustBeSet, "stage %s", name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ran {
		return ErrAlreadyRun
	}

	if _, ok := p.stageNames[name]; ok {
		return errors.Wrapf(ErrDuplicateStage, "stage %s", name)
	}

	store := args.NewStore(values)

	inputs, err := claim(p, name, store.Readers(), func(info *model.ChannelInfo) string { return info.Consumer })
	if err != nil {
		return err
	}

	outputs, err := claim(p, name, store.Writers(), func(info *model.ChannelInfo) string { return info.Producer })
	if err != nil {
		return err
	}

	lc, err := stage.New(name, factory, store, p.logger)
	if err != nil {
		return err
	}

	info := &model.StageInfo{Name: name}

	for _, wc := range inputs {
		wc.info.Consumer = name
		info.Inputs = append(info.Inputs, wc.info.Name)
	}

	for _, wc := range outputs {
		wc.info.Producer = name
		info.Outputs = append(info.Outputs, wc.info.Name)
	}

	p.stages = append(p.stages, &wiredStage{lc: lc, info: info})
	p.stageNames[name] = struct{}{}

	return nil
}

type endpoint interface {
	Channel() *channel.Channel
}

// claim returns the wired channels behind endpoints, failing when one of them is foreign to the pipeline or already
// owned. p.mu must be held.
func claim[E endpoint](p *Pipeline, stageName string, endpoints []E, owner func(*model.ChannelInfo) string,
) ([]*wiredChannel, error) {
	res := []*wiredChannel{}

	for _, e := range endpoints {
		ch := e.Channel()

		wc, ok := p.channels[ch.Name()]
		if !ok || wc.ch != ch {
			return nil, errors.Wrapf(ErrUnknownChannel, "stage %s: channel %s", stageName, ch.Name())
		}

		if slices.Contains(res, wc) {
			continue
		}

		if current := owner(wc.info); current != "" {
			return nil, errors.Wrapf(ErrEndpointClaimed, "stage %s: channel %s is already used by %s",
				stageName, ch.Name(), current)
		}

		res = append(res, wc)
	}

	return res, nil
}

// Run sets up every stage, then executes them all concurrently and waits for them to finish.
// The first error cancels the run and shuts every channel down, so that no stage stays blocked.
func (p *Pipeline) Run() error {
	if p == nil {
		return ErrPipelineMustBeSet
	}

	p.mu.Lock()
	if p.ran {
		p.mu.Unlock()

		return ErrAlreadyRun
	}
	p.ran = true
	p.mu.Unlock()

	stages, err := p.validate()
	if err != nil {
		return err
	}

	err = p.prepare(stages)
	if err != nil {
		return err
	}

	dCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()

	startTime := time.Now()
	p.logger.Info("starting pipeline", "stages", len(stages), "channels", len(p.channelOrder))

	err = p.setup(dCtx, stages)
	if err != nil {
		p.shutdown()
		p.logger.Error("pipeline setup failed", "error", err.Error())

		return err
	}

	for _, ws := range stages {
		p.startStage(dCtx, ws)
	}

	// Wait for all stages to finish.
	err = p.waitForPipeline(cancel, p.errcList.list...)
	if err != nil {
		p.logger.Error("pipeline failed", "error", err.Error(), "elapsed", time.Since(startTime))

		return err
	}

	p.logger.Info("pipeline finished", "elapsed", time.Since(startTime))

	return p.finishRun()
}

// validate checks that every channel links two stages and that the stages form a DAG. It returns the stages in
// topological order.
func (p *Pipeline) validate() ([]*wiredStage, error) {
	gra := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())

	byName := make(map[string]*wiredStage, len(p.stages))

	for _, ws := range p.stages {
		err := gra.AddVertex(ws.info.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to add stage %s", ws.info.Name)
		}

		byName[ws.info.Name] = ws
	}

	for _, name := range p.channelOrder {
		info := p.channels[name].info
		if info.Producer == "" || info.Consumer == "" {
			return nil, errors.Wrapf(ErrDanglingChannel, "channel %s (producer %q, consumer %q)",
				name, info.Producer, info.Consumer)
		}

		err := gra.AddEdge(info.Producer, info.Consumer)

		switch {
		case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
		case errors.Is(err, graph.ErrEdgeCreatesCycle):
			return nil, errors.Wrapf(ErrCycle, "channel %s from %s to %s", name, info.Producer, info.Consumer)
		default:
			return nil, errors.Wrapf(err, "unable to add channel %s", name)
		}
	}

	order, err := graph.StableTopologicalSort(gra, func(a, b string) bool { return a < b })
	if err != nil {
		return nil, errors.Wrap(err, "unable to sort stages")
	}

	stages := make([]*wiredStage, 0, len(order))
	for _, name := range order {
		stages = append(stages, byName[name])
	}

	return stages, nil
}

func (p *Pipeline) prepare(stages []*wiredStage) error {
	for _, opt := range p.opts {
		for _, ws := range stages {
			err := opt.PrepareStage(ws.info)
			if err != nil {
				return errors.Wrapf(err, "unable to prepare stage %s", ws.info.Name)
			}
		}

		for _, name := range p.channelOrder {
			err := opt.PrepareChannel(p.channels[name].info)
			if err != nil {
				return errors.Wrapf(err, "unable to prepare channel %s", name)
			}
		}
	}

	return nil
}

// setup runs every stage Setup concurrently. ctx outlives the call: subscriptions made during Setup keep it.
func (p *Pipeline) setup(ctx context.Context, stages []*wiredStage) error {
	var grp errgroup.Group

	for _, ws := range stages {
		grp.Go(func() error {
			return errors.Wrap(ws.lc.Setup(ctx), ws.info.Name)
		})
	}

	return grp.Wait()
}

func (p *Pipeline) startStage(ctx context.Context, ws *wiredStage) {
	errC := make(chan error, 1)
	p.errcList.add(newErrorChan(ws.info.Name, errC))

	go func() {
		defer close(errC)

		startTime := time.Now()

		err := ws.lc.Exec(ctx)
		if err != nil {
			errC <- err

			return
		}

		p.hook("AfterStage", func(opt model.PipelineOption) error {
			return opt.AfterStage(ws.info, time.Since(startTime))
		})
	}()
}

// waitForPipeline waits for results from all error channels.
// The first error cancels the run and shuts every channel down. Errors caused by that teardown are only reported
// when no stage failed on its own, the other ones are aggregated.
func (p *Pipeline) waitForPipeline(cancel context.CancelFunc, errs ...*errorChan) error {
	var (
		result   *multierror.Error
		teardown error
		stopped  bool
	)

	for err := range mergeErrors(errs...) {
		if !stopped {
			stopped = true

			cancel()
			p.shutdown()
		}

		if errors.Is(err, channel.ErrShutdown) || errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			p.logger.Debug("stage stopped by pipeline shutdown", "error", err.Error())

			if teardown == nil {
				teardown = err
			}

			continue
		}

		result = multierror.Append(result, err)
	}

	switch {
	case result != nil && len(result.Errors) == 1:
		return result.Errors[0]
	case result != nil:
		return result
	case teardown != nil && p.ctx.Err() != nil:
		return errors.Wrap(p.ctx.Err(), "pipeline canceled")
	default:
		return teardown
	}
}

func (p *Pipeline) shutdown() {
	for _, name := range p.channelOrder {
		p.channels[name].ch.Shutdown()
	}
}

func (p *Pipeline) hook(name string, fn func(opt model.PipelineOption) error) {
	p.hookMu.Lock()
	defer p.hookMu.Unlock()

	for _, opt := range p.opts {
		err := fn(opt)
		if err != nil {
			p.logger.Warn("pipeline option failed", "hook", name, "error", err.Error())
		}
	}
}

func (p *Pipeline) finishRun() error {
	for _, opt := range p.opts {
		err := opt.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}
