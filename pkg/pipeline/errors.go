package pipeline

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrPipelineMustBeSet = errors.New("p must be set")
	ErrNameMustBeSet     = errors.New("name must be set")
	ErrFactoryMustBeSet  = errors.New("factory must be set")
	ErrDuplicateChannel  = errors.New("channel already exists")
	ErrDuplicateStage    = errors.New("stage already exists")
	ErrUnknownChannel    = errors.New("channel does not belong to the pipeline")
	// ErrEndpointClaimed is returned when a Reader or a Writer is wired into a second stage.
	ErrEndpointClaimed = errors.New("channel endpoint already owned by another stage")
	ErrDanglingChannel = errors.New("channel has no producer or no consumer")
	ErrCycle           = errors.New("stages form a cycle")
	ErrAlreadyRun      = errors.New("pipeline already run")
)

type errorChans struct {
	mu   sync.Mutex
	list []*errorChan
}

func (ec *errorChans) add(errChan *errorChan) {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.list = append(ec.list, errChan)
}

type errorChan struct {
	c    <-chan error
	name string
}

func newErrorChan(name string, c <-chan error) *errorChan {
	return &errorChan{
		c:    c,
		name: name,
	}
}

// mergeErrors merges multiple channels of errors, prefixing each error with the name of its channel.
// Based on https://blog.golang.org/pipelines.
func mergeErrors(cs ...*errorChan) <-chan error {
	var wg sync.WaitGroup
	// The output channel can hold one error per input channel, so that a reader returning early never blocks the
	// stages still reporting.
	out := make(chan error, len(cs))

	output := func(c *errorChan) {
		defer wg.Done()

		if c.c == nil {
			return
		}

		for n := range c.c {
			out <- errors.Wrap(n, c.name)
		}
	}

	wg.Add(len(cs))

	for _, c := range cs {
		go output(c)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
