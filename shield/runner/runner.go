package runner

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrStopped runner no longer accepts tasks
var ErrStopped = errors.New("runner stopped")

// Runner executes posted tasks in order on a single goroutine. The queue is
// unbounded so a task may post to its own runner without blocking.
type Runner struct {
	name    string
	lock    *sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped bool
	closeCh chan struct{}
	doneCh  chan struct{}
}

// New named runner, tasks only run once Run is called
func New(name string) *Runner {
	return &Runner{
		name:    name,
		lock:    &sync.Mutex{},
		queue:   make([]func(), 0),
		wake:    make(chan struct{}, 1),
		closeCh: make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Name of the runner
func (r *Runner) Name() string {
	return r.name
}

// Post a task, returns false if the runner was stopped
func (r *Runner) Post(task func()) bool {
	r.lock.Lock()
	if r.stopped {
		r.lock.Unlock()
		return false
	}
	r.queue = append(r.queue, task)
	r.lock.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
	return true
}

// Pending number of tasks waiting to run
func (r *Runner) Pending() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.queue)
}

func (r *Runner) take() []func() {
	r.lock.Lock()
	defer r.lock.Unlock()
	tasks := r.queue
	r.queue = make([]func(), 0)
	return tasks
}

// Run tasks until ctx is done or Stop is called. Tasks already queued when
// either happens still run.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.doneCh)
	log.Debug().Str("runner", r.name).Msg("runner started")
	for {
		for _, task := range r.take() {
			r.runTask(task)
		}

		select {
		case <-ctx.Done():
			r.markStopped()
			r.drain()
			return ctx.Err()
		case <-r.closeCh:
			r.drain()
			return nil
		case <-r.wake:
		}
	}
}

// drain runs whatever was accepted before the runner stopped
func (r *Runner) drain() {
	for _, task := range r.take() {
		r.runTask(task)
	}
	log.Debug().Str("runner", r.name).Msg("runner stopped")
}

func (r *Runner) runTask(task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("runner", r.name).Interface("panic", rec).Msg("task panicked")
			panic(rec)
		}
	}()
	task()
}

func (r *Runner) markStopped() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.stopped {
		return false
	}
	r.stopped = true
	return true
}

// Stop accepting tasks and return from Run once the queue is drained
func (r *Runner) Stop() {
	if r.markStopped() {
		close(r.closeCh)
	}
}

// Done is closed when Run returns
func (r *Runner) Done() <-chan struct{} {
	return r.doneCh
}

// Wait blocks until Run returns or ctx is done
func (r *Runner) Wait(ctx context.Context) error {
	select {
	case <-r.doneCh:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), r.name)
	}
}
