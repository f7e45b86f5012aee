package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPoolClosed is returned if a Submit is attempted after Close.
var ErrPoolClosed = errors.New("pipeline: runner closed")

// Progress is one step of a running task.
type Progress struct {
	Fraction float64
	Message  string
}

// Task is a unit of work submitted to the Runner. report never blocks.
type Task func(ctx context.Context, report func(Progress)) error

// Job is the handle of a submitted task.
type Job struct {
	task     Task
	progress chan Progress
	done     chan struct{}
	err      error
}

// Progress returns the job's progress updates. Updates are dropped when the
// buffer is full; the channel is closed when the task ends.
func (j *Job) Progress() <-chan Progress { return j.progress }

// Wait blocks until the task ends and returns its error.
func (j *Job) Wait() error {
	<-j.done
	return j.err
}

// Done is closed when the task ends.
func (j *Job) Done() <-chan struct{} { return j.done }

func (j *Job) report(p Progress) {
	select {
	case j.progress <- p:
	default:
	}
}

func (j *Job) run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			j.err = fmt.Errorf("pipeline: task panicked: %v", r)
		}
		close(j.progress)
		close(j.done)
	}()
	if err := ctx.Err(); err != nil {
		j.err = err
		return
	}
	j.err = j.task(ctx, j.report)
}

// Runner runs tasks on a fixed number of goroutines, one task per
// goroutine at a time.
type Runner struct {
	jobs    chan *Job
	wg      sync.WaitGroup
	workers int
	buffer  int

	quit     chan struct{}
	quitOnce sync.Once
	closeMu  sync.RWMutex
	closed   bool
}

// NewRunner creates a runner with the given number of workers. buffer sizes
// each job's progress channel.
func NewRunner(workers, buffer int) *Runner {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Runner{
		jobs:    make(chan *Job, workers*2),
		workers: workers,
		buffer:  buffer,
		quit:    make(chan struct{}),
	}
}

// Start begins the worker goroutines. Jobs dequeued after ctx is done end
// with ctx's error.
func (r *Runner) Start(ctx context.Context) {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			for j := range r.jobs {
				j.run(ctx)
			}
		}()
	}
}

// Submit enqueues task. It blocks while the queue is full, until ctx is done
// or the runner is closed.
func (r *Runner) Submit(ctx context.Context, task Task) (*Job, error) {
	r.closeMu.RLock()
	defer r.closeMu.RUnlock()
	if r.closed {
		return nil, ErrPoolClosed
	}
	j := &Job{
		task:     task,
		progress: make(chan Progress, r.buffer),
		done:     make(chan struct{}),
	}
	select {
	case r.jobs <- j:
		return j, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.quit:
		return nil, ErrPoolClosed
	}
}

// Close stops accepting new tasks and waits for queued ones to finish.
func (r *Runner) Close() {
	r.quitOnce.Do(func() { close(r.quit) })
	r.closeMu.Lock()
	if r.closed {
		r.closeMu.Unlock()
		return
	}
	r.closed = true
	close(r.jobs)
	r.closeMu.Unlock()
	r.wg.Wait()
	// Without started workers queued jobs would never end.
	for j := range r.jobs {
		j.err = ErrPoolClosed
		close(j.progress)
		close(j.done)
	}
}
