package sched

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStopped is returned when posting to a loop that is no longer running.
var ErrStopped = errors.New("sched: loop stopped")

// Loop is a serial executor. Jobs posted to it run one at a time on the
// goroutine that called Run.
type Loop struct {
	jobs chan func()
	done chan struct{}
	once sync.Once
}

// NewLoop creates a loop with room for buffer queued jobs.
func NewLoop(buffer int) *Loop {
	if buffer < 1 {
		buffer = 1
	}
	return &Loop{
		jobs: make(chan func(), buffer),
		done: make(chan struct{}),
	}
}

// Run processes jobs until ctx is cancelled. It returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-l.jobs:
			job()
		}
	}
}

// Post queues fn. It blocks while the queue is full and returns ErrStopped
// once the loop has exited.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}

	select {
	case l.jobs <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// Do runs fn on the loop and waits for it to finish. It must not be called
// from the loop goroutine.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// After implements Scheduler.
func (l *Loop) After(d time.Duration, fn func()) Cancel {
	t := time.AfterFunc(d, func() {
		_ = l.Post(fn)
	})
	return func() { t.Stop() }
}

// Go implements Scheduler.
func (l *Loop) Go(work func() func()) {
	go func() {
		if apply := work(); apply != nil {
			_ = l.Post(apply)
		}
	}()
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
