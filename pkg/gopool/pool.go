// Package gopool provides a bounded goroutine pool used to cap the number
// of goroutines spent on websocket connection handling.
package gopool

import (
	"errors"
	"time"
)

// ErrScheduleTimeout is returned by ScheduleTimeout when no worker became
// available within the given timeout.
var ErrScheduleTimeout = errors.New("gopool: schedule error: timed out")

// Pool contains the logic of goroutine reuse.
type Pool struct {
	sem  chan struct{}
	work chan func()
}

// NewPool creates a new goroutine pool with the given size of reusable
// goroutines, a queue for pending tasks and the number of goroutines
// spawned up-front.
func NewPool(size, queue, spawn int) *Pool {
	if spawn <= 0 && queue > 0 {
		panic("gopool: dead queue configuration detected")
	}
	if spawn > size {
		panic("gopool: spawn > size")
	}
	p := &Pool{
		sem:  make(chan struct{}, size),
		work: make(chan func(), queue),
	}
	for i := 0; i < spawn; i++ {
		p.sem <- struct{}{}
		go p.worker(func() {})
	}

	return p
}

// Schedule schedules the task to be executed over the pool's workers.
// It blocks until a worker or a queue slot is available.
func (p *Pool) Schedule(task func()) {
	_ = p.schedule(task, nil)
}

// ScheduleTimeout schedules the task to be executed over the pool's workers.
// It returns ErrScheduleTimeout when no worker becomes available within the
// given timeout.
func (p *Pool) ScheduleTimeout(timeout time.Duration, task func()) error {
	return p.schedule(task, time.After(timeout))
}

func (p *Pool) schedule(task func(), timeout <-chan time.Time) error {
	select {
	case <-timeout:
		return ErrScheduleTimeout
	case p.work <- task:
		return nil
	case p.sem <- struct{}{}:
		go p.worker(task)
		return nil
	}
}

func (p *Pool) worker(task func()) {
	defer func() { <-p.sem }()

	task()

	for task := range p.work {
		task()
	}
}
