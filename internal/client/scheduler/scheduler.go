// Package scheduler runs named periodic and delayed tasks bound to one
// session. Closing the scheduler cancels every task and waits for it, so
// no timer outlives the session.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/logging"
)

// Task is the unit of scheduled work. It should return promptly once ctx
// is cancelled.
type Task func(ctx context.Context)

type entry struct {
	cancel context.CancelFunc
	done   chan struct{}
}

type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    logging.Logger

	mu     sync.Mutex
	tasks  map[string]*entry
	closed bool
	wg     sync.WaitGroup
}

func New(ctx context.Context, log logging.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
		log:    log.With("component", "scheduler"),
		tasks:  make(map[string]*entry),
	}
}

// Every runs fn every interval until cancelled. The first run happens
// after one interval. A task already registered under name is replaced.
func (s *Scheduler) Every(name string, interval time.Duration, fn Task) bool {
	if interval <= 0 {
		return false
	}
	return s.start(name, func(ctx context.Context) {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				fn(ctx)
			}
		}
	})
}

// After runs fn once after delay unless cancelled first.
func (s *Scheduler) After(name string, delay time.Duration, fn Task) bool {
	return s.start(name, func(ctx context.Context) {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
			fn(ctx)
		}
	})
}

func (s *Scheduler) start(name string, run func(ctx context.Context)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if old, ok := s.tasks[name]; ok {
		old.cancel()
	}

	ctx, cancel := context.WithCancel(s.ctx)
	e := &entry{cancel: cancel, done: make(chan struct{})}
	s.tasks[name] = e

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(e.done)
		defer cancel()
		run(ctx)

		s.mu.Lock()
		if s.tasks[name] == e {
			delete(s.tasks, name)
		}
		s.mu.Unlock()
	}()

	s.log.Debug(s.ctx, "task scheduled", "task", name)
	return true
}

// Cancel stops the named task and waits for it to return.
func (s *Scheduler) Cancel(name string) {
	s.mu.Lock()
	e, ok := s.tasks[name]
	if ok {
		delete(s.tasks, name)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	e.cancel()
	<-e.done
}

// Pending returns the number of registered tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Close cancels every task and waits for all of them.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.tasks = make(map[string]*entry)
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
