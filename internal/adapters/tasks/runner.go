// Package tasks provides an in-process deferred task runner implementing
// domain.TaskScheduler. Scheduled tasks are queued and delivered to
// registered handlers on worker goroutines after the triggering request has
// already returned. Delivery is at-least-once: a failed delivery is
// re-enqueued once, so handlers must be idempotent.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"conferencecentral/internal/domain"
)

const (
	defaultQueueSize = 256
	// handlerTimeout bounds a single delivery; tasks are single-shot
	// reads/writes, never open-ended work.
	handlerTimeout = 30 * time.Second
	maxAttempts    = 2
)

type task struct {
	name    string
	payload map[string]string
	attempt int
}

// Runner dispatches scheduled tasks to handlers registered by name.
type Runner struct {
	logger  *slog.Logger
	queue   chan task
	workers int

	mu       sync.RWMutex
	handlers map[string]domain.TaskHandler
	closed   bool

	wg sync.WaitGroup
}

// NewRunner returns a Runner with the given number of worker goroutines.
// Call Handle to register handlers, then Start.
func NewRunner(workers int, logger *slog.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		logger:   logger,
		queue:    make(chan task, defaultQueueSize),
		workers:  workers,
		handlers: make(map[string]domain.TaskHandler),
	}
}

// Handle registers the handler for the named task. Registering after Start
// is allowed; scheduling a task with no handler fails at delivery time.
func (r *Runner) Handle(name string, h domain.TaskHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Start launches the worker goroutines.
func (r *Runner) Start() {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.work()
	}
}

// Schedule enqueues a task for background delivery. It never blocks the
// caller: when the queue is full or the runner is closed it returns an error
// and the caller decides whether that matters (for fire-and-forget refreshes
// it usually does not).
func (r *Runner) Schedule(ctx context.Context, name string, payload map[string]string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return fmt.Errorf("task runner is closed")
	}
	select {
	case r.queue <- task{name: name, payload: payload, attempt: 1}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("task queue full, dropping %q", name)
	}
}

// Close stops accepting new tasks, drains the queue and waits for in-flight
// handlers to finish.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	close(r.queue)
	r.wg.Wait()
}

func (r *Runner) work() {
	defer r.wg.Done()
	for t := range r.queue {
		r.deliver(t)
	}
}

func (r *Runner) deliver(t task) {
	r.mu.RLock()
	h, ok := r.handlers[t.name]
	r.mu.RUnlock()
	if !ok {
		r.logger.Error("no handler for task", "task", t.name)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	err := h(ctx, t.payload)
	cancel()
	if err == nil {
		return
	}

	// Handler failure never propagates to the triggering request. Requeue
	// once; if the queue is gone or full the task is dropped with a log line.
	if t.attempt >= maxAttempts {
		r.logger.Error("task failed, giving up", "task", t.name, "attempt", t.attempt, "error", err)
		return
	}
	r.logger.Warn("task failed, retrying", "task", t.name, "attempt", t.attempt, "error", err)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.logger.Error("task dropped, runner closed", "task", t.name)
		return
	}
	select {
	case r.queue <- task{name: t.name, payload: t.payload, attempt: t.attempt + 1}:
	default:
		r.logger.Error("task dropped, queue full", "task", t.name)
	}
}
