// Package jobs runs fire-and-forget background work on a small worker pool.
// Tasks run at most once; failures are logged and dropped.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var ErrQueueClosed = errors.New("job queue is closed")

// Task is one unit of background work.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// Queue feeds tasks to a fixed set of workers through a bounded buffer.
type Queue struct {
	tasks   chan Task
	workers int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewQueue creates a queue with the given worker count and buffer size. Call
// Start before enqueueing.
func NewQueue(workers, size int) *Queue {
	if workers < 1 {
		workers = 1
	}
	if size < 0 {
		size = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		tasks:   make(chan Task, size),
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers.
func (q *Queue) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work(i)
	}
}

// Enqueue hands a task to the workers without blocking. A full or closed
// queue drops the task and returns an error.
func (q *Queue) Enqueue(t Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- t:
		return nil
	default:
		return fmt.Errorf("job queue full, dropping %s", t.Name())
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish. If ctx
// ends first, running tasks see their context cancelled.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}

func (q *Queue) work(id int) {
	defer q.wg.Done()
	for t := range q.tasks {
		q.run(id, t)
	}
}

func (q *Queue) run(worker int, t Task) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(q.ctx, "Background task panicked", slog.String("task", t.Name()), slog.Int("worker", worker), slog.Any("panic", r))
		}
	}()

	if err := t.Run(q.ctx); err != nil {
		slog.ErrorContext(q.ctx, "Background task failed", slog.String("task", t.Name()), slog.Int("worker", worker), slog.Any("err", err))
		return
	}
	slog.DebugContext(q.ctx, "Background task finished", slog.String("task", t.Name()), slog.Int("worker", worker))
}
