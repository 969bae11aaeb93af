package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type funcTask struct {
	name string
	run  func(ctx context.Context) error
}

func (t *funcTask) Name() string                  { return t.name }
func (t *funcTask) Run(ctx context.Context) error { return t.run(ctx) }

func TestQueueRunsTasks(t *testing.T) {
	q := NewQueue(3, 16)
	q.Start()

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		err := q.Enqueue(&funcTask{name: "count", run: func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}})
		if err != nil {
			t.Fatalf("Unexpected error enqueueing: %v", err)
		}
	}

	if err := q.Shutdown(context.Background()); err != nil {
		t.Fatalf("Unexpected error shutting down: %v", err)
	}
	if got := ran.Load(); got != 10 {
		t.Errorf("Ran %d tasks, want 10", got)
	}
}

func TestQueueIsolatesFailures(t *testing.T) {
	q := NewQueue(1, 8)
	q.Start()

	var ran atomic.Int32
	tasks := []Task{
		&funcTask{name: "fails", run: func(ctx context.Context) error { return errors.New("boom") }},
		&funcTask{name: "panics", run: func(ctx context.Context) error { panic("boom") }},
		&funcTask{name: "ok", run: func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}},
	}
	for _, task := range tasks {
		if err := q.Enqueue(task); err != nil {
			t.Fatalf("Unexpected error enqueueing %s: %v", task.Name(), err)
		}
	}

	if err := q.Shutdown(context.Background()); err != nil {
		t.Fatalf("Unexpected error shutting down: %v", err)
	}
	if ran.Load() != 1 {
		t.Errorf("Task after a failure and a panic did not run")
	}
}

func TestQueueDropsWhenFull(t *testing.T) {
	q := NewQueue(1, 1)
	q.Start()

	release := make(chan struct{})
	started := make(chan struct{})
	blocker := &funcTask{name: "blocker", run: func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}}
	if err := q.Enqueue(blocker); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	<-started

	noop := func(ctx context.Context) error { return nil }
	if err := q.Enqueue(&funcTask{name: "buffered", run: noop}); err != nil {
		t.Fatalf("Unexpected error filling buffer: %v", err)
	}
	if err := q.Enqueue(&funcTask{name: "dropped", run: noop}); err == nil {
		t.Errorf("Enqueue on a full queue succeeded")
	}

	close(release)
	if err := q.Shutdown(context.Background()); err != nil {
		t.Fatalf("Unexpected error shutting down: %v", err)
	}
}

func TestQueueClosed(t *testing.T) {
	q := NewQueue(1, 1)
	q.Start()
	if err := q.Shutdown(context.Background()); err != nil {
		t.Fatalf("Unexpected error shutting down: %v", err)
	}

	err := q.Enqueue(&funcTask{name: "late", run: func(ctx context.Context) error { return nil }})
	if !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Got err %v, want %v", err, ErrQueueClosed)
	}

	// A second shutdown is harmless.
	if err := q.Shutdown(context.Background()); err != nil {
		t.Errorf("Unexpected error on second shutdown: %v", err)
	}
}

func TestQueueShutdownDeadlineCancelsTasks(t *testing.T) {
	q := NewQueue(1, 1)
	q.Start()

	var once sync.Once
	started := make(chan struct{})
	err := q.Enqueue(&funcTask{name: "slow", run: func(ctx context.Context) error {
		once.Do(func() { close(started) })
		<-ctx.Done()
		return ctx.Err()
	}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := q.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Got err %v, want %v", err, context.DeadlineExceeded)
	}
}
