package cache

import (
	"context"
	"log/slog"
	"sync"

	"github.com/FamousArchives/famous-git-cache/errors"
)

// Queue runs submitted tasks one at a time in submission order.
//
// A failing task does not affect the tasks queued behind it. A task that
// panics is reported to its submitter as CodeInternal and the queue keeps
// running.
type Queue struct {
	name   string
	logger *slog.Logger

	mu      sync.Mutex
	pending []*queuedTask
	closed  bool

	wake chan struct{}
	done chan struct{}
}

type queuedTask struct {
	ctx    context.Context
	fn     func(context.Context) error
	result chan error
}

// NewQueue starts a queue with a single worker.
func NewQueue(name string, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	q := &Queue{
		name:   name,
		logger: logger.With("queue", name),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go q.work()
	return q
}

// Submit enqueues fn and blocks until it has run, returning its error.
// Tasks already queued are never canceled; ctx is handed to fn unchanged.
func (q *Queue) Submit(ctx context.Context, fn func(context.Context) error) error {
	t := &queuedTask{ctx: ctx, fn: fn, result: make(chan error, 1)}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return errors.WithContext(
			errors.New(errors.CodeUnavailable, "cache queue is closed"), "queue", q.name)
	}
	q.pending = append(q.pending, t)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}

	return <-t.result
}

// Len returns the number of tasks waiting to run.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close stops accepting tasks, waits for queued ones to finish and stops the
// worker. It is safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
	}
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	<-q.done
}

func (q *Queue) work() {
	defer close(q.done)

	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			closed := q.closed
			q.mu.Unlock()
			if closed {
				return
			}
			<-q.wake
			continue
		}
		t := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		t.result <- q.run(t)
	}
}

func (q *Queue) run(t *queuedTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("queued task panicked", "panic", r)
			err = errors.WithContext(
				errors.Newf(errors.CodeInternal, "queued task panicked: %v", r), "queue", q.name)
		}
	}()

	ctx := t.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	if err := t.fn(ctx); err != nil {
		q.logger.Debug("queued task failed", "error", err)
		return err
	}
	return nil
}
