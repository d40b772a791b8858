package writer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/medsched/usecase"
)

var (
	// ErrClosed is returned by Do once Stop has been called.
	ErrClosed = errors.New("writer: closed")
	// ErrNotStarted is returned by Do before Start.
	ErrNotStarted = errors.New("writer: not started")
)

// Job is one read-modify-write cycle against a shared collection.
type Job = func(ctx context.Context) error

type request struct {
	ctx    context.Context
	job    Job
	result chan error
}

// Writer runs every submitted Job on a single goroutine, in submission order.
// A Job that has been accepted runs to completion even if the submitter stops
// waiting; its context is detached from the caller and bounded by the timeout.
type Writer struct {
	name    string
	timeout time.Duration
	logger  *zap.Logger

	jobs   chan request
	stopCh chan struct{}
	done   chan struct{}

	mu      sync.RWMutex
	closed  bool
	started bool
}

func New(name string, timeout time.Duration, queueSize int, logger *zap.Logger) *Writer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		name:    name,
		timeout: timeout,
		logger:  logger.With(zap.String("writer", name)),
		jobs:    make(chan request, queueSize),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the owner goroutine. Calling it twice is a no-op.
func (w *Writer) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.closed {
		return
	}
	w.started = true
	go w.loop()
}

// Stop refuses new jobs, runs the ones already queued and waits for the loop to exit.
func (w *Writer) Stop(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	started := w.started
	w.mu.Unlock()

	close(w.stopCh)
	if !started {
		return nil
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do queues job and waits for its result or for ctx to end. It fails fast with
// ErrNotStarted before Start and ErrClosed after Stop.
func (w *Writer) Do(ctx context.Context, job Job) error {
	if job == nil {
		return nil
	}

	w.mu.RLock()
	closed, started := w.closed, w.started
	w.mu.RUnlock()
	switch {
	case closed:
		return ErrClosed
	case !started:
		return ErrNotStarted
	}

	req := request{ctx: ctx, job: job, result: make(chan error, 1)}
	select {
	case w.jobs <- req:
	case <-w.stopCh:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.result:
		return err
	case <-w.done:
		// the loop has exited; a job it never picked up will not run
		select {
		case err := <-req.result:
			return err
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		w.logger.Debug("caller stopped waiting, job continues", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

func (w *Writer) loop() {
	defer close(w.done)
	for {
		select {
		case req := <-w.jobs:
			w.run(req)
		case <-w.stopCh:
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	for {
		select {
		case req := <-w.jobs:
			w.run(req)
		default:
			return
		}
	}
}

var _ usecase.MutationQueue = (*Writer)(nil)

func (w *Writer) run(req request) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(req.ctx), w.timeout)
	defer cancel()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("writer %s: job panicked: %v", w.name, r)
			}
		}()
		return req.job(ctx)
	}()
	if err != nil {
		w.logger.Warn("job failed", zap.Error(err))
	}
	req.result <- err
}
