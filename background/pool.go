package background

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Triet1705/client-hub-backend/config"
	"github.com/Triet1705/client-hub-backend/services/auth"
	"github.com/Triet1705/client-hub-backend/services/logging"
	"github.com/Triet1705/client-hub-backend/tenant"
	"go.uber.org/zap"
)

var ErrQueueFull = errors.New("background queue full")

type task struct {
	name string
	ctx  context.Context
	fn   func(ctx context.Context) error
}

// Pool runs deferred work (audit writes, alert mail) on a bounded set of
// workers. Background tasks never inherit ambient request state; Submit
// captures the tenant id and principal at the handoff point and re-installs
// them on a fresh context that outlives the request.
type Pool struct {
	logger *logging.Service
	tasks  chan task
	wg     sync.WaitGroup
	once   sync.Once
}

func NewPool(cfg *config.Config, logger *logging.Service) *Pool {
	workers := cfg.Async.Workers
	if workers <= 0 {
		workers = 1
	}
	queueSize := cfg.Async.QueueSize
	if queueSize < 0 {
		queueSize = 0
	}

	p := &Pool{
		logger: logger,
		tasks:  make(chan task, queueSize),
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	logger.Info("started background pool",
		zap.Int("workers", workers),
		zap.Int("queue_size", queueSize))

	return p
}

// Submit enqueues fn with the caller's security identity propagated onto a
// detached context. Returns ErrQueueFull instead of blocking the request
// worker when the queue is saturated.
func (p *Pool) Submit(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	taskCtx := propagate(ctx)

	select {
	case p.tasks <- task{name: name, ctx: taskCtx, fn: fn}:
		return nil
	default:
		p.logger.Warn("background task dropped, queue full",
			zap.String("task", name))
		return ErrQueueFull
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.tasks {
		p.run(t)
	}
}

func (p *Pool) run(t task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("background task panicked",
				zap.String("task", t.name),
				zap.Any("panic", r))
		}
	}()

	if err := t.fn(t.ctx); err != nil {
		p.logger.Warn("background task failed",
			zap.String("task", t.name),
			zap.Error(err))
	}
}

// Stop drains queued tasks and waits for workers, bounded by ctx.
func (p *Pool) Stop(ctx context.Context) error {
	p.once.Do(func() {
		close(p.tasks)
	})

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(30 * time.Second):
		return errors.New("timed out waiting for background pool to drain")
	}
}

// propagate copies the security identity, never the request context itself:
// the request context is cancelled when the response is written, which would
// kill the deferred work it spawned.
func propagate(ctx context.Context) context.Context {
	taskCtx := context.Background()

	if id, ok := tenant.FromContext(ctx); ok {
		taskCtx = tenant.WithID(taskCtx, id)
	}
	if tenant.IsSystemScope(ctx) {
		taskCtx = tenant.WithSystemScope(taskCtx)
	}
	if principal, ok := auth.PrincipalFromContext(ctx); ok {
		taskCtx = auth.ContextWithPrincipal(taskCtx, principal)
	}

	return taskCtx
}
