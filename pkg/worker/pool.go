// Package worker runs detached background tasks: fire-and-forget work that
// must not block the caller and whose failures are only logged.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Task is a unit of background work.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

type Options struct {
	Workers   int
	QueueSize int
	// Rate limits task starts per second across all workers; 0 disables it.
	Rate    float64
	Burst   int
	Timeout time.Duration
}

// Pool is a bounded queue drained by a fixed set of workers.
type Pool struct {
	log     *logrus.Entry
	opts    Options
	queue   chan Task
	limiter *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool
	timers  map[*time.Timer]struct{}
}

func NewPool(log *logrus.Logger, opts Options) *Pool {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 256
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	p := &Pool{
		log:    log.WithField("component", "worker"),
		opts:   opts,
		queue:  make(chan Task, opts.QueueSize),
		timers: map[*time.Timer]struct{}{},
	}
	if opts.Rate > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(opts.Rate), burst)
	}
	p.ctx, p.cancel = context.WithCancel(context.Background())
	return p
}

// Start launches the workers.
func (p *Pool) Start() {
	for i := 0; i < p.opts.Workers; i++ {
		p.wg.Add(1)
		go p.run(i + 1)
	}
	p.log.WithField("workers", p.opts.Workers).Info("worker pool started")
}

func (p *Pool) run(id int) {
	defer p.wg.Done()
	for t := range p.queue {
		if p.limiter != nil {
			if err := p.limiter.Wait(p.ctx); err != nil {
				p.log.WithFields(logrus.Fields{"task": t.Name, "worker_id": id}).Debug("task dropped on shutdown")
				continue
			}
		}
		p.exec(id, t)
	}
}

func (p *Pool) exec(id int, t Task) {
	ctx, cancel := context.WithTimeout(p.ctx, p.opts.Timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			p.log.WithFields(logrus.Fields{"task": t.Name, "worker_id": id}).Errorf("task panicked: %v", r)
		}
	}()
	if err := t.Run(ctx); err != nil {
		p.log.WithFields(logrus.Fields{"task": t.Name, "worker_id": id}).WithError(err).Warn("task failed")
	}
}

// Submit enqueues t without blocking. It reports false when the pool is
// stopped or the queue is full.
func (p *Pool) Submit(t Task) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}
	select {
	case p.queue <- t:
		return true
	default:
		p.log.WithField("task", t.Name).Warn("task queue full, dropping task")
		return false
	}
}

// Go submits fn as a named task.
func (p *Pool) Go(name string, fn func(ctx context.Context) error) {
	p.Submit(Task{Name: name, Run: fn})
}

// After submits fn once d has elapsed.
func (p *Pool) After(d time.Duration, name string, fn func(ctx context.Context) error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		p.mu.Lock()
		delete(p.timers, t)
		p.mu.Unlock()
		p.Submit(Task{Name: name, Run: fn})
	})
	p.timers[t] = struct{}{}
}

// Pending returns the number of queued tasks.
func (p *Pool) Pending() int {
	return len(p.queue)
}

// Stop cancels delayed tasks, lets queued tasks finish, then waits for the
// workers to exit or ctx to expire.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	for t := range p.timers {
		t.Stop()
	}
	p.timers = nil
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return fmt.Errorf("worker pool stop: %w", ctx.Err())
	}
}
