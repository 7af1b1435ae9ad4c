package password

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Pool errors.
var (
	ErrPoolClosed = errors.New("password: pool closed")
	ErrPoolBusy   = errors.New("password: pool queue wait timeout")
)

// Pool runs hashing and verification on a fixed set of worker goroutines
// so CPU-heavy work never runs on request goroutines. The queue is bounded;
// callers wait up to MaxWait for space.
type Pool struct {
	hasher  Hasher
	jobs    chan func()
	maxWait time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool starts cfg.Workers goroutines hashing with NewHasher(cfg).
func NewPool(cfg Config) *Pool {
	cfg.ApplyDefaults()
	return NewPoolWithHasher(NewHasher(cfg), cfg.Workers, cfg.QueueSize, cfg.MaxWait)
}

// NewPoolWithHasher starts a pool around an explicit hasher.
func NewPoolWithHasher(h Hasher, workers, queueSize int, maxWait time.Duration) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &Pool{
		hasher:  h,
		jobs:    make(chan func(), queueSize),
		maxWait: maxWait,
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// Verify runs Verify(plaintext, encoded) on a worker. The error is non-nil
// only when the job could not run or ctx ended first.
func (p *Pool) Verify(ctx context.Context, plaintext, encoded string) (bool, error) {
	var ok bool
	err := p.run(ctx, func() { ok = Verify(plaintext, encoded) })
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Hash hashes plaintext with the pool's hasher on a worker.
func (p *Pool) Hash(ctx context.Context, plaintext string) (string, error) {
	var (
		hash    string
		hashErr error
	)
	if err := p.run(ctx, func() { hash, hashErr = p.hasher.Hash(plaintext) }); err != nil {
		return "", err
	}
	return hash, hashErr
}

// run submits fn and blocks until it has completed or ctx is done.
func (p *Pool) run(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan struct{})
	job := func() {
		defer close(done)
		fn()
	}

	if err := p.submit(ctx, job); err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) submit(ctx context.Context, job func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.jobs <- job:
		return nil
	default:
	}

	var timeout <-chan time.Time
	if p.maxWait > 0 {
		timer := time.NewTimer(p.maxWait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case p.jobs <- job:
		return nil
	case <-timeout:
		return ErrPoolBusy
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting jobs and waits for queued jobs to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
