package autosave

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultDelay lets a burst of state changes settle before the snapshot is
// written.
const DefaultDelay = 100 * time.Millisecond

// SaveFunc writes the current session state.
type SaveFunc func(ctx context.Context) error

// Scheduler runs a save shortly after every Schedule call. Saves are not
// deduplicated or ordered and failures are only logged: the in-memory
// session stays authoritative.
type Scheduler struct {
	delay   time.Duration
	timeout time.Duration
	save    SaveFunc
	logger  *zap.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
	stop   chan struct{}
}

type Option func(*Scheduler)

func WithLogger(l *zap.Logger) Option { return func(s *Scheduler) { s.logger = l } }

// WithTimeout bounds a single save call.
func WithTimeout(d time.Duration) Option { return func(s *Scheduler) { s.timeout = d } }

func New(delay time.Duration, save SaveFunc, opts ...Option) *Scheduler {
	if delay < 0 {
		delay = 0
	}
	s := &Scheduler{
		delay:   delay,
		timeout: 5 * time.Second,
		save:    save,
		logger:  zap.NewNop(),
		stop:    make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Schedule queues one save after the configured delay. It never blocks.
// After Close it is a no-op.
func (s *Scheduler) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.wg.Add(1)
	go s.run()
}

func (s *Scheduler) run() {
	defer s.wg.Done()
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-s.stop:
		// shutting down: write now instead of waiting out the delay
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.save(ctx); err != nil {
		s.logger.Warn("autosave failed", zap.Error(err))
		return
	}
	s.logger.Debug("autosaved")
}

// Flush waits until every scheduled save has finished.
func (s *Scheduler) Flush() {
	s.wg.Wait()
}

// Close stops accepting new saves, runs the pending ones immediately and
// waits for them.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.stop)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
