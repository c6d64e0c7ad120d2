package frame

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emotion-constellation/constellation-core/internal/metrics"
	"github.com/emotion-constellation/constellation-core/pkg/config"
	"github.com/emotion-constellation/constellation-core/pkg/logger"
	"github.com/emotion-constellation/constellation-core/pkg/utils"
)

// ErrAlreadyRunning is returned by Start on a running scheduler
var ErrAlreadyRunning = errors.New("frame scheduler already running")

// Command mutates core state. Commands run on the frame goroutine at the
// start of the next frame, never concurrently with a tick.
type Command func(p *Pipeline)

// Scheduler runs the pipeline on a fixed-rate loop. Other goroutines talk to
// it only through Enqueue and LastFrame.
type Scheduler struct {
	pipeline *Pipeline
	clock    utils.Clock
	interval time.Duration
	inbox    chan Command
	metrics  *metrics.Collector
	logger   *slog.Logger

	last atomic.Pointer[Frame]

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewScheduler creates a stopped scheduler. A nil clock uses the wall clock.
func NewScheduler(p *Pipeline, cfg config.Frame, clock utils.Clock) *Scheduler {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	size := cfg.InboxSize
	if size <= 0 {
		size = 1
	}
	return &Scheduler{
		pipeline: p,
		clock:    clock,
		interval: cfg.FrameInterval(),
		inbox:    make(chan Command, size),
		logger:   logger.Component("scheduler"),
	}
}

// SetLogger sets the scheduler's logger
func (s *Scheduler) SetLogger(l *slog.Logger) {
	s.logger = l
}

// SetMetrics attaches a metrics collector for dropped commands
func (s *Scheduler) SetMetrics(m *metrics.Collector) {
	s.metrics = m
}

// Start captures the start time, starts the entry timeline and begins the
// loop. The loop ends when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	s.pipeline.Begin(s.clock.Now())
	s.logger.Info("frame loop started", "interval", s.interval)

	go s.loop(loopCtx, s.done)
	return nil
}

// Stop halts the loop and waits for it to exit. Stopping twice, or stopping
// a scheduler that never started, is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("frame loop stopped", "frames", s.pipeline.Seq())
}

// Running reports whether the loop is active
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return
		case <-ticker.C:
			s.Step()
		}
	}
}

// Step drains the inbox and computes one frame synchronously. It must not
// be called while the loop is running.
func (s *Scheduler) Step() *Frame {
	s.drain()
	f := s.pipeline.Frame(s.clock.Now())
	s.last.Store(f)
	return f
}

func (s *Scheduler) drain() {
	for {
		select {
		case cmd := <-s.inbox:
			cmd(s.pipeline)
		default:
			return
		}
	}
}

// Enqueue queues cmd for the next frame without blocking. It reports false
// when the inbox is full and the command was dropped.
func (s *Scheduler) Enqueue(cmd Command) bool {
	select {
	case s.inbox <- cmd:
		return true
	default:
		s.metrics.CommandDropped()
		s.logger.Warn("frame inbox full, dropping command")
		return false
	}
}

// LastFrame returns the most recent frame, nil before the first one
func (s *Scheduler) LastFrame() *Frame {
	return s.last.Load()
}
