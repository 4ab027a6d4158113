package patrol

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// PhaseSample describes one timed phase of a run. Runs started through
// Probe report the single "walk" phase.
type PhaseSample struct {
	RunID      string
	Mode       Mode
	Phase      string
	Duration   time.Duration
	Candidates int
	Failed     bool
}

type PhaseObserver interface {
	ObservePhase(s PhaseSample)
}

type PhaseLatencyLogger struct {
	logger *slog.Logger
}

func NewPhaseLatencyLogger(logger *slog.Logger) *PhaseLatencyLogger {
	return &PhaseLatencyLogger{logger: logger}
}

func (l *PhaseLatencyLogger) ObservePhase(s PhaseSample) {
	if l == nil || l.logger == nil {
		return
	}
	level := slog.LevelDebug
	if s.Failed {
		level = slog.LevelWarn
	}
	l.logger.Log(context.Background(), level, "patrol_phase_latency",
		"run_id", s.RunID,
		"mode", string(s.Mode),
		"phase", s.Phase,
		"candidates", s.Candidates,
		"failed", s.Failed,
		"duration_ms", float64(s.Duration.Microseconds())/1000.0,
	)
}

// AsyncPhaseObserver forwards samples from a background goroutine.
// Samples arriving while the buffer is full, or after Close, are dropped
// and counted. Failed phases wait for buffer space until Close instead.
type AsyncPhaseObserver struct {
	next    PhaseObserver
	samples chan PhaseSample
	done    chan struct{}
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

func NewAsyncPhaseObserver(next PhaseObserver, buffer int) *AsyncPhaseObserver {
	if buffer <= 0 {
		buffer = 1
	}

	o := &AsyncPhaseObserver{
		next:    next,
		samples: make(chan PhaseSample, buffer),
		done:    make(chan struct{}),
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for s := range o.samples {
			if o.next != nil {
				o.next.ObservePhase(s)
			}
		}
	}()

	return o
}

func (o *AsyncPhaseObserver) ObservePhase(s PhaseSample) {
	if o == nil {
		return
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		o.dropped.Add(1)
		return
	}
	if s.Failed {
		select {
		case o.samples <- s:
		case <-o.done:
			o.dropped.Add(1)
		}
		return
	}
	select {
	case o.samples <- s:
	default:
		o.dropped.Add(1)
	}
}

func (o *AsyncPhaseObserver) Dropped() uint64 {
	if o == nil {
		return 0
	}
	return o.dropped.Load()
}

// Close flushes pending observations. It is safe to call more than once.
func (o *AsyncPhaseObserver) Close() {
	if o == nil {
		return
	}
	o.once.Do(func() {
		close(o.done)
		o.mu.Lock()
		o.closed = true
		close(o.samples)
		o.mu.Unlock()
		o.wg.Wait()
	})
}
