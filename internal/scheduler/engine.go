package scheduler

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var ErrInvalidInterval = errors.New("scheduler: invalid tick interval")

// TickEvent carries the generation the engine was armed with so a consumer
// can drop ticks that belong to a paused or replaced countdown.
type TickEvent struct {
	Generation uint64
	At         time.Time
}

// Engine emits one TickEvent per interval while armed.
type Engine struct {
	mu       sync.Mutex
	interval time.Duration
	out      chan TickEvent
	wakeup   chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	stopped  bool
	armed    bool
	gen      uint64
	dropped  uint64
}

func NewEngine(interval time.Duration, bufferSize int) (*Engine, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		interval: interval,
		out:      make(chan TickEvent, bufferSize),
		wakeup:   make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

func (e *Engine) C() <-chan TickEvent {
	return e.out
}

func (e *Engine) Interval() time.Duration {
	return e.interval
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// Arm starts (or restarts) the countdown cadence; the first tick comes one
// full interval after the call.
func (e *Engine) Arm(gen uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return errors.New("scheduler: engine stopped")
	}
	e.armed = true
	e.gen = gen
	e.drainLocked()
	e.signalWakeup()
	return nil
}

// Disarm stops emission. Ticks still buffered are discarded before it
// returns.
func (e *Engine) Disarm() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	e.armed = false
	e.drainLocked()
	e.signalWakeup()
}

func (e *Engine) Armed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.armed
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		if !e.Armed() {
			stopTimer(timer)
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		timer = resetTimer(timer, e.interval)

		select {
		case at := <-timer.C:
			e.emit(at.UTC())
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			stopTimer(timer)
			return
		}
	}
}

func (e *Engine) emit(at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.armed {
		return
	}
	select {
	case e.out <- TickEvent{Generation: e.gen, At: at}:
	default:
		atomic.AddUint64(&e.dropped, 1)
	}
}

func (e *Engine) drainLocked() {
	for {
		select {
		case _, ok := <-e.out:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
