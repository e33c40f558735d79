// Package timer is the Pomodoro countdown: work, short break and long break
// intervals advanced one second per tick.
package timer

import (
	"errors"
	"fmt"

	"github.com/sandeepkv93/focusflow/internal/model"
)

var ErrInvalidDurations = errors.New("timer: durations must be positive")

type Durations struct {
	Work           int
	ShortBreak     int
	LongBreak      int
	LongBreakEvery int
}

func DefaultDurations() Durations {
	return Durations{
		Work:           25 * 60,
		ShortBreak:     5 * 60,
		LongBreak:      15 * 60,
		LongBreakEvery: 4,
	}
}

func (d Durations) Validate() error {
	if d.Work <= 0 || d.ShortBreak <= 0 || d.LongBreak <= 0 || d.LongBreakEvery <= 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidDurations, d)
	}
	return nil
}

func (d Durations) For(mode model.TimerMode) int {
	switch mode {
	case model.ModeShortBreak:
		return d.ShortBreak
	case model.ModeLongBreak:
		return d.LongBreak
	default:
		return d.Work
	}
}

// Transition reports what a Tick did.
type Transition struct {
	Ticked  bool
	Expired bool
	From    model.TimerMode
	To      model.TimerMode
}

type Snapshot struct {
	Mode          model.TimerMode
	Remaining     int
	Total         int
	Running       bool
	CompletedWork int
	Generation    uint64
}

func (s Snapshot) Progress() float64 {
	if s.Total <= 0 {
		return 0
	}
	p := float64(s.Total-s.Remaining) / float64(s.Total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func (s Snapshot) Clock() string {
	return FormatClock(s.Remaining)
}

// Machine is not safe for concurrent use; the UI loop owns it.
type Machine struct {
	durations     Durations
	mode          model.TimerMode
	remaining     int
	running       bool
	completedWork int
	generation    uint64
	onWorkExpired func()
}

func New(d Durations) (*Machine, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &Machine{
		durations: d,
		mode:      model.ModeWork,
		remaining: d.Work,
	}, nil
}

// OnWorkExpired sets the single handler run synchronously when a work
// interval reaches zero.
func (m *Machine) OnWorkExpired(fn func()) {
	m.onWorkExpired = fn
}

func (m *Machine) Durations() Durations { return m.durations }

func (m *Machine) Mode() model.TimerMode { return m.mode }

func (m *Machine) Remaining() int { return m.remaining }

func (m *Machine) Running() bool { return m.running }

func (m *Machine) CompletedWork() int { return m.completedWork }

// Generation changes whenever a pending tick must no longer apply.
func (m *Machine) Generation() uint64 { return m.generation }

// Accept reports whether a tick armed at gen is still current.
func (m *Machine) Accept(gen uint64) bool {
	return m.running && gen == m.generation
}

func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		Mode:          m.mode,
		Remaining:     m.remaining,
		Total:         m.durations.For(m.mode),
		Running:       m.running,
		CompletedWork: m.completedWork,
		Generation:    m.generation,
	}
}

func (m *Machine) Start() {
	if m.running || m.remaining <= 0 {
		return
	}
	m.running = true
	m.generation++
}

func (m *Machine) Pause() {
	if !m.running {
		return
	}
	m.running = false
	m.generation++
}

func (m *Machine) ToggleRunning() {
	if m.running {
		m.Pause()
		return
	}
	m.Start()
}

// Tick advances one second. Reaching zero expires the interval in the same
// call, so a running machine never rests at zero.
func (m *Machine) Tick() Transition {
	if !m.running || m.remaining <= 0 {
		return Transition{From: m.mode, To: m.mode}
	}
	m.remaining--
	if m.remaining > 0 {
		return Transition{Ticked: true, From: m.mode, To: m.mode}
	}
	from := m.mode
	m.expire()
	return Transition{Ticked: true, Expired: true, From: from, To: m.mode}
}

func (m *Machine) expire() {
	if m.mode == model.ModeWork {
		m.completedWork++
		if m.onWorkExpired != nil {
			m.onWorkExpired()
		}
		if m.completedWork%m.durations.LongBreakEvery == 0 {
			m.mode = model.ModeLongBreak
		} else {
			m.mode = model.ModeShortBreak
		}
	} else {
		m.mode = model.ModeWork
	}
	m.remaining = m.durations.For(m.mode)
	m.running = false
	m.generation++
}

func (m *Machine) Reset() {
	m.running = false
	m.remaining = m.durations.For(m.mode)
	m.generation++
}

// SelectMode switches mode and restarts its countdown paused. When the timer
// is running, confirm decides whether in-progress time may be discarded; a
// nil confirm always allows it.
func (m *Machine) SelectMode(mode model.TimerMode, confirm func() bool) bool {
	if !mode.IsValid() {
		return false
	}
	if m.running && confirm != nil && !confirm() {
		return false
	}
	m.running = false
	m.mode = mode
	m.remaining = m.durations.For(mode)
	m.generation++
	return true
}

func FormatClock(totalSec int) string {
	if totalSec < 0 {
		totalSec = 0
	}
	return fmt.Sprintf("%02d:%02d", totalSec/60, totalSec%60)
}
