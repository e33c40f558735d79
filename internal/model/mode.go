package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidMode = errors.New("model: invalid timer mode")

type TimerMode string

const (
	ModeWork       TimerMode = "work"
	ModeShortBreak TimerMode = "short_break"
	ModeLongBreak  TimerMode = "long_break"
)

// Modes lists the timer modes in display order.
var Modes = []TimerMode{ModeWork, ModeShortBreak, ModeLongBreak}

func (m TimerMode) IsValid() bool {
	switch m {
	case ModeWork, ModeShortBreak, ModeLongBreak:
		return true
	default:
		return false
	}
}

func (m TimerMode) IsBreak() bool {
	return m == ModeShortBreak || m == ModeLongBreak
}

func (m TimerMode) Label() string {
	switch m {
	case ModeWork:
		return "Work"
	case ModeShortBreak:
		return "Short Break"
	case ModeLongBreak:
		return "Long Break"
	default:
		return "Unknown"
	}
}

func ParseMode(raw string) (TimerMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "work", "pomodoro", "focus":
		return ModeWork, nil
	case "short", "short-break", "short_break", "shortbreak":
		return ModeShortBreak, nil
	case "long", "long-break", "long_break", "longbreak":
		return ModeLongBreak, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, raw)
	}
}
