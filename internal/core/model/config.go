package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig indicates a TimerConfig that cannot drive a timer.
var ErrInvalidConfig = errors.New("invalid timer config")

// Mode is one of the configured timer phases.
type Mode string

const (
	ModeWork       Mode = "work"
	ModeShortBreak Mode = "short_break"
	ModeLongBreak  Mode = "long_break"
)

// Modes lists every mode in display order.
func Modes() []Mode {
	return []Mode{ModeWork, ModeShortBreak, ModeLongBreak}
}

// Label returns the display label of the mode.
func (mode Mode) Label() string {
	switch mode {
	case ModeWork:
		return "Deep Work"
	case ModeShortBreak:
		return "Short Break"
	case ModeLongBreak:
		return "Long Break"
	default:
		return string(mode)
	}
}

// IsBreak reports whether the mode is one of the break phases.
func (mode Mode) IsBreak() bool {
	return mode == ModeShortBreak || mode == ModeLongBreak
}

// Valid reports whether the mode is known.
func (mode Mode) Valid() bool {
	switch mode {
	case ModeWork, ModeShortBreak, ModeLongBreak:
		return true
	}
	return false
}

// TimerConfig contains runtime settings for the pomodoro state machine.
type TimerConfig struct {
	Work       time.Duration
	ShortBreak time.Duration
	LongBreak  time.Duration

	// LongBreakEvery is the number of completed work sessions between long breaks.
	LongBreakEvery int

	IdlePauseEnabled  bool
	IdlePauseAfter    time.Duration
	IdleCheckInterval time.Duration
}

// DefaultTimerConfig returns the classic 25/5/15 schedule with a long break every fourth session.
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		Work:              25 * time.Minute,
		ShortBreak:        5 * time.Minute,
		LongBreak:         15 * time.Minute,
		LongBreakEvery:    4,
		IdlePauseEnabled:  false,
		IdlePauseAfter:    5 * time.Minute,
		IdleCheckInterval: 5 * time.Second,
	}
}

// Duration returns the configured length of a mode.
func (config TimerConfig) Duration(mode Mode) time.Duration {
	switch mode {
	case ModeShortBreak:
		return config.ShortBreak
	case ModeLongBreak:
		return config.LongBreak
	default:
		return config.Work
	}
}

// Seconds returns the configured length of a mode in whole seconds.
func (config TimerConfig) Seconds(mode Mode) int {
	return int(config.Duration(mode) / time.Second)
}

// Validate checks that every mode has a whole, positive number of seconds.
func (config TimerConfig) Validate() error {
	for _, mode := range Modes() {
		duration := config.Duration(mode)
		if duration < time.Second {
			return fmt.Errorf("%w: %s duration %s is shorter than one second", ErrInvalidConfig, mode, duration)
		}
		if duration%time.Second != 0 {
			return fmt.Errorf("%w: %s duration %s is not whole seconds", ErrInvalidConfig, mode, duration)
		}
	}
	if config.LongBreakEvery < 1 {
		return fmt.Errorf("%w: long break cadence %d must be at least 1", ErrInvalidConfig, config.LongBreakEvery)
	}
	if config.IdlePauseEnabled && config.IdlePauseAfter <= 0 {
		return fmt.Errorf("%w: idle pause threshold must be positive", ErrInvalidConfig)
	}
	return nil
}
