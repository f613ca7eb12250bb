package pomodoro

import (
	"fmt"

	"focusdeck/internal/core/model"
)

// Session is the mutable state of one timer.
type Session struct {
	Mode          model.Mode
	Remaining     int
	Running       bool
	CompletedWork int
}

// Completion describes a countdown that reached zero.
type Completion struct {
	Finished      model.Mode
	Next          model.Mode
	CompletedWork int
}

func newSession(config model.TimerConfig) Session {
	return Session{
		Mode:      model.ModeWork,
		Remaining: config.Seconds(model.ModeWork),
	}
}

func (session *Session) switchMode(config model.TimerConfig, target model.Mode) {
	session.Mode = target
	session.Remaining = config.Seconds(target)
	session.Running = false
}

func (session *Session) reset(config model.TimerConfig) {
	session.Remaining = config.Seconds(session.Mode)
	session.Running = false
}

// toggle flips running and reports whether the session just started.
func (session *Session) toggle() bool {
	session.Running = !session.Running
	return session.Running
}

// advance applies up to steps decrements and reports whether zero was reached.
func (session *Session) advance(steps int) bool {
	if steps > session.Remaining {
		steps = session.Remaining
	}
	session.Remaining -= steps
	return session.Remaining == 0
}

func (session *Session) complete(config model.TimerConfig) Completion {
	session.Running = false
	finished := session.Mode
	if finished == model.ModeWork {
		session.CompletedWork++
	}
	next := nextMode(finished, session.CompletedWork, config.LongBreakEvery)
	session.switchMode(config, next)
	return Completion{
		Finished:      finished,
		Next:          next,
		CompletedWork: session.CompletedWork,
	}
}

func nextMode(finished model.Mode, completedWork, longBreakEvery int) model.Mode {
	if finished != model.ModeWork {
		return model.ModeWork
	}
	if longBreakEvery > 0 && completedWork%longBreakEvery == 0 {
		return model.ModeLongBreak
	}
	return model.ModeShortBreak
}

// Snapshot is a read-only view of a timer's session.
type Snapshot struct {
	ID            string
	Mode          model.Mode
	Label         string
	Remaining     int
	Duration      int
	Running       bool
	CompletedWork int
}

// Clock formats the remaining time as mm:ss.
func (snapshot Snapshot) Clock() string {
	return FormatSeconds(snapshot.Remaining)
}

// Progress returns the elapsed share of the current mode in [0, 1].
func (snapshot Snapshot) Progress() float64 {
	if snapshot.Duration <= 0 {
		return 1
	}
	progress := float64(snapshot.Duration-snapshot.Remaining) / float64(snapshot.Duration)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

// FormatSeconds formats seconds as mm:ss. Minutes are not wrapped at 60.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
