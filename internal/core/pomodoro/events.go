package pomodoro

import (
	"time"

	"focusdeck/internal/core/model"
)

// EventType defines the type of timer event.
type EventType string

const (
	EventModeChange    EventType = "mode_change"
	EventRunningChange EventType = "running_change"
	EventReset         EventType = "reset"
	EventProgress      EventType = "progress"
	EventComplete      EventType = "complete"
	EventIdlePause     EventType = "idle_pause"
	EventIdleError     EventType = "idle_error"
)

// Event represents a timer update for observers.
type Event struct {
	Type     EventType
	Snapshot Snapshot
	// Finished is the mode that just ran out. Set on EventComplete only.
	Finished model.Mode
	Message  string
	At       time.Time
}
