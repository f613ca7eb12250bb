package preferences

import (
	"time"

	"focusdeck/internal/core/model"
	"focusdeck/internal/notify"
)

// MaxMinutes bounds every minute-valued setting.
const MaxMinutes = 24 * 60

// ValidMinutes reports whether minutes fits a duration setting.
func ValidMinutes(minutes int) bool {
	return minutes > 0 && minutes <= MaxMinutes
}

// Settings defines editable user preferences.
type Settings struct {
	WorkDuration       time.Duration
	ShortBreakDuration time.Duration
	LongBreakDuration  time.Duration
	LongBreakEvery     int

	SoundEnabled           bool
	NotificationsEnabled   bool
	NotificationPermission notify.Permission

	IdlePauseEnabled bool
	IdlePauseAfter   time.Duration
}

// DefaultSettings returns default settings for FocusDeck.
func DefaultSettings() Settings {
	timer := model.DefaultTimerConfig()
	return Settings{
		WorkDuration:         timer.Work,
		ShortBreakDuration:   timer.ShortBreak,
		LongBreakDuration:    timer.LongBreak,
		LongBreakEvery:       timer.LongBreakEvery,
		SoundEnabled:         true,
		NotificationsEnabled: true,
		IdlePauseEnabled:     false,
		IdlePauseAfter:       timer.IdlePauseAfter,
	}
}

// TimerConfig converts settings to a TimerConfig.
func (settings Settings) TimerConfig() model.TimerConfig {
	return model.TimerConfig{
		Work:              settings.WorkDuration,
		ShortBreak:        settings.ShortBreakDuration,
		LongBreak:         settings.LongBreakDuration,
		LongBreakEvery:    settings.LongBreakEvery,
		IdlePauseEnabled:  settings.IdlePauseEnabled,
		IdlePauseAfter:    settings.IdlePauseAfter,
		IdleCheckInterval: 5 * time.Second,
	}
}
