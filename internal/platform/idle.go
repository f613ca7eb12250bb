package platform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"focusdeck/internal/core/pomodoro"
)

// NewIdleProvider returns a platform-specific idle checker. Platforms
// without idle detection report pomodoro.ErrIdleUnsupported.
func NewIdleProvider() pomodoro.IdleChecker {
	return newIdleProvider()
}

type unsupportedIdleProvider struct{}

func (unsupportedIdleProvider) IdleDuration() (time.Duration, error) {
	return 0, pomodoro.ErrIdleUnsupported
}

// parseIdleMillis parses a millisecond count printed by an idle helper.
func parseIdleMillis(output string) (time.Duration, error) {
	value := strings.TrimSpace(output)
	idleMillis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse idle milliseconds: %w", err)
	}
	if idleMillis < 0 {
		idleMillis = 0
	}
	return time.Duration(idleMillis) * time.Millisecond, nil
}
