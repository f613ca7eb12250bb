//go:build !linux && !darwin && !windows

package platform

import "focusdeck/internal/core/pomodoro"

func newIdleProvider() pomodoro.IdleChecker {
	return unsupportedIdleProvider{}
}
