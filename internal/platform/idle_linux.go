package platform

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"focusdeck/internal/core/pomodoro"
)

type xprintidleProvider struct {
	path string
}

func newIdleProvider() pomodoro.IdleChecker {
	path, err := exec.LookPath("xprintidle")
	if err != nil {
		return unsupportedIdleProvider{}
	}
	return &xprintidleProvider{path: path}
}

func (provider *xprintidleProvider) IdleDuration() (time.Duration, error) {
	// xprintidle reads the X server; pure Wayland sessions have no answer.
	if strings.EqualFold(os.Getenv("XDG_SESSION_TYPE"), "wayland") && os.Getenv("DISPLAY") == "" {
		return 0, pomodoro.ErrIdleUnsupported
	}
	output, err := exec.Command(provider.path).Output()
	if err != nil {
		return 0, fmt.Errorf("xprintidle: %w", err)
	}
	return parseIdleMillis(string(output))
}
