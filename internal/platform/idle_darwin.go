package platform

import (
	"bufio"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"focusdeck/internal/core/pomodoro"
)

type ioregProvider struct {
	path string
}

func newIdleProvider() pomodoro.IdleChecker {
	path, err := exec.LookPath("ioreg")
	if err != nil {
		return unsupportedIdleProvider{}
	}
	return &ioregProvider{path: path}
}

func (provider *ioregProvider) IdleDuration() (time.Duration, error) {
	output, err := exec.Command(provider.path, "-c", "IOHIDSystem", "-d", "4").Output()
	if err != nil {
		return 0, fmt.Errorf("ioreg: %w", err)
	}
	return parseHIDIdleTime(string(output))
}

// parseHIDIdleTime extracts the HIDIdleTime nanosecond counter from ioreg output.
func parseHIDIdleTime(output string) (time.Duration, error) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, `"HIDIdleTime"`) {
			continue
		}
		_, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		nanos, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse HIDIdleTime: %w", err)
		}
		return time.Duration(nanos), nil
	}
	return 0, pomodoro.ErrIdleUnsupported
}
