package notify

import (
	"log/slog"
	"strings"
)

// Permission is the user's decision about out-of-app notifications.
type Permission int

const (
	// PermissionDefault means the user was never asked.
	PermissionDefault Permission = iota
	PermissionGranted
	PermissionDenied
)

func (permission Permission) String() string {
	switch permission {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "default"
	}
}

// ParsePermission converts a stored permission string back to a Permission.
// Unknown values map to PermissionDefault so the user is asked again.
func ParsePermission(value string) Permission {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "granted":
		return PermissionGranted
	case "denied":
		return PermissionDenied
	default:
		return PermissionDefault
	}
}

// Gateway informs the user outside the application window.
type Gateway interface {
	Permission() Permission
	RequestPermission() Permission
	Notify(title, body string)
}

// Log is a Gateway that always grants and writes notifications to a logger.
type Log struct {
	Logger *slog.Logger
}

// Permission always reports granted.
func (gateway Log) Permission() Permission {
	return PermissionGranted
}

// RequestPermission always grants.
func (gateway Log) RequestPermission() Permission {
	return PermissionGranted
}

// Notify logs the notification.
func (gateway Log) Notify(title, body string) {
	logger := gateway.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification", slog.String("title", title), slog.String("body", body))
}

// Disabled is a Gateway that never notifies.
type Disabled struct{}

func (Disabled) Permission() Permission        { return PermissionDenied }
func (Disabled) RequestPermission() Permission { return PermissionDenied }
func (Disabled) Notify(string, string)         {}
