package notify

import (
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
)

// Sender delivers a desktop notification. fyne.App satisfies it.
type Sender interface {
	SendNotification(notification *fyne.Notification)
}

// Prompt asks the user whether notifications are allowed and reports the
// answer through decide. It must not block.
type Prompt func(decide func(allowed bool))

// DesktopOptions configures a Desktop gateway.
type DesktopOptions struct {
	// Permission is the previously stored decision.
	Permission Permission
	// Enabled is the user's notifications preference. Disabled forces denied.
	Enabled bool
	Prompt  Prompt
	// OnDecision is called after the user answers a prompt.
	OnDecision func(Permission)
	// Do runs fn on the UI goroutine. Defaults to fyne.Do.
	Do     func(fn func())
	Logger *slog.Logger
}

// Desktop is a Gateway backed by fyne desktop notifications.
type Desktop struct {
	mu         sync.Mutex
	sender     Sender
	permission Permission
	enabled    bool
	prompting  bool
	prompt     Prompt
	onDecision func(Permission)
	do         func(fn func())
	logger     *slog.Logger
}

// NewDesktop creates a desktop notification gateway.
func NewDesktop(sender Sender, options DesktopOptions) *Desktop {
	if options.Do == nil {
		options.Do = fyne.Do
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Desktop{
		sender:     sender,
		permission: options.Permission,
		enabled:    options.Enabled,
		prompt:     options.Prompt,
		onDecision: options.OnDecision,
		do:         options.Do,
		logger:     options.Logger,
	}
}

// SetPrompt replaces the permission prompt.
func (gateway *Desktop) SetPrompt(prompt Prompt) {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	gateway.prompt = prompt
}

// SetEnabled applies the user's notifications preference. Re-enabling after
// a denial returns the gateway to PermissionDefault so the user is asked again.
func (gateway *Desktop) SetEnabled(enabled bool) {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	if enabled && !gateway.enabled && gateway.permission == PermissionDenied {
		gateway.permission = PermissionDefault
	}
	gateway.enabled = enabled
}

// Permission reports the current permission state.
func (gateway *Desktop) Permission() Permission {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	return gateway.permissionLocked()
}

// RequestPermission asks the user when the state is still default. The
// returned value is the state at return time; an open prompt keeps it default.
func (gateway *Desktop) RequestPermission() Permission {
	gateway.mu.Lock()
	current := gateway.permissionLocked()
	if current != PermissionDefault || gateway.prompting {
		gateway.mu.Unlock()
		return current
	}
	prompt := gateway.prompt
	if prompt == nil {
		gateway.permission = PermissionGranted
		gateway.mu.Unlock()
		gateway.reportDecision(PermissionGranted)
		return PermissionGranted
	}
	gateway.prompting = true
	gateway.mu.Unlock()

	prompt(gateway.decide)
	return gateway.Permission()
}

// Notify sends a desktop notification when permission is granted.
func (gateway *Desktop) Notify(title, body string) {
	if gateway.Permission() != PermissionGranted || gateway.sender == nil {
		return
	}
	notification := fyne.NewNotification(title, body)
	gateway.do(func() {
		gateway.sender.SendNotification(notification)
	})
}

func (gateway *Desktop) decide(allowed bool) {
	decision := PermissionDenied
	if allowed {
		decision = PermissionGranted
	}

	gateway.mu.Lock()
	gateway.prompting = false
	gateway.permission = decision
	gateway.mu.Unlock()

	gateway.reportDecision(decision)
}

func (gateway *Desktop) reportDecision(decision Permission) {
	gateway.logger.Info("notification permission decided", slog.String("permission", decision.String()))
	if gateway.onDecision != nil {
		gateway.onDecision(decision)
	}
}

func (gateway *Desktop) permissionLocked() Permission {
	if !gateway.enabled {
		return PermissionDenied
	}
	return gateway.permission
}
