package tray

import (
	"fmt"

	"focusdeck/internal/core/model"
	"focusdeck/internal/core/pomodoro"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShowTimer   func()
	OnPreferences func()
	OnToggle      func()
	OnReset       func()
	OnSwitchMode  func(model.Mode)
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app        desktop.App
	statusItem *fyne.MenuItem
	toggleItem *fyne.MenuItem
	modeItem   *fyne.MenuItem
	modeItems  map[model.Mode]*fyne.MenuItem
	callbacks  Callbacks
	idleIcon   fyne.Resource
	activeIcon fyne.Resource
	running    bool
}

// New creates a tray manager with the provided callbacks. Icons may be nil.
func New(app desktop.App, idleIcon, activeIcon fyne.Resource, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:        app,
		callbacks:  callbacks,
		idleIcon:   idleIcon,
		activeIcon: activeIcon,
		modeItems:  make(map[model.Mode]*fyne.MenuItem),
	}

	manager.statusItem = fyne.NewMenuItem("Status: starting...", nil)
	manager.statusItem.Disabled = true

	manager.toggleItem = fyne.NewMenuItem("Start", func() {
		if manager.callbacks.OnToggle != nil {
			manager.callbacks.OnToggle()
		}
	})

	var modeEntries []*fyne.MenuItem
	for _, mode := range model.Modes() {
		item := fyne.NewMenuItem(mode.Label(), func() {
			if manager.callbacks.OnSwitchMode != nil {
				manager.callbacks.OnSwitchMode(mode)
			}
		})
		manager.modeItems[mode] = item
		modeEntries = append(modeEntries, item)
	}
	manager.modeItem = fyne.NewMenuItem("Switch to", nil)
	manager.modeItem.ChildMenu = fyne.NewMenu("", modeEntries...)

	manager.refreshMenu()
	manager.refreshIcon()
	return manager
}

// SetStatus reflects a timer snapshot in the menu and icon.
func (manager *Manager) SetStatus(snapshot pomodoro.Snapshot) {
	status := fmt.Sprintf("%s %s", snapshot.Label, snapshot.Clock())
	if !snapshot.Running {
		status += " (paused)"
	}
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)

	if snapshot.Running {
		manager.toggleItem.Label = "Pause"
	} else {
		manager.toggleItem.Label = "Start"
	}
	for mode, item := range manager.modeItems {
		item.Checked = mode == snapshot.Mode
	}

	iconChanged := manager.running != snapshot.Running
	manager.running = snapshot.Running
	manager.refreshMenu()
	if iconChanged {
		manager.refreshIcon()
	}
}

func (manager *Manager) refreshIcon() {
	if manager.app == nil {
		return
	}
	icon := manager.idleIcon
	if manager.running {
		icon = manager.activeIcon
	}
	if icon != nil {
		manager.app.SetSystemTrayIcon(icon)
	}
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu("FocusDeck",
		manager.statusItem,
		fyne.NewMenuItemSeparator(),
		manager.toggleItem,
		fyne.NewMenuItem("Reset", func() {
			if manager.callbacks.OnReset != nil {
				manager.callbacks.OnReset()
			}
		}),
		manager.modeItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Show timer", func() {
			if manager.callbacks.OnShowTimer != nil {
				manager.callbacks.OnShowTimer()
			}
		}),
		fyne.NewMenuItem("Preferences", func() {
			if manager.callbacks.OnPreferences != nil {
				manager.callbacks.OnPreferences()
			}
		}),
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	))
}
