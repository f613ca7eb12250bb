package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"focusdeck/internal/alert"
	"focusdeck/internal/alert/otosink"
	"focusdeck/internal/core/pomodoro"
	"focusdeck/internal/notify"
	"focusdeck/internal/platform"
	"focusdeck/internal/storage"
	"focusdeck/internal/ui/preferences"
	"focusdeck/internal/ui/timerview"
	"focusdeck/internal/ui/tray"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
)

func runDesktop(ctx context.Context, options *rootOptions) error {
	logger, err := options.logger()
	if err != nil {
		return err
	}

	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			logger.Info("focusdeck is already running", slog.String("detail", err.Error()))
			return nil
		}
		return err
	}
	defer guard.Release()

	store, err := options.store()
	if err != nil {
		return err
	}
	loaded, err := store.Load()
	if err != nil {
		logger.Warn("failed to load settings, using defaults", slog.String("error", err.Error()))
	}
	state := &settingsState{store: store, settings: loaded, logger: logger}

	fyneApp := app.NewWithID("com.focusdeck.app")
	fyneApp.SetIcon(theme.HistoryIcon())

	gateway := notify.NewDesktop(fyneApp, notify.DesktopOptions{
		Permission: loaded.NotificationPermission,
		Enabled:    loaded.NotificationsEnabled,
		Logger:     logger,
		OnDecision: func(permission notify.Permission) {
			state.update(func(settings *preferences.Settings) {
				settings.NotificationPermission = permission
			})
		},
	})

	player := alert.NewPlayer(otosink.New(alert.DefaultSampleRate), logger)
	player.SetEnabled(loaded.SoundEnabled)

	timer, err := pomodoro.New(loaded.TimerConfig(), pomodoro.Options{
		TickInterval: time.Second,
		Notifier:     gateway,
		Alerter:      player,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	timer.SetIdleChecker(platform.NewIdleProvider())

	view := timerview.New(fyneApp, timer)
	go func() {
		if err := guard.Serve(func() { fyne.Do(view.Show) }); err != nil {
			logger.Warn("activation listener stopped", slog.String("error", err.Error()))
		}
	}()
	logger.Debug("single instance lock held", slog.String("address", guard.Address()))

	gateway.SetPrompt(func(decide func(bool)) {
		fyne.Do(func() {
			dialog.ShowConfirm("Notifications",
				"Show a desktop notification when a session ends?",
				decide, view.Window())
			view.Show()
		})
	})

	apply := func(settings preferences.Settings) {
		if err := timer.UpdateConfig(settings.TimerConfig()); err != nil {
			logger.Warn("settings rejected", slog.String("error", err.Error()))
			return
		}
		player.SetEnabled(settings.SoundEnabled)
		gateway.SetEnabled(settings.NotificationsEnabled)
	}

	prefsWindow := preferences.New(fyneApp, loaded, func(updated preferences.Settings) {
		saved, err := state.replace(updated)
		if err != nil {
			logger.Warn("settings rejected", slog.String("error", err.Error()))
			return
		}
		apply(saved)
	})

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	go func() {
		err := store.Watch(watchCtx, logger, func(updated preferences.Settings) {
			state.adopt(updated)
			apply(updated)
			fyne.Do(func() {
				prefsWindow.UpdateSettings(updated)
			})
		})
		if err != nil {
			logger.Warn("settings watcher stopped", slog.String("error", err.Error()))
		}
	}()

	var trayManager *tray.Manager
	if desktopApp, ok := fyneApp.(desktop.App); ok {
		trayManager = tray.New(desktopApp, theme.HistoryIcon(), theme.MediaRecordIcon(), tray.Callbacks{
			OnShowTimer:   view.Show,
			OnPreferences: prefsWindow.Show,
			OnToggle:      timer.ToggleRunning,
			OnReset:       timer.Reset,
			OnSwitchMode:  timer.SwitchMode,
			OnQuit:        fyneApp.Quit,
		})
		trayManager.SetStatus(timer.Snapshot())
	} else {
		logger.Warn("system tray not supported, running windowed only")
	}

	events := timer.Subscribe(16)
	go func() {
		for event := range events {
			snapshot := event.Snapshot
			switch event.Type {
			case pomodoro.EventIdlePause:
				logger.Info("paused while away", slog.String("mode", snapshot.Label))
			case pomodoro.EventIdleError:
				logger.Warn("idle detection disabled", slog.String("error", event.Message))
			}
			fyne.Do(func() {
				view.Apply(snapshot)
				if trayManager != nil {
					trayManager.SetStatus(snapshot)
				}
				if event.Type == pomodoro.EventComplete {
					view.Show()
				}
			})
		}
	}()

	go func() {
		<-ctx.Done()
		fyne.Do(fyneApp.Quit)
	}()

	timer.Start()
	view.Show()
	logger.Info("focusdeck started", slog.String("timer", timer.ID()), slog.String("settings", store.Path()))
	fyneApp.Run()

	timer.Stop()
	return nil
}

// settingsState is the last persisted settings, shared between the
// preferences window, the notification prompt and the file watcher.
type settingsState struct {
	mu       sync.Mutex
	store    *storage.Store
	settings preferences.Settings
	logger   *slog.Logger
}

func (state *settingsState) update(change func(*preferences.Settings)) {
	state.mu.Lock()
	change(&state.settings)
	snapshot := state.settings
	state.mu.Unlock()
	state.save(snapshot)
}

// replace stores settings edited in the preferences window. The window does
// not edit the notification permission, so the current decision is kept.
// Settings the timer would reject are neither kept nor saved.
func (state *settingsState) replace(updated preferences.Settings) (preferences.Settings, error) {
	if err := updated.TimerConfig().Validate(); err != nil {
		return preferences.Settings{}, err
	}
	state.mu.Lock()
	updated.NotificationPermission = state.settings.NotificationPermission
	state.settings = updated
	state.mu.Unlock()
	state.save(updated)
	return updated, nil
}

func (state *settingsState) adopt(updated preferences.Settings) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.settings = updated
}

func (state *settingsState) save(settings preferences.Settings) {
	if err := state.store.Save(settings); err != nil {
		state.logger.Warn("failed to save settings", slog.String("error", err.Error()))
	}
}
