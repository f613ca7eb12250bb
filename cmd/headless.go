package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"focusdeck/internal/alert"
	"focusdeck/internal/alert/otosink"
	"focusdeck/internal/core/model"
	"focusdeck/internal/core/pomodoro"
	"focusdeck/internal/notify"

	"github.com/spf13/cobra"
)

func newHeadlessCommand(options *rootOptions) *cobra.Command {
	var modeName string
	cmd := &cobra.Command{
		Use:   "headless",
		Short: "Run one countdown in the terminal and exit when it completes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode := model.Mode(modeName)
			if !mode.Valid() {
				return fmt.Errorf("unknown mode %q", modeName)
			}
			return runHeadless(cmd.Context(), options, mode)
		},
	}
	cmd.Flags().StringVar(&modeName, "mode", string(model.ModeWork), "mode to run: work, short_break, long_break")
	return cmd
}

func runHeadless(ctx context.Context, options *rootOptions, mode model.Mode) error {
	logger, err := options.logger()
	if err != nil {
		return err
	}
	store, err := options.store()
	if err != nil {
		return err
	}
	settings, err := store.Load()
	if err != nil {
		logger.Warn("using default settings", slog.String("error", err.Error()))
	}

	player := alert.NewPlayer(otosink.New(alert.DefaultSampleRate), logger)
	player.SetEnabled(settings.SoundEnabled)

	timer, err := pomodoro.New(settings.TimerConfig(), pomodoro.Options{
		Notifier: notify.Log{Logger: logger},
		Alerter:  player,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	events := timer.Subscribe(16)
	timer.SwitchMode(mode)
	timer.Start()
	defer timer.Stop()
	timer.ToggleRunning()

	snapshot := timer.Snapshot()
	logger.Info("countdown started", slog.String("mode", snapshot.Label), slog.String("remaining", snapshot.Clock()))

	for {
		select {
		case <-ctx.Done():
			logger.Info("countdown interrupted", slog.String("remaining", timer.Snapshot().Clock()))
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			switch event.Type {
			case pomodoro.EventProgress:
				if event.Snapshot.Remaining%60 == 0 {
					logger.Info("tick", slog.String("remaining", event.Snapshot.Clock()))
				}
			case pomodoro.EventComplete:
				logger.Info("countdown complete", slog.String("next", event.Snapshot.Label))
				// Give the chime time to finish before the process exits.
				select {
				case <-ctx.Done():
				case <-time.After(alert.Length(alert.Chime()) + 300*time.Millisecond):
				}
				return nil
			}
		}
	}
}
