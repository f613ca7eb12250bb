package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"focusdeck/internal/storage"

	"github.com/spf13/cobra"
)

const appName = "FocusDeck"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	options := &rootOptions{}
	root := &cobra.Command{
		Use:          "focusdeck",
		Short:        "Pomodoro work/break timer in the system tray",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDesktop(cmd.Context(), options)
		},
	}
	root.PersistentFlags().StringVar(&options.configPath, "config", "", "settings file (default: <user config dir>/FocusDeck/settings.yaml)")
	root.PersistentFlags().StringVar(&options.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(newHeadlessCommand(options), newChimeCommand(options))
	return root
}

func (options *rootOptions) logger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(options.logLevel)); err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, nil
}

func (options *rootOptions) store() (*storage.Store, error) {
	if options.configPath != "" {
		return storage.NewStore(options.configPath), nil
	}
	path, err := storage.DefaultPath(appName)
	if err != nil {
		return nil, err
	}
	return storage.NewStore(path), nil
}
