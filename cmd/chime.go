package main

import (
	"focusdeck/internal/alert"
	"focusdeck/internal/alert/otosink"

	"github.com/spf13/cobra"
)

func newChimeCommand(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chime",
		Short: "Play the session-complete chime once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := options.logger()
			if err != nil {
				return err
			}
			player := alert.NewPlayer(otosink.New(alert.DefaultSampleRate), logger)
			return player.PlaySequence(cmd.Context(), alert.Chime())
		},
	}
}
