package cmd

import (
	"time"

	"fetchbot/internal/config"
	"fetchbot/internal/sweep"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func sweepCmd() *cobra.Command {
	var command = &cobra.Command{
		Use:   "sweep",
		Short: "Run the retention sweep once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			sweeper := sweep.Sweeper{
				Dir:       cfg.Storage.DownloadDir,
				Retention: time.Duration(cfg.Download.RetentionDays) * 24 * time.Hour,
			}
			removed, err := sweeper.Sweep()
			if err != nil {
				return err
			}
			log.Info().Msgf("removed %d expired files from %s", removed, cfg.Storage.DownloadDir)
			return nil
		},
	}
	return command
}
