package cmd

import (
	"fetchbot/internal/api"
	"fetchbot/internal/config"
	"fetchbot/internal/infra/sqlitestore"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func apiCmd() *cobra.Command {
	var port int
	var command = &cobra.Command{
		Use:   "api",
		Short: "Start the status API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			cfg := config.Load()
			store, err := sqlitestore.Open(cfg.Storage.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			log.Info().Msgf("status API using store %s", cfg.Storage.DBPath)
			server := api.NewServer(store)
			server.Run(port)
			return nil
		},
	}

	command.Flags().IntVarP(&port, "port", "p", 8080, "Port to run the server on")
	return command
}
