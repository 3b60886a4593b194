package cmd

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func Run() {
	_ = godotenv.Load()

	var command = &cobra.Command{
		Use:   "fetchbot",
		Short: "Media download bot with a durable task queue",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	command.AddCommand(botCmd())
	command.AddCommand(apiCmd())
	command.AddCommand(sweepCmd())

	if err := command.Execute(); err != nil {
		log.Fatal().Msgf("failed to execute command, err: %v", err.Error())
	}
}
