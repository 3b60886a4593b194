package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fetchbot/internal/bot"
	"fetchbot/internal/config"
	"fetchbot/internal/fetch"
	"fetchbot/internal/infra/sqlitestore"
	"fetchbot/internal/infra/telegram"
	"fetchbot/internal/sweep"
	"fetchbot/internal/usecase"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func botCmd() *cobra.Command {
	var (
		finalizeBatch int
		baseBackoff   time.Duration
		maxBackoff    time.Duration
	)

	var command = &cobra.Command{
		Use:   "bot",
		Short: "Start the polling bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			cfg := config.Load()
			if cfg.Telegram.Token == "" {
				return errors.New("BOT_TOKEN is required")
			}

			store, err := sqlitestore.Open(cfg.Storage.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			tg, err := telegram.New(cfg.Telegram.Token, cfg.Telegram.LongPollSec)
			if err != nil {
				return err
			}

			limiter := usecase.Limiter{Store: store, HourlyLimit: cfg.Download.RateLimitHourly}
			executor := &fetch.Executor{
				Bin:            cfg.Download.FetchBin,
				Dir:            cfg.Storage.DownloadDir,
				MaxSizeMB:      cfg.Download.MaxFileSizeMB,
				QualityCeiling: cfg.Download.QualityCeiling,
				Timeout:        time.Duration(cfg.Download.TimeoutSec) * time.Second,
			}

			driver := bot.New(bot.Deps{
				Store:     store,
				Events:    tg,
				Messenger: tg,
				Submitter: usecase.Submitter{Store: store, Limiter: limiter},
				Processor: usecase.Processor{Store: store, Fetcher: executor},
				Finalizer: usecase.NewFinalizer(store, tg, int64(cfg.Download.MaxFileSizeMB)<<20),
				Limiter:   limiter,
				Sweeper: sweep.Sweeper{
					Dir:       cfg.Storage.DownloadDir,
					Retention: time.Duration(cfg.Download.RetentionDays) * 24 * time.Hour,
				},
				PollInterval:  time.Duration(cfg.Telegram.PollIntervalSec) * time.Second,
				FinalizeBatch: finalizeBatch,
				BaseBackoff:   baseBackoff,
				MaxBackoff:    maxBackoff,
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info().Msgf("bot starting, poll interval %ds", cfg.Telegram.PollIntervalSec)
			if err := driver.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Info().Msg("bot stopped")
			return nil
		},
	}

	command.Flags().IntVar(&finalizeBatch, "finalize-batch", 5, "Max notifications per finalize pass")
	command.Flags().DurationVar(&baseBackoff, "base-backoff", 500*time.Millisecond, "Base backoff after a failed iteration")
	command.Flags().DurationVar(&maxBackoff, "max-backoff", 30*time.Second, "Max backoff after failed iterations")

	return command
}
