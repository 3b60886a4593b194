package usecase

import (
	"context"

	"fetchbot/internal/ports"

	"github.com/rs/zerolog/log"
)

// Processor executes at most one pending task per call, keeping the
// single-worker invariant: only one task is ever downloading.
type Processor struct {
	Store   ports.Store
	Fetcher ports.Fetcher
}

// ProcessOne pulls the oldest pending task, runs the fetch process, and
// records the outcome. Returns false when the queue was empty.
func (p Processor) ProcessOne(ctx context.Context) (bool, error) {
	t, err := p.Store.NextPendingTask(ctx)
	if err != nil || t == nil {
		return false, err
	}
	if err := p.Store.MarkDownloading(ctx, t.ID); err != nil {
		return false, err
	}
	log.Ctx(ctx).Info().Uint64("task", t.ID).Str("url", t.URL).Msg("download started")

	path, err := p.Fetcher.Execute(ctx, t.URL, t.ID)
	if err != nil {
		log.Ctx(ctx).Warn().Uint64("task", t.ID).Err(err).Msg("download failed")
		return true, p.Store.MarkFailed(ctx, t.ID, err.Error())
	}
	if err := p.Store.MarkCompleted(ctx, t.ID, path); err != nil {
		return true, err
	}
	if err := p.Store.IncrementDownloads(ctx, t.UserID); err != nil {
		log.Ctx(ctx).Warn().Int64("user", t.UserID).Err(err).Msg("failed to bump download counter")
	}
	log.Ctx(ctx).Info().Uint64("task", t.ID).Str("file", path).Msg("download completed")
	return true, nil
}
