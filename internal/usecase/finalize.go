package usecase

import (
	"context"
	"fmt"
	"os"

	"fetchbot/internal/ports"

	"github.com/rs/zerolog/log"
)

// missingArtifactGrace is how many finalize passes a completed task may sit
// with its artifact gone before the user is told it expired. Keeps a task
// whose file vanished (swept, or moved by hand) from stalling unsent forever.
const missingArtifactGrace = 3

// Finalizer delivers outcomes: completed artifacts go out as files, failures
// as text. Delivery errors are logged and do not block the status advance.
type Finalizer struct {
	Store        ports.Store
	Messenger    ports.Messenger
	MaxFileBytes int64

	// missedPasses tracks consecutive passes in which a completed task's
	// artifact was absent. Transient bookkeeping, not task state.
	missedPasses map[uint64]int
}

func NewFinalizer(store ports.Store, messenger ports.Messenger, maxFileBytes int64) *Finalizer {
	return &Finalizer{
		Store:        store,
		Messenger:    messenger,
		MaxFileBytes: maxFileBytes,
		missedPasses: make(map[uint64]int),
	}
}

// FinalizeCompleted hands off up to limit completed tasks, oldest first.
// Oversized artifacts produce a warning instead of the file and are still
// marked sent; missing artifacts are skipped for a few passes and then
// reported as expired.
func (f *Finalizer) FinalizeCompleted(ctx context.Context, limit int) error {
	tasks, err := f.Store.CompletedUnsent(ctx, limit)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		info, err := os.Stat(t.FilePath)
		if err != nil {
			f.missedPasses[t.ID]++
			if f.missedPasses[t.ID] < missingArtifactGrace {
				log.Ctx(ctx).Debug().Uint64("task", t.ID).Str("file", t.FilePath).
					Int("misses", f.missedPasses[t.ID]).Msg("artifact missing, skipping this pass")
				continue
			}
			delete(f.missedPasses, t.ID)
			log.Ctx(ctx).Warn().Uint64("task", t.ID).Str("file", t.FilePath).
				Msg("artifact never reappeared, notifying expiry")
			f.send(ctx, t.UserID, fmt.Sprintf("Your download #%d expired before it could be delivered. Please submit the link again.", t.ID))
			if err := f.Store.MarkSent(ctx, t.ID); err != nil {
				return err
			}
			continue
		}
		delete(f.missedPasses, t.ID)

		if info.Size() > f.MaxFileBytes {
			f.send(ctx, t.UserID, fmt.Sprintf("Your download #%d finished but is too large to deliver (%d MB). It will be purged.", t.ID, info.Size()/(1<<20)))
			if err := f.Store.MarkSent(ctx, t.ID); err != nil {
				return err
			}
			continue
		}

		if err := f.Messenger.SendFile(ctx, t.UserID, t.FilePath, t.URL); err != nil {
			log.Ctx(ctx).Error().Uint64("task", t.ID).Err(err).Msg("file delivery failed")
		}
		if err := f.Store.MarkSent(ctx, t.ID); err != nil {
			return err
		}
	}
	return nil
}

// FinalizeFailed notifies up to limit failed tasks, oldest first.
func (f *Finalizer) FinalizeFailed(ctx context.Context, limit int) error {
	tasks, err := f.Store.FailedUnnotified(ctx, limit)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		f.send(ctx, t.UserID, fmt.Sprintf("Download #%d failed: %s", t.ID, t.ErrorMessage))
		if err := f.Store.MarkNotified(ctx, t.ID); err != nil {
			return err
		}
	}
	return nil
}

func (f *Finalizer) send(ctx context.Context, chatID int64, text string) {
	if err := f.Messenger.SendText(ctx, chatID, text); err != nil {
		log.Ctx(ctx).Error().Int64("chat", chatID).Err(err).Msg("notification delivery failed")
	}
}
