package usecase

import (
	"context"
	"time"

	"fetchbot/internal/domain"
	"fetchbot/internal/platform"
	"fetchbot/internal/ports"
)

// Submitter turns an inbound URL into a pending task. Rejections are
// user-visible errors and never create task rows.
type Submitter struct {
	Store   ports.Store
	Limiter Limiter
}

// Submit checks the rate budget first, then validates the URL, and only then
// consumes a slot and enqueues. An invalid URL therefore never burns budget.
func (s Submitter) Submit(ctx context.Context, userID int64, rawURL string) (uint64, error) {
	now := time.Now().UTC()
	left, err := s.Limiter.Remaining(ctx, userID, now)
	if err != nil {
		return 0, err
	}
	if left <= 0 {
		return 0, domain.ErrRateLimited
	}
	if !platform.Validate(rawURL) {
		return 0, domain.ErrInvalidURL
	}
	ok, err := s.Limiter.Allow(ctx, userID, now)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, domain.ErrRateLimited
	}
	return s.Store.EnqueueTask(ctx, userID, rawURL)
}
