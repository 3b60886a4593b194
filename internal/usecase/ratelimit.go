package usecase

import (
	"context"
	"time"

	"fetchbot/internal/domain"
	"fetchbot/internal/ports"
)

// Limiter enforces the per-user hourly submission budget. Counters live in
// the store's user_stats table and reset at wall-clock hour boundaries.
type Limiter struct {
	Store       ports.Store
	HourlyLimit int
}

// Allow records one accepted request for userID and reports whether it fit
// the budget. A rejected request mutates nothing. The first request of a new
// user is always allowed.
func (l Limiter) Allow(ctx context.Context, userID int64, now time.Time) (bool, error) {
	bucket := domain.HourBucket(now)
	st, err := l.Store.GetUserStat(ctx, userID)
	if err != nil {
		return false, err
	}
	if st == nil {
		err := l.Store.UpsertUserStat(ctx, domain.UserStat{
			UserID:        userID,
			RequestsHour:  1,
			LastRequest:   now,
			LastHourReset: bucket,
		})
		return err == nil, err
	}
	used := st.RequestsHour
	if st.LastHourReset != bucket {
		// Stale bucket: the counter is logically zero. The persisted reset
		// happens on the write below.
		used = 0
	}
	if used >= l.HourlyLimit {
		return false, nil
	}
	st.RequestsHour = used + 1
	st.LastRequest = now
	st.LastHourReset = bucket
	if err := l.Store.UpsertUserStat(ctx, *st); err != nil {
		return false, err
	}
	return true, nil
}

// Remaining reports how many submissions userID has left in the current hour
// bucket without consuming one.
func (l Limiter) Remaining(ctx context.Context, userID int64, now time.Time) (int, error) {
	st, err := l.Store.GetUserStat(ctx, userID)
	if err != nil {
		return 0, err
	}
	if st == nil || st.LastHourReset != domain.HourBucket(now) {
		return l.HourlyLimit, nil
	}
	left := l.HourlyLimit - st.RequestsHour
	if left < 0 {
		left = 0
	}
	return left, nil
}
