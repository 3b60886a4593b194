package ports

import (
	"context"
	"fetchbot/internal/domain"
)

// Store owns the tasks and user_stats tables. Every other component goes
// through it; nothing caches task or user state across ticks.
type Store interface {
	EnqueueTask(ctx context.Context, userID int64, url string) (uint64, error)
	// NextPendingTask returns the oldest pending task (created_at asc, then
	// id asc), or nil when the queue is empty.
	NextPendingTask(ctx context.Context) (*domain.Task, error)
	MarkDownloading(ctx context.Context, id uint64) error
	MarkCompleted(ctx context.Context, id uint64, filePath string) error
	MarkFailed(ctx context.Context, id uint64, errMsg string) error
	MarkSent(ctx context.Context, id uint64) error
	MarkNotified(ctx context.Context, id uint64) error
	// CompletedUnsent and FailedUnnotified return up to limit tasks ordered
	// by updated_at ascending, so users waiting longest are served first.
	CompletedUnsent(ctx context.Context, limit int) ([]domain.Task, error)
	FailedUnnotified(ctx context.Context, limit int) ([]domain.Task, error)
	GetUserStat(ctx context.Context, userID int64) (*domain.UserStat, error)
	UpsertUserStat(ctx context.Context, st domain.UserStat) error
	IncrementDownloads(ctx context.Context, userID int64) error
	CountByStatus(ctx context.Context, statuses ...domain.Status) (int64, error)
}

// Fetcher runs the external media-fetch process for one task. Callers
// guarantee serialization; Execute is never re-entrant.
type Fetcher interface {
	Execute(ctx context.Context, url string, taskID uint64) (string, error)
}

// Messenger is the outbound side of the chat transport. Failures are logged
// and dropped by callers; there is no delivery retry.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendFile(ctx context.Context, chatID int64, path string, caption string) error
}

// Event is one inbound chat message.
type Event struct {
	UserID int64
	ChatID int64
	Text   string
}

// EventSource is the inbound side of the chat transport. FetchEvents blocks
// up to the transport's own long-poll timeout and returns the next cursor.
type EventSource interface {
	FetchEvents(ctx context.Context, cursor int) ([]Event, int, error)
}
