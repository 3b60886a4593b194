package sqlitestore

import (
	"context"
	"time"

	"fetchbot/internal/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// EnqueueTask inserts a new pending row and returns the assigned id.
func (s *Store) EnqueueTask(ctx context.Context, userID int64, url string) (uint64, error) {
	now := time.Now().UTC()
	t := domain.Task{
		UserID:    userID,
		URL:       url,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		return 0, errors.Wrap(err, "failed to enqueue task")
	}
	return t.ID, nil
}

// NextPendingTask returns the oldest pending task, ties broken by smallest id.
func (s *Store) NextPendingTask(ctx context.Context) (*domain.Task, error) {
	var t domain.Task
	err := s.db.WithContext(ctx).
		Where("status = ?", domain.StatusPending).
		Order("created_at ASC").
		Order("id ASC").
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &t, nil
}

// transition loads the row, validates the edge, and applies the update
// together with a fresh updated_at.
func (s *Store) transition(ctx context.Context, id uint64, next domain.Status, extra map[string]any) error {
	var t domain.Task
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrapf(domain.ErrNotFound, "task %d", id)
		}
		return errors.WithStack(err)
	}
	if !t.Status.CanTransition(next) {
		return errors.Wrapf(domain.ErrInvalidTransition, "task %d: %s -> %s", id, t.Status, next)
	}
	updates := map[string]any{
		"status":     next,
		"updated_at": time.Now().UTC(),
	}
	for k, v := range extra {
		updates[k] = v
	}
	err := s.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ?", id).
		Updates(updates).Error
	return errors.Wrapf(err, "failed to mark task %d %s", id, next)
}

func (s *Store) MarkDownloading(ctx context.Context, id uint64) error {
	return s.transition(ctx, id, domain.StatusDownloading, nil)
}

func (s *Store) MarkCompleted(ctx context.Context, id uint64, filePath string) error {
	return s.transition(ctx, id, domain.StatusCompleted, map[string]any{"file_path": filePath})
}

func (s *Store) MarkFailed(ctx context.Context, id uint64, errMsg string) error {
	return s.transition(ctx, id, domain.StatusFailed, map[string]any{"error_message": errMsg})
}

func (s *Store) MarkSent(ctx context.Context, id uint64) error {
	return s.transition(ctx, id, domain.StatusSent, nil)
}

func (s *Store) MarkNotified(ctx context.Context, id uint64) error {
	return s.transition(ctx, id, domain.StatusNotified, nil)
}

func (s *Store) listByStatus(ctx context.Context, status domain.Status, limit int) ([]domain.Task, error) {
	var tasks []domain.Task
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("updated_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&tasks).Error
	return tasks, errors.WithStack(err)
}

// CompletedUnsent returns completed tasks waiting for delivery, oldest first.
func (s *Store) CompletedUnsent(ctx context.Context, limit int) ([]domain.Task, error) {
	return s.listByStatus(ctx, domain.StatusCompleted, limit)
}

// FailedUnnotified returns failed tasks waiting for a failure notice, oldest first.
func (s *Store) FailedUnnotified(ctx context.Context, limit int) ([]domain.Task, error) {
	return s.listByStatus(ctx, domain.StatusFailed, limit)
}

// CountByStatus counts tasks in any of the given statuses.
func (s *Store) CountByStatus(ctx context.Context, statuses ...domain.Status) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("status IN ?", statuses).
		Count(&total).Error
	return total, errors.WithStack(err)
}
