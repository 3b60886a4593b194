package sqlitestore

import (
	"context"

	"fetchbot/internal/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetUserStat returns the row for userID, or nil if the user has never
// submitted a request.
func (s *Store) GetUserStat(ctx context.Context, userID int64) (*domain.UserStat, error) {
	var st domain.UserStat
	err := s.db.WithContext(ctx).First(&st, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &st, nil
}

// UpsertUserStat writes the full row, inserting it on first contact.
func (s *Store) UpsertUserStat(ctx context.Context, st domain.UserStat) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(&st).Error
	return errors.Wrapf(err, "failed to upsert stats for user %d", st.UserID)
}

// IncrementDownloads bumps the lifetime completed-download counter.
func (s *Store) IncrementDownloads(ctx context.Context, userID int64) error {
	res := s.db.WithContext(ctx).
		Model(&domain.UserStat{}).
		Where("user_id = ?", userID).
		UpdateColumn("downloads_count", gorm.Expr("downloads_count + 1"))
	if res.Error != nil {
		return errors.WithStack(res.Error)
	}
	if res.RowsAffected == 0 {
		// Stat rows are created at submission time, so this only happens if
		// the row was lost between enqueue and completion.
		return errors.Wrapf(domain.ErrNotFound, "user stat %d", userID)
	}
	return nil
}
