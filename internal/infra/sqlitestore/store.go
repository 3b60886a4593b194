package sqlitestore

import (
	"fetchbot/internal/domain"
	"fetchbot/internal/ports"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ ports.Store = (*Store)(nil)

// Store implements ports.Store on an embedded sqlite database.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database at path and migrates both tables.
func Open(path string) (*Store, error) {
	log.Info().Msgf("opening task store at %s", path)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite store at %s", path)
	}
	if err := db.AutoMigrate(&domain.Task{}, &domain.UserStat{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate task store")
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(sqlDB.Close())
}
