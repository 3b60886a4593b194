package sweep

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper deletes downloaded artifacts older than the retention window. It
// works on raw directory entries, not task rows, so a sent task's file_path
// may dangle afterwards.
type Sweeper struct {
	Dir       string
	Retention time.Duration
}

// Sweep removes regular files in Dir whose modification time is older than
// the retention window and returns how many were removed.
func (s Sweeper) Sweep() (int, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	cutoff := time.Now().Add(-s.Retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(s.Dir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Warn().Str("file", path).Err(err).Msg("failed to remove expired artifact")
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Str("dir", s.Dir).Msg("retention sweep done")
	}
	return removed, nil
}
