package database

import (
	"fmt"
	"time"
)

// PurgeOldTasks drops finished queue tasks older than retentionDays.
func (s *sqliteDB) PurgeOldTasks(retentionDays int) error {
	_, err := s.db.Exec(
		"DELETE FROM tasks WHERE status IN ('complete', 'failed') AND created_at < datetime('now', ?)",
		fmt.Sprintf("-%d days", retentionDays))
	return err
}

func (s *sqliteDB) PurgeExpiredCache() error {
	_, err := s.db.Exec("DELETE FROM cache WHERE expires_at < ?", time.Now().UTC())
	return err
}
