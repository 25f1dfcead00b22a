package database

import (
	"context"
	"fmt"
)

func (s *sqliteDB) GetBasicStats(ctx context.Context) (BasicStats, error) {
	var stats BasicStats
	err := s.db.GetContext(ctx, &stats, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE is_blocked = 0) AS total_users,
			(SELECT COUNT(*) FROM users WHERE last_activity >= datetime('now', '-7 days') AND is_blocked = 0) AS active_users,
			(SELECT COUNT(*) FROM users WHERE is_blocked = 1) AS blocked_users,
			(SELECT COUNT(*) FROM group_chats) AS total_groups,
			(SELECT COALESCE(SUM(member_count), 0) FROM group_chats) AS total_group_members`)
	return stats, err
}

// GetGlobalStats always contains the all-time and text totals, zero when unset.
func (s *sqliteDB) GetGlobalStats(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT stat_key, stat_value FROM global_stats")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int64{
		StatTotalRequests:                 0,
		StatTotalPrefix + RequestKindText: 0,
	}
	for rows.Next() {
		var key string
		var value int64
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan stat: %w", err)
		}
		stats[key] = value
	}
	return stats, rows.Err()
}

func (s *sqliteDB) GetUserStats(ctx context.Context, userID int64) (*UserStats, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.GetUserRequestsCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	var styles int
	if err := s.db.GetContext(ctx, &styles,
		"SELECT COUNT(*) FROM user_styles WHERE user_id = ?", userID); err != nil {
		return nil, err
	}

	return &UserStats{
		RequestsToday:    count,
		RegistrationDate: user.RegistrationDate,
		StylesCount:      styles,
	}, nil
}
