package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func (s *sqliteDB) AddOrUpdateUser(ctx context.Context, user User) error {
	_, err := s.ExecWithRetry(ctx, `
		INSERT INTO users (id, username, first_name, is_blocked, last_activity)
		VALUES (?, ?, ?, 0, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			first_name = excluded.first_name,
			is_blocked = 0,
			last_activity = CURRENT_TIMESTAMP
	`, user.ID, user.Username, user.FirstName)
	return err
}

func (s *sqliteDB) GetUser(ctx context.Context, userID int64) (*User, error) {
	var user User
	err := s.db.GetContext(ctx, &user, `
		SELECT id, username, first_name, registration_date, daily_requests,
			last_request_date, is_blocked, last_activity
		FROM users WHERE id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *sqliteDB) MarkUserBlocked(ctx context.Context, userID int64) error {
	_, err := s.ExecWithRetry(ctx, "UPDATE users SET is_blocked = 1 WHERE id = ?", userID)
	return err
}

// GetUserRequestsCount returns today's request count, resetting a counter
// left over from a previous day. Unknown users have zero requests.
func (s *sqliteDB) GetUserRequestsCount(ctx context.Context, userID int64) (int, error) {
	var row struct {
		DailyRequests   int    `db:"daily_requests"`
		LastRequestDate string `db:"last_request_date"`
	}
	err := s.db.GetContext(ctx, &row,
		"SELECT daily_requests, last_request_date FROM users WHERE id = ?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	if row.LastRequestDate != today() {
		if _, err := s.ExecWithRetry(ctx,
			"UPDATE users SET daily_requests = 0, last_request_date = ? WHERE id = ?",
			today(), userID); err != nil {
			return 0, err
		}
		return 0, nil
	}
	return row.DailyRequests, nil
}

// IncrementUserRequests bumps the user's daily counter and the global
// per-kind and all-time totals in one transaction.
func (s *sqliteDB) IncrementUserRequests(ctx context.Context, userID int64, kind string) error {
	day := today()
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE users SET
				daily_requests = CASE WHEN last_request_date = ? THEN daily_requests + 1 ELSE 1 END,
				last_request_date = ?,
				last_activity = CURRENT_TIMESTAMP
			WHERE id = ?`, day, day, userID); err != nil {
			return fmt.Errorf("failed to update user counter: %w", err)
		}
		for _, key := range []string{StatTotalPrefix + kind, StatTotalRequests} {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO global_stats (stat_key, stat_value) VALUES (?, 1)
				ON CONFLICT(stat_key) DO UPDATE SET stat_value = stat_value + 1`, key); err != nil {
				return fmt.Errorf("failed to update %s: %w", key, err)
			}
		}
		return nil
	})
}

func (s *sqliteDB) GetAllUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.SelectContext(ctx, &ids, "SELECT id FROM users WHERE is_blocked = 0 ORDER BY id")
	return ids, err
}
