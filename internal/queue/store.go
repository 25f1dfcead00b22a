package queue

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/muratoffalex/errorer/internal/database"
)

// store holds the SQL for the tasks table. Writes go through ExecWithRetry so
// a busy database doesn't lose status updates.
type store struct {
	db database.Database
	x  *sqlx.DB
}

func newStore(db database.Database) *store {
	return &store{db: db, x: sqlx.NewDb(db.GetDB(), "sqlite")}
}

func (s *store) insert(ctx context.Context, command string, data []byte, maxRetries int, retryDelay int64) error {
	_, err := s.db.ExecWithRetry(ctx, `
		INSERT INTO tasks (command, update_data, max_retries, retry_delay, next_attempt)
		VALUES (?, ?, ?, ?, ?)`,
		command, data, maxRetries, retryDelay, time.Now())
	return err
}

// claim marks the oldest due pending task of command as running and returns
// it, or nil when there is none.
func (s *store) claim(ctx context.Context, command string, now time.Time) (*Task, error) {
	var task Task
	err := s.x.GetContext(ctx, &task, `
		UPDATE tasks
		SET status = ?, last_attempt = ?
		WHERE id = (
			SELECT id FROM tasks
			WHERE command = ? AND status = ? AND next_attempt <= ?
			ORDER BY id ASC
			LIMIT 1
		)
		RETURNING id, command, update_data, retry_count, max_retries, retry_delay, status`,
		TaskStatusRunning, now, command, TaskStatusPending, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *store) setStatus(ctx context.Context, id int64, status TaskStatus) error {
	_, err := s.db.ExecWithRetry(ctx, "UPDATE tasks SET status = ? WHERE id = ?", status, id)
	return err
}

func (s *store) reschedule(ctx context.Context, id int64, next time.Time) error {
	_, err := s.db.ExecWithRetry(ctx, `
		UPDATE tasks
		SET status = ?, retry_count = retry_count + 1, next_attempt = ?
		WHERE id = ?`,
		TaskStatusPending, next, id)
	return err
}
