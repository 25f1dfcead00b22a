package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// NormalizeTrigger is how trigger texts are stored and matched.
func NormalizeTrigger(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func (s *sqliteDB) GetDemoTrigger(ctx context.Context, userID int64, text string) (*DemoTrigger, error) {
	var trigger DemoTrigger
	err := s.db.GetContext(ctx, &trigger, `
		SELECT id, user_id, trigger_text, responses, is_animated, entities, created_at
		FROM demo_triggers WHERE user_id = ? AND trigger_text = ?`,
		userID, NormalizeTrigger(text))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trigger, nil
}

// AddDemoTrigger replaces an existing trigger with the same user and text.
func (s *sqliteDB) AddDemoTrigger(ctx context.Context, trigger DemoTrigger) error {
	_, err := s.ExecWithRetry(ctx, `
		INSERT OR REPLACE INTO demo_triggers (user_id, trigger_text, responses, is_animated, entities)
		VALUES (?, ?, ?, ?, ?)`,
		trigger.UserID, NormalizeTrigger(trigger.TriggerText), trigger.Responses,
		trigger.IsAnimated, trigger.Entities)
	return err
}

func (s *sqliteDB) GetAllDemoTriggers(ctx context.Context) ([]DemoTrigger, error) {
	var triggers []DemoTrigger
	err := s.db.SelectContext(ctx, &triggers, `
		SELECT id, user_id, trigger_text, responses, is_animated, entities, created_at
		FROM demo_triggers ORDER BY id`)
	return triggers, err
}

func (s *sqliteDB) DeleteDemoTrigger(ctx context.Context, id int64) error {
	res, err := s.ExecWithRetry(ctx, "DELETE FROM demo_triggers WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
