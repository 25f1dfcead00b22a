package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func (s *sqliteDB) AddUserStyle(ctx context.Context, userID int64, name, prompt string) (int64, error) {
	res, err := s.ExecWithRetry(ctx,
		"INSERT INTO user_styles (user_id, style_name, style_prompt) VALUES (?, ?, ?)",
		userID, name, prompt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *sqliteDB) GetUserStyles(ctx context.Context, userID int64) ([]Style, error) {
	var styles []Style
	err := s.db.SelectContext(ctx, &styles, `
		SELECT id, style_name, style_prompt, is_active
		FROM user_styles WHERE user_id = ? ORDER BY id`, userID)
	return styles, err
}

func (s *sqliteDB) SetActiveStyle(ctx context.Context, userID, styleID int64) error {
	return s.activate(ctx, "user_styles", "user_id", userID, styleID)
}

func (s *sqliteDB) GetActiveStylePrompt(ctx context.Context, userID int64) (string, error) {
	return s.activePrompt(ctx, "user_styles", "user_id", userID)
}

func (s *sqliteDB) AddGroupStyle(ctx context.Context, chatID int64, name, prompt string, addedBy int64) (int64, error) {
	res, err := s.ExecWithRetry(ctx,
		"INSERT INTO group_styles (chat_id, style_name, style_prompt, added_by) VALUES (?, ?, ?, ?)",
		chatID, name, prompt, addedBy)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *sqliteDB) GetGroupStyles(ctx context.Context, chatID int64) ([]Style, error) {
	var styles []Style
	err := s.db.SelectContext(ctx, &styles, `
		SELECT id, style_name, style_prompt, is_active
		FROM group_styles WHERE chat_id = ? ORDER BY id`, chatID)
	return styles, err
}

func (s *sqliteDB) SetActiveGroupStyle(ctx context.Context, chatID, styleID int64) error {
	return s.activate(ctx, "group_styles", "chat_id", chatID, styleID)
}

func (s *sqliteDB) GetActiveGroupStylePrompt(ctx context.Context, chatID int64) (string, error) {
	return s.activePrompt(ctx, "group_styles", "chat_id", chatID)
}

// activate makes styleID the only active style of owner. A style that
// doesn't belong to owner leaves the previous selection untouched.
func (s *sqliteDB) activate(ctx context.Context, table, ownerColumn string, owner, styleID int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var exists bool
		err := tx.GetContext(ctx, &exists,
			fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ? AND id = ?)", table, ownerColumn),
			owner, styleID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("UPDATE %s SET is_active = 0 WHERE %s = ?", table, ownerColumn), owner); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			fmt.Sprintf("UPDATE %s SET is_active = 1 WHERE %s = ? AND id = ?", table, ownerColumn),
			owner, styleID)
		return err
	})
}

// activePrompt returns "" when nothing is active.
func (s *sqliteDB) activePrompt(ctx context.Context, table, ownerColumn string, owner int64) (string, error) {
	var prompt string
	err := s.db.GetContext(ctx, &prompt,
		fmt.Sprintf("SELECT style_prompt FROM %s WHERE %s = ? AND is_active = 1 LIMIT 1", table, ownerColumn),
		owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return prompt, err
}
