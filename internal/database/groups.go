package database

import (
	"context"
	"database/sql"
	"errors"
)

// AddGroupChat upserts a group. The first user who added the bot stays the owner.
func (s *sqliteDB) AddGroupChat(ctx context.Context, chat GroupChat) error {
	_, err := s.ExecWithRetry(ctx, `
		INSERT INTO group_chats (chat_id, chat_title, added_by, member_count, last_updated)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(chat_id) DO UPDATE SET
			chat_title = excluded.chat_title,
			member_count = CASE WHEN excluded.member_count > 0 THEN excluded.member_count ELSE member_count END,
			last_updated = CURRENT_TIMESTAMP
	`, chat.ChatID, chat.Title, chat.AddedBy, chat.MemberCount)
	return err
}

func (s *sqliteDB) UpdateGroupMemberCount(ctx context.Context, chatID int64, count int) error {
	_, err := s.ExecWithRetry(ctx,
		"UPDATE group_chats SET member_count = ?, last_updated = CURRENT_TIMESTAMP WHERE chat_id = ?",
		count, chatID)
	return err
}

func (s *sqliteDB) GetUserGroupChats(ctx context.Context, userID int64) ([]GroupChat, error) {
	var chats []GroupChat
	err := s.db.SelectContext(ctx, &chats, `
		SELECT chat_id, chat_title, added_by, member_count, last_updated
		FROM group_chats WHERE added_by = ? ORDER BY chat_title`, userID)
	return chats, err
}

func (s *sqliteDB) GetAllGroupChats(ctx context.Context) ([]GroupChat, error) {
	var chats []GroupChat
	err := s.db.SelectContext(ctx, &chats, `
		SELECT chat_id, chat_title, added_by, member_count, last_updated
		FROM group_chats ORDER BY member_count DESC`)
	return chats, err
}

func (s *sqliteDB) GetAllGroupChatIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.SelectContext(ctx, &ids, "SELECT chat_id FROM group_chats ORDER BY chat_id")
	return ids, err
}

func (s *sqliteDB) IsGroupOwner(ctx context.Context, userID, chatID int64) (bool, error) {
	var addedBy int64
	err := s.db.GetContext(ctx, &addedBy, "SELECT added_by FROM group_chats WHERE chat_id = ?", chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return addedBy == userID, nil
}
