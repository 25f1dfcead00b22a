package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muratoffalex/errorer/internal/logger"
)

func newTestDB(t *testing.T) Database {
	t.Helper()
	db, err := Open(":memory:", logger.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUsers_RequestCounters(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	require.NoError(t, db.AddOrUpdateUser(ctx, User{ID: 1, Username: "neo", FirstName: "Thomas"}))

	count, err := db.GetUserRequestsCount(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, db.IncrementUserRequests(ctx, 1, RequestKindText))
	require.NoError(t, db.IncrementUserRequests(ctx, 1, RequestKindText))

	count, err = db.GetUserRequestsCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	stats, err := db.GetGlobalStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats[StatTotalRequests])
	assert.EqualValues(t, 2, stats["total_text"])
}

func TestUsers_CounterResetsOnNewDay(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	require.NoError(t, db.AddOrUpdateUser(ctx, User{ID: 7}))
	_, err := db.Exec("UPDATE users SET daily_requests = 50, last_request_date = '2000-01-01' WHERE id = 7")
	require.NoError(t, err)

	count, err := db.GetUserRequestsCount(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, count)

	user, err := db.GetUser(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, user.DailyRequests)
	assert.Equal(t, time.Now().UTC().Format(time.DateOnly), user.LastRequestDate)
}

func TestUsers_BlockedExcludedFromBroadcastList(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, db.AddOrUpdateUser(ctx, User{ID: id}))
	}
	require.NoError(t, db.MarkUserBlocked(ctx, 2))

	ids, err := db.GetAllUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids)

	basic, err := db.GetBasicStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, basic.TotalUsers)
	assert.EqualValues(t, 1, basic.BlockedUsers)
	assert.EqualValues(t, 2, basic.ActiveUsers)

	// returning user is unblocked
	require.NoError(t, db.AddOrUpdateUser(ctx, User{ID: 2}))
	ids, err = db.GetAllUserIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
}

func TestGetUser_NotFound(t *testing.T) {
	_, err := newTestDB(t).GetUser(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStyles_SingleActive(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	first, err := db.AddUserStyle(ctx, 1, "pirate", "Talk like a pirate")
	require.NoError(t, err)
	second, err := db.AddUserStyle(ctx, 1, "poet", "Answer in verse")
	require.NoError(t, err)
	other, err := db.AddUserStyle(ctx, 2, "x", "y")
	require.NoError(t, err)

	prompt, err := db.GetActiveStylePrompt(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, prompt)

	require.NoError(t, db.SetActiveStyle(ctx, 1, first))
	require.NoError(t, db.SetActiveStyle(ctx, 1, second))

	styles, err := db.GetUserStyles(ctx, 1)
	require.NoError(t, err)
	require.Len(t, styles, 2)
	assert.False(t, styles[0].IsActive)
	assert.True(t, styles[1].IsActive)

	prompt, err = db.GetActiveStylePrompt(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Answer in verse", prompt)

	err = db.SetActiveStyle(ctx, 1, other)
	assert.ErrorIs(t, err, ErrNotFound)
	prompt, err = db.GetActiveStylePrompt(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Answer in verse", prompt, "foreign style must not change the selection")
}

func TestGroups_OwnerAndStyles(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	require.NoError(t, db.AddGroupChat(ctx, GroupChat{ChatID: -100, Title: "devs", AddedBy: 1, MemberCount: 5}))
	require.NoError(t, db.AddGroupChat(ctx, GroupChat{ChatID: -100, Title: "devs!", AddedBy: 2}))

	owner, err := db.IsGroupOwner(ctx, 1, -100)
	require.NoError(t, err)
	assert.True(t, owner)
	owner, err = db.IsGroupOwner(ctx, 2, -100)
	require.NoError(t, err)
	assert.False(t, owner)

	chats, err := db.GetUserGroupChats(ctx, 1)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "devs!", chats[0].Title)
	assert.Equal(t, 5, chats[0].MemberCount)

	require.NoError(t, db.UpdateGroupMemberCount(ctx, -100, 9))
	all, err := db.GetAllGroupChats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, all[0].MemberCount)

	id, err := db.AddGroupStyle(ctx, -100, "formal", "Be formal", 1)
	require.NoError(t, err)
	require.NoError(t, db.SetActiveGroupStyle(ctx, -100, id))
	prompt, err := db.GetActiveGroupStylePrompt(ctx, -100)
	require.NoError(t, err)
	assert.Equal(t, "Be formal", prompt)

	ids, err := db.GetAllGroupChatIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{-100}, ids)
}

func TestDemoTriggers(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	require.NoError(t, db.AddDemoTrigger(ctx, DemoTrigger{
		UserID:      5,
		TriggerText: "  Hello Bot ",
		Responses:   StringList{"Hi", "Hi there", "Hi there!"},
		IsAnimated:  true,
	}))

	trigger, err := db.GetDemoTrigger(ctx, 5, "hello bot")
	require.NoError(t, err)
	assert.Equal(t, StringList{"Hi", "Hi there", "Hi there!"}, trigger.Responses)
	assert.True(t, trigger.IsAnimated)

	_, err = db.GetDemoTrigger(ctx, 6, "hello bot")
	assert.ErrorIs(t, err, ErrNotFound)

	// same user and text replaces
	require.NoError(t, db.AddDemoTrigger(ctx, DemoTrigger{
		UserID:      5,
		TriggerText: "HELLO BOT",
		Responses:   StringList{"<b>bold</b>"},
		Entities:    `[{"type":"bold","offset":0,"length":4}]`,
	}))
	all, err := db.GetAllDemoTriggers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsAnimated)
	assert.NotEmpty(t, all[0].Entities)

	require.NoError(t, db.DeleteDemoTrigger(ctx, all[0].ID))
	assert.ErrorIs(t, db.DeleteDemoTrigger(ctx, all[0].ID), ErrNotFound)
}

func TestMaintenance(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := db.ExecContext(ctx, `
		INSERT INTO tasks (command, update_data, status, next_attempt, created_at) VALUES
		('ai', x'00', 'complete', ?, datetime('now', '-3 days')),
		('ai', x'00', 'pending', ?, datetime('now', '-3 days')),
		('ai', x'00', 'failed', ?, datetime('now'))`,
		time.Now().UTC(), time.Now().UTC(), time.Now().UTC())
	require.NoError(t, err)

	require.NoError(t, db.PurgeOldTasks(1))
	var left int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM tasks").Scan(&left))
	assert.Equal(t, 2, left)

	_, err = db.Exec("INSERT INTO cache (key, data, expires_at) VALUES ('old', x'01', ?), ('new', x'01', ?)",
		time.Now().UTC().Add(-time.Hour), time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, db.PurgeExpiredCache())
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM cache").Scan(&left))
	assert.Equal(t, 1, left)
}
