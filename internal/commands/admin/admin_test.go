package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/muratoffalex/errorer/internal/ai"
	"github.com/muratoffalex/errorer/internal/commands/commandtest"
	"github.com/muratoffalex/errorer/internal/database"
	"github.com/muratoffalex/errorer/internal/service/state"
	"github.com/muratoffalex/errorer/internal/telegram"
)

const adminID = 42

func newTestCommand(t *testing.T) (*Command, *commandtest.Env) {
	t.Helper()
	env := commandtest.New(t, map[string]any{
		"telegram.admin_ids":      []int64{adminID},
		"broadcast.private_delay": "1ms",
		"broadcast.group_delay":   "1ms",
	})
	return New(env.Container), env
}

func adminMessage(text string) *telegram.MessageOriginal {
	return &telegram.MessageOriginal{
		MessageID: 1,
		From:      &telegram.APIUser{ID: adminID},
		Chat:      tgbotapi.Chat{ID: adminID, Type: "private"},
		Text:      text,
	}
}

func TestBroadcaster_MarksBlockedUsers(t *testing.T) {
	env := commandtest.New(t, nil)
	ctx := context.Background()
	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, env.DB.AddOrUpdateUser(ctx, database.User{ID: id}))
	}

	env.Client.EXPECT().SendWithRetry(mock.Anything, maxSendRetries).RunAndReturn(
		func(m telegram.MessageConfig, _ int) (*telegram.Message, error) {
			switch m.(telegram.TextMessage).ChatID {
			case 2:
				return nil, errors.New("Forbidden: bot was blocked by the user")
			case 3:
				return nil, errors.New("Bad Request: chat not found")
			}
			return &telegram.Message{}, nil
		}).Times(3)

	b := NewBroadcaster(env.Client, env.DB, env.Logger)
	report, err := b.Send(ctx, []int64{1, 2, 3}, "news", nil, time.Millisecond, true)

	require.NoError(t, err)
	assert.Equal(t, BroadcastReport{Total: 3, Sent: 1, Failed: 1, Blocked: 1}, report)

	user, err := env.DB.GetUser(ctx, 2)
	require.NoError(t, err)
	assert.True(t, user.IsBlocked)
	assert.True(t, env.Logger.HasEntry("info", "Broadcast finished"))
}

func TestBroadcaster_StopsOnCancel(t *testing.T) {
	env := commandtest.New(t, nil)
	env.Client.EXPECT().SendWithRetry(mock.Anything, maxSendRetries).Return(&telegram.Message{}, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	b := NewBroadcaster(env.Client, env.DB, env.Logger)
	go cancel()
	report, err := b.Send(ctx, []int64{1, 2}, "news", nil, time.Minute, false)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, report.Sent)
}

func TestHandleCallback_DeniesNonAdmins(t *testing.T) {
	cmd, env := newTestCommand(t)
	query := &telegram.CallbackQuery{ID: "q", From: &telegram.APIUser{ID: 7}, Data: CallbackGlobalStats}

	env.Client.EXPECT().AnswerCallback(telegram.CallbackConfig{
		CallbackQueryID: "q",
		Text:            env.L("admin.denied", nil),
		ShowAlert:       true,
	}).Return(nil).Once()

	require.NoError(t, cmd.HandleCallback(context.Background(), query))
}

func TestDemoDialog_AnimatedTrigger(t *testing.T) {
	cmd, env := newTestCommand(t)
	ctx := context.Background()
	env.Client.EXPECT().SendWithRetry(mock.Anything, 0).Return(&telegram.Message{}, nil).Times(3)

	env.Container.States.Set(adminID, state.DemoUserID)
	require.NoError(t, cmd.HandleState(ctx, adminMessage("777"), state.DemoUserID))
	assert.Equal(t, state.DemoTrigger, env.Container.States.Get(adminID))

	require.NoError(t, cmd.HandleState(ctx, adminMessage("Hello Bot"), state.DemoTrigger))
	assert.Equal(t, state.DemoResponses, env.Container.States.Get(adminID))

	require.NoError(t, cmd.HandleState(ctx, adminMessage("frame one\n\n frame two \n"), state.DemoResponses))
	assert.Equal(t, state.None, env.Container.States.Get(adminID))

	trigger, err := env.DB.GetDemoTrigger(ctx, 777, "hello bot")
	require.NoError(t, err)
	assert.True(t, trigger.IsAnimated)
	assert.Equal(t, database.StringList{"frame one", "frame two"}, trigger.Responses)
}

func TestDemoDialog_SimpleTriggerKeepsEntities(t *testing.T) {
	cmd, env := newTestCommand(t)
	ctx := context.Background()
	env.Client.EXPECT().SendWithRetry(mock.Anything, 0).Return(&telegram.Message{}, nil).Times(3)

	env.Container.States.Set(adminID, state.SimpleDemoUserID)
	require.NoError(t, cmd.HandleState(ctx, adminMessage("777"), state.SimpleDemoUserID))
	require.NoError(t, cmd.HandleState(ctx, adminMessage("ping"), state.SimpleDemoTrigger))

	response := adminMessage("pong")
	response.Entities = []telegram.MessageEntity{{Type: "italic", Offset: 0, Length: 4}}
	require.NoError(t, cmd.HandleState(ctx, response, state.SimpleDemoResponse))

	trigger, err := env.DB.GetDemoTrigger(ctx, 777, "ping")
	require.NoError(t, err)
	assert.False(t, trigger.IsAnimated)
	assert.Equal(t, database.StringList{"pong"}, trigger.Responses)
	assert.Contains(t, trigger.Entities, `"italic"`)
}

func TestDemoDialog_BadUserID(t *testing.T) {
	cmd, env := newTestCommand(t)
	want := env.L("admin.demoBadUserID", nil)
	env.Client.EXPECT().SendWithRetry(mock.MatchedBy(func(m telegram.MessageConfig) bool {
		return m.(telegram.TextMessage).Text == want
	}), 0).Return(&telegram.Message{}, nil).Once()

	env.Container.States.Set(adminID, state.DemoUserID)
	require.NoError(t, cmd.HandleState(context.Background(), adminMessage("not a number"), state.DemoUserID))

	assert.Equal(t, state.DemoUserID, env.Container.States.Get(adminID), "the dialog waits for a valid id")
}

func TestSplitResponses(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, SplitResponses("a\n\n  b c  \n"))
	assert.Empty(t, SplitResponses(" \n "))
}

func TestFormatSpeedResults(t *testing.T) {
	results := []ai.SpeedResult{
		{Candidate: ai.Candidate{Backend: "g4f", Model: "slow"}, Latency: 2 * time.Second},
		{Candidate: ai.Candidate{Backend: "g4f", Model: "broken"}, Err: errors.New("429 Too Many Requests")},
		{Candidate: ai.Candidate{Backend: "g4f", Model: "fast", Provider: "P"}, Latency: 300 * time.Millisecond},
	}

	got := FormatSpeedResults(results)

	assert.Equal(t,
		"✅ <code>g4f/fast@P</code> 300ms\n"+
			"✅ <code>g4f/slow@"+ai.AutoProvider+"</code> 2s\n"+
			"❌ <code>g4f/broken@"+ai.AutoProvider+"</code> rate_limit",
		got)
}

func TestFormatCandidateStats_SkipsUntried(t *testing.T) {
	stats := []ai.CandidateStats{
		{Candidate: ai.Candidate{Backend: "b", Model: "m", Provider: "p"}, Attempts: 4, Successes: 3, TotalLatency: 4 * time.Second},
		{Candidate: ai.Candidate{Backend: "b", Model: "idle", Provider: "p"}},
	}

	assert.Equal(t, "<code>b/m@p</code> 3/4 ok, 75%, avg 1s", FormatCandidateStats(stats))
}
