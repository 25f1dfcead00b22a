package demo

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/muratoffalex/errorer/internal/commands/commandtest"
	"github.com/muratoffalex/errorer/internal/database"
	"github.com/muratoffalex/errorer/internal/telegram"
)

func textUpdate(userID int64, text string) telegram.Update {
	return telegram.Update{Message: &telegram.MessageOriginal{
		MessageID: 3,
		From:      &telegram.APIUser{ID: userID},
		Chat:      tgbotapi.Chat{ID: 500, Type: "group"},
		Text:      text,
	}}
}

func TestHandleText_NoTrigger(t *testing.T) {
	env := commandtest.New(t, nil)
	h := New(env.Container)

	handled, err := h.HandleText(context.Background(), textUpdate(1, "hello"))

	require.NoError(t, err)
	assert.False(t, handled)
}

func TestHandleText_SimpleTriggerKeepsEntities(t *testing.T) {
	env := commandtest.New(t, nil)
	h := New(env.Container)
	ctx := context.Background()

	raw, err := EncodeEntities([]telegram.MessageEntity{{Type: "bold", Offset: 0, Length: 4}})
	require.NoError(t, err)
	require.NoError(t, env.DB.AddDemoTrigger(ctx, database.DemoTrigger{
		UserID:      7,
		TriggerText: "Magic",
		Responses:   database.StringList{"Boom!"},
		Entities:    raw,
	}))

	env.Client.EXPECT().SendWithRetry(mock.MatchedBy(func(m telegram.MessageConfig) bool {
		msg, ok := m.(telegram.TextMessage)
		return ok && msg.Text == "Boom!" && msg.ReplyTo == 3 &&
			len(msg.Entities) == 1 && msg.Entities[0].Type == "bold"
	}), 0).Return(&telegram.Message{MessageID: 4}, nil).Once()

	handled, err := h.HandleText(ctx, textUpdate(7, "  magic "))

	require.NoError(t, err)
	assert.True(t, handled)
}

func TestHandleText_OtherUserDoesNotTrigger(t *testing.T) {
	env := commandtest.New(t, nil)
	h := New(env.Container)
	ctx := context.Background()
	require.NoError(t, env.DB.AddDemoTrigger(ctx, database.DemoTrigger{
		UserID: 7, TriggerText: "magic", Responses: database.StringList{"Boom!"},
	}))

	handled, err := h.HandleText(ctx, textUpdate(8, "magic"))

	require.NoError(t, err)
	assert.False(t, handled)
}

func TestHandleText_AnimatedTriggerEditsFrames(t *testing.T) {
	env := commandtest.New(t, nil)
	h := New(env.Container)
	h.interval = time.Millisecond
	ctx := context.Background()
	require.NoError(t, env.DB.AddDemoTrigger(ctx, database.DemoTrigger{
		UserID:      7,
		TriggerText: "count",
		Responses:   database.StringList{"3", "2", "1"},
		IsAnimated:  true,
	}))

	env.Client.EXPECT().SendWithRetry(mock.Anything, 0).Return(&telegram.Message{MessageID: 4}, nil).Once()
	var frames []string
	env.Client.EXPECT().Send(mock.Anything).RunAndReturn(func(m telegram.MessageConfig) (*telegram.Message, error) {
		edit := m.(telegram.EditMessageTextConfig)
		assert.Equal(t, int64(500), edit.ChatID)
		assert.Equal(t, 4, edit.MessageID)
		frames = append(frames, edit.Text)
		return &telegram.Message{MessageID: 4}, nil
	}).Times(2)

	handled, err := h.HandleText(ctx, textUpdate(7, "count"))

	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []string{"2", "1"}, frames)
}

func businessUpdate(userID int64, text string) telegram.Update {
	u := textUpdate(userID, text)
	u.Message.Chat.Type = "private"
	u.Message.BusinessConnectionID = "conn-1"
	return u
}

func TestHandleText_BusinessEditsOwnMessage(t *testing.T) {
	env := commandtest.New(t, nil)
	h := New(env.Container)
	ctx := context.Background()

	raw, err := EncodeEntities([]telegram.MessageEntity{{Type: "italic", Offset: 0, Length: 5}})
	require.NoError(t, err)
	require.NoError(t, env.DB.AddDemoTrigger(ctx, database.DemoTrigger{
		UserID:      7,
		TriggerText: "magic",
		Responses:   database.StringList{"Boom!"},
		Entities:    raw,
	}))

	env.Client.EXPECT().Send(mock.MatchedBy(func(m telegram.MessageConfig) bool {
		edit, ok := m.(telegram.EditMessageTextConfig)
		return ok && edit.MessageID == 3 && edit.Text == "Boom!" &&
			edit.BusinessConnectionID == "conn-1" &&
			len(edit.Entities) == 1 && edit.Entities[0].Type == "italic"
	})).Return(&telegram.Message{MessageID: 3}, nil).Once()

	handled, err := h.HandleText(ctx, businessUpdate(7, "magic"))

	require.NoError(t, err)
	assert.True(t, handled)
	env.Client.AssertNotCalled(t, "SendWithRetry", mock.Anything, mock.Anything)
}

func TestHandleText_BusinessAnimatesOwnMessage(t *testing.T) {
	env := commandtest.New(t, nil)
	h := New(env.Container)
	h.interval = time.Millisecond
	ctx := context.Background()
	require.NoError(t, env.DB.AddDemoTrigger(ctx, database.DemoTrigger{
		UserID:      7,
		TriggerText: "count",
		Responses:   database.StringList{"3", "2", "1"},
		IsAnimated:  true,
	}))

	var frames []string
	env.Client.EXPECT().Send(mock.Anything).RunAndReturn(func(m telegram.MessageConfig) (*telegram.Message, error) {
		edit := m.(telegram.EditMessageTextConfig)
		assert.Equal(t, 3, edit.MessageID)
		assert.Equal(t, "conn-1", edit.BusinessConnectionID)
		frames = append(frames, edit.Text)
		return &telegram.Message{MessageID: 3}, nil
	}).Times(3)

	handled, err := h.HandleText(ctx, businessUpdate(7, "count"))

	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []string{"3", "2", "1"}, frames)
}

func TestDecodeEntities_Invalid(t *testing.T) {
	env := commandtest.New(t, nil)

	assert.Nil(t, decodeEntities("{not json", env.Logger))
	assert.True(t, env.Logger.HasEntry("warn", "Stored entities are invalid, sending plain text"))
}
