package telegram

import (
	"testing"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToChattable_BusinessConnection(t *testing.T) {
	msg := NewHTMLMessage(1, "hi", 2)
	msg.BusinessConnectionID = "conn-1"
	sent, ok := msg.ToChattable().(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, tgbotapi.BusinessConnectionID("conn-1"), sent.BusinessConnectionID)
	assert.Equal(t, 2, sent.ReplyParameters.MessageID)

	edit := NewEditMessageHTML(1, 3, "hi")
	edit.BusinessConnectionID = "conn-1"
	edited, ok := edit.ToChattable().(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, tgbotapi.BusinessConnectionID("conn-1"), edited.BusinessConnectionID)
	assert.Equal(t, 3, edited.MessageID)
}

func TestToChattable_EntitiesOverrideParseMode(t *testing.T) {
	msg := NewHTMLMessage(1, "hi", 0)
	msg.Entities = []MessageEntity{{Type: "bold", Length: 2}}
	sent := msg.ToChattable().(tgbotapi.MessageConfig)
	assert.Empty(t, sent.ParseMode)
	assert.Len(t, sent.Entities, 1)
}
