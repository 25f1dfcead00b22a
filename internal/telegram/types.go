package telegram

import (
	tgbotapi "github.com/OvyFlash/telegram-bot-api"
)

type ParseMode = string

const (
	ModeHTML       = "HTML"
	ModeMarkdownV2 = "MarkdownV2"
)

const (
	ChatTypePrivate    = "private"
	ChatTypeGroup      = "group"
	ChatTypeSupergroup = "supergroup"
)

type (
	MessageOriginal   = tgbotapi.Message
	Update            = tgbotapi.Update
	MessageEntity     = tgbotapi.MessageEntity
	CallbackQuery     = tgbotapi.CallbackQuery
	APIUser           = tgbotapi.User
	ChatMemberUpdated = tgbotapi.ChatMemberUpdated
	Chattable         = tgbotapi.Chattable
	APIResponse       = tgbotapi.APIResponse

	InlineKeyboardMarkup = tgbotapi.InlineKeyboardMarkup
	InlineKeyboardButton = tgbotapi.InlineKeyboardButton
)

func NewInlineKeyboardMarkup(rows ...[]InlineKeyboardButton) InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func NewInlineKeyboardRow(buttons ...InlineKeyboardButton) []InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(buttons...)
}

func NewInlineKeyboardButtonData(text, data string) InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}

type Message struct {
	MessageID int
	Chat      Chat
	Text      string
	From      User
	ReplyTo   *Message
	Command   string
}

type User struct {
	ID        int64
	FirstName string
	UserName  string
	IsBot     bool
}

type Chat struct {
	ID    int64
	Type  string
	Title string
}

func (c Chat) IsGroup() bool {
	return c.Type == ChatTypeGroup || c.Type == ChatTypeSupergroup
}

type MessageConfig interface {
	ToChattable() tgbotapi.Chattable
}

type CallbackConfig struct {
	CallbackQueryID string
	Text            string
	ShowAlert       bool
	URL             string
	CacheTime       int
}

func NewCallback(id, text string) CallbackConfig {
	return CallbackConfig{
		CallbackQueryID: id,
		Text:            text,
		ShowAlert:       false,
	}
}

func NewCallbackWithAlert(id, text string) CallbackConfig {
	cfg := NewCallback(id, text)
	cfg.ShowAlert = true
	return cfg
}

func (c CallbackConfig) ToChattable() tgbotapi.Chattable {
	config := tgbotapi.NewCallback(c.CallbackQueryID, c.Text)
	config.CacheTime = c.CacheTime
	config.ShowAlert = c.ShowAlert
	config.URL = c.URL
	return config
}

type TextMessage struct {
	ChatID               int64
	Text                 string
	ReplyTo              int
	ReplyMarkup          *InlineKeyboardMarkup
	LinkPreviewDisabled  bool
	ParseMode            ParseMode
	Entities             []MessageEntity
	// BusinessConnectionID sends on behalf of a business account.
	BusinessConnectionID string
}

func NewMessage(chatID int64, text string, replyTo int) TextMessage {
	return TextMessage{
		ChatID:              chatID,
		Text:                text,
		LinkPreviewDisabled: false,
		ReplyTo:             replyTo,
	}
}

// NewHTMLMessage is NewMessage with HTML parse mode and link previews off.
func NewHTMLMessage(chatID int64, text string, replyTo int) TextMessage {
	msg := NewMessage(chatID, text, replyTo)
	msg.ParseMode = ModeHTML
	msg.LinkPreviewDisabled = true
	return msg
}

func (m TextMessage) ToChattable() tgbotapi.Chattable {
	msg := tgbotapi.NewMessage(m.ChatID, m.Text)
	msg.ReplyParameters.MessageID = m.ReplyTo
	// explicit entities and a parse mode are mutually exclusive
	if len(m.Entities) > 0 {
		msg.Entities = m.Entities
	} else {
		msg.ParseMode = m.ParseMode
	}
	if m.ReplyMarkup != nil {
		msg.ReplyMarkup = m.ReplyMarkup
	}
	msg.LinkPreviewOptions.IsDisabled = m.LinkPreviewDisabled
	msg.BusinessConnectionID = tgbotapi.BusinessConnectionID(m.BusinessConnectionID)
	return msg
}

type EditMessageTextConfig struct {
	ChatID               int64
	MessageID            int
	Text                 string
	ParseMode            string
	ReplyMarkup          *InlineKeyboardMarkup
	LinkPreviewDisabled  bool
	Entities             []MessageEntity
	BusinessConnectionID string
}

func NewEditMessageText(chatID int64, messageID int, text string) EditMessageTextConfig {
	return EditMessageTextConfig{
		ChatID:              chatID,
		MessageID:           messageID,
		Text:                text,
		LinkPreviewDisabled: false,
	}
}

func NewEditMessageHTML(chatID int64, messageID int, text string) EditMessageTextConfig {
	msg := NewEditMessageText(chatID, messageID, text)
	msg.ParseMode = ModeHTML
	msg.LinkPreviewDisabled = true
	return msg
}

func (m EditMessageTextConfig) ToChattable() tgbotapi.Chattable {
	msg := tgbotapi.NewEditMessageText(m.ChatID, m.MessageID, m.Text)
	msg.LinkPreviewOptions.IsDisabled = m.LinkPreviewDisabled
	if len(m.Entities) > 0 {
		msg.Entities = m.Entities
	} else {
		msg.ParseMode = m.ParseMode
	}
	msg.ReplyMarkup = m.ReplyMarkup
	msg.BusinessConnectionID = tgbotapi.BusinessConnectionID(m.BusinessConnectionID)
	return msg
}

type EditMessageReplyMarkupConfig struct {
	ChatID      int64
	MessageID   int
	ReplyMarkup *InlineKeyboardMarkup
}

func NewEditMessageReplyMarkup(chatID int64, messageID int, replyMarkup *InlineKeyboardMarkup) EditMessageReplyMarkupConfig {
	return EditMessageReplyMarkupConfig{
		ChatID:      chatID,
		MessageID:   messageID,
		ReplyMarkup: replyMarkup,
	}
}

func (c EditMessageReplyMarkupConfig) ToChattable() tgbotapi.Chattable {
	return tgbotapi.NewEditMessageReplyMarkup(c.ChatID, c.MessageID, *c.ReplyMarkup)
}

type UpdateConfig struct {
	Offset  int
	Limit   int
	Timeout int
}

type ChatAction string

const (
	ActionTyping ChatAction = "typing"
)

type Client interface {
	Send(msg MessageConfig) (*Message, error)
	SendWithRetry(msg MessageConfig, maxRetryCount int) (*Message, error)
	DeleteMessage(chatID int64, messageID int) (*APIResponse, error)
	GetUpdatesChan(config UpdateConfig) <-chan Update
	StopReceivingUpdates()
	Request(message MessageConfig) (*APIResponse, error)
	AnswerCallback(callback CallbackConfig) error
	GetChatMemberCount(chatID int64) (int, error)
	SendChatAction(chatID int64, action ChatAction) error
	NewUpdate(offset, timeout, limit int) UpdateConfig
	Self() User
}
