package base

import (
	"context"
	"time"

	"github.com/muratoffalex/errorer/internal/ai"
	"github.com/muratoffalex/errorer/internal/app/di"
	"github.com/muratoffalex/errorer/internal/commands"
	"github.com/muratoffalex/errorer/internal/config"
	"github.com/muratoffalex/errorer/internal/database"
	"github.com/muratoffalex/errorer/internal/logger"
	"github.com/muratoffalex/errorer/internal/queue"
	"github.com/muratoffalex/errorer/internal/service"
	"github.com/muratoffalex/errorer/internal/service/state"
	"github.com/muratoffalex/errorer/internal/telegram"
	"github.com/muratoffalex/errorer/internal/throttle"
)

type Command struct {
	command   commands.Command
	Tg        telegram.Client
	Sender    *telegram.Sender
	Logger    logger.Logger
	Cfg       *config.Config
	Queue     *queue.Queue
	DB        database.Database
	Localizer *service.Localizer
	States    *state.Manager
	Throttle  *throttle.Throttler
	Generator *ai.Generator
}

func NewCommand(cmd commands.Command, di *di.Container) *Command {
	return &Command{
		command:   cmd,
		Tg:        di.BotClient,
		Sender:    di.Sender,
		Logger:    di.Logger,
		Cfg:       di.Cfg,
		Queue:     di.Queue,
		DB:        di.DB,
		Localizer: di.Localizer,
		States:    di.States,
		Throttle:  di.Throttle,
		Generator: di.Generator,
	}
}

func (c *Command) Name() string {
	return ""
}

func (c *Command) Aliases() []string {
	return []string{}
}

func (c *Command) Handle(update telegram.Update) error {
	cfg := c.Cfg.GetCommandConfig(c.command.Name())
	if cfg.Queue.Enabled {
		config := c.command.GetQueueConfig()
		retryDelayMillis := int64(config.RetryDelay / time.Millisecond)
		return c.Queue.Add(c.command, update,
			config.MaxRetries,
			retryDelayMillis)
	} else {
		return c.command.Execute(update)
	}
}

func (c *Command) GetQueueConfig() commands.QueueConfig {
	cfg := c.Cfg.GetCommandConfig(c.command.Name())
	return commands.QueueConfig{
		Enabled:    cfg.Queue.Enabled,
		MaxRetries: cfg.Queue.MaxRetries,
		RetryDelay: cfg.Queue.RetryDelay,
		Timeout:    cfg.Queue.Timeout,
		Throttle: commands.ThrottleConfig{
			Concurrency: cfg.Queue.Throttle.Concurrency,
			Period:      cfg.Queue.Throttle.Period,
			Requests:    cfg.Queue.Throttle.Requests,
		},
	}
}

func (c *Command) Execute(update telegram.Update) error {
	return nil
}

func (c *Command) L(messageID string, data map[string]any) string {
	return c.Localizer.Localize(messageID, data)
}

func (c *Command) IsAdmin(userID int64) bool {
	return c.Cfg.Telegram().IsAdmin(userID)
}

// Reply sends an HTML message with an optional keyboard.
func (c *Command) Reply(chatID int64, replyTo int, text string, markup *telegram.InlineKeyboardMarkup) (*telegram.Message, error) {
	msg := telegram.NewHTMLMessage(chatID, text, replyTo)
	msg.ReplyMarkup = markup
	sent, err := c.Tg.SendWithRetry(msg, 0)
	if err != nil {
		c.Logger.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
		return nil, err
	}
	return sent, nil
}

// ShowMenu replaces the text and keyboard of the message holding a menu.
func (c *Command) ShowMenu(query *telegram.CallbackQuery, text string, markup *telegram.InlineKeyboardMarkup) error {
	if query.Message == nil {
		return nil
	}
	edit := telegram.NewEditMessageHTML(query.Message.Chat.ID, query.Message.MessageID, text)
	edit.ReplyMarkup = markup
	if _, err := c.Tg.Send(edit); err != nil && !telegram.IsNotModified(err) {
		c.Logger.WithError(err).WithField("chat_id", query.Message.Chat.ID).Error("Failed to update menu")
		return err
	}
	return nil
}

func (c *Command) Answer(query *telegram.CallbackQuery, text string, alert bool) {
	cb := telegram.NewCallback(query.ID, text)
	cb.ShowAlert = alert
	if err := c.Tg.AnswerCallback(cb); err != nil {
		c.Logger.WithError(err).Warn("Failed to answer callback query")
	}
}

// UpsertUser records the sender of a message.
func (c *Command) UpsertUser(ctx context.Context, from *telegram.APIUser) {
	if from == nil {
		return
	}
	user := database.User{
		ID:        from.ID,
		Username:  from.UserName,
		FirstName: from.FirstName,
	}
	if err := c.DB.AddOrUpdateUser(ctx, user); err != nil {
		c.Logger.WithError(err).WithField("user_id", from.ID).Error("Failed to save user")
	}
}

func BackButton(text, data string) []telegram.InlineKeyboardButton {
	return telegram.NewInlineKeyboardRow(telegram.NewInlineKeyboardButtonData(text, data))
}
