package ask

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/muratoffalex/errorer/internal/ai"
	"github.com/muratoffalex/errorer/internal/app/di"
	"github.com/muratoffalex/errorer/internal/commands/base"
	"github.com/muratoffalex/errorer/internal/database"
	"github.com/muratoffalex/errorer/internal/logger"
	"github.com/muratoffalex/errorer/internal/markdown"
	"github.com/muratoffalex/errorer/internal/telegram"
	"github.com/muratoffalex/errorer/internal/throttle"
)

const CommandName = "ai"

type Command struct {
	*base.Command
}

func New(di *di.Container) *Command {
	cmd := &Command{}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Aliases() []string {
	return []string{"ask"}
}

// Handle drops requests arriving inside the user's throttle window before
// they reach the queue.
func (c *Command) Handle(update telegram.Update) error {
	if msg := update.Message; msg != nil && msg.From != nil {
		if !c.Throttle.Allow(throttle.ScopeGenerate, msg.From.ID) {
			return nil
		}
	}
	return c.Command.Handle(update)
}

// HandleText picks up ".ai" and ".ии" messages.
func (c *Command) HandleText(ctx context.Context, update telegram.Update) (bool, error) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return false, nil
	}
	if _, ok := StripPrefix(msg.Text); !ok {
		return false, nil
	}
	return true, c.Handle(update)
}

func (c *Command) Execute(update telegram.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}

	text, ok := StripPrefix(msg.Text)
	if !ok {
		text = strings.TrimSpace(msg.CommandArguments())
	}
	return c.answer(context.Background(), msg, text)
}

func (c *Command) answer(ctx context.Context, msg *telegram.MessageOriginal, text string) error {
	from := msg.From
	chatID := msg.Chat.ID
	log := c.Logger.WithFields(logger.Fields{
		"user_id": from.ID,
		"chat_id": chatID,
	})
	sender := c.Sender
	business := msg.BusinessConnectionID != ""
	if business {
		sender = c.Sender.Business(msg.BusinessConnectionID)
		log = log.WithField("business_connection_id", msg.BusinessConnectionID)
	}

	c.UpsertUser(ctx, from)

	limit := c.Cfg.Limits().DailyRequestLimit
	count, err := c.DB.GetUserRequestsCount(ctx, from.ID)
	if err != nil {
		log.WithError(err).Error("Failed to read request counter")
		return err
	}
	if count >= limit {
		log.WithField("count", count).Info("Daily limit reached")
		_, err := c.notify(sender, msg, c.L("errors.dailyLimitReached", map[string]any{"Limit": limit}))
		return err
	}

	req := BuildRequest(msg, text, c.Tg.Self().ID)
	if err := ai.ValidatePrompt(req.Prompt, c.Cfg.Limits().MaxPromptLength); err != nil {
		log.WithError(err).Info("Prompt rejected")
		key := "errors.invalidPrompt"
		if strings.TrimSpace(req.Prompt) == "" {
			key = "errors.emptyPrompt"
		}
		_, err := c.notify(sender, msg, c.L(key, map[string]any{"Max": c.Cfg.Limits().MaxPromptLength}))
		return err
	}

	status, err := c.notify(sender, msg,
		c.L("ai.generating", map[string]any{"Prompt": markdown.EscapeHTML(Preview(req.QuoteText))}))
	if err != nil {
		return err
	}
	if !business {
		if err := c.Tg.SendChatAction(chatID, telegram.ActionTyping); err != nil {
			log.WithError(err).Debug("Failed to send chat action")
		}
	}

	completion := ai.CompletionRequest{
		Prompt:       req.Prompt,
		SystemPrompt: c.systemPrompt(ctx, msg),
	}
	result := c.Generator.Generate(ctx, completion)

	response := result.Text
	if !result.Fallback && utf8.RuneCountInString(strings.TrimSpace(response)) < c.Cfg.Limits().MinResponseLength {
		response = c.L("errors.responseTooShort", nil)
	}
	log.WithFields(logger.Fields{
		"fallback": result.Fallback,
		"attempts": result.Attempts,
		"cached":   result.Cached,
		"duration": result.Duration.String(),
	}).Info("Generation finished")

	final := telegram.FormatQuotedResponse(req.QuoteName, req.QuoteText, response)
	if _, err := sender.EditHTML(chatID, status.MessageID, final); err != nil {
		log.WithError(err).Error("Failed to deliver answer")
		return err
	}

	if err := c.DB.IncrementUserRequests(ctx, from.ID, database.RequestKindText); err != nil {
		log.WithError(err).Error("Failed to count request")
	}
	if msg.Chat.IsGroup() || msg.Chat.IsSuperGroup() {
		c.registerGroup(ctx, msg)
	}
	return nil
}

// notify replies to msg. In business chats msg belongs to the account owner
// and is edited in place instead.
func (c *Command) notify(sender *telegram.Sender, msg *telegram.MessageOriginal, text string) (*telegram.Message, error) {
	if msg.BusinessConnectionID == "" {
		return c.Reply(msg.Chat.ID, msg.MessageID, text, nil)
	}
	sent, err := sender.EditHTML(msg.Chat.ID, msg.MessageID, text)
	if err != nil {
		return nil, err
	}
	return sent[0], nil
}

// systemPrompt picks the active personal style in private chats, the group
// style in groups and the configured prompt when no style is active.
func (c *Command) systemPrompt(ctx context.Context, msg *telegram.MessageOriginal) string {
	var (
		prompt string
		err    error
	)
	if msg.Chat.IsPrivate() {
		prompt, err = c.DB.GetActiveStylePrompt(ctx, msg.From.ID)
	} else {
		prompt, err = c.DB.GetActiveGroupStylePrompt(ctx, msg.Chat.ID)
	}
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		c.Logger.WithError(err).WithField("chat_id", msg.Chat.ID).Warn("Failed to load active style")
	}
	if prompt == "" {
		prompt = c.Cfg.AI().SystemPrompt
	}
	return prompt
}

func (c *Command) registerGroup(ctx context.Context, msg *telegram.MessageOriginal) {
	members, err := c.Tg.GetChatMemberCount(msg.Chat.ID)
	if err != nil {
		c.Logger.WithError(err).WithField("chat_id", msg.Chat.ID).Debug("Failed to get member count")
	}
	err = c.DB.AddGroupChat(ctx, database.GroupChat{
		ChatID:      msg.Chat.ID,
		Title:       msg.Chat.Title,
		AddedBy:     msg.From.ID,
		MemberCount: members,
	})
	if err != nil {
		c.Logger.WithError(err).WithField("chat_id", msg.Chat.ID).Error("Failed to save group chat")
	}
}
