package core

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"

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

type Bot struct {
	commands      map[string]commands.Command
	callbacks     []commands.CallbackHandler
	stateHandlers []commands.StateHandler
	textHandlers  []commands.TextHandler

	logger    logger.Logger
	queue     *queue.Queue
	db        database.Database
	tg        telegram.Client
	cfg       *config.Config
	localizer *service.Localizer
	states    *state.Manager
	throttle  *throttle.Throttler

	wg sync.WaitGroup
}

func NewBot(
	tg telegram.Client,
	queue *queue.Queue,
	logger logger.Logger,
	db database.Database,
	cfg *config.Config,
	localizer *service.Localizer,
	states *state.Manager,
	throttle *throttle.Throttler,
) *Bot {
	return &Bot{
		commands:  make(map[string]commands.Command),
		tg:        tg,
		queue:     queue,
		cfg:       cfg,
		logger:    logger,
		db:        db,
		localizer: localizer,
		states:    states,
		throttle:  throttle,
	}
}

// Start polls updates until ctx is done. Every update is handled in its own
// goroutine; Start waits for them before returning.
func (b *Bot) Start(ctx context.Context) error {
	u := b.tg.NewUpdate(0, 60, 0)

	b.queue.RegisterHandlers(b.commands)
	go b.queue.Start(ctx, b.commands)

	updates := b.tg.GetUpdatesChan(u)

	b.logger.Info("Bot started")
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.tg.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.wg.Add(1)
			go func(update telegram.Update) {
				defer b.wg.Done()
				b.HandleUpdate(ctx, update)
			}(update)
		}
	}
}

// HandleUpdate routes one update: membership changes, then callbacks, then
// dialog input, commands and finally plain-text handlers.
func (b *Bot) HandleUpdate(ctx context.Context, update telegram.Update) {
	jsonData, _ := json.Marshal(update)
	b.logger.WithField("update_structure", string(jsonData)).Debug("Received update")

	switch {
	case update.MyChatMember != nil:
		b.handleMembership(ctx, update.MyChatMember)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update)
	case update.BusinessMessage != nil:
		b.handleBusinessMessage(ctx, update)
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *telegram.CallbackQuery) {
	if query.From == nil {
		return
	}
	log := b.logger.WithFields(logger.Fields{
		"user_id": query.From.ID,
		"data":    query.Data,
	})

	if query.Message != nil && !b.cfg.Telegram().IsChatAllowed(query.Message.Chat.ID) {
		b.answer(query, "", false)
		return
	}
	if b.cfg.Limits().ThrottleCallbacks && !b.throttle.Allow(throttle.ScopeCallback, query.From.ID) {
		b.answer(query, b.localizer.Localize("errors.throttled", nil), true)
		return
	}

	handler := b.callbackHandler(query.Data)
	if handler == nil {
		log.Debug("No handler for callback")
		b.answer(query, "", false)
		return
	}
	if err := handler.HandleCallback(ctx, query); err != nil {
		log.WithError(err).Error("Failed to handle callback")
		if query.Message != nil {
			b.sendErrorMessage(query.Message.Chat.ID, 0)
		}
	}
}

// callbackHandler picks the handler with the longest matching prefix.
func (b *Bot) callbackHandler(data string) commands.CallbackHandler {
	var (
		best    commands.CallbackHandler
		bestLen int
	)
	for _, h := range b.callbacks {
		for _, p := range h.CallbackPrefixes() {
			if strings.HasPrefix(data, p) && len(p) > bestLen {
				best, bestLen = h, len(p)
			}
		}
	}
	return best
}

func (b *Bot) handleMessage(ctx context.Context, update telegram.Update) {
	msg := update.Message
	if msg.From == nil || msg.From.IsBot {
		return
	}
	log := b.logger.WithFields(logger.Fields{
		"user_id":  msg.From.ID,
		"username": msg.From.UserName,
		"chat_id":  msg.Chat.ID,
	})

	if !b.cfg.Telegram().IsChatAllowed(msg.Chat.ID) {
		log.Warn("Unauthorized access attempt")
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	if s := b.states.Get(msg.From.ID); s != state.None {
		if isCommand(text) {
			b.states.Clear(msg.From.ID)
		} else if h := b.stateHandler(s); h != nil {
			if err := h.HandleState(ctx, msg, s); err != nil {
				log.WithError(err).WithField("state", string(s)).Error("Failed to handle dialog input")
				b.sendErrorMessage(msg.Chat.ID, msg.MessageID)
			}
			return
		}
	}

	if isCommand(text) {
		b.handleCommand(update, text, log)
		return
	}

	for _, h := range b.textHandlers {
		handled, err := h.HandleText(ctx, update)
		if err != nil {
			log.WithError(err).Error("Failed to handle message")
			b.sendErrorMessage(msg.Chat.ID, msg.MessageID)
			return
		}
		if handled {
			return
		}
	}
}

// handleBusinessMessage runs text handlers for messages in chats of a
// connected business account. The bot can only act there through the
// connection, so commands and dialogs are not offered.
func (b *Bot) handleBusinessMessage(ctx context.Context, update telegram.Update) {
	msg := update.BusinessMessage
	if msg.From == nil || msg.From.IsBot || msg.Text == "" {
		return
	}
	log := b.logger.WithFields(logger.Fields{
		"user_id":                msg.From.ID,
		"chat_id":                msg.Chat.ID,
		"business_connection_id": msg.BusinessConnectionID,
	})

	// handlers and queued tasks read update.Message
	update.Message, update.BusinessMessage = msg, nil
	for _, h := range b.textHandlers {
		handled, err := h.HandleText(ctx, update)
		if err != nil {
			log.WithError(err).Error("Failed to handle business message")
			return
		}
		if handled {
			return
		}
	}
}

func (b *Bot) handleCommand(update telegram.Update, text string, log logger.Logger) {
	msg := update.Message
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return
	}
	cmdParts := strings.Split(strings.TrimPrefix(parts[0], "/"), "@")
	command := strings.ToLower(cmdParts[0])
	if len(cmdParts) > 1 && !strings.EqualFold(cmdParts[1], b.tg.Self().UserName) {
		return // addressed to another bot
	}

	cmd := b.findCommand(command)
	if cmd == nil {
		return
	}

	log.WithFields(logger.Fields{
		"command": command,
		"args":    msg.CommandArguments(),
	}).Info("Handling command")

	if err := cmd.Handle(update); err != nil {
		log.WithError(err).Error("Failed to handle command")
		b.sendErrorMessage(msg.Chat.ID, msg.MessageID)
	}
}

func (b *Bot) findCommand(command string) commands.Command {
	if cmd, ok := b.commands[command]; ok {
		return cmd
	}
	for _, c := range b.commands {
		if slices.Contains(c.Aliases(), command) {
			return c
		}
	}
	return nil
}

func (b *Bot) stateHandler(s state.State) commands.StateHandler {
	for _, h := range b.stateHandlers {
		if h.HandlesState(s) {
			return h
		}
	}
	return nil
}

// handleMembership registers groups the bot was added to. The user who
// added the bot becomes the group owner for style management.
func (b *Bot) handleMembership(ctx context.Context, member *telegram.ChatMemberUpdated) {
	chat := member.Chat
	if chat.Type != telegram.ChatTypeGroup && chat.Type != telegram.ChatTypeSupergroup {
		return
	}
	log := b.logger.WithFields(logger.Fields{
		"chat_id": chat.ID,
		"status":  member.NewChatMember.Status,
	})

	switch member.NewChatMember.Status {
	case "member", "administrator":
	default:
		log.Info("Bot removed from group")
		return
	}

	count, err := b.tg.GetChatMemberCount(chat.ID)
	if err != nil {
		log.WithError(err).Warn("Failed to get member count")
	}
	err = b.db.AddGroupChat(ctx, database.GroupChat{
		ChatID:      chat.ID,
		Title:       chat.Title,
		AddedBy:     member.From.ID,
		MemberCount: count,
	})
	if err != nil {
		log.WithError(err).Error("Failed to save group chat")
		return
	}
	log.WithField("added_by", member.From.ID).Info("Bot added to group")
}

// RegisterCommand adds a slash command together with whatever callback,
// dialog and text handling it implements.
func (b *Bot) RegisterCommand(cmd commands.Command) {
	if cmd == nil {
		b.logger.Error("Attempting to register nil command")
		return
	}

	name := cmd.Name()
	if name == "" {
		b.logger.Error("Attempting to register command with empty name")
		return
	}

	b.logger.WithFields(logger.Fields{
		"command": name,
	}).Debug("Registering command")

	b.commands[name] = cmd
	if h, ok := cmd.(commands.CallbackHandler); ok {
		b.callbacks = append(b.callbacks, h)
	}
	if h, ok := cmd.(commands.StateHandler); ok {
		b.stateHandlers = append(b.stateHandlers, h)
	}
	if h, ok := cmd.(commands.TextHandler); ok {
		b.textHandlers = append(b.textHandlers, h)
	}
}

// RegisterTextHandler adds a plain-text handler. Handlers run in
// registration order until one consumes the message.
func (b *Bot) RegisterTextHandler(h commands.TextHandler) {
	b.textHandlers = append(b.textHandlers, h)
}

func (b *Bot) GetCommands() map[string]commands.Command {
	return b.commands
}

func isCommand(text string) bool {
	return strings.HasPrefix(text, "/")
}

func (b *Bot) answer(query *telegram.CallbackQuery, text string, alert bool) {
	cb := telegram.NewCallback(query.ID, text)
	cb.ShowAlert = alert
	if err := b.tg.AnswerCallback(cb); err != nil {
		b.logger.WithError(err).Error("Failed to answer callback query")
	}
}

func (b *Bot) sendErrorMessage(chatID int64, messageID int) {
	msg := telegram.NewMessage(chatID, b.localizer.Localize("error", nil), messageID)
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.WithError(err).Error("Failed to send error message")
	}
}
