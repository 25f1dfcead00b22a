// Package demo answers admin-defined trigger texts with canned responses.
package demo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/muratoffalex/errorer/internal/app/di"
	"github.com/muratoffalex/errorer/internal/database"
	"github.com/muratoffalex/errorer/internal/logger"
	"github.com/muratoffalex/errorer/internal/telegram"
)

type Handler struct {
	tg       telegram.Client
	db       database.Database
	logger   logger.Logger
	interval time.Duration
}

func New(di *di.Container) *Handler {
	return &Handler{
		tg:       di.BotClient,
		db:       di.DB,
		logger:   di.Logger.WithField("handler", "demo"),
		interval: di.Cfg.Demo().AnimationInterval,
	}
}

func (h *Handler) HandleText(ctx context.Context, update telegram.Update) (bool, error) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return false, nil
	}

	trigger, err := h.db.GetDemoTrigger(ctx, msg.From.ID, msg.Text)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(trigger.Responses) == 0 {
		return false, nil
	}

	log := h.logger.WithFields(logger.Fields{
		"user_id":  msg.From.ID,
		"trigger":  trigger.ID,
		"animated": trigger.IsAnimated,
	})
	log.Debug("Demo trigger matched")

	conn := msg.BusinessConnectionID
	var entities []telegram.MessageEntity
	if !trigger.IsAnimated {
		entities = decodeEntities(trigger.Entities, log)
	}

	messageID := msg.MessageID
	if conn != "" {
		// business chats: the owner's own message turns into the response
		edit := telegram.NewEditMessageText(msg.Chat.ID, msg.MessageID, trigger.Responses[0])
		edit.Entities = entities
		edit.BusinessConnectionID = conn
		if _, err := h.tg.Send(edit); err != nil && !telegram.IsNotModified(err) {
			return true, err
		}
	} else {
		first := telegram.NewMessage(msg.Chat.ID, trigger.Responses[0], msg.MessageID)
		first.Entities = entities
		sent, err := h.tg.SendWithRetry(first, 0)
		if err != nil {
			return true, err
		}
		messageID = sent.MessageID
	}
	if !trigger.IsAnimated {
		return true, nil
	}
	return true, h.animate(ctx, msg.Chat.ID, messageID, conn, trigger.Responses[1:], log)
}

// animate replaces the text of messageID with each frame in turn.
func (h *Handler) animate(ctx context.Context, chatID int64, messageID int, conn string, frames []string, log logger.Logger) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for _, frame := range frames {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		edit := telegram.NewEditMessageText(chatID, messageID, frame)
		edit.BusinessConnectionID = conn
		_, err := h.tg.Send(edit)
		if err != nil && !telegram.IsNotModified(err) {
			log.WithError(err).Warn("Demo animation stopped")
			return err
		}
	}
	return nil
}

func decodeEntities(raw string, log logger.Logger) []telegram.MessageEntity {
	if raw == "" {
		return nil
	}
	var entities []telegram.MessageEntity
	if err := json.Unmarshal([]byte(raw), &entities); err != nil {
		log.WithError(err).Warn("Stored entities are invalid, sending plain text")
		return nil
	}
	return entities
}

// EncodeEntities is the inverse of decodeEntities for storage.
func EncodeEntities(entities []telegram.MessageEntity) (string, error) {
	if len(entities) == 0 {
		return "", nil
	}
	b, err := json.Marshal(entities)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
