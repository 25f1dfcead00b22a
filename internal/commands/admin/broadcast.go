package admin

import (
	"context"
	"time"

	"github.com/muratoffalex/errorer/internal/database"
	"github.com/muratoffalex/errorer/internal/logger"
	"github.com/muratoffalex/errorer/internal/telegram"
)

const maxSendRetries = 3

type BroadcastReport struct {
	Total   int
	Sent    int
	Failed  int
	Blocked int
}

// Broadcaster copies one message to many chats, pausing between sends to
// stay under the Telegram flood limits.
type Broadcaster struct {
	tg     telegram.Client
	db     database.Database
	logger logger.Logger
}

func NewBroadcaster(tg telegram.Client, db database.Database, log logger.Logger) *Broadcaster {
	return &Broadcaster{tg: tg, db: db, logger: log}
}

// Send delivers text with entities to every chat. markBlocked records users
// who blocked the bot; only meaningful for private chats.
func (b *Broadcaster) Send(
	ctx context.Context,
	chatIDs []int64,
	text string,
	entities []telegram.MessageEntity,
	delay time.Duration,
	markBlocked bool,
) (BroadcastReport, error) {
	report := BroadcastReport{Total: len(chatIDs)}
	for i, chatID := range chatIDs {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(delay):
			}
		}

		msg := telegram.NewMessage(chatID, text, 0)
		msg.Entities = entities
		_, err := b.tg.SendWithRetry(msg, maxSendRetries)
		if err == nil {
			report.Sent++
			continue
		}

		if telegram.IsBlocked(err) {
			report.Blocked++
			if markBlocked {
				if err := b.db.MarkUserBlocked(ctx, chatID); err != nil {
					b.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to mark user blocked")
				}
			}
			continue
		}
		report.Failed++
		b.logger.WithError(err).WithField("chat_id", chatID).Warn("Broadcast message not delivered")
	}

	b.logger.WithFields(logger.Fields{
		"total":   report.Total,
		"sent":    report.Sent,
		"failed":  report.Failed,
		"blocked": report.Blocked,
	}).Info("Broadcast finished")
	return report, nil
}
