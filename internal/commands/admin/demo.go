package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/muratoffalex/errorer/internal/commands/base"
	"github.com/muratoffalex/errorer/internal/commands/demo"
	"github.com/muratoffalex/errorer/internal/database"
	"github.com/muratoffalex/errorer/internal/logger"
	"github.com/muratoffalex/errorer/internal/markdown"
	"github.com/muratoffalex/errorer/internal/service/state"
	"github.com/muratoffalex/errorer/internal/telegram"
)

const (
	keyDemoUser    = "demo_user_id"
	keyDemoTrigger = "demo_trigger"
	maxListPreview = 30
)

// demoInput walks the demo trigger dialogs: user id, trigger text, then
// the responses (one per line for animated triggers).
func (c *Command) demoInput(ctx context.Context, msg *telegram.MessageOriginal, s state.State) error {
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)
	simple := s == state.SimpleDemoUserID || s == state.SimpleDemoTrigger || s == state.SimpleDemoResponse
	back := CallbackDemoMode
	if simple {
		back = CallbackSimpleDemoMode
	}
	markup := c.back(back)
	reply := func(key string, data map[string]any) error {
		_, err := c.Reply(msg.Chat.ID, msg.MessageID, c.L(key, data), &markup)
		return err
	}

	switch s {
	case state.DemoUserID, state.SimpleDemoUserID:
		target, err := strconv.ParseInt(text, 10, 64)
		if err != nil || target == 0 {
			return reply("admin.demoBadUserID", nil)
		}
		c.States.Put(userID, keyDemoUser, strconv.FormatInt(target, 10))
		next := state.DemoTrigger
		if simple {
			next = state.SimpleDemoTrigger
		}
		c.States.Set(userID, next)
		return reply("admin.demoEnterTrigger", nil)

	case state.DemoTrigger, state.SimpleDemoTrigger:
		if database.NormalizeTrigger(text) == "" {
			return reply("admin.demoEnterTrigger", nil)
		}
		c.States.Put(userID, keyDemoTrigger, text)
		next := state.DemoResponses
		if simple {
			next = state.SimpleDemoResponse
		}
		c.States.Set(userID, next)
		if simple {
			return reply("admin.demoEnterResponse", nil)
		}
		return reply("admin.demoEnterResponses", nil)

	case state.DemoResponses, state.SimpleDemoResponse:
		data := c.States.Data(userID)
		target, err := strconv.ParseInt(data[keyDemoUser], 10, 64)
		if err != nil {
			c.States.Clear(userID)
			return reply("admin.demoBadUserID", nil)
		}

		trigger := database.DemoTrigger{
			UserID:      target,
			TriggerText: data[keyDemoTrigger],
			IsAnimated:  !simple,
		}
		if simple {
			if msg.Text == "" {
				return reply("admin.demoEnterResponse", nil)
			}
			trigger.Responses = database.StringList{msg.Text}
			trigger.Entities, err = demo.EncodeEntities(msg.Entities)
			if err != nil {
				return err
			}
		} else {
			trigger.Responses = SplitResponses(msg.Text)
			if len(trigger.Responses) == 0 {
				return reply("admin.demoEnterResponses", nil)
			}
		}

		c.States.Clear(userID)
		if err := c.DB.AddDemoTrigger(ctx, trigger); err != nil {
			c.Logger.WithError(err).Error("Failed to save demo trigger")
			return reply("error", nil)
		}
		c.Logger.WithFields(logger.Fields{
			"target":   target,
			"animated": trigger.IsAnimated,
		}).Info("Demo trigger saved")
		return reply("admin.demoSaved", map[string]any{
			"Trigger": markdown.EscapeHTML(trigger.TriggerText),
			"UserID":  target,
			"Count":   len(trigger.Responses),
		})
	}
	return nil
}

// SplitResponses turns one response per line into animation frames.
func SplitResponses(text string) []string {
	var frames []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			frames = append(frames, line)
		}
	}
	return frames
}

func (c *Command) showDemoList(ctx context.Context, query *telegram.CallbackQuery) error {
	triggers, err := c.DB.GetAllDemoTriggers(ctx)
	if err != nil {
		return err
	}

	text := c.L("admin.demoList", map[string]any{"Count": len(triggers)})
	rows := make([][]telegram.InlineKeyboardButton, 0, len(triggers)+1)
	for _, t := range triggers {
		kind := "💬"
		if t.IsAnimated {
			kind = "🎬"
		}
		label := fmt.Sprintf("🗑 %s %d: %s", kind, t.UserID, preview(t.TriggerText))
		rows = append(rows, telegram.NewInlineKeyboardRow(
			telegram.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s%d", CallbackDemoDelete, t.ID))))
	}
	rows = append(rows, base.BackButton(c.L("button.back", nil), CallbackMenu))
	markup := telegram.NewInlineKeyboardMarkup(rows...)
	return c.ShowMenu(query, text, &markup)
}

func (c *Command) deleteDemo(ctx context.Context, query *telegram.CallbackQuery) error {
	id, err := strconv.ParseInt(strings.TrimPrefix(query.Data, CallbackDemoDelete), 10, 64)
	if err != nil {
		c.Answer(query, c.L("error", nil), true)
		return fmt.Errorf("bad callback data %q: %w", query.Data, err)
	}
	err = c.DB.DeleteDemoTrigger(ctx, id)
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.Answer(query, c.L("admin.demoNotFound", nil), false)
	case err != nil:
		c.Answer(query, c.L("error", nil), true)
		return err
	default:
		c.Answer(query, c.L("admin.demoDeleted", nil), false)
	}
	return c.showDemoList(ctx, query)
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= maxListPreview {
		return s
	}
	return string(r[:maxListPreview]) + "..."
}
