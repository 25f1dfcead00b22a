package admin

import (
	"context"
	"strings"

	"github.com/muratoffalex/errorer/internal/app/di"
	"github.com/muratoffalex/errorer/internal/commands/base"
	"github.com/muratoffalex/errorer/internal/service/state"
	"github.com/muratoffalex/errorer/internal/telegram"
)

const CommandName = "admin"

const (
	CallbackMenu           = "menu_admin"
	CallbackPrefix         = "admin_"
	CallbackBroadcast      = "admin_broadcast"
	CallbackGroupBroadcast = "admin_group_broadcast"
	CallbackDemoMode       = "admin_demo_mode"
	CallbackSimpleDemoMode = "admin_simple_demo_mode"
	CallbackDemoAdd        = "admin_demo_add"
	CallbackSimpleDemoAdd  = "admin_simple_demo_add"
	CallbackDemoList       = "admin_demo_list"
	CallbackDemoDelete     = "admin_demo_delete_"
	CallbackGlobalStats    = "admin_global_stats"
	CallbackGroupList      = "admin_group_list"
	CallbackSpeedTest      = "admin_speed_test"
	CallbackBackToMain     = "back_to_main"
)

type Command struct {
	*base.Command
	broadcaster *Broadcaster
}

func New(di *di.Container) *Command {
	cmd := &Command{
		broadcaster: NewBroadcaster(di.BotClient, di.DB, di.Logger.WithField("command", CommandName)),
	}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Execute(update telegram.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}
	if !c.IsAdmin(msg.From.ID) {
		_, err := c.Reply(msg.Chat.ID, msg.MessageID, c.L("admin.denied", nil), nil)
		return err
	}
	c.States.Clear(msg.From.ID)
	markup := c.menu()
	_, err := c.Reply(msg.Chat.ID, msg.MessageID, c.L("admin.menu", nil), &markup)
	return err
}

func (c *Command) CallbackPrefixes() []string {
	return []string{CallbackMenu, CallbackPrefix}
}

func (c *Command) HandleCallback(ctx context.Context, query *telegram.CallbackQuery) error {
	if query.From == nil || !c.IsAdmin(query.From.ID) {
		c.Answer(query, c.L("admin.denied", nil), true)
		return nil
	}
	userID := query.From.ID
	data := query.Data

	switch {
	case data == CallbackMenu:
		c.Answer(query, "", false)
		c.States.Clear(userID)
		markup := c.menu()
		return c.ShowMenu(query, c.L("admin.menu", nil), &markup)

	case data == CallbackBroadcast, data == CallbackGroupBroadcast:
		c.Answer(query, "", false)
		s, key := state.AdminBroadcast, "admin.broadcastPrompt"
		if data == CallbackGroupBroadcast {
			s, key = state.AdminGroupBroadcast, "admin.groupBroadcastPrompt"
		}
		c.States.Clear(userID)
		c.States.Set(userID, s)
		markup := c.back(CallbackMenu)
		return c.ShowMenu(query, c.L(key, nil), &markup)

	case data == CallbackDemoMode, data == CallbackSimpleDemoMode:
		c.Answer(query, "", false)
		c.States.Clear(userID)
		add, key := CallbackDemoAdd, "admin.demoMenu"
		if data == CallbackSimpleDemoMode {
			add, key = CallbackSimpleDemoAdd, "admin.simpleDemoMenu"
		}
		markup := telegram.NewInlineKeyboardMarkup(
			telegram.NewInlineKeyboardRow(
				telegram.NewInlineKeyboardButtonData(c.L("button.demoAdd", nil), add),
				telegram.NewInlineKeyboardButtonData(c.L("button.demoList", nil), CallbackDemoList),
			),
			base.BackButton(c.L("button.back", nil), CallbackMenu),
		)
		return c.ShowMenu(query, c.L(key, nil), &markup)

	case data == CallbackDemoAdd, data == CallbackSimpleDemoAdd:
		c.Answer(query, "", false)
		c.States.Clear(userID)
		back := CallbackDemoMode
		if data == CallbackDemoAdd {
			c.States.Set(userID, state.DemoUserID)
		} else {
			back = CallbackSimpleDemoMode
			c.States.Set(userID, state.SimpleDemoUserID)
		}
		markup := c.back(back)
		return c.ShowMenu(query, c.L("admin.demoEnterUserID", nil), &markup)

	case data == CallbackDemoList:
		c.Answer(query, "", false)
		return c.showDemoList(ctx, query)

	case strings.HasPrefix(data, CallbackDemoDelete):
		return c.deleteDemo(ctx, query)

	case data == CallbackGlobalStats:
		c.Answer(query, "", false)
		return c.showStats(ctx, query)

	case data == CallbackGroupList:
		c.Answer(query, "", false)
		return c.showGroups(ctx, query)

	case data == CallbackSpeedTest:
		c.Answer(query, c.L("admin.speedTestRunning", nil), false)
		return c.runSpeedTest(ctx, query)
	}

	c.Answer(query, "", false)
	return nil
}

func (c *Command) HandlesState(s state.State) bool {
	switch s {
	case state.AdminBroadcast, state.AdminGroupBroadcast,
		state.DemoUserID, state.DemoTrigger, state.DemoResponses,
		state.SimpleDemoUserID, state.SimpleDemoTrigger, state.SimpleDemoResponse:
		return true
	}
	return false
}

func (c *Command) HandleState(ctx context.Context, msg *telegram.MessageOriginal, s state.State) error {
	if !c.IsAdmin(msg.From.ID) {
		c.States.Clear(msg.From.ID)
		return nil
	}
	switch s {
	case state.AdminBroadcast, state.AdminGroupBroadcast:
		return c.broadcast(ctx, msg, s == state.AdminGroupBroadcast)
	default:
		return c.demoInput(ctx, msg, s)
	}
}

func (c *Command) broadcast(ctx context.Context, msg *telegram.MessageOriginal, groups bool) error {
	c.States.Clear(msg.From.ID)
	if strings.TrimSpace(msg.Text) == "" {
		_, err := c.Reply(msg.Chat.ID, msg.MessageID, c.L("admin.broadcastEmpty", nil), nil)
		return err
	}

	var (
		ids []int64
		err error
	)
	delay := c.Cfg.Broadcast().PrivateDelay
	if groups {
		ids, err = c.DB.GetAllGroupChatIDs(ctx)
		delay = c.Cfg.Broadcast().GroupDelay
	} else {
		ids, err = c.DB.GetAllUserIDs(ctx)
	}
	if err != nil {
		c.Logger.WithError(err).Error("Failed to load broadcast recipients")
		return err
	}

	c.Logger.WithField("recipients", len(ids)).Info("Broadcast started")
	report, err := c.broadcaster.Send(ctx, ids, msg.Text, msg.Entities, delay, !groups)
	if err != nil {
		return err
	}

	markup := c.back(CallbackMenu)
	_, err = c.Reply(msg.Chat.ID, msg.MessageID, c.L("admin.broadcastDone", map[string]any{
		"Total":   report.Total,
		"Sent":    report.Sent,
		"Failed":  report.Failed,
		"Blocked": report.Blocked,
	}), &markup)
	return err
}

func (c *Command) menu() telegram.InlineKeyboardMarkup {
	button := func(key, data string) telegram.InlineKeyboardButton {
		return telegram.NewInlineKeyboardButtonData(c.L(key, nil), data)
	}
	return telegram.NewInlineKeyboardMarkup(
		telegram.NewInlineKeyboardRow(
			button("button.broadcast", CallbackBroadcast),
			button("button.groupBroadcast", CallbackGroupBroadcast),
		),
		telegram.NewInlineKeyboardRow(
			button("button.demoMode", CallbackDemoMode),
			button("button.simpleDemoMode", CallbackSimpleDemoMode),
		),
		telegram.NewInlineKeyboardRow(
			button("button.globalStats", CallbackGlobalStats),
			button("button.groupList", CallbackGroupList),
		),
		telegram.NewInlineKeyboardRow(
			button("button.speedTest", CallbackSpeedTest),
		),
		telegram.NewInlineKeyboardRow(
			button("button.back", CallbackBackToMain),
		),
	)
}

func (c *Command) back(data string) telegram.InlineKeyboardMarkup {
	return telegram.NewInlineKeyboardMarkup(base.BackButton(c.L("button.back", nil), data))
}
