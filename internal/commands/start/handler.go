package start

import (
	"context"
	"strings"

	"github.com/muratoffalex/errorer/internal/app/di"
	"github.com/muratoffalex/errorer/internal/commands/base"
	"github.com/muratoffalex/errorer/internal/telegram"
)

const CommandName = "start"

const (
	CallbackBackToMain     = "back_to_main"
	CallbackHelp           = "menu_help"
	CallbackFAQ            = "menu_faq"
	CallbackStats          = "menu_stats"
	CallbackSettings       = "menu_settings"
	CallbackBackToSettings = "back_to_settings"

	// owned by the styles and admin commands
	CallbackStyles = "settings_styles"
	CallbackAdmin  = "menu_admin"
)

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
	return []string{"menu", "help"}
}

func (c *Command) Execute(update telegram.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}
	ctx := context.Background()
	c.UpsertUser(ctx, msg.From)
	c.States.Clear(msg.From.ID)

	text := c.L("start.greeting", map[string]any{
		"Name": telegram.DisplayName(msg.From.FirstName, msg.From.UserName),
	})
	markup := c.mainMenu(msg.From.ID)
	_, err := c.Reply(msg.Chat.ID, msg.MessageID, text, &markup)
	return err
}

func (c *Command) CallbackPrefixes() []string {
	return []string{
		CallbackBackToMain,
		CallbackHelp,
		CallbackFAQ,
		CallbackStats,
		CallbackSettings,
		CallbackBackToSettings,
	}
}

func (c *Command) HandleCallback(ctx context.Context, query *telegram.CallbackQuery) error {
	defer c.Answer(query, "", false)
	if query.From != nil {
		c.States.Clear(query.From.ID)
	}

	switch {
	case query.Data == CallbackBackToMain:
		markup := c.mainMenu(query.From.ID)
		return c.ShowMenu(query, c.L("menu.main", nil), &markup)
	case query.Data == CallbackHelp:
		markup := c.backMenu(CallbackBackToMain)
		return c.ShowMenu(query, c.L("menu.help", nil), &markup)
	case query.Data == CallbackFAQ:
		markup := c.backMenu(CallbackBackToMain)
		return c.ShowMenu(query, c.L("menu.faq", nil), &markup)
	case query.Data == CallbackStats:
		return c.showStats(ctx, query)
	case query.Data == CallbackSettings, strings.HasPrefix(query.Data, CallbackBackToSettings):
		markup := telegram.NewInlineKeyboardMarkup(
			telegram.NewInlineKeyboardRow(telegram.NewInlineKeyboardButtonData(c.L("button.styles", nil), CallbackStyles)),
			base.BackButton(c.L("button.back", nil), CallbackBackToMain),
		)
		return c.ShowMenu(query, c.L("menu.settings", nil), &markup)
	}
	return nil
}

func (c *Command) showStats(ctx context.Context, query *telegram.CallbackQuery) error {
	stats, err := c.DB.GetUserStats(ctx, query.From.ID)
	if err != nil {
		c.Logger.WithError(err).WithField("user_id", query.From.ID).Error("Failed to load user stats")
		return err
	}
	markup := c.backMenu(CallbackBackToMain)
	text := c.L("menu.stats", map[string]any{
		"RequestsToday": stats.RequestsToday,
		"Limit":         c.Cfg.Limits().DailyRequestLimit,
		"Registered":    stats.RegistrationDate.Format("02.01.2006"),
		"Styles":        stats.StylesCount,
	})
	return c.ShowMenu(query, text, &markup)
}

func (c *Command) mainMenu(userID int64) telegram.InlineKeyboardMarkup {
	rows := [][]telegram.InlineKeyboardButton{
		telegram.NewInlineKeyboardRow(
			telegram.NewInlineKeyboardButtonData(c.L("button.help", nil), CallbackHelp),
			telegram.NewInlineKeyboardButtonData(c.L("button.faq", nil), CallbackFAQ),
		),
		telegram.NewInlineKeyboardRow(
			telegram.NewInlineKeyboardButtonData(c.L("button.settings", nil), CallbackSettings),
			telegram.NewInlineKeyboardButtonData(c.L("button.stats", nil), CallbackStats),
		),
	}
	if c.IsAdmin(userID) {
		rows = append(rows, base.BackButton(c.L("button.admin", nil), CallbackAdmin))
	}
	return telegram.NewInlineKeyboardMarkup(rows...)
}

func (c *Command) backMenu(data string) telegram.InlineKeyboardMarkup {
	return telegram.NewInlineKeyboardMarkup(base.BackButton(c.L("button.back", nil), data))
}
