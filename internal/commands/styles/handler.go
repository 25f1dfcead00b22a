package styles

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/muratoffalex/errorer/internal/app/di"
	"github.com/muratoffalex/errorer/internal/commands/base"
	"github.com/muratoffalex/errorer/internal/database"
	"github.com/muratoffalex/errorer/internal/markdown"
	"github.com/muratoffalex/errorer/internal/service/state"
	"github.com/muratoffalex/errorer/internal/telegram"
)

const CommandName = "styles"

const (
	CallbackStyles         = "settings_styles"
	CallbackBackToSettings = "back_to_settings"

	CallbackPersonal       = "styles_personal"
	CallbackPersonalAdd    = "personal_styles_add"
	CallbackPersonalSelect = "personal_styles_select"
	CallbackPersonalList   = "personal_styles_list"
	CallbackPersonalPick   = "personal_style_select_"

	CallbackGroup          = "styles_group"
	CallbackGroupAdd       = "group_styles_add"
	CallbackGroupSelect    = "group_styles_select"
	CallbackGroupList      = "group_styles_list"
	CallbackGroupAddFor    = "group_add_style_"
	CallbackGroupSelectFor = "group_select_style_"
	CallbackGroupPick      = "group_style_select_"
)

const (
	maxNameLength    = 50
	maxTitleLength   = 25
	maxPreviewLength = 100
	maxStylePrompt   = 2000

	keyName   = "style_name"
	keyChatID = "group_chat_id"
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

func (c *Command) Execute(update telegram.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}
	markup := c.stylesMenu()
	_, err := c.Reply(msg.Chat.ID, msg.MessageID, c.L("styles.menu", nil), &markup)
	return err
}

func (c *Command) CallbackPrefixes() []string {
	return []string{
		CallbackStyles,
		CallbackPersonal,
		CallbackPersonalAdd,
		CallbackPersonalSelect,
		CallbackPersonalList,
		CallbackPersonalPick,
		CallbackGroup,
		CallbackGroupAdd,
		CallbackGroupSelect,
		CallbackGroupList,
		CallbackGroupAddFor,
		CallbackGroupSelectFor,
		CallbackGroupPick,
	}
}

func (c *Command) HandleCallback(ctx context.Context, query *telegram.CallbackQuery) error {
	if query.From == nil {
		return nil
	}
	userID := query.From.ID
	data := query.Data

	switch {
	case data == CallbackStyles:
		c.Answer(query, "", false)
		c.States.Clear(userID)
		markup := c.stylesMenu()
		return c.ShowMenu(query, c.L("styles.menu", nil), &markup)

	case data == CallbackPersonal:
		c.Answer(query, "", false)
		c.States.Clear(userID)
		markup := c.sectionMenu(CallbackPersonalAdd, CallbackPersonalSelect, CallbackPersonalList)
		return c.ShowMenu(query, c.L("styles.personal", nil), &markup)

	case data == CallbackPersonalAdd:
		c.Answer(query, "", false)
		c.States.Clear(userID)
		c.States.Set(userID, state.PersonalStyleName)
		markup := c.cancelMenu(CallbackPersonal)
		return c.ShowMenu(query, c.L("styles.enterName", map[string]any{"Max": maxNameLength}), &markup)

	case data == CallbackPersonalSelect:
		c.Answer(query, "", false)
		return c.showPersonalSelect(ctx, query)

	case data == CallbackPersonalList:
		c.Answer(query, "", false)
		styles, err := c.DB.GetUserStyles(ctx, userID)
		if err != nil {
			return err
		}
		markup := c.cancelMenu(CallbackPersonal)
		return c.ShowMenu(query, c.formatList(c.L("styles.personalList", nil), styles), &markup)

	case strings.HasPrefix(data, CallbackPersonalPick):
		styleID, err := parseID(data, CallbackPersonalPick)
		if err != nil {
			c.Answer(query, c.L("error", nil), true)
			return err
		}
		if err := c.DB.SetActiveStyle(ctx, userID, styleID); err != nil {
			c.Answer(query, c.L("styles.notFound", nil), true)
			return nil
		}
		c.Answer(query, c.L("styles.selected", nil), false)
		return c.showPersonalSelect(ctx, query)

	case data == CallbackGroup:
		c.Answer(query, "", false)
		c.States.Clear(userID)
		markup := c.sectionMenu(CallbackGroupAdd, CallbackGroupSelect, CallbackGroupList)
		return c.ShowMenu(query, c.L("styles.group", nil), &markup)

	case data == CallbackGroupAdd, data == CallbackGroupSelect, data == CallbackGroupList:
		c.Answer(query, "", false)
		return c.showGroups(ctx, query)

	case strings.HasPrefix(data, CallbackGroupAddFor):
		chatID, ok := c.ownedChat(ctx, query, CallbackGroupAddFor)
		if !ok {
			return nil
		}
		c.Answer(query, "", false)
		c.States.Clear(userID)
		c.States.Put(userID, keyChatID, strconv.FormatInt(chatID, 10))
		c.States.Set(userID, state.GroupStyleName)
		markup := c.cancelMenu(CallbackGroup)
		return c.ShowMenu(query, c.L("styles.enterName", map[string]any{"Max": maxNameLength}), &markup)

	case strings.HasPrefix(data, CallbackGroupSelectFor):
		chatID, ok := c.ownedChat(ctx, query, CallbackGroupSelectFor)
		if !ok {
			return nil
		}
		c.Answer(query, "", false)
		c.States.Put(userID, keyChatID, strconv.FormatInt(chatID, 10))
		return c.showGroupSelect(ctx, query, chatID)

	case strings.HasPrefix(data, CallbackGroupPick):
		styleID, err := parseID(data, CallbackGroupPick)
		if err != nil {
			c.Answer(query, c.L("error", nil), true)
			return err
		}
		chatID, err := strconv.ParseInt(c.States.Data(userID)[keyChatID], 10, 64)
		if err != nil {
			c.Answer(query, c.L("styles.chooseGroup", nil), true)
			return nil
		}
		if owner, err := c.DB.IsGroupOwner(ctx, userID, chatID); err != nil || !owner {
			c.Answer(query, c.L("styles.notOwner", nil), true)
			return err
		}
		if err := c.DB.SetActiveGroupStyle(ctx, chatID, styleID); err != nil {
			c.Answer(query, c.L("styles.notFound", nil), true)
			return nil
		}
		c.Answer(query, c.L("styles.selected", nil), false)
		return c.showGroupSelect(ctx, query, chatID)
	}

	c.Answer(query, "", false)
	return nil
}

func (c *Command) HandlesState(s state.State) bool {
	switch s {
	case state.PersonalStyleName, state.PersonalStylePrompt, state.GroupStyleName, state.GroupStylePrompt:
		return true
	}
	return false
}

func (c *Command) HandleState(ctx context.Context, msg *telegram.MessageOriginal, s state.State) error {
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	back := CallbackPersonal
	if s == state.GroupStyleName || s == state.GroupStylePrompt {
		back = CallbackGroup
	}
	markup := c.cancelMenu(back)

	switch s {
	case state.PersonalStyleName, state.GroupStyleName:
		if text == "" || utf8.RuneCountInString(text) > maxNameLength {
			_, err := c.Reply(msg.Chat.ID, msg.MessageID, c.L("styles.invalidName", map[string]any{"Max": maxNameLength}), &markup)
			return err
		}
		c.States.Put(userID, keyName, text)
		next := state.PersonalStylePrompt
		if s == state.GroupStyleName {
			next = state.GroupStylePrompt
		}
		c.States.Set(userID, next)
		_, err := c.Reply(msg.Chat.ID, msg.MessageID, c.L("styles.enterPrompt", map[string]any{"Max": maxStylePrompt}), &markup)
		return err

	case state.PersonalStylePrompt, state.GroupStylePrompt:
		if text == "" || utf8.RuneCountInString(text) > maxStylePrompt {
			_, err := c.Reply(msg.Chat.ID, msg.MessageID, c.L("styles.invalidPrompt", map[string]any{"Max": maxStylePrompt}), &markup)
			return err
		}
		data := c.States.Data(userID)
		name := data[keyName]
		c.States.Clear(userID)

		var err error
		if s == state.PersonalStylePrompt {
			_, err = c.DB.AddUserStyle(ctx, userID, name, text)
		} else {
			var chatID int64
			chatID, err = strconv.ParseInt(data[keyChatID], 10, 64)
			if err == nil {
				_, err = c.DB.AddGroupStyle(ctx, chatID, name, text, userID)
			}
		}
		if err != nil {
			c.Logger.WithError(err).WithField("user_id", userID).Error("Failed to save style")
			_, sendErr := c.Reply(msg.Chat.ID, msg.MessageID, c.L("error", nil), &markup)
			if sendErr != nil {
				return sendErr
			}
			return err
		}
		_, err = c.Reply(msg.Chat.ID, msg.MessageID,
			c.L("styles.saved", map[string]any{"Name": markdown.EscapeHTML(name)}), &markup)
		return err
	}
	return nil
}

func (c *Command) showPersonalSelect(ctx context.Context, query *telegram.CallbackQuery) error {
	styles, err := c.DB.GetUserStyles(ctx, query.From.ID)
	if err != nil {
		return err
	}
	rows := styleButtons(styles, CallbackPersonalPick)
	rows = append(rows, base.BackButton(c.L("button.back", nil), CallbackPersonal))
	markup := telegram.NewInlineKeyboardMarkup(rows...)
	text := c.L("styles.selectPersonal", nil)
	if len(styles) == 0 {
		text = c.L("styles.empty", nil)
	}
	return c.ShowMenu(query, text, &markup)
}

func (c *Command) showGroups(ctx context.Context, query *telegram.CallbackQuery) error {
	chats, err := c.DB.GetUserGroupChats(ctx, query.From.ID)
	if err != nil {
		return err
	}
	if len(chats) == 0 {
		markup := c.cancelMenu(CallbackGroup)
		return c.ShowMenu(query, c.L("styles.noGroups", nil), &markup)
	}

	if query.Data == CallbackGroupList {
		var b strings.Builder
		b.WriteString(c.L("styles.groupList", nil))
		for _, chat := range chats {
			styles, err := c.DB.GetGroupStyles(ctx, chat.ChatID)
			if err != nil {
				return err
			}
			b.WriteString("\n\n")
			b.WriteString(c.formatList("👥 <b>"+markdown.EscapeHTML(chat.Title)+"</b>", styles))
		}
		markup := c.cancelMenu(CallbackGroup)
		return c.ShowMenu(query, b.String(), &markup)
	}

	prefix := CallbackGroupSelectFor
	if query.Data == CallbackGroupAdd {
		prefix = CallbackGroupAddFor
	}
	rows := make([][]telegram.InlineKeyboardButton, 0, len(chats)+1)
	for _, chat := range chats {
		rows = append(rows, telegram.NewInlineKeyboardRow(telegram.NewInlineKeyboardButtonData(
			"👥 "+ShortTitle(chat.Title), fmt.Sprintf("%s%d", prefix, chat.ChatID))))
	}
	rows = append(rows, base.BackButton(c.L("button.back", nil), CallbackGroup))
	markup := telegram.NewInlineKeyboardMarkup(rows...)
	return c.ShowMenu(query, c.L("styles.chooseGroup", nil), &markup)
}

func (c *Command) showGroupSelect(ctx context.Context, query *telegram.CallbackQuery, chatID int64) error {
	styles, err := c.DB.GetGroupStyles(ctx, chatID)
	if err != nil {
		return err
	}
	rows := styleButtons(styles, CallbackGroupPick)
	rows = append(rows, base.BackButton(c.L("button.back", nil), CallbackGroupSelect))
	markup := telegram.NewInlineKeyboardMarkup(rows...)
	text := c.L("styles.selectGroup", nil)
	if len(styles) == 0 {
		text = c.L("styles.empty", nil)
	}
	return c.ShowMenu(query, text, &markup)
}

// ownedChat parses the chat id from the callback data and answers the query
// with an alert when the user did not add the bot to that chat.
func (c *Command) ownedChat(ctx context.Context, query *telegram.CallbackQuery, prefix string) (int64, bool) {
	chatID, err := parseID(query.Data, prefix)
	if err != nil {
		c.Answer(query, c.L("error", nil), true)
		return 0, false
	}
	owner, err := c.DB.IsGroupOwner(ctx, query.From.ID, chatID)
	if err != nil {
		c.Logger.WithError(err).WithField("chat_id", chatID).Error("Failed to check group owner")
	}
	if !owner {
		c.Answer(query, c.L("styles.notOwner", nil), true)
		return 0, false
	}
	return chatID, true
}

func (c *Command) stylesMenu() telegram.InlineKeyboardMarkup {
	return telegram.NewInlineKeyboardMarkup(
		telegram.NewInlineKeyboardRow(
			telegram.NewInlineKeyboardButtonData(c.L("button.personalStyles", nil), CallbackPersonal),
			telegram.NewInlineKeyboardButtonData(c.L("button.groupStyles", nil), CallbackGroup),
		),
		base.BackButton(c.L("button.back", nil), CallbackBackToSettings),
	)
}

func (c *Command) sectionMenu(add, sel, list string) telegram.InlineKeyboardMarkup {
	return telegram.NewInlineKeyboardMarkup(
		telegram.NewInlineKeyboardRow(
			telegram.NewInlineKeyboardButtonData(c.L("button.addStyle", nil), add),
			telegram.NewInlineKeyboardButtonData(c.L("button.selectStyle", nil), sel),
		),
		base.BackButton(c.L("button.listStyles", nil), list),
		base.BackButton(c.L("button.back", nil), CallbackStyles),
	)
}

func (c *Command) cancelMenu(data string) telegram.InlineKeyboardMarkup {
	return telegram.NewInlineKeyboardMarkup(base.BackButton(c.L("button.back", nil), data))
}

func (c *Command) formatList(header string, styles []database.Style) string {
	if len(styles) == 0 {
		return header + "\n" + c.L("styles.empty", nil)
	}
	var b strings.Builder
	b.WriteString(header)
	for _, s := range styles {
		mark := "▫️"
		if s.IsActive {
			mark = "✅"
		}
		fmt.Fprintf(&b, "\n%s <b>%s</b>\n<i>%s</i>", mark,
			markdown.EscapeHTML(s.Name), markdown.EscapeHTML(truncate(s.Prompt, maxPreviewLength)))
	}
	return b.String()
}

func styleButtons(styles []database.Style, prefix string) [][]telegram.InlineKeyboardButton {
	rows := make([][]telegram.InlineKeyboardButton, 0, len(styles)+1)
	for _, s := range styles {
		label := s.Name
		if s.IsActive {
			label = "✅ " + label
		}
		rows = append(rows, telegram.NewInlineKeyboardRow(
			telegram.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s%d", prefix, s.ID))))
	}
	return rows
}

// ShortTitle fits a chat title on an inline button.
func ShortTitle(title string) string {
	return truncate(title, maxTitleLength)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func parseID(data, prefix string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad callback data %q: %w", data, err)
	}
	return id, nil
}
