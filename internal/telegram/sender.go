package telegram

import (
	"strings"

	"github.com/muratoffalex/errorer/internal/logger"
	"github.com/muratoffalex/errorer/internal/markdown"
)

func errContains(err error, markers ...string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, m := range markers {
		if strings.Contains(msg, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

func IsParseError(err error) bool {
	return errContains(err, "can't parse entities")
}

func IsMessageNotFound(err error) bool {
	return errContains(err, "message to edit not found", "MESSAGE_ID_INVALID")
}

func IsNotModified(err error) bool {
	return errContains(err, "message is not modified")
}

// IsBlocked reports errors meaning the user can no longer be messaged.
func IsBlocked(err error) bool {
	return errContains(err, "blocked", "deactivated")
}

// Sender delivers HTML text of any length: it splits, falls back to plain
// text when Telegram rejects the markup and resends when an edit target is gone.
type Sender struct {
	client   Client
	logger   logger.Logger
	label    PartLabel
	maxLen   int
	business string
}

func NewSender(client Client, log logger.Logger, label PartLabel) *Sender {
	if label == nil {
		label = DefaultPartLabel
	}
	return &Sender{
		client: client,
		logger: log,
		label:  label,
		maxLen: MaxMessageLength,
	}
}

// Business returns a copy of s that sends and edits on behalf of the
// business connection connID.
func (s *Sender) Business(connID string) *Sender {
	cp := *s
	cp.business = connID
	return &cp
}

func (s *Sender) split(text string) []string {
	return SplitMessage(text, s.maxLen, s.label)
}

// SendHTML sends text as one or more messages replying to replyTo.
func (s *Sender) SendHTML(chatID int64, replyTo int, text string) ([]*Message, error) {
	return s.sendParts(chatID, replyTo, s.split(text))
}

func (s *Sender) sendParts(chatID int64, replyTo int, parts []string) ([]*Message, error) {
	sent := make([]*Message, 0, len(parts))
	for _, part := range parts {
		msg, err := s.sendPart(chatID, replyTo, part)
		if err != nil {
			return sent, err
		}
		sent = append(sent, msg)
	}
	return sent, nil
}

func (s *Sender) sendPart(chatID int64, replyTo int, part string) (*Message, error) {
	html := NewHTMLMessage(chatID, part, replyTo)
	html.BusinessConnectionID = s.business
	msg, err := s.client.SendWithRetry(html, 0)
	if err == nil {
		return msg, nil
	}
	if !IsParseError(err) {
		return nil, err
	}
	s.logger.WithError(err).WithField("chat_id", chatID).Warn("HTML rejected, sending as plain text")
	plain := NewMessage(chatID, markdown.StripTags(part), replyTo)
	plain.BusinessConnectionID = s.business
	return s.client.SendWithRetry(plain, 0)
}

// EditHTML replaces the text of messageID with the first part of text and
// sends the rest as replies to it.
func (s *Sender) EditHTML(chatID int64, messageID int, text string) ([]*Message, error) {
	parts := s.split(text)
	log := s.logger.WithFields(logger.Fields{
		"chat_id":    chatID,
		"message_id": messageID,
		"parts":      len(parts),
	})

	edited, err := s.editPart(chatID, messageID, parts[0])
	if err != nil {
		if IsMessageNotFound(err) {
			log.WithError(err).Warn("Message to edit is gone, sending a new one")
			return s.sendParts(chatID, 0, parts)
		}
		return nil, err
	}

	sent := []*Message{edited}
	rest, err := s.sendParts(chatID, messageID, parts[1:])
	return append(sent, rest...), err
}

func (s *Sender) editPart(chatID int64, messageID int, part string) (*Message, error) {
	html := NewEditMessageHTML(chatID, messageID, part)
	html.BusinessConnectionID = s.business
	msg, err := s.client.Send(html)
	if err == nil || IsNotModified(err) {
		if msg == nil {
			msg = &Message{MessageID: messageID, Chat: Chat{ID: chatID}}
		}
		return msg, nil
	}
	if !IsParseError(err) {
		return nil, err
	}
	s.logger.WithError(err).WithField("chat_id", chatID).Warn("HTML rejected, editing as plain text")
	plain := NewEditMessageText(chatID, messageID, markdown.StripTags(part))
	plain.BusinessConnectionID = s.business
	msg, err = s.client.Send(plain)
	if err != nil && !IsNotModified(err) {
		return nil, err
	}
	if msg == nil {
		msg = &Message{MessageID: messageID, Chat: Chat{ID: chatID}}
	}
	return msg, nil
}
