package commands

import (
	"context"
	"time"

	"github.com/muratoffalex/errorer/internal/service/state"
	"github.com/muratoffalex/errorer/internal/telegram"
)

type Command interface {
	Name() string
	Aliases() []string
	Handle(update telegram.Update) error
	Execute(update telegram.Update) error
	GetQueueConfig() QueueConfig
}

// CallbackHandler is implemented by commands that own inline buttons.
// Callback data matching one of the prefixes is routed to HandleCallback.
type CallbackHandler interface {
	CallbackPrefixes() []string
	HandleCallback(ctx context.Context, query *telegram.CallbackQuery) error
}

// StateHandler consumes free text while a user is inside one of the
// command's dialogs.
type StateHandler interface {
	HandlesState(s state.State) bool
	HandleState(ctx context.Context, msg *telegram.MessageOriginal, s state.State) error
}

// TextHandler inspects plain (non-command) messages. handled reports
// whether the message was consumed.
type TextHandler interface {
	HandleText(ctx context.Context, update telegram.Update) (handled bool, err error)
}

type ThrottleConfig struct {
	Period      time.Duration
	Requests    int
	Concurrency int
}

type QueueConfig struct {
	Enabled    bool
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
	Throttle   ThrottleConfig
}
