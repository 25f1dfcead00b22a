package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type Database interface {
	GetDB() *sql.DB

	Exec(query string, args ...any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Close() error
	ExecWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error)

	// Users
	AddOrUpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, userID int64) (*User, error)
	MarkUserBlocked(ctx context.Context, userID int64) error
	GetUserRequestsCount(ctx context.Context, userID int64) (int, error)
	IncrementUserRequests(ctx context.Context, userID int64, kind string) error
	GetAllUserIDs(ctx context.Context) ([]int64, error)

	// Personal styles
	AddUserStyle(ctx context.Context, userID int64, name, prompt string) (int64, error)
	GetUserStyles(ctx context.Context, userID int64) ([]Style, error)
	SetActiveStyle(ctx context.Context, userID, styleID int64) error
	GetActiveStylePrompt(ctx context.Context, userID int64) (string, error)

	// Groups
	AddGroupChat(ctx context.Context, chat GroupChat) error
	UpdateGroupMemberCount(ctx context.Context, chatID int64, count int) error
	GetUserGroupChats(ctx context.Context, userID int64) ([]GroupChat, error)
	GetAllGroupChats(ctx context.Context) ([]GroupChat, error)
	GetAllGroupChatIDs(ctx context.Context) ([]int64, error)
	IsGroupOwner(ctx context.Context, userID, chatID int64) (bool, error)

	// Group styles
	AddGroupStyle(ctx context.Context, chatID int64, name, prompt string, addedBy int64) (int64, error)
	GetGroupStyles(ctx context.Context, chatID int64) ([]Style, error)
	SetActiveGroupStyle(ctx context.Context, chatID, styleID int64) error
	GetActiveGroupStylePrompt(ctx context.Context, chatID int64) (string, error)

	// Stats
	GetBasicStats(ctx context.Context) (BasicStats, error)
	GetGlobalStats(ctx context.Context) (map[string]int64, error)
	GetUserStats(ctx context.Context, userID int64) (*UserStats, error)

	// Demo triggers
	GetDemoTrigger(ctx context.Context, userID int64, text string) (*DemoTrigger, error)
	AddDemoTrigger(ctx context.Context, trigger DemoTrigger) error
	GetAllDemoTriggers(ctx context.Context) ([]DemoTrigger, error)
	DeleteDemoTrigger(ctx context.Context, id int64) error

	// Maintenance
	PurgeOldTasks(retentionDays int) error
	PurgeExpiredCache() error
}

var ErrNotFound = errors.New("not found")

const (
	StatTotalRequests = "total_requests_all_time"
	StatTotalPrefix   = "total_"
	RequestKindText   = "text"
)

type User struct {
	ID               int64     `db:"id"`
	Username         string    `db:"username"`
	FirstName        string    `db:"first_name"`
	RegistrationDate time.Time `db:"registration_date"`
	DailyRequests    int       `db:"daily_requests"`
	LastRequestDate  string    `db:"last_request_date"`
	IsBlocked        bool      `db:"is_blocked"`
	LastActivity     time.Time `db:"last_activity"`
}

type Style struct {
	ID       int64  `db:"id"`
	Name     string `db:"style_name"`
	Prompt   string `db:"style_prompt"`
	IsActive bool   `db:"is_active"`
}

type GroupChat struct {
	ChatID      int64     `db:"chat_id"`
	Title       string    `db:"chat_title"`
	AddedBy     int64     `db:"added_by"`
	MemberCount int       `db:"member_count"`
	LastUpdated time.Time `db:"last_updated"`
}

type BasicStats struct {
	TotalUsers        int64 `db:"total_users"`
	ActiveUsers       int64 `db:"active_users"`
	BlockedUsers      int64 `db:"blocked_users"`
	TotalGroups       int64 `db:"total_groups"`
	TotalGroupMembers int64 `db:"total_group_members"`
}

type UserStats struct {
	RequestsToday    int
	RegistrationDate time.Time
	StylesCount      int
}

// StringList is stored as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported type %T for StringList", src)
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

type DemoTrigger struct {
	ID          int64      `db:"id"`
	UserID      int64      `db:"user_id"`
	TriggerText string     `db:"trigger_text"`
	Responses   StringList `db:"responses"`
	IsAnimated  bool       `db:"is_animated"`
	// Entities holds the JSON of the Telegram message entities of a simple
	// trigger's response, empty when the response is plain text.
	Entities  string    `db:"entities"`
	CreatedAt time.Time `db:"created_at"`
}
