package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muratoffalex/errorer/internal/commands"
	"github.com/muratoffalex/errorer/internal/database"
	"github.com/muratoffalex/errorer/internal/logger"
	"github.com/muratoffalex/errorer/internal/telegram"
)

type fakeCommand struct {
	name    string
	cfg     commands.QueueConfig
	execute func(update telegram.Update) error
}

func (c *fakeCommand) Name() string                          { return c.name }
func (c *fakeCommand) Aliases() []string                     { return nil }
func (c *fakeCommand) Handle(update telegram.Update) error   { return c.Execute(update) }
func (c *fakeCommand) Execute(update telegram.Update) error  { return c.execute(update) }
func (c *fakeCommand) GetQueueConfig() commands.QueueConfig { return c.cfg }

func newTestQueue(t *testing.T) (*Queue, database.Database) {
	t.Helper()
	db, err := database.Open(":memory:", logger.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewQueue(db, logger.NewTestLogger()), db
}

func taskStatus(t *testing.T, db database.Database) TaskStatus {
	t.Helper()
	var status TaskStatus
	require.NoError(t, db.QueryRow("SELECT status FROM tasks ORDER BY id DESC LIMIT 1").Scan(&status))
	return status
}

func queueConfig() commands.QueueConfig {
	return commands.QueueConfig{
		Enabled: true,
		Timeout: time.Second,
		Throttle: commands.ThrottleConfig{
			Period:      time.Second,
			Requests:    10,
			Concurrency: 1,
		},
	}
}

func TestQueue_ProcessesTask(t *testing.T) {
	q, db := newTestQueue(t)

	var got atomic.Int64
	cmd := &fakeCommand{name: "ai", cfg: queueConfig(), execute: func(update telegram.Update) error {
		got.Store(int64(update.UpdateID))
		return nil
	}}

	require.NoError(t, q.Add(cmd, telegram.Update{UpdateID: 42}, 0, 0))
	assert.Equal(t, TaskStatusPending, taskStatus(t, db))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx, map[string]commands.Command{cmd.Name(): cmd})

	assert.Eventually(t, func() bool {
		return got.Load() == 42 && taskStatus(t, db) == TaskStatusComplete
	}, 3*time.Second, 20*time.Millisecond)
}

func TestQueue_FailsAfterRetries(t *testing.T) {
	q, db := newTestQueue(t)

	var calls atomic.Int32
	cmd := &fakeCommand{name: "ai", cfg: queueConfig(), execute: func(telegram.Update) error {
		calls.Add(1)
		return errors.New("backend exploded")
	}}

	require.NoError(t, q.Add(cmd, telegram.Update{UpdateID: 1}, 1, 0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx, map[string]commands.Command{cmd.Name(): cmd})

	assert.Eventually(t, func() bool {
		return taskStatus(t, db) == TaskStatusFailed
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())
}

func TestQueue_SkipsDisabledCommands(t *testing.T) {
	q, _ := newTestQueue(t)
	cfg := queueConfig()
	cfg.Enabled = false
	cmd := &fakeCommand{name: "start", cfg: cfg}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx, map[string]commands.Command{cmd.Name(): cmd})

	assert.Empty(t, q.lanes)
}

func TestStore_ClaimsOldestDueTask(t *testing.T) {
	_, db := newTestQueue(t)
	s := newStore(db)
	ctx := context.Background()

	require.NoError(t, s.insert(ctx, "ai", []byte(`{"update_id":1}`), 0, 0))
	require.NoError(t, s.insert(ctx, "ai", []byte(`{"update_id":2}`), 0, 0))
	require.NoError(t, s.insert(ctx, "start", []byte(`{"update_id":3}`), 0, 0))

	task, err := s.claim(ctx, "ai", time.Now().Add(time.Second))
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, TaskStatusRunning, task.Status)

	update, err := task.GetUpdate()
	require.NoError(t, err)
	assert.Equal(t, 1, update.UpdateID)

	require.NoError(t, s.reschedule(ctx, task.ID, time.Now().Add(time.Hour)))

	next, err := s.claim(ctx, "ai", time.Now().Add(time.Second))
	require.NoError(t, err)
	require.NotNil(t, next)
	update, err = next.GetUpdate()
	require.NoError(t, err)
	assert.Equal(t, 2, update.UpdateID)

	none, err := s.claim(ctx, "ai", time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Nil(t, none)
}
