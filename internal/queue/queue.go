package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/muratoffalex/errorer/internal/commands"
	"github.com/muratoffalex/errorer/internal/database"
	"github.com/muratoffalex/errorer/internal/logger"
	"github.com/muratoffalex/errorer/internal/telegram"
)

// idlePoll is how long a worker waits before looking for work again when the
// queue is empty.
const idlePoll = time.Second

type TaskStatus string

const (
	TaskStatusPending  TaskStatus = "pending"
	TaskStatusRunning  TaskStatus = "running"
	TaskStatusComplete TaskStatus = "complete"
	TaskStatusFailed   TaskStatus = "failed"
)

type Task struct {
	ID         int64         `db:"id"`
	Command    string        `db:"command"`
	UpdateData []byte        `db:"update_data"`
	RetryCount int           `db:"retry_count"`
	MaxRetries int           `db:"max_retries"`
	RetryDelay time.Duration `db:"retry_delay"` // milliseconds as stored
	Status     TaskStatus    `db:"status"`

	update *telegram.Update
}

func (t *Task) GetUpdate() (*telegram.Update, error) {
	if t.update != nil {
		return t.update, nil
	}

	var update telegram.Update
	if err := json.Unmarshal(t.UpdateData, &update); err != nil {
		return nil, fmt.Errorf("failed to unmarshal update data: %w", err)
	}
	t.update = &update
	return t.update, nil
}

func (t *Task) exhausted() bool {
	return t.RetryCount >= t.MaxRetries
}

// lane is the per-command worker budget.
type lane struct {
	limiter *rate.Limiter
	sem     chan struct{}
}

// Queue runs slow commands (generation) out of the update loop. Tasks are
// persisted so a restart picks up whatever was pending.
type Queue struct {
	store  *store
	lanes  map[string]lane
	logger logger.Logger
}

func NewQueue(db database.Database, logger logger.Logger) *Queue {
	return &Queue{
		store:  newStore(db),
		lanes:  make(map[string]lane),
		logger: logger,
	}
}

// RegisterHandlers is kept for callers that set handlers before Start.
func (q *Queue) RegisterHandlers(handlers map[string]commands.Command) {
	for name, h := range handlers {
		if h.GetQueueConfig().Enabled {
			q.logger.WithField("command", name).Debug("Command is queued")
		}
	}
}

// Add persists update for cmd's workers. retryDelay is in milliseconds.
func (q *Queue) Add(cmd commands.Command, update telegram.Update, maxRetries int, retryDelay int64) error {
	name := cmd.Name()
	if name == "" {
		return errors.New("command name cannot be empty")
	}

	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}

	log := q.logger.WithFields(logger.Fields{
		"command":   name,
		"update_id": update.UpdateID,
	})
	if err := q.store.insert(context.Background(), name, data, maxRetries, retryDelay); err != nil {
		log.WithError(err).Error("Failed to add task")
		return err
	}
	log.Debug("Task queued")
	return nil
}

// Start spawns workers for every command with the queue enabled. Workers stop
// when ctx is done.
func (q *Queue) Start(ctx context.Context, handlers map[string]commands.Command) {
	queued := make(map[string]commands.Command)
	for name, handler := range handlers {
		cfg := handler.GetQueueConfig()
		if !cfg.Enabled {
			continue
		}

		interval := cfg.Throttle.Period / time.Duration(cfg.Throttle.Requests)
		q.lanes[name] = lane{
			limiter: rate.NewLimiter(rate.Every(interval), cfg.Throttle.Requests),
			sem:     make(chan struct{}, cfg.Throttle.Concurrency),
		}
		queued[name] = handler

		q.logger.WithFields(logger.Fields{
			"command":     name,
			"interval":    interval,
			"burst":       cfg.Throttle.Requests,
			"concurrency": cfg.Throttle.Concurrency,
		}).Info("Queue workers started")
	}

	// lanes is read-only from here on.
	for name, handler := range queued {
		l := q.lanes[name]
		for range cap(l.sem) {
			go q.worker(ctx, name, handler, l)
		}
	}
}

func (q *Queue) worker(ctx context.Context, command string, h commands.Command, l lane) {
	log := q.logger.WithField("command", command)
	defer func() {
		if r := recover(); r != nil {
			log.Error(fmt.Sprintf("recovered from panic: %v", r))
		}
	}()

	for {
		task, err := q.claim(ctx, command, l.sem)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.WithError(err).Error("Failed to claim task")
		}
		if task == nil {
			if !sleep(ctx, idlePoll) {
				return
			}
			continue
		}

		reservation := l.limiter.Reserve()
		if delay := reservation.Delay(); delay > 0 {
			log.WithFields(logger.Fields{
				"task_id":  task.ID,
				"wait_for": delay.String(),
			}).Debug("Rate limited, delaying task")
			if !sleep(ctx, delay) {
				reservation.Cancel()
				return
			}
		}

		if err := q.run(ctx, task, h); err != nil {
			log.WithError(err).WithField("task_id", task.ID).Error("Task processing failed")
		}
	}
}

// claim takes the oldest due task while holding a slot of sem, so at most
// cap(sem) workers hit the database at once.
func (q *Queue) claim(ctx context.Context, command string, sem chan struct{}) (*Task, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case sem <- struct{}{}:
	}
	defer func() { <-sem }()
	return q.store.claim(ctx, command, time.Now())
}

func (q *Queue) run(ctx context.Context, task *Task, h commands.Command) error {
	timeout := h.GetQueueConfig().Timeout
	log := q.logger.WithFields(logger.Fields{
		"command": task.Command,
		"task_id": task.ID,
		"attempt": task.RetryCount + 1,
	})
	// Status writes must land even when the task context ran out.
	bg := context.WithoutCancel(ctx)

	update, err := task.GetUpdate()
	if err != nil {
		log.WithError(err).Error("Failed to decode task update")
		return q.store.setStatus(bg, task.ID, TaskStatusFailed)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- h.Execute(*update)
	}()

	select {
	case err = <-done:
	case <-runCtx.Done():
		err = fmt.Errorf("task exceeded %s: %w", timeout, runCtx.Err())
	}
	log = log.WithField("duration", time.Since(start).String())

	switch {
	case err == nil:
		log.Info("Task completed")
		return q.store.setStatus(bg, task.ID, TaskStatusComplete)
	case telegram.IsBlocked(err):
		log.WithError(err).Warn("Recipient unreachable, dropping task")
		return q.store.setStatus(bg, task.ID, TaskStatusComplete)
	default:
		log.WithError(err).Error("Task failed")
		return q.retry(bg, task, log)
	}
}

func (q *Queue) retry(ctx context.Context, task *Task, log logger.Logger) error {
	if task.exhausted() {
		log.WithField("max_retries", task.MaxRetries).Warn("Max retries exceeded, marking as failed")
		return q.store.setStatus(ctx, task.ID, TaskStatusFailed)
	}

	delay := task.RetryDelay * time.Millisecond
	if l, ok := q.lanes[task.Command]; ok {
		delay = max(delay, l.limiter.Reserve().Delay())
	}
	next := time.Now().Add(delay)
	if err := q.store.reschedule(ctx, task.ID, next); err != nil {
		log.WithError(err).Error("Failed to reschedule task")
		return err
	}
	log.WithField("next_attempt", next).Info("Task rescheduled")
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
