// Package scheduler runs periodic maintenance: purging finished queue tasks
// and expired cache rows, and logging usage statistics.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/muratoffalex/errorer/internal/config"
	"github.com/muratoffalex/errorer/internal/database"
	"github.com/muratoffalex/errorer/internal/logger"
)

const (
	JobPurge = "purge"
	JobStats = "stats"
)

type Scheduler struct {
	scheduler gocron.Scheduler
	db        database.Database
	cfg       *config.Config
	logger    logger.Logger
}

func New(db database.Database, cfg *config.Config, log logger.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(logger.NewGocronLogger(log)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{
		scheduler: s,
		db:        db,
		cfg:       cfg,
		logger:    log.WithField("component", "scheduler"),
	}, nil
}

// Start schedules the maintenance jobs and starts running them.
func (s *Scheduler) Start(ctx context.Context) error {
	cfg := s.cfg.Scheduler()
	jobs := []struct {
		name string
		cron string
		run  func(context.Context)
	}{
		{JobPurge, cfg.PurgeCron, s.Purge},
		{JobStats, cfg.StatsCron, s.LogStats},
	}

	for _, job := range jobs {
		_, err := s.scheduler.NewJob(
			gocron.CronJob(job.cron, false),
			gocron.NewTask(job.run, ctx),
			gocron.WithName(job.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule job %q: %w", job.name, err)
		}
		s.logger.WithFields(logger.Fields{
			"name": job.name,
			"cron": job.cron,
		}).Info("Job scheduled")
	}

	s.scheduler.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}
	return nil
}

// Purge drops finished tasks older than the retention period and expired
// cache rows.
func (s *Scheduler) Purge(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	days := s.cfg.Global().TaskRetentionDays
	if err := s.db.PurgeOldTasks(days); err != nil {
		s.logger.WithError(err).Error("Failed to purge old tasks")
	}
	if err := s.db.PurgeExpiredCache(); err != nil {
		s.logger.WithError(err).Error("Failed to purge expired cache")
	}
	s.logger.WithField("retention_days", days).Debug("Purge finished")
}

func (s *Scheduler) LogStats(ctx context.Context) {
	basic, err := s.db.GetBasicStats(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to collect stats")
		return
	}
	global, err := s.db.GetGlobalStats(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to collect stats")
		return
	}
	s.logger.WithFields(logger.Fields{
		"users":          basic.TotalUsers,
		"active_users":   basic.ActiveUsers,
		"blocked_users":  basic.BlockedUsers,
		"groups":         basic.TotalGroups,
		"group_members":  basic.TotalGroupMembers,
		"total_requests": global[database.StatTotalRequests],
	}).Info("Daily stats")
}
