package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/kukufarm/kukutrack/internal/config"
	"github.com/kukufarm/kukutrack/internal/service/reporting"
)

// ExpiryChecker is the session guard hook the watchdog drives.
type ExpiryChecker interface {
	CheckExpiry()
}

// Scheduler manages scheduled tasks: the session expiry watchdog and the
// weekly report job.
type Scheduler struct {
	cron         *cron.Cron
	guard        ExpiryChecker
	reportingSvc *reporting.Service
	cfg          config.Config
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.Config, guard ExpiryChecker, reportingSvc *reporting.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// robfig/cron/v3 default parser is standard 5-field cron; the expiry
	// watchdog uses the @every descriptor instead.
	opts := []cron.Option{}
	if loc, err := time.LoadLocation(cfg.Reporting.Timezone); err != nil {
		logger.Warn("invalid timezone, scheduling in local time", zap.String("timezone", cfg.Reporting.Timezone), zap.Error(err))
	} else {
		opts = append(opts, cron.WithLocation(loc))
	}
	c := cron.New(opts...)

	return &Scheduler{
		cron:         c,
		guard:        guard,
		reportingSvc: reportingSvc,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	watchdogSpec := fmt.Sprintf("@every %s", s.cfg.Session.CheckInterval)
	if _, err := s.cron.AddFunc(watchdogSpec, s.guard.CheckExpiry); err != nil {
		s.logger.Error("failed to schedule session expiry watchdog", zap.Error(err))
	}

	if s.reportingSvc != nil {
		if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.runWeeklyReport); err != nil {
			s.logger.Error("failed to schedule weekly report", zap.Error(err))
		}
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runWeeklyReport() {
	s.logger.Info("generating weekly report")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := s.reportingSvc.Generate(ctx, time.Now())
	if err != nil {
		s.logger.Error("failed to generate weekly report", zap.Error(err))
		return
	}

	s.logger.Info("weekly report generated",
		zap.Time("week_start", report.WeekStart),
		zap.Float64("profit", report.TotalProfit))
}
