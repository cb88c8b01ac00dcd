package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/planchais/chantiers-backend/internal/logger"
	"github.com/planchais/chantiers-backend/internal/service"
)

const jobTimeout = 2 * time.Minute

// Options selects which jobs run.
type Options struct {
	AutoStatus bool
	Digest     bool
}

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron     *cron.Cron
	services *service.Services
	opts     Options
	now      func() time.Time
}

// NewScheduler creates a new scheduler
func NewScheduler(services *service.Services, opts Options) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		services: services,
		opts:     opts,
		now:      time.Now,
	}
}

// Start registers the jobs and starts the scheduler
func (s *Scheduler) Start() error {
	// Every night at 3 AM - Expired refresh tokens
	if _, err := s.cron.AddFunc("0 3 * * *", func() {
		logger.Info("[Cron] Running refresh token cleanup...")
		s.purgeExpiredTokens()
	}); err != nil {
		return err
	}

	// Every hour - Chantier status follows the calendar
	if s.opts.AutoStatus {
		if _, err := s.cron.AddFunc("5 * * * *", func() {
			logger.Info("[Cron] Running chantier status sync...")
			s.syncChantierStatuses()
		}); err != nil {
			return err
		}
	}

	// Every day at 7 AM - Planning digest for the team
	if s.opts.Digest {
		if _, err := s.cron.AddFunc("0 7 * * *", func() {
			logger.Info("[Cron] Running daily planning digest...")
			s.sendDailyDigest()
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	logger.Info("[Cron] Scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("[Cron] Scheduler stopped")
}

func (s *Scheduler) purgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.services.Auth.PurgeExpiredTokens(ctx, s.now())
	if err != nil {
		logger.Error("[Cron] Error purging refresh tokens", "error", err)
		return
	}
	if n > 0 {
		logger.Info("[Cron] Purged expired refresh tokens", "count", n)
	}
}

func (s *Scheduler) syncChantierStatuses() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.services.Chantier.SyncStatuses(ctx, s.now())
	if err != nil {
		logger.Error("[Cron] Error syncing chantier statuses", "error", err)
		return
	}
	logger.Info("[Cron] Chantier statuses synced", "changed", n)
}

func (s *Scheduler) sendDailyDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.services.Digest.SendDaily(ctx, s.now())
	if err != nil {
		logger.Error("[Cron] Error sending planning digest", "error", err)
		return
	}
	logger.Info("[Cron] Planning digest queued", "emails", n)
}
