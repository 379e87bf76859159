package application

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Cron specs for the background jobs
const (
	TournamentSweepSpec   = "@every 1m"
	SubscriptionRenewSpec = "0 * * * *"
	RevokedTokenPurgeSpec = "0 3 * * *"
)

// Scheduler runs the periodic maintenance jobs
type Scheduler struct {
	cron   *cron.Cron
	runner *ServiceRunner
	now    func() time.Time
}

// NewScheduler creates a scheduler whose cron specs are read in the given timezone
func NewScheduler(runner *ServiceRunner, timezone string) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduler timezone %q: %w", timezone, err)
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cron.VerbosePrintfLogger(log.StandardLogger()))),
	)
	return &Scheduler{
		cron:   c,
		runner: runner,
		now:    time.Now,
	}, nil
}

// Start registers the jobs and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{"tournament status sweep", TournamentSweepSpec, s.AdvanceTournaments},
		{"subscription renewals", SubscriptionRenewSpec, s.RenewSubscriptions},
		{"revoked token purge", RevokedTokenPurgeSpec, s.PurgeRevokedTokens},
	}

	for _, job := range jobs {
		job := job
		if _, err := s.cron.AddFunc(job.spec, func() {
			log.WithField("job", job.name).Debug("Running scheduled job")
			if err := job.run(ctx); err != nil {
				log.WithField("job", job.name).WithError(err).Error("Scheduled job failed")
			}
		}); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", job.name, err)
		}
	}

	s.cron.Start()
	log.WithField("jobs", len(jobs)).Info("Scheduler started")
	return nil
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info("Scheduler stopped")
}

// AdvanceTournaments moves tournaments whose start or end date has passed
func (s *Scheduler) AdvanceTournaments(ctx context.Context) error {
	var changed int
	err := s.runner.Run(ctx, func(svc *Services) error {
		var err error
		changed, err = svc.Tournaments.AdvanceStatuses(ctx, s.now())
		return err
	})
	if err != nil {
		return err
	}
	if changed > 0 {
		log.WithField("changed", changed).Info("Tournament statuses advanced")
	}
	return nil
}

// RenewSubscriptions charges or expires subscriptions that are due
func (s *Scheduler) RenewSubscriptions(ctx context.Context) error {
	return s.runner.Run(ctx, func(svc *Services) error {
		summary, err := svc.Subscriptions.RenewDue(ctx, s.now())
		if err != nil {
			return err
		}
		if summary.Renewed+summary.Expired > 0 {
			log.WithFields(log.Fields{
				"renewed": summary.Renewed,
				"expired": summary.Expired,
			}).Info("Subscription renewals processed")
		}
		return nil
	})
}

// PurgeRevokedTokens drops revocations whose tokens have expired anyway
func (s *Scheduler) PurgeRevokedTokens(ctx context.Context) error {
	return s.runner.Run(ctx, func(svc *Services) error {
		purged, err := svc.UoW.RevokedTokenRepository().PurgeExpired(ctx, s.now())
		if err != nil {
			return fmt.Errorf("failed to purge revoked tokens: %w", err)
		}
		log.WithField("purged", purged).Info("Expired token revocations purged")
		return nil
	})
}
