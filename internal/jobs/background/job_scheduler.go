// Package background runs the scheduled maintenance jobs.
package background

import (
	"context"
	"time"

	"studiokit/internal/authflow"
	"studiokit/internal/repositories"
	"studiokit/internal/services"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// JobScheduler manages the process's recurring jobs.
type JobScheduler struct {
	scheduler gocron.Scheduler
	userRepo  repositories.UserRepository
	notifier  services.NotifierService
	logger    *zap.Logger
}

func NewJobScheduler(userRepo repositories.UserRepository, notifier services.NotifierService, logger *zap.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		userRepo:  userRepo,
		notifier:  notifier,
		logger:    logger,
	}
	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) registerJobs() error {
	_, err := js.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(9, 0, 0))),
		gocron.NewTask(js.runMFAGraceReminders),
		gocron.WithName("mfa-grace-reminders"),
	)
	return err
}

func (js *JobScheduler) Start() {
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	return js.scheduler.Shutdown()
}

// runMFAGraceReminders emails owners who have not enabled MFA. Owners
// already past the grace window are blocked at request time; this nudges
// the ones still inside it before the hard cutoff lands.
func (js *JobScheduler) runMFAGraceReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	owners, err := js.userRepo.ListOwnersWithoutMFA(ctx)
	if err != nil {
		js.logger.Error("mfa reminder job: listing owners failed", zap.Error(err))
		return
	}

	for _, owner := range owners {
		deadline := owner.CreatedAt.Add(authflow.MFAGracePeriod)
		var body string
		if time.Now().Before(deadline) {
			body = "Your studio owner account requires multi-factor authentication. " +
				"Access will be restricted after " + deadline.UTC().Format("Jan 2, 2006") + "."
		} else {
			body = "Your studio owner account is locked out of most operations until " +
				"multi-factor authentication is enabled."
		}

		// Reminders go out on the platform-default channel; per-tenant
		// credentials only exist inside a request.
		if err := js.notifier.SendEmail(ctx, nil, owner.Email, "Action required: enable MFA", body); err != nil {
			js.logger.Warn("mfa reminder email failed",
				zap.String("user_id", owner.ID.String()),
				zap.Error(err),
			)
		}
	}

	js.logger.Info("mfa grace reminders sent", zap.Int("owners", len(owners)))
}
