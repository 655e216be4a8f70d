package reminders

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/harborexpo/backend/internal/domain/model"
	"github.com/harborexpo/backend/internal/infra/mailer"
)

const sweepBatchSize = 100

type registrantSweeper interface {
	ListPendingForReminder(ctx context.Context, registeredBefore, remindedBefore time.Time, limit int) ([]model.Registrant, error)
	TouchReminded(ctx context.Context, id string) error
}

// Job re-sends the profile completion notice to registrants stuck in pending.
// Each sweep picks registrants that have waited at least pendingAge and were
// not reminded within the cooldown.
type Job struct {
	registrants registrantSweeper
	notifier    mailer.Sender
	pendingAge  time.Duration
	cooldown    time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

func New(registrants registrantSweeper, notifier mailer.Sender, pendingAge, cooldown time.Duration, logger *zap.Logger) *Job {
	if pendingAge <= 0 {
		pendingAge = 72 * time.Hour
	}
	if cooldown <= 0 {
		cooldown = 48 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		registrants: registrants,
		notifier:    notifier,
		pendingAge:  pendingAge,
		cooldown:    cooldown,
		now:         time.Now,
		logger:      logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.registrants == nil {
		return nil
	}

	now := j.now().UTC()
	candidates, err := j.registrants.ListPendingForReminder(ctx, now.Add(-j.pendingAge), now.Add(-j.cooldown), sweepBatchSize)
	if err != nil {
		return fmt.Errorf("list registrants for reminder: %w", err)
	}
	if len(candidates) == 0 {
		return nil
	}

	reminded := 0
	for _, registrant := range candidates {
		// Stamp first so a crashed sweep cannot double-send on restart.
		if err := j.registrants.TouchReminded(ctx, registrant.ID); err != nil {
			j.logger.Warn("failed to stamp reminder",
				zap.Error(err),
				zap.String("registrant_id", registrant.ID),
			)
			continue
		}

		if j.notifier != nil {
			body := fmt.Sprintf("Hello %s,\n\nYour registration is still under review. Your profile is %d%% complete; finishing it speeds up validation.\n",
				registrant.FullName(), registrant.ProfileCompletionPercent)
			_ = j.notifier.Send(ctx, registrant.Email, "Reminder: complete your registration", body)
		}
		reminded++
	}

	j.logger.Info("reminder sweep completed",
		zap.Int("candidates", len(candidates)),
		zap.Int("reminded", reminded),
	)
	return nil
}
