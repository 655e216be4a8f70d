package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harborexpo/backend/internal/domain/model"
)

type fakeSweeper struct {
	pending    []model.Registrant
	touched    []string
	touchFails map[string]bool

	gotRegisteredBefore time.Time
	gotRemindedBefore   time.Time
}

func (f *fakeSweeper) ListPendingForReminder(_ context.Context, registeredBefore, remindedBefore time.Time, _ int) ([]model.Registrant, error) {
	f.gotRegisteredBefore = registeredBefore
	f.gotRemindedBefore = remindedBefore
	return f.pending, nil
}

func (f *fakeSweeper) TouchReminded(_ context.Context, id string) error {
	if f.touchFails[id] {
		return errors.New("touch failed")
	}
	f.touched = append(f.touched, id)
	return nil
}

type recordingSender struct {
	sent []string
}

func (r *recordingSender) Send(_ context.Context, to, _, _ string) error {
	r.sent = append(r.sent, to)
	return nil
}

func TestRunRemindsStalePendingRegistrants(t *testing.T) {
	sweeper := &fakeSweeper{
		pending: []model.Registrant{
			{ID: "r1", GivenName: "Marie", Email: "r1@harborexpo.test", ProfileCompletionPercent: 40},
			{ID: "r2", GivenName: "Luc", Email: "r2@harborexpo.test", ProfileCompletionPercent: 55},
		},
	}
	sender := &recordingSender{}
	job := New(sweeper, sender, 72*time.Hour, 48*time.Hour, nil)

	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return fixed }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if !sweeper.gotRegisteredBefore.Equal(fixed.Add(-72 * time.Hour)) {
		t.Fatalf("unexpected registered-before cutoff: %v", sweeper.gotRegisteredBefore)
	}
	if !sweeper.gotRemindedBefore.Equal(fixed.Add(-48 * time.Hour)) {
		t.Fatalf("unexpected reminded-before cutoff: %v", sweeper.gotRemindedBefore)
	}
	if len(sweeper.touched) != 2 {
		t.Fatalf("expected both registrants stamped, got %v", sweeper.touched)
	}
	if len(sender.sent) != 2 || sender.sent[0] != "r1@harborexpo.test" {
		t.Fatalf("unexpected reminder mails: %v", sender.sent)
	}
}

func TestRunSkipsSendWhenStampFails(t *testing.T) {
	sweeper := &fakeSweeper{
		pending: []model.Registrant{
			{ID: "r1", Email: "r1@harborexpo.test"},
			{ID: "r2", Email: "r2@harborexpo.test"},
		},
		touchFails: map[string]bool{"r1": true},
	}
	sender := &recordingSender{}
	job := New(sweeper, sender, 0, 0, nil)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(sender.sent) != 1 || sender.sent[0] != "r2@harborexpo.test" {
		t.Fatalf("reminder should only go to successfully stamped registrants, got %v", sender.sent)
	}
}
