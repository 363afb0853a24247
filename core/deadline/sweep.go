// Package deadline implements the payment deadline sweep: a periodic pass
// that purges expired unpaid registrations and emails reminders to students
// whose payment is due soon.
package deadline

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/esirbde/skisatiresa/core"
	"github.com/esirbde/skisatiresa/core/registration"
)

// ReminderWindowDays is how many days before the deadline the reminder fires.
// The check is an exact match, not a range: a reminder goes out on the one
// sweep where exactly this many days remain.
const ReminderWindowDays = 2

type Sweeper struct {
	db      core.DB
	repo    registration.Repository
	mailSvc core.EmailService
	logger  core.Logger

	now func() time.Time // mockable clock
}

func NewSweeper(db core.DB, repo registration.Repository, mailSvc core.EmailService, logger core.Logger) *Sweeper {
	return &Sweeper{
		db:      db,
		repo:    repo,
		mailSvc: mailSvc,
		logger:  logger,
		now:     time.Now,
	}
}

// Run performs one idempotent sweep:
//
//  1. collect all unpaid registrations (a store error aborts the pass);
//  2. delete the expired ones inside a single transaction, all-or-nothing;
//  3. once the deletion phase has committed, email one reminder per
//     registration whose deadline is exactly ReminderWindowDays away.
//
// Reminder failures are per-recipient and never affect registration data.
func (s *Sweeper) Run(ctx context.Context) error {
	runID := uuid.New().String()
	today := dateOf(s.now())

	unpaid, err := s.repo.UnpaidRegistrations(ctx)
	if err != nil {
		s.logger.Error(fmt.Sprintf("sweep %s: collecting unpaid registrations: %v", runID, err), err)
		return errors.Wrap(err, "collecting unpaid registrations")
	}

	var expired, approaching []registration.Registration
	for _, reg := range unpaid {
		switch {
		case Expired(reg, today):
			expired = append(expired, reg)
		case Approaching(reg, today):
			approaching = append(approaching, reg)
		}
	}
	s.logger.Info(fmt.Sprintf("sweep %s: %d unpaid, %d expired, %d approaching deadline",
		runID, len(unpaid), len(expired), len(approaching)))

	if err := s.removeExpired(ctx, expired); err != nil {
		s.logger.Error(fmt.Sprintf("sweep %s: removing expired registrations: %v", runID, err), err)
		return err
	}
	s.notify(ctx, approaching)
	return nil
}

// Expired reports whether the payment deadline has passed for the given
// registration: strictly more than PaymentDeadlineDays have elapsed since
// registration. A registration on its deadline day is not yet expired.
func Expired(reg registration.Registration, today time.Time) bool {
	return daysBetween(dateOf(reg.Deadline()), dateOf(today)) > 0
}

// Approaching reports whether exactly ReminderWindowDays remain before the
// payment deadline.
func Approaching(reg registration.Registration, today time.Time) bool {
	return daysBetween(dateOf(today), dateOf(reg.Deadline())) == ReminderWindowDays
}

// removeExpired deletes all expired registrations within one transaction.
// If any deletion fails the whole batch is rolled back.
func (s *Sweeper) removeExpired(ctx context.Context, expired []registration.Registration) error {
	if len(expired) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	for _, reg := range expired {
		if err := s.repo.DeleteRegistration(ctx, reg.StudentNumber, reg.Year, tx); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error(fmt.Sprintf("rolling back expired removals: %v", rbErr), rbErr)
			}
			return err
		}
	}
	return errors.Wrap(tx.Commit(), "committing expired removals")
}

// notify sends one reminder email per approaching registration. A failure to
// resolve a student's contact skips that student only.
func (s *Sweeper) notify(ctx context.Context, approaching []registration.Registration) {
	msgs := make([]*core.EmailMessage, 0, len(approaching))
	for _, reg := range approaching {
		contact, err := s.repo.ReminderContact(ctx, reg)
		if err != nil {
			s.logger.Error(fmt.Sprintf("resolving contact for student %d: %v", reg.StudentNumber, err), err)
			continue
		}
		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{{Name: contact.FirstName, Address: contact.Email}},
			Subject:      "Payment reminder for your Skisati registration",
			TemplateName: "payment-reminder",
			TemplateData: reminderData{
				FirstName:        contact.FirstName,
				RegistrationDate: reg.RegisteredOn.Format(core.DateLayout),
				Deadline:         reg.Deadline().Format(core.DateLayout),
			},
		})
	}
	if len(msgs) > 0 {
		s.mailSvc.SendMessages(msgs...)
	}
}

type reminderData struct {
	FirstName        string
	RegistrationDate string
	Deadline         string
}

// dateOf truncates a timestamp to its calendar date (midnight UTC) so that
// day arithmetic is exact.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
