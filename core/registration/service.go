package registration

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/esirbde/skisatiresa/core"
)

var (
	// errors
	ErrNotFound        = errors.New("registration not found")
	ErrEditionNotFound = errors.New("skisati edition not found")
	ErrFeeRequired     = errors.New("a registration fee is required for a new edition")
)

// DuplicateError is returned when a student is registered twice to the same
// edition; it carries the offending year.
type DuplicateError struct {
	Year int
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("student is already registered to the %d edition", e.Year)
}

type (
	// Repository gathers the registration store operations. Each operation
	// issues exactly one statement against the given executor and never
	// demarcates transactions; callers pass the open transaction as exec
	// when several operations form one unit of work.
	Repository interface {
		GetEdition(ctx context.Context, year int, exec ...core.DBExecutor) (Edition, error)
		CreateEdition(ctx context.Context, ed Edition, exec ...core.DBExecutor) error
		// GetStudentRegistrations returns the student's registrations ordered by year.
		GetStudentRegistrations(ctx context.Context, studNumber int, exec ...core.DBExecutor) ([]Registration, error)
		CreateRegistration(ctx context.Context, reg Registration, exec ...core.DBExecutor) error
		// DeleteRegistration reports success even when no row matches the key;
		// zero rows affected is not distinguished from one.
		DeleteRegistration(ctx context.Context, studNumber, year int, exec ...core.DBExecutor) error
		UpdateRegistrationDate(ctx context.Context, studNumber, year int, registeredOn time.Time, exec ...core.DBExecutor) error
		UpdatePaymentDate(ctx context.Context, studNumber, year int, paidOn null.Time, exec ...core.DBExecutor) error
		// UnpaidRegistrations returns all registrations with no payment date.
		UnpaidRegistrations(ctx context.Context, exec ...core.DBExecutor) ([]Registration, error)
		// ReminderContact resolves the first name and primary email address of
		// the student owning the given registration.
		ReminderContact(ctx context.Context, reg Registration, exec ...core.DBExecutor) (Contact, error)
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

// Register enrolls a student to an edition. When the edition year is new, a
// registration fee must be provided and the edition row is created in the
// same transaction as the registration.
func (svc *Service) Register(ctx context.Context, nr NewRegistration) (Registration, error) {
	if err := nr.Validate(); err != nil {
		return Registration{}, err
	}
	reg, err := nr.registration()
	if err != nil {
		return Registration{}, err
	}

	tx, err := svc.db.BeginTxx(ctx, nil)
	if err != nil {
		return Registration{}, errors.Wrap(err, "beginning transaction")
	}

	if _, err = svc.repo.GetEdition(ctx, reg.Year, tx); err != nil {
		if errors.Cause(err) != ErrEditionNotFound {
			_ = tx.Rollback()
			return Registration{}, err
		}
		if !core.IsValidFee(nr.RegistrationFee) {
			_ = tx.Rollback()
			return Registration{}, ErrFeeRequired
		}
		fee, _ := strconv.ParseFloat(nr.RegistrationFee, 64)
		if err = svc.repo.CreateEdition(ctx, Edition{Year: reg.Year, RegistrationFee: fee}, tx); err != nil {
			_ = tx.Rollback()
			return Registration{}, err
		}
	}

	if err = svc.repo.CreateRegistration(ctx, reg, tx); err != nil {
		_ = tx.Rollback()
		return Registration{}, err
	}
	if err = tx.Commit(); err != nil {
		return Registration{}, errors.Wrap(err, "committing registration")
	}
	return reg, nil
}

func (svc *Service) Edition(ctx context.Context, year int) (Edition, error) {
	return svc.repo.GetEdition(ctx, year)
}

func (svc *Service) StudentRegistrations(ctx context.Context, studNumber int) ([]Registration, error) {
	return svc.repo.GetStudentRegistrations(ctx, studNumber)
}

// Edit applies the provided field changes to an existing registration as one
// unit of work: either every change lands or none does.
func (svc *Service) Edit(ctx context.Context, studNumber, year int, er EditRegistration) (Registration, error) {
	regs, err := svc.repo.GetStudentRegistrations(ctx, studNumber)
	if err != nil {
		return Registration{}, err
	}
	var orig *Registration
	for i := range regs {
		if regs[i].Year == year {
			orig = &regs[i]
			break
		}
	}
	if orig == nil {
		return Registration{}, ErrNotFound
	}

	if err = er.Validate(*orig); err != nil {
		return Registration{}, err
	}
	if er.IsEmpty() {
		return *orig, nil
	}

	tx, err := svc.db.BeginTxx(ctx, nil)
	if err != nil {
		return Registration{}, errors.Wrap(err, "beginning transaction")
	}
	if er.RegistrationDate != "" {
		registeredOn, _ := core.GetDate(er.RegistrationDate)
		if err = svc.repo.UpdateRegistrationDate(ctx, studNumber, year, registeredOn, tx); err != nil {
			_ = tx.Rollback()
			return Registration{}, err
		}
		orig.RegisteredOn = registeredOn
	}
	if er.PaymentDate != "" {
		paidOn, _ := core.GetDate(er.PaymentDate)
		if err = svc.repo.UpdatePaymentDate(ctx, studNumber, year, null.TimeFrom(paidOn), tx); err != nil {
			_ = tx.Rollback()
			return Registration{}, err
		}
		orig.PaidOn = null.TimeFrom(paidOn)
	}
	if err = tx.Commit(); err != nil {
		return Registration{}, errors.Wrap(err, "committing registration edit")
	}
	return *orig, nil
}

// RecordPayment sets the payment date of a registration.
func (svc *Service) RecordPayment(ctx context.Context, studNumber, year int, paidOn time.Time) error {
	return svc.repo.UpdatePaymentDate(ctx, studNumber, year, null.TimeFrom(paidOn))
}

// Unregister removes a registration. Removing an unknown key is not an error.
func (svc *Service) Unregister(ctx context.Context, studNumber, year int) error {
	return svc.repo.DeleteRegistration(ctx, studNumber, year)
}
