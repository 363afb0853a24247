package student

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/esirbde/skisatiresa/core"
)

var (
	// errors
	ErrNotFound = errors.New("student not found")
)

// DuplicateNumberError is returned when a student number is already in use.
type DuplicateNumberError struct {
	Number int
}

func (e *DuplicateNumberError) Error() string {
	return fmt.Sprintf("student number %d is already in use", e.Number)
}

// DuplicateEmailError carries the offending address when an email is already
// registered to a student.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("email address %s is already in use", e.Email)
}

// DuplicateMembershipError carries the offending association when a student
// is added twice to the same one.
type DuplicateMembershipError struct {
	Association string
}

func (e *DuplicateMembershipError) Error() string {
	return fmt.Sprintf("student is already a member of %s", e.Association)
}

type (
	// Repository gathers the student store operations; same contract as the
	// registration repository: one statement per call, transactions owned by
	// the calling workflow.
	Repository interface {
		GetStudent(ctx context.Context, number int, exec ...core.DBExecutor) (Student, error)
		GetAssociations(ctx context.Context, exec ...core.DBExecutor) ([]Association, error)
		// GetRoles returns the distinct student roles across all memberships.
		GetRoles(ctx context.Context, exec ...core.DBExecutor) ([]string, error)
		GetMemberships(ctx context.Context, number int, exec ...core.DBExecutor) ([]Membership, error)
		CreateStudent(ctx context.Context, st Student, exec ...core.DBExecutor) error
		CreateEmailAddress(ctx context.Context, number int, email string, exec ...core.DBExecutor) error
		DeleteEmailAddress(ctx context.Context, number int, email string, exec ...core.DBExecutor) error
		UpdateEmailAddress(ctx context.Context, number int, oldEmail, newEmail string, exec ...core.DBExecutor) error
		CreateMembership(ctx context.Context, number int, m Membership, exec ...core.DBExecutor) error
		DeleteMembership(ctx context.Context, number int, association string, exec ...core.DBExecutor) error
		UpdateMembership(ctx context.Context, number int, oldAssociation string, m Membership, exec ...core.DBExecutor) error
		UpdateFirstName(ctx context.Context, number int, firstName string, exec ...core.DBExecutor) error
		UpdateLastName(ctx context.Context, number int, lastName string, exec ...core.DBExecutor) error
		UpdateGender(ctx context.Context, number int, gender string, exec ...core.DBExecutor) error
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

// Add records a student together with their email addresses and memberships
// in a single transaction: a duplicate number, address or membership rolls
// back the whole unit.
func (svc *Service) Add(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(); err != nil {
		return Student{}, err
	}
	st := ns.student()

	tx, err := svc.db.BeginTxx(ctx, nil)
	if err != nil {
		return Student{}, errors.Wrap(err, "beginning transaction")
	}
	if err = svc.repo.CreateStudent(ctx, st, tx); err != nil {
		_ = tx.Rollback()
		return Student{}, err
	}
	for _, email := range st.Emails {
		if err = svc.repo.CreateEmailAddress(ctx, st.Number, email, tx); err != nil {
			_ = tx.Rollback()
			return Student{}, err
		}
	}
	for _, m := range ns.Memberships {
		if err = svc.repo.CreateMembership(ctx, st.Number, m, tx); err != nil {
			_ = tx.Rollback()
			return Student{}, err
		}
	}
	if err = tx.Commit(); err != nil {
		return Student{}, errors.Wrap(err, "committing student")
	}
	return st, nil
}

func (svc *Service) Get(ctx context.Context, number int) (Student, error) {
	return svc.repo.GetStudent(ctx, number)
}

func (svc *Service) Associations(ctx context.Context) ([]Association, error) {
	return svc.repo.GetAssociations(ctx)
}

func (svc *Service) Roles(ctx context.Context) ([]string, error) {
	return svc.repo.GetRoles(ctx)
}

func (svc *Service) Memberships(ctx context.Context, number int) ([]Membership, error) {
	return svc.repo.GetMemberships(ctx, number)
}

func (svc *Service) AddEmailAddress(ctx context.Context, number int, email string) error {
	email = core.CleanString(email, true /* lower */)
	if !core.IsValidEmailAddress(email) {
		return core.NewValidationError(nil, core.FieldError{Field: "email", Error: "invalid email address: " + email})
	}
	return svc.repo.CreateEmailAddress(ctx, number, email)
}

func (svc *Service) RemoveEmailAddress(ctx context.Context, number int, email string) error {
	return svc.repo.DeleteEmailAddress(ctx, number, core.CleanString(email, true))
}

func (svc *Service) ChangeEmailAddress(ctx context.Context, number int, oldEmail, newEmail string) error {
	newEmail = core.CleanString(newEmail, true /* lower */)
	if !core.IsValidEmailAddress(newEmail) {
		return core.NewValidationError(nil, core.FieldError{Field: "email", Error: "invalid email address: " + newEmail})
	}
	return svc.repo.UpdateEmailAddress(ctx, number, core.CleanString(oldEmail, true), newEmail)
}

func (svc *Service) AddMembership(ctx context.Context, number int, m Membership) error {
	return svc.repo.CreateMembership(ctx, number, m)
}

func (svc *Service) RemoveMembership(ctx context.Context, number int, association string) error {
	return svc.repo.DeleteMembership(ctx, number, association)
}

func (svc *Service) ChangeMembership(ctx context.Context, number int, oldAssociation string, m Membership) error {
	return svc.repo.UpdateMembership(ctx, number, oldAssociation, m)
}

// EditStudent defines what may be modified on a student record; empty fields
// are left untouched. All updates land in one transaction.
type EditStudent struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender" validate:"omitempty,oneof=M F"`
}

func (es *EditStudent) Validate() error {
	es.FirstName = core.CleanString(es.FirstName)
	es.LastName = core.CleanString(es.LastName)
	es.Gender = core.CleanString(es.Gender)
	return core.Validate.Struct(es)
}

func (svc *Service) Edit(ctx context.Context, number int, es EditStudent) error {
	if err := es.Validate(); err != nil {
		return err
	}
	if es.FirstName == "" && es.LastName == "" && es.Gender == "" {
		return nil
	}

	tx, err := svc.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if es.FirstName != "" {
		if err = svc.repo.UpdateFirstName(ctx, number, es.FirstName, tx); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if es.LastName != "" {
		if err = svc.repo.UpdateLastName(ctx, number, es.LastName, tx); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if es.Gender != "" {
		if err = svc.repo.UpdateGender(ctx, number, es.Gender, tx); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return errors.Wrap(tx.Commit(), "committing student edit")
}
