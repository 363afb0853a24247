package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/esirbde/skisatiresa/core"
	"github.com/esirbde/skisatiresa/core/registration"
)

type registrationRepository struct {
	exec core.DBExecutor
}

var _ registration.Repository = (*registrationRepository)(nil) // interface compliance check

func NewRegistrationRepository(exec core.DBExecutor) *registrationRepository {
	return &registrationRepository{exec: exec}
}

func (repo registrationRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

type editionRow struct {
	Year            int     `db:"year"`
	RegistrationFee float64 `db:"registration_fee"`
}

type registrationRow struct {
	StudNumber       int         `db:"stud_number"`
	Year             int         `db:"year"`
	RegistrationDate string      `db:"registration_date"`
	PaymentDate      null.String `db:"payment_date"`
}

func newRegistrationRow(reg registration.Registration) registrationRow {
	row := registrationRow{
		StudNumber:       reg.StudentNumber,
		Year:             reg.Year,
		RegistrationDate: reg.RegisteredOn.Format(core.DateLayout),
	}
	if reg.PaidOn.Valid {
		row.PaymentDate = null.StringFrom(reg.PaidOn.Time.Format(core.DateLayout))
	}
	return row
}

func (row registrationRow) registration() (registration.Registration, error) {
	registeredOn, err := time.Parse(core.DateLayout, row.RegistrationDate)
	if err != nil {
		return registration.Registration{}, errors.Wrapf(err, "parsing registration date %q", row.RegistrationDate)
	}
	reg := registration.Registration{
		StudentNumber: row.StudNumber,
		Year:          row.Year,
		RegisteredOn:  registeredOn,
	}
	if row.PaymentDate.Valid {
		paidOn, err := time.Parse(core.DateLayout, row.PaymentDate.String)
		if err != nil {
			return registration.Registration{}, errors.Wrapf(err, "parsing payment date %q", row.PaymentDate.String)
		}
		reg.PaidOn = null.TimeFrom(paidOn)
	}
	return reg, nil
}

// isUniqueViolation reports whether err is a sqlite primary key or unique
// constraint failure.
func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			serr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func (repo registrationRepository) GetEdition(ctx context.Context, year int, exec ...core.DBExecutor) (registration.Edition, error) {
	var row editionRow
	err := repo.getExec(exec).GetContext(ctx, &row,
		"SELECT year, registration_fee FROM skisati_edition WHERE year = ?", year)
	if err != nil {
		if err == sql.ErrNoRows {
			return registration.Edition{}, registration.ErrEditionNotFound
		}
		return registration.Edition{}, errors.Wrap(err, "finding edition")
	}
	return registration.Edition{Year: row.Year, RegistrationFee: row.RegistrationFee}, nil
}

func (repo registrationRepository) CreateEdition(ctx context.Context, ed registration.Edition, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		"INSERT INTO skisati_edition (year, registration_fee) VALUES (?, ?)", ed.Year, ed.RegistrationFee)
	return errors.Wrap(err, "inserting edition")
}

func (repo registrationRepository) GetStudentRegistrations(ctx context.Context, studNumber int, exec ...core.DBExecutor) ([]registration.Registration, error) {
	var rows []registrationRow
	err := repo.getExec(exec).SelectContext(ctx, &rows,
		"SELECT stud_number, year, registration_date, payment_date FROM registration WHERE stud_number = ? ORDER BY year ASC",
		studNumber)
	if err != nil {
		return nil, errors.Wrap(err, "querying student registrations")
	}
	regs := make([]registration.Registration, 0, len(rows))
	for _, row := range rows {
		reg, err := row.registration()
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, nil
}

func (repo registrationRepository) CreateRegistration(ctx context.Context, reg registration.Registration, exec ...core.DBExecutor) error {
	row := newRegistrationRow(reg)
	_, err := repo.getExec(exec).ExecContext(ctx,
		"INSERT INTO registration (stud_number, year, registration_date, payment_date) VALUES (?, ?, ?, ?)",
		row.StudNumber, row.Year, row.RegistrationDate, row.PaymentDate)
	if err != nil {
		if isUniqueViolation(err) {
			return &registration.DuplicateError{Year: reg.Year}
		}
		return errors.Wrap(err, "inserting registration")
	}
	return nil
}

func (repo registrationRepository) DeleteRegistration(ctx context.Context, studNumber, year int, exec ...core.DBExecutor) error {
	// A missing key is not an error: zero rows affected reads as success.
	_, err := repo.getExec(exec).ExecContext(ctx,
		"DELETE FROM registration WHERE stud_number = ? AND year = ?", studNumber, year)
	return errors.Wrap(err, "deleting registration")
}

func (repo registrationRepository) UpdateRegistrationDate(ctx context.Context, studNumber, year int, registeredOn time.Time, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		"UPDATE registration SET registration_date = ? WHERE stud_number = ? AND year = ?",
		registeredOn.Format(core.DateLayout), studNumber, year)
	return errors.Wrap(err, "updating registration date")
}

func (repo registrationRepository) UpdatePaymentDate(ctx context.Context, studNumber, year int, paidOn null.Time, exec ...core.DBExecutor) error {
	var date null.String
	if paidOn.Valid {
		date = null.StringFrom(paidOn.Time.Format(core.DateLayout))
	}
	_, err := repo.getExec(exec).ExecContext(ctx,
		"UPDATE registration SET payment_date = ? WHERE stud_number = ? AND year = ?",
		date, studNumber, year)
	return errors.Wrap(err, "updating payment date")
}

func (repo registrationRepository) UnpaidRegistrations(ctx context.Context, exec ...core.DBExecutor) ([]registration.Registration, error) {
	var rows []registrationRow
	err := repo.getExec(exec).SelectContext(ctx, &rows,
		"SELECT stud_number, year, registration_date, payment_date FROM registration WHERE payment_date IS NULL")
	if err != nil {
		return nil, errors.Wrap(err, "querying unpaid registrations")
	}
	regs := make([]registration.Registration, 0, len(rows))
	for _, row := range rows {
		reg, err := row.registration()
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, nil
}

func (repo registrationRepository) ReminderContact(ctx context.Context, reg registration.Registration, exec ...core.DBExecutor) (registration.Contact, error) {
	var row struct {
		FirstName string `db:"first_name"`
		Email     string `db:"email"`
	}
	// The primary address is the first one in lexical order.
	err := repo.getExec(exec).GetContext(ctx, &row,
		`SELECT s.first_name, e.email
		   FROM registration r
		   JOIN student s ON s.stud_number = r.stud_number
		   JOIN email_address e ON e.stud_number = s.stud_number
		  WHERE r.stud_number = ? AND r.year = ?
		  ORDER BY e.email ASC LIMIT 1`,
		reg.StudentNumber, reg.Year)
	if err != nil {
		if err == sql.ErrNoRows {
			return registration.Contact{}, errors.Errorf("no contact for student %d", reg.StudentNumber)
		}
		return registration.Contact{}, errors.Wrap(err, "resolving reminder contact")
	}
	return registration.Contact{FirstName: row.FirstName, Email: row.Email}, nil
}
