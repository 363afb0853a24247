package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/esirbde/skisatiresa/core"
	"github.com/esirbde/skisatiresa/core/student"
)

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{exec: exec}
}

func (repo studentRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

type studentRow struct {
	StudNumber int    `db:"stud_number"`
	FirstName  string `db:"first_name"`
	LastName   string `db:"last_name"`
	Gender     string `db:"gender"`
}

func (repo studentRepository) GetStudent(ctx context.Context, number int, exec ...core.DBExecutor) (student.Student, error) {
	exe := repo.getExec(exec)

	var row studentRow
	err := exe.GetContext(ctx, &row,
		"SELECT stud_number, first_name, last_name, gender FROM student WHERE stud_number = ?", number)
	if err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "finding student")
	}

	var emails []string
	err = exe.SelectContext(ctx, &emails,
		"SELECT email FROM email_address WHERE stud_number = ? ORDER BY email ASC", number)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "querying student emails")
	}

	return student.Student{
		Number:    row.StudNumber,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Gender:    row.Gender,
		Emails:    emails,
	}, nil
}

func (repo studentRepository) GetAssociations(ctx context.Context, exec ...core.DBExecutor) ([]student.Association, error) {
	var rows []struct {
		Name string         `db:"asso_name"`
		Desc sql.NullString `db:"asso_desc"`
	}
	err := repo.getExec(exec).SelectContext(ctx, &rows,
		"SELECT asso_name, asso_desc FROM association ORDER BY asso_name ASC")
	if err != nil {
		return nil, errors.Wrap(err, "querying associations")
	}
	assos := make([]student.Association, 0, len(rows))
	for _, row := range rows {
		assos = append(assos, student.Association{Name: row.Name, Description: row.Desc.String})
	}
	return assos, nil
}

func (repo studentRepository) GetRoles(ctx context.Context, exec ...core.DBExecutor) ([]string, error) {
	var roles []string
	err := repo.getExec(exec).SelectContext(ctx, &roles,
		"SELECT DISTINCT stud_role FROM membership ORDER BY stud_role ASC")
	if err != nil {
		return nil, errors.Wrap(err, "querying roles")
	}
	return roles, nil
}

func (repo studentRepository) GetMemberships(ctx context.Context, number int, exec ...core.DBExecutor) ([]student.Membership, error) {
	var rows []struct {
		Association string `db:"asso_name"`
		Role        string `db:"stud_role"`
	}
	err := repo.getExec(exec).SelectContext(ctx, &rows,
		"SELECT asso_name, stud_role FROM membership WHERE stud_number = ? ORDER BY asso_name ASC", number)
	if err != nil {
		return nil, errors.Wrap(err, "querying memberships")
	}
	memberships := make([]student.Membership, 0, len(rows))
	for _, row := range rows {
		memberships = append(memberships, student.Membership{Association: row.Association, Role: row.Role})
	}
	return memberships, nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, st student.Student, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		"INSERT INTO student (stud_number, first_name, last_name, gender) VALUES (?, ?, ?, ?)",
		st.Number, st.FirstName, st.LastName, st.Gender)
	if err != nil {
		if isUniqueViolation(err) {
			return &student.DuplicateNumberError{Number: st.Number}
		}
		return errors.Wrap(err, "inserting student")
	}
	return nil
}

func (repo studentRepository) CreateEmailAddress(ctx context.Context, number int, email string, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		"INSERT INTO email_address (email, stud_number) VALUES (?, ?)", email, number)
	if err != nil {
		if isUniqueViolation(err) {
			return &student.DuplicateEmailError{Email: email}
		}
		return errors.Wrap(err, "inserting email address")
	}
	return nil
}

func (repo studentRepository) DeleteEmailAddress(ctx context.Context, number int, email string, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		"DELETE FROM email_address WHERE stud_number = ? AND email = ?", number, email)
	return errors.Wrap(err, "deleting email address")
}

func (repo studentRepository) UpdateEmailAddress(ctx context.Context, number int, oldEmail, newEmail string, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		"UPDATE email_address SET email = ? WHERE stud_number = ? AND email = ?", newEmail, number, oldEmail)
	if err != nil {
		if isUniqueViolation(err) {
			return &student.DuplicateEmailError{Email: newEmail}
		}
		return errors.Wrap(err, "updating email address")
	}
	return nil
}

func (repo studentRepository) CreateMembership(ctx context.Context, number int, m student.Membership, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		"INSERT INTO membership (stud_number, asso_name, stud_role) VALUES (?, ?, ?)",
		number, m.Association, m.Role)
	if err != nil {
		if isUniqueViolation(err) {
			return &student.DuplicateMembershipError{Association: m.Association}
		}
		return errors.Wrap(err, "inserting membership")
	}
	return nil
}

func (repo studentRepository) DeleteMembership(ctx context.Context, number int, association string, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		"DELETE FROM membership WHERE stud_number = ? AND asso_name = ?", number, association)
	return errors.Wrap(err, "deleting membership")
}

func (repo studentRepository) UpdateMembership(ctx context.Context, number int, oldAssociation string, m student.Membership, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		"UPDATE membership SET asso_name = ?, stud_role = ? WHERE stud_number = ? AND asso_name = ?",
		m.Association, m.Role, number, oldAssociation)
	if err != nil {
		if isUniqueViolation(err) {
			return &student.DuplicateMembershipError{Association: m.Association}
		}
		return errors.Wrap(err, "updating membership")
	}
	return nil
}

func (repo studentRepository) UpdateFirstName(ctx context.Context, number int, firstName string, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		"UPDATE student SET first_name = ? WHERE stud_number = ?", firstName, number)
	return errors.Wrap(err, "updating first name")
}

func (repo studentRepository) UpdateLastName(ctx context.Context, number int, lastName string, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		"UPDATE student SET last_name = ? WHERE stud_number = ?", lastName, number)
	return errors.Wrap(err, "updating last name")
}

func (repo studentRepository) UpdateGender(ctx context.Context, number int, gender string, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx,
		"UPDATE student SET gender = ? WHERE stud_number = ?", gender, number)
	return errors.Wrap(err, "updating gender")
}
