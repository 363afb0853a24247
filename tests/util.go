package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/esirbde/skisatiresa/core/registration"
	"github.com/esirbde/skisatiresa/core/student"
	"github.com/esirbde/skisatiresa/storage/database"
)

// PrepareDB opens a fresh in-memory sqlite database with the full schema
// applied. Each test gets its own database.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	number int,
	firstName, lastName, gender string,
	emails ...string,
) student.Student {
	t.Helper()

	ctx := context.Background()
	st := student.Student{
		Number:    number,
		FirstName: firstName,
		LastName:  lastName,
		Gender:    gender,
		Emails:    emails,
	}
	if err := repo.CreateStudent(ctx, st); err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	for _, email := range emails {
		if err := repo.CreateEmailAddress(ctx, number, email); err != nil {
			t.Fatalf("CreateStudent() failed: %v", err)
		}
	}
	return st
}

func CreateEdition(t *testing.T, repo registration.Repository, year int, fee float64) registration.Edition {
	t.Helper()

	ed := registration.Edition{Year: year, RegistrationFee: fee}
	if err := repo.CreateEdition(context.Background(), ed); err != nil {
		t.Fatalf("CreateEdition() failed: %v", err)
	}
	return ed
}

func CreateRegistration(
	t *testing.T,
	repo registration.Repository,
	number, year int,
	registeredOn time.Time,
	paidOn ...time.Time,
) registration.Registration {
	t.Helper()

	reg := registration.Registration{
		StudentNumber: number,
		Year:          year,
		RegisteredOn:  registeredOn,
	}
	if len(paidOn) > 0 {
		reg.PaidOn = null.TimeFrom(paidOn[0])
	}
	if err := repo.CreateRegistration(context.Background(), reg); err != nil {
		t.Fatalf("CreateRegistration() failed: %v", err)
	}
	return reg
}

// Date builds a midnight-UTC date, the storage granularity of all
// registration dates.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
