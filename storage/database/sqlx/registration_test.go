package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/esirbde/skisatiresa/core/registration"
	sqlxrepos "github.com/esirbde/skisatiresa/storage/database/sqlx"
	testutil "github.com/esirbde/skisatiresa/tests"
)

func setup(t *testing.T) (registration.Repository, func(t *testing.T)) {
	t.Helper()
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewRegistrationRepository(db)
	stdRepo := sqlxrepos.NewStudentRepository(db)

	fixtures := func(t *testing.T) {
		testutil.CreateStudent(t, stdRepo, 1, "Awe", "Mbiya", "M", "zz@test.cd", "aa@test.cd")
		testutil.CreateEdition(t, repo, 2027, 150)
		testutil.CreateEdition(t, repo, 2028, 160)
	}
	return repo, fixtures
}

func TestRegistrationRepository_GetEdition(t *testing.T) {
	repo, fixtures := setup(t)
	fixtures(t)
	ctx := context.Background()

	ed, err := repo.GetEdition(ctx, 2027)
	require.NoError(t, err)
	assert.Equal(t, registration.Edition{Year: 2027, RegistrationFee: 150}, ed)

	_, err = repo.GetEdition(ctx, 1999)
	assert.Equal(t, registration.ErrEditionNotFound, err)
}

func TestRegistrationRepository_GetStudentRegistrations(t *testing.T) {
	repo, fixtures := setup(t)
	fixtures(t)
	ctx := context.Background()

	// inserted out of year order
	testutil.CreateRegistration(t, repo, 1, 2028, testutil.Date(2027, time.June, 15))
	testutil.CreateRegistration(t, repo, 1, 2027, testutil.Date(2026, time.June, 15))

	regs, err := repo.GetStudentRegistrations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, 2027, regs[0].Year)
	assert.Equal(t, 2028, regs[1].Year)

	regs, err = repo.GetStudentRegistrations(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, regs)
}

func TestRegistrationRepository_UpdatePaymentDate(t *testing.T) {
	repo, fixtures := setup(t)
	fixtures(t)
	ctx := context.Background()

	testutil.CreateRegistration(t, repo, 1, 2027, testutil.Date(2026, time.June, 15))

	paidOn := testutil.Date(2026, time.June, 20)
	require.NoError(t, repo.UpdatePaymentDate(ctx, 1, 2027, null.TimeFrom(paidOn)))
	regs, err := repo.GetStudentRegistrations(ctx, 1)
	require.NoError(t, err)
	require.True(t, regs[0].PaidOn.Valid)
	assert.Equal(t, paidOn, regs[0].PaidOn.Time)

	// clearing the date puts the registration back in the unpaid pool
	require.NoError(t, repo.UpdatePaymentDate(ctx, 1, 2027, null.Time{}))
	unpaid, err := repo.UnpaidRegistrations(ctx)
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	assert.Equal(t, 1, unpaid[0].StudentNumber)
}

func TestRegistrationRepository_ReminderContact(t *testing.T) {
	repo, fixtures := setup(t)
	fixtures(t)
	ctx := context.Background()

	reg := testutil.CreateRegistration(t, repo, 1, 2027, testutil.Date(2026, time.June, 15))

	contact, err := repo.ReminderContact(ctx, reg)
	require.NoError(t, err)
	assert.Equal(t, "Awe", contact.FirstName)
	// the primary address is the first in lexical order
	assert.Equal(t, "aa@test.cd", contact.Email)

	_, err = repo.ReminderContact(ctx, registration.Registration{StudentNumber: 42, Year: 2027})
	assert.Error(t, err)
}
