package registration_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esirbde/skisatiresa/core/registration"
	sqlxrepos "github.com/esirbde/skisatiresa/storage/database/sqlx"
	testutil "github.com/esirbde/skisatiresa/tests"
)

func setup(t *testing.T) (*registration.Service, registration.Repository) {
	t.Helper()
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewRegistrationRepository(db)
	stdRepo := sqlxrepos.NewStudentRepository(db)

	testutil.CreateStudent(t, stdRepo, 1, "Awe", "Mbiya", "M", "awe@test.cd")
	testutil.CreateStudent(t, stdRepo, 2, "Kim", "Kayembe", "F", "kim@test.cd")

	return registration.NewService(db, repo), repo
}

// editionYear returns a year that IsValidYear always accepts, with a matching
// registration date the year before.
func editionYear() (year int, regDate string) {
	year = time.Now().Year() + 1
	return year, fmt.Sprintf("15/06/%d", year-1)
}

func TestService_Register(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	year, regDate := editionYear()

	t.Run("new edition requires a fee", func(t *testing.T) {
		_, err := svc.Register(ctx, registration.NewRegistration{
			StudentNumber: 1, Year: fmt.Sprint(year), RegistrationDate: regDate,
		})
		assert.Equal(t, registration.ErrFeeRequired, err)
	})

	t.Run("edition created lazily with the registration", func(t *testing.T) {
		reg, err := svc.Register(ctx, registration.NewRegistration{
			StudentNumber: 1, Year: fmt.Sprint(year), RegistrationDate: regDate, RegistrationFee: "150.50",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, reg.StudentNumber)
		assert.Equal(t, year, reg.Year)
		assert.True(t, reg.Unpaid())

		ed, err := repo.GetEdition(ctx, year)
		require.NoError(t, err)
		assert.Equal(t, 150.50, ed.RegistrationFee)
	})

	t.Run("existing edition needs no fee", func(t *testing.T) {
		_, err := svc.Register(ctx, registration.NewRegistration{
			StudentNumber: 2, Year: fmt.Sprint(year), RegistrationDate: regDate,
		})
		assert.NoError(t, err)
	})

	t.Run("second registration for the same year is a duplicate", func(t *testing.T) {
		_, err := svc.Register(ctx, registration.NewRegistration{
			StudentNumber: 1, Year: fmt.Sprint(year), RegistrationDate: regDate,
		})
		var dup *registration.DuplicateError
		require.True(t, errors.As(err, &dup), "want DuplicateError, got %v", err)
		assert.Equal(t, year, dup.Year)
	})

	t.Run("failed registration does not leave an edition behind", func(t *testing.T) {
		year2 := year + 1
		_, err := svc.Register(ctx, registration.NewRegistration{
			StudentNumber:    99, // unknown student, the insert violates the FK
			Year:             fmt.Sprint(year2),
			RegistrationDate: fmt.Sprintf("15/06/%d", year2-1),
			RegistrationFee:  "100",
		})
		require.Error(t, err)
		_, err = repo.GetEdition(ctx, year2)
		assert.Equal(t, registration.ErrEditionNotFound, err)
	})
}

func TestService_RecordPayment(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	year, regDate := editionYear()

	_, err := svc.Register(ctx, registration.NewRegistration{
		StudentNumber: 1, Year: fmt.Sprint(year), RegistrationDate: regDate, RegistrationFee: "150",
	})
	require.NoError(t, err)

	paidOn := testutil.Date(year-1, time.June, 20)
	require.NoError(t, svc.RecordPayment(ctx, 1, year, paidOn))

	// the stored payment date survives the round trip
	regs, err := repo.GetStudentRegistrations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	require.True(t, regs[0].PaidOn.Valid)
	assert.Equal(t, paidOn, regs[0].PaidOn.Time)
	assert.False(t, regs[0].Unpaid())
}

func TestService_Edit(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	year, regDate := editionYear()

	_, err := svc.Register(ctx, registration.NewRegistration{
		StudentNumber: 1, Year: fmt.Sprint(year), RegistrationDate: regDate, RegistrationFee: "150",
	})
	require.NoError(t, err)

	t.Run("unknown registration", func(t *testing.T) {
		_, err := svc.Edit(ctx, 1, year+3, registration.EditRegistration{PaymentDate: regDate})
		assert.Equal(t, registration.ErrNotFound, err)
	})

	t.Run("empty edit is a no-op", func(t *testing.T) {
		reg, err := svc.Edit(ctx, 1, year, registration.EditRegistration{})
		require.NoError(t, err)
		assert.Equal(t, testutil.Date(year-1, time.June, 15), reg.RegisteredOn)
	})

	t.Run("both dates move together", func(t *testing.T) {
		reg, err := svc.Edit(ctx, 1, year, registration.EditRegistration{
			RegistrationDate: fmt.Sprintf("01/07/%d", year-1),
			PaymentDate:      fmt.Sprintf("03/07/%d", year-1),
		})
		require.NoError(t, err)
		assert.Equal(t, testutil.Date(year-1, time.July, 1), reg.RegisteredOn)
		require.True(t, reg.PaidOn.Valid)
		assert.Equal(t, testutil.Date(year-1, time.July, 3), reg.PaidOn.Time)
	})

	t.Run("payment before registration is rejected", func(t *testing.T) {
		_, err := svc.Edit(ctx, 1, year, registration.EditRegistration{
			PaymentDate: fmt.Sprintf("30/06/%d", year-1),
		})
		assert.Error(t, err)
	})
}

func TestService_Unregister(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	year, regDate := editionYear()

	_, err := svc.Register(ctx, registration.NewRegistration{
		StudentNumber: 1, Year: fmt.Sprint(year), RegistrationDate: regDate, RegistrationFee: "150",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Unregister(ctx, 1, year))
	regs, err := repo.GetStudentRegistrations(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, regs)

	// removing an unknown key reads as success
	assert.NoError(t, svc.Unregister(ctx, 1, year))
	assert.NoError(t, svc.Unregister(ctx, 42, year))
}
