package deadline

import (
	"context"
	"io/ioutil"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esirbde/skisatiresa/core/registration"
	dummymail "github.com/esirbde/skisatiresa/services/email/dummy"
	logsvc "github.com/esirbde/skisatiresa/services/logger"
	sqlxrepos "github.com/esirbde/skisatiresa/storage/database/sqlx"
	testutil "github.com/esirbde/skisatiresa/tests"
)

func TestExpired(t *testing.T) {
	registeredOn := testutil.Date(2026, time.March, 5) // deadline 10/03
	reg := registration.Registration{RegisteredOn: registeredOn}

	tests := []struct {
		name  string
		today time.Time
		want  bool
	}{
		{name: "registration day", today: testutil.Date(2026, time.March, 5), want: false},
		{name: "deadline day", today: testutil.Date(2026, time.March, 10), want: false},
		{name: "one day past deadline", today: testutil.Date(2026, time.March, 11), want: true},
		{name: "long past deadline", today: testutil.Date(2026, time.April, 1), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Expired(reg, tt.today); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApproaching(t *testing.T) {
	registeredOn := testutil.Date(2026, time.March, 5) // deadline 10/03
	reg := registration.Registration{RegisteredOn: registeredOn}

	tests := []struct {
		name  string
		today time.Time
		want  bool
	}{
		{name: "three days before", today: testutil.Date(2026, time.March, 7), want: false},
		{name: "exactly two days before", today: testutil.Date(2026, time.March, 8), want: true},
		{name: "one day before", today: testutil.Date(2026, time.March, 9), want: false},
		{name: "deadline day", today: testutil.Date(2026, time.March, 10), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Approaching(reg, tt.today); got != tt.want {
				t.Errorf("Approaching() = %v, want %v", got, tt.want)
			}
		})
	}
}

func setupSweep(t *testing.T, today time.Time) (*Sweeper, registration.Repository, *dummymail.Service) {
	t.Helper()
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewRegistrationRepository(db)
	stdRepo := sqlxrepos.NewStudentRepository(db)
	mailSvc := dummymail.NewService()
	logger := logsvc.NewStdLogger(log.New(ioutil.Discard, "", 0))

	testutil.CreateStudent(t, stdRepo, 1, "Awe", "Mbiya", "M", "awe@test.cd")
	testutil.CreateStudent(t, stdRepo, 2, "Kim", "Kayembe", "F", "kim@test.cd")
	testutil.CreateStudent(t, stdRepo, 3, "Lise", "Moreau", "F", "lise@test.fr")
	testutil.CreateStudent(t, stdRepo, 4, "Hugo", "Petit", "M", "hugo@test.fr")
	testutil.CreateEdition(t, repo, 2027, 150)

	s := NewSweeper(db, repo, mailSvc, logger)
	s.now = func() time.Time { return today }
	return s, repo, mailSvc
}

func TestSweeper_Run(t *testing.T) {
	today := testutil.Date(2026, time.March, 10)
	s, repo, mailSvc := setupSweep(t, today)
	ctx := context.Background()

	// deadline 09/03: expired, must be purged
	testutil.CreateRegistration(t, repo, 1, 2027, testutil.Date(2026, time.March, 4))
	// deadline 10/03: on its deadline day, still safe
	testutil.CreateRegistration(t, repo, 2, 2027, testutil.Date(2026, time.March, 5))
	// deadline 12/03: exactly two days out, gets a reminder
	testutil.CreateRegistration(t, repo, 3, 2027, testutil.Date(2026, time.March, 7))
	// paid long ago: never touched
	testutil.CreateRegistration(t, repo, 4, 2027, testutil.Date(2026, time.January, 5), testutil.Date(2026, time.January, 6))

	require.NoError(t, s.Run(ctx))

	t.Run("expired registration is purged", func(t *testing.T) {
		regs, err := repo.GetStudentRegistrations(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, regs)
	})

	t.Run("registration on its deadline day survives", func(t *testing.T) {
		regs, err := repo.GetStudentRegistrations(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, regs, 1)
	})

	t.Run("approaching registration gets a reminder and survives", func(t *testing.T) {
		regs, err := repo.GetStudentRegistrations(ctx, 3)
		require.NoError(t, err)
		assert.Len(t, regs, 1)

		require.Len(t, mailSvc.SentMessages, 1)
		msg := mailSvc.SentMessages[0]
		require.Len(t, msg.To, 1)
		assert.Equal(t, "lise@test.fr", msg.To[0].Address)
		assert.Equal(t, "Lise", msg.To[0].Name)
		assert.Contains(t, msg.TextContent, "Lise")
		assert.Contains(t, msg.TextContent, "07/03/2026")
		assert.Contains(t, msg.TextContent, "12/03/2026")
	})

	t.Run("paid registration is never touched", func(t *testing.T) {
		regs, err := repo.GetStudentRegistrations(ctx, 4)
		require.NoError(t, err)
		assert.Len(t, regs, 1)
	})

	t.Run("second pass changes nothing", func(t *testing.T) {
		mailSvc.Reset()
		require.NoError(t, s.Run(ctx))

		for number, wantLen := range map[int]int{1: 0, 2: 1, 3: 1, 4: 1} {
			regs, err := repo.GetStudentRegistrations(ctx, number)
			require.NoError(t, err)
			assert.Len(t, regs, wantLen, "student %d", number)
		}
	})
}

func TestSweeper_Run_storeError(t *testing.T) {
	today := testutil.Date(2026, time.March, 10)
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewRegistrationRepository(db)
	mailSvc := dummymail.NewService()
	logger := logsvc.NewStdLogger(log.New(ioutil.Discard, "", 0))

	s := NewSweeper(db, repo, mailSvc, logger)
	s.now = func() time.Time { return today }

	// a dead store aborts the pass
	require.NoError(t, db.Close())
	assert.Error(t, s.Run(context.Background()))
	assert.Empty(t, mailSvc.SentMessages)
}
