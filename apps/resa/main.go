package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/esirbde/skisatiresa/core"
	"github.com/esirbde/skisatiresa/core/deadline"
	emailsvc "github.com/esirbde/skisatiresa/services/email"
	logsvc "github.com/esirbde/skisatiresa/services/logger"
	"github.com/esirbde/skisatiresa/storage/database"
	sqlxrepos "github.com/esirbde/skisatiresa/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "RESA : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up logger
	var logger core.Logger
	if core.Conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, core.Conf)
	}

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(std, err)
	defer db.Close()
	errAndDie(std, database.Migrate(db))

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService(logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	sweeper := deadline.NewSweeper(db, sqlxrepos.NewRegistrationRepository(db), mailSvc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// blocks until the context is cancelled by a signal
	sweeper.Start(ctx, core.Conf.SweepInterval)
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
