package main

import (
	"log"
	"os"

	"github.com/esirbde/skisatiresa/core"
	"github.com/esirbde/skisatiresa/core/deadline"
	"github.com/esirbde/skisatiresa/core/registration"
	"github.com/esirbde/skisatiresa/core/student"
	emailsvc "github.com/esirbde/skisatiresa/services/email"
	logsvc "github.com/esirbde/skisatiresa/services/logger"
	"github.com/esirbde/skisatiresa/storage/database"
	sqlxrepos "github.com/esirbde/skisatiresa/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	appLogger := logsvc.NewStdLogger(logger)
	mailSvc := emailsvc.NewConsoleService(appLogger)
	regRepo := sqlxrepos.NewRegistrationRepository(db)
	stdRepo := sqlxrepos.NewStudentRepository(db)

	// start CLI
	cli := commandLine{
		db:      db,
		stdSvc:  student.NewService(db, stdRepo),
		regSvc:  registration.NewService(db, regRepo),
		sweeper: deadline.NewSweeper(db, regRepo, mailSvc, appLogger),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
