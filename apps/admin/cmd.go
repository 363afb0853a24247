package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/esirbde/skisatiresa/core/deadline"
	"github.com/esirbde/skisatiresa/core/registration"
	"github.com/esirbde/skisatiresa/core/student"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db      *sqlx.DB
	stdSvc  *student.Service
	regSvc  *registration.Service
	sweeper *deadline.Sweeper
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate up|down|version            - manage the database schema")
	fmt.Println("  addstudent -number N -first F -last L -gender M|F [-emails a@b.fr,c@d.fr] - record a student")
	fmt.Println("  register -number N -year YYYY -date dd/mm/yyyy [-fee FEE] [-paid dd/mm/yyyy] - register a student")
	fmt.Println("  sweep                              - run one deadline sweep pass")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addStudentCmd := flag.NewFlagSet("addstudent", flag.ExitOnError)
	addStudentNumber := addStudentCmd.Int("number", 0, "The student number.")
	addStudentFirst := addStudentCmd.String("first", "", "The student's first name.")
	addStudentLast := addStudentCmd.String("last", "", "The student's last name.")
	addStudentGender := addStudentCmd.String("gender", "", "The student's gender: M or F.")
	addStudentEmails := addStudentCmd.String("emails", "", "Comma-separated email addresses.")

	registerCmd := flag.NewFlagSet("register", flag.ExitOnError)
	registerNumber := registerCmd.Int("number", 0, "The student number.")
	registerYear := registerCmd.String("year", "", "The edition year.")
	registerDate := registerCmd.String("date", "", "The registration date, dd/mm/yyyy.")
	registerFee := registerCmd.String("fee", "", "The registration fee; required for a new edition.")
	registerPaid := registerCmd.String("paid", "", "The payment date, dd/mm/yyyy; empty when unpaid.")

	ctx := context.Background()

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2])
	case "addstudent":
		if err := addStudentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStudentNumber == 0 || *addStudentFirst == "" || *addStudentLast == "" || *addStudentGender == "" {
			addStudentCmd.Usage()
			return errHelp
		}
		var emails []string
		if *addStudentEmails != "" {
			emails = strings.Split(*addStudentEmails, ",")
		}
		return cli.addStudent(ctx, *addStudentNumber, *addStudentFirst, *addStudentLast, *addStudentGender, emails)
	case "register":
		if err := registerCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *registerNumber == 0 || *registerYear == "" || *registerDate == "" {
			registerCmd.Usage()
			return errHelp
		}
		return cli.register(ctx, *registerNumber, *registerYear, *registerDate, *registerFee, *registerPaid)
	case "sweep":
		return cli.sweeper.Run(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}
