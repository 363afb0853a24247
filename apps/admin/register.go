package main

import (
	"context"
	"fmt"

	"github.com/esirbde/skisatiresa/core"
	"github.com/esirbde/skisatiresa/core/registration"
)

func (cli *commandLine) register(ctx context.Context, number int, year, date, fee, paid string) error {
	reg, err := cli.regSvc.Register(ctx, registration.NewRegistration{
		StudentNumber:    number,
		Year:             year,
		RegistrationDate: date,
		PaymentDate:      paid,
		RegistrationFee:  fee,
	})
	if err != nil {
		return err
	}
	fmt.Printf("student %d registered to the %d edition; payment due %s\n",
		reg.StudentNumber, reg.Year, reg.Deadline().Format(core.DateLayout))
	return nil
}
