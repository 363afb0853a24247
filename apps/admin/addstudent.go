package main

import (
	"context"
	"fmt"

	"github.com/esirbde/skisatiresa/core/student"
)

func (cli *commandLine) addStudent(ctx context.Context, number int, first, last, gender string, emails []string) error {
	st, err := cli.stdSvc.Add(ctx, student.NewStudent{
		Number:    number,
		FirstName: first,
		LastName:  last,
		Gender:    gender,
		Emails:    emails,
	})
	if err != nil {
		return err
	}
	fmt.Printf("student %d (%s %s) recorded\n", st.Number, st.FirstName, st.LastName)
	return nil
}
