package student

import (
	"github.com/esirbde/skisatiresa/core"
)

// Genders accepted by the club's records.
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

type Student struct {
	Number    int
	FirstName string
	LastName  string
	Gender    string
	Emails    []string
}

// Association is a student club; Membership ties a student to one with a role.
type (
	Association struct {
		Name        string
		Description string
	}

	Membership struct {
		Association string
		Role        string
	}
)

// NewStudent contains the information needed to record a new student along
// with their email addresses and memberships, all in one unit of work.
type NewStudent struct {
	Number      int          `json:"stud_number" validate:"required"`
	FirstName   string       `json:"first_name" validate:"required"`
	LastName    string       `json:"last_name" validate:"required"`
	Gender      string       `json:"gender" validate:"required,oneof=M F"`
	Emails      []string     `json:"emails"`
	Memberships []Membership `json:"memberships"`
}

func (ns *NewStudent) Validate() error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Gender = core.CleanString(ns.Gender)

	if err := core.Validate.Struct(ns); err != nil {
		return err
	}

	var flds []core.FieldError
	for i, email := range ns.Emails {
		ns.Emails[i] = core.CleanString(email, true /* lower */)
		if !core.IsValidEmailAddress(ns.Emails[i]) {
			flds = append(flds, core.FieldError{Field: "emails", Error: "invalid email address: " + ns.Emails[i]})
		}
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func (ns NewStudent) student() Student {
	return Student{
		Number:    ns.Number,
		FirstName: ns.FirstName,
		LastName:  ns.LastName,
		Gender:    ns.Gender,
		Emails:    ns.Emails,
	}
}
