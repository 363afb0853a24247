package registration

import (
	"strconv"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/esirbde/skisatiresa/core"
)

// PaymentDeadlineDays is the number of days a student has to pay after
// registering. The deadline is derived, never stored.
const PaymentDeadlineDays = 5

// Edition is one year's instance of the ski trip, with its own fee.
// Editions are created lazily the first time a registration references
// a new year.
type Edition struct {
	Year            int
	RegistrationFee float64
}

// Registration is a student's enrollment in one edition.
// The composite key is (StudentNumber, Year). PaidOn is null while unpaid.
type Registration struct {
	StudentNumber int
	Year          int
	RegisteredOn  time.Time
	PaidOn        null.Time
}

// Deadline returns the payment due date: registration date + 5 days.
func (r Registration) Deadline() time.Time {
	return Deadline(r.RegisteredOn)
}

func (r Registration) Unpaid() bool { return !r.PaidOn.Valid }

// Deadline computes the payment deadline for the given registration date.
func Deadline(registeredOn time.Time) time.Time {
	return registeredOn.AddDate(0, 0, PaymentDeadlineDays)
}

// Contact is the recipient of a payment reminder: the student's first name
// and primary email address.
type Contact struct {
	FirstName string
	Email     string
}

// NewRegistration contains the raw form fields needed to register a student
// to an edition. RegistrationFee is only required when the edition year has
// never been seen before.
type NewRegistration struct {
	StudentNumber    int    `json:"stud_number" validate:"required"`
	Year             string `json:"year" validate:"required"`
	RegistrationDate string `json:"registration_date" validate:"required,date_dmy"`
	PaymentDate      string `json:"payment_date"`
	RegistrationFee  string `json:"registration_fee"`
}

func (nr *NewRegistration) Validate() error {
	nr.Year = core.CleanString(nr.Year)
	nr.RegistrationDate = core.CleanString(nr.RegistrationDate)
	nr.PaymentDate = core.CleanString(nr.PaymentDate)
	nr.RegistrationFee = core.CleanString(nr.RegistrationFee)

	if err := core.Validate.Struct(nr); err != nil {
		return err
	}

	var flds []core.FieldError
	if !core.IsValidYear(nr.Year) {
		flds = append(flds, core.FieldError{Field: "year", Error: "must be the current year or later"})
	}
	if !core.IsValidDate(nr.PaymentDate, true /* allowEmpty */) {
		flds = append(flds, core.FieldError{Field: "payment_date", Error: "must be a valid date in dd/mm/yyyy format"})
	} else if !core.PaymentDateAfterRegistration(nr.PaymentDate, nr.RegistrationDate) {
		flds = append(flds, core.FieldError{Field: "payment_date", Error: "cannot precede the registration date"})
	}
	if year, err := strconv.Atoi(nr.Year); err == nil {
		if !core.CheckRegistrationYear(nr.RegistrationDate, year) {
			flds = append(flds, core.FieldError{Field: "registration_date", Error: "registrations are taken the year before the edition"})
		}
	}
	if nr.RegistrationFee != "" && !core.IsValidFee(nr.RegistrationFee) {
		flds = append(flds, core.FieldError{Field: "registration_fee", Error: "must be a real number"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// registration builds the domain Registration from the validated form fields.
func (nr NewRegistration) registration() (Registration, error) {
	year, err := strconv.Atoi(nr.Year)
	if err != nil {
		return Registration{}, err
	}
	registeredOn, _ := core.GetDate(nr.RegistrationDate)
	reg := Registration{
		StudentNumber: nr.StudentNumber,
		Year:          year,
		RegisteredOn:  registeredOn,
	}
	if nr.PaymentDate != "" {
		paidOn, _ := core.GetDate(nr.PaymentDate)
		reg.PaidOn = null.TimeFrom(paidOn)
	}
	return reg, nil
}

// EditRegistration defines what may be modified on an existing registration.
// Empty fields are left untouched.
type EditRegistration struct {
	RegistrationDate string `json:"registration_date" validate:"omitempty,date_dmy"`
	PaymentDate      string `json:"payment_date" validate:"omitempty,date_dmy"`
}

func (er *EditRegistration) Validate(orig Registration) error {
	er.RegistrationDate = core.CleanString(er.RegistrationDate)
	er.PaymentDate = core.CleanString(er.PaymentDate)

	if err := core.Validate.Struct(er); err != nil {
		return err
	}

	regDate := er.RegistrationDate
	if regDate == "" {
		regDate = orig.RegisteredOn.Format(core.DateLayout)
	}
	payDate := er.PaymentDate
	if payDate == "" && orig.PaidOn.Valid {
		payDate = orig.PaidOn.Time.Format(core.DateLayout)
	}

	var flds []core.FieldError
	if !core.CheckRegistrationYear(regDate, orig.Year) {
		flds = append(flds, core.FieldError{Field: "registration_date", Error: "registrations are taken the year before the edition"})
	}
	if payDate != "" && !core.PaymentDateAfterRegistration(payDate, regDate) {
		flds = append(flds, core.FieldError{Field: "payment_date", Error: "cannot precede the registration date"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func (er EditRegistration) IsEmpty() bool {
	return er.RegistrationDate == "" && er.PaymentDate == ""
}
