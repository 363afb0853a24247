package core

import (
	"regexp"
	"strconv"
	"time"
)

// nowFunc is the sweep/validation clock; mockable in tests.
var nowFunc = time.Now

var emailRegex = regexp.MustCompile(`^[a-z0-9]+[._]?[a-z0-9]+@\w+\.\w{2,3}$`)

// GetDate parses a dd/mm/yyyy date. The second return value reports whether
// the text was a well-formed date.
func GetDate(date string) (time.Time, bool) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// IsValidDate reports whether the given date is a well-formed dd/mm/yyyy date.
// An empty string is valid only when allowEmpty is set.
func IsValidDate(date string, allowEmpty bool) bool {
	if allowEmpty && len(date) == 0 {
		return true
	}
	_, ok := GetDate(date)
	return ok
}

// PaymentDateAfterRegistration reports whether the payment date falls on or
// after the registration date. Unparseable dates are not an error at this
// layer: the check passes and IsValidDate is expected to catch them.
func PaymentDateAfterRegistration(paymentDate, registrationDate string) bool {
	payment, pok := GetDate(paymentDate)
	registration, rok := GetDate(registrationDate)
	if !pok || !rok {
		return true
	}
	return !payment.Before(registration)
}

// CheckRegistrationYear checks that the registration year is (edition year - 1):
// students register the year before the edition takes place. An unset year (0)
// or an unparseable date passes.
func CheckRegistrationYear(registrationDate string, year int) bool {
	d, ok := GetDate(registrationDate)
	return year == 0 || !ok || d.Year() == year-1
}

// IsValidFee reports whether the given registration fee is a real number.
func IsValidFee(fee string) bool {
	_, err := strconv.ParseFloat(fee, 64)
	return err == nil
}

// IsValidYear reports whether the given year is an integer equal to the
// current calendar year or later.
func IsValidYear(year string) bool {
	y, err := strconv.Atoi(year)
	if err != nil {
		y = 0
	}
	return y != 0 && y >= nowFunc().Year()
}

// IsValidEmailAddress reports whether the given email address matches the
// club's historical format: lowercase alphanumeric local part with at most one
// inner '.' or '_' separator, and a 2-3 letter top-level domain. Deliberately
// restrictive.
func IsValidEmailAddress(email string) bool {
	return emailRegex.MatchString(email)
}
