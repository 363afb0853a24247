package core

import (
	"testing"
	"time"
)

func mockNow(t *testing.T, now time.Time) {
	t.Helper()
	orig := nowFunc
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = orig })
}

func TestIsValidDate(t *testing.T) {
	tests := []struct {
		name       string
		date       string
		allowEmpty bool
		want       bool
	}{
		{name: "valid", date: "25/12/2026", want: true},
		{name: "valid leap day", date: "29/02/2024", want: true},
		{name: "day out of range", date: "32/01/2026", want: false},
		{name: "month out of range", date: "01/13/2026", want: false},
		{name: "non-leap 29 feb", date: "29/02/2026", want: false},
		{name: "wrong separator", date: "25-12-2026", want: false},
		{name: "iso format", date: "2026-12-25", want: false},
		{name: "garbage", date: "lol", want: false},
		{name: "empty not allowed", date: "", want: false},
		{name: "empty allowed", date: "", allowEmpty: true, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidDate(tt.date, tt.allowEmpty); got != tt.want {
				t.Errorf("IsValidDate(%q, %v) = %v, want %v", tt.date, tt.allowEmpty, got, tt.want)
			}
		})
	}
}

func TestPaymentDateAfterRegistration(t *testing.T) {
	tests := []struct {
		name             string
		payment          string
		registrationDate string
		want             bool
	}{
		{name: "payment after registration", payment: "10/06/2026", registrationDate: "01/06/2026", want: true},
		{name: "payment same day", payment: "01/06/2026", registrationDate: "01/06/2026", want: true},
		{name: "payment before registration", payment: "31/05/2026", registrationDate: "01/06/2026", want: false},
		{name: "unparseable payment passes", payment: "lol", registrationDate: "01/06/2026", want: true},
		{name: "unparseable registration passes", payment: "10/06/2026", registrationDate: "lol", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PaymentDateAfterRegistration(tt.payment, tt.registrationDate); got != tt.want {
				t.Errorf("PaymentDateAfterRegistration(%q, %q) = %v, want %v", tt.payment, tt.registrationDate, got, tt.want)
			}
		})
	}
}

func TestCheckRegistrationYear(t *testing.T) {
	tests := []struct {
		name string
		date string
		year int
		want bool
	}{
		{name: "year before edition", date: "15/06/2026", year: 2027, want: true},
		{name: "same year as edition", date: "15/06/2027", year: 2027, want: false},
		{name: "two years before", date: "15/06/2025", year: 2027, want: false},
		{name: "unset year passes", date: "15/06/2026", year: 0, want: true},
		{name: "unparseable date passes", date: "lol", year: 2027, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckRegistrationYear(tt.date, tt.year); got != tt.want {
				t.Errorf("CheckRegistrationYear(%q, %d) = %v, want %v", tt.date, tt.year, got, tt.want)
			}
		})
	}
}

func TestIsValidFee(t *testing.T) {
	tests := []struct {
		name string
		fee  string
		want bool
	}{
		{name: "integer", fee: "150", want: true},
		{name: "decimal", fee: "149.99", want: true},
		{name: "negative", fee: "-1", want: true},
		{name: "empty", fee: "", want: false},
		{name: "garbage", fee: "lol", want: false},
		{name: "comma decimal", fee: "149,99", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidFee(tt.fee); got != tt.want {
				t.Errorf("IsValidFee(%q) = %v, want %v", tt.fee, got, tt.want)
			}
		})
	}
}

func TestIsValidYear(t *testing.T) {
	mockNow(t, time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name string
		year string
		want bool
	}{
		{name: "current year", year: "2026", want: true},
		{name: "next year", year: "2027", want: true},
		{name: "past year", year: "2025", want: false},
		{name: "zero", year: "0", want: false},
		{name: "empty", year: "", want: false},
		{name: "garbage", year: "lol", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidYear(tt.year); got != tt.want {
				t.Errorf("IsValidYear(%q) = %v, want %v", tt.year, got, tt.want)
			}
		})
	}
}

func TestIsValidEmailAddress(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  bool
	}{
		{name: "plain", email: "awe@test.cd", want: true},
		{name: "dotted local part", email: "jean.dupont@univ.fr", want: true},
		{name: "underscored local part", email: "jean_dupont@univ.fr", want: true},
		{name: "digits", email: "user2026@test.fr", want: true},
		{name: "uppercase rejected", email: "Awe@test.cd", want: false},
		{name: "two separators rejected", email: "jean.du_pont@univ.fr", want: false},
		{name: "long tld rejected", email: "awe@test.paris", want: false},
		{name: "one letter tld rejected", email: "awe@test.c", want: false},
		{name: "missing domain", email: "awe@", want: false},
		{name: "empty", email: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidEmailAddress(tt.email); got != tt.want {
				t.Errorf("IsValidEmailAddress(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestGetDate(t *testing.T) {
	d, ok := GetDate("25/12/2026")
	if !ok {
		t.Fatal("GetDate() failed on a valid date")
	}
	want := time.Date(2026, time.December, 25, 0, 0, 0, 0, time.UTC)
	if !d.Equal(want) {
		t.Errorf("GetDate() = %v, want %v", d, want)
	}
	if _, ok := GetDate("lol"); ok {
		t.Error("GetDate() parsed garbage")
	}
}
