package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	UserTypeFree    = "free"
	UserTypePremium = "premium"
)

type User struct {
	ID              uuid.UUID  `json:"user_id" db:"user_id"`
	Name            string     `json:"user_name" db:"user_name"`
	Surname         string     `json:"user_surname" db:"user_surname"`
	Email           string     `json:"user_email" db:"user_email"`
	PasswordHash    string     `json:"-" db:"password_hash"`
	UserType        string     `json:"user_type" db:"user_type"`
	UploadsLeft     int        `json:"uploads_left" db:"uploads_left"`
	GenerationsLeft int        `json:"generations_left" db:"generations_left"`
	RecentsLeft     int        `json:"recents_left" db:"recents_left"`
	LastPaymentAt   *time.Time `json:"last_payment_at,omitempty" db:"last_payment_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// NextRenewalDate returns the date of the next subscription charge, or nil for
// free accounts and premium accounts that have never been charged. The renewal
// falls exactly one calendar month after the last payment, with the day clamped
// to the last valid day of the target month (Jan 31 renews on Feb 28, or Feb 29
// in a leap year). A fixed 30/31-day offset would drift across month ends, so
// the month is incremented explicitly.
func (u *User) NextRenewalDate() *time.Time {
	if u.UserType != UserTypePremium || u.LastPaymentAt == nil {
		return nil
	}

	year, month, day := u.LastPaymentAt.Date()
	month++
	if month > time.December {
		month = time.January
		year++
	}

	if last := daysInMonth(year, month); day > last {
		day = last
	}

	next := time.Date(year, month, day, 0, 0, 0, 0, u.LastPaymentAt.Location())
	return &next
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
