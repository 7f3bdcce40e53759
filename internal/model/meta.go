package model

import (
	"fmt"
	"time"
)

// DateLayout is the storage format for calendar dates.
const DateLayout = "2006-01-02"

// ClockLayout is the storage format for a time of day.
const ClockLayout = "15:04"

// Meta carries the identity and timestamps shared by every record.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Base returns the embedded Meta so generic collections can stamp records.
func (m *Meta) Base() *Meta { return m }

// Entity is implemented by every stored record.
type Entity interface {
	Base() *Meta
}

// PetScoped is implemented by records owned by a pet.
type PetScoped interface {
	Entity
	OwnerPetID() string
}

// Date is a calendar date without a time-of-day, stored as YYYY-MM-DD.
type Date string

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// In returns midnight of the date in loc.
func (d Date) In(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, string(d), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", string(d), err)
	}
	return t, nil
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d == "" }

// Clock is a time of day stored as HH:mm.
type Clock string

// HourMinute parses the clock value.
func (c Clock) HourMinute() (int, int, error) {
	t, err := time.Parse(ClockLayout, string(c))
	if err != nil {
		return 0, 0, fmt.Errorf("parse time %q: %w", string(c), err)
	}
	return t.Hour(), t.Minute(), nil
}

// Combine joins a date and a time of day into an instant in loc.
func Combine(d Date, c Clock, loc *time.Location) (time.Time, error) {
	day, err := d.In(loc)
	if err != nil {
		return time.Time{}, err
	}
	h, m, err := c.HourMinute()
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, loc), nil
}
