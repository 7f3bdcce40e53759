package status

import (
	"time"

	"github.com/dukerupert/petcare/internal/model"
)

type GroomingDue string

const (
	GroomingNone    GroomingDue = "none"
	GroomingOK      GroomingDue = "ok"
	GroomingDueSoon GroomingDue = "due_soon"
	GroomingOverdue GroomingDue = "overdue"
)

const dueSoonDays = 7

// Grooming classifies the next grooming date relative to now.
func Grooming(next model.Date, now time.Time) GroomingDue {
	if next.IsZero() {
		return GroomingNone
	}
	days := DaysUntil(next, now)
	switch {
	case days < 0:
		return GroomingOverdue
	case days <= dueSoonDays:
		return GroomingDueSoon
	}
	return GroomingOK
}
