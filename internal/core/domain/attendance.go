package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is a meeting during which members are marked present or absent.
// SessionDate is a calendar date; the time component is always midnight UTC.
type Session struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	SessionDate time.Time  `json:"session_date"`
	Active      bool       `json:"active"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
}

type AttendanceRecord struct {
	UserID    uuid.UUID `json:"user_id"`
	SessionID uuid.UUID `json:"session_id"`
	Present   bool      `json:"present"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CalendarDate truncates t to its date in loc, expressed as midnight UTC so it
// compares equal to DATE columns scanned back from the database.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
