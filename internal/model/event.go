package model

import (
	"github.com/google/uuid"
)

// DateLayout is the calendar-day format used everywhere an event date crosses
// a boundary: the wire, the store document and the notification templates.
// Dates are plain calendar days; they carry no time-of-day and no zone.
const DateLayout = "2006-01-02"

// Event is a single dated reminder. The canonical copy lives in whichever
// store backend is configured; everything else works on copies obtained via
// a load.
type Event struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Date      string    `json:"date" db:"date"`
	Message   string    `json:"message" db:"message"`
	Notified7 bool      `json:"notified_7" db:"notified_7"`
	Notified3 bool      `json:"notified_3" db:"notified_3"`
	Notified0 bool      `json:"notified_0" db:"notified_0"`
}

// EventSet is the persisted collection. Ordering by date ascending is a
// storage convention kept up by the serializer; lookups are always by id.
type EventSet []Event

// FindByID returns the index of the event with the given id, or -1.
func (s EventSet) FindByID(id uuid.UUID) int {
	for i := range s {
		if s[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy the caller can mutate without aliasing the original
// backing array.
func (s EventSet) Clone() EventSet {
	if s == nil {
		return nil
	}
	out := make(EventSet, len(s))
	copy(out, s)
	return out
}

type CreateEventRequest struct {
	Date    string `json:"date" binding:"required,dateonly"`
	Message string `json:"message" binding:"required"`
}

type DeleteEventRequest struct {
	// ID takes precedence when both are supplied. Index is the 1-based
	// position in the date-sorted listing, kept for parity with the chat
	// command UX.
	ID    string `json:"id"`
	Index int    `json:"index"`
}
