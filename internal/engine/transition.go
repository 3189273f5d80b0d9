package engine

import (
	"fmt"

	"github.com/shake819/remind-api/internal/model"
)

// Lead-time buckets, in the order they are checked. Each bucket fires at
// most once per event; a bucket whose day was missed (process downtime) is
// skipped permanently rather than back-filled.
var leadDays = []int{7, 3, 0}

func flagFor(ev *model.Event, lead int) *bool {
	switch lead {
	case 7:
		return &ev.Notified7
	case 3:
		return &ev.Notified3
	default:
		return &ev.Notified0
	}
}

// renderMessage builds the announcement text for one lead-time bucket.
func renderMessage(ev model.Event, lead int) string {
	switch lead {
	case 7:
		return fmt.Sprintf("📅 One week to go: %s (%s)", ev.Message, ev.Date)
	case 3:
		return fmt.Sprintf("📅 3 days to go: %s (%s)", ev.Message, ev.Date)
	default:
		return fmt.Sprintf("📅 Today: %s", ev.Message)
	}
}
