// Package schedule holds the pure watering-schedule arithmetic: due-date
// computation, urgency classification, snooze offsets, and the bounded
// watering history.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"studioplantes/pkg/domain"
)

const (
	// SnoozeStep is the fixed number of days added per snooze.
	SnoozeStep = 3
	// HistoryLimit caps the stored watering history.
	HistoryLimit = 3

	dayMillis = 24 * 60 * 60 * 1000
)

// NextDue returns the calendar day on which watering becomes due, truncated
// to local midnight.
func NextDue(lastWateredAt time.Time, frequencyDays, snoozeDays int) time.Time {
	return dateOnly(lastWateredAt).AddDate(0, 0, frequencyDays+snoozeDays)
}

// Status derives the watering status for a plant at the given instant.
// It is deterministic given its inputs and has no side effects.
func Status(lastWateredAt time.Time, frequencyDays, snoozeDays int, now time.Time) domain.DueStatus {
	nextDue := NextDue(lastWateredAt, frequencyDays, snoozeDays)
	diff := daysBetween(dateOnly(now), nextDue)

	status := domain.DueStatus{Days: diff, NextDue: nextDue}
	switch {
	case diff < 0:
		status.State = domain.DueLate
		status.Urgent = true
		status.Text = fmt.Sprintf("Late by %s", pluralDays(-diff))
	case diff == 0:
		status.State = domain.DueToday
		status.Urgent = true
		status.Text = "Water today"
	default:
		status.State = domain.DueOK
		status.Text = fmt.Sprintf("In %s", pluralDays(diff))
	}
	return status
}

// RecordWatering prepends ts to the history and truncates it to HistoryLimit.
// The head of the returned slice is always ts.
func RecordWatering(history []time.Time, ts time.Time) []time.Time {
	updated := make([]time.Time, 0, HistoryLimit)
	updated = append(updated, ts)
	for _, prev := range history {
		if len(updated) == HistoryLimit {
			break
		}
		updated = append(updated, prev)
	}
	return updated
}

// Snooze returns the snooze offset after one more deferral.
func Snooze(snoozeDays int) int {
	return snoozeDays + SnoozeStep
}

// SortByNextDue orders plants ascending by their next due date, soonest
// first, so plants needing attention lead the collection view.
func SortByNextDue(plants []domain.Plant) {
	sort.SliceStable(plants, func(i, j int) bool {
		a := NextDue(plants[i].LastWateredAt, plants[i].WateringFrequencyDays, plants[i].SnoozeDays)
		b := NextDue(plants[j].LastWateredAt, plants[j].WateringFrequencyDays, plants[j].SnoozeDays)
		return a.Before(b)
	})
}

func dateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b. Both arguments are already
// midnight-truncated; ceiling division absorbs DST-shortened days.
func daysBetween(a, b time.Time) int {
	millis := b.Sub(a).Milliseconds()
	if millis >= 0 {
		return int((millis + dayMillis - 1) / dayMillis)
	}
	return -int((-millis) / dayMillis)
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
