// Package slots proposes bookable intervals on a fixed grid over an
// availability window.
package slots

import (
	"fmt"

	"staffbook/pkg/clock"
	"staffbook/pkg/model"
)

// Validate checks slot parameters.
func Validate(duration, buffer int) error {
	if duration <= 0 {
		return fmt.Errorf("duration must be positive, got %d", duration)
	}
	if duration > clock.MinutesPerDay {
		return fmt.Errorf("duration must not exceed %d minutes", clock.MinutesPerDay)
	}
	if buffer < 0 {
		return fmt.Errorf("buffer must not be negative, got %d", buffer)
	}
	if buffer > clock.MinutesPerDay-duration {
		return fmt.Errorf("duration plus buffer must not exceed %d minutes", clock.MinutesPerDay)
	}
	return nil
}

// Generate walks the open interval in steps of duration+buffer starting at
// its opening time. A slot is proposed only while the whole step fits, and a
// rejected slot still advances the cursor. busy holds the intervals of active
// appointments. The result is never nil.
func Generate(window model.AvailabilityWindow, busy []clock.Interval, duration, buffer int) []model.Slot {
	slots := []model.Slot{}
	if window.Closed || Validate(duration, buffer) != nil {
		return slots
	}

	step := duration + buffer
	for cursor := window.Open.Start; cursor+step <= window.Open.End; cursor += step {
		candidate := clock.Interval{Start: cursor, End: cursor + duration}
		if window.Break != nil && candidate.Overlaps(*window.Break) {
			continue
		}
		if overlapsAny(candidate, busy) {
			continue
		}
		slots = append(slots, model.Slot{
			Start: candidate.StartString(),
			End:   candidate.EndString(),
		})
	}
	return slots
}

// Busy returns the intervals held by active appointments.
func Busy(appointments []*model.Appointment) []clock.Interval {
	busy := make([]clock.Interval, 0, len(appointments))
	for _, a := range appointments {
		if a == nil || !a.Status.IsActive() {
			continue
		}
		iv, err := a.Interval()
		if err != nil {
			continue
		}
		busy = append(busy, iv)
	}
	return busy
}

func overlapsAny(candidate clock.Interval, busy []clock.Interval) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}
