// Package conflict decides whether a candidate interval can be booked against
// an availability window and the existing appointments of the day.
package conflict

import (
	"fmt"

	"staffbook/pkg/clock"
	apperrors "staffbook/pkg/errors"
	"staffbook/pkg/model"
)

// BusinessHours returns the outer bounds for a weekday: the weekly row's open
// interval when an available row exists, otherwise fallback.
func BusinessHours(weekly *model.WeeklySchedule, fallback clock.Interval) clock.Interval {
	if weekly == nil || !weekly.Available {
		return fallback
	}
	open, err := weekly.OpenInterval()
	if err != nil {
		return fallback
	}
	return open
}

// CheckBusinessHours returns an availability conflict when candidate leaves bounds.
func CheckBusinessHours(candidate, bounds clock.Interval) model.ConflictResult {
	if bounds.Contains(candidate) {
		return model.ConflictResult{Kind: model.ConflictNone}
	}
	return model.ConflictResult{
		Conflict: true,
		Kind:     model.ConflictAvailability,
		Reasons: []model.ConflictReason{{
			Code:    model.ReasonOutsideBusinessHours,
			Message: fmt.Sprintf("outside business hours %s", bounds),
			Start:   bounds.StartString(),
			End:     bounds.EndString(),
		}},
	}
}

// Check evaluates candidate against window and appointments and collects
// every reason it cannot be booked. Inactive appointments and the one
// matching excludeID are ignored.
func Check(candidate clock.Interval, window model.AvailabilityWindow, appointments []*model.Appointment, excludeID string) model.ConflictResult {
	var reasons []model.ConflictReason

	switch {
	case window.Closed:
		reasons = append(reasons, model.ConflictReason{
			Code:    window.ReasonCode,
			Message: window.Reason,
		})
	case !window.Open.Contains(candidate):
		reasons = append(reasons, model.ConflictReason{
			Code:    model.ReasonOutsideWorkingHours,
			Message: fmt.Sprintf("outside working hours %s", window.Open),
			Start:   window.Open.StartString(),
			End:     window.Open.EndString(),
		})
	}

	if !window.Closed && window.Break != nil && candidate.Overlaps(*window.Break) {
		reasons = append(reasons, model.ConflictReason{
			Code:    model.ReasonBreakTime,
			Message: fmt.Sprintf("overlaps break %s", window.Break),
			Start:   window.Break.StartString(),
			End:     window.Break.EndString(),
		})
	}
	availabilityReasons := len(reasons)

	overlapping := Overlapping(candidate, appointments, excludeID)
	for _, a := range overlapping {
		reasons = append(reasons, model.ConflictReason{
			Code:    model.ReasonAppointmentOverlap,
			Message: fmt.Sprintf("overlaps appointment %s", a.ID),
			Start:   a.StartTime,
			End:     a.EndTime,
		})
	}

	result := model.ConflictResult{
		Kind:         model.ConflictNone,
		Reasons:      reasons,
		Appointments: overlapping,
	}
	switch {
	case availabilityReasons > 0:
		result.Conflict = true
		result.Kind = model.ConflictAvailability
	case len(overlapping) > 0:
		result.Conflict = true
		result.Kind = model.ConflictBooking
	}
	return result
}

// Overlapping returns the active appointments whose interval overlaps candidate.
func Overlapping(candidate clock.Interval, appointments []*model.Appointment, excludeID string) []*model.Appointment {
	var out []*model.Appointment
	for _, a := range appointments {
		if a == nil || !a.Status.IsActive() {
			continue
		}
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		iv, err := a.Interval()
		if err != nil {
			continue
		}
		if candidate.Overlaps(iv) {
			out = append(out, a)
		}
	}
	return out
}

// CheckDuplicate is the staff-less policy: only an active appointment of the
// same client with the identical interval conflicts.
func CheckDuplicate(candidate clock.Interval, appointments []*model.Appointment, excludeID string) model.ConflictResult {
	var dups []*model.Appointment
	for _, a := range appointments {
		if a == nil || !a.Status.IsActive() || (excludeID != "" && a.ID == excludeID) {
			continue
		}
		iv, err := a.Interval()
		if err != nil {
			continue
		}
		if iv == candidate {
			dups = append(dups, a)
		}
	}
	if len(dups) == 0 {
		return model.ConflictResult{Kind: model.ConflictNone}
	}

	return model.ConflictResult{
		Conflict: true,
		Kind:     model.ConflictBooking,
		Reasons: []model.ConflictReason{{
			Code:    model.ReasonDuplicateAppointment,
			Message: "client already holds an appointment at this time",
			Start:   candidate.StartString(),
			End:     candidate.EndString(),
		}},
		Appointments: dups,
	}
}

// AsError converts a conflicting result into the matching AppError. It
// returns nil when there is no conflict.
func AsError(result model.ConflictResult) error {
	if !result.Conflict {
		return nil
	}

	if result.Kind == model.ConflictAvailability {
		first := result.Reasons[0]
		details := map[string]any{"reasons": result.Reasons}
		if len(result.Appointments) > 0 {
			details["conflicts"] = result.Appointments
		}
		return apperrors.AvailabilityConflict(first.Message, first.Code, details)
	}

	return apperrors.BookingConflict(
		fmt.Sprintf("interval overlaps %d existing appointment(s)", len(result.Appointments)),
		result.Appointments,
	)
}
