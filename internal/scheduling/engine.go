// Package scheduling answers availability, conflict and slot queries for a
// staff member on a date.
package scheduling

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"staffbook/internal/scheduling/availability"
	"staffbook/internal/scheduling/conflict"
	"staffbook/internal/scheduling/slots"
	"staffbook/pkg/clock"
	"staffbook/pkg/config"
	apperrors "staffbook/pkg/errors"
	"staffbook/pkg/model"
)

// ScheduleReader loads the schedule layers. Absent rows are (nil, nil).
type ScheduleReader interface {
	FindWeekly(ctx context.Context, staffID string, dayOfWeek int) (*model.WeeklySchedule, error)
	FindOverride(ctx context.Context, staffID, date string) (*model.AvailabilityOverride, error)
	FindApprovedTimeOff(ctx context.Context, staffID, date string) ([]*model.TimeOffRequest, error)
}

// AppointmentReader loads the active appointments of a day.
type AppointmentReader interface {
	FindActiveByStaffDate(ctx context.Context, staffID, date string) ([]*model.Appointment, error)
	FindActiveByClientDate(ctx context.Context, clientID, date string) ([]*model.Appointment, error)
}

type Engine struct {
	cfg          *config.Config
	schedules    ScheduleReader
	appointments AppointmentReader
}

func NewEngine(cfg *config.Config, schedules ScheduleReader, appointments AppointmentReader) *Engine {
	return &Engine{
		cfg:          cfg,
		schedules:    schedules,
		appointments: appointments,
	}
}

// ResolveAvailability returns the effective window of staffID on date. A day
// without any schedule is closed, not an error.
func (e *Engine) ResolveAvailability(ctx context.Context, staffID, date string) (*model.AvailabilityWindow, error) {
	day, err := parseDay(staffID, date)
	if err != nil {
		return nil, err
	}

	in, err := e.loadParallel(ctx, staffID, date, day)
	if err != nil {
		return nil, err
	}
	window := availability.Resolve(in)
	return &window, nil
}

// CheckConflict evaluates q and returns the result with the matching
// AppError when the interval cannot be booked. It reads sequentially so it
// is safe to call with a transaction session context.
func (e *Engine) CheckConflict(ctx context.Context, q model.ConflictQuery) (*model.ConflictResult, error) {
	candidate, err := clock.NewInterval(q.StartTime, q.EndTime)
	if err != nil {
		return nil, apperrors.Validation("Invalid interval", map[string]any{
			"start_time": q.StartTime,
			"end_time":   q.EndTime,
			"error":      err.Error(),
		})
	}
	d, err := clock.ParseDate(q.Date)
	if err != nil {
		return nil, apperrors.Validation("Invalid date", map[string]any{"date": q.Date})
	}

	if q.StaffID == "" {
		return e.checkStaffless(ctx, q, candidate)
	}

	in, err := e.loadSequential(ctx, q.StaffID, q.Date, d)
	if err != nil {
		return nil, err
	}

	bounds := conflict.BusinessHours(in.Weekly, e.cfg.BusinessHours())
	if result := conflict.CheckBusinessHours(candidate, bounds); result.Conflict {
		return &result, conflict.AsError(result)
	}

	window := availability.Resolve(in)

	appointments, err := e.appointments.FindActiveByStaffDate(ctx, q.StaffID, q.Date)
	if err != nil {
		return nil, apperrors.Internal("Failed to load appointments", err)
	}

	result := conflict.Check(candidate, window, appointments, q.ExcludeAppointmentID)
	return &result, conflict.AsError(result)
}

func (e *Engine) checkStaffless(ctx context.Context, q model.ConflictQuery, candidate clock.Interval) (*model.ConflictResult, error) {
	if q.ClientID == "" {
		result := model.ConflictResult{Kind: model.ConflictNone}
		return &result, nil
	}

	appointments, err := e.appointments.FindActiveByClientDate(ctx, q.ClientID, q.Date)
	if err != nil {
		return nil, apperrors.Internal("Failed to load client appointments", err)
	}

	result := conflict.CheckDuplicate(candidate, appointments, q.ExcludeAppointmentID)
	return &result, conflict.AsError(result)
}

// GenerateSlots proposes free slots of duration minutes separated by buffer
// minutes. A closed day yields an empty list.
func (e *Engine) GenerateSlots(ctx context.Context, staffID, date string, duration, buffer int) ([]model.Slot, error) {
	if err := slots.Validate(duration, buffer); err != nil {
		return nil, apperrors.Validation("Invalid slot parameters", map[string]any{
			"duration": duration,
			"buffer":   buffer,
			"error":    err.Error(),
		})
	}

	window, err := e.ResolveAvailability(ctx, staffID, date)
	if err != nil {
		return nil, err
	}
	if window.Closed {
		return []model.Slot{}, nil
	}

	appointments, err := e.appointments.FindActiveByStaffDate(ctx, staffID, date)
	if err != nil {
		return nil, apperrors.Internal("Failed to load appointments", err)
	}

	return slots.Generate(*window, slots.Busy(appointments), duration, buffer), nil
}

func parseDay(staffID, date string) (time.Time, error) {
	if staffID == "" {
		return time.Time{}, apperrors.Validation("staff_id is required", nil)
	}
	d, err := clock.ParseDate(date)
	if err != nil {
		return time.Time{}, apperrors.Validation("Invalid date", map[string]any{"date": date})
	}
	return d, nil
}

func (e *Engine) loadParallel(ctx context.Context, staffID, date string, d time.Time) (availability.Inputs, error) {
	in := availability.Inputs{StaffID: staffID, Date: date}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		in.Weekly, err = e.schedules.FindWeekly(gctx, staffID, int(d.Weekday()))
		return err
	})
	g.Go(func() error {
		var err error
		in.Override, err = e.schedules.FindOverride(gctx, staffID, date)
		return err
	})
	g.Go(func() error {
		var err error
		in.TimeOff, err = e.schedules.FindApprovedTimeOff(gctx, staffID, date)
		return err
	})

	if err := g.Wait(); err != nil {
		return in, apperrors.Internal("Failed to load schedule", err)
	}
	return in, nil
}

func (e *Engine) loadSequential(ctx context.Context, staffID, date string, d time.Time) (availability.Inputs, error) {
	in := availability.Inputs{StaffID: staffID, Date: date}

	var err error
	if in.Weekly, err = e.schedules.FindWeekly(ctx, staffID, int(d.Weekday())); err != nil {
		return in, apperrors.Internal("Failed to load weekly schedule", err)
	}
	if in.Override, err = e.schedules.FindOverride(ctx, staffID, date); err != nil {
		return in, apperrors.Internal("Failed to load override", err)
	}
	if in.TimeOff, err = e.schedules.FindApprovedTimeOff(ctx, staffID, date); err != nil {
		return in, apperrors.Internal("Failed to load time-off", err)
	}
	return in, nil
}
