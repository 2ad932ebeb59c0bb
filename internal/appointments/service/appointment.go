package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	appterrors "staffbook/internal/appointments/errors"
	"staffbook/internal/appointments/repository"
	"staffbook/internal/appointments/validator"
	"staffbook/internal/directory"
	"staffbook/internal/events"
	"staffbook/internal/scheduling"
	"staffbook/pkg/config"
	apperrors "staffbook/pkg/errors"
	"staffbook/pkg/lock"
	"staffbook/pkg/metrics"
	"staffbook/pkg/model"
	"staffbook/pkg/sanitizer"
	"staffbook/pkg/validation"
)

const (
	OriginDirect    = "direct"
	OriginRecurring = "recurring"
	OriginWaitlist  = "waitlist"
)

// BookOptions tunes a single booking.
type BookOptions struct {
	Actor  string
	Origin string
	// Verified skips the directory lookups when the caller already did them.
	Verified bool
	// InTx runs inside the booking transaction after the insert. An error
	// rolls the booking back.
	InTx func(ctx context.Context, a *model.Appointment) error
}

// SlotQuery describes the slots to generate. Duration may be zero when
// ServiceID names a service the directory knows; a nil Buffer uses the
// configured default.
type SlotQuery struct {
	Duration  int
	Buffer    *int
	ServiceID string
}

type AppointmentService interface {
	ResolveAvailability(ctx context.Context, staffID, date string) (*model.AvailabilityWindow, error)
	CheckConflict(ctx context.Context, q *model.ConflictQuery) (*model.ConflictResult, error)
	GenerateSlots(ctx context.Context, staffID, date string, q SlotQuery) ([]model.Slot, error)

	Book(ctx context.Context, a *model.Appointment, opts BookOptions) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	List(ctx context.Context, f repository.Filter, limit int, offset int64) ([]*model.Appointment, int64, error)
	UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus, actor string) (*model.Appointment, error)
	Reschedule(ctx context.Context, id string, req *model.AppointmentReschedule, actor string) (*model.Appointment, error)
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	engine    *scheduling.Engine
	locker    lock.Locker
	validator *validator.AppointmentValidator
	directory directory.Directory
	publisher events.Publisher
	cfg       *config.Config
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	engine *scheduling.Engine,
	locker lock.Locker,
	validator *validator.AppointmentValidator,
	dir directory.Directory,
	publisher events.Publisher,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:      repo,
		engine:    engine,
		locker:    locker,
		validator: validator,
		directory: dir,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *appointmentService) ResolveAvailability(ctx context.Context, staffID, date string) (*model.AvailabilityWindow, error) {
	staffID = sanitizer.NormalizeID(staffID)
	if err := directory.RequireStaff(ctx, s.directory, staffID); err != nil {
		return nil, err
	}
	return s.engine.ResolveAvailability(ctx, staffID, date)
}

// CheckConflict reports conflicts in the result; only bad input and store
// failures are returned as errors.
func (s *appointmentService) CheckConflict(ctx context.Context, q *model.ConflictQuery) (*model.ConflictResult, error) {
	q.StaffID = sanitizer.NormalizeID(q.StaffID)
	q.ClientID = sanitizer.NormalizeID(q.ClientID)

	if err := s.validator.ValidateQuery(q); err != nil {
		return nil, validation.AsAppError("Conflict query validation failed", err)
	}
	if err := directory.RequireStaff(ctx, s.directory, q.StaffID); err != nil {
		return nil, err
	}

	result, err := s.engine.CheckConflict(ctx, *q)
	if result == nil {
		return nil, err
	}
	recordConflict(result)
	return result, nil
}

func (s *appointmentService) GenerateSlots(ctx context.Context, staffID, date string, q SlotQuery) ([]model.Slot, error) {
	staffID = sanitizer.NormalizeID(staffID)
	if err := directory.RequireStaff(ctx, s.directory, staffID); err != nil {
		return nil, err
	}

	duration := q.Duration
	if duration == 0 && q.ServiceID != "" {
		d, err := s.directory.ServiceDuration(ctx, sanitizer.NormalizeID(q.ServiceID))
		switch {
		case errors.Is(err, directory.ErrDurationUnknown):
			return nil, apperrors.Validation("duration is required for this service", map[string]any{"service_id": q.ServiceID})
		case err != nil:
			return nil, apperrors.Wrap(err, apperrors.CodeUnavailable, "Directory is temporarily unavailable", 503)
		}
		duration = d
	}

	buffer := s.cfg.DefaultBufferMin
	if q.Buffer != nil {
		buffer = *q.Buffer
	}

	return s.engine.GenerateSlots(ctx, staffID, date, duration, buffer)
}

// Book creates a under the staff+date lock. The conflict check and the
// insert share one transaction; the unique index on active bookings catches
// anything the lock missed.
func (s *appointmentService) Book(ctx context.Context, a *model.Appointment, opts BookOptions) error {
	s.prepare(a, opts.Actor)

	if err := s.validator.Validate(a); err != nil {
		s.cfg.Log.Warn("Appointment validation failed",
			"client_id", a.ClientID,
			"staff_id", a.StaffID,
			"date", a.Date,
			"error", err,
		)
		return validation.AsAppError("Appointment validation failed", err)
	}

	if !opts.Verified {
		if err := directory.RequireClient(ctx, s.directory, a.ClientID); err != nil {
			return err
		}
		if err := directory.RequireStaff(ctx, s.directory, a.StaffID); err != nil {
			return err
		}
	}

	var checked *model.ConflictResult
	err := lock.Do(ctx, s.locker, lock.SlotKey(a.StaffID, a.ClientID, a.Date), func(ctx context.Context) error {
		return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			// the transaction body may be retried
			a.ID = ""

			// staff-less recurring instances are created without a check
			if opts.Origin != OriginRecurring || a.StaffID != "" {
				result, err := s.engine.CheckConflict(sessCtx, model.ConflictQuery{
					StaffID:   a.StaffID,
					ClientID:  a.ClientID,
					Date:      a.Date,
					StartTime: a.StartTime,
					EndTime:   a.EndTime,
				})
				checked = result
				if err != nil {
					return err
				}
			}

			if err := s.repo.Create(sessCtx, a); err != nil {
				if errors.Is(err, appterrors.ErrDuplicate) {
					return apperrors.BookingConflict("Appointment overlaps an existing booking", []*model.Appointment{})
				}
				return apperrors.Internal("Failed to create appointment", err)
			}

			if opts.InTx != nil {
				return opts.InTx(sessCtx, a)
			}
			return nil
		})
	})
	if err != nil {
		if checked != nil {
			recordConflict(checked)
		}
		s.cfg.Log.Warn("Failed to book appointment",
			"client_id", a.ClientID,
			"staff_id", a.StaffID,
			"date", a.Date,
			"start_time", a.StartTime,
			"end_time", a.EndTime,
			"origin", opts.Origin,
			"error", err,
		)
		return err
	}

	origin := opts.Origin
	if origin == "" {
		origin = OriginDirect
	}
	metrics.IncAppointmentCreated(origin)
	s.cfg.Log.Info("Appointment booked",
		"appointment_id", a.ID,
		"client_id", a.ClientID,
		"staff_id", a.StaffID,
		"date", a.Date,
		"start_time", a.StartTime,
		"origin", origin,
		"actor", opts.Actor,
	)

	s.publish(ctx, events.AppointmentCreated, events.AppointmentEvent{Appointment: a, Actor: opts.Actor})
	return nil
}

func (s *appointmentService) prepare(a *model.Appointment, actor string) {
	a.ClientID = sanitizer.NormalizeID(a.ClientID)
	a.ServiceID = sanitizer.NormalizeID(a.ServiceID)
	a.StaffID = sanitizer.NormalizeID(a.StaffID)
	a.Notes = sanitizer.NormalizeText(a.Notes)
	if a.Status == "" {
		a.Status = model.StatusPending
	}
	a.IsRecurringInstance = a.RecurringID != ""
	a.CreatedBy = actor
	a.UpdatedBy = actor
	a.SyncActive()
}

func (s *appointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", id)
		}
		if errors.Is(err, appterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid appointment ID format")
		}
		s.cfg.Log.Error("Failed to get appointment by ID", "appointment_id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve appointment", err)
	}
	return a, nil
}

func (s *appointmentService) List(ctx context.Context, f repository.Filter, limit int, offset int64) ([]*model.Appointment, int64, error) {
	f.StaffID = sanitizer.NormalizeID(f.StaffID)
	f.ClientID = sanitizer.NormalizeID(f.ClientID)
	if f.StaffID == "" && f.ClientID == "" {
		return nil, 0, apperrors.InvalidInput("staff_id or client_id is required")
	}

	var count int64
	var appointments []*model.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, f)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count appointments", "error", errCount)
			errCount = apperrors.Internal("Failed to count appointments", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		appointments, errFind = s.repo.List(ctx, f, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list appointments", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve appointments", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return appointments, count, nil
}

func (s *appointmentService) UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus, actor string) (*model.Appointment, error) {
	if status == model.StatusRescheduled {
		return nil, apperrors.InvalidInput("Use the reschedule endpoint to move an appointment")
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := current.Status

	if !previous.CanTransitionTo(status) {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot move appointment from %s to %s", previous, status))
	}

	if err := s.repo.UpdateStatus(ctx, id, previous, status, actor); err != nil {
		if errors.Is(err, appterrors.ErrStaleStatus) {
			return nil, apperrors.Conflict("Appointment was modified concurrently, please retry")
		}
		s.cfg.Log.Error("Failed to update appointment status",
			"appointment_id", id,
			"status", status,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to update appointment", err)
	}

	current.Status = status
	current.UpdatedBy = actor
	current.SyncActive()
	metrics.IncAppointmentTransition(string(status))

	s.cfg.Log.Info("Appointment status updated",
		"appointment_id", id,
		"staff_id", current.StaffID,
		"from", previous,
		"to", status,
		"actor", actor,
	)

	event := events.AppointmentEvent{Appointment: current, PreviousStatus: previous, Actor: actor}
	s.publish(ctx, events.AppointmentStatusChanged, event)
	if status.FreesSlot() {
		event.FreedSlot = FreedSlot(current)
		s.publish(ctx, events.AppointmentCancelled, event)
	}
	return current, nil
}

// Reschedule moves an appointment to a new interval. The conflict check
// ignores the appointment itself so it can shift within its own slot.
func (s *appointmentService) Reschedule(ctx context.Context, id string, req *model.AppointmentReschedule, actor string) (*model.Appointment, error) {
	if err := s.validator.ValidateReschedule(req); err != nil {
		return nil, validation.AsAppError("Reschedule validation failed", err)
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := current.Status
	if !previous.CanTransitionTo(model.StatusRescheduled) {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot reschedule an appointment that is %s", previous))
	}
	freed := FreedSlot(current)

	moved := *current
	if req.StaffID != nil {
		moved.StaffID = sanitizer.NormalizeID(*req.StaffID)
		if err := directory.RequireStaff(ctx, s.directory, moved.StaffID); err != nil {
			return nil, err
		}
	}
	moved.Date = req.Date
	moved.StartTime = req.StartTime
	moved.EndTime = req.EndTime
	moved.Status = model.StatusRescheduled
	moved.UpdatedBy = actor
	moved.SyncActive()

	var checked *model.ConflictResult
	err = lock.Do(ctx, s.locker, lock.SlotKey(moved.StaffID, moved.ClientID, moved.Date), func(ctx context.Context) error {
		return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			result, err := s.engine.CheckConflict(sessCtx, model.ConflictQuery{
				StaffID:              moved.StaffID,
				ClientID:             moved.ClientID,
				Date:                 moved.Date,
				StartTime:            moved.StartTime,
				EndTime:              moved.EndTime,
				ExcludeAppointmentID: id,
			})
			checked = result
			if err != nil {
				return err
			}

			if err := s.repo.Reschedule(sessCtx, id, previous, &moved); err != nil {
				switch {
				case errors.Is(err, appterrors.ErrDuplicate):
					return apperrors.BookingConflict("Appointment overlaps an existing booking", []*model.Appointment{})
				case errors.Is(err, appterrors.ErrStaleStatus):
					return apperrors.Conflict("Appointment was modified concurrently, please retry")
				}
				return apperrors.Internal("Failed to reschedule appointment", err)
			}
			return nil
		})
	})
	if err != nil {
		if checked != nil {
			recordConflict(checked)
		}
		s.cfg.Log.Warn("Failed to reschedule appointment",
			"appointment_id", id,
			"staff_id", moved.StaffID,
			"date", moved.Date,
			"error", err,
		)
		return nil, err
	}

	metrics.IncAppointmentTransition(string(model.StatusRescheduled))
	s.cfg.Log.Info("Appointment rescheduled",
		"appointment_id", id,
		"staff_id", moved.StaffID,
		"from_date", current.Date,
		"to_date", moved.Date,
		"start_time", moved.StartTime,
		"actor", actor,
	)

	s.publish(ctx, events.AppointmentRescheduled, events.AppointmentEvent{
		Appointment:    &moved,
		PreviousStatus: previous,
		FreedSlot:      freed,
		Actor:          actor,
	})
	return &moved, nil
}

func (s *appointmentService) publish(ctx context.Context, eventType string, e events.AppointmentEvent) {
	if err := s.publisher.PublishAppointment(context.WithoutCancel(ctx), eventType, e); err != nil {
		s.cfg.Log.Warn("Failed to publish appointment event",
			"event_type", eventType,
			"appointment_id", e.Appointment.ID,
			"error", err,
		)
	}
}

// FreedSlot describes the interval a leaves behind.
func FreedSlot(a *model.Appointment) *model.FreedSlot {
	return &model.FreedSlot{
		ServiceID: a.ServiceID,
		StaffID:   a.StaffID,
		Date:      a.Date,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
	}
}

func recordConflict(result *model.ConflictResult) {
	if !result.Conflict {
		return
	}
	for _, reason := range result.Reasons {
		metrics.IncConflict(string(result.Kind), reason.Code)
	}
}
