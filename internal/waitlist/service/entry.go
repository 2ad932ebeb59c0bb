package service

import (
	"context"
	"errors"
	"fmt"

	apptservice "staffbook/internal/appointments/service"
	"staffbook/internal/directory"
	"staffbook/internal/events"
	"staffbook/internal/scheduling/ranking"
	entryerrors "staffbook/internal/waitlist/errors"
	"staffbook/internal/waitlist/repository"
	"staffbook/internal/waitlist/validator"
	"staffbook/pkg/config"
	apperrors "staffbook/pkg/errors"
	"staffbook/pkg/metrics"
	"staffbook/pkg/model"
	"staffbook/pkg/sanitizer"
	"staffbook/pkg/validation"
)

// Booker creates a single appointment.
type Booker interface {
	Book(ctx context.Context, a *model.Appointment, opts apptservice.BookOptions) error
}

type WaitlistService interface {
	Create(ctx context.Context, e *model.WaitlistEntry, actor string) error
	GetByID(ctx context.Context, id string) (*model.WaitlistEntry, error)
	Cancel(ctx context.Context, id, actor string) (*model.WaitlistEntry, error)
	Match(ctx context.Context, slot *model.FreedSlot, actor string) (*model.MatchResult, error)
	Convert(ctx context.Context, id string, slot *model.ConcreteSlot, actor string) (*model.Appointment, error)
}

type waitlistService struct {
	repo      repository.EntryRepository
	booker    Booker
	validator *validator.EntryValidator
	directory directory.Directory
	publisher events.Publisher
	cfg       *config.Config
}

func NewWaitlistService(
	repo repository.EntryRepository,
	booker Booker,
	validator *validator.EntryValidator,
	dir directory.Directory,
	publisher events.Publisher,
	cfg *config.Config,
) WaitlistService {
	return &waitlistService{
		repo:      repo,
		booker:    booker,
		validator: validator,
		directory: dir,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *waitlistService) Create(ctx context.Context, e *model.WaitlistEntry, actor string) error {
	e.ClientID = sanitizer.NormalizeID(e.ClientID)
	e.ServiceID = sanitizer.NormalizeID(e.ServiceID)
	e.PreferredStaffID = sanitizer.NormalizeID(e.PreferredStaffID)
	e.Notes = sanitizer.NormalizeText(e.Notes)
	e.Status = model.WaitlistActive
	e.ConvertedToAppointmentID = ""
	e.NotifiedAt = nil
	e.CreatedBy = actor

	if err := s.validator.Validate(e); err != nil {
		s.cfg.Log.Warn("Waitlist entry validation failed",
			"client_id", e.ClientID,
			"service_id", e.ServiceID,
			"error", err,
		)
		return validation.AsAppError("Waitlist entry validation failed", err)
	}

	if err := directory.RequireClient(ctx, s.directory, e.ClientID); err != nil {
		return err
	}
	if err := directory.RequireStaff(ctx, s.directory, e.PreferredStaffID); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, e); err != nil {
		s.cfg.Log.Error("Failed to create waitlist entry", "client_id", e.ClientID, "error", err)
		return apperrors.Internal("Failed to create waitlist entry", err)
	}

	metrics.IncWaitlist(string(model.WaitlistActive))
	s.cfg.Log.Info("Waitlist entry created",
		"entry_id", e.ID,
		"client_id", e.ClientID,
		"service_id", e.ServiceID,
		"priority", e.Priority,
		"actor", actor,
	)
	return nil
}

func (s *waitlistService) GetByID(ctx context.Context, id string) (*model.WaitlistEntry, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Waitlist entry ID cannot be empty")
	}

	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entryerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Waitlist entry", id)
		}
		if errors.Is(err, entryerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid waitlist entry ID format")
		}
		s.cfg.Log.Error("Failed to get waitlist entry by ID", "entry_id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve waitlist entry", err)
	}
	return e, nil
}

func (s *waitlistService) Cancel(ctx context.Context, id, actor string) (*model.WaitlistEntry, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.Convertible() {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot cancel a waitlist entry that is %s", e.Status))
	}

	if err := s.repo.Cancel(ctx, id, e.Status); err != nil {
		if errors.Is(err, entryerrors.ErrStaleStatus) {
			return nil, apperrors.Conflict("Waitlist entry was modified concurrently, please retry")
		}
		s.cfg.Log.Error("Failed to cancel waitlist entry", "entry_id", id, "error", err)
		return nil, apperrors.Internal("Failed to cancel waitlist entry", err)
	}

	e.Status = model.WaitlistCancelled
	metrics.IncWaitlist(string(model.WaitlistCancelled))
	s.cfg.Log.Info("Waitlist entry cancelled", "entry_id", id, "actor", actor)
	return e, nil
}

// Match flags every active entry that accepts slot as notified, best
// candidate first. An entry that cannot be flagged is reported in Failed and
// does not stop the others.
func (s *waitlistService) Match(ctx context.Context, slot *model.FreedSlot, actor string) (*model.MatchResult, error) {
	slot.ServiceID = sanitizer.NormalizeID(slot.ServiceID)
	slot.StaffID = sanitizer.NormalizeID(slot.StaffID)
	if err := s.validator.ValidateFreedSlot(slot); err != nil {
		return nil, validation.AsAppError("Freed slot validation failed", err)
	}

	entries, err := s.repo.FindActiveByService(ctx, slot.ServiceID)
	if err != nil {
		s.cfg.Log.Error("Failed to load waitlist entries", "service_id", slot.ServiceID, "error", err)
		return nil, apperrors.Internal("Failed to load waitlist entries", err)
	}

	result := &model.MatchResult{Notified: []*model.WaitlistEntry{}}
	for _, e := range ranking.Rank(entries, *slot) {
		at, err := s.repo.MarkNotified(ctx, e.ID)
		if err != nil {
			msg := "failed to mark entry notified"
			if errors.Is(err, entryerrors.ErrStaleStatus) {
				msg = "entry is no longer active"
			}
			s.cfg.Log.Warn("Waitlist entry not notified", "entry_id", e.ID, "error", err)
			result.Failed = append(result.Failed, model.MatchFailure{EntryID: e.ID, Error: msg})
			continue
		}

		e.Status = model.WaitlistNotified
		e.NotifiedAt = &at
		result.Notified = append(result.Notified, e)
		metrics.IncWaitlist(string(model.WaitlistNotified))

		s.publish(ctx, events.WaitlistNotified, events.WaitlistEvent{Entry: e, Slot: slot, Actor: actor})
	}

	s.cfg.Log.Info("Waitlist matched",
		"service_id", slot.ServiceID,
		"staff_id", slot.StaffID,
		"date", slot.Date,
		"start_time", slot.StartTime,
		"notified", len(result.Notified),
		"failed", len(result.Failed),
	)
	return result, nil
}

// Convert books slot for the entry's client. The entry becomes converted in
// the same transaction as the booking; a conflict leaves it untouched.
func (s *waitlistService) Convert(ctx context.Context, id string, slot *model.ConcreteSlot, actor string) (*model.Appointment, error) {
	slot.StaffID = sanitizer.NormalizeID(slot.StaffID)
	if err := s.validator.ValidateConcreteSlot(slot); err != nil {
		return nil, validation.AsAppError("Slot validation failed", err)
	}

	e, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.Convertible() {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot convert a waitlist entry that is %s", e.Status))
	}

	staffID := slot.StaffID
	if staffID == "" {
		staffID = e.PreferredStaffID
	}
	a := &model.Appointment{
		ClientID:  e.ClientID,
		ServiceID: e.ServiceID,
		StaffID:   staffID,
		Date:      slot.Date,
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		Status:    model.StatusPending,
		Notes:     e.Notes,
	}

	err = s.booker.Book(ctx, a, apptservice.BookOptions{
		Actor:  actor,
		Origin: apptservice.OriginWaitlist,
		InTx: func(txCtx context.Context, a *model.Appointment) error {
			if err := s.repo.MarkConverted(txCtx, e.ID, e.Status, a.ID); err != nil {
				if errors.Is(err, entryerrors.ErrStaleStatus) {
					return apperrors.Conflict("Waitlist entry was modified concurrently, please retry")
				}
				return apperrors.Internal("Failed to convert waitlist entry", err)
			}
			return nil
		},
	})
	if err != nil {
		s.cfg.Log.Warn("Waitlist conversion failed", "entry_id", e.ID, "date", slot.Date, "error", err)
		return nil, err
	}

	e.Status = model.WaitlistConverted
	e.ConvertedToAppointmentID = a.ID
	metrics.IncWaitlist(string(model.WaitlistConverted))
	s.cfg.Log.Info("Waitlist entry converted",
		"entry_id", e.ID,
		"appointment_id", a.ID,
		"staff_id", a.StaffID,
		"date", a.Date,
		"actor", actor,
	)

	s.publish(ctx, events.WaitlistConverted, events.WaitlistEvent{
		Entry: e,
		Slot: &model.FreedSlot{
			ServiceID: a.ServiceID,
			StaffID:   a.StaffID,
			Date:      a.Date,
			StartTime: a.StartTime,
			EndTime:   a.EndTime,
		},
		Actor: actor,
	})
	return a, nil
}

func (s *waitlistService) publish(ctx context.Context, eventType string, e events.WaitlistEvent) {
	if err := s.publisher.PublishWaitlist(context.WithoutCancel(ctx), eventType, e); err != nil {
		s.cfg.Log.Warn("Failed to publish waitlist event",
			"event_type", eventType,
			"entry_id", e.Entry.ID,
			"error", err,
		)
	}
}
