package service

import (
	"context"
	"errors"
	"strings"

	"staffbook/internal/directory"
	scheduleerrors "staffbook/internal/schedules/errors"
	"staffbook/internal/schedules/repository"
	"staffbook/internal/schedules/validator"
	"staffbook/pkg/clock"
	"staffbook/pkg/config"
	apperrors "staffbook/pkg/errors"
	"staffbook/pkg/model"
	"staffbook/pkg/sanitizer"
	"staffbook/pkg/validation"
)

type ScheduleService interface {
	SetWeekly(ctx context.Context, w *model.WeeklySchedule, actor string) error
	ListWeekly(ctx context.Context, staffID string) ([]*model.WeeklySchedule, error)
	SetOverride(ctx context.Context, o *model.AvailabilityOverride, actor string) error
	DeleteOverride(ctx context.Context, staffID, date string) error
	RequestTimeOff(ctx context.Context, t *model.TimeOffRequest, actor string) error
	ListTimeOff(ctx context.Context, staffID string) ([]*model.TimeOffRequest, error)
	UpdateTimeOffStatus(ctx context.Context, id string, status model.TimeOffStatus, actor string) (*model.TimeOffRequest, error)
}

type scheduleService struct {
	repo      repository.ScheduleRepository
	validator *validator.ScheduleValidator
	directory directory.Directory
	cfg       *config.Config
}

func NewScheduleService(
	repo repository.ScheduleRepository,
	validator *validator.ScheduleValidator,
	dir directory.Directory,
	cfg *config.Config,
) ScheduleService {
	return &scheduleService{
		repo:      repo,
		validator: validator,
		directory: dir,
		cfg:       cfg,
	}
}

func (s *scheduleService) SetWeekly(ctx context.Context, w *model.WeeklySchedule, actor string) error {
	w.StaffID = sanitizer.NormalizeID(w.StaffID)
	w.UpdatedBy = actor

	if err := s.validator.ValidateWeekly(w); err != nil {
		s.cfg.Log.Warn("Weekly schedule validation failed",
			"staff_id", w.StaffID,
			"day_of_week", w.DayOfWeek,
			"error", err,
		)
		return validation.AsAppError("Weekly schedule validation failed", err)
	}
	if err := directory.RequireStaff(ctx, s.directory, w.StaffID); err != nil {
		return err
	}

	if err := s.repo.UpsertWeekly(ctx, w); err != nil {
		s.cfg.Log.Error("Failed to save weekly schedule",
			"staff_id", w.StaffID,
			"day_of_week", w.DayOfWeek,
			"error", err,
		)
		if errors.Is(err, scheduleerrors.ErrDuplicate) {
			return apperrors.Conflict("Weekly schedule was modified concurrently, please retry")
		}
		return apperrors.Internal("Failed to save weekly schedule", err)
	}

	s.cfg.Log.Info("Weekly schedule saved",
		"staff_id", w.StaffID,
		"day_of_week", w.DayOfWeek,
		"available", w.Available,
		"actor", actor,
	)
	return nil
}

func (s *scheduleService) ListWeekly(ctx context.Context, staffID string) ([]*model.WeeklySchedule, error) {
	staffID = sanitizer.NormalizeID(staffID)
	if staffID == "" {
		return nil, apperrors.InvalidInput("Staff ID cannot be empty")
	}

	rows, err := s.repo.ListWeekly(ctx, staffID)
	if err != nil {
		s.cfg.Log.Error("Failed to list weekly schedules", "staff_id", staffID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve weekly schedules", err)
	}
	return rows, nil
}

func (s *scheduleService) SetOverride(ctx context.Context, o *model.AvailabilityOverride, actor string) error {
	o.StaffID = sanitizer.NormalizeID(o.StaffID)
	o.Reason = sanitizer.NormalizeText(o.Reason)
	o.UpdatedBy = actor

	if err := s.validator.ValidateOverride(o); err != nil {
		s.cfg.Log.Warn("Override validation failed",
			"staff_id", o.StaffID,
			"date", o.Date,
			"error", err,
		)
		return validation.AsAppError("Override validation failed", err)
	}
	if err := directory.RequireStaff(ctx, s.directory, o.StaffID); err != nil {
		return err
	}

	if err := s.repo.UpsertOverride(ctx, o); err != nil {
		s.cfg.Log.Error("Failed to save override",
			"staff_id", o.StaffID,
			"date", o.Date,
			"error", err,
		)
		if errors.Is(err, scheduleerrors.ErrDuplicate) {
			return apperrors.Conflict("Override was modified concurrently, please retry")
		}
		return apperrors.Internal("Failed to save override", err)
	}

	s.cfg.Log.Info("Override saved",
		"staff_id", o.StaffID,
		"date", o.Date,
		"available", o.Available,
		"actor", actor,
	)
	return nil
}

func (s *scheduleService) DeleteOverride(ctx context.Context, staffID, date string) error {
	staffID = sanitizer.NormalizeID(staffID)
	if staffID == "" {
		return apperrors.InvalidInput("Staff ID cannot be empty")
	}
	if !clock.IsDate(date) {
		return apperrors.InvalidInput("date must be a calendar date in YYYY-MM-DD format")
	}

	if err := s.repo.DeleteOverride(ctx, staffID, date); err != nil {
		if errors.Is(err, scheduleerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Override", staffID+"/"+date)
		}
		s.cfg.Log.Error("Failed to delete override",
			"staff_id", staffID,
			"date", date,
			"error", err,
		)
		return apperrors.Internal("Failed to delete override", err)
	}

	s.cfg.Log.Info("Override deleted", "staff_id", staffID, "date", date)
	return nil
}

func (s *scheduleService) RequestTimeOff(ctx context.Context, t *model.TimeOffRequest, actor string) error {
	t.StaffID = sanitizer.NormalizeID(t.StaffID)
	t.Reason = sanitizer.NormalizeText(t.Reason)
	t.Status = model.TimeOffPending
	t.CreatedBy = actor
	t.UpdatedBy = actor

	if err := s.validator.ValidateTimeOff(t); err != nil {
		s.cfg.Log.Warn("Time-off validation failed",
			"staff_id", t.StaffID,
			"error", err,
		)
		return validation.AsAppError("Time-off validation failed", err)
	}
	if err := directory.RequireStaff(ctx, s.directory, t.StaffID); err != nil {
		return err
	}

	if err := s.repo.CreateTimeOff(ctx, t); err != nil {
		s.cfg.Log.Error("Failed to create time-off request",
			"staff_id", t.StaffID,
			"error", err,
		)
		return apperrors.Internal("Failed to create time-off request", err)
	}

	s.cfg.Log.Info("Time-off requested",
		"id", t.ID,
		"staff_id", t.StaffID,
		"start_date", t.StartDate,
		"end_date", t.EndDate,
		"actor", actor,
	)
	return nil
}

func (s *scheduleService) ListTimeOff(ctx context.Context, staffID string) ([]*model.TimeOffRequest, error) {
	staffID = sanitizer.NormalizeID(staffID)
	if staffID == "" {
		return nil, apperrors.InvalidInput("Staff ID cannot be empty")
	}

	requests, err := s.repo.ListTimeOff(ctx, staffID)
	if err != nil {
		s.cfg.Log.Error("Failed to list time-off requests", "staff_id", staffID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve time-off requests", err)
	}
	return requests, nil
}

func (s *scheduleService) UpdateTimeOffStatus(ctx context.Context, id string, status model.TimeOffStatus, actor string) (*model.TimeOffRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Time-off ID cannot be empty")
	}

	current, err := s.repo.FindTimeOffByID(ctx, id)
	if err != nil {
		return nil, s.translateFindError(id, err)
	}

	if !current.Status.CanTransitionTo(status) {
		return nil, apperrors.Conflict("Cannot move time-off request from " + string(current.Status) + " to " + string(status))
	}

	if err := s.repo.UpdateTimeOffStatus(ctx, id, current.Status, status, actor); err != nil {
		if errors.Is(err, scheduleerrors.ErrStaleStatus) {
			return nil, apperrors.Conflict("Time-off request was modified concurrently, please retry")
		}
		s.cfg.Log.Error("Failed to update time-off status",
			"id", id,
			"status", status,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to update time-off request", err)
	}

	s.cfg.Log.Info("Time-off status updated",
		"id", id,
		"staff_id", current.StaffID,
		"from", current.Status,
		"to", status,
		"actor", actor,
	)
	current.Status = status
	current.UpdatedBy = actor
	return current, nil
}

func (s *scheduleService) translateFindError(id string, err error) error {
	if errors.Is(err, scheduleerrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Time-off request", id)
	}
	if errors.Is(err, scheduleerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid time-off ID format")
	}
	s.cfg.Log.Error("Failed to get time-off request", "id", id, "error", err)
	return apperrors.Internal("Failed to retrieve time-off request", err)
}
