package service

import (
	"context"
	"errors"
	"time"

	apptservice "staffbook/internal/appointments/service"
	"staffbook/internal/directory"
	ruleerrors "staffbook/internal/recurring/errors"
	"staffbook/internal/recurring/repository"
	"staffbook/internal/recurring/validator"
	"staffbook/internal/scheduling/recurrence"
	"staffbook/pkg/clock"
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

// InstanceStore reads and prunes the appointments a rule generated.
type InstanceStore interface {
	ExistsOccurrence(ctx context.Context, recurringID, date, startTime string) (bool, error)
	CountByRecurring(ctx context.Context, recurringID string) (int64, error)
	DeleteFutureInstances(ctx context.Context, recurringID, afterDate string) (int64, error)
}

type RuleService interface {
	Create(ctx context.Context, rule *model.RecurringRule, actor string) error
	GetByID(ctx context.Context, id string) (*model.RecurringRule, error)
	Expand(ctx context.Context, id string, req *model.ExpansionRequest, actor string) (*model.ExpansionResult, error)
	Deactivate(ctx context.Context, id string, cascade bool, actor string) (*model.DeactivationResult, error)
}

type ruleService struct {
	repo      repository.RuleRepository
	instances InstanceStore
	booker    Booker
	validator *validator.RuleValidator
	directory directory.Directory
	cfg       *config.Config
	now       func() time.Time
}

func NewRuleService(
	repo repository.RuleRepository,
	instances InstanceStore,
	booker Booker,
	validator *validator.RuleValidator,
	dir directory.Directory,
	cfg *config.Config,
) RuleService {
	return &ruleService{
		repo:      repo,
		instances: instances,
		booker:    booker,
		validator: validator,
		directory: dir,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *ruleService) Create(ctx context.Context, rule *model.RecurringRule, actor string) error {
	rule.ClientID = sanitizer.NormalizeID(rule.ClientID)
	rule.ServiceID = sanitizer.NormalizeID(rule.ServiceID)
	rule.StaffID = sanitizer.NormalizeID(rule.StaffID)
	rule.Notes = sanitizer.NormalizeText(rule.Notes)
	rule.CreatedBy = actor

	if err := s.validator.Validate(rule); err != nil {
		s.cfg.Log.Warn("Recurring rule validation failed",
			"client_id", rule.ClientID,
			"pattern", rule.Pattern,
			"error", err,
		)
		return validation.AsAppError("Recurring rule validation failed", err)
	}

	if err := directory.RequireClient(ctx, s.directory, rule.ClientID); err != nil {
		return err
	}
	if err := directory.RequireStaff(ctx, s.directory, rule.StaffID); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, rule); err != nil {
		s.cfg.Log.Error("Failed to create recurring rule", "client_id", rule.ClientID, "error", err)
		return apperrors.Internal("Failed to create recurring rule", err)
	}

	s.cfg.Log.Info("Recurring rule created",
		"rule_id", rule.ID,
		"client_id", rule.ClientID,
		"staff_id", rule.StaffID,
		"pattern", rule.Pattern,
		"actor", actor,
	)
	return nil
}

func (s *ruleService) GetByID(ctx context.Context, id string) (*model.RecurringRule, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Recurring rule ID cannot be empty")
	}

	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ruleerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Recurring rule", id)
		}
		if errors.Is(err, ruleerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid recurring rule ID format")
		}
		s.cfg.Log.Error("Failed to get recurring rule by ID", "rule_id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve recurring rule", err)
	}
	return rule, nil
}

// Expand materializes the rule's occurrences in the window. A date that
// cannot be booked is recorded as skipped and never fails the run.
func (s *ruleService) Expand(ctx context.Context, id string, req *model.ExpansionRequest, actor string) (*model.ExpansionResult, error) {
	rule, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rule.IsActive {
		return nil, apperrors.Conflict("Recurring rule is inactive")
	}

	from, to, err := s.validator.ValidateWindow(req, s.cfg.MaxExpansionDays)
	if err != nil {
		return nil, validation.AsAppError("Expansion window validation failed", err)
	}

	candidates, err := recurrence.Candidates(rule, from, to)
	if err != nil {
		return nil, apperrors.Internal("Failed to enumerate occurrences", err)
	}

	owned, err := s.instances.CountByRecurring(ctx, rule.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to count recurring instances", "rule_id", rule.ID, "error", err)
		return nil, apperrors.Internal("Failed to count recurring instances", err)
	}

	result := &model.ExpansionResult{RuleID: rule.ID, Created: []string{}}
	for _, c := range candidates {
		date := c.DateString()
		reason, detail := s.occurrence(ctx, rule, c, owned, actor, result)
		if reason != "" {
			result.Skip(date, reason, detail)
			metrics.IncOccurrence(string(reason))
			continue
		}
		owned++
		metrics.IncOccurrence("created")
	}

	s.cfg.Log.Info("Recurring rule expanded",
		"rule_id", rule.ID,
		"from_date", req.FromDate,
		"to_date", req.ToDate,
		"created", len(result.Created),
		"skipped", result.Skipped,
		"actor", actor,
	)
	return result, nil
}

// occurrence books one candidate date. It returns an empty reason when an
// appointment was created and appended to result.
func (s *ruleService) occurrence(ctx context.Context, rule *model.RecurringRule, c recurrence.Candidate, owned int64, actor string, result *model.ExpansionResult) (model.SkipReason, string) {
	if c.Skip != "" {
		return c.Skip, ""
	}
	date := c.DateString()

	exists, err := s.instances.ExistsOccurrence(ctx, rule.ID, date, rule.StartTime)
	if err != nil {
		s.cfg.Log.Warn("Failed to check occurrence", "rule_id", rule.ID, "date", date, "error", err)
		return model.SkipError, "failed to check existing occurrence"
	}
	if exists {
		return model.SkipExists, ""
	}
	if rule.MaxOccurrences != nil && owned >= int64(*rule.MaxOccurrences) {
		return model.SkipMaxOccurrences, ""
	}

	a := &model.Appointment{
		ClientID:    rule.ClientID,
		ServiceID:   rule.ServiceID,
		StaffID:     rule.StaffID,
		Date:        date,
		StartTime:   rule.StartTime,
		EndTime:     rule.EndTime,
		Status:      model.StatusPending,
		RecurringID: rule.ID,
		Notes:       rule.Notes,
	}
	err = s.booker.Book(ctx, a, apptservice.BookOptions{
		Actor:    actor,
		Origin:   apptservice.OriginRecurring,
		Verified: true,
	})
	if err == nil {
		result.Created = append(result.Created, a.ID)
		return "", ""
	}

	appErr := apperrors.AsAppError(err)
	switch appErr.Code {
	case apperrors.CodeAvailabilityConflict:
		return model.SkipUnavailable, appErr.Message
	case apperrors.CodeBookingConflict:
		return model.SkipBookingConflict, appErr.Message
	}
	return model.SkipError, appErr.Message
}

// Deactivate turns the rule off. With cascade it also deletes pending and
// confirmed instances dated after today in the configured time zone. A
// cascade on an already inactive rule only deletes the instances, so a failed
// cascade can be retried.
func (s *ruleService) Deactivate(ctx context.Context, id string, cascade bool, actor string) (*model.DeactivationResult, error) {
	rule, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rule.IsActive && !cascade {
		return nil, apperrors.Conflict("Recurring rule is already inactive")
	}

	if rule.IsActive {
		if _, err := s.repo.Deactivate(ctx, rule.ID, actor); err != nil {
			if !errors.Is(err, ruleerrors.ErrNotActive) {
				s.cfg.Log.Error("Failed to deactivate recurring rule", "rule_id", rule.ID, "error", err)
				return nil, apperrors.Internal("Failed to deactivate recurring rule", err)
			}
			if !cascade {
				return nil, apperrors.Conflict("Recurring rule is already inactive")
			}
		}
	}

	result := &model.DeactivationResult{RuleID: rule.ID}
	if cascade {
		today := clock.FormatDate(clock.Today(s.now(), s.cfg.Location()))
		deleted, err := s.instances.DeleteFutureInstances(ctx, rule.ID, today)
		if err != nil {
			s.cfg.Log.Error("Failed to delete future instances",
				"rule_id", rule.ID,
				"after_date", today,
				"error", err,
			)
			return nil, apperrors.Internal("Recurring rule deactivated but future instances could not be deleted", err)
		}
		result.DeletedInstances = deleted
	}

	s.cfg.Log.Info("Recurring rule deactivated",
		"rule_id", rule.ID,
		"cascade", cascade,
		"deleted_instances", result.DeletedInstances,
		"actor", actor,
	)
	return result, nil
}
