package validator

import (
	"fmt"
	"time"

	"staffbook/internal/scheduling/recurrence"
	"staffbook/pkg/clock"
	"staffbook/pkg/logger"
	"staffbook/pkg/model"
	"staffbook/pkg/validation"
)

type RuleValidator struct {
	v *validation.Validator
}

func NewRuleValidator(log *logger.Logger) *RuleValidator {
	log.Info("Recurring rule validator initialized successfully")
	return &RuleValidator{v: validation.New(log)}
}

func (rv *RuleValidator) Validate(rule *model.RecurringRule) error {
	if err := rv.v.Struct(rule); err != nil {
		return err
	}
	if err := recurrence.ValidateRule(rule); err != nil {
		return validation.Field("rule", err.Error())
	}
	return nil
}

// ValidateWindow parses an expansion window and rejects windows that are
// reversed or longer than maxDays.
func (rv *RuleValidator) ValidateWindow(req *model.ExpansionRequest, maxDays int) (time.Time, time.Time, error) {
	if err := rv.v.Struct(req); err != nil {
		return time.Time{}, time.Time{}, err
	}

	from, _ := clock.ParseDate(req.FromDate)
	to, _ := clock.ParseDate(req.ToDate)
	if to.Before(from) {
		return time.Time{}, time.Time{}, validation.Field("to_date", "to_date must not be before from_date")
	}
	if days := clock.DaysBetween(from, to) + 1; maxDays > 0 && days > maxDays {
		return time.Time{}, time.Time{}, validation.Field("to_date", fmt.Sprintf("expansion window of %d days exceeds the limit of %d", days, maxDays))
	}
	return from, to, nil
}
