package validator

import (
	"staffbook/pkg/clock"
	"staffbook/pkg/logger"
	"staffbook/pkg/model"
	"staffbook/pkg/validation"
)

type ScheduleValidator struct {
	v *validation.Validator
}

func NewScheduleValidator(log *logger.Logger) *ScheduleValidator {
	log.Info("Schedule validator initialized successfully")
	return &ScheduleValidator{v: validation.New(log)}
}

// ValidateWeekly checks the row and that its break lies inside the open interval.
func (sv *ScheduleValidator) ValidateWeekly(w *model.WeeklySchedule) error {
	if err := sv.v.Struct(w); err != nil {
		return err
	}
	open, err := w.OpenInterval()
	if err != nil {
		return validation.Field("open_end", "open_end must be after open_start")
	}
	brk, err := w.BreakInterval()
	if err != nil {
		return validation.Field("break_end", "break_end must be after break_start")
	}
	if brk != nil && !open.Contains(*brk) {
		return validation.Field("break_start", "break must lie within the open interval")
	}
	return nil
}

func (sv *ScheduleValidator) ValidateOverride(o *model.AvailabilityOverride) error {
	if err := sv.v.Struct(o); err != nil {
		return err
	}
	if !o.HasInterval() {
		return nil
	}
	if !o.Available {
		return validation.Field("start_time", "start_time and end_time only apply to an available override")
	}
	if _, err := clock.NewInterval(o.StartTime, o.EndTime); err != nil {
		return validation.Field("end_time", "end_time must be after start_time")
	}
	return nil
}

func (sv *ScheduleValidator) ValidateTimeOff(t *model.TimeOffRequest) error {
	if err := sv.v.Struct(t); err != nil {
		return err
	}
	if t.EndDate < t.StartDate {
		return validation.Field("end_date", "end_date cannot be before start_date")
	}
	return nil
}
