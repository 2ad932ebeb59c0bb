package validator

import (
	"staffbook/pkg/clock"
	"staffbook/pkg/logger"
	"staffbook/pkg/model"
	"staffbook/pkg/validation"
)

type EntryValidator struct {
	v *validation.Validator
}

func NewEntryValidator(log *logger.Logger) *EntryValidator {
	log.Info("Waitlist validator initialized successfully")
	return &EntryValidator{v: validation.New(log)}
}

func (ev *EntryValidator) Validate(e *model.WaitlistEntry) error {
	return ev.v.Struct(e)
}

func (ev *EntryValidator) ValidateFreedSlot(s *model.FreedSlot) error {
	if err := ev.v.Struct(s); err != nil {
		return err
	}
	return interval(s.StartTime, s.EndTime)
}

func (ev *EntryValidator) ValidateConcreteSlot(s *model.ConcreteSlot) error {
	if err := ev.v.Struct(s); err != nil {
		return err
	}
	return interval(s.StartTime, s.EndTime)
}

func interval(start, end string) error {
	if _, err := clock.NewInterval(start, end); err != nil {
		return validation.Field("end_time", "end_time must be after start_time")
	}
	return nil
}
