package validator

import (
	"staffbook/pkg/clock"
	"staffbook/pkg/logger"
	"staffbook/pkg/model"
	"staffbook/pkg/validation"
)

type AppointmentValidator struct {
	v *validation.Validator
}

func NewAppointmentValidator(log *logger.Logger) *AppointmentValidator {
	log.Info("Appointment validator initialized successfully")
	return &AppointmentValidator{v: validation.New(log)}
}

// Validate checks a new appointment. Only pending and confirmed are valid
// initial statuses.
func (av *AppointmentValidator) Validate(a *model.Appointment) error {
	if err := av.v.Struct(a); err != nil {
		return err
	}
	if a.Status != model.StatusPending && a.Status != model.StatusConfirmed {
		return validation.Field("status", "status must be pending or confirmed for a new appointment")
	}
	return interval(a.StartTime, a.EndTime)
}

func (av *AppointmentValidator) ValidateReschedule(req *model.AppointmentReschedule) error {
	if err := av.v.Struct(req); err != nil {
		return err
	}
	return interval(req.StartTime, req.EndTime)
}

func (av *AppointmentValidator) ValidateQuery(q *model.ConflictQuery) error {
	if err := av.v.Struct(q); err != nil {
		return err
	}
	return interval(q.StartTime, q.EndTime)
}

func interval(start, end string) error {
	if _, err := clock.NewInterval(start, end); err != nil {
		return validation.Field("end_time", "end_time must be after start_time")
	}
	return nil
}
