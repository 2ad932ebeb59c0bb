package model

import (
	"time"

	"staffbook/pkg/clock"
)

type AppointmentStatus string

const (
	StatusPending     AppointmentStatus = "pending"
	StatusConfirmed   AppointmentStatus = "confirmed"
	StatusRescheduled AppointmentStatus = "rescheduled"
	StatusCompleted   AppointmentStatus = "completed"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusDeclined    AppointmentStatus = "declined"
)

// ActiveStatuses are the statuses that hold staff time.
var ActiveStatuses = []AppointmentStatus{StatusPending, StatusConfirmed, StatusRescheduled}

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:     {StatusConfirmed, StatusDeclined, StatusCancelled, StatusRescheduled},
	StatusConfirmed:   {StatusCompleted, StatusCancelled, StatusRescheduled},
	StatusRescheduled: {StatusConfirmed, StatusCompleted, StatusCancelled, StatusRescheduled},
}

func (s AppointmentStatus) IsActive() bool {
	return s != StatusCancelled && s != StatusDeclined && s != StatusCompleted
}

func (s AppointmentStatus) IsTerminal() bool {
	return len(appointmentTransitions[s]) == 0
}

func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// FreesSlot reports whether moving into s releases the booked interval.
func (s AppointmentStatus) FreesSlot() bool {
	return s == StatusCancelled || s == StatusDeclined
}

type Appointment struct {
	ID                  string            `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ClientID            string            `json:"client_id" bson:"client_id" validate:"required,max=64"`
	ServiceID           string            `json:"service_id" bson:"service_id" validate:"required,max=64"`
	StaffID             string            `json:"staff_id,omitempty" bson:"staff_id,omitempty" validate:"omitempty,max=64"`
	Date                string            `json:"date" bson:"date" validate:"required,valid_date"`
	StartTime           string            `json:"start_time" bson:"start_time" validate:"required,valid_time"`
	EndTime             string            `json:"end_time" bson:"end_time" validate:"required,valid_time"`
	Status              AppointmentStatus `json:"status" bson:"status" validate:"required,oneof=pending confirmed rescheduled completed cancelled declined"`
	Active              bool              `json:"-" bson:"active"`
	RecurringID         string            `json:"recurring_id,omitempty" bson:"recurring_id,omitempty"`
	IsRecurringInstance bool              `json:"is_recurring_instance" bson:"is_recurring_instance"`
	Notes               string            `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=500"`
	CreatedBy           string            `json:"created_by,omitempty" bson:"created_by,omitempty"`
	UpdatedBy           string            `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
	CreatedAt           time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at" bson:"updated_at"`
}

func (a *Appointment) Interval() (clock.Interval, error) {
	return clock.NewInterval(a.StartTime, a.EndTime)
}

// SyncActive keeps the stored active flag in line with Status; the unique
// booking index is filtered on it.
func (a *Appointment) SyncActive() {
	a.Active = a.Status.IsActive()
}

type AppointmentStatusUpdate struct {
	Status AppointmentStatus `json:"status" validate:"required,oneof=pending confirmed rescheduled completed cancelled declined"`
}

type AppointmentReschedule struct {
	StaffID   *string `json:"staff_id,omitempty" validate:"omitempty,max=64"`
	Date      string  `json:"date" validate:"required,valid_date"`
	StartTime string  `json:"start_time" validate:"required,valid_time"`
	EndTime   string  `json:"end_time" validate:"required,valid_time"`
}
