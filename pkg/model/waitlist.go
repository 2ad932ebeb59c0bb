package model

import "time"

type WaitlistStatus string

const (
	WaitlistActive    WaitlistStatus = "active"
	WaitlistNotified  WaitlistStatus = "notified"
	WaitlistConverted WaitlistStatus = "converted"
	WaitlistCancelled WaitlistStatus = "cancelled"
)

type WaitlistEntry struct {
	ID                       string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ClientID                 string         `json:"client_id" bson:"client_id" validate:"required,max=64"`
	ServiceID                string         `json:"service_id" bson:"service_id" validate:"required,max=64"`
	PreferredStaffID         string         `json:"preferred_staff_id,omitempty" bson:"preferred_staff_id,omitempty" validate:"omitempty,max=64"`
	PreferredDate            string         `json:"preferred_date,omitempty" bson:"preferred_date,omitempty" validate:"omitempty,valid_date"`
	PreferredTime            string         `json:"preferred_time,omitempty" bson:"preferred_time,omitempty" validate:"omitempty,valid_time"`
	Priority                 int            `json:"priority" bson:"priority" validate:"min=0,max=100"`
	Status                   WaitlistStatus `json:"status" bson:"status" validate:"required,oneof=active notified converted cancelled"`
	ConvertedToAppointmentID string         `json:"converted_to_appointment_id,omitempty" bson:"converted_to_appointment_id,omitempty"`
	Notes                    string         `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=500"`
	CreatedBy                string         `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt                time.Time      `json:"created_at" bson:"created_at"`
	NotifiedAt               *time.Time     `json:"notified_at,omitempty" bson:"notified_at,omitempty"`
	UpdatedAt                time.Time      `json:"updated_at" bson:"updated_at"`
}

// Convertible reports whether the entry may still become an appointment.
func (e *WaitlistEntry) Convertible() bool {
	return e.Status == WaitlistActive || e.Status == WaitlistNotified
}

// FreedSlot describes an interval that just became bookable.
type FreedSlot struct {
	ServiceID string `json:"service_id" validate:"required,max=64"`
	StaffID   string `json:"staff_id,omitempty" validate:"omitempty,max=64"`
	Date      string `json:"date" validate:"required,valid_date"`
	StartTime string `json:"start_time" validate:"required,valid_time"`
	EndTime   string `json:"end_time" validate:"required,valid_time"`
}

// ConcreteSlot is the interval a waitlist entry is converted into.
type ConcreteSlot struct {
	StaffID   string `json:"staff_id,omitempty" validate:"omitempty,max=64"`
	Date      string `json:"date" validate:"required,valid_date"`
	StartTime string `json:"start_time" validate:"required,valid_time"`
	EndTime   string `json:"end_time" validate:"required,valid_time"`
}

type MatchFailure struct {
	EntryID string `json:"entry_id"`
	Error   string `json:"error"`
}

type MatchResult struct {
	Notified []*WaitlistEntry `json:"notified"`
	Failed   []MatchFailure   `json:"failed,omitempty"`
}
