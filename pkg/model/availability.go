package model

import "staffbook/pkg/clock"

type WindowSource string

const (
	SourceTimeOff  WindowSource = "time_off"
	SourceOverride WindowSource = "override"
	SourceWeekly   WindowSource = "weekly"
	SourceNone     WindowSource = "none"
)

// Machine-readable reasons attached to closed windows and conflicts.
const (
	ReasonTimeOff              = "time_off"
	ReasonOverrideUnavailable  = "override_unavailable"
	ReasonNoSchedule           = "no_schedule"
	ReasonOutsideBusinessHours = "outside_business_hours"
	ReasonOutsideWorkingHours  = "outside_working_hours"
	ReasonBreakTime            = "break_time"
	ReasonAppointmentOverlap   = "appointment_overlap"
	ReasonDuplicateAppointment = "duplicate_appointment"
)

// AvailabilityWindow is the effective open interval of a staff member on a date.
type AvailabilityWindow struct {
	StaffID    string          `json:"staff_id"`
	Date       string          `json:"date"`
	Closed     bool            `json:"closed"`
	Source     WindowSource    `json:"source"`
	ReasonCode string          `json:"reason_code,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	OpenStart  string          `json:"open_start,omitempty"`
	OpenEnd    string          `json:"open_end,omitempty"`
	BreakStart string          `json:"break_start,omitempty"`
	BreakEnd   string          `json:"break_end,omitempty"`
	Open       clock.Interval  `json:"-"`
	Break      *clock.Interval `json:"-"`
}

type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type ConflictKind string

const (
	ConflictNone         ConflictKind = "none"
	ConflictAvailability ConflictKind = "availability"
	ConflictBooking      ConflictKind = "booking"
)

type ConflictReason struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
}

type ConflictResult struct {
	Conflict     bool             `json:"conflict"`
	Kind         ConflictKind     `json:"kind"`
	Reasons      []ConflictReason `json:"reasons,omitempty"`
	Appointments []*Appointment   `json:"appointments,omitempty"`
}

// ConflictQuery is a candidate interval to test. StaffID may be empty.
type ConflictQuery struct {
	StaffID              string `json:"staff_id,omitempty" validate:"omitempty,max=64"`
	ClientID             string `json:"client_id,omitempty" validate:"omitempty,max=64"`
	Date                 string `json:"date" validate:"required,valid_date"`
	StartTime            string `json:"start_time" validate:"required,valid_time"`
	EndTime              string `json:"end_time" validate:"required,valid_time"`
	ExcludeAppointmentID string `json:"exclude_appointment_id,omitempty"`
}
