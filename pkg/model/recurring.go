package model

import "time"

type RecurrencePattern string

const (
	PatternDaily    RecurrencePattern = "daily"
	PatternWeekly   RecurrencePattern = "weekly"
	PatternBiweekly RecurrencePattern = "biweekly"
	PatternMonthly  RecurrencePattern = "monthly"
)

// RecurringRule generates appointment instances. RecurrenceDay is a weekday
// (0=Sunday) for weekly and biweekly patterns and a day of month for monthly.
type RecurringRule struct {
	ID             string            `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ClientID       string            `json:"client_id" bson:"client_id" validate:"required,max=64"`
	ServiceID      string            `json:"service_id" bson:"service_id" validate:"required,max=64"`
	StaffID        string            `json:"staff_id,omitempty" bson:"staff_id,omitempty" validate:"omitempty,max=64"`
	Pattern        RecurrencePattern `json:"pattern" bson:"pattern" validate:"required,oneof=daily weekly biweekly monthly"`
	RecurrenceDay  *int              `json:"recurrence_day,omitempty" bson:"recurrence_day,omitempty" validate:"omitempty,min=0,max=31"`
	StartDate      string            `json:"start_date" bson:"start_date" validate:"required,valid_date"`
	EndDate        string            `json:"end_date,omitempty" bson:"end_date,omitempty" validate:"omitempty,valid_date"`
	MaxOccurrences *int              `json:"max_occurrences,omitempty" bson:"max_occurrences,omitempty" validate:"omitempty,min=1,max=1000"`
	StartTime      string            `json:"start_time" bson:"start_time" validate:"required,valid_time"`
	EndTime        string            `json:"end_time" bson:"end_time" validate:"required,valid_time"`
	IsActive       bool              `json:"is_active" bson:"is_active"`
	Notes          string            `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=500"`
	CreatedBy      string            `json:"created_by,omitempty" bson:"created_by,omitempty"`
	DeactivatedBy  string            `json:"deactivated_by,omitempty" bson:"deactivated_by,omitempty"`
	CreatedAt      time.Time         `json:"created_at" bson:"created_at"`
	DeactivatedAt  *time.Time        `json:"deactivated_at,omitempty" bson:"deactivated_at,omitempty"`
}

type SkipReason string

const (
	SkipExists          SkipReason = "exists"
	SkipBeforeStart     SkipReason = "before_start"
	SkipAfterEnd        SkipReason = "after_end"
	SkipMaxOccurrences  SkipReason = "max_occurrences"
	SkipUnavailable     SkipReason = "unavailable"
	SkipBookingConflict SkipReason = "booking_conflict"
	SkipError           SkipReason = "error"
)

type SkippedOccurrence struct {
	Date   string     `json:"date"`
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}

type ExpansionResult struct {
	RuleID  string              `json:"rule_id"`
	Created []string            `json:"created"`
	Skipped int                 `json:"skipped"`
	Details []SkippedOccurrence `json:"skipped_occurrences,omitempty"`
}

func (r *ExpansionResult) Skip(date string, reason SkipReason, detail string) {
	r.Skipped++
	r.Details = append(r.Details, SkippedOccurrence{Date: date, Reason: reason, Detail: detail})
}

type ExpansionRequest struct {
	FromDate string `json:"from_date" validate:"required,valid_date"`
	ToDate   string `json:"to_date" validate:"required,valid_date"`
}

type DeactivationResult struct {
	RuleID           string `json:"rule_id"`
	DeletedInstances int64  `json:"deleted_instances"`
}
