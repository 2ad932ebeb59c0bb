package model

import (
	"time"

	"staffbook/pkg/clock"
)

// WeeklySchedule is the recurring working window of a staff member for one day of the week.
type WeeklySchedule struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	StaffID    string    `json:"staff_id" bson:"staff_id" validate:"required,max=64"`
	DayOfWeek  int       `json:"day_of_week" bson:"day_of_week" validate:"min=0,max=6"`
	OpenStart  string    `json:"open_start" bson:"open_start" validate:"required,valid_time"`
	OpenEnd    string    `json:"open_end" bson:"open_end" validate:"required,valid_time"`
	Available  bool      `json:"available" bson:"available"`
	BreakStart string    `json:"break_start,omitempty" bson:"break_start,omitempty" validate:"omitempty,valid_time,required_with=BreakEnd"`
	BreakEnd   string    `json:"break_end,omitempty" bson:"break_end,omitempty" validate:"omitempty,valid_time,required_with=BreakStart"`
	UpdatedBy  string    `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

func (w *WeeklySchedule) OpenInterval() (clock.Interval, error) {
	return clock.NewInterval(w.OpenStart, w.OpenEnd)
}

// BreakInterval returns nil when the row has no break.
func (w *WeeklySchedule) BreakInterval() (*clock.Interval, error) {
	if w.BreakStart == "" || w.BreakEnd == "" {
		return nil, nil
	}
	b, err := clock.NewInterval(w.BreakStart, w.BreakEnd)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// AvailabilityOverride replaces the weekly schedule for a single date.
type AvailabilityOverride struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	StaffID   string    `json:"staff_id" bson:"staff_id" validate:"required,max=64"`
	Date      string    `json:"date" bson:"date" validate:"required,valid_date"`
	Available bool      `json:"available" bson:"available"`
	StartTime string    `json:"start_time,omitempty" bson:"start_time,omitempty" validate:"omitempty,valid_time,required_with=EndTime"`
	EndTime   string    `json:"end_time,omitempty" bson:"end_time,omitempty" validate:"omitempty,valid_time,required_with=StartTime"`
	Reason    string    `json:"reason,omitempty" bson:"reason,omitempty" validate:"omitempty,max=200"`
	UpdatedBy string    `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (o *AvailabilityOverride) HasInterval() bool {
	return o.StartTime != "" && o.EndTime != ""
}

type TimeOffStatus string

const (
	TimeOffPending   TimeOffStatus = "pending"
	TimeOffApproved  TimeOffStatus = "approved"
	TimeOffRejected  TimeOffStatus = "rejected"
	TimeOffCancelled TimeOffStatus = "cancelled"
)

var timeOffTransitions = map[TimeOffStatus][]TimeOffStatus{
	TimeOffPending:  {TimeOffApproved, TimeOffRejected, TimeOffCancelled},
	TimeOffApproved: {TimeOffCancelled},
}

func (s TimeOffStatus) CanTransitionTo(next TimeOffStatus) bool {
	for _, allowed := range timeOffTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TimeOffRequest is a leave request over an inclusive date range.
type TimeOffRequest struct {
	ID        string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	StaffID   string        `json:"staff_id" bson:"staff_id" validate:"required,max=64"`
	StartDate string        `json:"start_date" bson:"start_date" validate:"required,valid_date"`
	EndDate   string        `json:"end_date" bson:"end_date" validate:"required,valid_date"`
	Status    TimeOffStatus `json:"status" bson:"status" validate:"required,oneof=pending approved rejected cancelled"`
	Reason    string        `json:"reason,omitempty" bson:"reason,omitempty" validate:"omitempty,max=200"`
	CreatedBy string        `json:"created_by,omitempty" bson:"created_by,omitempty"`
	UpdatedBy string        `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" bson:"updated_at"`
}

// Covers reports whether the request closes the given date. Dates compare
// lexically because they are fixed-width YYYY-MM-DD.
func (t *TimeOffRequest) Covers(date string) bool {
	return t.Status == TimeOffApproved && t.StartDate <= date && date <= t.EndDate
}
