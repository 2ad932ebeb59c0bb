package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentStatus_IsActive(t *testing.T) {
	tests := []struct {
		status AppointmentStatus
		active bool
	}{
		{StatusPending, true},
		{StatusConfirmed, true},
		{StatusRescheduled, true},
		{StatusCompleted, false},
		{StatusCancelled, false},
		{StatusDeclined, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.active, tt.status.IsActive())
		})
	}
}

func TestAppointmentStatus_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    AppointmentStatus
		to      AppointmentStatus
		allowed bool
	}{
		{"confirm pending", StatusPending, StatusConfirmed, true},
		{"decline pending", StatusPending, StatusDeclined, true},
		{"complete pending", StatusPending, StatusCompleted, false},
		{"complete confirmed", StatusConfirmed, StatusCompleted, true},
		{"decline confirmed", StatusConfirmed, StatusDeclined, false},
		{"confirm rescheduled", StatusRescheduled, StatusConfirmed, true},
		{"move rescheduled again", StatusRescheduled, StatusRescheduled, true},
		{"reschedule cancelled", StatusCancelled, StatusRescheduled, false},
		{"reopen cancelled", StatusCancelled, StatusPending, false},
		{"reopen completed", StatusCompleted, StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}

	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusDeclined.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
}

func TestAppointment_SyncActive(t *testing.T) {
	a := &Appointment{Status: StatusConfirmed}
	a.SyncActive()
	assert.True(t, a.Active)

	a.Status = StatusCancelled
	a.SyncActive()
	assert.False(t, a.Active)
}

func TestTimeOffRequest_Covers(t *testing.T) {
	req := &TimeOffRequest{StartDate: "2024-03-10", EndDate: "2024-03-12", Status: TimeOffApproved}

	assert.False(t, req.Covers("2024-03-09"))
	assert.True(t, req.Covers("2024-03-10"))
	assert.True(t, req.Covers("2024-03-11"))
	assert.True(t, req.Covers("2024-03-12"))
	assert.False(t, req.Covers("2024-03-13"))

	req.Status = TimeOffPending
	assert.False(t, req.Covers("2024-03-11"), "only approved leave closes a date")
}

func TestTimeOffStatus_Transitions(t *testing.T) {
	assert.True(t, TimeOffPending.CanTransitionTo(TimeOffApproved))
	assert.True(t, TimeOffApproved.CanTransitionTo(TimeOffCancelled))
	assert.False(t, TimeOffApproved.CanTransitionTo(TimeOffRejected))
	assert.False(t, TimeOffRejected.CanTransitionTo(TimeOffApproved))
}

func TestWeeklySchedule_Intervals(t *testing.T) {
	w := &WeeklySchedule{OpenStart: "09:00", OpenEnd: "17:00", BreakStart: "12:00", BreakEnd: "13:00"}

	open, err := w.OpenInterval()
	require.NoError(t, err)
	assert.Equal(t, "09:00-17:00", open.String())

	br, err := w.BreakInterval()
	require.NoError(t, err)
	require.NotNil(t, br)
	assert.Equal(t, "12:00-13:00", br.String())

	w.BreakStart, w.BreakEnd = "", ""
	br, err = w.BreakInterval()
	require.NoError(t, err)
	assert.Nil(t, br)
}

func TestWaitlistEntry_Convertible(t *testing.T) {
	assert.True(t, (&WaitlistEntry{Status: WaitlistActive}).Convertible())
	assert.True(t, (&WaitlistEntry{Status: WaitlistNotified}).Convertible())
	assert.False(t, (&WaitlistEntry{Status: WaitlistConverted}).Convertible())
	assert.False(t, (&WaitlistEntry{Status: WaitlistCancelled}).Convertible())
}

func TestExpansionResult_Skip(t *testing.T) {
	r := &ExpansionResult{}
	r.Skip("2024-01-01", SkipExists, "")
	r.Skip("2024-01-08", SkipUnavailable, "approved time-off")

	assert.Equal(t, 2, r.Skipped)
	require.Len(t, r.Details, 2)
	assert.Equal(t, SkipUnavailable, r.Details[1].Reason)
}
