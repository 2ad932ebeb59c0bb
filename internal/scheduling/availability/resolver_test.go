package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffbook/pkg/clock"
	"staffbook/pkg/model"
)

func monday() *model.WeeklySchedule {
	return &model.WeeklySchedule{
		StaffID:    "staff-1",
		DayOfWeek:  1,
		OpenStart:  "09:00",
		OpenEnd:    "17:00",
		Available:  true,
		BreakStart: "12:00",
		BreakEnd:   "13:00",
	}
}

func TestResolve_WeeklyOnly(t *testing.T) {
	w := Resolve(Inputs{StaffID: "staff-1", Date: "2025-03-03", Weekly: monday()})

	assert.False(t, w.Closed)
	assert.Equal(t, model.SourceWeekly, w.Source)
	assert.Equal(t, clock.MustInterval("09:00", "17:00"), w.Open)
	require.NotNil(t, w.Break)
	assert.Equal(t, clock.MustInterval("12:00", "13:00"), *w.Break)
	assert.Equal(t, "09:00", w.OpenStart)
	assert.Equal(t, "13:00", w.BreakEnd)
}

func TestResolve_NoWeeklyRow(t *testing.T) {
	w := Resolve(Inputs{StaffID: "staff-1", Date: "2025-03-02"})

	assert.True(t, w.Closed)
	assert.Equal(t, model.ReasonNoSchedule, w.ReasonCode)
	assert.Equal(t, "no schedule for this day", w.Reason)
}

func TestResolve_WeeklyMarkedUnavailable(t *testing.T) {
	weekly := monday()
	weekly.Available = false

	w := Resolve(Inputs{Date: "2025-03-03", Weekly: weekly})
	assert.True(t, w.Closed)
	assert.Equal(t, model.ReasonNoSchedule, w.ReasonCode)
}

func TestResolve_TimeOffWinsOverEverything(t *testing.T) {
	in := Inputs{
		Date:     "2025-03-05",
		Weekly:   monday(),
		Override: &model.AvailabilityOverride{Date: "2025-03-05", Available: true, StartTime: "10:00", EndTime: "12:00"},
		TimeOff: []*model.TimeOffRequest{
			{StartDate: "2025-03-05", EndDate: "2025-03-07", Status: model.TimeOffApproved},
		},
	}

	w := Resolve(in)
	assert.True(t, w.Closed)
	assert.Equal(t, model.SourceTimeOff, w.Source)
	assert.Equal(t, model.ReasonTimeOff, w.ReasonCode)
	assert.Equal(t, "approved time-off", w.Reason)
}

func TestResolve_PendingTimeOffIgnored(t *testing.T) {
	in := Inputs{
		Date:   "2025-03-05",
		Weekly: monday(),
		TimeOff: []*model.TimeOffRequest{
			{StartDate: "2025-03-05", EndDate: "2025-03-05", Status: model.TimeOffPending},
		},
	}

	w := Resolve(in)
	assert.False(t, w.Closed)
	assert.Equal(t, model.SourceWeekly, w.Source)
}

func TestResolve_OverrideUnavailable(t *testing.T) {
	in := Inputs{
		Date:     "2025-03-03",
		Weekly:   monday(),
		Override: &model.AvailabilityOverride{Date: "2025-03-03", Available: false, Reason: "training"},
	}

	w := Resolve(in)
	assert.True(t, w.Closed)
	assert.Equal(t, model.SourceOverride, w.Source)
	assert.Equal(t, model.ReasonOverrideUnavailable, w.ReasonCode)
	assert.Equal(t, "training", w.Reason)
}

func TestResolve_OverrideIntervalDropsWeeklyBreak(t *testing.T) {
	in := Inputs{
		Date:     "2025-03-03",
		Weekly:   monday(),
		Override: &model.AvailabilityOverride{Date: "2025-03-03", Available: true, StartTime: "10:00", EndTime: "14:00"},
	}

	w := Resolve(in)
	assert.False(t, w.Closed)
	assert.Equal(t, model.SourceOverride, w.Source)
	assert.Equal(t, clock.MustInterval("10:00", "14:00"), w.Open)
	assert.Nil(t, w.Break)
	assert.Empty(t, w.BreakStart)
}

// An available override without times inherits the weekly interval and break.
func TestResolve_OverrideWithoutIntervalInheritsWeekly(t *testing.T) {
	in := Inputs{
		Date:     "2025-03-03",
		Weekly:   monday(),
		Override: &model.AvailabilityOverride{Date: "2025-03-03", Available: true},
	}

	w := Resolve(in)
	assert.False(t, w.Closed)
	assert.Equal(t, model.SourceWeekly, w.Source)
	require.NotNil(t, w.Break)
	assert.Equal(t, 12*60, w.Break.Start)
}

func TestResolve_OverrideWithoutIntervalAndNoWeekly(t *testing.T) {
	in := Inputs{
		Date:     "2025-03-02",
		Override: &model.AvailabilityOverride{Date: "2025-03-02", Available: true},
	}

	w := Resolve(in)
	assert.True(t, w.Closed)
	assert.Equal(t, model.ReasonNoSchedule, w.ReasonCode)
}

func TestResolve_BreakOutsideOpenIntervalIgnored(t *testing.T) {
	weekly := monday()
	weekly.BreakStart = "16:30"
	weekly.BreakEnd = "17:30"

	w := Resolve(Inputs{Date: "2025-03-03", Weekly: weekly})
	assert.False(t, w.Closed)
	assert.Nil(t, w.Break)
}

func TestResolveWith_AllLayersDefer(t *testing.T) {
	w := ResolveWith(Inputs{Date: "2025-03-03"}, TimeOffLayer, OverrideLayer)
	assert.True(t, w.Closed)
	assert.Equal(t, model.SourceNone, w.Source)
}

func TestResolveWith_CustomLayerOrder(t *testing.T) {
	always := func(in Inputs) Outcome {
		return Decide(model.AvailabilityWindow{Date: in.Date, Source: model.SourceOverride})
	}

	w := ResolveWith(Inputs{Date: "2025-03-03", Weekly: monday()}, always, WeeklyLayer)
	assert.Equal(t, model.SourceOverride, w.Source)
}
