package slots

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"staffbook/pkg/clock"
	"staffbook/pkg/model"
)

func mondayWindow() model.AvailabilityWindow {
	br := clock.MustInterval("12:00", "13:00")
	return model.AvailabilityWindow{
		Open:  clock.MustInterval("09:00", "17:00"),
		Break: &br,
	}
}

func TestGenerate_MondayWithBreakAndBuffer(t *testing.T) {
	got := Generate(mondayWindow(), nil, 60, 15)

	want := []model.Slot{
		{Start: "09:00", End: "10:00"},
		{Start: "10:15", End: "11:15"},
		{Start: "14:00", End: "15:00"},
		{Start: "15:15", End: "16:15"},
	}
	assert.Equal(t, want, got)

	br := clock.MustInterval("12:00", "13:00")
	for _, s := range got {
		iv := clock.MustInterval(s.Start, s.End)
		assert.False(t, iv.Overlaps(br), "slot %s overlaps break", iv)
		assert.LessOrEqual(t, iv.End, 17*60)
	}
}

func TestGenerate_NoBufferFillsDay(t *testing.T) {
	window := model.AvailabilityWindow{Open: clock.MustInterval("09:00", "12:00")}

	got := Generate(window, nil, 60, 0)
	assert.Equal(t, []model.Slot{
		{Start: "09:00", End: "10:00"},
		{Start: "10:00", End: "11:00"},
		{Start: "11:00", End: "12:00"},
	}, got)
}

// The last slot is dropped when its trailing buffer does not fit.
func TestGenerate_TrailingBufferMustFit(t *testing.T) {
	window := model.AvailabilityWindow{Open: clock.MustInterval("09:00", "11:00")}

	got := Generate(window, nil, 60, 15)
	assert.Equal(t, []model.Slot{{Start: "09:00", End: "10:00"}}, got)
}

func TestGenerate_SkipsBusyIntervals(t *testing.T) {
	window := model.AvailabilityWindow{Open: clock.MustInterval("09:00", "12:00")}
	busy := []clock.Interval{clock.MustInterval("10:30", "11:00")}

	got := Generate(window, busy, 30, 0)
	assert.Equal(t, []model.Slot{
		{Start: "09:00", End: "09:30"},
		{Start: "09:30", End: "10:00"},
		{Start: "10:00", End: "10:30"},
		{Start: "11:00", End: "11:30"},
		{Start: "11:30", End: "12:00"},
	}, got)
}

func TestGenerate_ClosedWindowReturnsEmpty(t *testing.T) {
	got := Generate(model.AvailabilityWindow{Closed: true}, nil, 30, 0)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGenerate_DurationLongerThanWindow(t *testing.T) {
	window := model.AvailabilityWindow{Open: clock.MustInterval("09:00", "10:00")}
	assert.Empty(t, Generate(window, nil, 90, 0))
}

func TestBusy(t *testing.T) {
	appointments := []*model.Appointment{
		{StartTime: "09:00", EndTime: "10:00", Status: model.StatusConfirmed},
		{StartTime: "10:00", EndTime: "11:00", Status: model.StatusCancelled},
		{StartTime: "bad", EndTime: "11:00", Status: model.StatusPending},
		nil,
	}

	assert.Equal(t, []clock.Interval{clock.MustInterval("09:00", "10:00")}, Busy(appointments))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(30, 0))
	assert.NoError(t, Validate(60, 15))
	assert.Error(t, Validate(0, 0))
	assert.Error(t, Validate(-5, 0))
	assert.Error(t, Validate(30, -1))
	assert.Error(t, Validate(clock.MinutesPerDay+1, 0))
	assert.NoError(t, Validate(60, clock.MinutesPerDay-60))
	assert.Error(t, Validate(60, clock.MinutesPerDay-59))
	assert.Error(t, Validate(60, math.MaxInt-10))
}

func TestGenerate_OversizedBuffer(t *testing.T) {
	assert.Empty(t, Generate(mondayWindow(), nil, 60, math.MaxInt-10))
}
