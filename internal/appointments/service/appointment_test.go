package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"staffbook/internal/appointments/appointmentstest"
	"staffbook/internal/appointments/repository"
	"staffbook/internal/appointments/validator"
	"staffbook/internal/directory"
	"staffbook/internal/directory/directorytest"
	"staffbook/internal/events"
	"staffbook/internal/scheduling"
	"staffbook/pkg/config"
	apperrors "staffbook/pkg/errors"
	"staffbook/pkg/lock"
	"staffbook/pkg/logger"
	"staffbook/pkg/model"
)

const day = "2026-11-02"

type fixture struct {
	svc       AppointmentService
	repo      *appointmentstest.Repository
	schedules *appointmentstest.Schedules
	locker    *appointmentstest.Locker
	publisher *appointmentstest.Publisher
}

func newFixture(t *testing.T, dir directory.Directory) *fixture {
	t.Helper()
	log := logger.Nop()
	cfg := &config.Config{
		Log:                log,
		BusinessHoursStart: "08:00",
		BusinessHoursEnd:   "20:00",
		DefaultBufferMin:   0,
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
	}

	f := &fixture{
		repo:      appointmentstest.NewRepository(),
		schedules: appointmentstest.NewSchedules().OpenEveryDay("staff-1", "09:00", "17:00"),
		locker:    appointmentstest.NewLocker(),
		publisher: &appointmentstest.Publisher{},
	}
	engine := scheduling.NewEngine(cfg, f.schedules, f.repo)
	f.svc = NewAppointmentService(f.repo, engine, f.locker, validator.NewAppointmentValidator(log), dir, f.publisher, cfg)
	return f
}

func booking(start, end string) *model.Appointment {
	return &model.Appointment{
		ClientID:  "client-1",
		ServiceID: "svc-1",
		StaffID:   "staff-1",
		Date:      day,
		StartTime: start,
		EndTime:   end,
	}
}

func TestBook_CreatesAndPublishes(t *testing.T) {
	f := newFixture(t, directorytest.Everyone())

	a := booking("10:00", "11:00")
	a.ClientID = " client-1 "
	require.NoError(t, f.svc.Book(context.Background(), a, BookOptions{Actor: "front-desk"}))

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "client-1", a.ClientID)
	assert.Equal(t, model.StatusPending, a.Status)
	assert.Equal(t, "front-desk", a.CreatedBy)
	assert.False(t, a.IsRecurringInstance)
	assert.Len(t, f.repo.All(), 1)
	assert.Equal(t, []string{events.AppointmentCreated}, f.publisher.Appointments)
}

func TestBook_OverlapRejected(t *testing.T) {
	f := newFixture(t, directorytest.Everyone())
	f.repo.Seed(model.Appointment{ClientID: "other", ServiceID: "svc-1", StaffID: "staff-1", Date: day, StartTime: "10:00", EndTime: "11:00", Status: model.StatusConfirmed})

	err := f.svc.Book(context.Background(), booking("10:30", "11:30"), BookOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeBookingConflict))
	assert.Len(t, f.repo.All(), 1)
	assert.Empty(t, f.publisher.Appointments)
}

func TestBook_AdjacentAllowed(t *testing.T) {
	f := newFixture(t, directorytest.Everyone())
	f.repo.Seed(model.Appointment{ClientID: "other", ServiceID: "svc-1", StaffID: "staff-1", Date: day, StartTime: "10:00", EndTime: "11:00", Status: model.StatusConfirmed})

	require.NoError(t, f.svc.Book(context.Background(), booking("11:00", "12:00"), BookOptions{}))
	assert.Len(t, f.repo.All(), 2)
}

func TestBook_CancelledDoesNotBlock(t *testing.T) {
	f := newFixture(t, directorytest.Everyone())
	f.repo.Seed(model.Appointment{ClientID: "other", ServiceID: "svc-1", StaffID: "staff-1", Date: day, StartTime: "10:00", EndTime: "11:00", Status: model.StatusCancelled})

	require.NoError(t, f.svc.Book(context.Background(), booking("10:00", "11:00"), BookOptions{}))
}

func TestBook_OutsideWorkingHours(t *testing.T) {
	f := newFixture(t, directorytest.Everyone())

	err := f.svc.Book(context.Background(), booking("16:30", "17:30"), BookOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAvailabilityConflict))
	assert.Empty(t, f.repo.All())
}

func TestBook_Validation(t *testing.T) {
	f := newFixture(t, directorytest.Everyone())

	tests := []struct {
		name   string
		mutate func(a *model.Appointment)
	}{
		{"missing client", func(a *model.Appointment) { a.ClientID = "" }},
		{"bad date", func(a *model.Appointment) { a.Date = "02-11-2026" }},
		{"end before start", func(a *model.Appointment) { a.EndTime = "09:00" }},
		{"completed status", func(a *model.Appointment) { a.Status = model.StatusCompleted }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := booking("10:00", "11:00")
			tt.mutate(a)
			err := f.svc.Book(context.Background(), a, BookOptions{})
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
		})
	}
	assert.Empty(t, f.repo.All())
}

func TestBook_UnknownClient(t *testing.T) {
	dir := &directorytest.Directory{}
	dir.On("ClientExists", mock.Anything, "client-1").Return(false, nil)
	f := newFixture(t, dir)

	err := f.svc.Book(context.Background(), booking("10:00", "11:00"), BookOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	dir.AssertExpectations(t)
}

func TestBook_VerifiedSkipsDirectory(t *testing.T) {
	dir := &directorytest.Directory{}
	f := newFixture(t, dir)

	require.NoError(t, f.svc.Book(context.Background(), booking("10:00", "11:00"), BookOptions{Verified: true}))
	dir.AssertNotCalled(t, "ClientExists", mock.Anything, mock.Anything)
}

func TestBook_LockHeld(t *testing.T) {
	f := newFixture(t, directorytest.Everyone())
	f.locker.Hold(lock.SlotKey("staff-1", "client-1", day))

	err := f.svc.Book(context.Background(), booking("10:00", "11:00"), BookOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Empty(t, f.repo.All())
}

func TestBook_InTxFailureRollsBack(t *testing.T) {
	f := newFixture(t, directorytest.Everyone())

	var seen string
	err := f.svc.Book(context.Background(), booking("10:00", "11:00"), BookOptions{
		InTx: func(_ context.Context, a *model.Appointment) error {
			seen = a.ID
			return apperrors.Conflict("entry already converted")
		},
	})
	require.Error(t, err)
	assert.NotEmpty(t, seen)
	assert.Empty(t, f.repo.All())
	assert.Empty(t, f.publisher.Appointments)
}

func TestBook_StoreFailure(t *testing.T) {
	f := newFixture(t, directorytest.Everyone())
	f.repo.CreateErr = errors.New("connection reset")

	err := f.svc.Book(context.Background(), booking("10:00", "11:00"), BookOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}

func TestBook_StafflessDuplicate(t *testing.T) {
	f := newFixture(t, directorytest.Everyone())
	f.repo.Seed(model.Appointment{ClientID: "client-1", ServiceID: "svc-1", Date: day, StartTime: "10:00", EndTime: "11:00", Status: model.StatusPending})

	dup := booking("10:00", "11:00")
	dup.StaffID = ""
	err := f.svc.Book(context.Background(), dup, BookOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeBookingConflict))

	shifted := booking("10:30", "11:30")
	shifted.StaffID = ""
	require.NoError(t, f.svc.Book(context.Background(), shifted, BookOptions{}))
}

func TestGetByID(t *testing.T) {
	f := newFixture(t, directorytest.Everyone())
	id := f.repo.Seed(*booking("10:00", "11:00"))

	a, err := f.svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, a.ID)

	_, err = f.svc.GetByID(context.Background(), "not-an-id")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	_, err = f.svc.GetByID(context.Background(), "507f1f77bcf86cd799439011")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestList(t *testing.T) {
	f := newFixture(t, directorytest.Everyone())
	f.repo.Seed(model.Appointment{ClientID: "client-1", ServiceID: "svc-1", StaffID: "staff-1", Date: day, StartTime: "10:00", EndTime: "11:00", Status: model.StatusPending})
	f.repo.Seed(model.Appointment{ClientID: "client-2", ServiceID: "svc-1", StaffID: "staff-1", Date: day, StartTime: "12:00", EndTime: "13:00", Status: model.StatusPending})

	items, total, err := f.svc.List(context.Background(), repository.Filter{StaffID: "staff-1"}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 1)
	assert.Equal(t, "10:00", items[0].StartTime)

	_, _, err = f.svc.List(context.Background(), repository.Filter{Date: day}, 10, 0)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestUpdateStatus_CancelFreesSlot(t *testing.T) {
	f := newFixture(t, directorytest.Everyone())
	id := f.repo.Seed(model.Appointment{ClientID: "client-1", ServiceID: "svc-1", StaffID: "staff-1", Date: day, StartTime: "10:00", EndTime: "11:00", Status: model.StatusConfirmed})

	a, err := f.svc.UpdateStatus(context.Background(), id, model.StatusCancelled, "client-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, a.Status)
	assert.Equal(t, []string{events.AppointmentStatusChanged, events.AppointmentCancelled}, f.publisher.Appointments)
	require.NotNil(t, f.publisher.Last.FreedSlot)
	assert.Equal(t, "svc-1", f.publisher.Last.FreedSlot.ServiceID)
	assert.Equal(t, model.StatusConfirmed, f.publisher.Last.PreviousStatus)

	require.NoError(t, f.svc.Book(context.Background(), booking("10:00", "11:00"), BookOptions{}))
}

func TestUpdateStatus_Confirm(t *testing.T) {
	f := newFixture(t, directorytest.Everyone())
	id := f.repo.Seed(*withStatus(booking("10:00", "11:00"), model.StatusPending))

	_, err := f.svc.UpdateStatus(context.Background(), id, model.StatusConfirmed, "staff-1")
	require.NoError(t, err)
	assert.Equal(t, []string{events.AppointmentStatusChanged}, f.publisher.Appointments)
}

func TestUpdateStatus_Rejected(t *testing.T) {
	f := newFixture(t, directorytest.Everyone())
	id := f.repo.Seed(*withStatus(booking("10:00", "11:00"), model.StatusCompleted))

	_, err := f.svc.UpdateStatus(context.Background(), id, model.StatusConfirmed, "staff-1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	_, err = f.svc.UpdateStatus(context.Background(), id, model.StatusRescheduled, "staff-1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestReschedule_WithinOwnSlot(t *testing.T) {
	f := newFixture(t, directorytest.Everyone())
	id := f.repo.Seed(*withStatus(booking("10:00", "11:00"), model.StatusConfirmed))

	moved, err := f.svc.Reschedule(context.Background(), id, &model.AppointmentReschedule{
		Date: day, StartTime: "10:30", EndTime: "11:30",
	}, "staff-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRescheduled, moved.Status)
	assert.Equal(t, "10:30", moved.StartTime)
	assert.Equal(t, []string{events.AppointmentRescheduled}, f.publisher.Appointments)
	require.NotNil(t, f.publisher.Last.FreedSlot)
	assert.Equal(t, "10:00", f.publisher.Last.FreedSlot.StartTime)
}

func TestReschedule_Twice(t *testing.T) {
	f := newFixture(t, directorytest.Everyone())
	id := f.repo.Seed(*withStatus(booking("10:00", "11:00"), model.StatusConfirmed))

	_, err := f.svc.Reschedule(context.Background(), id, &model.AppointmentReschedule{
		Date: day, StartTime: "13:00", EndTime: "14:00",
	}, "staff-1")
	require.NoError(t, err)

	moved, err := f.svc.Reschedule(context.Background(), id, &model.AppointmentReschedule{
		Date: day, StartTime: "15:00", EndTime: "16:00",
	}, "staff-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRescheduled, moved.Status)
	assert.Equal(t, "15:00", moved.StartTime)
	assert.Equal(t, model.StatusRescheduled, f.publisher.Last.PreviousStatus)
	require.NotNil(t, f.publisher.Last.FreedSlot)
	assert.Equal(t, "13:00", f.publisher.Last.FreedSlot.StartTime)
}

func TestReschedule_OntoAnotherBooking(t *testing.T) {
	f := newFixture(t, directorytest.Everyone())
	id := f.repo.Seed(*withStatus(booking("10:00", "11:00"), model.StatusConfirmed))
	f.repo.Seed(model.Appointment{ClientID: "client-2", ServiceID: "svc-1", StaffID: "staff-1", Date: day, StartTime: "14:00", EndTime: "15:00", Status: model.StatusPending})

	_, err := f.svc.Reschedule(context.Background(), id, &model.AppointmentReschedule{
		Date: day, StartTime: "14:30", EndTime: "15:30",
	}, "staff-1")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeBookingConflict))

	stored, err := f.svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "10:00", stored.StartTime)
	assert.Equal(t, model.StatusConfirmed, stored.Status)
}

func TestReschedule_Cancelled(t *testing.T) {
	f := newFixture(t, directorytest.Everyone())
	id := f.repo.Seed(*withStatus(booking("10:00", "11:00"), model.StatusCancelled))

	_, err := f.svc.Reschedule(context.Background(), id, &model.AppointmentReschedule{
		Date: day, StartTime: "12:00", EndTime: "13:00",
	}, "staff-1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestCheckConflict(t *testing.T) {
	f := newFixture(t, directorytest.Everyone())
	f.repo.Seed(*withStatus(booking("10:00", "11:00"), model.StatusConfirmed))

	result, err := f.svc.CheckConflict(context.Background(), &model.ConflictQuery{
		StaffID: "staff-1", Date: day, StartTime: "10:30", EndTime: "11:30",
	})
	require.NoError(t, err)
	assert.True(t, result.Conflict)
	assert.Equal(t, model.ConflictBooking, result.Kind)
	assert.Len(t, result.Appointments, 1)

	result, err = f.svc.CheckConflict(context.Background(), &model.ConflictQuery{
		StaffID: "staff-1", Date: day, StartTime: "11:00", EndTime: "12:00",
	})
	require.NoError(t, err)
	assert.False(t, result.Conflict)

	_, err = f.svc.CheckConflict(context.Background(), &model.ConflictQuery{
		StaffID: "staff-1", Date: day, StartTime: "12:00", EndTime: "11:00",
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestGenerateSlots_ServiceDuration(t *testing.T) {
	dir := directorytest.Everyone()
	dir.On("ServiceDuration", mock.Anything, "svc-90").Return(90, nil)
	dir.On("ServiceDuration", mock.Anything, "svc-unknown").Return(0, directory.ErrDurationUnknown)
	f := newFixture(t, dir)

	slots, err := f.svc.GenerateSlots(context.Background(), "staff-1", day, SlotQuery{ServiceID: "svc-90"})
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, model.Slot{Start: "09:00", End: "10:30"}, slots[0])

	_, err = f.svc.GenerateSlots(context.Background(), "staff-1", day, SlotQuery{ServiceID: "svc-unknown"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestGenerateSlots_Buffer(t *testing.T) {
	f := newFixture(t, directorytest.Everyone())
	buffer := 30

	slots, err := f.svc.GenerateSlots(context.Background(), "staff-1", day, SlotQuery{Duration: 60, Buffer: &buffer})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(slots), 2)
	assert.Equal(t, model.Slot{Start: "10:30", End: "11:30"}, slots[1])
}

func withStatus(a *model.Appointment, status model.AppointmentStatus) *model.Appointment {
	a.Status = status
	return a
}
