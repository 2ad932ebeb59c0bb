//go:build integration

package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appterrors "staffbook/internal/appointments/errors"
	"staffbook/internal/appointments/repository"
	"staffbook/internal/testutil"
	"staffbook/pkg/model"
)

func appointment(staff, date, start, end string) *model.Appointment {
	return &model.Appointment{
		ClientID:  "client-1",
		ServiceID: "svc-1",
		StaffID:   staff,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Status:    model.StatusPending,
	}
}

func TestMongoAppointmentRepository_ActiveStartIsUnique(t *testing.T) {
	m := testutil.NewMongoHelper(t)
	repo := repository.NewMongoAppointmentRepository(m.Config())
	ctx := context.Background()

	first := appointment("staff-1", "2026-11-02", "10:00", "10:30")
	require.NoError(t, repo.Create(ctx, first))
	require.NotEmpty(t, first.ID)

	err := repo.Create(ctx, appointment("staff-1", "2026-11-02", "10:00", "11:00"))
	assert.ErrorIs(t, err, appterrors.ErrDuplicate)

	require.NoError(t, repo.UpdateStatus(ctx, first.ID, model.StatusPending, model.StatusCancelled, "tester"))
	assert.NoError(t, repo.Create(ctx, appointment("staff-1", "2026-11-02", "10:00", "11:00")))

	active, err := repo.FindActiveByStaffDate(ctx, "staff-1", "2026-11-02")
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestMongoAppointmentRepository_StaffLessRowsAreNotUnique(t *testing.T) {
	m := testutil.NewMongoHelper(t)
	repo := repository.NewMongoAppointmentRepository(m.Config())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, appointment("", "2026-11-02", "10:00", "10:30")))
	second := appointment("", "2026-11-02", "10:00", "10:30")
	second.ClientID = "client-2"
	require.NoError(t, repo.Create(ctx, second))

	second.Date = "2026-11-03"
	second.Status = model.StatusRescheduled
	require.NoError(t, repo.Reschedule(ctx, second.ID, model.StatusPending, second))

	got, err := repo.FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Empty(t, got.StaffID)
	assert.Equal(t, "2026-11-03", got.Date)
}

func TestMongoAppointmentRepository_StaleStatus(t *testing.T) {
	m := testutil.NewMongoHelper(t)
	repo := repository.NewMongoAppointmentRepository(m.Config())
	ctx := context.Background()

	a := appointment("staff-1", "2026-11-02", "10:00", "10:30")
	require.NoError(t, repo.Create(ctx, a))

	err := repo.UpdateStatus(ctx, a.ID, model.StatusConfirmed, model.StatusCompleted, "tester")
	assert.ErrorIs(t, err, appterrors.ErrStaleStatus)
}

func TestMongoAppointmentRepository_RecurringInstances(t *testing.T) {
	m := testutil.NewMongoHelper(t)
	repo := repository.NewMongoAppointmentRepository(m.Config())
	ctx := context.Background()

	dates := []string{"2026-11-02", "2026-11-09", "2026-11-16"}
	for _, d := range dates {
		a := appointment("staff-1", d, "10:00", "10:30")
		a.RecurringID = "rule-1"
		a.IsRecurringInstance = true
		require.NoError(t, repo.Create(ctx, a))
	}

	dup := appointment("staff-2", "2026-11-09", "10:00", "10:30")
	dup.RecurringID = "rule-1"
	assert.ErrorIs(t, repo.Create(ctx, dup), appterrors.ErrDuplicate)

	exists, err := repo.ExistsOccurrence(ctx, "rule-1", "2026-11-09", "10:00")
	require.NoError(t, err)
	assert.True(t, exists)

	count, err := repo.CountByRecurring(ctx, "rule-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	deleted, err := repo.DeleteFutureInstances(ctx, "rule-1", "2026-11-09")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Equal(t, int64(2), m.CountDocuments(t, repository.CollectionName))
}
