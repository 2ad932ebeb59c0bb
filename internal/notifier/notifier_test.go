package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffbook/internal/events"
	apperrors "staffbook/pkg/errors"
	"staffbook/pkg/kafka"
	"staffbook/pkg/logger"
	"staffbook/pkg/model"
)

type stubMatcher struct {
	slots []*model.FreedSlot
	err   error
}

func (s *stubMatcher) Match(_ context.Context, slot *model.FreedSlot, actor string) (*model.MatchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.slots = append(s.slots, slot)
	return &model.MatchResult{Notified: []*model.WaitlistEntry{{ID: "e1"}}}, nil
}

func message(t *testing.T, eventType string, value any) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage().
		WithKey("staff:staff-1").
		WithEventType(eventType).
		WithValue(value).
		Build()
	require.NoError(t, err)
	return msg
}

func cancelled() events.AppointmentEvent {
	return events.AppointmentEvent{
		Appointment:    &model.Appointment{ID: "a1", StaffID: "staff-1", Status: model.StatusCancelled},
		PreviousStatus: model.StatusConfirmed,
		FreedSlot:      &model.FreedSlot{ServiceID: "svc-1", StaffID: "staff-1", Date: "2024-03-04", StartTime: "10:00", EndTime: "11:00"},
	}
}

func TestHandle_CancelledRunsMatch(t *testing.T) {
	m := &stubMatcher{}
	h := NewHandler(m, logger.Nop())

	require.NoError(t, h.Handle(context.Background(), message(t, events.AppointmentCancelled, cancelled())))
	require.Len(t, m.slots, 1)
	assert.Equal(t, "svc-1", m.slots[0].ServiceID)
	assert.Equal(t, "10:00", m.slots[0].StartTime)
}

func TestHandle_IgnoresOtherEvents(t *testing.T) {
	m := &stubMatcher{}
	h := NewHandler(m, logger.Nop())

	require.NoError(t, h.Handle(context.Background(), message(t, events.AppointmentCreated, cancelled())))
	assert.Empty(t, m.slots)

	e := cancelled()
	e.FreedSlot = nil
	require.NoError(t, h.Handle(context.Background(), message(t, events.AppointmentRescheduled, e)))
	assert.Empty(t, m.slots)
}

func TestHandle_ErrorClassification(t *testing.T) {
	h := NewHandler(&stubMatcher{}, logger.Nop())

	bad := kafka.Message{Value: []byte("{not json"), Headers: map[string]string{kafka.HeaderEventType: events.AppointmentCancelled}}
	err := h.Handle(context.Background(), bad)
	require.Error(t, err)
	assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))

	e := cancelled()
	e.FreedSlot = nil
	err = h.Handle(context.Background(), message(t, events.AppointmentCancelled, e))
	assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))

	outage := NewHandler(&stubMatcher{err: apperrors.Internal("Failed to load waitlist entries", errors.New("connection refused"))}, logger.Nop())
	err = outage.Handle(context.Background(), message(t, events.AppointmentCancelled, cancelled()))
	assert.Equal(t, kafka.ErrorTypeTransient, kafka.ClassifyError(err))

	invalid := NewHandler(&stubMatcher{err: apperrors.Validation("Freed slot validation failed", nil)}, logger.Nop())
	err = invalid.Handle(context.Background(), message(t, events.AppointmentCancelled, cancelled()))
	assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
}
