package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffbook/pkg/kafka"
	"staffbook/pkg/logger"
	"staffbook/pkg/model"
)

type recordingProducer struct {
	msgs []kafka.Message
	err  error
}

func (p *recordingProducer) Publish(_ context.Context, msg kafka.Message) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

func TestAppointmentKey(t *testing.T) {
	assert.Equal(t, "staff:s1", AppointmentKey(&model.Appointment{StaffID: "s1", ClientID: "c1"}))
	assert.Equal(t, "client:c1", AppointmentKey(&model.Appointment{ClientID: "c1"}))
}

func TestPublishAppointment(t *testing.T) {
	appts := &recordingProducer{}
	p := &kafkaPublisher{appointments: appts, waitlist: &recordingProducer{}, log: logger.Nop()}

	appt := &model.Appointment{ID: "a1", StaffID: "s1", ClientID: "c1", ServiceID: "svc", Date: "2024-01-01", StartTime: "10:00", EndTime: "11:00"}
	freed := &model.FreedSlot{ServiceID: "svc", StaffID: "s1", Date: "2024-01-01", StartTime: "10:00", EndTime: "11:00"}

	err := p.PublishAppointment(context.Background(), AppointmentCancelled, AppointmentEvent{
		Appointment:    appt,
		PreviousStatus: model.StatusConfirmed,
		FreedSlot:      freed,
		Actor:          "desk",
	})
	require.NoError(t, err)
	require.Len(t, appts.msgs, 1)

	msg := appts.msgs[0]
	assert.Equal(t, "staff:s1", msg.Key)
	assert.Equal(t, AppointmentCancelled, msg.GetEventType())
	assert.Equal(t, "desk", msg.GetActor())
	assert.Equal(t, "a1", msg.GetCorrelationID())

	var decoded AppointmentEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, *freed, *decoded.FreedSlot)
	assert.False(t, decoded.OccurredAt.IsZero())
}

func TestPublishWaitlist_PropagatesError(t *testing.T) {
	waitlist := &recordingProducer{err: errors.New("broker down")}
	p := &kafkaPublisher{appointments: &recordingProducer{}, waitlist: waitlist, log: logger.Nop()}

	err := p.PublishWaitlist(context.Background(), WaitlistNotified, WaitlistEvent{
		Entry: &model.WaitlistEntry{ID: "w1", ClientID: "c1"},
	})
	assert.EqualError(t, err, "broker down")
	require.Len(t, waitlist.msgs, 1)
	assert.Equal(t, "client:c1", waitlist.msgs[0].Key)
}

func TestNopPublisher(t *testing.T) {
	p := NewNopPublisher(logger.Nop())
	assert.NoError(t, p.PublishAppointment(context.Background(), AppointmentCreated, AppointmentEvent{Appointment: &model.Appointment{}}))
	assert.NoError(t, p.PublishWaitlist(context.Background(), WaitlistNotified, WaitlistEvent{Entry: &model.WaitlistEntry{}}))
}
