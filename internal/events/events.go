// Package events publishes appointment and waitlist events to Kafka.
package events

import (
	"context"
	"time"

	"staffbook/pkg/kafka"
	"staffbook/pkg/logger"
	"staffbook/pkg/model"
)

const (
	AppointmentCreated       = "appointment.created"
	AppointmentStatusChanged = "appointment.status_changed"
	AppointmentRescheduled   = "appointment.rescheduled"
	AppointmentCancelled     = "appointment.cancelled"

	WaitlistNotified  = "waitlist.notified"
	WaitlistConverted = "waitlist.converted"

	Source        = "staffbook"
	SchemaVersion = "1"
)

type AppointmentEvent struct {
	Appointment    *model.Appointment      `json:"appointment"`
	PreviousStatus model.AppointmentStatus `json:"previous_status,omitempty"`
	FreedSlot      *model.FreedSlot        `json:"freed_slot,omitempty"`
	Actor          string                  `json:"actor,omitempty"`
	OccurredAt     time.Time               `json:"occurred_at"`
}

type WaitlistEvent struct {
	Entry      *model.WaitlistEntry `json:"entry"`
	Slot       *model.FreedSlot     `json:"slot,omitempty"`
	Actor      string               `json:"actor,omitempty"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// Publisher hands events to the broker. Callers publish after commit and only
// log failures; a lost event never undoes a booking.
type Publisher interface {
	PublishAppointment(ctx context.Context, eventType string, e AppointmentEvent) error
	PublishWaitlist(ctx context.Context, eventType string, e WaitlistEvent) error
}

type producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaPublisher struct {
	appointments producer
	waitlist     producer
	log          *logger.Logger
}

func NewKafkaPublisher(appointments, waitlist *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{appointments: appointments, waitlist: waitlist, log: log}
}

// AppointmentKey keeps every event of one staff member on one partition.
// Staff-less appointments are keyed by client.
func AppointmentKey(a *model.Appointment) string {
	if a.StaffID != "" {
		return "staff:" + a.StaffID
	}
	return "client:" + a.ClientID
}

func (p *kafkaPublisher) PublishAppointment(ctx context.Context, eventType string, e AppointmentEvent) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	msg, err := kafka.NewMessage().
		WithKey(AppointmentKey(e.Appointment)).
		WithValue(e).
		WithEventType(eventType).
		WithActor(e.Actor).
		WithCorrelationID(e.Appointment.ID).
		WithSource(Source).
		WithSchemaVersion(SchemaVersion).
		Build()
	if err != nil {
		return err
	}
	return p.appointments.Publish(ctx, msg)
}

func (p *kafkaPublisher) PublishWaitlist(ctx context.Context, eventType string, e WaitlistEvent) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	msg, err := kafka.NewMessage().
		WithKey("client:" + e.Entry.ClientID).
		WithValue(e).
		WithEventType(eventType).
		WithActor(e.Actor).
		WithCorrelationID(e.Entry.ID).
		WithSource(Source).
		WithSchemaVersion(SchemaVersion).
		Build()
	if err != nil {
		return err
	}
	return p.waitlist.Publish(ctx, msg)
}

type nopPublisher struct {
	log *logger.Logger
}

// NewNopPublisher is used when events are disabled.
func NewNopPublisher(log *logger.Logger) Publisher {
	return nopPublisher{log: log}
}

func (n nopPublisher) PublishAppointment(_ context.Context, eventType string, e AppointmentEvent) error {
	n.log.Debug("Event dropped, publishing disabled", "event_type", eventType, "appointment_id", e.Appointment.ID)
	return nil
}

func (n nopPublisher) PublishWaitlist(_ context.Context, eventType string, e WaitlistEvent) error {
	n.log.Debug("Event dropped, publishing disabled", "event_type", eventType, "entry_id", e.Entry.ID)
	return nil
}
