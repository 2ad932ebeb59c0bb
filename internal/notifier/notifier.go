// Package notifier matches waitlist entries against slots freed by
// appointment events.
package notifier

import (
	"context"

	"staffbook/internal/events"
	"staffbook/pkg/kafka"
	"staffbook/pkg/logger"
	"staffbook/pkg/model"
)

// Actor is stamped on waitlist events raised by the notifier.
const Actor = "waitlist-notifier"

type Matcher interface {
	Match(ctx context.Context, slot *model.FreedSlot, actor string) (*model.MatchResult, error)
}

type Handler struct {
	matcher Matcher
	log     *logger.Logger
}

func NewHandler(matcher Matcher, log *logger.Logger) *Handler {
	return &Handler{matcher: matcher, log: log}
}

// Handle runs a waitlist match for the slot an appointment event released.
// Events that free nothing are acknowledged and dropped.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	switch msg.GetEventType() {
	case events.AppointmentCancelled, events.AppointmentRescheduled:
	default:
		return nil
	}

	var e events.AppointmentEvent
	if err := msg.DecodeValue(&e); err != nil {
		return err
	}
	if e.FreedSlot == nil {
		if msg.GetEventType() == events.AppointmentCancelled {
			return kafka.NewPermanentError("cancellation event carries no freed slot", nil)
		}
		return nil
	}

	result, err := h.matcher.Match(ctx, e.FreedSlot, Actor)
	if err != nil {
		return err
	}

	h.log.Info("Freed slot matched against waitlist",
		"event_id", msg.GetEventID(),
		"event_type", msg.GetEventType(),
		"service_id", e.FreedSlot.ServiceID,
		"staff_id", e.FreedSlot.StaffID,
		"date", e.FreedSlot.Date,
		"notified", len(result.Notified),
		"failed", len(result.Failed),
	)
	return nil
}
