package kafka

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("staff-1").
		WithValue(map[string]string{"appointment_id": "a1"}).
		WithEventType("appointment.created").
		WithActor("user-7").
		WithCorrelationID("").
		WithSource("scheduling").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "staff-1", msg.Key)
	assert.JSONEq(t, `{"appointment_id":"a1"}`, string(msg.Value))
	assert.Equal(t, "appointment.created", msg.GetEventType())
	assert.Equal(t, "user-7", msg.GetActor())
	assert.NotEmpty(t, msg.GetEventID())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])
	_, hasCorrelation := msg.Headers[HeaderCorrelationID]
	assert.False(t, hasCorrelation)
}

func TestMessageBuilder_Errors(t *testing.T) {
	_, err := NewMessage().WithValue("x").Build()
	assert.ErrorIs(t, err, ErrEmptyKey)

	_, err = NewMessage().WithKey("k").Build()
	assert.ErrorIs(t, err, ErrEmptyValue)

	_, err = NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestMessage_RetryCount(t *testing.T) {
	msg := Message{}
	assert.Equal(t, 0, msg.GetRetryCount())

	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	assert.Equal(t, 12, msg.GetRetryCount())
	assert.Equal(t, "12", msg.Headers[HeaderRetryCount])
}

func TestMessage_DecodeValueIsPermanent(t *testing.T) {
	msg := Message{Value: []byte("{not json")}

	var v map[string]any
	err := msg.DecodeValue(&v)
	require.Error(t, err)
	assert.Equal(t, ErrorTypePermanent, ClassifyError(err))

	var kerr *KafkaError
	assert.True(t, errors.As(err, &kerr))
}

func TestMessage_CloneIsolatesHeaders(t *testing.T) {
	msg := Message{Headers: map[string]string{"a": "1"}}
	c := msg.clone()
	c.Headers["b"] = "2"

	_, ok := msg.Headers["b"]
	assert.False(t, ok)
}
