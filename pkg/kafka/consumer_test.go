package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "staffbook/pkg/errors"
	"staffbook/pkg/logger"
)

type fakeReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []kafka.Message
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pending) == 0 {
		r.cancel()
		return kafka.Message{}, context.Canceled
	}
	m := r.pending[0]
	r.pending = r.pending[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func testConsumer(handler MessageHandler, dlq *fakeWriter) *Consumer {
	c := &Consumer{
		topic:      "appointment-events",
		groupID:    "waitlist-notifier",
		maxRetries: 2,
		handler:    handler,
		log:        logger.Nop(),
	}
	if dlq != nil {
		c.dlqWriter = dlq
	}
	return c
}

func TestConsumer_ProcessSuccess(t *testing.T) {
	calls := 0
	c := testConsumer(func(context.Context, Message) error {
		calls++
		return nil
	}, &fakeWriter{})

	require.NoError(t, c.process(context.Background(), Message{Headers: map[string]string{}}))
	assert.Equal(t, 1, calls)
}

func TestConsumer_RetriesTransientThenDeadLetters(t *testing.T) {
	calls := 0
	dlq := &fakeWriter{}
	c := testConsumer(func(context.Context, Message) error {
		calls++
		return NewTransientError("store", io.ErrUnexpectedEOF)
	}, dlq)

	err := c.process(context.Background(), Message{Key: "k", Headers: map[string]string{}})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	require.Len(t, dlq.messages, 1)
	assert.Equal(t, "waitlist-notifier", header(dlq.messages[0], HeaderDLQGroup))
	assert.Equal(t, "2", header(dlq.messages[0], HeaderRetryCount))
}

func TestConsumer_TransientRecovers(t *testing.T) {
	calls := 0
	dlq := &fakeWriter{}
	c := testConsumer(func(context.Context, Message) error {
		calls++
		if calls < 2 {
			return apperrors.Internal("Failed to load", errors.New("reset"))
		}
		return nil
	}, dlq)

	require.NoError(t, c.process(context.Background(), Message{Headers: map[string]string{}}))
	assert.Equal(t, 2, calls)
	assert.Empty(t, dlq.messages)
}

func TestConsumer_PermanentSkipsRetry(t *testing.T) {
	calls := 0
	dlq := &fakeWriter{}
	c := testConsumer(func(context.Context, Message) error {
		calls++
		return NewPermanentError("bad payload", nil)
	}, dlq)

	require.Error(t, c.process(context.Background(), Message{Key: "k", Headers: map[string]string{}}))
	assert.Equal(t, 1, calls)
	assert.Len(t, dlq.messages, 1)
}

func TestConsumer_BusinessErrorAcknowledged(t *testing.T) {
	dlq := &fakeWriter{}
	c := testConsumer(func(context.Context, Message) error {
		return apperrors.BookingConflict("taken", nil)
	}, dlq)

	assert.NoError(t, c.process(context.Background(), Message{Headers: map[string]string{}}))
	assert.Empty(t, dlq.messages)
}

func TestConsumer_StartCommitsEveryMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		pending: []kafka.Message{
			{Key: []byte("a"), Offset: 1},
			{Key: []byte("b"), Offset: 2},
		},
		cancel: cancel,
	}

	var seen []string
	c := testConsumer(func(_ context.Context, m Message) error {
		seen = append(seen, m.Key)
		if m.Key == "b" {
			return NewPermanentError("bad", nil)
		}
		return nil
	}, &fakeWriter{})
	c.reader = reader

	err := c.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a", "b"}, seen)
	assert.Len(t, reader.committed, 2)
}

func TestConsumer_MiddlewareWrapsHandler(t *testing.T) {
	var order []string
	c := testConsumer(func(context.Context, Message) error {
		order = append(order, "handler")
		return nil
	}, nil)
	c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		order = append(order, "mw")
		return next(ctx, msg)
	})

	require.NoError(t, c.process(context.Background(), Message{Headers: map[string]string{}}))
	assert.Equal(t, []string{"mw", "handler"}, order)
}
