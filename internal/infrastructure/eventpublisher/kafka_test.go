package eventpublisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisherWritesKeyedEnvelope(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(w)
	createdAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), &domain.OutboxEvent{
		ID:            "evt-1",
		AggregateID:   "entry-1",
		AggregateType: domain.AggregateTypeEntry,
		EventType:     domain.EventTypeEntryCreated,
		Payload:       map[string]any{"amount": "10.50"},
		CreatedAt:     createdAt,
	})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "entry-1", string(msg.Key))
	assert.Equal(t, createdAt, msg.Time)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, domain.EventTypeEntryCreated, string(msg.Headers[1].Value))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, "evt-1", env.ID)
	assert.Equal(t, domain.AggregateTypeEntry, env.AggregateType)
	assert.Equal(t, "10.50", env.Payload["amount"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisherWrapsWriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := NewKafkaPublisherWithWriter(&fakeWriter{err: boom})

	err := p.Publish(context.Background(), &domain.OutboxEvent{ID: "evt-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "evt-1")
}
