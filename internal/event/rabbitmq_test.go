package event_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examprep/backend/internal/event"
)

type published struct {
	exchange, key string
	msg           amqp091.Publishing
}

type fakeChannel struct {
	sent   []published
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange, key, msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitPublisher_PublishSessionEvent(t *testing.T) {
	ch := &fakeChannel{}
	p := event.NewWithChannel(ch, "study.sessions", slog.New(slog.NewTextHandler(io.Discard, nil)))

	score := 3
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	err := p.PublishSessionEvent(context.Background(), &event.SessionEvent{
		EventType:  event.TypeSessionCompleted,
		SessionID:  "s1",
		ProviderID: "aws",
		ExamID:     "saa-c03",
		Status:     "completed",
		Score:      &score,
		OccurredAt: at,
	})
	require.NoError(t, err)
	require.Len(t, ch.sent, 1)

	got := ch.sent[0]
	assert.Equal(t, "study.sessions", got.exchange)
	assert.Equal(t, "session.completed", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp091.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, at, got.msg.Timestamp)

	var body event.SessionEvent
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, "s1", body.SessionID)
	require.NotNil(t, body.Score)
	assert.Equal(t, 3, *body.Score)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestRabbitPublisher_Error(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := event.NewWithChannel(ch, "study.sessions", slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := p.PublishSessionEvent(context.Background(), &event.SessionEvent{EventType: event.TypeSessionCreated})
	assert.ErrorContains(t, err, "channel closed")
}
