// Package event publishes session lifecycle events to RabbitMQ.
package event

import (
	"context"
	"time"
)

const (
	TypeSessionCreated   = "session.created"
	TypeSessionCompleted = "session.completed"
	TypeSessionAbandoned = "session.abandoned"
)

// SessionEvent is the payload of every session lifecycle event. The event
// type doubles as the routing key.
type SessionEvent struct {
	EventType      string    `json:"event_type"`
	SessionID      string    `json:"session_id"`
	ProviderID     string    `json:"provider_id"`
	ExamID         string    `json:"exam_id"`
	Status         string    `json:"status"`
	TotalQuestions int       `json:"total_questions"`
	Adaptive       bool      `json:"adaptive"`
	Score          *int      `json:"score,omitempty"`
	Accuracy       *float64  `json:"accuracy,omitempty"`
	Recommendation string    `json:"recommendation,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type Publisher interface {
	PublishSessionEvent(ctx context.Context, e *SessionEvent) error
	Close() error
}

// Nop discards events. It is used when no broker is configured.
type Nop struct{}

func (Nop) PublishSessionEvent(context.Context, *SessionEvent) error { return nil }
func (Nop) Close() error                                             { return nil }
