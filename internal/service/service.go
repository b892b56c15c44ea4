// Package service implements the study session engine: it validates
// requests, drives the session state machine, persists the result and
// computes results and recommendations on completion.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/examprep/backend/internal/apperr"
	"github.com/examprep/backend/internal/domain/catalog"
	"github.com/examprep/backend/internal/domain/questionbank"
	"github.com/examprep/backend/internal/domain/session"
	"github.com/examprep/backend/internal/event"
	"github.com/examprep/backend/internal/metrics"
	"github.com/examprep/backend/internal/selection"
	"github.com/examprep/backend/internal/store"
)

type SessionStore interface {
	CreateSession(ctx context.Context, s *session.Session) error
	GetSession(ctx context.Context, id string) (*session.Session, error)
	UpdateSession(ctx context.Context, s *session.Session) error
	DeleteSession(ctx context.Context, id string) (bool, error)
}

type QuestionCorpus interface {
	GetQuestion(ctx context.Context, id string) (*questionbank.Question, error)
	QuestionsByExam(ctx context.Context, providerID, examID string, f questionbank.Filter) ([]questionbank.Question, error)
}

type Catalog interface {
	GetProvider(ctx context.Context, id string) (*catalog.Provider, error)
	GetExam(ctx context.Context, providerID, examID string) (*catalog.Exam, error)
	GetTopic(ctx context.Context, providerID, examID, topicID string) (*catalog.Topic, error)
}

// Dependencies are the collaborators of a SessionService. Sessions,
// Questions and Catalog are required; the rest have defaults.
type Dependencies struct {
	Sessions  SessionStore
	Questions QuestionCorpus
	Catalog   Catalog

	Selector      *selection.Selector
	Events        event.Publisher
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
	Now           func() time.Time
	LookupWorkers int
}

type SessionService struct {
	sessions  SessionStore
	questions QuestionCorpus
	catalog   Catalog
	selector  *selection.Selector
	events    event.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
	workers   int
}

const defaultLookupWorkers = 4

func NewSessionService(deps Dependencies) *SessionService {
	s := &SessionService{
		sessions:  deps.Sessions,
		questions: deps.Questions,
		catalog:   deps.Catalog,
		selector:  deps.Selector,
		events:    deps.Events,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		now:       deps.Now,
		workers:   deps.LookupWorkers,
	}
	if s.selector == nil {
		s.selector = selection.NewSeeded(0)
	}
	if s.events == nil {
		s.events = event.Nop{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.workers <= 0 {
		s.workers = defaultLookupWorkers
	}
	return s
}

// load fetches a session and maps store errors into the engine's taxonomy.
func (s *SessionService) load(ctx context.Context, id string) (*session.Session, error) {
	sess, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return nil, sessionStoreError(err, id)
	}
	return sess, nil
}

func (s *SessionService) save(ctx context.Context, sess *session.Session) error {
	if err := s.sessions.UpdateSession(ctx, sess); err != nil {
		return sessionStoreError(err, sess.ID)
	}
	return nil
}

func sessionStoreError(err error, id string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("Session %s not found", id)
	case errors.Is(err, store.ErrConflict):
		return apperr.Conflict("Session %s was modified concurrently, reload and retry", id)
	case errors.Is(err, store.ErrAlreadyExists):
		return apperr.Conflict("Session %s already exists", id)
	default:
		return apperr.Dependency(err, "session store")
	}
}

// mutate loads a session, applies fn and writes the result back.
func (s *SessionService) mutate(ctx context.Context, id string, action session.Action, fn func(*session.Session, time.Time) error) (*session.Session, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess, s.now()); err != nil {
		if apperr.KindOf(err) == apperr.KindInvalidTransition {
			s.metrics.TransitionRejected(string(action))
			s.logger.Info("transition rejected", "session_id", id, "action", action, "status", sess.Status)
		}
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SessionService) publish(ctx context.Context, eventType string, sess *session.Session, mod func(*event.SessionEvent)) {
	e := &event.SessionEvent{
		EventType:      eventType,
		SessionID:      sess.ID,
		ProviderID:     sess.ProviderID,
		ExamID:         sess.ExamID,
		Status:         string(sess.Status),
		TotalQuestions: sess.TotalQuestions(),
		Adaptive:       sess.Adaptive,
		Score:          sess.Score,
		OccurredAt:     s.now(),
	}
	if mod != nil {
		mod(e)
	}
	if err := s.events.PublishSessionEvent(ctx, e); err != nil {
		s.logger.Warn("failed to publish event", "type", eventType, "session_id", sess.ID, "error", err)
	}
}
