package service

import (
	"context"
	"errors"
	"time"

	"github.com/examprep/backend/internal/analysis"
	"github.com/examprep/backend/internal/apperr"
	"github.com/examprep/backend/internal/domain/questionbank"
	"github.com/examprep/backend/internal/domain/session"
	"github.com/examprep/backend/internal/event"
	"github.com/examprep/backend/internal/store"
)

// CreateSession validates the request against the catalog, selects the
// questions and stores a new active session.
func (s *SessionService) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionView, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCatalog(ctx, req); err != nil {
		return nil, err
	}

	pool, err := s.questions.QuestionsByExam(ctx, req.ProviderID, req.ExamID, req.filter())
	if err != nil {
		return nil, apperr.Dependency(err, "question corpus")
	}
	if len(pool) == 0 {
		return nil, apperr.PreconditionFailed("No questions available for the selected criteria")
	}

	cfg := req.config()
	var selected []questionbank.Question
	if cfg.Adaptive {
		selected = s.selector.SelectAdaptive(pool, cfg.QuestionCount)
	} else {
		selected = s.selector.Select(pool, cfg.QuestionCount)
	}

	sess, err := session.New(req.ProviderID, req.ExamID, selected, cfg, s.now())
	if err != nil {
		return nil, apperr.PreconditionFailed("No questions available for the selected criteria")
	}
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return nil, sessionStoreError(err, sess.ID)
	}

	s.metrics.SessionCreated(sess.Adaptive)
	s.logger.Info("session created",
		"session_id", sess.ID,
		"provider_id", sess.ProviderID,
		"exam_id", sess.ExamID,
		"questions", sess.TotalQuestions(),
		"pool", len(pool),
		"adaptive", sess.Adaptive,
	)
	s.publish(ctx, event.TypeSessionCreated, sess, nil)

	details := make([]*questionbank.Question, len(selected))
	for i := range selected {
		details[i] = &selected[i]
	}
	return s.view(ctx, sess, details), nil
}

func (s *SessionService) checkCatalog(ctx context.Context, req CreateSessionRequest) error {
	if _, err := s.catalog.GetProvider(ctx, req.ProviderID); err != nil {
		return catalogError(err, "Provider %s not found", req.ProviderID)
	}
	if _, err := s.catalog.GetExam(ctx, req.ProviderID, req.ExamID); err != nil {
		return catalogError(err, "Exam %s not found for provider %s", req.ExamID, req.ProviderID)
	}
	for _, t := range req.TopicIDs {
		if _, err := s.catalog.GetTopic(ctx, req.ProviderID, req.ExamID, t); err != nil {
			return catalogError(err, "Topic %s not found for exam %s", t, req.ExamID)
		}
	}
	return nil
}

func catalogError(err error, format string, args ...any) error {
	if isNotFound(err) {
		return apperr.NotFound(format, args...)
	}
	return apperr.Dependency(err, "catalog")
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound) || apperr.KindOf(err) == apperr.KindNotFound
}

func (s *SessionService) GetSession(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, sess, nil), nil
}

// UpdateSession applies one state-machine action.
func (s *SessionService) UpdateSession(ctx context.Context, id string, req UpdateSessionRequest) (*SessionView, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	action, _ := session.ParseAction(req.Action)

	var (
		sess *session.Session
		err  error
	)
	switch action {
	case session.ActionAnswer:
		var res *AnswerResult
		res, err = s.SubmitAnswer(ctx, id, req.answer())
		if res != nil {
			sess = res.Session
		}
	case session.ActionComplete:
		var done *completed
		done, err = s.complete(ctx, id)
		if done != nil {
			return s.view(ctx, done.session, done.details), nil
		}
	case session.ActionDelete:
		sess, _, err = s.deleteSession(ctx, id)
	case session.ActionPause:
		sess, err = s.mutate(ctx, id, action, (*session.Session).Pause)
	case session.ActionResume:
		sess, err = s.mutate(ctx, id, action, (*session.Session).Resume)
	case session.ActionNext:
		sess, err = s.mutate(ctx, id, action, (*session.Session).Next)
	case session.ActionPrevious:
		sess, err = s.mutate(ctx, id, action, (*session.Session).Previous)
	case session.ActionMarkForReview:
		sess, err = s.mutate(ctx, id, action, func(sess *session.Session, now time.Time) error {
			_, err := sess.ToggleReview(req.QuestionID, now)
			return err
		})
	}
	if err != nil {
		return nil, err
	}
	return s.view(ctx, sess, nil), nil
}

// SubmitAnswer records an answer or skip for one question.
func (s *SessionService) SubmitAnswer(ctx context.Context, id string, req SubmitAnswerRequest) (*AnswerResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var answered session.SessionQuestion
	sess, err := s.mutate(ctx, id, session.ActionAnswer, func(sess *session.Session, now time.Time) error {
		q, err := sess.Answer(req.input(), now)
		if err != nil {
			return err
		}
		answered = *q
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case answered.Correct():
		s.metrics.AnswerSubmitted("correct")
	case answered.Answered():
		s.metrics.AnswerSubmitted("incorrect")
	default:
		s.metrics.AnswerSubmitted("skipped")
	}

	return &AnswerResult{
		Session:  sess,
		Question: &answered,
		Progress: sess.Progress(s.now()),
	}, nil
}

type completed struct {
	session *session.Session
	details []*questionbank.Question
	result  *Completion
}

// CompleteSession finalizes the session and returns its results and
// recommendations.
func (s *SessionService) CompleteSession(ctx context.Context, id string) (*Completion, error) {
	done, err := s.complete(ctx, id)
	if err != nil {
		return nil, err
	}
	return done.result, nil
}

func (s *SessionService) complete(ctx context.Context, id string) (*completed, error) {
	sess, err := s.mutate(ctx, id, session.ActionComplete, (*session.Session).Complete)
	if err != nil {
		return nil, err
	}

	details := s.questionDetails(ctx, sess)
	result := s.analyze(sess, details)

	s.metrics.SessionCompleted(result.DetailedResults.AccuracyPercentage)
	s.logger.Info("session completed",
		"session_id", sess.ID,
		"score", result.Summary.Score,
		"accuracy", result.DetailedResults.AccuracyPercentage,
		"recommendation", result.Recommendations.OverallRecommendation,
	)
	s.publish(ctx, event.TypeSessionCompleted, sess, func(e *event.SessionEvent) {
		acc := result.DetailedResults.AccuracyPercentage
		e.Accuracy = &acc
		e.Recommendation = string(result.Recommendations.OverallRecommendation)
	})

	return &completed{session: sess, details: details, result: result}, nil
}

func (s *SessionService) analyze(sess *session.Session, details []*questionbank.Question) *Completion {
	results := analysis.GenerateResults(sess, details)
	return &Completion{
		Summary:         summarize(sess, results, sess.Progress(s.now())),
		DetailedResults: results,
		Recommendations: analysis.GenerateRecommendations(sess, results),
	}
}

// GetResults recomputes the results of a completed session.
func (s *SessionService) GetResults(ctx context.Context, id string) (*Completion, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status != session.StatusCompleted {
		return nil, apperr.PreconditionFailed("Session %s is not completed", id)
	}
	return s.analyze(sess, s.questionDetails(ctx, sess)), nil
}

// DeleteSession abandons an active or paused session, and removes an
// abandoned one for good. Completed sessions are kept.
func (s *SessionService) DeleteSession(ctx context.Context, id string) (*DeleteResult, error) {
	_, hard, err := s.deleteSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if hard {
		return &DeleteResult{Success: true, Message: "Session permanently deleted"}, nil
	}
	return &DeleteResult{Success: true, Message: "Session abandoned"}, nil
}

func (s *SessionService) deleteSession(ctx context.Context, id string) (*session.Session, bool, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, false, err
	}
	hard, err := sess.Delete(s.now())
	if err != nil {
		s.metrics.TransitionRejected(string(session.ActionDelete))
		return nil, false, err
	}
	if hard {
		ok, err := s.sessions.DeleteSession(ctx, id)
		if err != nil {
			return nil, false, apperr.Dependency(err, "session store")
		}
		if !ok {
			return nil, false, apperr.NotFound("Session %s not found", id)
		}
		s.logger.Info("session deleted", "session_id", id)
		return sess, true, nil
	}

	if err := s.save(ctx, sess); err != nil {
		return nil, false, err
	}
	s.metrics.SessionFinished(string(session.StatusAbandoned))
	s.logger.Info("session abandoned", "session_id", id, "answered", sess.TotalQuestions()-sess.Unanswered())
	s.publish(ctx, event.TypeSessionAbandoned, sess, nil)
	return sess, false, nil
}
