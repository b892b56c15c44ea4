package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/examprep/backend/internal/domain/questionbank"
	"github.com/examprep/backend/internal/domain/session"
)

// ============================================================================
// Sessions
// ============================================================================

func (s *SQLStore) CreateSession(ctx context.Context, sess *session.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, s.q("SELECT 1 FROM sessions WHERE id = ?"), sess.ID).Scan(&exists)
	if err == nil {
		return ErrAlreadyExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO sessions (id, provider_id, exam_id, status, current_question_index, correct_answers,
			score, time_limit_seconds, adaptive, start_time, end_time, created_at, updated_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		sess.ID, sess.ProviderID, sess.ExamID, string(sess.Status), sess.CurrentQuestionIndex, sess.CorrectAnswers,
		nullInt(sess.Score), nullInt(sess.TimeLimitSeconds), boolInt(sess.Adaptive),
		toMillis(sess.StartTime), nullMillis(sess.EndTime), toMillis(sess.CreatedAt), toMillis(sess.UpdatedAt), sess.Version,
	)
	if err != nil {
		return err
	}

	if err := s.insertSessionQuestions(ctx, tx, sess); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) insertSessionQuestions(ctx context.Context, tx execer, sess *session.Session) error {
	for i, q := range sess.Questions {
		var userAnswer sql.NullString
		if q.UserAnswer != nil {
			userAnswer = sql.NullString{String: mustJSON(q.UserAnswer), Valid: true}
		}
		var isCorrect sql.NullInt64
		if q.IsCorrect != nil {
			isCorrect = sql.NullInt64{Int64: int64(boolInt(*q.IsCorrect)), Valid: true}
		}
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO session_questions (session_id, position, question_id, topic_id, difficulty, correct_answer_json,
				user_answer_json, is_correct, points, time_spent, skipped, marked_for_review, answered_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			sess.ID, i, q.QuestionID, q.TopicID, string(q.Difficulty), mustJSON(q.CorrectAnswer),
			userAnswer, isCorrect, q.Points, q.TimeSpent, boolInt(q.Skipped), boolInt(q.MarkedForReview), nullMillis(q.AnsweredAt),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) GetSession(ctx context.Context, id string) (*session.Session, error) {
	var (
		sess                        session.Session
		status                      string
		score, timeLimit, endTime   sql.NullInt64
		adaptive                    int
		startTime, created, updated int64
	)
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, provider_id, exam_id, status, current_question_index, correct_answers,
			score, time_limit_seconds, adaptive, start_time, end_time, created_at, updated_at, version
		FROM sessions WHERE id = ?`), id).Scan(
		&sess.ID, &sess.ProviderID, &sess.ExamID, &status, &sess.CurrentQuestionIndex, &sess.CorrectAnswers,
		&score, &timeLimit, &adaptive, &startTime, &endTime, &created, &updated, &sess.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	sess.Status = session.Status(status)
	sess.Score = intPtr(score)
	sess.TimeLimitSeconds = intPtr(timeLimit)
	sess.Adaptive = adaptive != 0
	sess.StartTime = fromMillis(startTime)
	sess.EndTime = timePtr(endTime)
	sess.CreatedAt = fromMillis(created)
	sess.UpdatedAt = fromMillis(updated)

	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT question_id, topic_id, difficulty, correct_answer_json, user_answer_json, is_correct,
			points, time_spent, skipped, marked_for_review, answered_at
		FROM session_questions WHERE session_id = ? ORDER BY position`), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			q                   session.SessionQuestion
			difficulty, correct string
			userAnswer          sql.NullString
			isCorrect           sql.NullInt64
			skipped, marked     int
			answeredAt          sql.NullInt64
		)
		if err := rows.Scan(&q.QuestionID, &q.TopicID, &difficulty, &correct, &userAnswer, &isCorrect,
			&q.Points, &q.TimeSpent, &skipped, &marked, &answeredAt); err != nil {
			return nil, err
		}
		q.Difficulty = questionbank.Difficulty(difficulty)
		if err := json.Unmarshal([]byte(correct), &q.CorrectAnswer); err != nil {
			return nil, err
		}
		if userAnswer.Valid {
			if err := json.Unmarshal([]byte(userAnswer.String), &q.UserAnswer); err != nil {
				return nil, err
			}
			if q.UserAnswer == nil {
				q.UserAnswer = []string{}
			}
		}
		if isCorrect.Valid {
			v := isCorrect.Int64 != 0
			q.IsCorrect = &v
		}
		q.Skipped = skipped != 0
		q.MarkedForReview = marked != 0
		q.AnsweredAt = timePtr(answeredAt)
		sess.Questions = append(sess.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &sess, nil
}

// UpdateSession writes sess back if its version still matches the stored
// one, then bumps sess.Version. It returns ErrNotFound when the session is
// gone and ErrConflict when another writer got there first.
func (s *SQLStore) UpdateSession(ctx context.Context, sess *session.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, s.q(`
		UPDATE sessions SET status = ?, current_question_index = ?, correct_answers = ?, score = ?,
			time_limit_seconds = ?, adaptive = ?, end_time = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`),
		string(sess.Status), sess.CurrentQuestionIndex, sess.CorrectAnswers, nullInt(sess.Score),
		nullInt(sess.TimeLimitSeconds), boolInt(sess.Adaptive), nullMillis(sess.EndTime), toMillis(sess.UpdatedAt),
		sess.ID, sess.Version,
	)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, s.q("SELECT 1 FROM sessions WHERE id = ?"), sess.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrConflict
	}

	if _, err := tx.ExecContext(ctx, s.q("DELETE FROM session_questions WHERE session_id = ?"), sess.ID); err != nil {
		return err
	}
	if err := s.insertSessionQuestions(ctx, tx, sess); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	sess.Version++
	return nil
}

// DeleteSession removes the session and its questions. It reports whether
// a row was deleted.
func (s *SQLStore) DeleteSession(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.q("DELETE FROM session_questions WHERE session_id = ?"), id); err != nil {
		return false, err
	}
	result, err := tx.ExecContext(ctx, s.q("DELETE FROM sessions WHERE id = ?"), id)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}
