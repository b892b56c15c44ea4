package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/examprep/backend/internal/domain/catalog"
	"github.com/examprep/backend/internal/domain/questionbank"
)

// ============================================================================
// Questions
// ============================================================================

const questionColumns = `id, provider_id, exam_id, topic_id, text, options_json, correct_answer_json,
	explanation, difficulty, tags_json`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (*questionbank.Question, error) {
	var (
		q                      questionbank.Question
		options, correct, tags string
		difficulty             string
	)
	if err := row.Scan(&q.ID, &q.ProviderID, &q.ExamID, &q.TopicID, &q.Text, &options, &correct,
		&q.Explanation, &difficulty, &tags); err != nil {
		return nil, err
	}
	q.Difficulty = questionbank.Difficulty(difficulty)
	if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(correct), &q.CorrectAnswer); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &q.Tags); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *SQLStore) GetQuestion(ctx context.Context, id string) (*questionbank.Question, error) {
	row := s.db.QueryRowContext(ctx, s.q("SELECT "+questionColumns+" FROM questions WHERE id = ?"), id)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

// QuestionsByExam returns the exam's questions narrowed by f. Topic and
// difficulty are filtered in SQL; search ranking and the limit are applied
// afterwards.
func (s *SQLStore) QuestionsByExam(ctx context.Context, providerID, examID string, f questionbank.Filter) ([]questionbank.Question, error) {
	query := "SELECT " + questionColumns + " FROM questions WHERE provider_id = ? AND exam_id = ?"
	args := []any{providerID, examID}
	if len(f.TopicIDs) > 0 {
		query += " AND topic_id IN (" + strings.TrimSuffix(strings.Repeat("?, ", len(f.TopicIDs)), ", ") + ")"
		for _, t := range f.TopicIDs {
			args = append(args, t)
		}
	}
	if f.Difficulty != "" {
		query += " AND difficulty = ?"
		args = append(args, string(f.Difficulty))
	}
	query += " ORDER BY position, id"

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []questionbank.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return questionbank.Apply(questions, f), nil
}

// ImportBank stores a bank under its provider and exam, creating catalog
// entries as needed. Questions whose ID is already stored are counted as
// duplicates and left untouched.
func (s *SQLStore) ImportBank(ctx context.Context, bank *questionbank.QuestionBank, examName string) (imported, duplicates int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	provider := catalog.NewProvider(bank.ProviderID, "")
	if err := s.saveProvider(ctx, tx, provider); err != nil {
		return 0, 0, err
	}
	exam := catalog.NewExam(bank.ProviderID, bank.ExamID, examName)
	if err := s.saveExam(ctx, tx, exam); err != nil {
		return 0, 0, err
	}

	var offset int
	err = tx.QueryRowContext(ctx, s.q("SELECT COUNT(*) FROM questions WHERE provider_id = ? AND exam_id = ?"),
		bank.ProviderID, bank.ExamID).Scan(&offset)
	if err != nil {
		return 0, 0, err
	}

	seenTopics := make(map[string]bool)
	for i, q := range bank.Questions {
		if !seenTopics[q.TopicID] {
			seenTopics[q.TopicID] = true
			topic := catalog.NewTopic(bank.ProviderID, bank.ExamID, q.TopicID, "")
			if err := s.saveTopic(ctx, tx, topic); err != nil {
				return 0, 0, err
			}
		}

		tags := q.Tags
		if tags == nil {
			tags = []string{}
		}
		result, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO questions (id, provider_id, exam_id, topic_id, text, options_json, correct_answer_json,
				explanation, difficulty, tags_json, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING`),
			q.ID, bank.ProviderID, bank.ExamID, q.TopicID, q.Text, mustJSON(q.Options), mustJSON(q.CorrectAnswer),
			q.Explanation, string(q.Difficulty), mustJSON(tags), offset+i,
		)
		if err != nil {
			return 0, 0, err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, 0, err
		}
		if n == 0 {
			duplicates++
		} else {
			imported++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return imported, duplicates, nil
}

// ExportBank loads every question of an exam in import order.
func (s *SQLStore) ExportBank(ctx context.Context, providerID, examID string) (*questionbank.QuestionBank, error) {
	if _, err := s.GetExam(ctx, providerID, examID); err != nil {
		return nil, err
	}
	questions, err := s.QuestionsByExam(ctx, providerID, examID, questionbank.Filter{})
	if err != nil {
		return nil, err
	}
	bank := questionbank.New(providerID, examID)
	bank.Questions = questions
	return bank, nil
}
