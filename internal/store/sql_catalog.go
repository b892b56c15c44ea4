package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/examprep/backend/internal/domain/catalog"
)

// ============================================================================
// Catalog
// ============================================================================

func (s *SQLStore) saveProvider(ctx context.Context, ex execer, p *catalog.Provider) error {
	_, err := ex.ExecContext(ctx, s.q(`
		INSERT INTO providers (id, name, description) VALUES (?, ?, ?)
		ON CONFLICT (id) DO NOTHING`), p.ID, p.Name, p.Description)
	return err
}

func (s *SQLStore) saveExam(ctx context.Context, ex execer, e *catalog.Exam) error {
	_, err := ex.ExecContext(ctx, s.q(`
		INSERT INTO exams (provider_id, id, name, description, passing_score) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (provider_id, id) DO NOTHING`), e.ProviderID, e.ID, e.Name, e.Description, e.PassingScore)
	return err
}

func (s *SQLStore) saveTopic(ctx context.Context, ex execer, t *catalog.Topic) error {
	_, err := ex.ExecContext(ctx, s.q(`
		INSERT INTO topics (provider_id, exam_id, id, name) VALUES (?, ?, ?, ?)
		ON CONFLICT (provider_id, exam_id, id) DO NOTHING`), t.ProviderID, t.ExamID, t.ID, t.Name)
	return err
}

// SaveProvider inserts the provider unless one with the same ID exists.
func (s *SQLStore) SaveProvider(ctx context.Context, p *catalog.Provider) error {
	return s.saveProvider(ctx, s.db, p)
}

func (s *SQLStore) SaveExam(ctx context.Context, e *catalog.Exam) error {
	return s.saveExam(ctx, s.db, e)
}

func (s *SQLStore) SaveTopic(ctx context.Context, t *catalog.Topic) error {
	return s.saveTopic(ctx, s.db, t)
}

func (s *SQLStore) GetProvider(ctx context.Context, id string) (*catalog.Provider, error) {
	var p catalog.Provider
	err := s.db.QueryRowContext(ctx, s.q("SELECT id, name, description FROM providers WHERE id = ?"), id).
		Scan(&p.ID, &p.Name, &p.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLStore) ListProviders(ctx context.Context) ([]*catalog.Provider, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, description FROM providers ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var providers []*catalog.Provider
	for rows.Next() {
		var p catalog.Provider
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		providers = append(providers, &p)
	}
	return providers, rows.Err()
}

func (s *SQLStore) GetExam(ctx context.Context, providerID, examID string) (*catalog.Exam, error) {
	var e catalog.Exam
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT provider_id, id, name, description, passing_score FROM exams
		WHERE provider_id = ? AND id = ?`), providerID, examID).
		Scan(&e.ProviderID, &e.ID, &e.Name, &e.Description, &e.PassingScore)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLStore) ListExams(ctx context.Context, providerID string) ([]*catalog.Exam, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT provider_id, id, name, description, passing_score FROM exams
		WHERE provider_id = ? ORDER BY id`), providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []*catalog.Exam
	for rows.Next() {
		var e catalog.Exam
		if err := rows.Scan(&e.ProviderID, &e.ID, &e.Name, &e.Description, &e.PassingScore); err != nil {
			return nil, err
		}
		exams = append(exams, &e)
	}
	return exams, rows.Err()
}

func (s *SQLStore) GetTopic(ctx context.Context, providerID, examID, topicID string) (*catalog.Topic, error) {
	var t catalog.Topic
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT provider_id, exam_id, id, name FROM topics
		WHERE provider_id = ? AND exam_id = ? AND id = ?`), providerID, examID, topicID).
		Scan(&t.ProviderID, &t.ExamID, &t.ID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *SQLStore) ListTopics(ctx context.Context, providerID, examID string) ([]*catalog.Topic, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT provider_id, exam_id, id, name FROM topics
		WHERE provider_id = ? AND exam_id = ? ORDER BY id`), providerID, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []*catalog.Topic
	for rows.Next() {
		var t catalog.Topic
		if err := rows.Scan(&t.ProviderID, &t.ExamID, &t.ID, &t.Name); err != nil {
			return nil, err
		}
		topics = append(topics, &t)
	}
	return topics, rows.Err()
}
