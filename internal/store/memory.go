package store

import (
	"context"
	"sort"
	"sync"

	"github.com/examprep/backend/internal/domain/catalog"
	"github.com/examprep/backend/internal/domain/questionbank"
	"github.com/examprep/backend/internal/domain/session"
)

// MemoryStore is an in-process store with the same semantics as SQLStore.
// Values are copied on the way in and out so callers never share state
// with the store.
type MemoryStore struct {
	mu        sync.RWMutex
	sessions  map[string]*session.Session
	questions map[string]questionbank.Question
	order     []string
	providers map[string]catalog.Provider
	exams     map[[2]string]catalog.Exam
	topics    map[[3]string]catalog.Topic
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		sessions:  make(map[string]*session.Session),
		questions: make(map[string]questionbank.Question),
		providers: make(map[string]catalog.Provider),
		exams:     make(map[[2]string]catalog.Exam),
		topics:    make(map[[3]string]catalog.Topic),
	}
}

// ============================================================================
// Sessions
// ============================================================================

func copySession(s *session.Session) *session.Session {
	c := *s
	c.Questions = make([]session.SessionQuestion, len(s.Questions))
	for i, q := range s.Questions {
		q.CorrectAnswer = append([]string(nil), q.CorrectAnswer...)
		if q.UserAnswer != nil {
			q.UserAnswer = append([]string{}, q.UserAnswer...)
		}
		if q.IsCorrect != nil {
			v := *q.IsCorrect
			q.IsCorrect = &v
		}
		if q.AnsweredAt != nil {
			v := *q.AnsweredAt
			q.AnsweredAt = &v
		}
		c.Questions[i] = q
	}
	if s.Score != nil {
		v := *s.Score
		c.Score = &v
	}
	if s.TimeLimitSeconds != nil {
		v := *s.TimeLimitSeconds
		c.TimeLimitSeconds = &v
	}
	if s.EndTime != nil {
		v := *s.EndTime
		c.EndTime = &v
	}
	return &c
}

func (m *MemoryStore) CreateSession(_ context.Context, sess *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sess.ID]; ok {
		return ErrAlreadyExists
	}
	m.sessions[sess.ID] = copySession(sess)
	return nil
}

func (m *MemoryStore) GetSession(_ context.Context, id string) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copySession(sess), nil
}

func (m *MemoryStore) UpdateSession(_ context.Context, sess *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.sessions[sess.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != sess.Version {
		return ErrConflict
	}
	sess.Version++
	m.sessions[sess.ID] = copySession(sess)
	return nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false, nil
	}
	delete(m.sessions, id)
	return true, nil
}

// ============================================================================
// Questions
// ============================================================================

func (m *MemoryStore) GetQuestion(_ context.Context, id string) (*questionbank.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.questions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &q, nil
}

func (m *MemoryStore) QuestionsByExam(_ context.Context, providerID, examID string, f questionbank.Filter) ([]questionbank.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var qs []questionbank.Question
	for _, id := range m.order {
		q := m.questions[id]
		if q.ProviderID == providerID && q.ExamID == examID {
			qs = append(qs, q)
		}
	}
	return questionbank.Apply(qs, f), nil
}

func (m *MemoryStore) ImportBank(_ context.Context, bank *questionbank.QuestionBank, examName string) (imported, duplicates int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.providers[bank.ProviderID]; !ok {
		m.providers[bank.ProviderID] = *catalog.NewProvider(bank.ProviderID, "")
	}
	examKey := [2]string{bank.ProviderID, bank.ExamID}
	if _, ok := m.exams[examKey]; !ok {
		m.exams[examKey] = *catalog.NewExam(bank.ProviderID, bank.ExamID, examName)
	}
	for _, q := range bank.Questions {
		topicKey := [3]string{bank.ProviderID, bank.ExamID, q.TopicID}
		if _, ok := m.topics[topicKey]; !ok {
			m.topics[topicKey] = *catalog.NewTopic(bank.ProviderID, bank.ExamID, q.TopicID, "")
		}
		if _, ok := m.questions[q.ID]; ok {
			duplicates++
			continue
		}
		q.ProviderID, q.ExamID = bank.ProviderID, bank.ExamID
		m.questions[q.ID] = q
		m.order = append(m.order, q.ID)
		imported++
	}
	return imported, duplicates, nil
}

func (m *MemoryStore) ExportBank(ctx context.Context, providerID, examID string) (*questionbank.QuestionBank, error) {
	if _, err := m.GetExam(ctx, providerID, examID); err != nil {
		return nil, err
	}
	qs, _ := m.QuestionsByExam(ctx, providerID, examID, questionbank.Filter{})
	bank := questionbank.New(providerID, examID)
	bank.Questions = qs
	return bank, nil
}

// ============================================================================
// Catalog
// ============================================================================

func (m *MemoryStore) SaveProvider(_ context.Context, p *catalog.Provider) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[p.ID]; !ok {
		m.providers[p.ID] = *p
	}
	return nil
}

func (m *MemoryStore) SaveExam(_ context.Context, e *catalog.Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{e.ProviderID, e.ID}
	if _, ok := m.exams[key]; !ok {
		m.exams[key] = *e
	}
	return nil
}

func (m *MemoryStore) SaveTopic(_ context.Context, t *catalog.Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [3]string{t.ProviderID, t.ExamID, t.ID}
	if _, ok := m.topics[key]; !ok {
		m.topics[key] = *t
	}
	return nil
}

func (m *MemoryStore) GetProvider(_ context.Context, id string) (*catalog.Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.providers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) ListProviders(_ context.Context) ([]*catalog.Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*catalog.Provider, 0, len(m.providers))
	for _, p := range m.providers {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) GetExam(_ context.Context, providerID, examID string) (*catalog.Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[[2]string{providerID, examID}]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (m *MemoryStore) ListExams(_ context.Context, providerID string) ([]*catalog.Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*catalog.Exam
	for k, e := range m.exams {
		if k[0] == providerID {
			e := e
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) GetTopic(_ context.Context, providerID, examID, topicID string) (*catalog.Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.topics[[3]string{providerID, examID, topicID}]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *MemoryStore) ListTopics(_ context.Context, providerID, examID string) ([]*catalog.Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*catalog.Topic
	for k, t := range m.topics {
		if k[0] == providerID && k[1] == examID {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
