package service

import (
	"context"
	"log/slog"

	"github.com/examprep/backend/internal/apperr"
	"github.com/examprep/backend/internal/domain/catalog"
	"github.com/examprep/backend/internal/domain/questionbank"
	"github.com/examprep/backend/internal/id"
)

// LibraryStore is the write side of the corpus plus catalog browsing.
type LibraryStore interface {
	ImportBank(ctx context.Context, bank *questionbank.QuestionBank, examName string) (imported, duplicates int, err error)
	ExportBank(ctx context.Context, providerID, examID string) (*questionbank.QuestionBank, error)
	ListProviders(ctx context.Context) ([]*catalog.Provider, error)
	ListExams(ctx context.Context, providerID string) ([]*catalog.Exam, error)
	ListTopics(ctx context.Context, providerID, examID string) ([]*catalog.Topic, error)
}

// ExamInvalidator drops cached exam pools after an import.
type ExamInvalidator interface {
	InvalidateExam(ctx context.Context, providerID, examID string)
}

// LibraryService imports and exports question datasets and lists the
// catalog.
type LibraryService struct {
	store  LibraryStore
	corpus QuestionCorpus
	cache  ExamInvalidator
	logger *slog.Logger
}

// NewLibraryService creates a LibraryService. corpus serves question
// searches and is usually the cached view of s; cache may be nil.
func NewLibraryService(s LibraryStore, corpus QuestionCorpus, cache ExamInvalidator, logger *slog.Logger) *LibraryService {
	return &LibraryService{store: s, corpus: corpus, cache: cache, logger: logger}
}

// Import stores a dataset. Question IDs derive from content, so importing
// the same file twice only reports duplicates.
func (l *LibraryService) Import(ctx context.Context, d questionbank.Dataset) (*questionbank.ImportReport, error) {
	namespace := d.Provider + "/" + d.Exam
	bank, report, err := d.ToBank(func(content []byte) string {
		return id.FromContent(namespace, content)
	})
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	imported, duplicates, err := l.store.ImportBank(ctx, bank, d.ExamName)
	if err != nil {
		return nil, apperr.Dependency(err, "question store")
	}
	report.Imported = imported
	report.Duplicates += duplicates

	if l.cache != nil {
		l.cache.InvalidateExam(ctx, d.Provider, d.Exam)
	}
	l.logger.Info("dataset imported",
		"provider_id", d.Provider,
		"exam_id", d.Exam,
		"imported", report.Imported,
		"duplicates", report.Duplicates,
		"skipped", report.Skipped,
	)
	return &report, nil
}

func (l *LibraryService) Export(ctx context.Context, providerID, examID string) (*questionbank.Dataset, error) {
	bank, err := l.store.ExportBank(ctx, providerID, examID)
	if err != nil {
		return nil, catalogError(err, "Exam %s not found for provider %s", examID, providerID)
	}
	d := questionbank.FromBank(bank)
	return &d, nil
}

func (l *LibraryService) ListProviders(ctx context.Context) ([]*catalog.Provider, error) {
	providers, err := l.store.ListProviders(ctx)
	if err != nil {
		return nil, apperr.Dependency(err, "catalog")
	}
	return providers, nil
}

func (l *LibraryService) ListExams(ctx context.Context, providerID string) ([]*catalog.Exam, error) {
	exams, err := l.store.ListExams(ctx, providerID)
	if err != nil {
		return nil, apperr.Dependency(err, "catalog")
	}
	return exams, nil
}

func (l *LibraryService) ListTopics(ctx context.Context, providerID, examID string) ([]*catalog.Topic, error) {
	topics, err := l.store.ListTopics(ctx, providerID, examID)
	if err != nil {
		return nil, apperr.Dependency(err, "catalog")
	}
	return topics, nil
}

// SearchQuestions lists an exam's questions narrowed by f, with answers
// and explanations stripped.
func (l *LibraryService) SearchQuestions(ctx context.Context, providerID, examID string, f questionbank.Filter) ([]questionbank.Question, error) {
	questions, err := l.corpus.QuestionsByExam(ctx, providerID, examID, f)
	if err != nil {
		return nil, apperr.Dependency(err, "question corpus")
	}
	out := make([]questionbank.Question, len(questions))
	for i, q := range questions {
		q.CorrectAnswer = nil
		q.Explanation = ""
		out[i] = q
	}
	return out, nil
}
