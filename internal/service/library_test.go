package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examprep/backend/internal/apperr"
	"github.com/examprep/backend/internal/domain/questionbank"
	"github.com/examprep/backend/internal/service"
	"github.com/examprep/backend/internal/store"
)

type invalidations struct{ keys []string }

func (i *invalidations) InvalidateExam(_ context.Context, providerID, examID string) {
	i.keys = append(i.keys, providerID+"/"+examID)
}

func dataset() questionbank.Dataset {
	item := func(text, topic, answer string) questionbank.StudyItem {
		return questionbank.StudyItem{
			Question: questionbank.DatasetQuestion{
				Text:  text,
				Topic: topic,
				Options: []questionbank.DatasetOption{
					{Letter: "A", Text: "Amazon EC2"},
					{Letter: "B", Text: "Amazon S3"},
					{Letter: "C", Text: "AWS Lambda"},
				},
			},
			Answer: questionbank.DatasetAnswer{CorrectAnswer: answer, Explanation: "see docs"},
		}
	}
	return questionbank.Dataset{
		Provider: "aws",
		Exam:     "saa-c03",
		ExamName: "Solutions Architect Associate",
		StudyData: []questionbank.StudyItem{
			item("Which service stores objects?", "Storage", "B"),
			item("Which service runs functions?", "Compute", "C"),
			item("Which service stores objects?", "Storage", "B"),
			item("Which service is broken?", "Compute", "Z"),
		},
	}
}

func TestLibraryService_ImportExport(t *testing.T) {
	mem := store.NewMemory()
	inv := &invalidations{}
	lib := service.NewLibraryService(mem, mem, inv, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	report, err := lib.Import(ctx, dataset())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, []string{"aws/saa-c03"}, inv.keys)

	report, err = lib.Import(ctx, dataset())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Imported)
	assert.Equal(t, 3, report.Duplicates)

	topics, err := lib.ListTopics(ctx, "aws", "saa-c03")
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "compute", topics[0].ID)

	exams, err := lib.ListExams(ctx, "aws")
	require.NoError(t, err)
	require.Len(t, exams, 1)
	assert.Equal(t, "Solutions Architect Associate", exams[0].Name)

	d, err := lib.Export(ctx, "aws", "saa-c03")
	require.NoError(t, err)
	require.Len(t, d.StudyData, 2)
	assert.Equal(t, "B", d.StudyData[0].Answer.CorrectAnswer)

	found, err := lib.SearchQuestions(ctx, "aws", "saa-c03", questionbank.Filter{Search: "functions"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Which service runs functions?", found[0].Text)
	assert.Nil(t, found[0].CorrectAnswer)

	_, err = lib.Export(ctx, "aws", "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLibraryService_ImportInvalid(t *testing.T) {
	lib := service.NewLibraryService(store.NewMemory(), store.NewMemory(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := lib.Import(context.Background(), questionbank.Dataset{Exam: "saa-c03"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
