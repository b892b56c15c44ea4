// Package simulation runs a scripted study session against an in-memory
// corpus, the same calls the HTTP API would make.
package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/examprep/backend/internal/domain/questionbank"
	"github.com/examprep/backend/internal/selection"
	"github.com/examprep/backend/internal/service"
	"github.com/examprep/backend/internal/store"
)

// Step is one scripted answer.
type Step struct {
	Answer    []string
	TimeSpent int
}

// Script describes the walkthrough. Steps are applied to the session's
// questions in order.
type Script struct {
	Dataset       questionbank.Dataset
	QuestionCount int
	Steps         []Step
	Seed          int64
}

// DefaultScript answers the first question correctly in 45s and the second
// incorrectly in 60s.
func DefaultScript() Script {
	return Script{
		Dataset:       SampleDataset(),
		QuestionCount: 2,
		Steps: []Step{
			{Answer: []string{"0"}, TimeSpent: 45},
			{Answer: []string{"2"}, TimeSpent: 60},
		},
		Seed: 1,
	}
}

// SampleDataset is a small AWS exam whose correct answer is always "A".
func SampleDataset() questionbank.Dataset {
	item := func(text, topic string, options ...string) questionbank.StudyItem {
		opts := make([]questionbank.DatasetOption, len(options))
		for i, o := range options {
			opts[i] = questionbank.DatasetOption{Letter: string(rune('A' + i)), Text: o}
		}
		return questionbank.StudyItem{
			Question: questionbank.DatasetQuestion{Text: text, Topic: topic, Options: opts, Difficulty: "medium"},
			Answer:   questionbank.DatasetAnswer{CorrectAnswer: "A", Explanation: "The first option is the managed service built for this."},
		}
	}
	return questionbank.Dataset{
		Provider: "aws",
		Exam:     "saa-c03",
		ExamName: "AWS Certified Solutions Architect - Associate",
		StudyData: []questionbank.StudyItem{
			item("Which service provides durable object storage?", "Storage", "Amazon S3", "Amazon EC2", "AWS Lambda", "Amazon VPC"),
			item("Which service runs code without provisioning servers?", "Compute", "AWS Lambda", "Amazon EBS", "Amazon RDS", "AWS IAM"),
		},
	}
}

// Report is everything the walkthrough produced.
type Report struct {
	SessionID  string                     `json:"session_id"`
	Import     *questionbank.ImportReport `json:"import"`
	Completion *service.Completion        `json:"completion"`
}

// Run executes script and writes the report to out as indented JSON.
func Run(ctx context.Context, script Script, out io.Writer, logger *slog.Logger) (*Report, error) {
	mem := store.NewMemory()
	library := service.NewLibraryService(mem, mem, nil, logger)
	sessions := service.NewSessionService(service.Dependencies{
		Sessions:  mem,
		Questions: mem,
		Catalog:   mem,
		Selector:  selection.NewSeeded(script.Seed),
		Logger:    logger,
	})

	// POST /import
	imported, err := library.Import(ctx, script.Dataset)
	if err != nil {
		return nil, fmt.Errorf("import dataset: %w", err)
	}

	// POST /sessions
	count := script.QuestionCount
	view, err := sessions.CreateSession(ctx, service.CreateSessionRequest{
		ProviderID:    script.Dataset.Provider,
		ExamID:        script.Dataset.Exam,
		QuestionCount: &count,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	logger.Info("simulation session started", "session_id", view.Session.ID, "questions", len(view.Questions))

	// POST /sessions/{id}/answers
	for i, step := range script.Steps {
		if i >= len(view.Questions) {
			break
		}
		spent := step.TimeSpent
		_, err := sessions.SubmitAnswer(ctx, view.Session.ID, service.SubmitAnswerRequest{
			QuestionID: view.Questions[i].ID,
			Answer:     step.Answer,
			TimeSpent:  &spent,
			Skipped:    len(step.Answer) == 0,
		})
		if err != nil {
			return nil, fmt.Errorf("answer question %d: %w", i+1, err)
		}
	}

	// POST /sessions/{id}/complete
	completion, err := sessions.CompleteSession(ctx, view.Session.ID)
	if err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}

	report := &Report{SessionID: view.Session.ID, Import: imported, Completion: completion}
	if out != nil {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return nil, fmt.Errorf("write report: %w", err)
		}
	}
	return report, nil
}
