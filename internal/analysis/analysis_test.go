package analysis_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examprep/backend/internal/analysis"
	"github.com/examprep/backend/internal/domain/questionbank"
	"github.com/examprep/backend/internal/domain/session"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type attempt struct {
	id     string
	topic  string
	diff   questionbank.Difficulty
	answer []string // nil = skipped
	secs   int
}

func build(t *testing.T, attempts []attempt) (*session.Session, []*questionbank.Question) {
	t.Helper()
	qs := make([]questionbank.Question, len(attempts))
	details := make([]*questionbank.Question, len(attempts))
	for i, sp := range attempts {
		qs[i] = questionbank.Question{
			ID:            sp.id,
			TopicID:       sp.topic,
			Text:          "text of " + sp.id,
			Explanation:   "because " + sp.id,
			CorrectAnswer: []string{"0"},
			Difficulty:    sp.diff,
		}
		details[i] = &qs[i]
	}
	s, err := session.New("aws", "saa-c03", qs, session.DefaultConfig(), t0)
	require.NoError(t, err)
	for _, sp := range attempts {
		secs := sp.secs
		in := session.AnswerInput{QuestionID: sp.id, Answer: sp.answer, TimeSpent: &secs, Skipped: sp.answer == nil}
		_, err := s.Answer(in, t0)
		require.NoError(t, err)
	}
	require.NoError(t, s.Complete(t0.Add(10*time.Minute)))
	return s, details
}

func right() []string { return []string{"0"} }
func wrong() []string { return []string{"2"} }

func TestGenerateResults_TwoQuestionScenario(t *testing.T) {
	s, details := build(t, []attempt{
		{"q1", "compute", questionbank.DifficultyMedium, right(), 45},
		{"q2", "storage", questionbank.DifficultyMedium, wrong(), 60},
	})

	r := analysis.GenerateResults(s, details)

	assert.Equal(t, 3, r.FinalScore)
	assert.Equal(t, 6, r.MaxPossibleScore)
	assert.Equal(t, 50.0, r.AccuracyPercentage)
	assert.Equal(t, 105, r.TotalTimeSpent)
	assert.Equal(t, 52.5, r.AverageTimePerQuestion)
	require.Len(t, r.QuestionsBreakdown, 2)
	assert.Equal(t, "text of q1", r.QuestionsBreakdown[0].QuestionText)
	assert.Equal(t, "because q2", r.QuestionsBreakdown[1].Explanation)
	assert.True(t, r.QuestionsBreakdown[0].IsCorrect)
	assert.False(t, r.QuestionsBreakdown[1].IsCorrect)

	rec := analysis.GenerateRecommendations(s, r)
	assert.Equal(t, analysis.VerdictRequiresFocusedStudy, rec.OverallRecommendation)
	assert.False(t, rec.ReadyForExam)
	assert.Equal(t, 45, rec.SuggestedDailyMinutes)
	assert.Equal(t, questionbank.DifficultyEasy, rec.NextSession.Difficulty)
	assert.Equal(t, 20, rec.NextSession.QuestionCount)
	assert.Equal(t, analysis.NextSessionTargeted, rec.NextSession.Type)
	assert.Equal(t, []string{"storage"}, rec.NextSession.Topics)
}

func TestGenerateResults_Recomputable(t *testing.T) {
	s, details := build(t, []attempt{
		{"q1", "compute", questionbank.DifficultyEasy, right(), 10},
		{"q2", "compute", questionbank.DifficultyHard, right(), 200},
	})
	assert.Equal(t, analysis.GenerateResults(s, details), analysis.GenerateResults(s, details))
}

func TestGenerateResults_AccuracyIgnoresSkipped(t *testing.T) {
	s, details := build(t, []attempt{
		{"q1", "compute", questionbank.DifficultyEasy, right(), 10},
		{"q2", "compute", questionbank.DifficultyEasy, nil, 0},
	})
	r := analysis.GenerateResults(s, details)
	assert.Equal(t, 100.0, r.AccuracyPercentage)
}

func TestGenerateResults_NothingAnswered(t *testing.T) {
	s, details := build(t, []attempt{
		{"q1", "compute", questionbank.DifficultyEasy, nil, 0},
	})
	r := analysis.GenerateResults(s, details)
	assert.Equal(t, 0.0, r.AccuracyPercentage)
	assert.Equal(t, 0, r.FinalScore)
}

func TestGenerateResults_ByDifficulty(t *testing.T) {
	s, details := build(t, []attempt{
		{"e1", "compute", questionbank.DifficultyEasy, right(), 30},
		{"e2", "compute", questionbank.DifficultyEasy, wrong(), 50},
		{"h1", "compute", questionbank.DifficultyHard, right(), 120},
	})
	r := analysis.GenerateResults(s, details)

	require.Len(t, r.PerformanceByDifficulty, 3)
	easy, medium, hard := r.PerformanceByDifficulty[0], r.PerformanceByDifficulty[1], r.PerformanceByDifficulty[2]

	assert.Equal(t, questionbank.DifficultyEasy, easy.Difficulty)
	assert.Equal(t, 2, easy.Total)
	assert.Equal(t, 1, easy.Correct)
	assert.Equal(t, 50.0, easy.Accuracy)
	assert.Equal(t, 40.0, easy.AverageTime)
	assert.Equal(t, 2, easy.Score) // 1 * clamp(60/30)
	assert.Equal(t, 4, easy.MaxScore)

	assert.Equal(t, 0, medium.Total)
	assert.Equal(t, 0.0, medium.Accuracy)
	assert.Equal(t, 0, medium.MaxScore)

	assert.Equal(t, 1, hard.Total)
	assert.Equal(t, 100.0, hard.Accuracy)
	assert.Equal(t, 3, hard.Score)
	assert.Equal(t, 5, hard.MaxScore)
}

func TestGenerateResults_ByTopic(t *testing.T) {
	s, details := build(t, []attempt{
		{"a1", "compute", questionbank.DifficultyMedium, right(), 60},
		{"b1", "storage", questionbank.DifficultyMedium, wrong(), 60},
		{"c1", "network", questionbank.DifficultyMedium, right(), 60},
		{"a2", "compute", questionbank.DifficultyMedium, wrong(), 60},
		{"d1", "security", questionbank.DifficultyMedium, wrong(), 60},
	})
	r := analysis.GenerateResults(s, details)

	require.Len(t, r.PerformanceByTopic, 4)
	byID := map[string]analysis.TopicPerformance{}
	strongest, weakest := 0, 0
	for _, tp := range r.PerformanceByTopic {
		byID[tp.TopicID] = tp
		if tp.StrongestArea {
			strongest++
		}
		if tp.WeakestArea {
			weakest++
		}
	}
	assert.Equal(t, 1, strongest)
	assert.Equal(t, 1, weakest)

	assert.Equal(t, "compute", r.PerformanceByTopic[0].TopicID)
	assert.Equal(t, 50.0, byID["compute"].Accuracy)
	assert.True(t, byID["compute"].NeedsImprovement)
	assert.True(t, byID["network"].StrongestArea)
	assert.False(t, byID["network"].NeedsImprovement)
	// storage and security tie at 0; the first one wins
	assert.True(t, byID["storage"].WeakestArea)
	assert.False(t, byID["security"].WeakestArea)
}

func TestGenerateResults_ByTopicFullTie(t *testing.T) {
	s, details := build(t, []attempt{
		{"a1", "compute", questionbank.DifficultyMedium, right(), 60},
		{"b1", "storage", questionbank.DifficultyMedium, right(), 60},
		{"c1", "network", questionbank.DifficultyMedium, right(), 60},
	})
	r := analysis.GenerateResults(s, details)

	require.Len(t, r.PerformanceByTopic, 3)
	assert.True(t, r.PerformanceByTopic[0].StrongestArea)
	for _, tp := range r.PerformanceByTopic {
		assert.Equal(t, 100.0, tp.Accuracy)
		assert.False(t, tp.WeakestArea, tp.TopicID)
	}
	assert.False(t, r.PerformanceByTopic[1].StrongestArea)
}

func TestGenerateResults_SingleTopic(t *testing.T) {
	s, details := build(t, []attempt{
		{"a1", "compute", questionbank.DifficultyMedium, wrong(), 60},
	})
	r := analysis.GenerateResults(s, details)
	require.Len(t, r.PerformanceByTopic, 1)
	assert.True(t, r.PerformanceByTopic[0].StrongestArea)
	assert.False(t, r.PerformanceByTopic[0].WeakestArea)
}

func TestGenerateResults_TimeDistribution(t *testing.T) {
	s, details := build(t, []attempt{
		{"e1", "compute", questionbank.DifficultyEasy, right(), 29},   // fast: < 30
		{"e2", "compute", questionbank.DifficultyEasy, right(), 30},   // normal
		{"m1", "compute", questionbank.DifficultyMedium, right(), 90}, // normal: == expected
		{"h1", "compute", questionbank.DifficultyHard, right(), 121},  // slow
		{"h2", "compute", questionbank.DifficultyHard, wrong(), 119},  // normal
	})
	r := analysis.GenerateResults(s, details)

	assert.Equal(t, 1, r.TimeDistribution.Fast)
	assert.Equal(t, 3, r.TimeDistribution.Normal)
	assert.Equal(t, 1, r.TimeDistribution.Slow)
	assert.Equal(t, 29.5, r.TimeDistribution.AverageByDifficulty[questionbank.DifficultyEasy])
	assert.Equal(t, 90.0, r.TimeDistribution.AverageByDifficulty[questionbank.DifficultyMedium])
	assert.Equal(t, 120.0, r.TimeDistribution.AverageByDifficulty[questionbank.DifficultyHard])
}

func TestGenerateResults_MissingDetails(t *testing.T) {
	s, details := build(t, []attempt{
		{"q1", "compute", questionbank.DifficultyMedium, right(), 45},
		{"q2", "compute", questionbank.DifficultyMedium, right(), 45},
		{"q3", "compute", questionbank.DifficultyMedium, right(), 45},
	})
	details[1] = nil
	details = details[:2]

	r := analysis.GenerateResults(s, details)
	require.Len(t, r.QuestionsBreakdown, 3)
	assert.False(t, r.QuestionsBreakdown[0].DetailsMissing)
	assert.True(t, r.QuestionsBreakdown[1].DetailsMissing)
	assert.True(t, r.QuestionsBreakdown[2].DetailsMissing)
	assert.Equal(t, "Question details unavailable", r.QuestionsBreakdown[2].QuestionText)
	assert.Equal(t, 9, r.FinalScore)
}

func TestGenerateRecommendations_Bands(t *testing.T) {
	tests := []struct {
		accuracy   float64
		verdict    analysis.Verdict
		ready      bool
		minutes    int
		difficulty questionbank.Difficulty
		count      int
	}{
		{100, analysis.VerdictExcellent, true, 15, questionbank.DifficultyHard, 15},
		{90, analysis.VerdictExcellent, true, 15, questionbank.DifficultyHard, 15},
		{89.99, analysis.VerdictGood, true, 20, questionbank.DifficultyHard, 15},
		{85, analysis.VerdictGood, true, 20, questionbank.DifficultyHard, 15},
		{80, analysis.VerdictGood, true, 20, questionbank.DifficultyMedium, 15},
		{70, analysis.VerdictNeedsImprovement, false, 30, questionbank.DifficultyMedium, 15},
		{69.99, analysis.VerdictRequiresFocusedStudy, false, 45, questionbank.DifficultyEasy, 20},
		{0, analysis.VerdictRequiresFocusedStudy, false, 45, questionbank.DifficultyEasy, 20},
	}
	messages := map[string]bool{}
	for _, tt := range tests {
		rec := analysis.GenerateRecommendations(&session.Session{}, analysis.Results{AccuracyPercentage: tt.accuracy})
		assert.Equal(t, tt.verdict, rec.OverallRecommendation, "accuracy %v", tt.accuracy)
		assert.Equal(t, tt.ready, rec.ReadyForExam, "accuracy %v", tt.accuracy)
		assert.Equal(t, tt.minutes, rec.SuggestedDailyMinutes, "accuracy %v", tt.accuracy)
		assert.Equal(t, tt.difficulty, rec.NextSession.Difficulty, "accuracy %v", tt.accuracy)
		assert.Equal(t, tt.count, rec.NextSession.QuestionCount, "accuracy %v", tt.accuracy)
		assert.Equal(t, analysis.NextSessionMixed, rec.NextSession.Type)
		assert.NotEmpty(t, rec.MotivationalMessage)
		messages[rec.MotivationalMessage] = true
	}
	assert.Len(t, messages, 4)
}
