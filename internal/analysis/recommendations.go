package analysis

import (
	"github.com/examprep/backend/internal/domain/questionbank"
	"github.com/examprep/backend/internal/domain/session"
)

type Verdict string

const (
	VerdictExcellent            Verdict = "excellent"
	VerdictGood                 Verdict = "good"
	VerdictNeedsImprovement     Verdict = "needs_improvement"
	VerdictRequiresFocusedStudy Verdict = "requires_focused_study"
)

type band struct {
	min     float64
	verdict Verdict
	ready   bool
	minutes int
	message string
}

// bands are checked top to bottom; the last one catches everything.
var bands = []band{
	{90, VerdictExcellent, true, 15, "Outstanding work! You're well prepared. Keep your knowledge fresh with short daily reviews."},
	{80, VerdictGood, true, 20, "Great job! You're close to exam-ready. A little more practice on weaker topics will get you there."},
	{70, VerdictNeedsImprovement, false, 30, "Good effort! You have a solid base. Focus on the topics below 70% to close the gap."},
	{0, VerdictRequiresFocusedStudy, false, 45, "Every expert was once a beginner. Work through the fundamentals of each topic and try again."},
}

func bandFor(accuracy float64) band {
	for _, b := range bands {
		if accuracy >= b.min {
			return b
		}
	}
	return bands[len(bands)-1]
}

const (
	NextSessionTargeted = "targeted_review"
	NextSessionMixed    = "mixed_practice"
)

type NextSession struct {
	Type          string                  `json:"type"`
	Topics        []string                `json:"topics"`
	Difficulty    questionbank.Difficulty `json:"difficulty"`
	QuestionCount int                     `json:"question_count"`
	Adaptive      bool                    `json:"adaptive"`
}

type Recommendations struct {
	OverallRecommendation Verdict     `json:"overall_recommendation"`
	ReadyForExam          bool        `json:"ready_for_exam"`
	SuggestedDailyMinutes int         `json:"suggested_daily_minutes"`
	FocusAreas            []string    `json:"focus_areas"`
	StrongAreas           []string    `json:"strong_areas"`
	NextSession           NextSession `json:"next_session"`
	MotivationalMessage   string      `json:"motivational_message"`
}

// GenerateRecommendations derives study advice from a session's results.
func GenerateRecommendations(s *session.Session, r Results) Recommendations {
	acc := r.AccuracyPercentage
	b := bandFor(acc)

	rec := Recommendations{
		OverallRecommendation: b.verdict,
		ReadyForExam:          b.ready,
		SuggestedDailyMinutes: b.minutes,
		FocusAreas:            []string{},
		StrongAreas:           []string{},
		MotivationalMessage:   b.message,
	}
	for _, t := range r.PerformanceByTopic {
		if t.NeedsImprovement {
			rec.FocusAreas = append(rec.FocusAreas, t.TopicID)
		} else {
			rec.StrongAreas = append(rec.StrongAreas, t.TopicID)
		}
	}

	next := NextSession{
		Type:          NextSessionMixed,
		Topics:        []string{},
		Difficulty:    nextDifficulty(acc),
		QuestionCount: 20,
		Adaptive:      s.Adaptive,
	}
	if acc >= 70 {
		next.QuestionCount = 15
	}
	if len(rec.FocusAreas) > 0 {
		next.Type = NextSessionTargeted
		next.Topics = append(next.Topics, rec.FocusAreas...)
	}
	rec.NextSession = next

	return rec
}

func nextDifficulty(accuracy float64) questionbank.Difficulty {
	switch {
	case accuracy >= 85:
		return questionbank.DifficultyHard
	case accuracy >= 70:
		return questionbank.DifficultyMedium
	default:
		return questionbank.DifficultyEasy
	}
}
