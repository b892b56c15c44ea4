// Package analysis turns a completed session into detailed results and
// study recommendations. Everything here is pure: the same session and
// question details always produce the same output.
package analysis

import (
	"math"

	"github.com/examprep/backend/internal/domain/questionbank"
	"github.com/examprep/backend/internal/domain/session"
	"github.com/examprep/backend/internal/scoring"
)

// NeedsImprovementBelow is the topic accuracy under which a topic is
// flagged for more study.
const NeedsImprovementBelow = 70.0

const placeholderText = "Question details unavailable"

// QuestionResult is one row of the per-question breakdown.
type QuestionResult struct {
	Position        int                     `json:"position"`
	QuestionID      string                  `json:"question_id"`
	QuestionText    string                  `json:"question_text"`
	Options         []questionbank.Option   `json:"options,omitempty"`
	Explanation     string                  `json:"explanation"`
	TopicID         string                  `json:"topic_id"`
	Difficulty      questionbank.Difficulty `json:"difficulty"`
	UserAnswer      []string                `json:"user_answer,omitempty"`
	CorrectAnswer   []string                `json:"correct_answer"`
	IsCorrect       bool                    `json:"is_correct"`
	Skipped         bool                    `json:"skipped"`
	MarkedForReview bool                    `json:"marked_for_review"`
	TimeSpent       int                     `json:"time_spent"`
	Points          int                     `json:"points"`
	MaxPoints       int                     `json:"max_points"`
	DetailsMissing  bool                    `json:"details_missing,omitempty"`
}

// Performance holds the metrics shared by difficulty and topic groups.
type Performance struct {
	Total       int     `json:"total"`
	Correct     int     `json:"correct"`
	Accuracy    float64 `json:"accuracy"`
	AverageTime float64 `json:"average_time"`
	Score       int     `json:"score"`
	MaxScore    int     `json:"max_score"`

	totalTime int
}

func (p *Performance) add(q session.SessionQuestion, d questionbank.Difficulty) {
	p.Total++
	if q.Correct() {
		p.Correct++
	}
	p.totalTime += q.TimeSpent
	p.Score += q.Points
	p.MaxScore += scoring.MaxPoints(d)
}

func (p *Performance) finish() {
	p.Accuracy = percent(p.Correct, p.Total)
	if p.Total > 0 {
		p.AverageTime = round2(float64(p.totalTime) / float64(p.Total))
	}
}

type DifficultyPerformance struct {
	Difficulty questionbank.Difficulty `json:"difficulty"`
	Performance
}

type TopicPerformance struct {
	TopicID string `json:"topic_id"`
	Performance
	NeedsImprovement bool `json:"needs_improvement"`
	StrongestArea    bool `json:"strongest_area"`
	WeakestArea      bool `json:"weakest_area"`
}

// TimeDistribution buckets answer times against the expected time of
// each question's difficulty.
type TimeDistribution struct {
	Fast                int                                 `json:"fast"`
	Normal              int                                 `json:"normal"`
	Slow                int                                 `json:"slow"`
	AverageByDifficulty map[questionbank.Difficulty]float64 `json:"average_by_difficulty"`
}

// Results is the full post-completion breakdown of a session.
type Results struct {
	SessionID               string                  `json:"session_id"`
	FinalScore              int                     `json:"final_score"`
	MaxPossibleScore        int                     `json:"max_possible_score"`
	AccuracyPercentage      float64                 `json:"accuracy_percentage"`
	TotalTimeSpent          int                     `json:"total_time_spent"`
	AverageTimePerQuestion  float64                 `json:"average_time_per_question"`
	QuestionsBreakdown      []QuestionResult        `json:"questions_breakdown"`
	PerformanceByDifficulty []DifficultyPerformance `json:"performance_by_difficulty"`
	PerformanceByTopic      []TopicPerformance      `json:"performance_by_topic"`
	TimeDistribution        TimeDistribution        `json:"time_distribution"`
}

// GenerateResults computes the detailed results of s. details is matched
// to s.Questions by position; a nil entry, a short slice or an ID mismatch
// yields a placeholder row instead of an error.
func GenerateResults(s *session.Session, details []*questionbank.Question) Results {
	r := Results{
		SessionID:          s.ID,
		QuestionsBreakdown: make([]QuestionResult, 0, len(s.Questions)),
	}

	tiers := make(map[questionbank.Difficulty]*Performance, len(questionbank.Difficulties))
	for _, d := range questionbank.Difficulties {
		tiers[d] = &Performance{}
	}
	var topicOrder []string
	topics := make(map[string]*Performance)

	answered, correctAnswered, score := 0, 0, 0
	for i, q := range s.Questions {
		d := tierOf(q.Difficulty)

		row := QuestionResult{
			Position:        i,
			QuestionID:      q.QuestionID,
			TopicID:         q.TopicID,
			Difficulty:      q.Difficulty,
			UserAnswer:      q.UserAnswer,
			CorrectAnswer:   q.CorrectAnswer,
			IsCorrect:       q.Correct(),
			Skipped:         q.Skipped,
			MarkedForReview: q.MarkedForReview,
			TimeSpent:       q.TimeSpent,
			Points:          q.Points,
			MaxPoints:       scoring.MaxPoints(d),
		}
		if detail := detailAt(details, i, q.QuestionID); detail != nil {
			row.QuestionText = detail.Text
			row.Options = detail.Options
			row.Explanation = detail.Explanation
		} else {
			row.QuestionText = placeholderText
			row.DetailsMissing = true
		}
		r.QuestionsBreakdown = append(r.QuestionsBreakdown, row)

		tiers[d].add(q, d)

		tp, ok := topics[q.TopicID]
		if !ok {
			tp = &Performance{}
			topics[q.TopicID] = tp
			topicOrder = append(topicOrder, q.TopicID)
		}
		tp.add(q, d)

		switch classify(d, q.TimeSpent) {
		case speedFast:
			r.TimeDistribution.Fast++
		case speedNormal:
			r.TimeDistribution.Normal++
		default:
			r.TimeDistribution.Slow++
		}

		if q.Answered() {
			answered++
			if q.Correct() {
				correctAnswered++
			}
		}
		score += q.Points
		r.MaxPossibleScore += row.MaxPoints
		r.TotalTimeSpent += q.TimeSpent
	}

	r.FinalScore = score
	if s.Score != nil {
		r.FinalScore = *s.Score
	}
	r.AccuracyPercentage = percent(correctAnswered, answered)
	if n := len(s.Questions); n > 0 {
		r.AverageTimePerQuestion = round2(float64(r.TotalTimeSpent) / float64(n))
	}

	r.TimeDistribution.AverageByDifficulty = make(map[questionbank.Difficulty]float64, len(tiers))
	for _, d := range questionbank.Difficulties {
		p := tiers[d]
		p.finish()
		r.PerformanceByDifficulty = append(r.PerformanceByDifficulty, DifficultyPerformance{Difficulty: d, Performance: *p})
		r.TimeDistribution.AverageByDifficulty[d] = p.AverageTime
	}

	r.PerformanceByTopic = make([]TopicPerformance, 0, len(topicOrder))
	for _, t := range topicOrder {
		p := topics[t]
		p.finish()
		r.PerformanceByTopic = append(r.PerformanceByTopic, TopicPerformance{
			TopicID:          t,
			Performance:      *p,
			NeedsImprovement: p.Accuracy < NeedsImprovementBelow,
		})
	}
	flagAreas(r.PerformanceByTopic)

	return r
}

// flagAreas marks the first topic with the highest accuracy as strongest
// and, when there is more than one topic, the first other topic with the
// lowest accuracy as weakest. No topic is weakest when every topic has the
// same accuracy.
func flagAreas(topics []TopicPerformance) {
	if len(topics) == 0 {
		return
	}
	strongest := 0
	for i := range topics {
		if topics[i].Accuracy > topics[strongest].Accuracy {
			strongest = i
		}
	}
	topics[strongest].StrongestArea = true

	if len(topics) < 2 {
		return
	}
	weakest := -1
	for i := range topics {
		if i == strongest {
			continue
		}
		if weakest < 0 || topics[i].Accuracy < topics[weakest].Accuracy {
			weakest = i
		}
	}
	if topics[weakest].Accuracy == topics[strongest].Accuracy {
		return
	}
	topics[weakest].WeakestArea = true
}

func detailAt(details []*questionbank.Question, i int, questionID string) *questionbank.Question {
	if i >= len(details) || details[i] == nil {
		return nil
	}
	if details[i].ID != questionID {
		return nil
	}
	return details[i]
}

// tierOf folds unrecognized difficulties into medium, matching scoring.
func tierOf(d questionbank.Difficulty) questionbank.Difficulty {
	if d.Valid() {
		return d
	}
	return questionbank.DifficultyMedium
}

type speed int

const (
	speedFast speed = iota
	speedNormal
	speedSlow
)

func classify(d questionbank.Difficulty, spent int) speed {
	expected := scoring.ExpectedTime(d)
	actual := float64(spent)
	switch {
	case actual < expected*0.5:
		return speedFast
	case actual <= expected:
		return speedNormal
	default:
		return speedSlow
	}
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round2(float64(part) / float64(whole) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
