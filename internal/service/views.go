package service

import (
	"github.com/examprep/backend/internal/analysis"
	"github.com/examprep/backend/internal/domain/questionbank"
	"github.com/examprep/backend/internal/domain/session"
)

// QuestionView joins a session question with its corpus details. The
// correct answer and explanation are only filled in once the session has
// ended.
type QuestionView struct {
	Position        int                     `json:"position"`
	ID              string                  `json:"id"`
	TopicID         string                  `json:"topic_id"`
	Difficulty      questionbank.Difficulty `json:"difficulty"`
	Text            string                  `json:"text"`
	Options         []questionbank.Option   `json:"options"`
	UserAnswer      []string                `json:"user_answer,omitempty"`
	IsCorrect       *bool                   `json:"is_correct,omitempty"`
	Skipped         bool                    `json:"skipped"`
	MarkedForReview bool                    `json:"marked_for_review"`
	TimeSpent       int                     `json:"time_spent"`
	Points          int                     `json:"points"`
	CorrectAnswer   []string                `json:"correct_answer,omitempty"`
	Explanation     string                  `json:"explanation,omitempty"`
	DetailsMissing  bool                    `json:"details_missing,omitempty"`
}

type SessionView struct {
	Session   *session.Session  `json:"session"`
	Questions []QuestionView    `json:"questions"`
	Progress  *session.Progress `json:"progress,omitempty"`
}

type AnswerResult struct {
	Session  *session.Session         `json:"session"`
	Question *session.SessionQuestion `json:"question"`
	Progress session.Progress         `json:"progress"`
}

type Summary struct {
	SessionID          string         `json:"session_id"`
	Status             session.Status `json:"status"`
	Score              int            `json:"score"`
	MaxPossibleScore   int            `json:"max_possible_score"`
	CorrectAnswers     int            `json:"correct_answers"`
	TotalQuestions     int            `json:"total_questions"`
	Answered           int            `json:"answered"`
	Skipped            int            `json:"skipped"`
	AccuracyPercentage float64        `json:"accuracy_percentage"`
	TotalTimeSpent     int            `json:"total_time_spent"`
	DurationSeconds    int            `json:"duration_seconds"`
}

// Completion is returned by CompleteSession and GetResults.
type Completion struct {
	Summary         Summary                  `json:"summary"`
	DetailedResults analysis.Results         `json:"detailed_results"`
	Recommendations analysis.Recommendations `json:"recommendations"`
}

type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

const missingQuestionText = "Question details unavailable"

func questionViews(sess *session.Session, details []*questionbank.Question) []QuestionView {
	reveal := sess.Status.Terminal()
	views := make([]QuestionView, len(sess.Questions))
	for i, q := range sess.Questions {
		v := QuestionView{
			Position:        i,
			ID:              q.QuestionID,
			TopicID:         q.TopicID,
			Difficulty:      q.Difficulty,
			UserAnswer:      q.UserAnswer,
			IsCorrect:       q.IsCorrect,
			Skipped:         q.Skipped,
			MarkedForReview: q.MarkedForReview,
			TimeSpent:       q.TimeSpent,
			Points:          q.Points,
			Options:         []questionbank.Option{},
		}
		if i < len(details) && details[i] != nil {
			v.Text = details[i].Text
			v.Options = details[i].Options
			if reveal {
				v.Explanation = details[i].Explanation
			}
		} else {
			v.Text = missingQuestionText
			v.DetailsMissing = true
		}
		if reveal {
			v.CorrectAnswer = q.CorrectAnswer
		}
		views[i] = v
	}
	return views
}

func summarize(sess *session.Session, r analysis.Results, p session.Progress) Summary {
	score := r.FinalScore
	if sess.Score != nil {
		score = *sess.Score
	}
	sum := Summary{
		SessionID:          sess.ID,
		Status:             sess.Status,
		Score:              score,
		MaxPossibleScore:   r.MaxPossibleScore,
		CorrectAnswers:     sess.CorrectAnswers,
		TotalQuestions:     sess.TotalQuestions(),
		Answered:           p.Answered,
		Skipped:            p.Skipped,
		AccuracyPercentage: r.AccuracyPercentage,
		TotalTimeSpent:     r.TotalTimeSpent,
	}
	if sess.EndTime != nil {
		sum.DurationSeconds = int(sess.EndTime.Sub(sess.StartTime).Seconds())
	}
	return sum
}
