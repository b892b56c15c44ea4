package questionbank

import (
	"errors"
	"strconv"
	"strings"

	"github.com/examprep/backend/internal/id"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the tiers in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ParseDifficulty normalizes s; the second result is false for unknown tiers.
func ParseDifficulty(s string) (Difficulty, bool) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	return d, d.Valid()
}

// Option is one selectable answer. ID is the identifier users submit.
type Option struct {
	ID     string `json:"id"`
	Letter string `json:"letter,omitempty"`
	Text   string `json:"text"`
}

// Question is a single certification question in the corpus.
type Question struct {
	ID            string     `json:"id"`
	ProviderID    string     `json:"provider_id"`
	ExamID        string     `json:"exam_id"`
	TopicID       string     `json:"topic_id"`
	Text          string     `json:"text"`
	Options       []Option   `json:"options"`
	CorrectAnswer []string   `json:"correct_answer,omitempty"`
	Explanation   string     `json:"explanation,omitempty"`
	Difficulty    Difficulty `json:"difficulty"`
	Tags          []string   `json:"tags,omitempty"`
}

// QuestionBank is the set of questions for one provider/exam pair.
type QuestionBank struct {
	ProviderID string
	ExamID     string
	Questions  []Question
}

func New(providerID, examID string) *QuestionBank {
	return &QuestionBank{
		ProviderID: providerID,
		ExamID:     examID,
		Questions:  []Question{},
	}
}

// AddQuestion validates q, fills defaults and appends it to the bank.
func (qb *QuestionBank) AddQuestion(q Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return errors.New("question text cannot be empty")
	}
	if len(q.CorrectAnswer) == 0 {
		return errors.New("question must have at least one correct answer")
	}
	for i := range q.Options {
		if q.Options[i].ID == "" {
			q.Options[i].ID = strconv.Itoa(i)
		}
	}
	if len(q.Options) > 0 {
		known := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			known[o.ID] = true
		}
		for _, a := range q.CorrectAnswer {
			if !known[a] {
				return errors.New("correct answer " + strconv.Quote(a) + " does not match any option")
			}
		}
	}
	if q.ID == "" {
		q.ID = id.GenerateID()
	}
	if !q.Difficulty.Valid() {
		q.Difficulty = DifficultyMedium
	}
	if q.TopicID == "" {
		q.TopicID = DefaultTopic
	}
	q.ProviderID = qb.ProviderID
	q.ExamID = qb.ExamID

	qb.Questions = append(qb.Questions, q)
	return nil
}

// DefaultTopic is used for questions imported without a topic.
const DefaultTopic = "general"

// Filter narrows a corpus query.
type Filter struct {
	TopicIDs   []string
	Difficulty Difficulty
	Search     string
	Limit      int
}

// Match reports whether q passes the topic and difficulty constraints.
// Search is applied separately by Rank.
func (f Filter) Match(q Question) bool {
	if f.Difficulty != "" && q.Difficulty != f.Difficulty {
		return false
	}
	if len(f.TopicIDs) == 0 {
		return true
	}
	for _, t := range f.TopicIDs {
		if q.TopicID == t {
			return true
		}
	}
	return false
}

// Apply runs the whole filter over qs: constraints, then relevance ranking
// when Search is set, then Limit.
func Apply(qs []Question, f Filter) []Question {
	out := make([]Question, 0, len(qs))
	for _, q := range qs {
		if f.Match(q) {
			out = append(out, q)
		}
	}
	if strings.TrimSpace(f.Search) != "" {
		out = Rank(out, f.Search)
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}
