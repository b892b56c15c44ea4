package catalog

import "strings"

// Provider is a certification vendor, e.g. "aws".
// It sits at the top of the hierarchy: Provider → Exams → Topics.
type Provider struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Exam is a single certification offered by a provider.
type Exam struct {
	ID           string `json:"id"`
	ProviderID   string `json:"provider_id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	PassingScore int    `json:"passing_score,omitempty"` // percent
}

// Topic groups questions within an exam.
type Topic struct {
	ID         string `json:"id"`
	ProviderID string `json:"provider_id"`
	ExamID     string `json:"exam_id"`
	Name       string `json:"name"`
}

func NewProvider(id, name string) *Provider {
	return &Provider{ID: id, Name: displayName(id, name)}
}

func NewExam(providerID, id, name string) *Exam {
	return &Exam{ID: id, ProviderID: providerID, Name: displayName(id, name)}
}

func NewTopic(providerID, examID, id, name string) *Topic {
	return &Topic{ID: id, ProviderID: providerID, ExamID: examID, Name: displayName(id, name)}
}

// displayName falls back to a title-cased version of the identifier.
func displayName(id, name string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
