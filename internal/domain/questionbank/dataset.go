package questionbank

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Dataset is the study-dataset file format produced by the question bank
// tooling. One file holds the questions of a single exam. Files written by
// the extraction scripts carry only metadata and study_data; the provider
// and exam are then supplied by the caller through WithDefaults.
type Dataset struct {
	Provider  string           `json:"provider,omitempty"`
	Exam      string           `json:"exam,omitempty"`
	ExamName  string           `json:"exam_name,omitempty"`
	Metadata  *DatasetMetadata `json:"metadata,omitempty"`
	StudyData []StudyItem      `json:"study_data"`
}

type DatasetMetadata struct {
	CreationDate string `json:"creation_date,omitempty"`
	Version      string `json:"version,omitempty"`
	Description  string `json:"description,omitempty"`
	SourcePDF    string `json:"source_pdf,omitempty"`
}

// WithDefaults fills an empty provider or exam. Values already present in
// the file win.
func (d Dataset) WithDefaults(provider, exam string) Dataset {
	if d.Provider == "" {
		d.Provider = strings.TrimSpace(provider)
	}
	if d.Exam == "" {
		d.Exam = strings.TrimSpace(exam)
	}
	return d
}

type StudyItem struct {
	Question      DatasetQuestion    `json:"question"`
	Answer        DatasetAnswer      `json:"answer"`
	StudyMetadata *StudyItemMetadata `json:"study_metadata,omitempty"`
}

// StudyItemMetadata is the per-item block the combiner writes. Its
// difficulty is used when the question itself carries none.
type StudyItemMetadata struct {
	Difficulty string `json:"difficulty,omitempty"`
}

type DatasetQuestion struct {
	ID         string          `json:"id,omitempty"`
	Number     int             `json:"number,omitempty"`
	Text       string          `json:"text"`
	Options    []DatasetOption `json:"options"`
	Topic      string          `json:"topic,omitempty"`
	Difficulty string          `json:"difficulty,omitempty"`
	Keywords   []string        `json:"keywords,omitempty"`
}

type DatasetOption struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// UnmarshalJSON also accepts a bare string, whose letter is then taken
// from the option's position, and a ["B", "text"] pair.
func (o *DatasetOption) UnmarshalJSON(data []byte) error {
	t := bytes.TrimSpace(data)
	if len(t) == 0 {
		return nil
	}
	switch t[0] {
	case '"':
		o.Letter = ""
		return json.Unmarshal(t, &o.Text)
	case '[':
		var pair []string
		if err := json.Unmarshal(t, &pair); err != nil {
			return fmt.Errorf("option: %w", err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("option: expected [letter, text], got %d elements", len(pair))
		}
		o.Letter, o.Text = pair[0], pair[1]
		return nil
	}
	type plain DatasetOption
	return json.Unmarshal(data, (*plain)(o))
}

// DatasetAnswer holds the answer key. CorrectAnswer is the letter form
// ("B", "AC", "A, C"); CorrectIndices is set instead when the file lists
// zero-based option positions.
type DatasetAnswer struct {
	CorrectAnswer  string `json:"correct_answer"`
	CorrectIndices []int  `json:"-"`
	Explanation    string `json:"explanation,omitempty"`
	Confidence     string `json:"confidence,omitempty"`
}

func (a *DatasetAnswer) UnmarshalJSON(data []byte) error {
	type plain DatasetAnswer
	var raw struct {
		plain
		CorrectAnswer json.RawMessage `json:"correct_answer"`
		Confidence    json.RawMessage `json:"confidence"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = DatasetAnswer(raw.plain)
	a.CorrectAnswer, a.CorrectIndices = "", nil
	a.Confidence = scalarText(raw.Confidence)

	key := bytes.TrimSpace(raw.CorrectAnswer)
	if len(key) == 0 || bytes.Equal(key, []byte("null")) {
		return nil
	}
	switch key[0] {
	case '"':
		return json.Unmarshal(key, &a.CorrectAnswer)
	case '[':
		var indices []int
		if err := json.Unmarshal(key, &indices); err != nil {
			return fmt.Errorf("correct_answer: expected option indices: %w", err)
		}
		a.CorrectIndices = indices
		return nil
	default:
		var index int
		if err := json.Unmarshal(key, &index); err != nil {
			return fmt.Errorf("correct_answer: expected letters or option indices: %w", err)
		}
		a.CorrectIndices = []int{index}
		return nil
	}
}

// scalarText renders a JSON string or number as text. The extraction
// scripts write confidence as either.
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}

// ImportReport summarizes a dataset conversion.
type ImportReport struct {
	Imported   int      `json:"imported"`
	Duplicates int      `json:"duplicates"`
	Skipped    int      `json:"skipped"`
	Topics     []string `json:"topics"`
}

// ToBank converts the dataset into a QuestionBank. Questions without a
// usable correct answer are skipped, duplicates (same text and options)
// are dropped, and IDs are derived from content so re-imports are stable.
func (d Dataset) ToBank(makeID func(content []byte) string) (*QuestionBank, ImportReport, error) {
	var report ImportReport
	if d.Provider == "" || d.Exam == "" {
		return nil, report, fmt.Errorf("dataset must name a provider and an exam; set them in the file or pass them alongside it")
	}

	bank := New(d.Provider, d.Exam)
	seen := make(map[string]bool)
	topics := make(map[string]bool)

	for _, item := range d.StudyData {
		q := item.Question
		hash := ContentHash(q.Text, q.Options)
		if seen[hash] {
			report.Duplicates++
			continue
		}

		options := make([]Option, len(q.Options))
		letterToID := make(map[string]string, len(q.Options))
		for i, o := range q.Options {
			optID := strconv.Itoa(i)
			letter := strings.ToUpper(strings.TrimSpace(o.Letter))
			if letter == "" {
				letter = string(rune('A' + i))
			}
			options[i] = Option{ID: optID, Letter: letter, Text: strings.TrimSpace(o.Text)}
			letterToID[letter] = optID
		}

		correct := answerOptionIDs(item.Answer, letterToID, len(options))
		if len(correct) == 0 {
			report.Skipped++
			continue
		}

		topic := TopicSlug(q.Topic)
		level := q.Difficulty
		if level == "" && item.StudyMetadata != nil {
			level = item.StudyMetadata.Difficulty
		}
		difficulty, ok := ParseDifficulty(level)
		if !ok {
			difficulty = DifficultyMedium
		}

		err := bank.AddQuestion(Question{
			ID:            makeID([]byte(hash)),
			TopicID:       topic,
			Text:          strings.TrimSpace(q.Text),
			Options:       options,
			CorrectAnswer: correct,
			Explanation:   strings.TrimSpace(item.Answer.Explanation),
			Difficulty:    difficulty,
			Tags:          q.Keywords,
		})
		if err != nil {
			report.Skipped++
			continue
		}
		seen[hash] = true
		topics[topic] = true
		report.Imported++
	}

	for _, q := range bank.Questions {
		if topics[q.TopicID] {
			report.Topics = append(report.Topics, q.TopicID)
			delete(topics, q.TopicID)
		}
	}
	return bank, report, nil
}

// FromBank renders a bank back into the dataset format.
func FromBank(bank *QuestionBank) Dataset {
	d := Dataset{
		Provider:  bank.ProviderID,
		Exam:      bank.ExamID,
		StudyData: make([]StudyItem, 0, len(bank.Questions)),
	}
	for i, q := range bank.Questions {
		idToLetter := make(map[string]string, len(q.Options))
		opts := make([]DatasetOption, len(q.Options))
		for j, o := range q.Options {
			letter := o.Letter
			if letter == "" {
				letter = string(rune('A' + j))
			}
			idToLetter[o.ID] = letter
			opts[j] = DatasetOption{Letter: letter, Text: o.Text}
		}
		var answer strings.Builder
		for _, a := range q.CorrectAnswer {
			answer.WriteString(idToLetter[a])
		}
		d.StudyData = append(d.StudyData, StudyItem{
			Question: DatasetQuestion{
				ID:         q.ID,
				Number:     i + 1,
				Text:       q.Text,
				Options:    opts,
				Topic:      q.TopicID,
				Difficulty: string(q.Difficulty),
				Keywords:   q.Tags,
			},
			Answer: DatasetAnswer{
				CorrectAnswer: answer.String(),
				Explanation:   q.Explanation,
			},
		})
	}
	return d
}

// answerOptionIDs resolves an answer key to option IDs. It returns nil when
// the key is empty or names anything that is not one of the options, so a
// partially understood answer never marks the wrong options correct.
func answerOptionIDs(a DatasetAnswer, letterToID map[string]string, optionCount int) []string {
	var ids []string
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if len(a.CorrectIndices) > 0 {
		for _, i := range a.CorrectIndices {
			if i < 0 || i >= optionCount {
				return nil
			}
			add(strconv.Itoa(i))
		}
		return ids
	}

	for _, letter := range ParseAnswerLetters(a.CorrectAnswer) {
		id, ok := letterToID[letter]
		if !ok {
			return nil
		}
		add(id)
	}
	return ids
}

var answerPrefix = regexp.MustCompile(`^(?:CORRECT\s+)?ANSWERS?(?:\s*[:\-]|\s+IS\b|\s)\s*`)

// ParseAnswerLetters splits answers such as "A", "AC", "A, C", "B and D" or
// "Answer: B" into upper-case option letters. Anything that is not a list
// of option letters, such as a prose answer, yields nil.
func ParseAnswerLetters(s string) []string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = answerPrefix.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " AND ", ",")
	s = strings.ReplaceAll(s, "&", ",")

	var out []string
	seen := make(map[string]bool)
	for _, token := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '/' || r == ';'
	}) {
		token = strings.Trim(token, "().")
		if !isLetterToken(token) {
			return nil
		}
		for _, r := range token {
			l := string(r)
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	return out
}

// isLetterToken reports whether token is a single option letter or a
// compact run of them in ascending order ("AC", "BDE"). Ordinary words
// fail the ordering check.
func isLetterToken(token string) bool {
	if token == "" {
		return false
	}
	prev := rune(0)
	for _, r := range token {
		if r < 'A' || r > 'Z' || r <= prev {
			return false
		}
		prev = r
	}
	return true
}

// ContentHash fingerprints a question by its text and options.
func ContentHash(text string, options []DatasetOption) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.Join(strings.Fields(text), " "))))
	for _, o := range options {
		h.Write([]byte{0})
		h.Write([]byte(strings.ToLower(strings.Join(strings.Fields(o.Text), " "))))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// TopicSlug turns a free-form topic name into an identifier.
func TopicSlug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return DefaultTopic
	}
	return slug
}
