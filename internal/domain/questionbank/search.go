package questionbank

import (
	"sort"
	"strings"
	"unicode"
)

// Field weights for relevance scoring.
const (
	weightText        = 3.0
	weightTag         = 2.0
	weightTopic       = 2.0
	weightExplanation = 1.0
	phraseBonus       = 5.0
)

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "for": true, "how": true,
	"in": true, "is": true, "of": true, "on": true, "or": true, "the": true,
	"to": true, "what": true, "which": true, "with": true,
}

// Tokenize lowercases s and splits it into search terms, dropping
// stopwords and single characters.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) < 2 || stopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Relevance scores q against the query. Zero means no match.
func Relevance(q Question, query string) float64 {
	terms := Tokenize(query)
	if len(terms) == 0 {
		return 0
	}

	text := countTerms(Tokenize(q.Text))
	explanation := countTerms(Tokenize(q.Explanation))
	tags := make(map[string]bool)
	for _, tag := range q.Tags {
		for _, t := range Tokenize(tag) {
			tags[t] = true
		}
	}
	topic := make(map[string]bool)
	for _, t := range Tokenize(q.TopicID) {
		topic[t] = true
	}

	var score float64
	for _, term := range terms {
		score += weightText * float64(text[term])
		score += weightExplanation * float64(explanation[term])
		if tags[term] {
			score += weightTag
		}
		if topic[term] {
			score += weightTopic
		}
	}

	phrase := strings.ToLower(strings.TrimSpace(query))
	if len(terms) > 1 && strings.Contains(strings.ToLower(q.Text), phrase) {
		score += phraseBonus
	}
	return score
}

// Rank keeps questions with a positive relevance for query, ordered by
// descending score. Equal scores keep their input order.
func Rank(qs []Question, query string) []Question {
	type scored struct {
		q     Question
		score float64
	}
	hits := make([]scored, 0, len(qs))
	for _, q := range qs {
		if s := Relevance(q, query); s > 0 {
			hits = append(hits, scored{q: q, score: s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	out := make([]Question, len(hits))
	for i, h := range hits {
		out[i] = h.q
	}
	return out
}

func countTerms(tokens []string) map[string]int {
	m := make(map[string]int, len(tokens))
	for _, t := range tokens {
		m[t]++
	}
	return m
}
