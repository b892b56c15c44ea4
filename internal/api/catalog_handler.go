package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/examprep/backend/internal/domain/questionbank"
)

// ── Response types ──────────────────────────────────────────────────────────

type QuestionSearchResponse struct {
	ProviderID string                  `json:"provider_id" example:"aws"`
	ExamID     string                  `json:"exam_id" example:"saa-c03"`
	Count      int                     `json:"count" example:"2"`
	Questions  []questionbank.Question `json:"questions"`
}

// maxSearchLimit caps the questions returned by one search.
const maxSearchLimit = 200

// ── Handlers ────────────────────────────────────────────────────────────────

// listProviders lists every certification provider.
// @Summary      List providers
// @Tags         Catalog
// @Produce      json
// @Success      200  {array}   catalog.Provider
// @Failure      502  {object}  map[string]string
// @Router       /providers [get]
func (h *Handler) listProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.library.ListProviders(r.Context())
	if h.handleServiceError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, providers)
}

// listExams lists the exams of a provider.
// @Summary      List exams
// @Tags         Catalog
// @Produce      json
// @Param        providerID  path      string  true  "Provider ID"
// @Success      200         {array}   catalog.Exam
// @Failure      404         {object}  map[string]string
// @Router       /providers/{providerID}/exams [get]
func (h *Handler) listExams(w http.ResponseWriter, r *http.Request) {
	exams, err := h.library.ListExams(r.Context(), r.PathValue("providerID"))
	if h.handleServiceError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, exams)
}

// listTopics lists the topics of an exam.
// @Summary      List topics
// @Tags         Catalog
// @Produce      json
// @Param        providerID  path      string  true  "Provider ID"
// @Param        examID      path      string  true  "Exam ID"
// @Success      200         {array}   catalog.Topic
// @Failure      404         {object}  map[string]string
// @Router       /providers/{providerID}/exams/{examID}/topics [get]
func (h *Handler) listTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.library.ListTopics(r.Context(), r.PathValue("providerID"), r.PathValue("examID"))
	if h.handleServiceError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, topics)
}

// searchQuestions browses an exam's questions without their answers.
// @Summary      Search questions
// @Description  Filters by topic and difficulty and ranks by relevance when q is set.
// @Tags         Catalog
// @Produce      json
// @Param        providerID  path      string  true   "Provider ID"
// @Param        examID      path      string  true   "Exam ID"
// @Param        q           query     string  false  "Search terms"
// @Param        topic       query     string  false  "Topic ID, repeatable or comma separated"
// @Param        difficulty  query     string  false  "easy, medium or hard"
// @Param        limit       query     int     false  "Maximum results"
// @Success      200         {object}  QuestionSearchResponse
// @Failure      400         {object}  map[string]string
// @Router       /providers/{providerID}/exams/{examID}/questions [get]
func (h *Handler) searchQuestions(w http.ResponseWriter, r *http.Request) {
	providerID, examID := r.PathValue("providerID"), r.PathValue("examID")
	f, msg := parseFilter(r)
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	questions, err := h.library.SearchQuestions(r.Context(), providerID, examID, f)
	if h.handleServiceError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, QuestionSearchResponse{
		ProviderID: providerID,
		ExamID:     examID,
		Count:      len(questions),
		Questions:  questions,
	})
}

// parseFilter reads the search query parameters. A non-empty message means
// the query was malformed.
func parseFilter(r *http.Request) (questionbank.Filter, string) {
	query := r.URL.Query()
	f := questionbank.Filter{Search: query.Get("q"), Limit: maxSearchLimit}

	for _, v := range query["topic"] {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.TopicIDs = append(f.TopicIDs, t)
			}
		}
	}
	if v := query.Get("difficulty"); v != "" {
		d, ok := questionbank.ParseDifficulty(v)
		if !ok {
			return f, "difficulty must be one of easy, medium, hard"
		}
		f.Difficulty = d
	}
	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxSearchLimit {
			return f, "limit must be between 1 and " + strconv.Itoa(maxSearchLimit)
		}
		f.Limit = n
	}
	return f, ""
}
