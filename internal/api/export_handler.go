package api

import (
	"errors"
	"net/http"

	"github.com/examprep/backend/internal/domain/questionbank"
)

// ── Request types ───────────────────────────────────────────────────────────

// ImportRequest is a study dataset file posted as the request body.
type ImportRequest struct {
	questionbank.Dataset
}

func (r *ImportRequest) Validate() error {
	if r.Provider == "" {
		return errors.New("provider is required")
	}
	if r.Exam == "" {
		return errors.New("exam is required")
	}
	if len(r.StudyData) == 0 {
		return errors.New("study_data must contain at least one question")
	}
	return nil
}

// ── Handlers ────────────────────────────────────────────────────────────────

// importDataset loads a study dataset into the question corpus.
// @Summary      Import a study dataset
// @Description  Creates the provider, exam and topics on demand and skips duplicate questions.
// @Description  The provider and exam query parameters apply when the file does not name them.
// @Tags         Import/Export
// @Accept       json
// @Produce      json
// @Param        provider  query     string         false  "Provider ID for files without one"
// @Param        exam      query     string         false  "Exam ID for files without one"
// @Param        body      body      ImportRequest  true   "Study dataset"
// @Success      201       {object}  questionbank.ImportReport
// @Failure      400       {object}  map[string]string
// @Failure      502       {object}  map[string]string
// @Router       /import [post]
func (h *Handler) importDataset(w http.ResponseWriter, r *http.Request) {
	// Decoding only overwrites keys present in the body, so file values win.
	q := r.URL.Query()
	req := ImportRequest{Dataset: questionbank.Dataset{Provider: q.Get("provider"), Exam: q.Get("exam")}}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	report, err := h.library.Import(r.Context(), req.Dataset)
	if h.handleServiceError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusCreated, report)
}

// exportDataset returns an exam's questions in the study dataset format.
// @Summary      Export an exam
// @Tags         Import/Export
// @Produce      json
// @Param        provider  query     string  true  "Provider ID"
// @Param        exam      query     string  true  "Exam ID"
// @Success      200       {object}  questionbank.Dataset
// @Failure      400       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /export [get]
func (h *Handler) exportDataset(w http.ResponseWriter, r *http.Request) {
	providerID, examID := r.URL.Query().Get("provider"), r.URL.Query().Get("exam")
	if providerID == "" || examID == "" {
		respondError(w, http.StatusBadRequest, "provider and exam query parameters are required")
		return
	}

	d, err := h.library.Export(r.Context(), providerID, examID)
	if h.handleServiceError(w, r, err) {
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+providerID+"-"+examID+`.json"`)
	respondJSON(w, http.StatusOK, d)
}
