package api

import (
	"net/http"

	"github.com/examprep/backend/internal/service"
)

// ── Request types ───────────────────────────────────────────────────────────

// Request bodies are the engine's own request structs; aliases keep the
// swagger annotations readable.
type (
	CreateSessionRequest = service.CreateSessionRequest
	SubmitAnswerRequest  = service.SubmitAnswerRequest
	UpdateSessionRequest = service.UpdateSessionRequest
)

// ── Handlers ────────────────────────────────────────────────────────────────

// createSession starts a study session.
// @Summary      Create a study session
// @Description  Selects questions for a provider exam and starts an active session.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        body  body      CreateSessionRequest  true  "Session options"
// @Success      201   {object}  service.SessionView
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string  "provider, exam or topic not found"
// @Failure      422   {object}  map[string]string  "no questions available"
// @Failure      502   {object}  map[string]string
// @Router       /sessions [post]
func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	view, err := h.sessions.CreateSession(r.Context(), req)
	if h.handleServiceError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

// getSession returns a session with its questions and progress.
// @Summary      Get a study session
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  service.SessionView
// @Failure      404        {object}  map[string]string
// @Router       /sessions/{sessionID} [get]
func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.GetSession(r.Context(), r.PathValue("sessionID"))
	if h.handleServiceError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// updateSession applies one state-machine action.
// @Summary      Update a study session
// @Description  Applies pause, resume, next, previous, answer, mark_for_review, complete or delete.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string                true  "Session ID"
// @Param        body       body      UpdateSessionRequest  true  "Action and payload"
// @Success      200        {object}  service.SessionView
// @Failure      400        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Failure      409        {object}  map[string]string  "invalid transition or concurrent update"
// @Failure      422        {object}  map[string]string  "navigation boundary or unanswered questions"
// @Router       /sessions/{sessionID} [patch]
func (h *Handler) updateSession(w http.ResponseWriter, r *http.Request) {
	var req UpdateSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	view, err := h.sessions.UpdateSession(r.Context(), r.PathValue("sessionID"), req)
	if h.handleServiceError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// submitAnswer records an answer or a skip for one question.
// @Summary      Submit an answer
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string               true  "Session ID"
// @Param        body       body      SubmitAnswerRequest  true  "Answer"
// @Success      200        {object}  service.AnswerResult
// @Failure      400        {object}  map[string]string
// @Failure      404        {object}  map[string]string  "session or question not found"
// @Failure      409        {object}  map[string]string
// @Router       /sessions/{sessionID}/answers [post]
func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req SubmitAnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.sessions.SubmitAnswer(r.Context(), r.PathValue("sessionID"), req)
	if h.handleServiceError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// completeSession scores the session and returns its analysis.
// @Summary      Complete a study session
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  service.Completion
// @Failure      404        {object}  map[string]string
// @Failure      409        {object}  map[string]string  "already completed"
// @Failure      422        {object}  map[string]string  "questions remain unanswered"
// @Router       /sessions/{sessionID}/complete [post]
func (h *Handler) completeSession(w http.ResponseWriter, r *http.Request) {
	completion, err := h.sessions.CompleteSession(r.Context(), r.PathValue("sessionID"))
	if h.handleServiceError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, completion)
}

// getResults recomputes the analysis of a completed session.
// @Summary      Get session results
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  service.Completion
// @Failure      404        {object}  map[string]string
// @Failure      422        {object}  map[string]string  "session not completed"
// @Router       /sessions/{sessionID}/results [get]
func (h *Handler) getResults(w http.ResponseWriter, r *http.Request) {
	completion, err := h.sessions.GetResults(r.Context(), r.PathValue("sessionID"))
	if h.handleServiceError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, completion)
}

// deleteSession abandons an open session or removes an abandoned one.
// @Summary      Delete a study session
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  service.DeleteResult
// @Failure      404        {object}  map[string]string
// @Failure      409        {object}  map[string]string  "completed sessions are archived"
// @Router       /sessions/{sessionID} [delete]
func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	result, err := h.sessions.DeleteSession(r.Context(), r.PathValue("sessionID"))
	if h.handleServiceError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, result)
}
