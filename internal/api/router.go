package api

import "net/http"

// RegisterRoutes wires every API endpoint onto mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Sessions
	mux.HandleFunc("POST /sessions", h.createSession)
	mux.HandleFunc("GET /sessions/{sessionID}", h.getSession)
	mux.HandleFunc("PATCH /sessions/{sessionID}", h.updateSession)
	mux.HandleFunc("DELETE /sessions/{sessionID}", h.deleteSession)
	mux.HandleFunc("POST /sessions/{sessionID}/answers", h.submitAnswer)
	mux.HandleFunc("POST /sessions/{sessionID}/complete", h.completeSession)
	mux.HandleFunc("GET /sessions/{sessionID}/results", h.getResults)

	// Catalog
	mux.HandleFunc("GET /providers", h.listProviders)
	mux.HandleFunc("GET /providers/{providerID}/exams", h.listExams)
	mux.HandleFunc("GET /providers/{providerID}/exams/{examID}/topics", h.listTopics)
	mux.HandleFunc("GET /providers/{providerID}/exams/{examID}/questions", h.searchQuestions)

	// Import / Export
	mux.HandleFunc("POST /import", h.importDataset)
	mux.HandleFunc("GET /export", h.exportDataset)
}
