package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examprep/backend/internal/metrics"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.SessionCreated(true)
	m.SessionCreated(false)
	m.SessionCreated(false)
	m.AnswerSubmitted("correct")
	m.TransitionRejected("pause")
	m.SessionCompleted(50)
	m.SessionFinished("abandoned")
	m.ObserveRequest(http.MethodGet, 200, 10*time.Millisecond)

	expected := `
# HELP study_sessions_created_total Number of study sessions created
# TYPE study_sessions_created_total counter
study_sessions_created_total{adaptive="false"} 2
study_sessions_created_total{adaptive="true"} 1
# HELP study_sessions_finished_total Number of sessions that reached a terminal status
# TYPE study_sessions_finished_total counter
study_sessions_finished_total{status="abandoned"} 1
study_sessions_finished_total{status="completed"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"study_sessions_created_total", "study_sessions_finished_total")
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "study_session_accuracy_percent")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	rec := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "study_transitions_rejected_total")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.SessionCreated(true)
		m.AnswerSubmitted("skipped")
		m.SessionCompleted(90)
		m.SessionFinished("abandoned")
		m.TransitionRejected("next")
		m.ObserveRequest(http.MethodPost, 500, time.Second)
	})
}
