// Package metrics defines the Prometheus collectors of the session engine.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	sessionsCreated     *prometheus.CounterVec
	answersSubmitted    *prometheus.CounterVec
	sessionsFinished    *prometheus.CounterVec
	transitionsRejected *prometheus.CounterVec
	sessionAccuracy     prometheus.Histogram
	requestDuration     *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		sessionsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "study_sessions_created_total",
				Help: "Number of study sessions created",
			},
			[]string{"adaptive"},
		),
		answersSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "study_answers_submitted_total",
				Help: "Number of answers submitted, by result",
			},
			[]string{"result"}, // correct, incorrect, skipped
		),
		sessionsFinished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "study_sessions_finished_total",
				Help: "Number of sessions that reached a terminal status",
			},
			[]string{"status"},
		),
		transitionsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "study_transitions_rejected_total",
				Help: "Number of session actions rejected by the state machine",
			},
			[]string{"action"},
		),
		sessionAccuracy: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "study_session_accuracy_percent",
				Help:    "Accuracy of completed sessions",
				Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),
	}
}

func (m *Metrics) SessionCreated(adaptive bool) {
	if m == nil {
		return
	}
	m.sessionsCreated.WithLabelValues(strconv.FormatBool(adaptive)).Inc()
}

// AnswerSubmitted records one answer; result is correct, incorrect or
// skipped.
func (m *Metrics) AnswerSubmitted(result string) {
	if m == nil {
		return
	}
	m.answersSubmitted.WithLabelValues(result).Inc()
}

func (m *Metrics) SessionFinished(status string) {
	if m == nil {
		return
	}
	m.sessionsFinished.WithLabelValues(status).Inc()
}

func (m *Metrics) SessionCompleted(accuracy float64) {
	if m == nil {
		return
	}
	m.sessionsFinished.WithLabelValues("completed").Inc()
	m.sessionAccuracy.Observe(accuracy)
}

func (m *Metrics) TransitionRejected(action string) {
	if m == nil {
		return
	}
	m.transitionsRejected.WithLabelValues(action).Inc()
}

func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the collectors registered with g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
