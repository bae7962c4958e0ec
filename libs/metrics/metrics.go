// Package metrics holds the Prometheus collectors shared by the EduLearn services
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for EduLearn
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Learning metrics
	Enrollments         *prometheus.CounterVec
	LessonsCompleted    prometheus.Counter
	AchievementsAwarded *prometheus.CounterVec
	QuizSubmissions     *prometheus.CounterVec
	QuizzesGenerated    *prometheus.CounterVec
	LLMRequests         *prometheus.CounterVec
	RecommendationCache *prometheus.CounterVec

	// Explorer metrics
	DatasetsUploaded *prometheus.CounterVec
	ChartsBuilt      *prometheus.CounterVec

	// Background metrics
	TasksProcessed  *prometheus.CounterVec
	EventsPublished *prometheus.CounterVec
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "edulearn_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"service", "method", "route", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "edulearn_http_request_duration_seconds",
					Help:    "HTTP request duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"service", "method", "route"},
			),

			Enrollments: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "edulearn_enrollments_total",
					Help: "Total number of course enrollments",
				},
				[]string{"category"},
			),
			LessonsCompleted: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "edulearn_lessons_completed_total",
					Help: "Total number of completed lessons",
				},
			),
			AchievementsAwarded: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "edulearn_achievements_awarded_total",
					Help: "Total number of awarded achievements",
				},
				[]string{"achievement"},
			),
			QuizSubmissions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "edulearn_quiz_submissions_total",
					Help: "Total number of submitted quizzes",
				},
				[]string{"source"}, // ai, template
			),
			QuizzesGenerated: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "edulearn_quizzes_generated_total",
					Help: "Total number of generated quizzes",
				},
				[]string{"source"},
			),
			LLMRequests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "edulearn_llm_requests_total",
					Help: "Total number of LLM provider requests",
				},
				[]string{"provider", "result"},
			),
			RecommendationCache: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "edulearn_recommendation_cache_total",
					Help: "Recommendation cache lookups",
				},
				[]string{"result"}, // hit, miss, error
			),

			DatasetsUploaded: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "edulearn_datasets_uploaded_total",
					Help: "Total number of uploaded datasets",
				},
				[]string{"format"},
			),
			ChartsBuilt: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "edulearn_charts_built_total",
					Help: "Total number of built chart figures",
				},
				[]string{"type"},
			),

			TasksProcessed: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "edulearn_tasks_processed_total",
					Help: "Total number of processed background tasks",
				},
				[]string{"type", "result"},
			),
			EventsPublished: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "edulearn_events_published_total",
					Help: "Total number of published domain events",
				},
				[]string{"type", "result"},
			),
		}
	})
	return sharedMetrics
}

// Middleware records request count and latency labelled by the chi route pattern
func (m *Metrics) Middleware(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			m.HTTPRequestsTotal.WithLabelValues(service, r.Method, route, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(service, r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// Result converts an error into a result label
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
