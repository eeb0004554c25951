package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider"},
	)
	AIPromptTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_prompt_tokens_total",
			Help: "Prompt tokens sent to AI providers",
		},
		[]string{"provider", "model"},
	)

	FitScoresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fit_scores_total",
			Help: "Total number of fit scores computed by method",
		},
		[]string{"method"},
	)
	FitScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fit_score",
			Help:    "Distribution of fit_score ([0,100])",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)
	FactorScoreHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fit_factor_score",
			Help:    "Distribution of individual factor scores ([0,1])",
			Buckets: []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
		[]string{"factor"},
	)
	RefineFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refine_fallbacks_total",
			Help: "AI refinements that fell back to the heuristic score",
		},
		[]string{"reason"},
	)

	IngestRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_records_total",
			Help: "Raw job records processed by ingestion, by source and outcome",
		},
		[]string{"source", "outcome"},
	)
	StoreOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_op_duration_seconds",
			Help:    "Job store operation duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"store", "op", "status"},
	)
)

var registerOnce sync.Once

// InitMetrics registers every collector with the default registry. Safe to call more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			AIRequestsTotal,
			AIRequestDuration,
			AIPromptTokensTotal,
			FitScoresTotal,
			FitScoreHistogram,
			FactorScoreHistogram,
			RefineFallbacksTotal,
			IngestRecordsTotal,
			StoreOpDuration,
		)
	})
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// ObserveAIRequest records one provider call.
func ObserveAIRequest(provider, outcome string, dur time.Duration) {
	AIRequestsTotal.WithLabelValues(provider, outcome).Inc()
	AIRequestDuration.WithLabelValues(provider).Observe(dur.Seconds())
}

// ObserveFitScore records a returned fit score.
func ObserveFitScore(method string, fitScore float64) {
	FitScoresTotal.WithLabelValues(method).Inc()
	if fitScore >= 0 && fitScore <= 100 {
		FitScoreHistogram.Observe(fitScore)
	}
}

// ObserveFactor records one factor score.
func ObserveFactor(factor string, score float64) {
	if score >= 0 && score <= 1 {
		FactorScoreHistogram.WithLabelValues(factor).Observe(score)
	}
}

// RefineFallback counts a refinement that kept the heuristic score.
func RefineFallback(reason string) {
	RefineFallbacksTotal.WithLabelValues(reason).Inc()
}

// IngestRecords adds n records with the given outcome.
func IngestRecords(source, outcome string, n int) {
	if n <= 0 {
		return
	}
	IngestRecordsTotal.WithLabelValues(source, outcome).Add(float64(n))
}

// ObserveStoreOp records one store call.
func ObserveStoreOp(store, op string, err error, dur time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	StoreOpDuration.WithLabelValues(store, op, status).Observe(dur.Seconds())
}
