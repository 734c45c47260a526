package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ecopack"

// Recorder implements forecast.Metrics and the HTTP middleware hooks using Prometheus.
type Recorder struct {
	gatherer prometheus.Gatherer

	forecastsTotal   *prometheus.CounterVec
	forecastDuration *prometheus.HistogramVec
	trialsTotal      *prometheus.CounterVec
	periodsPerPlan   prometheus.Histogram
	invalidPlans     prometheus.Counter
	degenerate       prometheus.Counter

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge
	httpResponseSize    *prometheus.HistogramVec
}

// New registers the collectors with reg. A nil reg uses a fresh private registry.
func New(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Recorder{
		gatherer: reg,
		forecastsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "forecast",
				Name:      "runs_total",
				Help:      "Total number of completed forecasts",
			},
			[]string{"material"},
		),
		forecastDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "forecast",
				Name:      "duration_seconds",
				Help:      "Wall time of a forecast simulation",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"material"},
		),
		trialsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "forecast",
				Name:      "trials_total",
				Help:      "Total number of Monte-Carlo trials requested (periods x simulations)",
			},
			[]string{"material"},
		),
		periodsPerPlan: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "forecast",
				Name:      "plan_periods",
				Help:      "Number of periods in normalized plans",
				Buckets:   []float64{1, 3, 6, 12, 24, 36, 60, 120},
			},
		),
		invalidPlans: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "forecast",
				Name:      "invalid_plans_total",
				Help:      "Plans rejected because no row survived normalization",
			},
		),
		degenerate: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "forecast",
				Name:      "degenerate_periods_total",
				Help:      "Periods in which every trial failed and zeros were reported",
			},
		),
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method", "class"},
		),
		httpInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests",
			},
		),
		httpResponseSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   []float64{200, 500, 1_000, 2_000, 5_000, 10_000, 50_000, 100_000, 500_000, 1_000_000},
			},
			[]string{"route", "method", "class"},
		),
	}
}

// ObserveForecast records a completed forecast.
func (r *Recorder) ObserveForecast(material string, periods, simulations int, duration time.Duration) {
	r.forecastsTotal.WithLabelValues(material).Inc()
	r.forecastDuration.WithLabelValues(material).Observe(duration.Seconds())
	r.trialsTotal.WithLabelValues(material).Add(float64(periods * simulations))
	r.periodsPerPlan.Observe(float64(periods))
}

// RecordInvalidPlan counts a rejected plan.
func (r *Recorder) RecordInvalidPlan() {
	r.invalidPlans.Inc()
}

// RecordDegeneratePeriods counts periods with no surviving trial.
func (r *Recorder) RecordDegeneratePeriods(n int) {
	r.degenerate.Add(float64(n))
}

// RequestStarted tracks an in-flight request. Call the returned func when it ends.
func (r *Recorder) RequestStarted() func() {
	r.httpInFlight.Inc()
	return r.httpInFlight.Dec
}

// ObserveRequest records a finished HTTP request. Route should be the templated path.
func (r *Recorder) ObserveRequest(route, method string, status int, duration time.Duration, size int64) {
	class := StatusClass(status)
	r.httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpRequestDuration.WithLabelValues(route, method, class).Observe(duration.Seconds())
	r.httpResponseSize.WithLabelValues(route, method, class).Observe(float64(size))
}

// Handler exposes the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

// StatusClass buckets a status code as "2xx", "4xx" and so on.
func StatusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
