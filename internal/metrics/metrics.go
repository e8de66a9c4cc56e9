package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Business metrics
	AuthAttemptsTotal  *prometheus.CounterVec
	SubmissionsTotal   *prometheus.CounterVec
	UploadsTotal       *prometheus.CounterVec
	EventsPublished    *prometheus.CounterVec
	RSVPsTotal         *prometheus.CounterVec
	CertificatesIssued prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics on a fresh registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lms_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lms_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		AuthAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lms_auth_attempts_total",
				Help: "Authentication attempts by flow and outcome",
			},
			[]string{"flow", "outcome"},
		),
		SubmissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lms_submissions_total",
				Help: "Problem set submissions by type and whether it was the first one",
			},
			[]string{"type", "first"},
		),
		UploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lms_uploads_total",
				Help: "File uploads by kind and status",
			},
			[]string{"kind", "status"},
		),
		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lms_events_published_total",
				Help: "Domain events published by type and status",
			},
			[]string{"type", "status"},
		),
		RSVPsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lms_event_rsvps_total",
				Help: "Event RSVPs by event kind and action",
			},
			[]string{"kind", "action"},
		),
		CertificatesIssued: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lms_certificates_issued_total",
				Help: "Certificates issued",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthAttemptsTotal,
		m.SubmissionsTotal,
		m.UploadsTotal,
		m.EventsPublished,
		m.RSVPsTotal,
		m.CertificatesIssued,
	)

	return m
}

// Registry exposes the registry the metrics were registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware instruments requests. Routes are labelled by their pattern, not the raw path.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Recorders below tolerate a nil receiver so services can run without metrics.

func (m *Metrics) ObserveAuth(flow, outcome string) {
	if m == nil {
		return
	}
	m.AuthAttemptsTotal.WithLabelValues(flow, outcome).Inc()
}

func (m *Metrics) ObserveSubmission(submissionType string, first bool) {
	if m == nil {
		return
	}
	m.SubmissionsTotal.WithLabelValues(submissionType, strconv.FormatBool(first)).Inc()
}

func (m *Metrics) ObserveUpload(kind, status string) {
	if m == nil {
		return
	}
	m.UploadsTotal.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) ObserveEvent(eventType string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.EventsPublished.WithLabelValues(eventType, status).Inc()
}

func (m *Metrics) ObserveRSVP(kind, action string) {
	if m == nil {
		return
	}
	m.RSVPsTotal.WithLabelValues(kind, action).Inc()
}

func (m *Metrics) ObserveCertificateIssued() {
	if m == nil {
		return
	}
	m.CertificatesIssued.Inc()
}
