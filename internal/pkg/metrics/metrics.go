// Package metrics holds the Prometheus instrumentation for the exchange.
// Every recorder is safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medbridge"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"

	OperationRemoteFetch    = "remote_fetch"
	OperationEndpointProbe  = "endpoint_probe"
	OperationNotifyPublish  = "notification_publish"
	ValidationResultValid   = "valid"
	ValidationResultInvalid = "invalid"
)

type Metrics struct {
	registry prometheus.Gatherer

	DataRequestsTotal   *prometheus.CounterVec
	OutboundDuration    *prometheus.HistogramVec
	EndpointValidations *prometheus.CounterVec
	NotificationsTotal  *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ServiceInfo         *prometheus.GaugeVec
}

// New registers the exchange metrics on a fresh registry.
func New(version string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return NewWithRegisterer(registry, registry, version)
}

func NewWithRegisterer(reg prometheus.Registerer, gatherer prometheus.Gatherer, version string) *Metrics {
	m := &Metrics{
		registry: gatherer,

		DataRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "data_requests_total",
				Help:      "Data requests by status at the time of the transition",
			},
			[]string{"status", "cross_hospital"},
		),

		OutboundDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "outbound_request_duration_seconds",
				Help:      "Duration of calls to remote FHIR endpoints",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation", "outcome"},
		),

		EndpointValidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "endpoint_validations_total",
				Help:      "Endpoint validations by result",
			},
			[]string{"result"},
		),

		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Notification events by delivery outcome",
			},
			[]string{"outcome"},
		),

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),

		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		ServiceInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "info",
				Help:      "Service information",
			},
			[]string{"version", "go_version"},
		),
	}

	reg.MustRegister(
		m.DataRequestsTotal,
		m.OutboundDuration,
		m.EndpointValidations,
		m.NotificationsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ServiceInfo,
	)
	m.ServiceInfo.WithLabelValues(version, runtime.Version()).Set(1)

	return m
}

func (m *Metrics) RecordDataRequest(status string, crossHospital bool) {
	if m == nil {
		return
	}
	m.DataRequestsTotal.WithLabelValues(status, strconv.FormatBool(crossHospital)).Inc()
}

func (m *Metrics) ObserveOutbound(operation string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeFailure
	if success {
		outcome = OutcomeSuccess
	}
	m.OutboundDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}

func (m *Metrics) RecordEndpointValidation(valid bool) {
	if m == nil {
		return
	}
	result := ValidationResultInvalid
	if valid {
		result = ValidationResultValid
	}
	m.EndpointValidations.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordNotification(outcome string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
