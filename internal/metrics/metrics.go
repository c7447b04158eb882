// Package metrics holds the client-side Prometheus collectors: REST call
// counts and latencies plus realtime socket events.
package metrics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	SocketEvents    *prometheus.CounterVec
	CallsTotal      *prometheus.CounterVec
}

// New registers the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expertconnect_client_requests_total",
				Help: "Total number of REST calls issued by the client",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "expertconnect_client_request_duration_seconds",
				Help:    "REST call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		SocketEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expertconnect_client_socket_events_total",
				Help: "Realtime envelopes sent and received, by type",
			},
			[]string{"direction", "type"},
		),
		CallsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expertconnect_client_calls_total",
				Help: "Meeting room sessions by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// RecordRequest observes one REST call. status 0 means the request never
// completed.
func (m *Metrics) RecordRequest(method, path string, status int, d time.Duration) {
	route := Route(path)
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.RequestsTotal.WithLabelValues(method, route, code).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) RecordSocketEvent(direction, envelopeType string) {
	m.SocketEvents.WithLabelValues(direction, envelopeType).Inc()
}

func (m *Metrics) RecordCall(outcome string) {
	m.CallsTotal.WithLabelValues(outcome).Inc()
}

// Route replaces numeric path segments with "{id}" to keep label
// cardinality bounded.
func Route(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if s == "" {
			continue
		}
		if _, err := strconv.Atoi(s); err == nil {
			segs[i] = "{id}"
		}
	}
	return strings.Join(segs, "/")
}

// Summary renders the request counters as sorted "METHOD route status count"
// lines.
func (m *Metrics) Summary() ([]string, error) {
	families, err := m.Registry.Gather()
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, mf := range families {
		if mf.GetName() != "expertconnect_client_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			lines = append(lines, fmt.Sprintf("%s %s %s %.0f",
				labels["method"], labels["route"], labels["status"], metric.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)
	return lines, nil
}
