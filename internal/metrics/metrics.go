// Package metrics owns the gateway's Prometheus collectors.
package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes.
const (
	LoginSuccess    = "success"
	LoginRejected   = "rejected"
	LoginNoResponse = "no_response"
	LoginSetup      = "setup_error"
)

// Metrics is safe to use as a nil pointer; every recorder is then a no-op.
type Metrics struct {
	reg *prometheus.Registry

	logins          *prometheus.CounterVec
	forcedLogouts   prometheus.Counter
	guardDenials    *prometheus.CounterVec
	upstreamReplies *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		forcedLogouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dashboard",
			Name:      "forced_logouts_total",
			Help:      "Sessions ended because the upstream API denied the token.",
		}),
		guardDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Name:      "guard_denials_total",
			Help:      "Navigations redirected home by the route guard.",
		}, []string{"route"}),
		upstreamReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Name:      "upstream_responses_total",
			Help:      "Upstream API responses by status class.",
		}, []string{"class"}),
	}
	reg.MustRegister(
		m.logins,
		m.forcedLogouts,
		m.guardDenials,
		m.upstreamReplies,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ForcedLogout() {
	if m == nil {
		return
	}
	m.forcedLogouts.Inc()
}

func (m *Metrics) GuardDenied(route string) {
	if m == nil {
		return
	}
	m.guardDenials.WithLabelValues(route).Inc()
}

// UpstreamStatus counts a reply; status 0 means no response was received.
func (m *Metrics) UpstreamStatus(status int) {
	if m == nil {
		return
	}
	m.upstreamReplies.WithLabelValues(StatusClass(status)).Inc()
}

func StatusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
	return gin.WrapH(h)
}
