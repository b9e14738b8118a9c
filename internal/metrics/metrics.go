// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	GateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_gate_decisions_total",
			Help: "Access gate decisions by route class and outcome",
		},
		[]string{"class", "outcome"},
	)
	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_project_status_transitions_total",
			Help: "Applied project status transitions",
		},
		[]string{"from", "to"},
	)
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_login_attempts_total",
			Help: "Login attempts by outcome",
		},
		[]string{"success"},
	)
)
