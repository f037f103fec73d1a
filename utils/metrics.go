package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "estatepro_gateway_requests_total",
			Help: "Scheduling gateway calls by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	GatewayLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "estatepro_gateway_request_duration_seconds",
			Help:    "Scheduling gateway call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	Decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "estatepro_meeting_decisions_total",
			Help: "Approve/reject decisions by result",
		},
		[]string{"action", "result"},
	)

	DecisionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "estatepro_meeting_decisions_in_flight",
			Help: "Decisions currently awaiting the gateway",
		},
	)

	RankingSessions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "estatepro_ranking_sessions_total",
			Help: "Ranking sessions by lifecycle event",
		},
		[]string{"event"},
	)
)
