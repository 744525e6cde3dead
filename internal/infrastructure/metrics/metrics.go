// Package metrics registers the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MeetingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "greenroom_meetings_created_total",
		Help: "Meetings successfully created, provider room included.",
	})

	MeetingCreateFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "greenroom_meeting_create_failures_total",
		Help: "Meeting creation attempts that failed, including rollbacks after token issuance errors.",
	})

	JoinRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "greenroom_join_requests_total",
		Help: "Join requests accepted into a waiting queue.",
	})

	Decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "greenroom_admission_decisions_total",
		Help: "Terminal admission decisions by outcome.",
	}, []string{"decision"})

	TokensIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "greenroom_tokens_issued_total",
		Help: "Access tokens minted by role.",
	}, []string{"role"})

	QueueCleared = promauto.NewCounter(prometheus.CounterOpts{
		Name: "greenroom_queues_cleared_total",
		Help: "Waiting queues emptied by the host.",
	})

	Subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "greenroom_event_subscribers",
		Help: "Live websocket subscriptions across all rooms.",
	})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "greenroom_http_request_duration_seconds",
		Help:    "HTTP request latency by method and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)
