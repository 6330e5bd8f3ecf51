package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeIgnored       = "ignored"
	outcomeIncomplete    = "incomplete"
	outcomeNoCredentials = "no_credentials"
	outcomeDispatched    = "dispatched"
	outcomeRemoved       = "removed"
	outcomeForwarded     = "forwarded"
	outcomeUnmatched     = "unmatched"
	outcomeFailed        = "failed"

	statusSuccess  = "success"
	statusRejected = "rejected"
	statusFailed   = "failed"
)

var (
	lifecycleEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigfox_agent_lifecycle_events_total",
		Help: "Device lifecycle events handled, by event and outcome",
	}, []string{"event", "outcome"})

	outboundRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigfox_agent_outbound_requests_total",
		Help: "Requests sent to the Sigfox API, by operation and status",
	}, []string{"operation", "status"})

	callbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigfox_agent_callbacks_total",
		Help: "Sigfox data callbacks received, by outcome",
	}, []string{"outcome"})

	correlatedDevices = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sigfox_agent_correlated_devices",
		Help: "Number of platform devices currently correlated with a Sigfox device",
	})
)
