package metrics

import "github.com/prometheus/client_golang/prometheus"

var HTTPRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests received",
	},
	[]string{"endpoint", "status", "method"},
)

var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"endpoint", "method"},
)

var WSConnectionsActive = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "ws_connections_active",
		Help: "Number of currently connected websocket clients",
	},
)

var EventsPublishedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "realtime_events_published_total",
		Help: "Total number of realtime events published to the bus",
	},
	[]string{"type"},
)

var EventsDeliveredTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "realtime_events_delivered_total",
		Help: "Total number of realtime events delivered to clients",
	},
	[]string{"type"},
)

var EventsDroppedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "realtime_events_dropped_total",
		Help: "Total number of realtime events dropped (malformed, duplicate, slow client)",
	},
	[]string{"reason"},
)

// Register registers all collectors with the default registry.
// Call once at startup.
func Register() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		WSConnectionsActive,
		EventsPublishedTotal,
		EventsDeliveredTotal,
		EventsDroppedTotal,
	)
}
