// Package metrics exposes gateway counters and gauges for Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sensorgraph"

// Metrics holds every collector the gateway reports. Each instance owns its
// registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	TagReads       prometheus.Counter
	TagsSeen       prometheus.Counter
	TagEvictions   prometheus.Counter
	ReaderErrors   prometheus.Counter
	TrackedTags    prometheus.Gauge
	Present        prometheus.Gauge
	Documents      *prometheus.CounterVec
	AdapterErrors  *prometheus.CounterVec
	LEDCommands    *prometheus.CounterVec
	RequestLatency *prometheus.HistogramVec
}

// New creates the collectors and registers them, with the Go and process
// collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		TagReads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rfid",
			Name:      "reads_total",
			Help:      "Tag reads delivered by the RFID reader",
		}),
		TagsSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rfid",
			Name:      "tags_seen_total",
			Help:      "Tags that entered the presence registry",
		}),
		TagEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rfid",
			Name:      "evictions_total",
			Help:      "Tags aged out of the presence registry",
		}),
		ReaderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rfid",
			Name:      "reader_errors_total",
			Help:      "Errors reported by the RFID reader",
		}),
		TrackedTags: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rfid",
			Name:      "tracked_tags",
			Help:      "Tags currently in the presence registry",
		}),
		Present: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rfid",
			Name:      "present",
			Help:      "1 while at least one tag is present",
		}),
		Documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "documents_total",
			Help:      "Documents served by resource and media type",
		}, []string{"resource", "media_type"}),
		AdapterErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hardware",
			Name:      "adapter_errors_total",
			Help:      "Failed sensor reads and actuator writes",
		}, []string{"resource"}),
		LEDCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hardware",
			Name:      "led_commands_total",
			Help:      "On/off commands sent to LEDs",
		}, []string{"led", "state"}),
		RequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	m.Registry.MustRegister(
		m.TagReads,
		m.TagsSeen,
		m.TagEvictions,
		m.ReaderErrors,
		m.TrackedTags,
		m.Present,
		m.Documents,
		m.AdapterErrors,
		m.LEDCommands,
		m.RequestLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// ObservePresence records the registry size and presence flag.
func (m *Metrics) ObservePresence(tracked int) {
	m.TrackedTags.Set(float64(tracked))
	if tracked > 0 {
		m.Present.Set(1)
	} else {
		m.Present.Set(0)
	}
}
