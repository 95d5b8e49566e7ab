package wizard

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records wizard activity.
type Metrics struct {
	events         *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	completed      prometheus.Counter
	queueDepth     prometheus.Gauge
}

// NewMetrics registers the wizard metrics on reg. A nil reg yields metrics
// that are recorded but never exported.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Metrics{
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cvbot_wizard_events_total",
				Help: "Wizard events processed, by event kind and outcome",
			},
			[]string{"event", "outcome"},
		),
		renderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cvbot_render_duration_seconds",
				Help:    "Duration of document renders in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"status"},
		),
		completed: factory.NewCounter(prometheus.CounterOpts{
			Name: "cvbot_forms_completed_total",
			Help: "Forms that reached the confirmation preview",
		}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cvbot_dispatcher_pending_events",
			Help: "Events queued in the dispatcher and not yet handled",
		}),
	}
}

func (m *Metrics) observeEvent(event, outcome string) {
	m.events.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) observeRender(d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.renderDuration.WithLabelValues(status).Observe(d.Seconds())
}
