package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tatianab/narrative-engine/internal/markers"
)

// Metrics counts turns and extracted markers and times model calls. A nil
// *Metrics records nothing.
type Metrics struct {
	turns       *prometheus.CounterVec
	markers     *prometheus.CounterVec
	chatLatency *prometheus.HistogramVec
}

// NewMetrics registers the game's collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		turns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "narrative_turns_total",
			Help: "Turns processed, by outcome.",
		}, []string{"outcome"}),
		markers: f.NewCounterVec(prometheus.CounterOpts{
			Name: "narrative_markers_extracted_total",
			Help: "Markers extracted from completed replies, by kind, whether or not they matched a goal or character.",
		}, []string{"kind"}),
		chatLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "narrative_chat_request_duration_seconds",
			Help:    "Duration of model calls.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"op", "status"}),
	}
}

func (m *Metrics) turn(o Outcome) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(o.String()).Inc()
}

func (m *Metrics) extracted(b markers.Batch) {
	if m == nil {
		return
	}
	for _, mk := range b.Markers() {
		m.markers.WithLabelValues(mk.Kind().String()).Inc()
	}
}

func (m *Metrics) chat(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.chatLatency.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}
