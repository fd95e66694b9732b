package region

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"audit-portal-go/pkg/model"
)

// Metrics records region selection and probe outcomes
type Metrics struct {
	Selections    *prometheus.CounterVec
	Probes        *prometheus.CounterVec
	ProbeDuration *prometheus.HistogramVec
}

// NewMetrics creates the region metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "audit_portal",
			Subsystem: "region",
			Name:      "selections_total",
			Help:      "Region selections by chosen region and whether a fallback occurred.",
		}, []string{"region", "fallback"}),
		Probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "audit_portal",
			Subsystem: "region",
			Name:      "probes_total",
			Help:      "Health probes by region and result.",
		}, []string{"region", "result"}),
		ProbeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "audit_portal",
			Subsystem: "region",
			Name:      "probe_duration_seconds",
			Help:      "Health probe latency by region.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 3, 5},
		}, []string{"region"}),
	}

	if reg != nil {
		reg.MustRegister(m.Selections, m.Probes, m.ProbeDuration)
	}
	return m
}

func (m *Metrics) observeSelection(sel model.RegionSelection) {
	if m == nil {
		return
	}
	m.Selections.WithLabelValues(string(sel.ChosenRegion), strconv.FormatBool(sel.WasFallback)).Inc()
}

func (m *Metrics) observeProbe(id model.RegionID, healthy bool, seconds float64) {
	if m == nil {
		return
	}
	result := "unhealthy"
	if healthy {
		result = "healthy"
	}
	m.Probes.WithLabelValues(string(id), result).Inc()
	m.ProbeDuration.WithLabelValues(string(id)).Observe(seconds)
}
