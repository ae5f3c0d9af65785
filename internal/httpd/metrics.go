package httpd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"widealign/pkg/layout"
)

// metricsHooks feeds store instrumentation into Prometheus. It implements
// layout.Hooks and registers its collectors on the server's registry.
type metricsHooks struct {
	wrapperSets    *prometheus.CounterVec
	viewSets       prometheus.Counter
	recomputes     prometheus.Counter
	storeErrors    *prometheus.CounterVec
	viewWidth      prometheus.Gauge
	trackedEntities prometheus.Gauge
}

func newMetricsHooks(reg prometheus.Registerer) *metricsHooks {
	factory := promauto.With(reg)
	return &metricsHooks{
		wrapperSets: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "widealign_wrapper_width_sets_total",
			Help: "SetWrapperWidth calls, partitioned by whether the value actually changed.",
		}, []string{"changed"}),
		viewSets: factory.NewCounter(prometheus.CounterOpts{
			Name: "widealign_view_width_sets_total",
			Help: "SetViewWidth calls. Each one recomputes every tracked entity.",
		}),
		recomputes: factory.NewCounter(prometheus.CounterOpts{
			Name: "widealign_left_gap_recomputes_total",
			Help: "Completed left-gap recomputations.",
		}),
		storeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "widealign_store_errors_total",
			Help: "Store operation failures, partitioned by event kind.",
		}, []string{"kind"}),
		viewWidth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "widealign_view_width_pixels",
			Help: "Most recently reported view width.",
		}),
		trackedEntities: factory.NewGauge(prometheus.GaugeOpts{
			Name: "widealign_tracked_entities",
			Help: "Number of currently tracked entities.",
		}),
	}
}

func (m *metricsHooks) OnWrapperWidth(_ layout.EntityID, _ float64, changed bool) {
	label := "false"
	if changed {
		label = "true"
	}
	m.wrapperSets.WithLabelValues(label).Inc()
}

func (m *metricsHooks) OnViewWidth(width float64, tracked int) {
	m.viewSets.Inc()
	m.viewWidth.Set(width)
	m.trackedEntities.Set(float64(tracked))
}

func (m *metricsHooks) OnLeftGap(layout.EntityID, float64) {
	m.recomputes.Inc()
}

func (m *metricsHooks) OnError(kind layout.EventKind, _ error) {
	m.storeErrors.WithLabelValues(string(kind)).Inc()
}

// setTracked keeps the entity gauge current after registrations/removals.
func (m *metricsHooks) setTracked(n int) {
	m.trackedEntities.Set(float64(n))
}
