package observability

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for one scenario controller.
type Metrics struct {
	transitions *prometheus.CounterVec
	toolWraps   *prometheus.CounterVec
	updateSize  prometheus.Histogram
}

// NewMetrics creates and registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parley",
			Name:      "transitions_total",
			Help:      "Node transitions, labeled by destination node.",
		}, []string{"to", "initial"}),
		toolWraps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parley",
			Name:      "tool_wraps_total",
			Help:      "Tool definitions wrapped for a node, by variant.",
		}, []string{"variant"}),
		updateSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "parley",
			Name:      "context_update_tools",
			Help:      "Number of tools carried per context update.",
			Buckets:   prometheus.LinearBuckets(0, 2, 8),
		}),
	}

	reg.MustRegister(m.transitions, m.toolWraps, m.updateSize)
	return m
}

// Hooks returns lifecycle hooks feeding these collectors. Compose with other
// hooks via Merge if needed.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, ev *domain.TransitionEvent) {
			initial := "false"
			if ev.Initial {
				initial = "true"
			}
			m.transitions.WithLabelValues(ev.To, initial).Inc()
		},
		OnToolWrap: func(ctx context.Context, ev *domain.ToolWrapEvent) {
			variant := "plain"
			if ev.Transitional {
				variant = "transition"
			}
			m.toolWraps.WithLabelValues(variant).Inc()
		},
		OnContextUpdate: func(ctx context.Context, update *domain.ContextUpdate) {
			m.updateSize.Observe(float64(len(update.Tools)))
		},
	}
}

// Merge combines two hook sets; both callbacks fire for each event.
func Merge(a, b domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, ev *domain.TransitionEvent) {
			if a.OnTransition != nil {
				a.OnTransition(ctx, ev)
			}
			if b.OnTransition != nil {
				b.OnTransition(ctx, ev)
			}
		},
		OnContextUpdate: func(ctx context.Context, update *domain.ContextUpdate) {
			if a.OnContextUpdate != nil {
				a.OnContextUpdate(ctx, update)
			}
			if b.OnContextUpdate != nil {
				b.OnContextUpdate(ctx, update)
			}
		},
		OnToolWrap: func(ctx context.Context, ev *domain.ToolWrapEvent) {
			if a.OnToolWrap != nil {
				a.OnToolWrap(ctx, ev)
			}
			if b.OnToolWrap != nil {
				b.OnToolWrap(ctx, ev)
			}
		},
	}
}
