// Package metrics exposes prometheus instruments for the order engine.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type OrderMetrics struct {
	created        prometheus.Counter
	cancelled      prometheus.Counter
	rejected       *prometheus.CounterVec
	stockConflicts prometheus.Counter
	createDuration prometheus.Histogram
}

func New() *OrderMetrics { return NewWith(prometheus.DefaultRegisterer) }

// NewWith registers against the given registerer; re-registration returns the
// existing collectors so tests and restarts stay safe.
func NewWith(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &OrderMetrics{
		created: registerCounter(reg, prometheus.CounterOpts{
			Name: "storefront_orders_created_total",
			Help: "Orders created successfully",
		}),
		cancelled: registerCounter(reg, prometheus.CounterOpts{
			Name: "storefront_orders_cancelled_total",
			Help: "Orders cancelled with stock restored",
		}),
		rejected: registerCounterVec(reg, prometheus.CounterOpts{
			Name: "storefront_orders_rejected_total",
			Help: "Order creation attempts rejected, by reason",
		}, []string{"reason"}),
		stockConflicts: registerCounter(reg, prometheus.CounterOpts{
			Name: "storefront_stock_conflicts_total",
			Help: "Stock decrements lost to a concurrent order",
		}),
		createDuration: registerHistogram(reg, prometheus.HistogramOpts{
			Name:    "storefront_order_create_duration_seconds",
			Help:    "Duration of order creation transactions",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *OrderMetrics) OrderCreated(d time.Duration) {
	m.created.Inc()
	m.createDuration.Observe(d.Seconds())
}

func (m *OrderMetrics) OrderCancelled() { m.cancelled.Inc() }

func (m *OrderMetrics) OrderRejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

func (m *OrderMetrics) StockConflict() { m.stockConflicts.Inc() }

func registerCounter(reg prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing
			}
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return c
}

func registerCounterVec(reg prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return c
}

func registerHistogram(reg prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	h := prometheus.NewHistogram(opts)
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing
			}
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return h
}
