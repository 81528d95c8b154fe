package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the storefront collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	cartMutations     *prometheus.CounterVec
	persistenceErrors *prometheus.CounterVec
	checkouts         *prometheus.CounterVec
	submitDuration    prometheus.Histogram
	cartLoads         prometheus.Counter
}

func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Metrics{
		cartMutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "rasoi_cart_mutations_total",
			Help: "Cart mutations by operation",
		}, []string{"op"}),
		persistenceErrors: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "rasoi_cart_persistence_errors_total",
			Help: "Swallowed cart store failures by operation",
		}, []string{"op"}),
		checkouts: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "rasoi_checkouts_total",
			Help: "Checkout attempts by outcome",
		}, []string{"outcome"}),
		submitDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "rasoi_checkout_submit_duration_seconds",
			Help:    "Time from validation to hand-off of a checkout",
			Buckets: []float64{0.5, 1, 1.5, 2, 5},
		}),
		cartLoads: registerCounter(registerer, prometheus.CounterOpts{
			Name: "rasoi_cart_loads_total",
			Help: "Carts loaded from the store",
		}),
	}
}

func (m *Metrics) CartMutation(op string) {
	if m == nil {
		return
	}
	m.cartMutations.WithLabelValues(op).Inc()
}

func (m *Metrics) PersistenceError(op string) {
	if m == nil {
		return
	}
	m.persistenceErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) Checkout(outcome string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SubmitDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.submitDuration.Observe(d.Seconds())
}

func (m *Metrics) CartLoaded() {
	if m == nil {
		return
	}
	m.cartLoads.Inc()
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		panic(err)
	}
	return vec
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	h := prometheus.NewHistogram(opts)
	if err := registerer.Register(h); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(prometheus.Histogram); ok {
				return existing
			}
		}
		panic(err)
	}
	return h
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	if err := registerer.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(prometheus.Counter); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
