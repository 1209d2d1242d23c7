// Package metrics exposes saga counters on a private prometheus registry.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()
	once     sync.Once

	ordersSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_submitted_total",
		Help: "Total number of orders accepted at intake.",
	})
	ordersCollected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_collected_total",
		Help: "Total number of orders priced and validated.",
	})
	ordersReserved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_reserved_total",
		Help: "Total number of orders with all line items reserved.",
	})
	ordersCanceled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_canceled_total",
			Help: "Total number of orders canceled, by saga step.",
		},
		[]string{"step"},
	)
	compensations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "compensations_total",
		Help: "Total number of line-item reservations returned to stock.",
	})
	compensationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "compensation_failures_total",
		Help: "Total number of orders whose compensation did not fully complete.",
	})
)

// Init registers metrics with the registry once.
func Init() {
	once.Do(func() {
		registry.MustRegister(
			prometheus.NewGoCollector(),
			prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
			ordersSubmitted,
			ordersCollected,
			ordersReserved,
			ordersCanceled,
			compensations,
			compensationFailures,
		)
	})
}

// Handler exposes the prometheus metrics endpoint handler.
func Handler() http.Handler {
	Init()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func IncOrdersSubmitted() {
	Init()
	ordersSubmitted.Inc()
}

func IncOrdersCollected() {
	Init()
	ordersCollected.Inc()
}

func IncOrdersReserved() {
	Init()
	ordersReserved.Inc()
}

func IncOrdersCanceled(step string) {
	Init()
	ordersCanceled.WithLabelValues(step).Inc()
}

func IncCompensations() {
	Init()
	compensations.Inc()
}

func IncCompensationFailures() {
	Init()
	compensationFailures.Inc()
}
