// Package metrics expõe contadores Prometheus das operações do marketplace.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nftmarket"

type Metrics struct {
	minted       prometheus.Counter
	listed       prometheus.Counter
	sold         prometheus.Counter
	feeCollected prometheus.Counter
	failed       *prometheus.CounterVec

	registry *prometheus.Registry
}

// New cria os contadores e os registra em um registry próprio.
func New() (*Metrics, error) {
	m := &Metrics{
		minted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_minted_total",
			Help:      "number of minted tokens",
		}),
		listed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_listed_total",
			Help:      "number of listed items",
		}),
		sold: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_sold_total",
			Help:      "number of purchased items",
		}),
		feeCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fees_collected_total",
			Help:      "market fees credited to the fee account, in base units",
		}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_failed_total",
			Help:      "number of rejected operations by operation and error kind",
		}, []string{"op", "kind"}),
		registry: prometheus.NewRegistry(),
	}
	err := errors.Join(
		m.registry.Register(m.minted),
		m.registry.Register(m.listed),
		m.registry.Register(m.sold),
		m.registry.Register(m.feeCollected),
		m.registry.Register(m.failed),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Gatherer retorna o registry para o handler /metrics.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.registry }

func (m *Metrics) Minted() { m.minted.Inc() }
func (m *Metrics) Listed() { m.listed.Inc() }

// Sold conta uma venda e a taxa creditada.
func (m *Metrics) Sold(fee uint64) {
	m.sold.Inc()
	m.feeCollected.Add(float64(fee))
}

// Failed conta uma operação rejeitada.
func (m *Metrics) Failed(op, kind string) {
	m.failed.WithLabelValues(op, kind).Inc()
}
