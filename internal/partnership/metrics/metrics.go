// Package metrics exposes Prometheus counters for the partnership domain.
// Recording helpers are nil-guarded; services accept a nil *Metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	TransactionsCreated   prometheus.Counter
	TransactionsValidated prometheus.Counter
	TransactionsRejected  prometheus.Counter
	PermissionDenials     *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TransactionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kolabo_partnership_transactions_created_total",
			Help: "Partnership transactions created.",
		}),
		TransactionsValidated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kolabo_partnership_transactions_validated_total",
			Help: "Partnership transactions validated by the user side.",
		}),
		TransactionsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kolabo_partnership_transactions_rejected_total",
			Help: "Partnership transactions rejected by the user side.",
		}),
		PermissionDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kolabo_partnership_permission_denials_total",
			Help: "Operations rejected by the permission matrix, by operation.",
		}, []string{"operation"}),
	}
	reg.MustRegister(m.TransactionsCreated, m.TransactionsValidated, m.TransactionsRejected, m.PermissionDenials)
	return m
}

func (m *Metrics) ObserveTransactionCreated() {
	if m == nil {
		return
	}
	m.TransactionsCreated.Inc()
}

func (m *Metrics) ObserveTransactionValidated() {
	if m == nil {
		return
	}
	m.TransactionsValidated.Inc()
}

func (m *Metrics) ObserveTransactionRejected() {
	if m == nil {
		return
	}
	m.TransactionsRejected.Inc()
}

func (m *Metrics) ObservePermissionDenial(operation string) {
	if m == nil {
		return
	}
	m.PermissionDenials.WithLabelValues(operation).Inc()
}
