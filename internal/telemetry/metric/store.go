package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "pwdless"
	subsystem = "store"
)

// Operation label values.
const (
	OpStoreOrUpdate  = "store_or_update"
	OpAuthenticate   = "authenticate"
	OpInvalidateUser = "invalidate_user"
	OpClear          = "clear"
	OpLength         = "length"
)

// Result label values.
const (
	ResultOK        = "ok"
	ResultValid     = "valid"
	ResultInvalid   = "invalid"
	ResultError     = "error"
	ResultSwallowed = "swallowed"
	ResultRejected  = "rejected"
)

// StoreMetrics holds the collectors for one token store.
type StoreMetrics struct {
	operations *prometheus.CounterVec
	hashTime   *prometheus.HistogramVec
	connects   *prometheus.CounterVec
}

// NewStoreMetrics creates the collectors without registering them.
func NewStoreMetrics() *StoreMetrics {
	return &StoreMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operations_total",
			Help:      "Token store operations by outcome",
		}, []string{"operation", "result"}),
		hashTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "hash_duration_seconds",
			Help:      "Time spent hashing or verifying tokens",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		connects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "backend_connects_total",
			Help:      "Backend session acquisitions by outcome",
		}, []string{"result"}),
	}
}

// Register adds the collectors to reg.
func (m *StoreMetrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.operations, m.hashTime, m.connects} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (m *StoreMetrics) MustRegister(reg prometheus.Registerer) *StoreMetrics {
	reg.MustRegister(m.operations, m.hashTime, m.connects)
	return m
}

func (m *StoreMetrics) ObserveOperation(operation, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result).Inc()
}

func (m *StoreMetrics) ObserveHash(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.hashTime.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *StoreMetrics) ObserveConnect(err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.connects.WithLabelValues(result).Inc()
}
