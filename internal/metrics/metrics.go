// Package metrics exposes Prometheus collectors for tag operations and the
// path lock. A nil *Metrics is valid and records nothing.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "audiotag"

// Operation results used as the "result" label.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the collectors registered for one Tagger.
type Metrics struct {
	operations   *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	lockWait     prometheus.Histogram
	lockTimeouts prometheus.Counter
	activePaths  prometheus.Gauge
}

// New creates the collectors and registers them on reg. Collectors that
// are already registered (by another Tagger on the same registry) are
// shared rather than rejected.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Tag operations by kind and result.",
		}, []string{"op", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Time spent in tag operations, including lock wait.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"op"}),
		lockWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lock_wait_seconds",
			Help:      "Time spent waiting for a path lock.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 12),
		}),
		lockTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lock_timeouts_total",
			Help:      "Path lock acquisitions that timed out or were cancelled.",
		}),
		activePaths: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lock_active_paths",
			Help:      "Paths with a held or awaited lock.",
		}),
	}

	var err error
	if m.operations, err = register(reg, m.operations); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	if m.lockWait, err = register(reg, m.lockWait); err != nil {
		return nil, err
	}
	if m.lockTimeouts, err = register(reg, m.lockTimeouts); err != nil {
		return nil, err
	}
	if m.activePaths, err = register(reg, m.activePaths); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveOperation records one finished operation.
func (m *Metrics) ObserveOperation(op string, err error, d time.Duration) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.operations.WithLabelValues(op, result).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveLockWait records how long an acquisition waited.
func (m *Metrics) ObserveLockWait(d time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.Observe(d.Seconds())
}

// LockTimeout counts a failed acquisition.
func (m *Metrics) LockTimeout() {
	if m == nil {
		return
	}
	m.lockTimeouts.Inc()
}

// SetActivePaths sets the number of paths in the lock table.
func (m *Metrics) SetActivePaths(n int) {
	if m == nil {
		return
	}
	m.activePaths.Set(float64(n))
}
