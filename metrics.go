package sqllog

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus counters labelled by target alias.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Writes        *prometheus.CounterVec
	Bytes         *prometheus.CounterVec
	WriteFailures *prometheus.CounterVec
	Rotations     *prometheus.CounterVec
	RotationRaces *prometheus.CounterVec
}

// NewMetrics creates the sqllog counters and registers them with reg.
// Collectors already registered by a previous call are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Writes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sqllog_writes_total",
				Help: "Total number of successful SQL log writes",
			},
			[]string{"target"},
		),
		Bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sqllog_bytes_total",
				Help: "Total bytes appended to SQL log files",
			},
			[]string{"target"},
		),
		WriteFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sqllog_write_failures_total",
				Help: "Total number of failed SQL log writes",
			},
			[]string{"target"},
		),
		Rotations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sqllog_rotations_total",
				Help: "Total number of SQL log file rotations",
			},
			[]string{"target"},
		),
		RotationRaces: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sqllog_rotation_races_total",
				Help: "Threshold crossings resolved by another writer's rotation",
			},
			[]string{"target"},
		),
	}

	if reg == nil {
		return m, nil
	}

	var err error
	m.Writes, err = registerCounterVec(reg, m.Writes)
	if err != nil {
		return nil, err
	}
	m.Bytes, err = registerCounterVec(reg, m.Bytes)
	if err != nil {
		return nil, err
	}
	m.WriteFailures, err = registerCounterVec(reg, m.WriteFailures)
	if err != nil {
		return nil, err
	}
	m.Rotations, err = registerCounterVec(reg, m.Rotations)
	if err != nil {
		return nil, err
	}
	m.RotationRaces, err = registerCounterVec(reg, m.RotationRaces)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// registerCounterVec registers cv or returns the collector already registered under its name
func registerCounterVec(reg prometheus.Registerer, cv *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(cv); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmtErrorf("failed to register metric: %w", err)
	}
	return cv, nil
}

func (m *Metrics) observeWrite(target string, n int) {
	if m == nil {
		return
	}
	m.Writes.WithLabelValues(target).Inc()
	m.Bytes.WithLabelValues(target).Add(float64(n))
}

func (m *Metrics) observeFailure(target string) {
	if m == nil {
		return
	}
	m.WriteFailures.WithLabelValues(target).Inc()
}

func (m *Metrics) observeRotation(target string) {
	if m == nil {
		return
	}
	m.Rotations.WithLabelValues(target).Inc()
}

func (m *Metrics) observeRace(target string) {
	if m == nil {
		return
	}
	m.RotationRaces.WithLabelValues(target).Inc()
}
