package observability

import (
	"github.com/aretw0/aastree/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts edits applied through edit models.
type Metrics struct {
	Edits    *prometheus.CounterVec
	Rejected *prometheus.CounterVec
	History  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Edits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aastree_edits_total",
				Help: "Total number of applied edits",
			},
			[]string{"op"},
		),
		Rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aastree_edits_rejected_total",
				Help: "Total number of rejected edits",
			},
			[]string{"op"},
		),
		History: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aastree_history_steps_total",
				Help: "Total number of undo and redo steps",
			},
			[]string{"direction"},
		),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.Edits, m.Rejected, m.History} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Hooks returns edit hooks that record into the collectors.
func (m *Metrics) Hooks() domain.EditHooks {
	return domain.EditHooks{
		OnEdit: func(e *domain.EditEvent) {
			m.Edits.WithLabelValues(string(e.Type)).Inc()
		},
		OnUndo: func(e *domain.EditEvent) {
			m.History.WithLabelValues("undo").Inc()
		},
		OnRedo: func(e *domain.EditEvent) {
			m.History.WithLabelValues("redo").Inc()
		},
		OnRejected: func(e *domain.EditEvent) {
			m.Rejected.WithLabelValues(string(e.Type)).Inc()
		},
	}
}
