package ticket

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the ticket lifecycle.
type Metrics struct {
	TicketsTotal          *prometheus.CounterVec
	TransitionsTotal      *prometheus.CounterVec
	AssignmentsTotal      prometheus.Counter
	WorkLogsTotal         prometheus.Counter
	ChecklistTogglesTotal prometheus.Counter
}

// NewMetrics registers and returns ticket metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TicketsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resolve_tickets_total",
			Help: "Total tickets created by initial status and category.",
		}, []string{"status", "category"}),
		TransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resolve_ticket_transitions_total",
			Help: "Total ticket status transitions.",
		}, []string{"from", "to"}),
		AssignmentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resolve_ticket_assignments_total",
			Help: "Total maintainer assignments, including reassignments.",
		}),
		WorkLogsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resolve_work_logs_total",
			Help: "Total maintenance log entries appended.",
		}),
		ChecklistTogglesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resolve_checklist_toggles_total",
			Help: "Total checklist item completion toggles.",
		}),
	}

	reg.MustRegister(
		m.TicketsTotal,
		m.TransitionsTotal,
		m.AssignmentsTotal,
		m.WorkLogsTotal,
		m.ChecklistTogglesTotal,
	)

	return m
}
