package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the domain counters for the compliance engine. HTTP traffic
// counters live in the middleware package; these cover engine behavior.
type Metrics struct {
	DocumentTransitionsTotal   *prometheus.CounterVec
	IllegalTransitionsTotal    prometheus.Counter
	ComplianceEvaluationsTotal *prometheus.CounterVec
	CustomsFormsGeneratedTotal prometheus.Counter
}

// New registers the domain metrics against the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DocumentTransitionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cargoconnect_document_transitions_total",
			Help: "Total number of applied document status transitions.",
		}, []string{"from", "to"}),
		IllegalTransitionsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "cargoconnect_illegal_transitions_total",
			Help: "Total number of rejected illegal transition attempts.",
		}),
		ComplianceEvaluationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cargoconnect_compliance_evaluations_total",
			Help: "Total number of compliance evaluations by policy and outcome.",
		}, []string{"policy", "compliant"}),
		CustomsFormsGeneratedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "cargoconnect_customs_forms_generated_total",
			Help: "Total number of customs form descriptors generated.",
		}),
	}
}
