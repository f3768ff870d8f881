package workflow

import "github.com/prometheus/client_golang/prometheus"

var (
	// turnsTotal counts workflow turns by action. Action is a closed vocabulary,
	// so cardinality stays bounded.
	turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_turns_total",
			Help: "Total number of workflow turns processed, by action.",
		},
		[]string{"action"},
	)

	// generationOutcomes counts billable provider calls by pending action and
	// outcome (success/failure).
	generationOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_generations_total",
			Help: "Total number of billable generation attempts, by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	// creditsCharged totals credits actually charged to users.
	creditsCharged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "workflow_credits_charged_total",
			Help: "Total credits charged for successful generations.",
		},
	)
)

func init() {
	prometheus.MustRegister(turnsTotal, generationOutcomes, creditsCharged)
}
