package scoring

import (
	"github.com/aa5177-adm/ticket-ai/internal/config"
	"github.com/aa5177-adm/ticket-ai/internal/model"
)

// composite computes the priority-weighted sum of the five component
// scores, per spec.md §4.2.6. Availability enters only through its weighted
// contribution here; hard exclusion of unavailable candidates is the Rule
// Engine's job, not the Scorer's.
func composite(cfg config.Config, priority model.Priority, similarity, skill, availability, workload, timezone float64) (float64, error) {
	row, ok := cfg.Weights[priority]
	if !ok {
		return 0, model.NewInvariantViolation("no weight row configured for priority " + string(priority))
	}
	sum := similarity*row.Similarity +
		skill*row.Skill +
		availability*row.Availability +
		workload*row.Workload +
		timezone*row.Timezone
	return clamp01(sum), nil
}
