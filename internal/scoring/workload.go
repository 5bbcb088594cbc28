package scoring

import (
	"time"

	"github.com/aa5177-adm/ticket-ai/internal/config"
	"github.com/aa5177-adm/ticket-ai/internal/model"
)

func priorityWeight(p model.Priority) float64 {
	switch p {
	case model.PriorityCritical:
		return 3.0
	case model.PriorityHigh:
		return 2.0
	case model.PriorityMedium:
		return 1.0
	case model.PriorityLow:
		return 0.5
	default:
		return 1.0
	}
}

func ageMultiplier(ageDays int) float64 {
	switch {
	case ageDays > 7:
		return 1.5
	case ageDays > 3:
		return 1.2
	default:
		return 1.0
	}
}

func statusWeight(s model.ActiveTicketStatus) float64 {
	switch s {
	case model.StatusInProgress:
		return 1.0
	case model.StatusOpen:
		return 0.5
	case model.StatusBlocked:
		return 0.3
	case model.StatusPending:
		return 0.5
	default:
		return 0.5
	}
}

// weightedLoad sums priority × age × status contributions across a
// member's active tickets, per spec.md §4.2.4.
func weightedLoad(tickets []model.ActiveTicket, now time.Time) float64 {
	var total float64
	for _, t := range tickets {
		contribution := priorityWeight(t.Priority) * ageMultiplier(t.AgeDays(now)) * statusWeight(t.Status)
		total += contribution
	}
	return total
}

// workloadResult bundles the workload component score with the raw load
// figure and overload flag the Rule Engine needs downstream.
type workloadResult struct {
	Score        float64
	WeightedLoad float64
	IsOverloaded bool
}

func computeWorkload(cfg config.Config, tickets []model.ActiveTicket, now time.Time) workloadResult {
	load := weightedLoad(tickets, now)
	score := 1.0 - load/cfg.WorkloadCapacity
	if score < 0 {
		score = 0
	}
	return workloadResult{
		Score:        score,
		WeightedLoad: load,
		IsOverloaded: load > cfg.OverloadThreshold,
	}
}
