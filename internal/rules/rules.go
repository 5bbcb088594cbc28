// Package rules implements the fixed, ordered business-rule pipeline that
// may rewrite the top-ranked candidate or short-circuit to human review.
package rules

import (
	"github.com/aa5177-adm/ticket-ai/internal/config"
	"github.com/aa5177-adm/ticket-ai/internal/model"
)

// Result is the outcome of running the rule pipeline against a ranked
// candidate list. When ShortCircuited is true, Top is the zero value and
// Triggers holds at least one entry; otherwise Top is the (possibly
// rewritten) pick and Triggers is empty.
type Result struct {
	ShortCircuited bool
	Top            model.Candidate
	AppliedRules   []string
	Reasoning      []string
	Triggers       []model.HumanReviewTrigger
}

// Engine runs the pipeline against a fixed configuration.
type Engine struct {
	cfg config.Config
}

// New creates a rule Engine over cfg.
func New(cfg config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Evaluate runs the pre-rule and Rules 1–4 in order against the ranked
// candidate list. ranked must be non-empty and ordered by Ranker.Rank.
func (e *Engine) Evaluate(ticket model.Ticket, similarTickets []model.SimilarTicket, ranked model.Candidates) Result {
	if maxSim := model.MaxSimilarity(similarTickets); maxSim < e.cfg.SimilarityFloor {
		return Result{
			ShortCircuited: true,
			Triggers: []model.HumanReviewTrigger{{
				Reason:   "no_similar_pattern",
				Severity: model.SeverityHigh,
				Action:   "team_consultation_email",
				Timeout:  "1h",
				Message:  "No sufficiently similar historical ticket was found; routing to the team for manual triage.",
			}},
		}
	}

	top := ranked[0]
	var appliedRules []string
	var reasoning []string

	if r, ok := e.overloadPrevention(ranked, top); ok {
		if r.ShortCircuited {
			return r
		}
		top = r.Top
		appliedRules = append(appliedRules, r.AppliedRules...)
		reasoning = append(reasoning, r.Reasoning...)
	}

	top, rule2Applied, rule2Reasoning := e.timezoneVsExpertise(ranked, top)
	appliedRules = append(appliedRules, rule2Applied...)
	reasoning = append(reasoning, rule2Reasoning...)

	top, rule3Applied, rule3Reasoning := e.fairDistribution(ranked, top)
	appliedRules = append(appliedRules, rule3Applied...)
	reasoning = append(reasoning, rule3Reasoning...)

	rule4Applied, rule4Reasoning := e.skillsGap(top)
	appliedRules = append(appliedRules, rule4Applied...)
	reasoning = append(reasoning, rule4Reasoning...)

	return Result{
		Top:          top,
		AppliedRules: appliedRules,
		Reasoning:    reasoning,
	}
}

// overloadPrevention is Rule 1. ok is false when the rule does not fire at all.
// The floor is inclusive: a workload_score exactly at OverloadScoreFloor
// triggers the rule, matching the boundary pinned in spec.md §8.
func (e *Engine) overloadPrevention(ranked model.Candidates, top model.Candidate) (Result, bool) {
	if !top.IsOverloaded && top.WorkloadScore > e.cfg.OverloadScoreFloor {
		return Result{}, false
	}

	for _, c := range ranked {
		if c.Member.Email == top.Member.Email {
			continue
		}
		if !c.IsOverloaded && c.AvailabilityScore == 1.0 && c.WorkloadScore >= e.cfg.OverloadAltFloor {
			return Result{
				Top:          c,
				AppliedRules: []string{"overload_prevention"},
				Reasoning:    []string{"top pick " + top.Member.Email + " is overloaded; reassigned to " + c.Member.Email},
			}, true
		}
	}

	return Result{
		ShortCircuited: true,
		Triggers: []model.HumanReviewTrigger{{
			Reason:   "team_at_capacity",
			Severity: model.SeverityCritical,
			Action:   "immediate_manager_escalation",
			Message:  "Every available candidate is at or near capacity; a manager must reassign work before this ticket can be routed.",
		}},
	}, true
}

// timezoneVsExpertise is Rule 2.
func (e *Engine) timezoneVsExpertise(ranked model.Candidates, top model.Candidate) (model.Candidate, []string, []string) {
	if top.TimezoneScore >= 1.0 || top.SimilarityScore <= 0.8 {
		return top, nil, nil
	}

	var alt *model.Candidate
	for i := range ranked {
		c := ranked[i]
		if c.Member.Email == top.Member.Email {
			continue
		}
		if c.TimezoneScore >= 1.0 {
			alt = &ranked[i]
			break
		}
	}
	if alt == nil {
		return top, nil, nil
	}

	scoreDiff := top.Composite - alt.Composite
	if scoreDiff > e.cfg.TZExpertiseGap {
		return top, []string{"timezone_vs_expertise"},
			[]string{"kept cross-timezone expert " + top.Member.Email + " (composite gap " + formatGap(scoreDiff) + " over best in-timezone alternative)"}
	}
	return *alt, []string{"timezone_vs_expertise"},
		[]string{"preferred in-timezone candidate " + alt.Member.Email + " over cross-timezone expert " + top.Member.Email}
}

// fairDistribution is Rule 3. The reference metric uses active_tickets_count
// as a proxy for recent_assignments_count >= 5 — see DESIGN.md's Open
// Question decision.
func (e *Engine) fairDistribution(ranked model.Candidates, top model.Candidate) (model.Candidate, []string, []string) {
	if top.ActiveTicketsCount < e.cfg.FairDistributionCap {
		return top, nil, nil
	}

	end := 5
	if end > len(ranked) {
		end = len(ranked)
	}
	for i := 1; i < end; i++ {
		c := ranked[i]
		if c.ActiveTicketsCount < e.cfg.FairDistributionCap && c.AvailabilityScore == 1.0 {
			return c, []string{"fair_distribution"},
				[]string{"top pick " + top.Member.Email + " holds too many active tickets; reassigned to " + c.Member.Email}
		}
	}
	return top, nil, nil
}

// skillsGap is Rule 4: annotation only, never changes the assignee.
func (e *Engine) skillsGap(top model.Candidate) ([]string, []string) {
	if top.SkillScore < e.cfg.SkillsGapFloor {
		return []string{"skills_gap"}, []string{top.Member.Email + " has a below-threshold skill match for this ticket's category"}
	}
	return nil, nil
}

func formatGap(diff float64) string {
	return trimFloat(diff)
}
