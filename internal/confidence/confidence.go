// Package confidence implements the Confidence Gate: the final stage that
// scores the Rule Engine's pick and routes the decision into one of three
// channels.
package confidence

import (
	"github.com/aa5177-adm/ticket-ai/internal/config"
	"github.com/aa5177-adm/ticket-ai/internal/model"
)

// Outcome is the result of running the gate against a final top pick.
type Outcome struct {
	Confidence   float64
	HumanReview  bool
	Trigger      model.HumanReviewTrigger
	AppliedRule  string // "team_lead_notification", or empty when no annotation fires.
}

// Gate evaluates confidence against a fixed configuration.
type Gate struct {
	cfg config.Config
}

// New creates a Gate over cfg.
func New(cfg config.Config) *Gate {
	return &Gate{cfg: cfg}
}

// Evaluate computes the five boolean confidence factors on top and routes
// the decision per spec.md §4.5. second is the next-best candidate by
// composite (used for factor 4's score gap); pass nil when top is the only
// candidate under consideration.
func (g *Gate) Evaluate(top model.Candidate, second *model.Candidate) Outcome {
	factors := 0

	if top.SimilarityScore > 0.75 {
		factors++
	}
	if top.SkillScore > 0.15 {
		factors++
	}
	if top.AvailabilityScore > 0.7 {
		factors++
	}
	if second != nil && (top.Composite-second.Composite) > 0.01 {
		factors++
	}
	if top.TimezoneScore >= 0.2 {
		factors++
	}

	confidence := float64(factors) / 5.0
	return g.route(confidence)
}

// route applies spec.md §4.5's three-way threshold comparison to an
// already-computed confidence score. Split out from Evaluate so the exact
// boundary values (0.30, 0.50) can be exercised directly in tests, since a
// 5-boolean count can itself only ever land on {0, 0.2, 0.4, 0.6, 0.8, 1.0}.
func (g *Gate) route(confidence float64) Outcome {
	switch {
	case confidence < g.cfg.ConfidenceLow:
		return Outcome{
			Confidence:  confidence,
			HumanReview: true,
			Trigger: model.HumanReviewTrigger{
				Reason:   "low_confidence_assignment",
				Severity: model.SeverityMedium,
				Action:   "team_lead_review",
				Timeout:  "15min",
				Message:  "The top candidate's confidence score fell below the auto-assign threshold; a team lead should confirm the pick.",
			},
		}
	case confidence < g.cfg.ConfidenceMedium:
		return Outcome{
			Confidence:  confidence,
			AppliedRule: "team_lead_notification",
		}
	default:
		return Outcome{Confidence: confidence}
	}
}
