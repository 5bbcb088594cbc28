// Package assignment composes the Snapshot Loader, Scorer, Ranker, Rule
// Engine, and Confidence Gate into the single AssignTicket entry point.
package assignment

import (
	"context"
	"log/slog"
	"time"

	"github.com/aa5177-adm/ticket-ai/internal/config"
	"github.com/aa5177-adm/ticket-ai/internal/confidence"
	"github.com/aa5177-adm/ticket-ai/internal/model"
	"github.com/aa5177-adm/ticket-ai/internal/ranking"
	"github.com/aa5177-adm/ticket-ai/internal/rules"
	"github.com/aa5177-adm/ticket-ai/internal/scoring"
	"github.com/aa5177-adm/ticket-ai/internal/snapshot"
	"github.com/aa5177-adm/ticket-ai/internal/store"
)

// Engine is the Assignment Pipeline: a value-typed decision function over
// an injected Store. Construction is cheap; it holds only immutable
// configuration and collaborators, never process-wide mutable state.
type Engine struct {
	cfg    config.Config
	loader *snapshot.Loader
	scorer *scoring.Scorer
	rules  *rules.Engine
	gate   *confidence.Gate
	logger *slog.Logger

	// Clock supplies the single now reading threaded through a call. Tests
	// override it to pin the UTC hour that drives timezone scoring; New
	// defaults it to time.Now.
	Clock func() time.Time
}

// New creates an assignment Engine. matcher may be nil to use the reference
// constant skill matcher.
func New(cfg config.Config, s store.Store, matcher scoring.SkillMatcher, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:    cfg,
		loader: snapshot.New(s, logger),
		scorer: scoring.New(cfg, matcher),
		rules:  rules.New(cfg),
		gate:   confidence.New(cfg),
		logger: logger,
		Clock:  func() time.Time { return time.Now().UTC() },
	}
}

// AssignTicket is the core's single entry point. It is pure with respect to
// the store snapshot: no writes are issued. now and today are captured once
// at call entry and threaded through every stage, per spec.md §5's
// determinism guarantee — no other wall-clock reads may affect scoring.
func (e *Engine) AssignTicket(ctx context.Context, ticket model.Ticket, similarTickets []model.SimilarTicket) (model.Decision, error) {
	if err := ticket.Validate(); err != nil {
		return model.Decision{}, model.NewInvalidInput(err.Error())
	}
	for _, st := range similarTickets {
		if err := st.Validate(); err != nil {
			return model.Decision{}, model.NewInvalidInput(err.Error())
		}
	}

	now := e.Clock().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	snap, err := e.loader.Load(ctx, model.RoleUser, today)
	if err != nil {
		return model.Decision{}, err
	}

	if len(snap.Members) == 0 {
		return humanReview(ticket.ID, nil, nil, model.HumanReviewTrigger{
			Reason:   "no_candidates",
			Severity: model.SeverityCritical,
			Action:   "immediate_manager_escalation",
			Message:  "No eligible team members were found to evaluate for this ticket.",
		}), nil
	}

	candidates, err := e.scorer.Score(snap, ticket, similarTickets, now)
	if err != nil {
		return model.Decision{}, err
	}

	if allUnavailable(candidates) {
		return humanReview(ticket.ID, nil, nil, model.HumanReviewTrigger{
			Reason:   "no_available_candidates",
			Severity: model.SeverityCritical,
			Action:   "immediate_manager_escalation",
			Message:  "Every candidate is unavailable today (leave or holiday); a manager must reassign this ticket.",
		}), nil
	}

	ranked := ranking.Rank(candidates)

	ruleResult := e.rules.Evaluate(ticket, similarTickets, ranked)
	if ruleResult.ShortCircuited {
		return humanReview(ticket.ID, nil, ruleResult.Reasoning, ruleResult.Triggers...), nil
	}

	top := ruleResult.Top
	second := secondBest(ranked, top.Member.Email)

	outcome := e.gate.Evaluate(top, second)
	if outcome.HumanReview {
		return humanReview(ticket.ID, nil, ruleResult.Reasoning, outcome.Trigger), nil
	}

	appliedRules := append([]string{}, ruleResult.AppliedRules...)
	reasoning := append([]string{}, ruleResult.Reasoning...)
	if outcome.AppliedRule != "" {
		appliedRules = append(appliedRules, outcome.AppliedRule)
	}
	if len(reasoning) == 0 {
		reasoning = append(reasoning, "selected "+top.Member.Email+" as the highest composite-scoring available candidate")
	}

	return model.Decision{
		TicketID:        ticket.ID,
		AssignmentType:  model.AssignmentNormal,
		PrimaryAssignee: top.Member.Email,
		Confidence:      outcome.Confidence,
		AppliedRules:    appliedRules,
		Reasoning:       reasoning,
	}, nil
}

func allUnavailable(candidates model.Candidates) bool {
	for _, c := range candidates {
		if c.AvailabilityScore != 0 {
			return false
		}
	}
	return true
}

// secondBest returns the first ranked candidate other than topEmail, or nil
// if none exists (a single-candidate snapshot).
func secondBest(ranked model.Candidates, topEmail string) *model.Candidate {
	for i := range ranked {
		if ranked[i].Member.Email != topEmail {
			return &ranked[i]
		}
	}
	return nil
}

func humanReview(ticketID string, appliedRules, reasoning []string, triggers ...model.HumanReviewTrigger) model.Decision {
	return model.Decision{
		TicketID:       ticketID,
		AssignmentType: model.AssignmentHumanReview,
		AppliedRules:   appliedRules,
		Reasoning:      reasoning,
		Triggers:       triggers,
	}
}
