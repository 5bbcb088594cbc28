package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aa5177-adm/ticket-ai/internal/model"
)

// RecordDecision persists a Decision and its human-review triggers (if any)
// in one transaction, then issues NOTIFY ChannelDecisions so other processes
// (ticket system webhook, UI) can react.
func (db *DB) RecordDecision(ctx context.Context, d model.Decision) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("storage: record decision: %w", err)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("storage: begin record decision tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var primaryAssignee *string
	if d.PrimaryAssignee != "" {
		primaryAssignee = &d.PrimaryAssignee
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO decisions (ticket_id, assignment_type, primary_assignee, confidence, applied_rules, reasoning)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		d.TicketID, string(d.AssignmentType), primaryAssignee, d.Confidence, d.AppliedRules, d.Reasoning,
	)
	if err != nil {
		return fmt.Errorf("storage: insert decision: %w", err)
	}

	for _, trig := range d.Triggers {
		_, err = tx.Exec(ctx,
			`INSERT INTO decision_triggers (ticket_id, reason, severity, action, timeout, message)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			d.TicketID, trig.Reason, string(trig.Severity), trig.Action, trig.Timeout, trig.Message,
		)
		if err != nil {
			return fmt.Errorf("storage: insert decision trigger: %w", err)
		}
	}

	payload, err := json.Marshal(decisionNotifyPayload{
		TicketID:        d.TicketID,
		AssignmentType:  string(d.AssignmentType),
		PrimaryAssignee: d.PrimaryAssignee,
	})
	if err != nil {
		return fmt.Errorf("storage: marshal notify payload: %w", err)
	}
	if _, err := tx.Exec(ctx, "SELECT pg_notify($1, $2)", ChannelDecisions, string(payload)); err != nil {
		return fmt.Errorf("storage: notify %s: %w", ChannelDecisions, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("storage: commit record decision: %w", err)
	}
	return nil
}

// decisionNotifyPayload is the JSON body delivered on ChannelDecisions.
type decisionNotifyPayload struct {
	TicketID        string `json:"ticket_id"`
	AssignmentType  string `json:"assignment_type"`
	PrimaryAssignee string `json:"primary_assignee,omitempty"`
}
