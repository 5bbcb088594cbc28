package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/aa5177-adm/ticket-ai/internal/model"
)

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcplib.NewTool("assign_ticket",
			mcplib.WithDescription(`Recommend a team member to assign a support ticket to.

WHEN TO USE: whenever a new or reassigned ticket needs an owner. Pass the
ticket's id, title, description, priority, and category; the engine loads
the current team snapshot, scores every eligible member on expertise,
workload, timezone fit, and availability, and returns either a confident
assignment or a request for human review.

WHAT YOU GET BACK: assignee (empty when review is required), confidence
(0.0-1.0), assignment_type ("normal" or "human_review"), applied_rules,
reasoning, and — when escalated — the triggers explaining why.`),
			mcplib.WithReadOnlyHintAnnotation(false),
			mcplib.WithIdempotentHintAnnotation(false),
			mcplib.WithOpenWorldHintAnnotation(false),
			mcplib.WithString("ticket_id",
				mcplib.Description("Unique id of the ticket being assigned"),
				mcplib.Required(),
			),
			mcplib.WithString("title",
				mcplib.Description("Ticket title"),
			),
			mcplib.WithString("description",
				mcplib.Description("Ticket body — used to find similar resolved tickets"),
			),
			mcplib.WithString("priority",
				mcplib.Description("One of: critical, high, medium, low"),
				mcplib.Required(),
			),
			mcplib.WithString("category",
				mcplib.Description("Ticket category, e.g. billing, auth, infra"),
				mcplib.Required(),
			),
		),
		s.handleAssignTicket,
	)
}

func (s *Server) handleAssignTicket(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	ticket := model.Ticket{
		ID:          request.GetString("ticket_id", ""),
		Title:       request.GetString("title", ""),
		Description: request.GetString("description", ""),
		Priority:    model.Priority(request.GetString("priority", "")),
		Category:    request.GetString("category", ""),
	}
	if err := ticket.Validate(); err != nil {
		return errorResult(fmt.Sprintf("invalid ticket: %v", err)), nil
	}

	var similarTickets []model.SimilarTicket
	if s.resolver != nil {
		resolved, err := s.resolver.Resolve(ctx, ticket)
		if err != nil {
			s.logger.Warn("assign_ticket: similarity resolution failed, proceeding without it", "error", err, "ticket_id", ticket.ID)
		} else {
			similarTickets = resolved
		}
	}

	decision, err := s.engine.AssignTicket(ctx, ticket, similarTickets)
	if err != nil {
		return errorResult(fmt.Sprintf("assignment failed: %v", err)), nil
	}

	if s.db != nil {
		if err := s.db.RecordDecision(ctx, decision); err != nil {
			s.logger.Error("assign_ticket: failed to record decision", "error", err, "ticket_id", ticket.ID)
		}
	}

	resultData, err := json.MarshalIndent(map[string]any{
		"assignee":        decision.PrimaryAssignee,
		"assignment_type": decision.AssignmentType,
		"confidence":      decision.Confidence,
		"applied_rules":   decision.AppliedRules,
		"reasoning":       decision.Reasoning,
		"triggers":        decision.Triggers,
	}, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to encode result: %v", err)), nil
	}

	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: string(resultData)},
		},
	}, nil
}
