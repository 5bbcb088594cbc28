package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aa5177-adm/ticket-ai/internal/model"
	"github.com/aa5177-adm/ticket-ai/internal/service/similarity"
)

// HistoryStore realizes similarity.HistoryStore over Postgres: hydrating raw
// Qdrant hits and, when semantic search is unavailable, falling back to a
// category match over resolved tickets.
type HistoryStore struct {
	db *DB
}

// NewHistoryStore wraps db as a similarity.HistoryStore implementation.
func NewHistoryStore(db *DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// HydrateByIDs returns assignee + resolution time for the given resolved
// ticket IDs.
func (h *HistoryStore) HydrateByIDs(ctx context.Context, ticketIDs []string) (map[string]similarity.HydratedTicket, error) {
	if len(ticketIDs) == 0 {
		return nil, nil
	}

	rows, err := h.db.pool.Query(ctx,
		`SELECT id, assignee_email, resolved_at FROM tickets WHERE id = ANY($1) AND resolved_at IS NOT NULL`,
		ticketIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: hydrate resolved tickets: %w", err)
	}
	defer rows.Close()

	result := make(map[string]similarity.HydratedTicket, len(ticketIDs))
	for rows.Next() {
		var id, assignee string
		var resolvedAt time.Time
		if err := rows.Scan(&id, &assignee, &resolvedAt); err != nil {
			return nil, fmt.Errorf("storage: scan resolved ticket: %w", err)
		}
		result[id] = similarity.HydratedTicket{AssigneeEmail: assignee, ResolvedAt: resolvedAt}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: hydrate resolved tickets: %w", err)
	}
	return result, nil
}

// SearchByCategory returns the most recently resolved tickets in the given
// category, used as the keyword fallback when Qdrant is unavailable.
func (h *HistoryStore) SearchByCategory(ctx context.Context, category string, limit int) ([]model.SimilarTicket, error) {
	if limit <= 0 {
		limit = similarity.ResolveLimit
	}

	rows, err := h.db.pool.Query(ctx,
		`SELECT assignee_email, resolved_at
		 FROM tickets
		 WHERE category = $1 AND resolved_at IS NOT NULL
		 ORDER BY resolved_at DESC
		 LIMIT $2`,
		category, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: search tickets by category: %w", err)
	}
	defer rows.Close()

	var similarTickets []model.SimilarTicket
	for rows.Next() {
		var assignee string
		var resolvedAt time.Time
		if err := rows.Scan(&assignee, &resolvedAt); err != nil {
			return nil, fmt.Errorf("storage: scan category match: %w", err)
		}
		resolvedUnix := resolvedAt.Unix()
		similarTickets = append(similarTickets, model.SimilarTicket{
			AssigneeEmail: assignee,
			// Category matches carry no vector distance.
			Similarity: 0.5,
			ResolvedAt: &resolvedUnix,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: search tickets by category: %w", err)
	}
	return similarTickets, nil
}
