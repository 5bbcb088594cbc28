// Package similarity implements the Similarity Resolver: the external
// collaborator that turns an incoming ticket into the similar_tickets input
// consumed by the Assignment Pipeline. It is not part of the core decision
// engine and never imports internal/assignment.
package similarity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aa5177-adm/ticket-ai/internal/model"
	"github.com/aa5177-adm/ticket-ai/internal/search"
	"github.com/aa5177-adm/ticket-ai/internal/service/embedding"
)

// ResolveLimit caps how many historical tickets the resolver returns per
// incoming ticket. The Scorer only needs enough entries per candidate to
// compute an average similarity, so this stays small.
const ResolveLimit = 20

// HydratedTicket is the Postgres-side record the resolver needs to complete
// a raw Qdrant hit: who resolved it and when.
type HydratedTicket struct {
	AssigneeEmail string
	ResolvedAt    time.Time
}

// HistoryStore is the Postgres-backed collaborator the resolver uses to
// hydrate Qdrant hits and, when semantic search is unavailable, to fall back
// to a category/text match over resolved tickets.
type HistoryStore interface {
	// HydrateByIDs returns assignee + resolution time for the given resolved
	// ticket IDs. IDs absent from the result are silently dropped by ReScore.
	HydrateByIDs(ctx context.Context, ticketIDs []string) (map[string]HydratedTicket, error)

	// SearchByCategory returns resolved tickets in the same category as a
	// keyword fallback when Qdrant is unavailable or returns nothing.
	SearchByCategory(ctx context.Context, category string, limit int) ([]model.SimilarTicket, error)
}

// Resolver generates the similar_tickets input for AssignTicket.
type Resolver struct {
	embedder embedding.Provider
	searcher search.Searcher
	history  HistoryStore
	logger   *slog.Logger
}

// New creates a Resolver. searcher may be nil (semantic search disabled) — the
// resolver falls straight through to the category fallback. embedder may be
// the embedding.NoopProvider, which acts the same as a nil searcher.
func New(embedder embedding.Provider, searcher search.Searcher, history HistoryStore, logger *slog.Logger) *Resolver {
	return &Resolver{embedder: embedder, searcher: searcher, history: history, logger: logger}
}

// Resolve returns the historical tickets most similar to the given ticket.
// Fallback chain: Qdrant semantic search (embedding + ANN) → Postgres
// category search, mirroring the teacher's Qdrant-then-ILIKE chain.
func (r *Resolver) Resolve(ctx context.Context, ticket model.Ticket) ([]model.SimilarTicket, error) {
	if r.searcher != nil {
		if err := r.searcher.Healthy(ctx); err == nil {
			if similar, ok := r.resolveSemantic(ctx, ticket); ok {
				return similar, nil
			}
		} else {
			r.logger.Debug("similarity: qdrant unhealthy, using category fallback", "error", err)
		}
	}

	similar, err := r.history.SearchByCategory(ctx, ticket.Category, ResolveLimit)
	if err != nil {
		return nil, fmt.Errorf("similarity: category fallback: %w", err)
	}
	return similar, nil
}

// resolveSemantic attempts the Qdrant path. The second return value is false
// whenever the caller should fall through to the category search: embedding
// failure, an all-zero vector, a Qdrant query error, or an empty result set.
func (r *Resolver) resolveSemantic(ctx context.Context, ticket model.Ticket) ([]model.SimilarTicket, bool) {
	text := ticket.Title + "\n" + ticket.Description
	vec, err := r.embedder.Embed(ctx, text)
	if err != nil {
		r.logger.Debug("similarity: embedding failed, falling back to category search", "error", err)
		return nil, false
	}
	embeddingSlice := vec.Slice()
	if isZeroVector(embeddingSlice) {
		return nil, false
	}

	results, err := r.searcher.Search(ctx, embeddingSlice, search.Filters{Category: ticket.Category}, ResolveLimit)
	if err != nil {
		r.logger.Warn("similarity: qdrant query failed, falling back to category search", "error", err)
		return nil, false
	}
	if len(results) == 0 {
		r.logger.Debug("similarity: qdrant returned no results, falling back to category search")
		return nil, false
	}

	similar, err := r.hydrateAndReScore(ctx, results)
	if err != nil {
		r.logger.Warn("similarity: hydration failed, falling back to category search", "error", err)
		return nil, false
	}
	return similar, true
}

// hydrateAndReScore fetches resolution metadata from Postgres for each Qdrant
// hit, applies recency decay, and converts to the SimilarTicket shape the
// Scorer consumes.
func (r *Resolver) hydrateAndReScore(ctx context.Context, results []search.Result) ([]model.SimilarTicket, error) {
	ids := make([]string, len(results))
	for i, res := range results {
		ids[i] = res.TicketID
	}

	hydrated, err := r.history.HydrateByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate resolved tickets: %w", err)
	}

	resolvedAt := make(map[string]time.Time, len(hydrated))
	for id, h := range hydrated {
		resolvedAt[id] = h.ResolvedAt
	}

	rescored := search.ReScore(results, resolvedAt, ResolveLimit)

	similar := make([]model.SimilarTicket, 0, len(rescored))
	for _, res := range rescored {
		h, ok := hydrated[res.TicketID]
		if !ok {
			continue
		}
		resolvedAtUnix := h.ResolvedAt.Unix()
		similar = append(similar, model.SimilarTicket{
			AssigneeEmail: h.AssigneeEmail,
			Similarity:    float64(res.Score),
			ResolvedAt:    &resolvedAtUnix,
		})
	}
	return similar, nil
}

func isZeroVector(v []float32) bool {
	for _, val := range v {
		if val != 0 {
			return false
		}
	}
	return true
}
