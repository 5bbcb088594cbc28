// Package search provides vector search capabilities using external search indexes
// with transparent fallback to text-based search in Postgres.
package search

import (
	"context"
	"math"
	"sort"
	"time"
)

// Result holds a ticket ID and assignee email matched by a similarity query,
// plus its raw similarity score from the search index. The caller hydrates
// full SimilarTicket records from Postgres (source of truth).
type Result struct {
	TicketID      string
	AssigneeEmail string
	Score         float32
}

// Searcher is the interface for vector search indexes feeding the Similarity
// Resolver. Implementations must be safe for concurrent use.
type Searcher interface {
	// Search returns resolved tickets matching the query embedding, filtered
	// by category and/or recency. The caller hydrates full records from
	// Postgres and is responsible for truncating to any desired limit.
	Search(ctx context.Context, embedding []float32, filters Filters, limit int) ([]Result, error)

	// Healthy returns nil if the search index is reachable, or an error
	// describing the problem.
	Healthy(ctx context.Context) error
}

// ReScore applies recency decay to raw similarity scores, sorts descending,
// and truncates to limit. Historical tickets resolved long ago are weaker
// evidence of current-day expertise than ones resolved recently, so a flat
// vector-similarity ranking alone would overweight stale matches.
//
// Formula: relevance = raw_score * recency_decay, where
//
//	recency_decay = 1 / (1 + age_days/90)
//
// A ticket resolved today decays by ~0% (decay ≈ 1.0); one resolved 90 days
// ago decays by 50%; one resolved 270 days ago decays to 25%. The decay
// constant mirrors the 90-day half-life the teacher's relevance formula used
// for valid_from recency, generalized from decision staleness to ticket
// staleness.
func ReScore(results []Result, resolvedAt map[string]time.Time, limit int) []Result {
	now := time.Now()
	scored := make([]Result, 0, len(results))

	for _, r := range results {
		when, ok := resolvedAt[r.TicketID]
		if !ok {
			// Ticket was deleted or never recorded between Qdrant search and
			// Postgres hydration.
			continue
		}

		ageDays := math.Max(0, now.Sub(when).Hours()/24.0)
		recencyDecay := 1.0 / (1.0 + ageDays/90.0)
		relevance := float64(r.Score) * recencyDecay

		scored = append(scored, Result{
			TicketID:      r.TicketID,
			AssigneeEmail: r.AssigneeEmail,
			Score:         float32(math.Min(relevance, 1.0)),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
