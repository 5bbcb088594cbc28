// Package scoring computes the five component scores and priority-weighted
// composite for each candidate member of a ticket assignment decision.
package scoring

import (
	"time"

	"github.com/aa5177-adm/ticket-ai/internal/config"
	"github.com/aa5177-adm/ticket-ai/internal/model"
	"github.com/aa5177-adm/ticket-ai/internal/snapshot"
)

// Scorer computes per-candidate component scores against a fixed
// configuration. Construction is cheap; it holds only immutable config and
// a skill matcher.
type Scorer struct {
	cfg          config.Config
	skillMatcher SkillMatcher
}

// New creates a Scorer. If matcher is nil, the constant placeholder matcher
// from spec.md §4.2.2 is used.
func New(cfg config.Config, matcher SkillMatcher) *Scorer {
	if matcher == nil {
		matcher = NewConstantSkillMatcher(0.2)
	}
	return &Scorer{cfg: cfg, skillMatcher: matcher}
}

// Score computes a Candidate for every member in the snapshot against the
// given ticket and similar-ticket list. now is the single wall-clock read
// threaded through the call, per spec.md §5's determinism guarantee.
func (s *Scorer) Score(snap *snapshot.Snapshot, ticket model.Ticket, similarTickets []model.SimilarTicket, now time.Time) (model.Candidates, error) {
	bySolver := make(map[string][]model.SimilarTicket, len(similarTickets))
	for _, st := range similarTickets {
		bySolver[st.AssigneeEmail] = append(bySolver[st.AssigneeEmail], st)
	}

	candidates := make(model.Candidates, 0, len(snap.Members))
	for _, member := range snap.Members {
		solved := bySolver[member.Email]
		solvedCount := len(solved)
		var avgSim float64
		if solvedCount > 0 {
			var sum float64
			for _, st := range solved {
				sum += st.Similarity
			}
			avgSim = sum / float64(solvedCount)
		}
		simScore := similarityScore(solvedCount, avgSim)

		skillScore := clamp01(s.skillMatcher.Score(ticket, member))
		availScore := availabilityScore(snap, member)

		tickets := snap.ActiveTickets[member.ID]
		wl := computeWorkload(s.cfg, tickets, now)

		tzScore := timezoneScore(s.cfg, now, ticket.Priority, member.Region(), solvedCount)

		comp, err := composite(s.cfg, ticket.Priority, simScore, skillScore, availScore, wl.Score, tzScore)
		if err != nil {
			return nil, err
		}

		candidates = append(candidates, model.Candidate{
			Member:                 member,
			SimilarityScore:        simScore,
			SkillScore:             skillScore,
			AvailabilityScore:      availScore,
			WorkloadScore:          wl.Score,
			TimezoneScore:          tzScore,
			Composite:              comp,
			ActiveTicketsCount:     len(tickets),
			RecentAssignmentsCount: snap.RecentAssignments[member.ID],
			WeightedLoad:           wl.WeightedLoad,
			IsOverloaded:           wl.IsOverloaded,
			SolvedSimilarCount:     solvedCount,
		})
	}
	return candidates, nil
}
