package model

// Candidate is a derived, transient per-member evaluation for a single
// AssignTicket call. It never outlives the call and is never persisted.
type Candidate struct {
	Member Member

	SimilarityScore float64
	SkillScore      float64
	AvailabilityScore float64
	WorkloadScore   float64
	TimezoneScore   float64
	Composite       float64

	ActiveTicketsCount      int
	RecentAssignmentsCount  int
	WeightedLoad            float64
	IsOverloaded            bool
	SolvedSimilarCount      int
}

// Candidates is an ordered list of Candidate, as produced by the Ranker.
type Candidates []Candidate

// ByEmail looks up a candidate by member email, returning (candidate, true)
// on a match.
func (cs Candidates) ByEmail(email string) (Candidate, bool) {
	for _, c := range cs {
		if c.Member.Email == email {
			return c, true
		}
	}
	return Candidate{}, false
}
