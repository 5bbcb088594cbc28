package scoring

import (
	"github.com/aa5177-adm/ticket-ai/internal/model"
	"github.com/aa5177-adm/ticket-ai/internal/snapshot"
)

// availabilityScore is a strict binary gate: 1.0 iff the member is NOT on
// leave today and no holiday (regional or global) blocks them, else 0.0.
// No graded values are permitted, per spec.md §4.2.3.
func availabilityScore(snap *snapshot.Snapshot, member model.Member) float64 {
	if snap.OnLeave[member.ID] {
		return 0.0
	}
	region := member.Region()
	for _, h := range snap.Holidays {
		if h.BlocksMember(snap.Today, region) {
			return 0.0
		}
	}
	return 1.0
}
