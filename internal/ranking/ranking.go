// Package ranking orders scored candidates into the fully determined list
// the Rule Engine inspects.
package ranking

import (
	"sort"

	"github.com/aa5177-adm/ticket-ai/internal/model"
)

// Rank sorts candidates by composite score descending, breaking ties by
// email ascending to guarantee determinism (spec.md §4.3). The input slice
// is not mutated; a new sorted slice is returned.
func Rank(candidates model.Candidates) model.Candidates {
	ranked := make(model.Candidates, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Composite != ranked[j].Composite {
			return ranked[i].Composite > ranked[j].Composite
		}
		return ranked[i].Member.Email < ranked[j].Member.Email
	})
	return ranked
}
