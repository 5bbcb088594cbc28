package scoring

import (
	"strings"

	"github.com/aa5177-adm/ticket-ai/internal/model"
)

// SkillMatcher scores how well a member's skill tags match a ticket's
// category. Implementations MUST return a value in [0, 1] and MUST NOT
// return 0.0 as a placeholder default — doing so would spuriously trip the
// skills-gap rule (see internal/rules, Rule 4).
type SkillMatcher interface {
	Score(ticket model.Ticket, member model.Member) float64
}

// constantSkillMatcher is the reference placeholder from spec.md §4.2.2: a
// constant score, for environments that have no skill taxonomy yet.
type constantSkillMatcher struct {
	value float64
}

// NewConstantSkillMatcher returns a SkillMatcher that always scores
// `value`, clamped to [0, 1]. Mirrors the embedding package's NoopProvider:
// a real implementation ships alongside an explicit, documented no-op.
func NewConstantSkillMatcher(value float64) SkillMatcher {
	return constantSkillMatcher{value: clamp01(value)}
}

func (m constantSkillMatcher) Score(_ model.Ticket, _ model.Member) float64 {
	return m.value
}

// tagOverlapMatcher is a Jaccard-style overlap matcher between the ticket's
// category (expanded with a small synonym set) and the member's skill tags,
// rescaled into [0.2, 1.0] so it never produces the forbidden 0.0.
type tagOverlapMatcher struct {
	synonyms map[string][]string
}

// NewTagOverlapMatcher returns a SkillMatcher grounded on simple tag
// overlap. synonyms maps a category to additional tags that should be
// treated as matching it (e.g. "billing" also matches "payments").
func NewTagOverlapMatcher(synonyms map[string][]string) SkillMatcher {
	if synonyms == nil {
		synonyms = defaultSynonyms
	}
	return tagOverlapMatcher{synonyms: synonyms}
}

var defaultSynonyms = map[string][]string{
	"billing":    {"payments", "invoicing"},
	"auth":       {"identity", "sso", "login"},
	"infra":      {"platform", "devops", "networking"},
	"database":   {"storage", "sql", "postgres"},
	"api":        {"integration", "webhooks"},
	"ui":         {"frontend", "design"},
	"security":   {"compliance", "vulnerability"},
	"onboarding": {"activation", "setup"},
}

func (m tagOverlapMatcher) Score(ticket model.Ticket, member model.Member) float64 {
	if len(member.SkillTags) == 0 || ticket.Category == "" {
		return 0.2
	}

	wanted := map[string]bool{strings.ToLower(ticket.Category): true}
	for _, syn := range m.synonyms[strings.ToLower(ticket.Category)] {
		wanted[strings.ToLower(syn)] = true
	}

	var matches int
	for _, tag := range member.SkillTags {
		if wanted[strings.ToLower(tag)] {
			matches++
		}
	}
	if matches == 0 {
		return 0.2
	}

	union := len(wanted) + len(member.SkillTags) - matches
	if union == 0 {
		return 0.2
	}
	jaccard := float64(matches) / float64(union)
	// Rescale [0, 1] jaccard into [0.2, 1.0].
	return 0.2 + jaccard*0.8
}
