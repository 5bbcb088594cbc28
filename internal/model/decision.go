package model

// AssignmentType is the outcome channel of a Decision.
type AssignmentType string

const (
	AssignmentNormal       AssignmentType = "normal"
	AssignmentHumanReview  AssignmentType = "human_review"
)

// Severity is the urgency of a HumanReviewTrigger.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// HumanReviewTrigger explains why a decision was escalated to a human.
type HumanReviewTrigger struct {
	Reason   string
	Severity Severity
	Action   string
	Timeout  string // e.g. "1h", "15min"; empty when the rule carries none
	Message  string
}

// Decision is the output of AssignTicket: either a normal assignment with a
// primary assignee, or a human-review escalation with at least one trigger.
// The two are mutually exclusive — never both unset, never both set.
type Decision struct {
	TicketID       string
	AssignmentType AssignmentType
	PrimaryAssignee string // member email; empty when AssignmentType is human_review
	Confidence     float64
	AppliedRules   []string
	Reasoning      []string
	Triggers       []HumanReviewTrigger
}

// Validate checks the mutual-exclusion invariant between PrimaryAssignee and
// Triggers that spec.md §3 requires of every Decision.
func (d Decision) Validate() error {
	switch d.AssignmentType {
	case AssignmentNormal:
		if d.PrimaryAssignee == "" {
			return NewInvariantViolation("normal decision missing primary_assignee")
		}
		if len(d.Triggers) > 0 {
			return NewInvariantViolation("normal decision must not carry human-review triggers")
		}
	case AssignmentHumanReview:
		if d.PrimaryAssignee != "" {
			return NewInvariantViolation("human_review decision must not carry a primary_assignee")
		}
		if len(d.Triggers) == 0 {
			return NewInvariantViolation("human_review decision missing at least one trigger")
		}
	default:
		return NewInvariantViolation("unknown assignment_type " + string(d.AssignmentType))
	}
	return nil
}
