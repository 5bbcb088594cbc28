package assignment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aa5177-adm/ticket-ai/internal/config"
	"github.com/aa5177-adm/ticket-ai/internal/model"
)

// fakeStore is an in-memory Store backing every end-to-end scenario test.
// The core package must need no database, per spec.md §1 and §8.
type fakeStore struct {
	members           []model.Member
	activeTickets     map[string][]model.ActiveTicket
	onLeave           map[string]bool
	holidays          []model.HolidayEntry
	recentAssignments map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		activeTickets:     map[string][]model.ActiveTicket{},
		onLeave:           map[string]bool{},
		holidays:          []model.HolidayEntry{},
		recentAssignments: map[string]int{},
	}
}

func (f *fakeStore) ListMembers(ctx context.Context, roleFilter model.Role) ([]model.Member, error) {
	return f.members, nil
}
func (f *fakeStore) ListActiveTickets(ctx context.Context, memberIDs []string) (map[string][]model.ActiveTicket, error) {
	return f.activeTickets, nil
}
func (f *fakeStore) ListActiveLeaves(ctx context.Context, memberIDs []string, today time.Time) (map[string]bool, error) {
	return f.onLeave, nil
}
func (f *fakeStore) ListHolidays(ctx context.Context, date time.Time, regions []model.Region) ([]model.HolidayEntry, error) {
	return f.holidays, nil
}
func (f *fakeStore) CountRecentAssignments(ctx context.Context, memberIDs []string, windowDays int) (map[string]int, error) {
	return f.recentAssignments, nil
}

func newEngine(t *testing.T, fs *fakeStore, now time.Time) *Engine {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	e := New(cfg, fs, nil, nil)
	e.Clock = func() time.Time { return now }
	return e
}

// S1: Priority=High, Ravi (IST) solved 2 similar tickets at 0.92/0.88, no
// load; Priya solved one at 0.65; UTC=04:00 (IST window).
func TestAssignTicket_S1_NormalAssignmentToExpert(t *testing.T) {
	fs := newFakeStore()
	fs.members = []model.Member{
		{ID: "m-ravi", Email: "ravi@example.com", Timezone: "Asia/Kolkata", Role: model.RoleUser},
		{ID: "m-priya", Email: "priya@example.com", Timezone: "Asia/Kolkata", Role: model.RoleUser},
	}
	now := time.Date(2026, 7, 31, 4, 0, 0, 0, time.UTC)
	e := newEngine(t, fs, now)

	ticket := model.Ticket{ID: "t1", Priority: model.PriorityHigh, Category: "billing"}
	similar := []model.SimilarTicket{
		{AssigneeEmail: "ravi@example.com", Similarity: 0.92},
		{AssigneeEmail: "ravi@example.com", Similarity: 0.88},
		{AssigneeEmail: "priya@example.com", Similarity: 0.65},
	}

	d, err := e.AssignTicket(context.Background(), ticket, similar)
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentNormal, d.AssignmentType)
	assert.Equal(t, "ravi@example.com", d.PrimaryAssignee)
	assert.GreaterOrEqual(t, d.Confidence, 0.5)
	assert.NotContains(t, d.AppliedRules, "team_lead_notification")
}

// S2: Max similarity = 0.55 over any member -> human review, no_similar_pattern.
func TestAssignTicket_S2_LowSimilarity_HumanReview(t *testing.T) {
	fs := newFakeStore()
	fs.members = []model.Member{{ID: "m1", Email: "a@example.com", Timezone: "Asia/Kolkata"}}
	e := newEngine(t, fs, time.Date(2026, 7, 31, 4, 0, 0, 0, time.UTC))

	ticket := model.Ticket{ID: "t2", Priority: model.PriorityMedium}
	similar := []model.SimilarTicket{{AssigneeEmail: "a@example.com", Similarity: 0.55}}

	d, err := e.AssignTicket(context.Background(), ticket, similar)
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentHumanReview, d.AssignmentType)
	require.Len(t, d.Triggers, 1)
	assert.Equal(t, "no_similar_pattern", d.Triggers[0].Reason)
	assert.Equal(t, model.SeverityHigh, d.Triggers[0].Severity)
}

// S3: Ravi best-fit on paper but overloaded (weighted_load=27); Sneha has no load.
func TestAssignTicket_S3_OverloadPrevention(t *testing.T) {
	fs := newFakeStore()
	fs.members = []model.Member{
		{ID: "m-ravi", Email: "ravi@example.com", Timezone: "Asia/Kolkata"},
		{ID: "m-sneha", Email: "sneha@example.com", Timezone: "Asia/Kolkata"},
	}
	now := time.Date(2026, 7, 31, 4, 0, 0, 0, time.UTC)
	var overloadTickets []model.ActiveTicket
	for i := 0; i < 9; i++ {
		overloadTickets = append(overloadTickets, model.ActiveTicket{
			MemberID: "m-ravi", Priority: model.PriorityCritical, Status: model.StatusInProgress, CreatedAt: now,
		})
	}
	fs.activeTickets["m-ravi"] = overloadTickets

	e := newEngine(t, fs, now)
	ticket := model.Ticket{ID: "t3", Priority: model.PriorityHigh}
	similar := []model.SimilarTicket{
		{AssigneeEmail: "ravi@example.com", Similarity: 0.95},
		{AssigneeEmail: "ravi@example.com", Similarity: 0.9},
		{AssigneeEmail: "ravi@example.com", Similarity: 0.85},
	}

	d, err := e.AssignTicket(context.Background(), ticket, similar)
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentNormal, d.AssignmentType)
	assert.Equal(t, "sneha@example.com", d.PrimaryAssignee)
	assert.Contains(t, d.AppliedRules, "overload_prevention")
}

// S4: every member's weighted_load > 20 -> human_review, team_at_capacity critical.
func TestAssignTicket_S4_AllOverloaded_HumanReview(t *testing.T) {
	fs := newFakeStore()
	fs.members = []model.Member{
		{ID: "m1", Email: "a@example.com", Timezone: "Asia/Kolkata"},
		{ID: "m2", Email: "b@example.com", Timezone: "Asia/Kolkata"},
	}
	now := time.Date(2026, 7, 31, 4, 0, 0, 0, time.UTC)
	var heavyLoad []model.ActiveTicket
	for i := 0; i < 8; i++ {
		heavyLoad = append(heavyLoad, model.ActiveTicket{Priority: model.PriorityCritical, Status: model.StatusInProgress, CreatedAt: now})
	}
	fs.activeTickets["m1"] = heavyLoad
	fs.activeTickets["m2"] = heavyLoad

	e := newEngine(t, fs, now)
	ticket := model.Ticket{ID: "t4", Priority: model.PriorityHigh}
	similar := []model.SimilarTicket{
		{AssigneeEmail: "a@example.com", Similarity: 0.9},
		{AssigneeEmail: "b@example.com", Similarity: 0.9},
	}

	d, err := e.AssignTicket(context.Background(), ticket, similar)
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentHumanReview, d.AssignmentType)
	require.Len(t, d.Triggers, 1)
	assert.Equal(t, "team_at_capacity", d.Triggers[0].Reason)
	assert.Equal(t, model.SeverityCritical, d.Triggers[0].Severity)
}

// S7: Critical priority, every candidate flagged on a global holiday today.
func TestAssignTicket_S7_AllUnavailable_HumanReview(t *testing.T) {
	fs := newFakeStore()
	now := time.Date(2026, 8, 15, 4, 0, 0, 0, time.UTC)
	fs.members = []model.Member{
		{ID: "m1", Email: "a@example.com", Timezone: "Asia/Kolkata"},
		{ID: "m2", Email: "b@example.com", Timezone: "America/New_York"},
	}
	fs.holidays = []model.HolidayEntry{{Date: now, Region: model.RegionGlobal}}

	e := newEngine(t, fs, now)
	ticket := model.Ticket{ID: "t7", Priority: model.PriorityCritical}
	similar := []model.SimilarTicket{
		{AssigneeEmail: "a@example.com", Similarity: 0.9},
		{AssigneeEmail: "b@example.com", Similarity: 0.9},
	}

	d, err := e.AssignTicket(context.Background(), ticket, similar)
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentHumanReview, d.AssignmentType)
	require.Len(t, d.Triggers, 1)
	assert.Equal(t, model.SeverityCritical, d.Triggers[0].Severity)
}

func TestAssignTicket_InvalidTicket_ReturnsInvalidInput(t *testing.T) {
	fs := newFakeStore()
	e := newEngine(t, fs, time.Now())
	_, err := e.AssignTicket(context.Background(), model.Ticket{Priority: model.PriorityHigh}, nil)
	require.Error(t, err)
	var invalidErr *model.InvalidInputError
	assert.ErrorAs(t, err, &invalidErr)
}

func TestAssignTicket_Determinism(t *testing.T) {
	fs := newFakeStore()
	fs.members = []model.Member{
		{ID: "m-ravi", Email: "ravi@example.com", Timezone: "Asia/Kolkata"},
		{ID: "m-priya", Email: "priya@example.com", Timezone: "Asia/Kolkata"},
	}
	now := time.Date(2026, 7, 31, 4, 0, 0, 0, time.UTC)
	ticket := model.Ticket{ID: "t-det", Priority: model.PriorityHigh, Category: "billing"}
	similar := []model.SimilarTicket{
		{AssigneeEmail: "ravi@example.com", Similarity: 0.92},
		{AssigneeEmail: "priya@example.com", Similarity: 0.65},
	}

	e1 := newEngine(t, fs, now)
	d1, err := e1.AssignTicket(context.Background(), ticket, similar)
	require.NoError(t, err)

	reversed := []model.SimilarTicket{similar[1], similar[0]}
	e2 := newEngine(t, fs, now)
	d2, err := e2.AssignTicket(context.Background(), ticket, reversed)
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
}
