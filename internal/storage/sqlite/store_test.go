package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aa5177-adm/ticket-ai/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "snapshot.db")
	s, err := New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedMember(t *testing.T, s *Store, id, email, timezone, role string, skills []string) {
	t.Helper()
	csv := ""
	for i, tag := range skills {
		if i > 0 {
			csv += ","
		}
		csv += tag
	}
	_, err := s.db.Exec(
		`INSERT INTO members (id, name, email, timezone, role, skill_tags) VALUES (?, ?, ?, ?, ?, ?)`,
		id, id, email, timezone, role, csv,
	)
	require.NoError(t, err)
}

func TestStore_ListMembers(t *testing.T) {
	s := newTestStore(t)
	seedMember(t, s, "m1", "m1@example.com", "Asia/Kolkata", "USER", []string{"billing", "auth"})
	seedMember(t, s, "m2", "m2@example.com", "America/New_York", "ADMIN", nil)

	ctx := context.Background()

	all, err := s.ListMembers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	users, err := s.ListMembers(ctx, model.RoleUser)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "m1", users[0].ID)
	assert.Equal(t, []string{"billing", "auth"}, users[0].SkillTags)
}

func TestStore_ListActiveTickets(t *testing.T) {
	s := newTestStore(t)
	seedMember(t, s, "m1", "m1@example.com", "Asia/Kolkata", "USER", nil)

	_, err := s.db.Exec(
		`INSERT INTO active_tickets (ticket_id, member_id, priority, status, created_at_unix_ms) VALUES (?, ?, ?, ?, ?)`,
		"t1", "m1", string(model.PriorityHigh), string(model.StatusOpen), time.Now().UnixMilli(),
	)
	require.NoError(t, err)

	tickets, err := s.ListActiveTickets(context.Background(), []string{"m1", "missing"})
	require.NoError(t, err)
	require.Len(t, tickets["m1"], 1)
	assert.Equal(t, model.PriorityHigh, tickets["m1"][0].Priority)
	assert.Empty(t, tickets["missing"])
}

func TestStore_ListActiveLeaves(t *testing.T) {
	s := newTestStore(t)
	seedMember(t, s, "m1", "m1@example.com", "Asia/Kolkata", "USER", nil)

	today := time.Now().Truncate(24 * time.Hour)
	_, err := s.db.Exec(
		`INSERT INTO leave_records (member_id, start_date, end_date) VALUES (?, ?, ?)`,
		"m1", today.Format("2006-01-02"), today.Format("2006-01-02"),
	)
	require.NoError(t, err)

	onLeave, err := s.ListActiveLeaves(context.Background(), []string{"m1"}, today)
	require.NoError(t, err)
	assert.True(t, onLeave["m1"])

	tomorrow := today.AddDate(0, 0, 1)
	onLeaveTomorrow, err := s.ListActiveLeaves(context.Background(), []string{"m1"}, tomorrow)
	require.NoError(t, err)
	assert.False(t, onLeaveTomorrow["m1"])
}

func TestStore_ListHolidays(t *testing.T) {
	s := newTestStore(t)
	today := time.Now().Truncate(24 * time.Hour)

	_, err := s.db.Exec(
		`INSERT INTO holiday_entries (holiday_date, region) VALUES (?, ?)`,
		today.Format("2006-01-02"), string(model.RegionGlobal),
	)
	require.NoError(t, err)

	holidays, err := s.ListHolidays(context.Background(), today, []model.Region{model.RegionGlobal, model.RegionIN})
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, model.RegionGlobal, holidays[0].Region)
}

func TestStore_ListHolidays_NoRegionsReturnsNil(t *testing.T) {
	s := newTestStore(t)
	holidays, err := s.ListHolidays(context.Background(), time.Now(), nil)
	require.NoError(t, err)
	assert.Nil(t, holidays)
}

func TestStore_CountRecentAssignments(t *testing.T) {
	s := newTestStore(t)
	seedMember(t, s, "m1", "m1@example.com", "America/New_York", "USER", nil)

	now := time.Now()
	_, err := s.db.Exec(
		`INSERT INTO assignments (ticket_id, assignee_id, assigned_at_unix_ms) VALUES (?, ?, ?)`,
		"t1", "m1", now.UnixMilli(),
	)
	require.NoError(t, err)
	_, err = s.db.Exec(
		`INSERT INTO assignments (ticket_id, assignee_id, assigned_at_unix_ms) VALUES (?, ?, ?)`,
		"t2", "m1", now.AddDate(0, 0, -30).UnixMilli(),
	)
	require.NoError(t, err)

	counts, err := s.CountRecentAssignments(context.Background(), []string{"m1"}, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["m1"])
}

func TestNew_ReopenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "snapshot.db")
	s1, err := New(dbPath)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s2.Close() })

	members, err := s2.ListMembers(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, members)
}
