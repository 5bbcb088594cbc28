package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aa5177-adm/ticket-ai/internal/model"
)

// SnapshotStore realizes internal/store.Store over Postgres. Every method is
// a single batched query keyed by member id, matching the Snapshot Loader's
// fan-out contract.
type SnapshotStore struct {
	db *DB
}

// NewSnapshotStore wraps db as a store.Store implementation.
func NewSnapshotStore(db *DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// ListMembers returns every member with the given role. Pass "" to return
// every role.
func (s *SnapshotStore) ListMembers(ctx context.Context, roleFilter model.Role) ([]model.Member, error) {
	var rows pgx.Rows
	var err error
	if roleFilter == "" {
		rows, err = s.db.pool.Query(ctx,
			`SELECT id, name, email, timezone, role, skill_tags FROM members`)
	} else {
		rows, err = s.db.pool.Query(ctx,
			`SELECT id, name, email, timezone, role, skill_tags FROM members WHERE role = $1`,
			string(roleFilter))
	}
	if err != nil {
		return nil, fmt.Errorf("storage: list members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var m model.Member
		var role string
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Timezone, &role, &m.SkillTags); err != nil {
			return nil, fmt.Errorf("storage: scan member: %w", err)
		}
		m.Role = model.Role(role)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: list members: %w", err)
	}
	return members, nil
}

// ListActiveTickets returns, per member id, the tickets currently assigned
// and not yet resolved.
func (s *SnapshotStore) ListActiveTickets(ctx context.Context, memberIDs []string) (map[string][]model.ActiveTicket, error) {
	result := make(map[string][]model.ActiveTicket, len(memberIDs))
	if len(memberIDs) == 0 {
		return result, nil
	}

	rows, err := s.db.pool.Query(ctx,
		`SELECT member_id, priority, status, created_at
		 FROM active_tickets
		 WHERE member_id = ANY($1)
		 AND status IN ('Open', 'InProgress', 'Pending')`,
		memberIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list active tickets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t model.ActiveTicket
		var priority, status string
		var createdAt time.Time
		if err := rows.Scan(&t.MemberID, &priority, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: scan active ticket: %w", err)
		}
		t.Priority = model.Priority(priority)
		t.Status = model.ActiveTicketStatus(status)
		t.CreatedAt = createdAt
		result[t.MemberID] = append(result[t.MemberID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: list active tickets: %w", err)
	}
	return result, nil
}

// ListActiveLeaves returns the set of member ids on leave on the given day.
func (s *SnapshotStore) ListActiveLeaves(ctx context.Context, memberIDs []string, today time.Time) (map[string]bool, error) {
	result := make(map[string]bool, len(memberIDs))
	if len(memberIDs) == 0 {
		return result, nil
	}

	rows, err := s.db.pool.Query(ctx,
		`SELECT DISTINCT member_id
		 FROM leave_records
		 WHERE member_id = ANY($1) AND start_date <= $2 AND end_date >= $2`,
		memberIDs, today,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list active leaves: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var memberID string
		if err := rows.Scan(&memberID); err != nil {
			return nil, fmt.Errorf("storage: scan leave record: %w", err)
		}
		result[memberID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: list active leaves: %w", err)
	}
	return result, nil
}

// ListHolidays returns the holiday entries for the given date restricted to
// the given regions.
func (s *SnapshotStore) ListHolidays(ctx context.Context, date time.Time, regions []model.Region) ([]model.HolidayEntry, error) {
	if len(regions) == 0 {
		return nil, nil
	}
	regionStrs := make([]string, len(regions))
	for i, r := range regions {
		regionStrs[i] = string(r)
	}

	rows, err := s.db.pool.Query(ctx,
		`SELECT holiday_date, region FROM holiday_entries WHERE holiday_date = $1 AND region = ANY($2)`,
		date, regionStrs,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []model.HolidayEntry
	for rows.Next() {
		var h model.HolidayEntry
		var region string
		if err := rows.Scan(&h.Date, &region); err != nil {
			return nil, fmt.Errorf("storage: scan holiday entry: %w", err)
		}
		h.Region = model.Region(region)
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: list holidays: %w", err)
	}
	return holidays, nil
}

// CountRecentAssignments returns, per member id, how many tickets were
// assigned to them within the last windowDays days.
func (s *SnapshotStore) CountRecentAssignments(ctx context.Context, memberIDs []string, windowDays int) (map[string]int, error) {
	result := make(map[string]int, len(memberIDs))
	if len(memberIDs) == 0 {
		return result, nil
	}

	rows, err := s.db.pool.Query(ctx,
		`SELECT assignee_id, count(*)
		 FROM assignments
		 WHERE assignee_id = ANY($1) AND assigned_at >= now() - make_interval(days => $2)
		 GROUP BY assignee_id`,
		memberIDs, windowDays,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: count recent assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var memberID string
		var count int
		if err := rows.Scan(&memberID, &count); err != nil {
			return nil, fmt.Errorf("storage: scan recent assignment count: %w", err)
		}
		result[memberID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: count recent assignments: %w", err)
	}
	return result, nil
}
