package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aa5177-adm/ticket-ai/internal/model"
)

// ListMembers returns every member with the given role. Pass "" to return
// every role.
func (s *Store) ListMembers(ctx context.Context, roleFilter model.Role) ([]model.Member, error) {
	query := `SELECT id, name, email, timezone, role, skill_tags FROM members`
	args := []any{}
	if roleFilter != "" {
		query += ` WHERE role = ?`
		args = append(args, string(roleFilter))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var m model.Member
		var role, skillTags string
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Timezone, &role, &skillTags); err != nil {
			return nil, fmt.Errorf("sqlite: scan member: %w", err)
		}
		m.Role = model.Role(role)
		m.SkillTags = splitTags(skillTags)
		members = append(members, m)
	}
	return members, rows.Err()
}

// ListActiveTickets returns, per member id, the tickets currently assigned
// and not yet resolved.
func (s *Store) ListActiveTickets(ctx context.Context, memberIDs []string) (map[string][]model.ActiveTicket, error) {
	result := make(map[string][]model.ActiveTicket, len(memberIDs))
	if len(memberIDs) == 0 {
		return result, nil
	}

	placeholders, args := inClause(memberIDs)
	rows, err := s.db.QueryContext(ctx,
		`SELECT member_id, priority, status, created_at_unix_ms FROM active_tickets
		 WHERE member_id IN (`+placeholders+`)
		 AND status IN ('Open', 'InProgress', 'Pending')`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list active tickets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t model.ActiveTicket
		var priority, status string
		var createdAtMs int64
		if err := rows.Scan(&t.MemberID, &priority, &status, &createdAtMs); err != nil {
			return nil, fmt.Errorf("sqlite: scan active ticket: %w", err)
		}
		t.Priority = model.Priority(priority)
		t.Status = model.ActiveTicketStatus(status)
		t.CreatedAt = time.UnixMilli(createdAtMs).UTC()
		result[t.MemberID] = append(result[t.MemberID], t)
	}
	return result, rows.Err()
}

// ListActiveLeaves returns the set of member ids on leave on the given day.
func (s *Store) ListActiveLeaves(ctx context.Context, memberIDs []string, today time.Time) (map[string]bool, error) {
	result := make(map[string]bool, len(memberIDs))
	if len(memberIDs) == 0 {
		return result, nil
	}

	placeholders, args := inClause(memberIDs)
	day := today.Format("2006-01-02")
	args = append(args, day, day)
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT member_id FROM leave_records
		 WHERE member_id IN (`+placeholders+`) AND start_date <= ? AND end_date >= ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list active leaves: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var memberID string
		if err := rows.Scan(&memberID); err != nil {
			return nil, fmt.Errorf("sqlite: scan leave record: %w", err)
		}
		result[memberID] = true
	}
	return result, rows.Err()
}

// ListHolidays returns the holiday entries for the given date restricted to
// the given regions.
func (s *Store) ListHolidays(ctx context.Context, date time.Time, regions []model.Region) ([]model.HolidayEntry, error) {
	if len(regions) == 0 {
		return nil, nil
	}
	regionStrs := make([]string, len(regions))
	for i, r := range regions {
		regionStrs[i] = string(r)
	}

	placeholders, args := inClause(regionStrs)
	day := date.Format("2006-01-02")
	rows, err := s.db.QueryContext(ctx,
		`SELECT holiday_date, region FROM holiday_entries WHERE holiday_date = ? AND region IN (`+placeholders+`)`,
		append([]any{day}, args...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []model.HolidayEntry
	for rows.Next() {
		var dateStr, region string
		if err := rows.Scan(&dateStr, &region); err != nil {
			return nil, fmt.Errorf("sqlite: scan holiday entry: %w", err)
		}
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parse holiday date: %w", err)
		}
		holidays = append(holidays, model.HolidayEntry{Date: parsed, Region: model.Region(region)})
	}
	return holidays, rows.Err()
}

// CountRecentAssignments returns, per member id, how many tickets were
// assigned to them within the last windowDays days.
func (s *Store) CountRecentAssignments(ctx context.Context, memberIDs []string, windowDays int) (map[string]int, error) {
	result := make(map[string]int, len(memberIDs))
	if len(memberIDs) == 0 {
		return result, nil
	}

	cutoff := time.Now().AddDate(0, 0, -windowDays).UnixMilli()
	placeholders, args := inClause(memberIDs)
	args = append(args, cutoff)
	rows, err := s.db.QueryContext(ctx,
		`SELECT assignee_id, count(*) FROM assignments
		 WHERE assignee_id IN (`+placeholders+`) AND assigned_at_unix_ms >= ?
		 GROUP BY assignee_id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: count recent assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var memberID string
		var count int
		if err := rows.Scan(&memberID, &count); err != nil {
			return nil, fmt.Errorf("sqlite: scan recent assignment count: %w", err)
		}
		result[memberID] = count
	}
	return result, rows.Err()
}

func inClause(values []string) (string, []any) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(values)), ",")
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return placeholders, args
}

func splitTags(csv string) []string {
	if csv == "" {
		return nil
	}
	return strings.Split(csv, ",")
}
