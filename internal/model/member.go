package model

import (
	"strings"
	"time"
)

// Role is the member's role tag in the team directory. Only USER-role
// members are eligible for assignment; the Snapshot Loader filters on this.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Region is the coarse geography derived from a member's timezone, used to
// match against HolidayEntry regions.
type Region string

const (
	RegionIN      Region = "IN"
	RegionUS      Region = "US"
	RegionGlobal  Region = "GLOBAL"
	RegionUnknown Region = "UNKNOWN"
)

// DeriveRegion maps an IANA timezone name to a Region by prefix. Timezones
// outside the Asia/America prefixes are never regional-holiday-blocked.
func DeriveRegion(timezone string) Region {
	switch {
	case strings.HasPrefix(timezone, "Asia/"):
		return RegionIN
	case strings.HasPrefix(timezone, "America/"):
		return RegionUS
	default:
		return RegionUnknown
	}
}

// Member is a team member eligible for ticket assignment.
type Member struct {
	ID        string
	Name      string
	Email     string
	Timezone  string
	Role      Role
	SkillTags []string
}

// Region derives this member's geography from their timezone.
func (m Member) Region() Region {
	return DeriveRegion(m.Timezone)
}

// ActiveTicketStatus is the status of a ticket currently assigned to a member.
type ActiveTicketStatus string

const (
	StatusOpen       ActiveTicketStatus = "Open"
	StatusInProgress ActiveTicketStatus = "InProgress"
	StatusBlocked    ActiveTicketStatus = "Blocked"
	StatusPending    ActiveTicketStatus = "Pending"
)

// ActiveTicket is one ticket currently owned by a member, as loaded by the
// Snapshot Loader (only Open/InProgress/Pending are loaded; Blocked is kept
// here only because the workload formula still has a weight for it, in case
// a store implementation chooses to surface blocked tickets too).
type ActiveTicket struct {
	MemberID  string
	Priority  Priority
	Status    ActiveTicketStatus
	CreatedAt time.Time
}

// AgeDays returns the ticket's age in whole days relative to now.
func (t ActiveTicket) AgeDays(now time.Time) int {
	return int(now.Sub(t.CreatedAt).Hours() / 24)
}

// LeaveRecord is an inclusive date range during which a member is unavailable.
type LeaveRecord struct {
	MemberID string
	Start    time.Time // inclusive, date granularity
	End      time.Time // inclusive, date granularity
}

// ActiveOn reports whether the leave record covers the given date.
func (l LeaveRecord) ActiveOn(day time.Time) bool {
	d := truncateToDate(day)
	return !d.Before(truncateToDate(l.Start)) && !d.After(truncateToDate(l.End))
}

// HolidayEntry marks a date blocked for a given region (or GLOBAL for all).
type HolidayEntry struct {
	Date   time.Time // date granularity
	Region Region
}

// BlocksMember reports whether this holiday entry blocks the given member
// region on the given day.
func (h HolidayEntry) BlocksMember(day time.Time, memberRegion Region) bool {
	if !truncateToDate(h.Date).Equal(truncateToDate(day)) {
		return false
	}
	return h.Region == RegionGlobal || h.Region == memberRegion
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
