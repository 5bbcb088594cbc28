// Package store defines the abstraction the Snapshot Loader depends on.
// The core never talks to Postgres directly; it only ever sees this
// interface, so it can be tested against an in-memory fake and realized in
// production by internal/storage/postgres.
package store

import (
	"context"
	"time"

	"github.com/aa5177-adm/ticket-ai/internal/model"
)

// Store is the read-side contract the Snapshot Loader consumes. Every
// method is independently retryable by the implementation; the core treats
// each as total and observes only success-with-data or failure.
type Store interface {
	// ListMembers returns every member with the given role.
	ListMembers(ctx context.Context, roleFilter model.Role) ([]model.Member, error)

	// ListActiveTickets returns, per member id, the tickets currently in
	// Open/InProgress/Pending status.
	ListActiveTickets(ctx context.Context, memberIDs []string) (map[string][]model.ActiveTicket, error)

	// ListActiveLeaves returns the set of member ids on leave on the given day.
	ListActiveLeaves(ctx context.Context, memberIDs []string, today time.Time) (map[string]bool, error)

	// ListHolidays returns the holiday entries for the given date restricted
	// to the given regions.
	ListHolidays(ctx context.Context, date time.Time, regions []model.Region) ([]model.HolidayEntry, error)

	// CountRecentAssignments returns, per member id, how many tickets were
	// assigned to them within the last windowDays days.
	CountRecentAssignments(ctx context.Context, memberIDs []string, windowDays int) (map[string]int, error)
}
