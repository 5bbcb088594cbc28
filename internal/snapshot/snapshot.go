// Package snapshot implements the Snapshot Loader: a point-in-time,
// internally consistent view of team state assembled from a bounded number
// of store queries.
package snapshot

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aa5177-adm/ticket-ai/internal/model"
	"github.com/aa5177-adm/ticket-ai/internal/store"
)

// regions is the fixed set of holiday regions the Snapshot Loader queries,
// per spec.md §4.1.
var regions = []model.Region{model.RegionIN, model.RegionUS, model.RegionGlobal}

// RecentAssignmentWindowDays is the lookback window for CountRecentAssignments.
const RecentAssignmentWindowDays = 7

// Snapshot is the point-in-time view of team state consumed by the Scorer.
// It is read-only for the remainder of the call once Load returns.
type Snapshot struct {
	Today             time.Time
	Members           []model.Member
	ActiveTickets     map[string][]model.ActiveTicket
	OnLeave           map[string]bool
	Holidays          []model.HolidayEntry
	RecentAssignments map[string]int
}

// MemberByEmail looks up a member in the snapshot by email.
func (s *Snapshot) MemberByEmail(email string) (model.Member, bool) {
	for _, m := range s.Members {
		if m.Email == email {
			return m, true
		}
	}
	return model.Member{}, false
}

// Loader assembles a Snapshot from a Store in a fixed, small number of
// queries: one for members, then the member-keyed queries fanned out in
// parallel once member ids are known.
type Loader struct {
	store  store.Store
	logger *slog.Logger
}

// New creates a Loader over the given Store.
func New(s store.Store, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{store: s, logger: logger}
}

// Load fetches members with the given role, then fans the remaining four
// queries out via errgroup.WithContext and joins before returning. Any
// backing-store error fails the whole call with a StoreError; the caller
// must not retry silently, per spec.md §4.1.
func (l *Loader) Load(ctx context.Context, roleFilter model.Role, today time.Time) (*Snapshot, error) {
	members, err := l.store.ListMembers(ctx, roleFilter)
	if err != nil {
		return nil, model.NewStoreError("list_members", err)
	}

	memberIDs := make([]string, len(members))
	for i, m := range members {
		memberIDs[i] = m.ID
	}

	var (
		activeTickets     map[string][]model.ActiveTicket
		onLeave           map[string]bool
		holidays          []model.HolidayEntry
		recentAssignments map[string]int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := l.store.ListActiveTickets(gctx, memberIDs)
		if err != nil {
			return model.NewStoreError("list_active_tickets", err)
		}
		activeTickets = v
		return nil
	})
	g.Go(func() error {
		v, err := l.store.ListActiveLeaves(gctx, memberIDs, today)
		if err != nil {
			return model.NewStoreError("list_active_leaves", err)
		}
		onLeave = v
		return nil
	})
	g.Go(func() error {
		v, err := l.store.ListHolidays(gctx, today, regions)
		if err != nil {
			return model.NewStoreError("list_holidays", err)
		}
		holidays = v
		return nil
	})
	g.Go(func() error {
		v, err := l.store.CountRecentAssignments(gctx, memberIDs, RecentAssignmentWindowDays)
		if err != nil {
			return model.NewStoreError("count_recent_assignments", err)
		}
		recentAssignments = v
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Today:             today,
		Members:           members,
		ActiveTickets:     activeTickets,
		OnLeave:           onLeave,
		Holidays:          holidays,
		RecentAssignments: recentAssignments,
	}
	if err := snap.validateConsistency(); err != nil {
		return nil, err
	}
	return snap, nil
}

// validateConsistency enforces spec.md §3's cross-reference invariant: every
// active-ticket, leave, and recent-assignment row must reference a member
// present in the team set.
func (s *Snapshot) validateConsistency() error {
	known := make(map[string]bool, len(s.Members))
	for _, m := range s.Members {
		known[m.ID] = true
	}
	for memberID := range s.ActiveTickets {
		if !known[memberID] {
			return model.NewInvariantViolation("active tickets reference unknown member " + memberID)
		}
	}
	for memberID := range s.OnLeave {
		if !known[memberID] {
			return model.NewInvariantViolation("leave record references unknown member " + memberID)
		}
	}
	for memberID := range s.RecentAssignments {
		if !known[memberID] {
			return model.NewInvariantViolation("recent assignment count references unknown member " + memberID)
		}
	}
	return nil
}
