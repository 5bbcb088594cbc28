package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aa5177-adm/ticket-ai/internal/assignment"
	"github.com/aa5177-adm/ticket-ai/internal/config"
	"github.com/aa5177-adm/ticket-ai/internal/model"
	"github.com/aa5177-adm/ticket-ai/internal/service/similarity"
)

// fakeHistory serves a fixed category-fallback result to the resolver.
type fakeHistory struct {
	similar []model.SimilarTicket
}

func (f *fakeHistory) HydrateByIDs(ctx context.Context, ticketIDs []string) (map[string]similarity.HydratedTicket, error) {
	return map[string]similarity.HydratedTicket{}, nil
}
func (f *fakeHistory) SearchByCategory(ctx context.Context, category string, limit int) ([]model.SimilarTicket, error) {
	return f.similar, nil
}

// fakeStore is the minimal in-memory store.Store backing assign_ticket tests.
type fakeStore struct {
	members []model.Member
}

func (f *fakeStore) ListMembers(ctx context.Context, roleFilter model.Role) ([]model.Member, error) {
	return f.members, nil
}
func (f *fakeStore) ListActiveTickets(ctx context.Context, memberIDs []string) (map[string][]model.ActiveTicket, error) {
	return map[string][]model.ActiveTicket{}, nil
}
func (f *fakeStore) ListActiveLeaves(ctx context.Context, memberIDs []string, today time.Time) (map[string]bool, error) {
	return map[string]bool{}, nil
}
func (f *fakeStore) ListHolidays(ctx context.Context, date time.Time, regions []model.Region) ([]model.HolidayEntry, error) {
	return nil, nil
}
func (f *fakeStore) CountRecentAssignments(ctx context.Context, memberIDs []string, windowDays int) (map[string]int, error) {
	return map[string]int{}, nil
}

func newTestServer(t *testing.T, fs *fakeStore, now time.Time) *Server {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	e := assignment.New(cfg, fs, nil, nil)
	e.Clock = func() time.Time { return now }
	return New(e, nil, nil, nil, "test")
}

func assignRequest(args map[string]any) mcplib.CallToolRequest {
	return mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{
			Name:      "assign_ticket",
			Arguments: args,
		},
	}
}

func parseToolText(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	for _, c := range result.Content {
		if tc, ok := c.(mcplib.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no text content in result")
	return ""
}

func TestHandleAssignTicket_NormalAssignment(t *testing.T) {
	fs := &fakeStore{members: []model.Member{
		{ID: "m-ravi", Email: "ravi@example.com", Timezone: "Asia/Kolkata", Role: model.RoleUser},
	}}
	s := newTestServer(t, fs, time.Date(2026, 7, 31, 4, 0, 0, 0, time.UTC))
	s.resolver = similarity.New(nil, nil, &fakeHistory{similar: []model.SimilarTicket{
		{AssigneeEmail: "ravi@example.com", Similarity: 0.9},
	}}, nil)

	result, err := s.handleAssignTicket(context.Background(), assignRequest(map[string]any{
		"ticket_id":   "t1",
		"title":       "Cannot log in",
		"description": "user locked out after password reset",
		"priority":    "high",
		"category":    "auth",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, "assign_ticket should succeed: %s", parseToolText(t, result))

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &resp))
	assert.Equal(t, "ravi@example.com", resp["assignee"])
	assert.Equal(t, string(model.AssignmentNormal), resp["assignment_type"])
}

func TestHandleAssignTicket_NoCandidatesEscalatesToHumanReview(t *testing.T) {
	fs := &fakeStore{}
	s := newTestServer(t, fs, time.Date(2026, 7, 31, 4, 0, 0, 0, time.UTC))

	result, err := s.handleAssignTicket(context.Background(), assignRequest(map[string]any{
		"ticket_id": "t2",
		"priority":  "high",
		"category":  "auth",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &resp))
	assert.Equal(t, string(model.AssignmentHumanReview), resp["assignment_type"])
	assert.Empty(t, resp["assignee"])
}

func TestHandleAssignTicket_InvalidTicketReturnsError(t *testing.T) {
	s := newTestServer(t, &fakeStore{}, time.Now())

	result, err := s.handleAssignTicket(context.Background(), assignRequest(map[string]any{
		"ticket_id": "",
		"priority":  "high",
		"category":  "auth",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
