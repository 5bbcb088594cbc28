package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveRegion(t *testing.T) {
	cases := []struct {
		name     string
		timezone string
		want     Region
	}{
		{"india", "Asia/Kolkata", RegionIN},
		{"us", "America/New_York", RegionUS},
		{"other", "Europe/London", RegionUnknown},
		{"empty", "", RegionUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveRegion(tc.timezone))
		})
	}
}

func TestLeaveRecord_ActiveOn(t *testing.T) {
	start := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	l := LeaveRecord{MemberID: "m1", Start: start, End: end}

	assert.True(t, l.ActiveOn(start))
	assert.True(t, l.ActiveOn(end))
	assert.True(t, l.ActiveOn(time.Date(2026, 7, 12, 8, 30, 0, 0, time.UTC)))
	assert.False(t, l.ActiveOn(time.Date(2026, 7, 9, 23, 59, 0, 0, time.UTC)))
	assert.False(t, l.ActiveOn(time.Date(2026, 7, 16, 0, 0, 0, 0, time.UTC)))
}

func TestHolidayEntry_BlocksMember(t *testing.T) {
	day := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	globalHoliday := HolidayEntry{Date: day, Region: RegionGlobal}
	inHoliday := HolidayEntry{Date: day, Region: RegionIN}

	assert.True(t, globalHoliday.BlocksMember(day, RegionUS))
	assert.True(t, inHoliday.BlocksMember(day, RegionIN))
	assert.False(t, inHoliday.BlocksMember(day, RegionUS))
	assert.False(t, inHoliday.BlocksMember(day.AddDate(0, 0, 1), RegionIN))
}

func TestPriority_Valid(t *testing.T) {
	assert.True(t, PriorityCritical.Valid())
	assert.True(t, PriorityLow.Valid())
	assert.False(t, Priority("urgent").Valid())
}

func TestTicket_Validate(t *testing.T) {
	valid := Ticket{ID: "t1", Priority: PriorityHigh}
	require.NoError(t, valid.Validate())

	missingID := Ticket{Priority: PriorityHigh}
	assert.Error(t, missingID.Validate())

	badPriority := Ticket{ID: "t1", Priority: Priority("urgent")}
	assert.Error(t, badPriority.Validate())
}

func TestDecision_Validate(t *testing.T) {
	cases := []struct {
		name    string
		d       Decision
		wantErr bool
	}{
		{
			name: "valid normal",
			d: Decision{
				AssignmentType:  AssignmentNormal,
				PrimaryAssignee: "ravi@example.com",
			},
		},
		{
			name: "valid human review",
			d: Decision{
				AssignmentType: AssignmentHumanReview,
				Triggers:       []HumanReviewTrigger{{Reason: "no_similar_pattern", Severity: SeverityHigh}},
			},
		},
		{
			name: "normal missing assignee",
			d: Decision{
				AssignmentType: AssignmentNormal,
			},
			wantErr: true,
		},
		{
			name: "normal with trigger",
			d: Decision{
				AssignmentType:  AssignmentNormal,
				PrimaryAssignee: "ravi@example.com",
				Triggers:        []HumanReviewTrigger{{Reason: "x"}},
			},
			wantErr: true,
		},
		{
			name: "human review with assignee",
			d: Decision{
				AssignmentType:  AssignmentHumanReview,
				PrimaryAssignee: "ravi@example.com",
				Triggers:        []HumanReviewTrigger{{Reason: "x"}},
			},
			wantErr: true,
		},
		{
			name: "human review missing triggers",
			d: Decision{
				AssignmentType: AssignmentHumanReview,
			},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.d.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
