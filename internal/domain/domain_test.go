package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestMilestone_Next(t *testing.T) {
	statuses := []MilestoneStatus{
		MilestoneUnpaid, MilestoneActive, MilestoneReview, MilestoneAccepted, MilestoneCompleted, MilestonePaid,
	}
	actions := []Action{ActionPay, ActionSubmit, ActionAccept, ActionReject}
	allowed := map[Action]map[MilestoneStatus]MilestoneStatus{
		ActionPay:    {MilestoneUnpaid: MilestoneActive},
		ActionSubmit: {MilestoneActive: MilestoneReview},
		ActionAccept: {MilestoneReview: MilestoneAccepted},
		ActionReject: {MilestoneReview: MilestoneActive},
	}

	for _, action := range actions {
		for _, status := range statuses {
			t.Run(string(action)+" from "+string(status), func(t *testing.T) {
				m := &Milestone{ID: 7, Status: status}
				tr, err := m.Next(action)

				want, ok := allowed[action][status]
				if !ok {
					require.Error(t, err)
					assert.True(t, errors.Is(err, ErrInvalidTransition))
					var te *TransitionError
					require.ErrorAs(t, err, &te)
					assert.Equal(t, 7, te.MilestoneID)
					assert.Equal(t, status, te.From)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, status, tr.From)
				assert.Equal(t, want, tr.To)
				assert.True(t, tr.To.Valid())
			})
		}
	}
}

func TestMilestoneStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   MilestoneStatus
		terminal bool
	}{
		{MilestoneUnpaid, false},
		{MilestoneActive, false},
		{MilestoneReview, false},
		{MilestoneAccepted, true},
		{MilestoneCompleted, true},
		{MilestonePaid, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
			assert.True(t, tt.status.Valid())
		})
	}
	assert.False(t, MilestoneStatus("rejected").Valid())
}

func TestDeriveContractStatus(t *testing.T) {
	tests := []struct {
		name       string
		milestones []Milestone
		expected   ContractStatus
	}{
		{
			name:       "No milestones",
			milestones: nil,
			expected:   ContractOngoing,
		},
		{
			name:       "All unpaid",
			milestones: []Milestone{{Status: MilestoneUnpaid}, {Status: MilestoneUnpaid}},
			expected:   ContractOngoing,
		},
		{
			name:       "One still in review",
			milestones: []Milestone{{Status: MilestoneAccepted}, {Status: MilestoneReview}},
			expected:   ContractOngoing,
		},
		{
			name:       "All accepted",
			milestones: []Milestone{{Status: MilestoneAccepted}, {Status: MilestoneAccepted}},
			expected:   ContractCompleted,
		},
		{
			name:       "Accepted mixed with terminal aliases",
			milestones: []Milestone{{Status: MilestoneAccepted}, {Status: MilestoneCompleted}, {Status: MilestonePaid}},
			expected:   ContractCompleted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveContractStatus(tt.milestones))
		})
	}
}

func TestCheckBudget(t *testing.T) {
	tests := []struct {
		name      string
		budget    decimal.Decimal
		costs     []decimal.Decimal
		expectErr bool
	}{
		{"Exact match", d("1000"), []decimal.Decimal{d("400"), d("600")}, false},
		{"Mismatch", d("1000"), []decimal.Decimal{d("400"), d("550")}, true},
		{"Within tolerance", d("100"), []decimal.Decimal{d("33.33"), d("33.33"), d("33.335")}, false},
		{"At tolerance", d("100"), []decimal.Decimal{d("99.99")}, true},
		{"Zero budget", d("0"), []decimal.Decimal{d("0")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBudget(tt.budget, tt.costs)
			if tt.expectErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}

	err := CheckBudget(d("1000"), []decimal.Decimal{d("400"), d("550")})
	assert.EqualError(t, err, "milestones: sum of milestone costs 950.00 does not match budget 1000.00")
}

func TestContract_Validate(t *testing.T) {
	valid := func() *Contract {
		return &Contract{
			Title:  "Landing page",
			Budget: d("1000"),
			Milestones: []Milestone{
				{Title: "Design", Cost: d("400")},
				{Title: "Build", Cost: d("600")},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Contract)
		field  string
	}{
		{"Valid", func(c *Contract) {}, ""},
		{"Missing title", func(c *Contract) { c.Title = "" }, "title"},
		{"No milestones", func(c *Contract) { c.Milestones = nil }, "milestones"},
		{"Milestone without title", func(c *Contract) { c.Milestones[0].Title = "" }, "milestones"},
		{"Negative cost", func(c *Contract) { c.Milestones[0].Cost = d("-400") }, "milestones"},
		{"Budget mismatch", func(c *Contract) { c.Budget = d("950") }, "milestones"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestSplitCommission(t *testing.T) {
	tests := []struct {
		gross string
		fee   string
		net   string
	}{
		{"500", "50", "450"},
		{"1000", "100", "900"},
		{"123.45", "12.35", "111.10"},
		{"0.05", "0.01", "0.04"},
		{"19.99", "2.00", "17.99"},
	}
	for _, tt := range tests {
		t.Run(tt.gross, func(t *testing.T) {
			split := SplitCommission(d(tt.gross))
			assert.True(t, d(tt.fee).Equal(split.PlatformFee), "fee %s", split.PlatformFee)
			assert.True(t, d(tt.net).Equal(split.Net), "net %s", split.Net)
			assert.True(t, split.Gross.Equal(split.PlatformFee.Add(split.Net)))
		})
	}
}

func TestContract_Milestone(t *testing.T) {
	c := &Contract{ClientID: 1, FreelancerID: 2, Milestones: []Milestone{{ID: 10}, {ID: 11}}}

	m, err := c.Milestone(11)
	require.NoError(t, err)
	assert.Equal(t, 11, m.ID)

	m.Status = MilestoneActive
	assert.Equal(t, MilestoneActive, c.Milestones[1].Status)

	_, err = c.Milestone(12)
	assert.ErrorIs(t, err, ErrMilestoneNotFound)

	assert.True(t, c.IsParty(1))
	assert.True(t, c.IsParty(2))
	assert.False(t, c.IsParty(3))
}

func TestNewEvent(t *testing.T) {
	c := &Contract{ID: 3, ClientID: 1, FreelancerID: 2}
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	event, err := NewEvent(EventMilestoneRejected, c, 9, at, WithReason("scope incomplete"), WithAmount(d("500")))
	require.NoError(t, err)

	assert.Equal(t, 3, event.AggregateID)
	assert.Equal(t, OutboxPending, event.Status)
	assert.Equal(t, "milestone.rejected", event.Type.RoutingKey())
	assert.NotEmpty(t, event.EventID)

	var payload EventPayload
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, event.EventID, payload.EventID)
	assert.Equal(t, 9, payload.MilestoneID)
	assert.Equal(t, "scope incomplete", payload.Reason)
	assert.Equal(t, "500.00", payload.Amount)
	assert.Equal(t, "contract.completed", EventContractCompleted.RoutingKey())
}
