package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/GlebRadaev/gigmarket/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateContractRequestDTO_ToContract(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	req := CreateContractRequestDTO{
		TaskID:       12,
		BidID:        34,
		FreelancerID: 2,
		Title:        "Marketing site",
		Budget:       decimal.RequireFromString("1000"),
		StartDate:    &start,
		Milestones: []MilestoneRequestDTO{
			{Title: "Design", Cost: decimal.RequireFromString("400.5")},
			{Title: "Build", Cost: decimal.RequireFromString("599.5")},
		},
	}

	c := req.ToContract()
	assert.Equal(t, 34, c.BidID)
	assert.True(t, decimal.RequireFromString("1000").Equal(c.Budget))
	assert.Equal(t, time.UTC, c.StartDate.Location())
	require.Len(t, c.Milestones, 2)
	assert.True(t, decimal.RequireFromString("400.5").Equal(c.Milestones[0].Cost))
	assert.NoError(t, c.Validate())
}

func TestCreateContractRequestDTO_DecodeAmounts(t *testing.T) {
	body := `{"task_id":1,"bid_id":2,"freelancer_id":3,"title":"Site","budget":1000.10,
		"milestones":[{"title":"Design","cost":"400.10"},{"title":"Build","cost":600}]}`

	var req CreateContractRequestDTO
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.Equal(t, "1000.1", req.Budget.String())
	assert.Equal(t, "400.1", req.Milestones[0].Cost.String())
	costs := req.MilestoneCosts()
	assert.True(t, costs[0].Add(costs[1]).Equal(req.BudgetAmount()))
}

func TestNewContractResponse(t *testing.T) {
	reason := "scope incomplete"
	c := &domain.Contract{
		ID:     3,
		Title:  "Marketing site",
		Budget: decimal.RequireFromString("1000"),
		Status: domain.ContractOngoing,
		Milestones: []domain.Milestone{
			{
				ID: 7, Position: 1, Title: "Design", Cost: decimal.RequireFromString("500"), Status: domain.MilestoneAccepted,
				Payment: &domain.PaymentDetails{
					Gross:       decimal.RequireFromString("500"),
					PlatformFee: decimal.RequireFromString("50"),
					Net:         decimal.RequireFromString("450"),
				},
			},
			{
				ID: 8, Position: 2, Title: "Build", Cost: decimal.RequireFromString("500"), Status: domain.MilestoneActive,
				Completion: &domain.Submission{Description: "first try", Files: []string{"a.zip"}, RejectionReason: &reason},
			},
		},
	}

	resp := NewContractResponse(c)
	assert.Equal(t, "ongoing", resp.Status)
	require.Len(t, resp.Milestones, 2)
	assert.Equal(t, 50.0, resp.Milestones[0].EstimatedFee)
	assert.Equal(t, 450.0, resp.Milestones[0].EstimatedNet)
	require.NotNil(t, resp.Milestones[0].Payment)
	assert.Equal(t, 450.0, resp.Milestones[0].Payment.Net)
	require.NotNil(t, resp.Milestones[1].Completion)
	assert.Equal(t, "scope incomplete", *resp.Milestones[1].Completion.RejectionReason)

	c.Milestones[1].Status = domain.MilestonePaid
	assert.Equal(t, "completed", NewContractResponse(c).Status)
}

func TestNewContractListResponse_StoredStatus(t *testing.T) {
	contracts := []domain.Contract{
		{ID: 3, Title: "Marketing site", Status: domain.ContractCompleted},
		{ID: 4, Title: "Logo", Status: domain.ContractOngoing},
	}

	resp := NewContractListResponse(contracts)

	require.Len(t, resp, 2)
	assert.Equal(t, "completed", resp[0].Status)
	assert.Equal(t, "ongoing", resp[1].Status)
}
