package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type MilestoneRequestDTO struct {
	ID          int             `json:"id,omitempty" validate:"omitempty,gt=0" example:"0"`
	Title       string          `json:"title" validate:"required,min=3,max=200" example:"Wireframes"`
	Description string          `json:"description" validate:"max=2000" example:"Low fidelity wireframes for 5 pages"`
	DueDate     *time.Time      `json:"due_date,omitempty" example:"2024-06-01T00:00:00Z"`
	Cost        decimal.Decimal `json:"cost" validate:"required,money" swaggertype:"number" example:"400"`
}

type CreateContractRequestDTO struct {
	TaskID       int                   `json:"task_id" validate:"required,gt=0" example:"12"`
	BidID        int                   `json:"bid_id" validate:"required,gt=0" example:"34"`
	FreelancerID int                   `json:"freelancer_id" validate:"required,gt=0" example:"2"`
	Title        string                `json:"title" validate:"required,min=3,max=200" example:"Marketing site"`
	Description  string                `json:"description" validate:"max=5000" example:"Five page marketing site"`
	Budget       decimal.Decimal       `json:"budget" validate:"required,money" swaggertype:"number" example:"1000"`
	StartDate    *time.Time            `json:"start_date,omitempty" example:"2024-05-01T00:00:00Z"`
	Milestones   []MilestoneRequestDTO `json:"milestones" validate:"required,min=1,max=50,dive"`
}

func (r CreateContractRequestDTO) BudgetAmount() decimal.Decimal { return r.Budget }

func (r CreateContractRequestDTO) MilestoneCosts() []decimal.Decimal { return costs(r.Milestones) }

// EditContractRequestDTO carries the full milestone list. Existing milestones are
// referenced by id, milestones without id are added, missing ones are deleted.
type EditContractRequestDTO struct {
	Title       string                `json:"title" validate:"required,min=3,max=200" example:"Marketing site"`
	Description string                `json:"description" validate:"max=5000"`
	Budget      decimal.Decimal       `json:"budget" validate:"required,money" swaggertype:"number" example:"1200"`
	Milestones  []MilestoneRequestDTO `json:"milestones" validate:"required,min=1,max=50,dive"`
}

func (r EditContractRequestDTO) BudgetAmount() decimal.Decimal { return r.Budget }

func (r EditContractRequestDTO) MilestoneCosts() []decimal.Decimal { return costs(r.Milestones) }

func costs(milestones []MilestoneRequestDTO) []decimal.Decimal {
	out := make([]decimal.Decimal, len(milestones))
	for i, m := range milestones {
		out[i] = m.Cost
	}
	return out
}

type SubmissionResponseDTO struct {
	Description     string     `json:"description"`
	Files           []string   `json:"files"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
}

type PaymentDetailsDTO struct {
	Gross       float64 `json:"gross" example:"500"`
	PlatformFee float64 `json:"platform_fee" example:"50"`
	Net         float64 `json:"net" example:"450"`
}

type MilestoneResponseDTO struct {
	ID           int                    `json:"id" example:"7"`
	Position     int                    `json:"position" example:"1"`
	Title        string                 `json:"title" example:"Wireframes"`
	Description  string                 `json:"description"`
	DueDate      *time.Time             `json:"due_date,omitempty"`
	Cost         float64                `json:"cost" example:"400"`
	Status       string                 `json:"status" example:"unpaid"`
	EstimatedFee float64                `json:"estimated_fee" example:"40"`
	EstimatedNet float64                `json:"estimated_net" example:"360"`
	FundedAt     *time.Time             `json:"funded_at,omitempty"`
	Completion   *SubmissionResponseDTO `json:"completion_details,omitempty"`
	Payment      *PaymentDetailsDTO     `json:"payment_details,omitempty"`
}

type ContractResponseDTO struct {
	ID           int                    `json:"id" example:"3"`
	TaskID       int                    `json:"task_id" example:"12"`
	BidID        int                    `json:"bid_id" example:"34"`
	ClientID     int                    `json:"client_id" example:"1"`
	FreelancerID int                    `json:"freelancer_id" example:"2"`
	Title        string                 `json:"title" example:"Marketing site"`
	Description  string                 `json:"description"`
	Budget       float64                `json:"budget" example:"1000"`
	Status       string                 `json:"status" example:"ongoing"`
	StartDate    time.Time              `json:"start_date"`
	Milestones   []MilestoneResponseDTO `json:"milestones,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

type PaymentResponseDTO struct {
	ID          int       `json:"id" example:"1"`
	MilestoneID int       `json:"milestone_id" example:"7"`
	Gross       float64   `json:"gross" example:"500"`
	PlatformFee float64   `json:"platform_fee" example:"50"`
	Net         float64   `json:"net" example:"450"`
	Currency    string    `json:"currency" example:"usd"`
	TransferID  string    `json:"transfer_id" example:"tr_123"`
	CreatedAt   time.Time `json:"created_at"`
}
