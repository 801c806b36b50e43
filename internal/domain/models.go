package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
)

type User struct {
	ID           int       `db:"id"`
	Login        string    `db:"login"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

type Contract struct {
	ID           int             `db:"id"`
	TaskID       int             `db:"task_id"`
	BidID        int             `db:"bid_id"`
	ClientID     int             `db:"client_id"`
	FreelancerID int             `db:"freelancer_id"`
	Title        string          `db:"title"`
	Description  string          `db:"description"`
	Budget       decimal.Decimal `db:"budget"`
	Status       ContractStatus  `db:"status"`
	StartDate    time.Time       `db:"start_date"`
	Version      int             `db:"version"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`

	Milestones []Milestone
}

type Milestone struct {
	ID             int             `db:"id"`
	ContractID     int             `db:"contract_id"`
	Position       int             `db:"position"`
	Title          string          `db:"title"`
	Description    string          `db:"description"`
	DueDate        *time.Time      `db:"due_date"`
	Cost           decimal.Decimal `db:"cost"`
	Status         MilestoneStatus `db:"status"`
	EscrowIntentID *string         `db:"escrow_intent_id"`
	FundedAt       *time.Time      `db:"funded_at"`
	UpdatedAt      time.Time       `db:"updated_at"`

	// Completion is the latest submission, nil until the freelancer submits.
	Completion *Submission
	Payment    *PaymentDetails
}

// Submission is one completion attempt. Rejected attempts are kept as history.
type Submission struct {
	ID              int        `db:"id"`
	MilestoneID     int        `db:"milestone_id"`
	Description     string     `db:"description"`
	Files           []string   `db:"files"`
	SubmittedAt     time.Time  `db:"submitted_at"`
	RejectionReason *string    `db:"rejection_reason"`
	RejectedAt      *time.Time `db:"rejected_at"`
}

type PaymentDetails struct {
	Gross       decimal.Decimal
	PlatformFee decimal.Decimal
	Net         decimal.Decimal
}

// Payment is the immutable escrow release record, one per accepted milestone.
type Payment struct {
	ID           int             `db:"id"`
	ContractID   int             `db:"contract_id"`
	MilestoneID  int             `db:"milestone_id"`
	FreelancerID int             `db:"freelancer_id"`
	Gross        decimal.Decimal `db:"gross"`
	PlatformFee  decimal.Decimal `db:"platform_fee"`
	Net          decimal.Decimal `db:"net"`
	Currency     string          `db:"currency"`
	IntentID     string          `db:"intent_id"`
	TransferID   string          `db:"transfer_id"`
	CreatedAt    time.Time       `db:"created_at"`
}

type OutboxEvent struct {
	ID          int        `db:"id"`
	EventID     string     `db:"event_id"`
	AggregateID int        `db:"aggregate_id"`
	Type        EventType  `db:"event_type"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	Attempts    int        `db:"attempts"`
	CreatedAt   time.Time  `db:"created_at"`
	SentAt      *time.Time `db:"sent_at"`
}
