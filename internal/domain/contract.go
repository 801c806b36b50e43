package domain

import (
	"github.com/shopspring/decimal"
)

type ContractStatus string

const (
	ContractOngoing   ContractStatus = "ongoing"
	ContractCompleted ContractStatus = "completed"
)

// BudgetTolerance is the largest accepted gap between the budget and the sum of milestone costs.
var BudgetTolerance = decimal.RequireFromString("0.01")

// CommissionRate is the share of every released milestone payment kept by the platform.
var CommissionRate = decimal.RequireFromString("0.10")

// DeriveContractStatus is the only place contract status is computed.
func DeriveContractStatus(milestones []Milestone) ContractStatus {
	if len(milestones) == 0 {
		return ContractOngoing
	}
	for _, m := range milestones {
		if !m.Status.IsTerminal() {
			return ContractOngoing
		}
	}
	return ContractCompleted
}

func (c *Contract) DerivedStatus() ContractStatus {
	return DeriveContractStatus(c.Milestones)
}

func (c *Contract) Milestone(id int) (*Milestone, error) {
	for i := range c.Milestones {
		if c.Milestones[i].ID == id {
			return &c.Milestones[i], nil
		}
	}
	return nil, ErrMilestoneNotFound
}

func (c *Contract) TotalCost() decimal.Decimal {
	sum := decimal.Zero
	for _, m := range c.Milestones {
		sum = sum.Add(m.Cost)
	}
	return sum
}

func (c *Contract) IsParty(userID int) bool {
	return c.ClientID == userID || c.FreelancerID == userID
}

// Validate checks the aggregate invariants before any write.
func (c *Contract) Validate() error {
	if c.Title == "" {
		return NewValidationError("title", "is required")
	}
	if len(c.Milestones) == 0 {
		return NewValidationError("milestones", "at least one milestone is required")
	}
	costs := make([]decimal.Decimal, 0, len(c.Milestones))
	for i, m := range c.Milestones {
		if m.Title == "" {
			return NewValidationError("milestones", "milestone %d: title is required", i+1)
		}
		if !m.Cost.IsPositive() {
			return NewValidationError("milestones", "milestone %d: cost must be positive", i+1)
		}
		costs = append(costs, m.Cost)
	}
	return CheckBudget(c.Budget, costs)
}

func CheckBudget(budget decimal.Decimal, costs []decimal.Decimal) error {
	if !budget.IsPositive() {
		return NewValidationError("budget", "must be positive")
	}
	sum := decimal.Sum(decimal.Zero, costs...)
	if sum.Sub(budget).Abs().GreaterThanOrEqual(BudgetTolerance) {
		return NewValidationError("milestones", "sum of milestone costs %s does not match budget %s",
			sum.StringFixed(2), budget.StringFixed(2))
	}
	return nil
}

// SplitCommission rounds the platform fee to cents and gives the remainder to
// the freelancer, so fee and net always add up to gross.
func SplitCommission(gross decimal.Decimal) PaymentDetails {
	fee := gross.Mul(CommissionRate).Round(2)
	return PaymentDetails{
		Gross:       gross,
		PlatformFee: fee,
		Net:         gross.Sub(fee),
	}
}
