package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventMilestoneActivated  EventType = "milestone_activated"
	EventMilestoneSubmission EventType = "milestone_submission"
	EventMilestoneAccepted   EventType = "milestone_accepted"
	EventMilestoneRejected   EventType = "milestone_rejected"
	EventContractCompleted   EventType = "contract_completed"
)

const (
	OutboxPending = "pending"
	OutboxSent    = "sent"
	OutboxFailed  = "failed"
)

// RoutingKey maps milestone_accepted to milestone.accepted.
func (t EventType) RoutingKey() string {
	return strings.Replace(string(t), "_", ".", 1)
}

type EventPayload struct {
	EventID      string    `json:"event_id"`
	Type         EventType `json:"type"`
	ContractID   int       `json:"contract_id"`
	MilestoneID  int       `json:"milestone_id,omitempty"`
	ClientID     int       `json:"client_id"`
	FreelancerID int       `json:"freelancer_id"`
	Reason       string    `json:"reason,omitempty"`
	Amount       string    `json:"amount,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type EventOption func(*EventPayload)

func WithReason(reason string) EventOption {
	return func(p *EventPayload) { p.Reason = reason }
}

func WithAmount(amount decimal.Decimal) EventOption {
	return func(p *EventPayload) { p.Amount = amount.StringFixed(2) }
}

func NewEvent(eventType EventType, c *Contract, milestoneID int, at time.Time, opts ...EventOption) (*OutboxEvent, error) {
	payload := EventPayload{
		EventID:      uuid.NewString(),
		Type:         eventType,
		ContractID:   c.ID,
		MilestoneID:  milestoneID,
		ClientID:     c.ClientID,
		FreelancerID: c.FreelancerID,
		OccurredAt:   at,
	}
	for _, opt := range opts {
		opt(&payload)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &OutboxEvent{
		EventID:     payload.EventID,
		AggregateID: c.ID,
		Type:        eventType,
		Payload:     body,
		Status:      OutboxPending,
		CreatedAt:   at,
	}, nil
}
