package domain

type MilestoneStatus string

const (
	// MilestoneUnpaid создан, escrow не пополнен;
	MilestoneUnpaid MilestoneStatus = "unpaid"
	// MilestoneActive оплачен клиентом, фрилансер работает;
	MilestoneActive MilestoneStatus = "active"
	// MilestoneReview результат отправлен и ждёт решения клиента;
	MilestoneReview MilestoneStatus = "review"
	// MilestoneAccepted принят, средства переведены фрилансеру.
	MilestoneAccepted MilestoneStatus = "accepted"

	// Terminal aliases of accepted found in older records.
	MilestoneCompleted MilestoneStatus = "completed"
	MilestonePaid      MilestoneStatus = "paid"
)

func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestoneUnpaid, MilestoneActive, MilestoneReview, MilestoneAccepted, MilestoneCompleted, MilestonePaid:
		return true
	}
	return false
}

func (s MilestoneStatus) IsTerminal() bool {
	switch s {
	case MilestoneAccepted, MilestoneCompleted, MilestonePaid:
		return true
	}
	return false
}

type Action string

const (
	ActionPay    Action = "pay"
	ActionSubmit Action = "submit"
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
)

type Transition struct {
	From  MilestoneStatus
	To    MilestoneStatus
	Event EventType
}

var transitions = map[Action]Transition{
	ActionPay:    {From: MilestoneUnpaid, To: MilestoneActive, Event: EventMilestoneActivated},
	ActionSubmit: {From: MilestoneActive, To: MilestoneReview, Event: EventMilestoneSubmission},
	ActionAccept: {From: MilestoneReview, To: MilestoneAccepted, Event: EventMilestoneAccepted},
	ActionReject: {From: MilestoneReview, To: MilestoneActive, Event: EventMilestoneRejected},
}

// TransitionFor returns the only edge the action may take. The table above is
// the whole state machine.
func TransitionFor(action Action) (Transition, bool) {
	t, ok := transitions[action]
	return t, ok
}

func (m *Milestone) Next(action Action) (Transition, error) {
	t, ok := transitions[action]
	if !ok || m.Status != t.From {
		return Transition{}, &TransitionError{MilestoneID: m.ID, Action: action, From: m.Status}
	}
	return t, nil
}

// Editable reports whether title, cost and due date may still change.
func (m *Milestone) Editable() bool {
	return m.Status == MilestoneUnpaid
}
