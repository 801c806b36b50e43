package milestoneservice

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/GlebRadaev/gigmarket/internal/config"
	"github.com/GlebRadaev/gigmarket/internal/domain"
	"github.com/GlebRadaev/gigmarket/internal/metrics"
	"github.com/GlebRadaev/gigmarket/pkg/gateway"
	"github.com/GlebRadaev/gigmarket/pkg/lock"
	"go.uber.org/zap"
)

//go:generate mockgen -source=milestoneservice.go -destination=mock_milestoneservice.go -package=milestoneservice

const (
	releaseLeaseTTL = time.Minute
	pollInterval    = time.Second
	maxPolls        = 10
	cleanupTimeout  = 5 * time.Second
)

type Repo interface {
	FindByID(ctx context.Context, id int) (*domain.Contract, error)
	ActivateMilestone(ctx context.Context, c *domain.Contract, m *domain.Milestone, events []*domain.OutboxEvent) error
	SubmitMilestone(ctx context.Context, c *domain.Contract, m *domain.Milestone, s *domain.Submission, events []*domain.OutboxEvent) error
	AcceptMilestone(ctx context.Context, c *domain.Contract, m *domain.Milestone, p *domain.Payment, events []*domain.OutboxEvent) error
	RejectMilestone(ctx context.Context, c *domain.Contract, m *domain.Milestone, reason string, at time.Time, events []*domain.OutboxEvent) error
}

type Gateway interface {
	CreatePaymentIntent(ctx context.Context, req gateway.IntentRequest) (*gateway.Intent, error)
	ConfirmPayment(ctx context.Context, intentID, paymentMethod string) (*gateway.Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (*gateway.Intent, error)
	CancelPaymentIntent(ctx context.Context, intentID string) error
	ReleaseFunds(ctx context.Context, req gateway.ReleaseRequest) (*gateway.Transfer, error)
	Refund(ctx context.Context, req gateway.RefundRequest) (*gateway.Refund, error)
}

type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

type Service struct {
	repo         Repo
	gateway      Gateway
	locker       Locker
	currency     string
	payLeaseTTL  time.Duration
	pollInterval time.Duration
	now          func() time.Time
}

func New(repo Repo, gw Gateway, locker Locker, cfg *config.Config) *Service {
	return &Service{
		repo:         repo,
		gateway:      gw,
		locker:       locker,
		currency:     cfg.Currency,
		payLeaseTTL:  cfg.PaymentLockTTL,
		pollInterval: pollInterval,
		now:          time.Now,
	}
}

// Pay funds the milestone escrow. The pay lease lives as long as the
// provider keeps an intent open, so a second checkout for the same milestone
// is refused until the first one finishes or expires.
func (s *Service) Pay(ctx context.Context, userID, contractID, milestoneID int, paymentMethod string) (*domain.Contract, error) {
	c, m, err := s.prepare(ctx, contractID, milestoneID, domain.ActionPay, byClient(userID))
	if err != nil {
		return nil, err
	}

	key := lock.PayKey(m.ID)
	token, err := s.acquire(ctx, key, s.payLeaseTTL)
	if err != nil {
		return nil, err
	}
	keepLease := false
	defer func() {
		if !keepLease {
			s.release(key, token)
		}
	}()

	intent, err := s.gateway.CreatePaymentIntent(ctx, gateway.IntentRequest{
		Amount:         m.Cost,
		Currency:       s.currency,
		ContractID:     c.ID,
		MilestoneID:    m.ID,
		FreelancerID:   c.FreelancerID,
		IdempotencyKey: "pay:" + strconv.Itoa(m.ID) + ":" + token,
	})
	if err != nil {
		zap.L().Error("can't create payment intent", zap.Int("milestoneID", m.ID), zap.Error(err))
		return nil, err
	}

	intentID := intent.ID
	intent, err = s.settle(ctx, intentID, paymentMethod)
	if err != nil || intent.Status == gateway.StatusProcessing {
		// The provider may still settle it: cancel, or hold the lease until the intent expires.
		if !s.cancelIntent(intentID) {
			keepLease = true
		}
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: payment %s is still processing", gateway.ErrPaymentNotSucceeded, intentID)
	}
	if !intent.Succeeded() {
		reason := intent.LastError
		if reason == "" {
			reason = "payment " + intent.Status
		}
		zap.L().Info("payment declined", zap.Int("milestoneID", m.ID), zap.String("status", intent.Status))
		return nil, fmt.Errorf("%w: %s", gateway.ErrPaymentNotSucceeded, reason)
	}

	now := s.now().UTC()
	m.Status = domain.MilestoneActive
	m.EscrowIntentID = &intentID
	m.FundedAt = &now

	events, err := s.events(c, now, event(domain.EventMilestoneActivated, m.ID, domain.WithAmount(m.Cost)))
	if err == nil {
		err = s.repo.ActivateMilestone(ctx, c, m, events)
	}
	if err != nil {
		zap.L().Error("can't activate milestone, refunding charge",
			zap.Int("milestoneID", m.ID), zap.String("intentID", intentID), zap.Error(err))
		if refundErr := s.refund(m, intentID, token); refundErr != nil {
			keepLease = true
			return nil, fmt.Errorf("%w: intent %s: %w", domain.ErrRefundFailed, intentID, refundErr)
		}
		return nil, err
	}

	s.done(domain.ActionPay, c, m)
	return c, nil
}

// settle confirms the intent and waits while the provider reports it as processing.
func (s *Service) settle(ctx context.Context, intentID, paymentMethod string) (*gateway.Intent, error) {
	intent, err := s.gateway.ConfirmPayment(ctx, intentID, paymentMethod)
	if err != nil {
		zap.L().Error("can't confirm payment", zap.String("intentID", intentID), zap.Error(err))
		return nil, err
	}
	return s.awaitSettled(ctx, intent)
}

// cancelIntent reports whether the intent is known to be closed at the provider.
func (s *Service) cancelIntent(intentID string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()
	if err := s.gateway.CancelPaymentIntent(ctx, intentID); err != nil {
		zap.L().Error("can't cancel payment intent", zap.String("intentID", intentID), zap.Error(err))
		return false
	}
	return true
}

// refund returns a captured charge whose activation could not be stored.
func (s *Service) refund(m *domain.Milestone, intentID, token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()
	refund, err := s.gateway.Refund(ctx, gateway.RefundRequest{
		IntentID:       intentID,
		Amount:         m.Cost,
		IdempotencyKey: "refund:" + strconv.Itoa(m.ID) + ":" + token,
	})
	if err != nil {
		zap.L().Error("can't refund charge", zap.Int("milestoneID", m.ID), zap.String("intentID", intentID), zap.Error(err))
		return err
	}
	zap.L().Info("charge refunded", zap.Int("milestoneID", m.ID), zap.String("refundID", refund.ID))
	return nil
}

// awaitSettled polls the intent while the provider reports it as processing.
func (s *Service) awaitSettled(ctx context.Context, intent *gateway.Intent) (*gateway.Intent, error) {
	for i := 0; i < maxPolls && intent.Status == gateway.StatusProcessing; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.pollInterval):
		}
		next, err := s.gateway.RetrieveIntent(ctx, intent.ID)
		if err != nil {
			zap.L().Error("can't retrieve payment intent", zap.String("intentID", intent.ID), zap.Error(err))
			return nil, err
		}
		intent = next
	}
	return intent, nil
}

func (s *Service) Submit(ctx context.Context, userID, contractID, milestoneID int, description string, files []string) (*domain.Contract, error) {
	if strings.TrimSpace(description) == "" {
		return nil, domain.NewValidationError("description", "is required")
	}
	c, m, err := s.prepare(ctx, contractID, milestoneID, domain.ActionSubmit, byFreelancer(userID))
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	submission := &domain.Submission{
		MilestoneID: m.ID,
		Description: description,
		Files:       files,
		SubmittedAt: now,
	}
	if submission.Files == nil {
		submission.Files = []string{}
	}
	m.Status = domain.MilestoneReview
	m.Completion = submission

	events, err := s.events(c, now, event(domain.EventMilestoneSubmission, m.ID))
	if err != nil {
		return nil, err
	}
	if err := s.repo.SubmitMilestone(ctx, c, m, submission, events); err != nil {
		zap.L().Error("can't submit milestone", zap.Int("milestoneID", m.ID), zap.Error(err))
		return nil, err
	}

	s.done(domain.ActionSubmit, c, m)
	return c, nil
}

// Accept releases the net amount to the freelancer and records the payout.
// The release idempotency key is fixed per milestone, so retrying after a
// failed write never transfers twice.
func (s *Service) Accept(ctx context.Context, userID, contractID, milestoneID int) (*domain.Contract, error) {
	c, m, err := s.prepare(ctx, contractID, milestoneID, domain.ActionAccept, byClient(userID))
	if err != nil {
		return nil, err
	}

	key := lock.ReleaseKey(m.ID)
	token, err := s.acquire(ctx, key, releaseLeaseTTL)
	if err != nil {
		return nil, err
	}
	defer s.release(key, token)

	var intentID string
	if m.EscrowIntentID != nil {
		intentID = *m.EscrowIntentID
	}
	split := domain.SplitCommission(m.Cost)

	transfer, err := s.gateway.ReleaseFunds(ctx, gateway.ReleaseRequest{
		IntentID:       intentID,
		FreelancerID:   c.FreelancerID,
		Amount:         split.Net,
		IdempotencyKey: "release:" + strconv.Itoa(m.ID),
	})
	if err != nil {
		zap.L().Error("can't release funds", zap.Int("milestoneID", m.ID), zap.Error(err))
		return nil, err
	}

	now := s.now().UTC()
	m.Status = domain.MilestoneAccepted
	m.Payment = &split

	payment := &domain.Payment{
		ContractID:   c.ID,
		MilestoneID:  m.ID,
		FreelancerID: c.FreelancerID,
		Gross:        split.Gross,
		PlatformFee:  split.PlatformFee,
		Net:          split.Net,
		Currency:     s.currency,
		IntentID:     intentID,
		TransferID:   transfer.ID,
	}

	events, err := s.events(c, now, event(domain.EventMilestoneAccepted, m.ID, domain.WithAmount(split.Net)))
	if err != nil {
		return nil, err
	}
	if err := s.repo.AcceptMilestone(ctx, c, m, payment, events); err != nil {
		zap.L().Error("can't accept milestone after release",
			zap.Int("milestoneID", m.ID), zap.String("transferID", transfer.ID), zap.Error(err))
		return nil, err
	}

	s.done(domain.ActionAccept, c, m)
	if c.Status == domain.ContractCompleted {
		zap.L().Info("contract completed", zap.Int("contractID", c.ID))
	}
	return c, nil
}

func (s *Service) Reject(ctx context.Context, userID, contractID, milestoneID int, reason string) (*domain.Contract, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.NewValidationError("reason", "is required")
	}
	c, m, err := s.prepare(ctx, contractID, milestoneID, domain.ActionReject, byClient(userID))
	if err != nil {
		return nil, err
	}

	// Shares the release lease with Accept so a reject cannot land between
	// the payout and its record.
	key := lock.ReleaseKey(m.ID)
	token, err := s.acquire(ctx, key, releaseLeaseTTL)
	if err != nil {
		return nil, err
	}
	defer s.release(key, token)

	now := s.now().UTC()
	m.Status = domain.MilestoneActive
	if m.Completion != nil {
		m.Completion.RejectionReason = &reason
		m.Completion.RejectedAt = &now
	}

	events, err := s.events(c, now, event(domain.EventMilestoneRejected, m.ID, domain.WithReason(reason)))
	if err != nil {
		return nil, err
	}
	if err := s.repo.RejectMilestone(ctx, c, m, reason, now, events); err != nil {
		zap.L().Error("can't reject milestone", zap.Int("milestoneID", m.ID), zap.Error(err))
		return nil, err
	}

	s.done(domain.ActionReject, c, m)
	return c, nil
}

type actorCheck func(c *domain.Contract) bool

func byClient(userID int) actorCheck {
	return func(c *domain.Contract) bool { return c.ClientID == userID }
}

func byFreelancer(userID int) actorCheck {
	return func(c *domain.Contract) bool { return c.FreelancerID == userID }
}

// prepare loads the contract, checks who is acting and rejects actions the
// state machine does not allow before any external call is made.
func (s *Service) prepare(ctx context.Context, contractID, milestoneID int, action domain.Action, allowed actorCheck) (*domain.Contract, *domain.Milestone, error) {
	c, err := s.repo.FindByID(ctx, contractID)
	if err != nil {
		zap.L().Error("can't find contract", zap.Int("contractID", contractID), zap.Error(err))
		return nil, nil, err
	}
	if c == nil {
		return nil, nil, domain.ErrContractNotFound
	}
	if !allowed(c) {
		return nil, nil, domain.ErrForbidden
	}
	m, err := c.Milestone(milestoneID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := m.Next(action); err != nil {
		zap.L().Info("transition refused", zap.Int("milestoneID", m.ID), zap.String("action", string(action)),
			zap.String("status", string(m.Status)))
		return nil, nil, err
	}
	return c, m, nil
}

func (s *Service) acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token, ok, err := s.locker.Acquire(ctx, key, ttl)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrPaymentInProgress
	}
	return token, nil
}

// release runs on a fresh context so a cancelled request still frees the lease.
func (s *Service) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()
	if err := s.locker.Release(ctx, key, token); err != nil {
		zap.L().Error("can't release lease", zap.String("key", key), zap.Error(err))
	}
}

type eventSpec struct {
	eventType   domain.EventType
	milestoneID int
	opts        []domain.EventOption
}

func event(t domain.EventType, milestoneID int, opts ...domain.EventOption) eventSpec {
	return eventSpec{eventType: t, milestoneID: milestoneID, opts: opts}
}

func (s *Service) events(c *domain.Contract, at time.Time, specs ...eventSpec) ([]*domain.OutboxEvent, error) {
	events := make([]*domain.OutboxEvent, 0, len(specs))
	for _, spec := range specs {
		e, err := domain.NewEvent(spec.eventType, c, spec.milestoneID, at, spec.opts...)
		if err != nil {
			zap.L().Error("can't build event", zap.String("type", string(spec.eventType)), zap.Error(err))
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func (s *Service) done(action domain.Action, c *domain.Contract, m *domain.Milestone) {
	metrics.IncMilestoneTransition(string(action))
	zap.L().Info("milestone transitioned",
		zap.String("action", string(action)),
		zap.Int("contractID", c.ID),
		zap.Int("milestoneID", m.ID),
		zap.String("status", string(m.Status)),
		zap.String("contractStatus", string(c.Status)),
	)
}
