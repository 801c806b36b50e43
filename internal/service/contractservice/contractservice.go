package contractservice

import (
	"context"
	"time"

	"github.com/GlebRadaev/gigmarket/internal/domain"
	"go.uber.org/zap"
)

//go:generate mockgen -source=contractservice.go -destination=mock_contractservice.go -package=contractservice

type Repo interface {
	Create(ctx context.Context, c *domain.Contract) (*domain.Contract, error)
	FindByID(ctx context.Context, id int) (*domain.Contract, error)
	FindByUser(ctx context.Context, userID int) ([]domain.Contract, error)
	Update(ctx context.Context, c *domain.Contract, removed []int) error
}

type UserRepo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
}

type PaymentRepo interface {
	FindByContractID(ctx context.Context, contractID int) ([]domain.Payment, error)
}

type Service struct {
	repo     Repo
	users    UserRepo
	payments PaymentRepo
	now      func() time.Time
}

func New(repo Repo, users UserRepo, payments PaymentRepo) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		payments: payments,
		now:      time.Now,
	}
}

// Create turns an accepted bid into a contract owned by clientID. All
// milestones start unpaid.
func (s *Service) Create(ctx context.Context, clientID int, c *domain.Contract) (*domain.Contract, error) {
	client, err := s.users.FindByID(ctx, clientID)
	if err != nil {
		zap.L().Error("can't find client", zap.Int("userID", clientID), zap.Error(err))
		return nil, err
	}
	if client == nil || client.Role != domain.RoleClient {
		return nil, domain.ErrForbidden
	}
	if c.FreelancerID == clientID {
		return nil, domain.NewValidationError("freelancer_id", "must differ from the client")
	}
	freelancer, err := s.users.FindByID(ctx, c.FreelancerID)
	if err != nil {
		zap.L().Error("can't find freelancer", zap.Int("userID", c.FreelancerID), zap.Error(err))
		return nil, err
	}
	if freelancer == nil || freelancer.Role != domain.RoleFreelancer {
		return nil, domain.ErrFreelancerNotFound
	}

	c.ClientID = clientID
	c.Status = domain.ContractOngoing
	if c.StartDate.IsZero() {
		c.StartDate = s.now().UTC()
	}
	for i := range c.Milestones {
		c.Milestones[i].ID = 0
		c.Milestones[i].Status = domain.MilestoneUnpaid
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		zap.L().Error("can't create contract", zap.Int("bidID", c.BidID), zap.Error(err))
		return nil, err
	}
	zap.L().Info("contract created",
		zap.Int("contractID", created.ID),
		zap.Int("clientID", created.ClientID),
		zap.Int("freelancerID", created.FreelancerID),
	)
	return created, nil
}

// Edit applies a full replacement of title, budget, description and the
// milestone list. Milestones that already left unpaid must come back
// unchanged; only their position may move.
func (s *Service) Edit(ctx context.Context, clientID, contractID int, changes *domain.Contract) (*domain.Contract, error) {
	current, err := s.load(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if current.ClientID != clientID {
		return nil, domain.ErrForbidden
	}

	milestones, removed, err := mergeMilestones(current, changes.Milestones)
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.Title = changes.Title
	updated.Description = changes.Description
	updated.Budget = changes.Budget
	updated.Milestones = milestones
	updated.Status = domain.DeriveContractStatus(milestones)
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &updated, removed); err != nil {
		zap.L().Error("can't update contract", zap.Int("contractID", contractID), zap.Error(err))
		return nil, err
	}
	zap.L().Info("contract edited",
		zap.Int("contractID", contractID),
		zap.Int("version", updated.Version),
		zap.Ints("removedMilestones", removed),
	)
	return &updated, nil
}

func mergeMilestones(current *domain.Contract, incoming []domain.Milestone) ([]domain.Milestone, []int, error) {
	existing := make(map[int]domain.Milestone, len(current.Milestones))
	for _, m := range current.Milestones {
		existing[m.ID] = m
	}

	seen := make(map[int]bool, len(incoming))
	merged := make([]domain.Milestone, 0, len(incoming))
	for _, in := range incoming {
		if in.ID == 0 {
			in.ContractID = current.ID
			in.Status = domain.MilestoneUnpaid
			merged = append(merged, in)
			continue
		}
		old, ok := existing[in.ID]
		if !ok {
			return nil, nil, domain.NewValidationError("milestones", "milestone %d does not belong to this contract", in.ID)
		}
		if seen[in.ID] {
			return nil, nil, domain.NewValidationError("milestones", "milestone %d is listed twice", in.ID)
		}
		seen[in.ID] = true

		if !old.Editable() {
			if !sameTerms(old, in) {
				return nil, nil, domain.NewValidationError("milestones", "milestone %d is %s and can no longer be changed", old.ID, old.Status)
			}
			merged = append(merged, old)
			continue
		}
		old.Title = in.Title
		old.Description = in.Description
		old.DueDate = in.DueDate
		old.Cost = in.Cost
		merged = append(merged, old)
	}

	var removed []int
	for _, m := range current.Milestones {
		if seen[m.ID] {
			continue
		}
		if !m.Editable() {
			return nil, nil, domain.NewValidationError("milestones", "milestone %d is %s and can no longer be removed", m.ID, m.Status)
		}
		removed = append(removed, m.ID)
	}
	return merged, removed, nil
}

func sameTerms(a, b domain.Milestone) bool {
	if a.Title != b.Title || !a.Cost.Equal(b.Cost) {
		return false
	}
	if a.DueDate == nil || b.DueDate == nil {
		return a.DueDate == nil && b.DueDate == nil
	}
	return a.DueDate.Equal(*b.DueDate)
}

func (s *Service) Get(ctx context.Context, userID, contractID int) (*domain.Contract, error) {
	c, err := s.load(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !c.IsParty(userID) {
		return nil, domain.ErrForbidden
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, userID int) ([]domain.Contract, error) {
	contracts, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		zap.L().Error("can't list contracts", zap.Int("userID", userID), zap.Error(err))
		return nil, err
	}
	return contracts, nil
}

func (s *Service) Payments(ctx context.Context, userID, contractID int) ([]domain.Payment, error) {
	if _, err := s.Get(ctx, userID, contractID); err != nil {
		return nil, err
	}
	payments, err := s.payments.FindByContractID(ctx, contractID)
	if err != nil {
		zap.L().Error("can't list payments", zap.Int("contractID", contractID), zap.Error(err))
		return nil, err
	}
	return payments, nil
}

func (s *Service) load(ctx context.Context, contractID int) (*domain.Contract, error) {
	c, err := s.repo.FindByID(ctx, contractID)
	if err != nil {
		zap.L().Error("can't find contract", zap.Int("contractID", contractID), zap.Error(err))
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrContractNotFound
	}
	return c, nil
}
