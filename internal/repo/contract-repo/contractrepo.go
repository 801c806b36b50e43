package contractrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gigmarket/internal/domain"
	"github.com/GlebRadaev/gigmarket/internal/pg"
)

const uniqueViolation = "23505"

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

func (r *Repository) Create(ctx context.Context, c *domain.Contract) (*domain.Contract, error) {
	query := `
		INSERT INTO contracts (task_id, bid_id, client_id, freelancer_id, title, description, budget, status, start_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, version, created_at, updated_at
	`
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		err := r.db.QueryRow(ctx, query,
			c.TaskID, c.BidID, c.ClientID, c.FreelancerID, c.Title, c.Description, c.Budget, c.Status, c.StartDate,
		).Scan(&c.ID, &c.Version, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return domain.ErrBidAlreadyUsed
			}
			zap.L().Error("can't save contract", zap.Error(err))
			return err
		}
		for i := range c.Milestones {
			m := &c.Milestones[i]
			m.ContractID = c.ID
			m.Position = i + 1
			if err := r.insertMilestone(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Repository) insertMilestone(ctx context.Context, m *domain.Milestone) error {
	query := `
		INSERT INTO milestones (contract_id, position, title, description, due_date, cost, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		m.ContractID, m.Position, m.Title, m.Description, m.DueDate, m.Cost, m.Status,
	).Scan(&m.ID, &m.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save milestone", zap.Int("contractID", m.ContractID), zap.Error(err))
		return err
	}
	return nil
}

// FindByID loads the aggregate with milestones, their latest submission and
// payment split. Returns nil, nil when the contract does not exist.
func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Contract, error) {
	query := `
		SELECT id, task_id, bid_id, client_id, freelancer_id, title, description, budget, status,
		       start_date, version, created_at, updated_at
		FROM contracts
		WHERE id = $1
	`
	var c domain.Contract
	err := scanContract(r.db.QueryRow(ctx, query, id), &c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find contract", zap.Int("contractID", id), zap.Error(err))
		return nil, err
	}

	if c.Milestones, err = r.findMilestones(ctx, id); err != nil {
		return nil, err
	}
	if err := r.attachSubmissions(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) FindByUser(ctx context.Context, userID int) ([]domain.Contract, error) {
	query := `
		SELECT id, task_id, bid_id, client_id, freelancer_id, title, description, budget, status,
		       start_date, version, created_at, updated_at
		FROM contracts
		WHERE client_id = $1 OR freelancer_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't get contracts", zap.Int("userID", userID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var contracts []domain.Contract
	for rows.Next() {
		var c domain.Contract
		if err := scanContract(rows, &c); err != nil {
			zap.L().Error("can't scan contract row", zap.Error(err))
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func scanContract(row pgx.Row, c *domain.Contract) error {
	return row.Scan(&c.ID, &c.TaskID, &c.BidID, &c.ClientID, &c.FreelancerID, &c.Title, &c.Description,
		&c.Budget, &c.Status, &c.StartDate, &c.Version, &c.CreatedAt, &c.UpdatedAt)
}

func (r *Repository) findMilestones(ctx context.Context, contractID int) ([]domain.Milestone, error) {
	query := `
		SELECT m.id, m.contract_id, m.position, m.title, m.description, m.due_date, m.cost, m.status,
		       m.escrow_intent_id, m.funded_at, m.updated_at, p.gross, p.platform_fee, p.net
		FROM milestones m
		LEFT JOIN payments p ON p.milestone_id = m.id
		WHERE m.contract_id = $1
		ORDER BY m.position
	`
	rows, err := r.db.Query(ctx, query, contractID)
	if err != nil {
		zap.L().Error("can't get milestones", zap.Int("contractID", contractID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var milestones []domain.Milestone
	for rows.Next() {
		var m domain.Milestone
		var gross, fee, net decimal.NullDecimal
		err := rows.Scan(&m.ID, &m.ContractID, &m.Position, &m.Title, &m.Description, &m.DueDate, &m.Cost,
			&m.Status, &m.EscrowIntentID, &m.FundedAt, &m.UpdatedAt, &gross, &fee, &net)
		if err != nil {
			zap.L().Error("can't scan milestone row", zap.Error(err))
			return nil, err
		}
		if gross.Valid {
			m.Payment = &domain.PaymentDetails{Gross: gross.Decimal, PlatformFee: fee.Decimal, Net: net.Decimal}
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

func (r *Repository) attachSubmissions(ctx context.Context, c *domain.Contract) error {
	query := `
		SELECT DISTINCT ON (s.milestone_id) s.id, s.milestone_id, s.description, s.files, s.submitted_at,
		       s.rejection_reason, s.rejected_at
		FROM milestone_submissions s
		JOIN milestones m ON m.id = s.milestone_id
		WHERE m.contract_id = $1
		ORDER BY s.milestone_id, s.submitted_at DESC
	`
	rows, err := r.db.Query(ctx, query, c.ID)
	if err != nil {
		zap.L().Error("can't get submissions", zap.Int("contractID", c.ID), zap.Error(err))
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.Submission
		err := rows.Scan(&s.ID, &s.MilestoneID, &s.Description, &s.Files, &s.SubmittedAt, &s.RejectionReason, &s.RejectedAt)
		if err != nil {
			zap.L().Error("can't scan submission row", zap.Error(err))
			return err
		}
		if m, err := c.Milestone(s.MilestoneID); err == nil {
			m.Completion = &s
		}
	}
	return rows.Err()
}

// Update persists an edit made against c.Version. Milestones without id are
// inserted, removed ids are deleted. Only unpaid milestones are rewritten.
func (r *Repository) Update(ctx context.Context, c *domain.Contract, removed []int) error {
	query := `
		UPDATE contracts
		SET title = $1, description = $2, budget = $3, status = $4, version = version + 1, updated_at = NOW()
		WHERE id = $5 AND version = $6
		RETURNING version, updated_at
	`
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		err := r.db.QueryRow(ctx, query, c.Title, c.Description, c.Budget, c.Status, c.ID, c.Version).
			Scan(&c.Version, &c.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrConcurrentUpdate
		}
		if err != nil {
			zap.L().Error("can't update contract", zap.Int("contractID", c.ID), zap.Error(err))
			return err
		}

		for _, id := range removed {
			if err := r.exactlyOne(ctx, "delete milestone",
				`DELETE FROM milestones WHERE id = $1 AND contract_id = $2 AND status = $3`,
				id, c.ID, domain.MilestoneUnpaid); err != nil {
				return err
			}
		}

		for i := range c.Milestones {
			m := &c.Milestones[i]
			m.ContractID = c.ID
			m.Position = i + 1
			switch {
			case m.ID == 0:
				err = r.insertMilestone(ctx, m)
			case m.Editable():
				err = r.exactlyOne(ctx, "update milestone", `
					UPDATE milestones
					SET position = $1, title = $2, description = $3, due_date = $4, cost = $5, updated_at = NOW()
					WHERE id = $6 AND contract_id = $7 AND status = $8
				`, m.Position, m.Title, m.Description, m.DueDate, m.Cost, m.ID, c.ID, domain.MilestoneUnpaid)
			default:
				err = r.exactlyOne(ctx, "move milestone",
					`UPDATE milestones SET position = $1 WHERE id = $2 AND contract_id = $3`,
					m.Position, m.ID, c.ID)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// exactlyOne runs a conditional write; zero affected rows means someone moved
// the milestone out of the expected state since it was read.
func (r *Repository) exactlyOne(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't "+op, zap.Error(err))
		return err
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrConcurrentUpdate
	}
	return nil
}

// ActivateMilestone moves m from unpaid to active once the escrow charge for
// exactly its cost has succeeded.
func (r *Repository) ActivateMilestone(ctx context.Context, c *domain.Contract, m *domain.Milestone, events []*domain.OutboxEvent) error {
	return r.transition(ctx, c, events, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, `
			UPDATE milestones
			SET status = $1, escrow_intent_id = $2, funded_at = $3, updated_at = NOW()
			WHERE id = $4 AND contract_id = $5 AND status = $6 AND cost = $7
		`, domain.MilestoneActive, m.EscrowIntentID, m.FundedAt, m.ID, c.ID, domain.MilestoneUnpaid, m.Cost)
		return transitioned(tag, err, m.ID, domain.MilestoneUnpaid)
	})
}

func (r *Repository) SubmitMilestone(ctx context.Context, c *domain.Contract, m *domain.Milestone, s *domain.Submission, events []*domain.OutboxEvent) error {
	return r.transition(ctx, c, events, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, `
			UPDATE milestones SET status = $1, updated_at = NOW()
			WHERE id = $2 AND contract_id = $3 AND status = $4
		`, domain.MilestoneReview, m.ID, c.ID, domain.MilestoneActive)
		if err := transitioned(tag, err, m.ID, domain.MilestoneActive); err != nil {
			return err
		}

		err = r.db.QueryRow(ctx, `
			INSERT INTO milestone_submissions (milestone_id, description, files, submitted_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, m.ID, s.Description, s.Files, s.SubmittedAt).Scan(&s.ID)
		if err != nil {
			zap.L().Error("can't save submission", zap.Int("milestoneID", m.ID), zap.Error(err))
			return err
		}
		return nil
	})
}

// AcceptMilestone records the released payment together with the transition.
// The unique milestone_id on payments makes a second payout row impossible.
func (r *Repository) AcceptMilestone(ctx context.Context, c *domain.Contract, m *domain.Milestone, p *domain.Payment, events []*domain.OutboxEvent) error {
	return r.transition(ctx, c, events, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, `
			UPDATE milestones SET status = $1, updated_at = NOW()
			WHERE id = $2 AND contract_id = $3 AND status = $4
		`, domain.MilestoneAccepted, m.ID, c.ID, domain.MilestoneReview)
		if err := transitioned(tag, err, m.ID, domain.MilestoneReview); err != nil {
			return err
		}

		err = r.db.QueryRow(ctx, `
			INSERT INTO payments (contract_id, milestone_id, freelancer_id, gross, platform_fee, net, currency, intent_id, transfer_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at
		`, p.ContractID, p.MilestoneID, p.FreelancerID, p.Gross, p.PlatformFee, p.Net, p.Currency, p.IntentID, p.TransferID,
		).Scan(&p.ID, &p.CreatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return fmt.Errorf("%w: milestone %d already paid out", domain.ErrInvalidTransition, m.ID)
			}
			zap.L().Error("can't save payment", zap.Int("milestoneID", m.ID), zap.Error(err))
			return err
		}
		return nil
	})
}

// RejectMilestone sends m back to active and marks its latest open submission
// as rejected. Earlier submissions stay untouched.
func (r *Repository) RejectMilestone(ctx context.Context, c *domain.Contract, m *domain.Milestone, reason string, at time.Time, events []*domain.OutboxEvent) error {
	return r.transition(ctx, c, events, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, `
			UPDATE milestones SET status = $1, updated_at = NOW()
			WHERE id = $2 AND contract_id = $3 AND status = $4
		`, domain.MilestoneActive, m.ID, c.ID, domain.MilestoneReview)
		if err := transitioned(tag, err, m.ID, domain.MilestoneReview); err != nil {
			return err
		}

		_, err = r.db.Exec(ctx, `
			UPDATE milestone_submissions SET rejection_reason = $1, rejected_at = $2
			WHERE id = (
				SELECT id FROM milestone_submissions
				WHERE milestone_id = $3 AND rejected_at IS NULL
				ORDER BY submitted_at DESC
				LIMIT 1
			)
		`, reason, at, m.ID)
		if err != nil {
			zap.L().Error("can't mark submission rejected", zap.Int("milestoneID", m.ID), zap.Error(err))
			return err
		}
		return nil
	})
}

func transitioned(tag pgconn.CommandTag, err error, milestoneID int, from domain.MilestoneStatus) error {
	if err != nil {
		zap.L().Error("can't update milestone status", zap.Int("milestoneID", milestoneID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("%w: milestone %d is no longer %s", domain.ErrInvalidTransition, milestoneID, from)
	}
	return nil
}

// transition runs apply with the contract row locked, so concurrent
// transitions on sibling milestones are serialized and the last one sees
// every committed milestone status.
func (r *Repository) transition(ctx context.Context, c *domain.Contract, events []*domain.OutboxEvent, apply func(ctx context.Context) error) error {
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		stored, err := r.lockContract(ctx, c.ID)
		if err != nil {
			return err
		}
		if err := apply(ctx); err != nil {
			return err
		}
		return r.finishTransition(ctx, c, stored, events)
	})
}

func (r *Repository) lockContract(ctx context.Context, id int) (domain.ContractStatus, error) {
	var status domain.ContractStatus
	err := r.db.QueryRow(ctx, `SELECT status FROM contracts WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrContractNotFound
	}
	if err != nil {
		zap.L().Error("can't lock contract", zap.Int("contractID", id), zap.Error(err))
		return "", err
	}
	return status, nil
}

// milestoneStatuses reads the committed statuses under the contract lock and
// refreshes the copies held in c.
func (r *Repository) milestoneStatuses(ctx context.Context, c *domain.Contract) ([]domain.Milestone, error) {
	rows, err := r.db.Query(ctx, `SELECT id, status FROM milestones WHERE contract_id = $1`, c.ID)
	if err != nil {
		zap.L().Error("can't read milestone statuses", zap.Int("contractID", c.ID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var milestones []domain.Milestone
	for rows.Next() {
		var m domain.Milestone
		if err := rows.Scan(&m.ID, &m.Status); err != nil {
			zap.L().Error("can't scan milestone status", zap.Error(err))
			return nil, err
		}
		if held, err := c.Milestone(m.ID); err == nil {
			held.Status = m.Status
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

// finishTransition derives the contract status from the stored milestones,
// bumps the version and enqueues the events in the same transaction.
// contract_completed is added here, exactly once, by the transition that
// completes the contract.
func (r *Repository) finishTransition(ctx context.Context, c *domain.Contract, stored domain.ContractStatus, events []*domain.OutboxEvent) error {
	milestones, err := r.milestoneStatuses(ctx, c)
	if err != nil {
		return err
	}
	c.Status = domain.DeriveContractStatus(milestones)

	err = r.db.QueryRow(ctx, `
		UPDATE contracts SET status = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2
		RETURNING version, updated_at
	`, c.Status, c.ID).Scan(&c.Version, &c.UpdatedAt)
	if err != nil {
		zap.L().Error("can't update contract status", zap.Int("contractID", c.ID), zap.Error(err))
		return err
	}

	if c.Status == domain.ContractCompleted && stored != domain.ContractCompleted {
		completed, err := domain.NewEvent(domain.EventContractCompleted, c, 0, occurredAt(events))
		if err != nil {
			zap.L().Error("can't build event", zap.String("type", string(domain.EventContractCompleted)), zap.Error(err))
			return err
		}
		events = append(events, completed)
	}

	for _, e := range events {
		_, err := r.db.Exec(ctx, `
			INSERT INTO outbox_events (event_id, aggregate_id, event_type, payload, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, e.EventID, e.AggregateID, e.Type, e.Payload, e.Status, e.CreatedAt)
		if err != nil {
			zap.L().Error("can't enqueue event", zap.String("type", string(e.Type)), zap.Error(err))
			return err
		}
	}
	return nil
}

func occurredAt(events []*domain.OutboxEvent) time.Time {
	if len(events) > 0 {
		return events[len(events)-1].CreatedAt
	}
	return time.Now().UTC()
}
