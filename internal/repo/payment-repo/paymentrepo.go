package paymentrepo

import (
	"context"

	"go.uber.org/zap"

	"github.com/GlebRadaev/gigmarket/internal/domain"
	"github.com/GlebRadaev/gigmarket/internal/pg"
)

// Repository reads the payment ledger. Rows are written only by the accept
// transaction in the contract repository.
type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) FindByContractID(ctx context.Context, contractID int) ([]domain.Payment, error) {
	query := `
        SELECT id, contract_id, milestone_id, freelancer_id, gross, platform_fee, net, currency, intent_id, transfer_id, created_at
        FROM payments
        WHERE contract_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, contractID)
	if err != nil {
		zap.L().Error("failed to fetch payments", zap.Int("contractID", contractID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		err := rows.Scan(&p.ID, &p.ContractID, &p.MilestoneID, &p.FreelancerID, &p.Gross, &p.PlatformFee, &p.Net,
			&p.Currency, &p.IntentID, &p.TransferID, &p.CreatedAt)
		if err != nil {
			zap.L().Error("failed to scan payment row", zap.Error(err))
			return nil, err
		}
		payments = append(payments, p)
	}

	return payments, rows.Err()
}
