package outboxrepo

import (
	"context"

	"go.uber.org/zap"

	"github.com/GlebRadaev/gigmarket/internal/domain"
	"github.com/GlebRadaev/gigmarket/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) FindPending(ctx context.Context, limit uint32) ([]domain.OutboxEvent, error) {
	query := `
        SELECT id, event_id, aggregate_id, event_type, payload, status, attempts, created_at, sent_at
        FROM outbox_events
        WHERE status = $1
        ORDER BY id ASC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, domain.OutboxPending, int(limit))
	if err != nil {
		zap.L().Error("failed to fetch pending events", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var events []domain.OutboxEvent
	for rows.Next() {
		var e domain.OutboxEvent
		err := rows.Scan(&e.ID, &e.EventID, &e.AggregateID, &e.Type, &e.Payload, &e.Status, &e.Attempts, &e.CreatedAt, &e.SentAt)
		if err != nil {
			zap.L().Error("failed to scan event row", zap.Error(err))
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *Repository) MarkSent(ctx context.Context, id int) error {
	query := `
        UPDATE outbox_events
        SET status = $1, sent_at = NOW()
        WHERE id = $2
    `
	if _, err := r.db.Exec(ctx, query, domain.OutboxSent, id); err != nil {
		zap.L().Error("failed to mark event sent", zap.Int("id", id), zap.Error(err))
		return err
	}
	return nil
}

// MarkFailed counts a failed delivery. Once maxAttempts is reached the event
// leaves the pending queue for good.
func (r *Repository) MarkFailed(ctx context.Context, id int, maxAttempts int) error {
	query := `
        UPDATE outbox_events
        SET attempts = attempts + 1,
            status = CASE WHEN attempts + 1 >= $1 THEN $2 ELSE status END
        WHERE id = $3
    `
	if _, err := r.db.Exec(ctx, query, maxAttempts, domain.OutboxFailed, id); err != nil {
		zap.L().Error("failed to mark event failed", zap.Int("id", id), zap.Error(err))
		return err
	}
	return nil
}
