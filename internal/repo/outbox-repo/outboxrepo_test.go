package outboxrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/gigmarket/internal/domain"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)

	return New(mockDB), mockDB
}

func TestRepository_FindPending(t *testing.T) {
	now := time.Now()
	columns := []string{"id", "event_id", "aggregate_id", "event_type", "payload", "status", "attempts", "created_at", "sent_at"}

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		expectErr bool
		count     int
	}{
		{
			name: "Pending events",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM outbox_events WHERE status = $1 ORDER BY id ASC LIMIT $2")).
					WithArgs(domain.OutboxPending, 100).
					WillReturnRows(pgxmock.NewRows(columns).
						AddRow(1, "e1", 3, domain.EventMilestoneActivated, []byte(`{}`), domain.OutboxPending, 0, now, (*time.Time)(nil)).
						AddRow(2, "e2", 3, domain.EventContractCompleted, []byte(`{}`), domain.OutboxPending, 2, now, (*time.Time)(nil)))
			},
			count: 2,
		},
		{
			name: "Database error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM outbox_events")).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := NewMock(t)
			tt.mockSetup(mock)

			events, err := repo.FindPending(context.Background(), 100)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Len(t, events, tt.count)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_MarkSent(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events SET status = $1, sent_at = NOW() WHERE id = $2")).
		WithArgs(domain.OutboxSent, 5).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.MarkSent(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_MarkFailed(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectExec(regexp.QuoteMeta("SET attempts = attempts + 1")).
		WithArgs(10, domain.OutboxFailed, 5).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta("SET attempts = attempts + 1")).
		WithArgs(10, domain.OutboxFailed, 6).
		WillReturnError(errors.New("database error"))

	assert.NoError(t, repo.MarkFailed(context.Background(), 5, 10))
	assert.Error(t, repo.MarkFailed(context.Background(), 6, 10))
	assert.NoError(t, mock.ExpectationsWereMet())
}
