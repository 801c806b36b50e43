package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/gigmarket/internal/config"
	"github.com/GlebRadaev/gigmarket/internal/domain"
	"github.com/GlebRadaev/gigmarket/internal/metrics"
	"github.com/GlebRadaev/gigmarket/pkg/rabbitmq"
)

//go:generate mockgen -source=dispatcher.go -destination=mock_dispatcher.go -package=outbox

const (
	batchSize   = 100
	workers     = 10
	maxAttempts = 10
)

type Repo interface {
	FindPending(ctx context.Context, limit uint32) ([]domain.OutboxEvent, error)
	MarkSent(ctx context.Context, id int) error
	MarkFailed(ctx context.Context, id int, maxAttempts int) error
}

type Publisher interface {
	Publish(ctx context.Context, msg rabbitmq.Message) error
}

// Dispatcher delivers events written by milestone transitions to the broker.
type Dispatcher struct {
	repo       Repo
	publisher  Publisher
	workerPool WorkerPoolI
	limit      uint32
	interval   time.Duration
	// contract ids with a publishing task queued or running
	inFlight   sync.Map
}

func New(cfg *config.Config, repo Repo, publisher Publisher) *Dispatcher {
	return &Dispatcher{
		repo:       repo,
		publisher:  publisher,
		workerPool: NewWorkerPool(workers),
		limit:      batchSize,
		interval:   cfg.OutboxInterval,
	}
}

// Run polls until ctx is done and returns once the worker pool is drained.
func (d *Dispatcher) Run(ctx context.Context) {
	zap.L().Info("Outbox dispatcher started", zap.Duration("interval", d.interval))
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Context canceled, stopping outbox dispatcher")
			d.workerPool.Close()
			return
		case <-ticker.C:
			d.dispatchPending(ctx)
		}
	}
}

func (d *Dispatcher) dispatchPending(ctx context.Context) {
	events, err := d.repo.FindPending(ctx, d.limit)
	if err != nil {
		zap.L().Error("Failed to fetch pending events", zap.Error(err))
		return
	}

	var g errgroup.Group
	for _, batch := range byContract(events) {
		batch := batch
		contractID := batch[0].AggregateID

		if _, loaded := d.inFlight.LoadOrStore(contractID, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			err := d.workerPool.AddTask(ctx, func() error {
				defer d.inFlight.Delete(contractID)
				return d.publishInOrder(ctx, batch)
			})
			if err != nil {
				d.inFlight.Delete(contractID)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("Error dispatching events", zap.Error(err))
	}
}

// byContract groups events per contract, keeping the fetch order inside each group.
func byContract(events []domain.OutboxEvent) [][]domain.OutboxEvent {
	index := make(map[int]int)
	var groups [][]domain.OutboxEvent
	for _, event := range events {
		i, ok := index[event.AggregateID]
		if !ok {
			i = len(groups)
			index[event.AggregateID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], event)
	}
	return groups
}

// publishInOrder stops at the first failure; later events of the contract
// stay pending until the failed one goes out.
func (d *Dispatcher) publishInOrder(ctx context.Context, events []domain.OutboxEvent) error {
	for _, event := range events {
		if err := d.publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) publish(ctx context.Context, event domain.OutboxEvent) error {
	msg := rabbitmq.Message{
		ID:         event.EventID,
		RoutingKey: event.Type.RoutingKey(),
		Body:       event.Payload,
		Timestamp:  event.CreatedAt,
	}

	if err := d.publisher.Publish(ctx, msg); err != nil {
		metrics.IncOutboxEvent(string(event.Type), "failed")
		if markErr := d.repo.MarkFailed(ctx, event.ID, maxAttempts); markErr != nil {
			zap.L().Error("Failed to record publish attempt", zap.Int("id", event.ID), zap.Error(markErr))
		}
		return fmt.Errorf("publish event %s (attempt %d): %w", event.EventID, event.Attempts+1, err)
	}

	if err := d.repo.MarkSent(ctx, event.ID); err != nil {
		return fmt.Errorf("mark event %s sent: %w", event.EventID, err)
	}
	metrics.IncOutboxEvent(string(event.Type), "sent")
	zap.L().Debug("Event published", zap.String("eventID", event.EventID), zap.String("routingKey", msg.RoutingKey))
	return nil
}
