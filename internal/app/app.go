package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gigmarket/internal/config"
	"github.com/GlebRadaev/gigmarket/internal/handlers"
	"github.com/GlebRadaev/gigmarket/internal/outbox"
	"github.com/GlebRadaev/gigmarket/internal/pg"
	"github.com/GlebRadaev/gigmarket/internal/repo"
	"github.com/GlebRadaev/gigmarket/internal/service"
	"github.com/GlebRadaev/gigmarket/pkg/auth"
	"github.com/GlebRadaev/gigmarket/pkg/clients"
	"github.com/GlebRadaev/gigmarket/pkg/gateway"
	"github.com/GlebRadaev/gigmarket/pkg/lock"
	"github.com/GlebRadaev/gigmarket/pkg/logger"
	"github.com/GlebRadaev/gigmarket/pkg/rabbitmq"
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type broker interface {
	outbox.Publisher
	Close() error
}

type Application struct {
	cfg    *config.Config
	api    *handlers.Handlers
	srv    *service.Services
	repo   *repo.Repositories
	jwt    auth.JWTServiceInterface
	outbox *outbox.Dispatcher
	broker broker
	redis  *redis.Client

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()

	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}
	txManager := pg.NewTXManager(pool)

	rdb, err := getRedis(ctx, cfg)
	if err != nil {
		zap.L().Error("redis ping failed: ", zap.Error(err))
		return fmt.Errorf("can't connect to redis: %w", err)
	}

	b, err := getBroker(cfg)
	if err != nil {
		zap.L().Error("rabbitmq dial failed: ", zap.Error(err))
		return fmt.Errorf("can't connect to rabbitmq: %w", err)
	}

	conn := pg.New(pool)
	a.cfg = cfg
	a.redis = rdb
	a.broker = b
	a.jwt = auth.NewJWTService(cfg.JWTSecret)
	a.repo = repo.New(conn, txManager)
	a.srv = service.New(cfg, a.repo, gateway.New(cfg, clients.NewHTTPClient()), lock.New(rdb), a.jwt)
	a.api = handlers.New(a.srv)
	a.outbox = outbox.New(cfg, a.repo.OutboxRepo, b)

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	a.startOutbox(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		return nil, err
	}
	return dbpool, nil
}

func getRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := lock.NewRedisClient(cfg)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// getBroker falls back to logging events when RABBITMQ_URL is not set.
func getBroker(cfg *config.Config) (broker, error) {
	if cfg.RabbitMQURL == "" {
		zap.L().Warn("RABBITMQ_URL is empty, events will only be logged")
		return rabbitmq.Fallback{}, nil
	}
	producer, err := rabbitmq.NewProducer(cfg.RabbitMQURL, cfg.EventsExchange)
	if err != nil {
		return nil, err
	}
	return producer, nil
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router, a.jwt, a.cfg.CORSOrigins)
	server := http.Server{
		Addr:    a.cfg.Address,
		Handler: router,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(sCtx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) startOutbox(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.outbox.Run(ctx)
		a.closeConnections()
	}()
}

func (a *Application) closeConnections() {
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			zap.L().Error("can't close rabbitmq connection", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			zap.L().Error("can't close redis client", zap.Error(err))
		}
	}
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	return appErr
}
