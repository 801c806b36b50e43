package repo

import (
	"github.com/GlebRadaev/gigmarket/internal/outbox"
	"github.com/GlebRadaev/gigmarket/internal/pg"
	contractrepo "github.com/GlebRadaev/gigmarket/internal/repo/contract-repo"
	outboxrepo "github.com/GlebRadaev/gigmarket/internal/repo/outbox-repo"
	paymentrepo "github.com/GlebRadaev/gigmarket/internal/repo/payment-repo"
	userrepo "github.com/GlebRadaev/gigmarket/internal/repo/user-repo"
	"github.com/GlebRadaev/gigmarket/internal/service/authservice"
	"github.com/GlebRadaev/gigmarket/internal/service/contractservice"
	"github.com/GlebRadaev/gigmarket/internal/service/milestoneservice"
)

// ContractRepo serves both the contract and the milestone services.
type ContractRepo interface {
	contractservice.Repo
	milestoneservice.Repo
}

type Repositories struct {
	UserRepo     authservice.Repo
	ContractRepo ContractRepo
	PaymentRepo  contractservice.PaymentRepo
	OutboxRepo   outbox.Repo
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	userRepo := userrepo.New(conn)
	contractRepo := contractrepo.New(conn, txManager)
	paymentRepo := paymentrepo.New(conn)
	outboxRepo := outboxrepo.New(conn)

	return &Repositories{
		UserRepo:     userRepo,
		ContractRepo: contractRepo,
		PaymentRepo:  paymentRepo,
		OutboxRepo:   outboxRepo,
	}
}
