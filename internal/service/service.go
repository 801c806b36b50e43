package service

import (
	"github.com/GlebRadaev/gigmarket/internal/config"
	"github.com/GlebRadaev/gigmarket/internal/handlers/auth"
	"github.com/GlebRadaev/gigmarket/internal/handlers/contracts"
	"github.com/GlebRadaev/gigmarket/internal/handlers/milestones"

	pkgauth "github.com/GlebRadaev/gigmarket/pkg/auth"

	"github.com/GlebRadaev/gigmarket/internal/repo"
	authservice "github.com/GlebRadaev/gigmarket/internal/service/authservice"
	contractservice "github.com/GlebRadaev/gigmarket/internal/service/contractservice"
	milestoneservice "github.com/GlebRadaev/gigmarket/internal/service/milestoneservice"
)

type Services struct {
	AuthService      auth.Service
	ContractService  contracts.Service
	MilestoneService milestones.Service
}

func New(cfg *config.Config, repo *repo.Repositories, gateway milestoneservice.Gateway, locker milestoneservice.Locker, jwtService pkgauth.JWTServiceInterface) *Services {
	authService := authservice.New(repo.UserRepo, pkgauth.NewHashService(0), jwtService, cfg.TokenTTL)
	contractService := contractservice.New(repo.ContractRepo, repo.UserRepo, repo.PaymentRepo)
	milestoneService := milestoneservice.New(repo.ContractRepo, gateway, locker, cfg)

	return &Services{
		AuthService:      authService,
		ContractService:  contractService,
		MilestoneService: milestoneService,
	}
}
