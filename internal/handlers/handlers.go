package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/GlebRadaev/gigmarket/docs"
	authhandlers "github.com/GlebRadaev/gigmarket/internal/handlers/auth"
	contracthandlers "github.com/GlebRadaev/gigmarket/internal/handlers/contracts"
	milestonehandlers "github.com/GlebRadaev/gigmarket/internal/handlers/milestones"
	"github.com/GlebRadaev/gigmarket/internal/metrics"
	"github.com/GlebRadaev/gigmarket/internal/service"
	"github.com/GlebRadaev/gigmarket/pkg/auth"
)

//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=handlers

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type ContractHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Edit(w http.ResponseWriter, r *http.Request)
	Payments(w http.ResponseWriter, r *http.Request)
	Schema(w http.ResponseWriter, r *http.Request)
}

type MilestoneHandler interface {
	Pay(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
	Accept(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler      AuthHandler
	ContractHandler  ContractHandler
	MilestoneHandler MilestoneHandler
}

func New(s *service.Services) *Handlers {
	return &Handlers{
		AuthHandler:      authhandlers.New(s.AuthService),
		ContractHandler:  contracthandlers.New(s.ContractService),
		MilestoneHandler: milestonehandlers.New(s.MilestoneService),
	}
}

func (h *Handlers) InitRoutes(r chi.Router, jwtService auth.JWTServiceInterface, corsOrigins []string) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		cors.Handler(cors.Options{
			AllowedOrigins:   corsOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Authorization"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		metrics.Middleware,
	)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Route("/api/user", func(r chi.Router) {
		r.Post("/register", h.AuthHandler.Register)
		r.Post("/login", h.AuthHandler.Login)
	})
	r.Get("/api/schema/{name}", h.ContractHandler.Schema)

	r.Route("/api/contracts", func(r chi.Router) {
		r.Use(auth.AuthMiddleware(jwtService))
		r.Post("/", h.ContractHandler.Create)
		r.Get("/", h.ContractHandler.List)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.ContractHandler.Get)
			r.Put("/", h.ContractHandler.Edit)
			r.Get("/payments", h.ContractHandler.Payments)
			r.Route("/milestones/{mid}", func(r chi.Router) {
				r.Post("/pay", h.MilestoneHandler.Pay)
				r.Post("/submit", h.MilestoneHandler.Submit)
				r.Post("/accept", h.MilestoneHandler.Accept)
				r.Post("/reject", h.MilestoneHandler.Reject)
			})
		})
	})

	return r
}
