package contracts

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GlebRadaev/gigmarket/internal/domain"
	"github.com/GlebRadaev/gigmarket/internal/dto"
	"github.com/GlebRadaev/gigmarket/pkg/auth"
	"github.com/GlebRadaev/gigmarket/pkg/utils"
	"github.com/GlebRadaev/gigmarket/pkg/validate"
)

//go:generate mockgen -source=contracts.go -destination=mock_contracts.go -package=contracts

type Service interface {
	Create(ctx context.Context, clientID int, c *domain.Contract) (*domain.Contract, error)
	Edit(ctx context.Context, clientID, contractID int, changes *domain.Contract) (*domain.Contract, error)
	Get(ctx context.Context, userID, contractID int) (*domain.Contract, error)
	List(ctx context.Context, userID int) ([]domain.Contract, error)
	Payments(ctx context.Context, userID, contractID int) ([]domain.Payment, error)
}

type ContractHandler struct {
	contractService Service
	validator       *validate.Validator
	schemas         map[string]validate.Schema
}

func New(contractService Service) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		validator:       validate.New(dto.CreateContractRequestDTO{}, dto.EditContractRequestDTO{}),
		schemas: map[string]validate.Schema{
			"contract":   validate.Describe("contract", dto.CreateContractRequestDTO{}, validate.BudgetRule),
			"submission": validate.Describe("submission", dto.SubmitMilestoneRequestDTO{}),
			"rejection":  validate.Describe("rejection", dto.RejectMilestoneRequestDTO{}),
			"payment":    validate.Describe("payment", dto.PayMilestoneRequestDTO{}),
		},
	}
}

// Create godoc
//
//	@Summary		Create a contract
//	@Description	Client creates a contract with a freelancer. Milestone costs must add up to the budget.
//	@Tags			Contracts
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.CreateContractRequestDTO	true	"Contract"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.ContractResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		403	{object}	utils.Response	"Only clients can create contracts"
//	@Failure		404	{object}	utils.Response	"Freelancer not found"
//	@Failure		409	{object}	utils.Response	"Contract for this bid already exists"
//	@Failure		422	{object}	utils.Response	"Validation error"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/contracts [post]
func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var req dto.CreateContractRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	contract, err := h.contractService.Create(r.Context(), userID, req.ToContract())
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewContractResponse(contract))
}

// List godoc
//
//	@Summary		List contracts
//	@Description	Contracts where the caller is the client or the freelancer
//	@Tags			Contracts
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		dto.ContractResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/contracts [get]
func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	contracts, err := h.contractService.List(r.Context(), userID)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewContractListResponse(contracts))
}

// Get godoc
//
//	@Summary		Get a contract
//	@Tags			Contracts
//	@Produce		json
//	@Param			id	path	int	true	"Contract ID"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.ContractResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid contract id"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		403	{object}	utils.Response	"Not a party to the contract"
//	@Failure		404	{object}	utils.Response	"Contract not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/contracts/{id} [get]
func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	contractID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	contract, err := h.contractService.Get(r.Context(), userID, contractID)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewContractResponse(contract))
}

// Edit godoc
//
//	@Summary		Edit a contract
//	@Description	Replace title, budget and the milestone list. Milestones past unpaid keep their terms.
//	@Tags			Contracts
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int							true	"Contract ID"
//	@Param			request	body	dto.EditContractRequestDTO	true	"Contract changes"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.ContractResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		403	{object}	utils.Response	"Only the client can edit"
//	@Failure		404	{object}	utils.Response	"Contract not found"
//	@Failure		409	{object}	utils.Response	"Contract was modified concurrently"
//	@Failure		422	{object}	utils.Response	"Validation error"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/contracts/{id} [put]
func (h *ContractHandler) Edit(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	contractID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.EditContractRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	contract, err := h.contractService.Edit(r.Context(), userID, contractID, req.ToContract())
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewContractResponse(contract))
}

// Payments godoc
//
//	@Summary		Released payments of a contract
//	@Tags			Contracts
//	@Produce		json
//	@Param			id	path	int	true	"Contract ID"
//	@Security		BearerAuth
//	@Success		200	{array}		dto.PaymentResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid contract id"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		403	{object}	utils.Response	"Not a party to the contract"
//	@Failure		404	{object}	utils.Response	"Contract not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/contracts/{id}/payments [get]
func (h *ContractHandler) Payments(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	contractID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	payments, err := h.contractService.Payments(r.Context(), userID, contractID)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewPaymentsResponse(payments))
}

// Schema godoc
//
//	@Summary		Validation schema of a form
//	@Description	Field constraints the server enforces for contract, submission, rejection and payment payloads
//	@Tags			Schema
//	@Produce		json
//	@Param			name	path		string	true	"Schema name"	Enums(contract, submission, rejection, payment)
//	@Success		200		{object}	validate.Schema
//	@Failure		404		{object}	utils.Response	"Unknown schema"
//	@Router			/api/schema/{name} [get]
func (h *ContractHandler) Schema(w http.ResponseWriter, r *http.Request) {
	schema, ok := h.schemas[chi.URLParam(r, "name")]
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "Unknown schema")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, schema)
}

func caller(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, _, ok := auth.UserFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
	}
	return userID, ok
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil || id <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid "+param)
		return 0, false
	}
	return id, true
}
