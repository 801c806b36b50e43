package milestones

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

//go:generate mockgen -source=milestones.go -destination=mock_milestones.go -package=milestones

type Service interface {
	Pay(ctx context.Context, userID, contractID, milestoneID int, paymentMethod string) (*domain.Contract, error)
	Submit(ctx context.Context, userID, contractID, milestoneID int, description string, files []string) (*domain.Contract, error)
	Accept(ctx context.Context, userID, contractID, milestoneID int) (*domain.Contract, error)
	Reject(ctx context.Context, userID, contractID, milestoneID int, reason string) (*domain.Contract, error)
}

type MilestoneHandler struct {
	milestoneService Service
	validator        *validate.Validator
}

func New(milestoneService Service) *MilestoneHandler {
	return &MilestoneHandler{
		milestoneService: milestoneService,
		validator:        validate.New(),
	}
}

// target holds the caller and the milestone addressed by the route.
type target struct {
	userID      int
	contractID  int
	milestoneID int
}

// Pay godoc
//
//	@Summary		Fund a milestone
//	@Description	Client pays the milestone cost into escrow. The milestone becomes active once the gateway confirms the charge.
//	@Tags			Milestones
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int							true	"Contract ID"
//	@Param			mid		path	int							true	"Milestone ID"
//	@Param			request	body	dto.PayMilestoneRequestDTO	true	"Payment method"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.ContractResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		403	{object}	utils.Response	"Only the client can pay"
//	@Failure		404	{object}	utils.Response	"Contract or milestone not found"
//	@Failure		409	{object}	utils.Response	"Milestone is not unpaid or payment in progress"
//	@Failure		422	{object}	utils.Response	"Validation error"
//	@Failure		502	{object}	utils.Response	"Payment failed"
//	@Router			/api/contracts/{id}/milestones/{mid}/pay [post]
func (h *MilestoneHandler) Pay(w http.ResponseWriter, r *http.Request) {
	t, ok := h.target(w, r)
	if !ok {
		return
	}
	var req dto.PayMilestoneRequestDTO
	if !h.decode(w, r, &req) {
		return
	}
	contract, err := h.milestoneService.Pay(r.Context(), t.userID, t.contractID, t.milestoneID, req.PaymentMethod)
	h.respond(w, contract, err)
}

// Submit godoc
//
//	@Summary		Submit work for a milestone
//	@Tags			Milestones
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int								true	"Contract ID"
//	@Param			mid		path	int								true	"Milestone ID"
//	@Param			request	body	dto.SubmitMilestoneRequestDTO	true	"Submission"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.ContractResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		403	{object}	utils.Response	"Only the freelancer can submit"
//	@Failure		404	{object}	utils.Response	"Contract or milestone not found"
//	@Failure		409	{object}	utils.Response	"Milestone is not active"
//	@Failure		422	{object}	utils.Response	"Validation error"
//	@Router			/api/contracts/{id}/milestones/{mid}/submit [post]
func (h *MilestoneHandler) Submit(w http.ResponseWriter, r *http.Request) {
	t, ok := h.target(w, r)
	if !ok {
		return
	}
	var req dto.SubmitMilestoneRequestDTO
	if !h.decode(w, r, &req) {
		return
	}
	contract, err := h.milestoneService.Submit(r.Context(), t.userID, t.contractID, t.milestoneID, req.Description, req.Files)
	h.respond(w, contract, err)
}

// Accept godoc
//
//	@Summary		Accept a milestone
//	@Description	Client accepts the submitted work. The net amount is released to the freelancer.
//	@Tags			Milestones
//	@Produce		json
//	@Param			id	path	int	true	"Contract ID"
//	@Param			mid	path	int	true	"Milestone ID"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.ContractResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		403	{object}	utils.Response	"Only the client can accept"
//	@Failure		404	{object}	utils.Response	"Contract or milestone not found"
//	@Failure		409	{object}	utils.Response	"Milestone is not in review"
//	@Failure		502	{object}	utils.Response	"Payment gateway error"
//	@Router			/api/contracts/{id}/milestones/{mid}/accept [post]
func (h *MilestoneHandler) Accept(w http.ResponseWriter, r *http.Request) {
	t, ok := h.target(w, r)
	if !ok {
		return
	}
	contract, err := h.milestoneService.Accept(r.Context(), t.userID, t.contractID, t.milestoneID)
	h.respond(w, contract, err)
}

// Reject godoc
//
//	@Summary		Reject a milestone submission
//	@Tags			Milestones
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int								true	"Contract ID"
//	@Param			mid		path	int								true	"Milestone ID"
//	@Param			request	body	dto.RejectMilestoneRequestDTO	true	"Rejection reason"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.ContractResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		403	{object}	utils.Response	"Only the client can reject"
//	@Failure		404	{object}	utils.Response	"Contract or milestone not found"
//	@Failure		409	{object}	utils.Response	"Milestone is not in review"
//	@Failure		422	{object}	utils.Response	"Validation error"
//	@Router			/api/contracts/{id}/milestones/{mid}/reject [post]
func (h *MilestoneHandler) Reject(w http.ResponseWriter, r *http.Request) {
	t, ok := h.target(w, r)
	if !ok {
		return
	}
	var req dto.RejectMilestoneRequestDTO
	if !h.decode(w, r, &req) {
		return
	}
	contract, err := h.milestoneService.Reject(r.Context(), t.userID, t.contractID, t.milestoneID, req.Reason)
	h.respond(w, contract, err)
}

func (h *MilestoneHandler) target(w http.ResponseWriter, r *http.Request) (target, bool) {
	userID, _, ok := auth.UserFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return target{}, false
	}
	contractID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || contractID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid id")
		return target{}, false
	}
	milestoneID, err := strconv.Atoi(chi.URLParam(r, "mid"))
	if err != nil || milestoneID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid mid")
		return target{}, false
	}
	return target{userID: userID, contractID: contractID, milestoneID: milestoneID}, true
}

func (h *MilestoneHandler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		utils.RespondWithServiceError(w, err)
		return false
	}
	return true
}

func (h *MilestoneHandler) respond(w http.ResponseWriter, contract *domain.Contract, err error) {
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewContractResponse(contract))
}
