package utils

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/GlebRadaev/gigmarket/internal/domain"
	"github.com/GlebRadaev/gigmarket/pkg/gateway"
)

// RespondWithServiceError maps the domain and gateway error taxonomy to a status code.
func RespondWithServiceError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	var gatewayErr *gateway.Error

	switch {
	case errors.Is(err, domain.ErrRefundFailed):
		zap.L().Error("charge left without milestone", zap.Error(err))
		RespondWithError(w, http.StatusInternalServerError, "Payment captured but not recorded, refund pending")
	case errors.As(err, &validationErr):
		RespondWithFieldError(w, http.StatusUnprocessableEntity, validationErr.Field, validationErr.Error())
	case errors.Is(err, domain.ErrValidation):
		RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrContractNotFound),
		errors.Is(err, domain.ErrMilestoneNotFound),
		errors.Is(err, domain.ErrFreelancerNotFound):
		RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		RespondWithError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrConcurrentUpdate),
		errors.Is(err, domain.ErrPaymentInProgress),
		errors.Is(err, domain.ErrBidAlreadyUsed):
		RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, gateway.ErrPaymentNotSucceeded):
		RespondWithError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &gatewayErr):
		RespondWithError(w, http.StatusBadGateway, "Payment gateway error: "+gatewayErr.Message)
	case errors.Is(err, gateway.ErrGateway):
		RespondWithError(w, http.StatusBadGateway, "Payment gateway unavailable")
	default:
		zap.L().Error("unhandled service error", zap.Error(err))
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
