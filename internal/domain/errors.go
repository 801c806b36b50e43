package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidTransition  = errors.New("invalid milestone transition")
	ErrContractNotFound   = errors.New("contract not found")
	ErrMilestoneNotFound  = errors.New("milestone not found")
	ErrForbidden          = errors.New("forbidden")
	ErrConcurrentUpdate   = errors.New("contract was modified concurrently")
	ErrPaymentInProgress  = errors.New("payment for milestone already in progress")
	ErrFreelancerNotFound = errors.New("freelancer not found")
	ErrBidAlreadyUsed     = errors.New("contract for this bid already exists")
	ErrRefundFailed       = errors.New("charge captured but could not be recorded or refunded")
)

type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

type TransitionError struct {
	MilestoneID int
	Action      Action
	From        MilestoneStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s milestone %d in status %q", e.Action, e.MilestoneID, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
