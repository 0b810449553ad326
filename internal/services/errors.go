package services

import (
	stderrors "errors"
	"fmt"

	"github.com/abrezinsky/hypervision/internal/errors"
	"github.com/abrezinsky/hypervision/internal/registry"
	"github.com/abrezinsky/hypervision/internal/repository"
)

// Service errors
var (
	ErrInvalidBaseURL = &ServiceError{Message: "base URL must start with http:// or https://"}
	ErrBaseURLNotSet  = &ServiceError{Message: "base URL is not configured"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// selectionError classifies registry and journal failures. The registry
// sentinel stays in the chain so callers can still match it with errors.Is.
func selectionError(err error, optionID string) error {
	var vErr *registry.ValidationError
	switch {
	case err == nil:
		return nil
	case stderrors.As(err, &vErr):
		return errors.Wrap(err, errors.ErrValidation, vErr.Error())
	case stderrors.Is(err, registry.ErrNoSession):
		return errors.Wrap(err, errors.ErrUnauthorized, "please enter your name to continue")
	case stderrors.Is(err, registry.ErrUnknownOption):
		return errors.Wrap(err, errors.ErrInvalidInput, fmt.Sprintf("unknown option %q", optionID))
	case stderrors.Is(err, registry.ErrAlreadySelected):
		return errors.Wrap(err, errors.ErrConflict, "you have already selected a problem statement")
	case stderrors.Is(err, repository.ErrDuplicateSelection):
		return errors.Wrap(registry.ErrAlreadySelected, errors.ErrConflict, "you have already selected a problem statement")
	case stderrors.Is(err, registry.ErrOptionFull):
		return errors.Wrap(err, errors.ErrConflict, "this problem statement is full, please choose another")
	default:
		return errors.Wrap(err, errors.ErrInternal, "failed to record selection")
	}
}
