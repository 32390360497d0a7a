package httpapi

import (
	"errors"
	"net/http"

	"github.com/agrolease/agrolease/internal/apperr"
)

// respondDomainError maps service errors to the HTTP error taxonomy. 409
// means a conditional update lost a race and the caller may retry after a
// re-read; everything unmatched is a 500.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, apperr.ErrForbidden):
		respondError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, apperr.ErrInvalidTransition):
		respondError(w, http.StatusBadRequest, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, apperr.ErrDuplicatePending):
		respondError(w, http.StatusBadRequest, "DUPLICATE_PENDING", err.Error())
	case errors.Is(err, apperr.ErrValidation):
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
	case errors.Is(err, apperr.ErrConflict):
		respondError(w, http.StatusConflict, "CONFLICT", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
