package http

import (
	"errors"
	"net/http"
	"strings"

	"mealplan/internal/adapters"
	"mealplan/internal/core"
	applog "mealplan/internal/log"
	"mealplan/internal/store"
)

var validationErrors = []error{
	core.ErrEmptyName,
	core.ErrInvalidQuantity,
	core.ErrInvalidCategory,
	core.ErrInvalidDay,
	core.ErrInvalidMealType,
	core.ErrInvalidDate,
	core.ErrEmptyIngredients,
	core.ErrUnknownWeekStart,
}

func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// errorResponse maps a service error onto its HTTP status.
func errorResponse(err error) *JSONResponseBuilder {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return NotFoundError(err.Error())
	case isValidationError(err):
		return UnprocessableEntityError(err.Error(), nil)
	case errors.Is(err, ErrMalformedBody), errors.Is(err, ErrInvalidQuery), errors.Is(err, adapters.ErrInvalidParams):
		return BadRequestError(err.Error())
	case errors.Is(err, adapters.ErrUnknownTool):
		return NotFoundError(err.Error())
	case errors.As(err, &tooLarge):
		return ErrorResponse(http.StatusRequestEntityTooLarge, "request body too large")
	default:
		return InternalServerError("internal error")
	}
}

// writeError answers with the status for err. Only unexpected failures are
// logged at error level; client mistakes are logged at debug.
func writeError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	resp := errorResponse(err)
	logger := applog.FromContext(r.Context())
	if resp.statusCode >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err,
			applog.FieldOperation, operation,
			applog.FieldPath, r.URL.Path)
	} else {
		logger.DebugContext(r.Context(), "Request rejected",
			applog.FieldError, err,
			applog.FieldOperation, operation,
			applog.FieldStatusCode, resp.statusCode)
	}
	resp.Write(w)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
