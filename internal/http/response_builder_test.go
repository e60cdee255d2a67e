package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mealplan/internal/adapters"
	"mealplan/internal/core"
	"mealplan/internal/services"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Revision(42).
		Header("X-Test", "yes").
		Body(map[string]string{"name": "Pasta"}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if w.Header().Get(RevisionHeader) != "42" || w.Header().Get("X-Test") != "yes" {
		t.Errorf("headers = %v", w.Header())
	}
	if strings.TrimSpace(w.Body.String()) != `{"name":"Pasta"}` {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilder_NoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NoContent().Write(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("got %d with %q", w.Code, w.Body.String())
	}
}

func TestJSONResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Body(map[string]any{"f": func() {}}).Write(w)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *JSONResponseBuilder
		code    int
	}{
		{"BadRequest", BadRequestError("bad"), http.StatusBadRequest},
		{"Unprocessable", UnprocessableEntityError("invalid", []string{"row 2"}), http.StatusUnprocessableEntity},
		{"NotFound", NotFoundError("missing"), http.StatusNotFound},
		{"Internal", InternalServerError("boom"), http.StatusInternalServerError},
		{"TooMany", TooManyRequestsError(), http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.code {
				t.Errorf("Status code = %d, want %d", w.Code, tt.code)
			}
			if !strings.Contains(w.Body.String(), `"error":`) {
				t.Errorf("Body missing error field: %s", w.Body.String())
			}
		})
	}
}

func TestErrorResponseMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{services.ErrItemNotFound, http.StatusNotFound},
		{fmt.Errorf("ingredient %q: %w", "salt", core.ErrInvalidQuantity), http.StatusUnprocessableEntity},
		{core.ErrUnknownWeekStart, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: empty body", ErrMalformedBody), http.StatusBadRequest},
		{ErrInvalidQuery, http.StatusBadRequest},
		{adapters.ErrInvalidParams, http.StatusBadRequest},
		{adapters.ErrUnknownTool, http.StatusNotFound},
		{&http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := errorResponse(tt.err).statusCode; got != tt.code {
			t.Errorf("errorResponse(%v) = %d, want %d", tt.err, got, tt.code)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  tab\there\x00\x1b "); got != "tab\there" {
		t.Errorf("sanitizeInput = %q", got)
	}
}
