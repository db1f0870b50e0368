package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/tasklist-api/internal/api/shared"
	"github.com/phrazzld/tasklist-api/internal/domain"
	"github.com/phrazzld/tasklist-api/internal/service"
	"github.com/phrazzld/tasklist-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", fmt.Errorf("%w: %w", auth.ErrUnauthenticated, auth.ErrExpiredToken), http.StatusUnauthorized},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"duplicate email", auth.ErrDuplicateEmail, http.StatusBadRequest},
		{"domain validation", domain.ErrEmptyTaskTitle, http.StatusBadRequest},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest},
		{"task not found", fmt.Errorf("update: %w", service.ErrTaskNotFound), http.StatusNotFound},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Please authenticate", GetSafeErrorMessage(auth.ErrUnauthenticated))
	assert.Equal(t, MessageInvalidCredentials, GetSafeErrorMessage(auth.ErrInvalidCredentials))
	assert.Equal(t, MessageDuplicateEmail, GetSafeErrorMessage(auth.ErrDuplicateEmail))
	assert.Equal(t, MessageTaskNotFound, GetSafeErrorMessage(service.ErrTaskNotFound))
	assert.Equal(t, "Title is required", GetSafeErrorMessage(domain.ErrEmptyTaskTitle))
	assert.Equal(t, "Email invalid format",
		GetSafeErrorMessage(domain.NewValidationError("email", "invalid format", domain.ErrInvalidEmail)))
	assert.Equal(t, MessageInternal, GetSafeErrorMessage(errors.New("pq: relation \"tasks\" does not exist")))
	assert.Equal(t, MessageInternal, GetSafeErrorMessage(nil))
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	type req struct {
		Email string `validate:"required,email"`
	}
	err := validator.New().Struct(req{Email: "nope"})
	var ve validator.ValidationErrors
	require.ErrorAs(t, err, &ve)

	assert.Equal(t, "Invalid email: invalid email format", SanitizeValidationError(ve))
	assert.Equal(t, "Validation error", SanitizeValidationError(nil))
}

func TestGetPathUUID(t *testing.T) {
	t.Parallel()

	newRequest := func(id string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/api/tasks/"+id, nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		return r.WithContext(contextWithRoute(r, rctx))
	}

	id, err := getPathUUID(newRequest("6f1c2a8e-1b1e-4c7e-9a55-2f6d8f0c1a10"), "id")
	require.NoError(t, err)
	assert.Equal(t, "6f1c2a8e-1b1e-4c7e-9a55-2f6d8f0c1a10", id.String())

	_, err = getPathUUID(newRequest("not-a-uuid"), "id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = getPathUUID(newRequest(""), "id")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
