package handlers_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bnvdash/user-directory/internal/domain/user"
	"github.com/bnvdash/user-directory/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "validation lists every violation",
			err:     &user.ValidationError{Violations: []string{"First name is required", "Email is required"}},
			status:  http.StatusBadRequest,
			message: "First name is required, Email is required",
		},
		{
			name:    "email conflict",
			err:     &user.ConflictError{Field: "email"},
			status:  http.StatusBadRequest,
			message: "Email already exists",
		},
		{
			name:    "mobile conflict",
			err:     &user.ConflictError{Field: "mobile"},
			status:  http.StatusBadRequest,
			message: "Mobile already exists",
		},
		{
			name:    "wrapped not found",
			err:     fmt.Errorf("find user: %w", user.ErrNotFound),
			status:  http.StatusNotFound,
			message: "User not found",
		},
		{
			name:    "empty export",
			err:     user.ErrEmptyExport,
			status:  http.StatusNotFound,
			message: "No users found to export",
		},
		{
			name:    "anything else is internal",
			err:     errors.New("socket closed"),
			status:  http.StatusInternalServerError,
			message: "Internal Server Error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, message := handlers.MapError(tc.err)

			if status != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, status)
			}

			if message != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, message)
			}
		})
	}
}

func TestRespondAppError_DevDetail(t *testing.T) {
	handlers.SetDevMode(true)
	defer handlers.SetDevMode(false)

	r := gin.New()
	r.GET("/boom", func(ctx *gin.Context) {
		handlers.RespondAppError(ctx, testLogger(), errors.New("socket closed"))
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}

	env := decodeEnvelope(t, res)

	if env.Detail != "socket closed" {
		t.Fatalf("expected raw detail in dev mode, got %q", env.Detail)
	}
}

func TestRespondAppError_ClientErrorsCarryNoDetail(t *testing.T) {
	handlers.SetDevMode(true)
	defer handlers.SetDevMode(false)

	r := gin.New()
	r.GET("/missing", func(ctx *gin.Context) {
		handlers.RespondAppError(ctx, testLogger(), user.ErrNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	env := decodeEnvelope(t, res)

	if env.Detail != "" {
		t.Fatalf("expected no detail on a 404, got %q", env.Detail)
	}
}
