package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bnvdash/user-directory/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Pagination is the list-response page descriptor.
type Pagination struct {
	TotalRecords int64 `json:"totalRecords"`
	TotalPages   int64 `json:"totalPages"`
	CurrentPage  int   `json:"currentPage"`
	PageSize     int   `json:"pageSize"`
}

type envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Detail     string      `json:"detail,omitempty"`
}

var devMode bool

// SetDevMode enables the diagnostic detail addendum on internal errors.
func SetDevMode(on bool) {
	devMode = on
}

func RespondData(ctx *gin.Context, status int, data any) {
	ctx.JSON(status, envelope{Success: true, Data: data})
}

func RespondMessage(ctx *gin.Context, status int, message string, data any) {
	ctx.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func RespondList(ctx *gin.Context, data any, p Pagination) {
	ctx.JSON(http.StatusOK, envelope{Success: true, Data: data, Pagination: &p})
}

// MapError is the single translation from a service error to the wire
// (status, message) pair. Pure; the taxonomy lives here and nowhere else.
func MapError(err error) (int, string) {
	var (
		vErr *user.ValidationError
		cErr *user.ConflictError
	)

	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, vErr.Error()
	case errors.As(err, &cErr):
		return http.StatusBadRequest, cErr.Error()
	case errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, user.ErrEmptyExport):
		return http.StatusNotFound, "No users found to export"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// RespondAppError writes the mapped error envelope. Internal failures are
// logged with the request context; their raw detail is only exposed in dev.
func RespondAppError(ctx *gin.Context, log *slog.Logger, err error) {
	status, message := MapError(err)

	body := envelope{Success: false, Message: message}

	if status == http.StatusInternalServerError {
		log.ErrorContext(ctx.Request.Context(), "request failed",
			"err", err,
			"method", ctx.Request.Method,
			"route", ctx.FullPath(),
		)

		if devMode {
			body.Detail = err.Error()
		}
	}

	ctx.JSON(status, body)
}
