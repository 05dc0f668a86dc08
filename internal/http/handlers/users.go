package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bnvdash/user-directory/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// UserService is the record-service surface the handlers call into.
type UserService interface {
	Create(ctx context.Context, in user.Fields, image *multipart.FileHeader) (user.User, error)
	List(ctx context.Context, q user.SearchQuery) ([]user.User, int64, error)
	Get(ctx context.Context, id string) (user.User, error)
	Update(ctx context.Context, id string, p user.Patch, image *multipart.FileHeader) (user.User, error)
	Delete(ctx context.Context, id string) error
	ExportCSV(ctx context.Context) ([]byte, error)
}

type UsersHandler struct {
	svc UserService
	log *slog.Logger
}

func NewUsersHandler(svc UserService, log *slog.Logger) *UsersHandler {
	return &UsersHandler{svc: svc, log: log}
}

// POST /api/users
func (h *UsersHandler) Create(ctx *gin.Context) {
	in := user.Fields{
		FirstName: ctx.PostForm("firstName"),
		LastName:  ctx.PostForm("lastName"),
		Email:     ctx.PostForm("email"),
		Mobile:    ctx.PostForm("mobile"),
		Gender:    ctx.PostForm("gender"),
		Status:    ctx.PostForm("status"),
		Location:  ctx.PostForm("location"),
	}

	u, err := h.svc.Create(ctx.Request.Context(), in, formImage(ctx))
	if err != nil {
		RespondAppError(ctx, h.log, err)
		return
	}

	RespondMessage(ctx, http.StatusCreated, "User created successfully", u)
}

// GET /api/users
func (h *UsersHandler) List(ctx *gin.Context) {
	q := user.SearchQuery{
		Page:     positiveIntQuery(ctx, "page", 1),
		PageSize: positiveIntQuery(ctx, "limit", 10),
		Search:   strings.TrimSpace(ctx.Query("search")),
	}

	users, total, err := h.svc.List(ctx.Request.Context(), q)
	if err != nil {
		RespondAppError(ctx, h.log, err)
		return
	}

	size := int64(q.PageSize)

	RespondList(ctx, users, Pagination{
		TotalRecords: total,
		TotalPages:   (total + size - 1) / size,
		CurrentPage:  q.Page,
		PageSize:     q.PageSize,
	})
}

// GET /api/users/:id
func (h *UsersHandler) Get(ctx *gin.Context) {
	u, err := h.svc.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		RespondAppError(ctx, h.log, err)
		return
	}

	RespondData(ctx, http.StatusOK, u)
}

// PUT /api/users/:id
func (h *UsersHandler) Update(ctx *gin.Context) {
	p := user.Patch{
		FirstName: formField(ctx, "firstName"),
		LastName:  formField(ctx, "lastName"),
		Email:     formField(ctx, "email"),
		Mobile:    formField(ctx, "mobile"),
		Gender:    formField(ctx, "gender"),
		Status:    formField(ctx, "status"),
		Location:  formField(ctx, "location"),
	}

	u, err := h.svc.Update(ctx.Request.Context(), ctx.Param("id"), p, formImage(ctx))
	if err != nil {
		RespondAppError(ctx, h.log, err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "User updated successfully", u)
}

// DELETE /api/users/:id
func (h *UsersHandler) Delete(ctx *gin.Context) {
	if err := h.svc.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		RespondAppError(ctx, h.log, err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "User deleted successfully", nil)
}

// GET /api/users/export/csv
func (h *UsersHandler) ExportCSV(ctx *gin.Context) {
	data, err := h.svc.ExportCSV(ctx.Request.Context())
	if err != nil {
		RespondAppError(ctx, h.log, err)
		return
	}

	filename := fmt.Sprintf("users_%d.csv", time.Now().UnixMilli())
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, "text/csv", data)
}

// formField reports a multipart field only when the client sent it, so
// updates can distinguish "absent" from "empty".
func formField(ctx *gin.Context, key string) *string {
	if v, ok := ctx.GetPostForm(key); ok {
		return &v
	}

	return nil
}

func formImage(ctx *gin.Context) *multipart.FileHeader {
	fh, err := ctx.FormFile("profileImage")
	if err != nil {
		return nil
	}

	return fh
}

// positiveIntQuery collapses non-numeric and non-positive values to the
// fallback.
func positiveIntQuery(ctx *gin.Context, key string, fallback int) int {
	v := ctx.Query(key)
	if v == "" {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}

	return n
}
