package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"carsource_backend/internal/middleware"
	"carsource_backend/internal/models"
	"carsource_backend/internal/validator"
	"carsource_backend/pkg/apperrors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// BaseHandler carries the helpers shared by all HTTP handlers.
type BaseHandler struct {
	validator *validator.Validator
}

func NewBaseHandler(v *validator.Validator) BaseHandler {
	return BaseHandler{validator: v}
}

// BindAndValidateJSON binds the request body into req and runs validation.
// On failure it writes the error response and returns false.
func (h *BaseHandler) BindAndValidateJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body"))
		return false
	}

	if err := h.validator.Validate(req); err != nil {
		var ve *validator.ValidationError
		if apperrors.As(err, &ve) {
			apperrors.HandleError(c, apperrors.ValidationError(ve.Errors))
		} else {
			apperrors.HandleError(c, apperrors.InternalError(err))
		}
		return false
	}
	return true
}

// CurrentUser returns the authenticated caller's id and role, writing
// a 401 when the auth middleware did not run.
func (h *BaseHandler) CurrentUser(c *gin.Context) (string, models.UserRole, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authentication required"))
		return "", "", false
	}
	role, _ := middleware.GetUserRole(c)
	return userID, role, true
}

// ParsePagination reads limit/offset query params with sane bounds.
func (h *BaseHandler) ParsePagination(c *gin.Context) (limit, offset int) {
	limit = defaultPageSize
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if raw := c.Query("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
