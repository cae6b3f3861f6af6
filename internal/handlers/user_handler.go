package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/internal/storage"
	"jobboard_backend/pkg/apperrors"
)

type UserHandler struct {
	*BaseHandler
	userService services.UserService
	storage     storage.Storage
}

func NewUserHandler(base *BaseHandler, userService services.UserService, store storage.Storage) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
		storage:     store,
	}
}

// RegisterRoutes mounts the profile endpoints; the group lives under
// /auth for compatibility with the original frontend paths.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.GET("/dashboard", h.Dashboard)
		auth.PUT("/profile", h.UpdateProfile)
	}

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("/stats", h.AdminStats)
	}
}

// AdminStats handles GET /api/v1/admin/stats.
func (h *UserHandler) AdminStats(c *gin.Context) {
	resp, err := h.userService.AdminStats(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Dashboard handles GET /api/v1/auth/dashboard: the current user plus
// their applied and saved jobs, newest first.
func (h *UserHandler) Dashboard(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.userService.Dashboard(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateProfile handles PUT /api/v1/auth/profile. The body is a
// multipart form with optional name, email and avatar fields.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	// ShouldBind picks the form binding for multipart requests.
	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	avatarURL := ""
	if file, err := c.FormFile("avatar"); err == nil && file != nil {
		if h.storage == nil {
			apperrors.HandleError(c, apperrors.NewBadRequestError("Avatar uploads are not enabled"))
			return
		}
		url, err := h.storage.Save(file, "avatars")
		if err != nil {
			logger.CtxWithError(c.Request.Context(), "Avatar upload failed", err, "user_id", userID)
			h.HandleServiceError(c, apperrors.InternalError(err))
			return
		}
		avatarURL = url
	}

	resp, err := h.userService.UpdateProfile(h.GetDB(c), userID, &req, avatarURL)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
