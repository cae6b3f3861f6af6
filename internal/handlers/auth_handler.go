package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobboard_backend/internal/config"
	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/services/dto"
)

const refreshTokenCookie = "refresh_token"

type AuthHandler struct {
	*BaseHandler
	authService services.AuthService
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
	}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.POST("/logout-all", middleware.AuthMiddleware(), h.LogoutAll)
		auth.GET("/verify-token", h.VerifyToken)
	}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Register(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.setAuthCookies(c, resp)
	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.setAuthCookies(c, resp)
	c.JSON(http.StatusOK, resp)
}

// Refresh handles POST /api/v1/auth/refresh. The refresh token comes
// from the cookie when present, otherwise from the JSON body.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(refreshTokenCookie)
	if token == "" {
		var req dto.RefreshTokenRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.RefreshToken
		}
	}

	resp, err := h.authService.RefreshToken(h.GetDB(c), token)
	if err != nil {
		h.clearAuthCookies(c)
		h.HandleServiceError(c, err)
		return
	}

	h.setAuthCookies(c, resp)
	c.JSON(http.StatusOK, resp)
}

// Logout handles POST /api/v1/auth/logout. Deletes the server-side
// refresh token so the session cannot be refreshed again.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(refreshTokenCookie)
	if token == "" {
		var req dto.LogoutRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.RefreshToken
		}
	}

	if err := h.authService.Logout(h.GetDB(c), token); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// LogoutAll handles POST /api/v1/auth/logout-all: it revokes every
// refresh token the user holds, ending all of their sessions.
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.authService.LogoutAll(h.GetDB(c), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out everywhere"})
}

// VerifyToken handles GET /api/v1/auth/verify-token. It validates the
// access token and returns the current user.
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	token := extractRequestToken(c)

	user, err := h.authService.Verify(h.GetDB(c), token)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true, "user": user})
}

func extractRequestToken(c *gin.Context) string {
	if cookie, err := c.Cookie(middleware.AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(authHeader) > len(prefix) && authHeader[:len(prefix)] == prefix {
		return authHeader[len(prefix):]
	}
	return ""
}

// setAuthCookies keys each cookie's lifetime to the token it carries
// so neither can outlive the other side of the pair.
func (h *AuthHandler) setAuthCookies(c *gin.Context, resp *dto.AuthResponse) {
	accessMaxAge := config.AppConfig.JWT.TTLMinutes * 60
	refreshMaxAge := int(services.RefreshTokenTTL.Seconds())

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, resp.AccessToken, accessMaxAge, "/", "", false, true)
	c.SetCookie(refreshTokenCookie, resp.RefreshToken, refreshMaxAge, "/", "", false, true)
}

func (h *AuthHandler) clearAuthCookies(c *gin.Context) {
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", false, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", false, true)
}
