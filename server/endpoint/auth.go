package endpoint

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/sessionkit/auth/authctx"
	"github.com/kbukum/sessionkit/errors"
	"github.com/kbukum/sessionkit/logger"
	"github.com/kbukum/sessionkit/server"
	"github.com/kbukum/sessionkit/session"
	"github.com/kbukum/sessionkit/validation"
)

// TokenResponse is the body of login and refresh responses.
type TokenResponse struct {
	Token string `json:"token"`
}

// AuthHandler serves the /auth routes.
type AuthHandler struct {
	svc     *session.Service
	cookies CookieConfig
	log     *logger.Logger
}

// NewAuthHandler creates the /auth handlers.
func NewAuthHandler(svc *session.Service, cookies CookieConfig, log *logger.Logger) *AuthHandler {
	cookies.ApplyDefaults()
	return &AuthHandler{svc: svc, cookies: cookies, log: log.WithComponent("http")}
}

// RegisterRoutes mounts the handlers under /auth. requireAuth guards
// logout and profile.
func (h *AuthHandler) RegisterRoutes(r gin.IRouter, requireAuth gin.HandlerFunc) {
	g := r.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", requireAuth, h.Logout)
	g.GET("/profile", requireAuth, h.Profile)
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var in session.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		server.RespondWithError(c, h.log, errors.Validation("request body must be a JSON object"))
		return
	}

	profile, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		server.RespondWithError(c, h.log, err)
		return
	}
	server.RespondOK(c, profile)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var in session.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		server.RespondWithError(c, h.log, errors.Validation("request body must be a JSON object"))
		return
	}
	if err := validation.Validate(in); err != nil {
		server.RespondWithError(c, h.log, err)
		return
	}

	tokens, err := h.svc.Login(c.Request.Context(), in.Identifier, in.Password)
	if err != nil {
		server.RespondWithError(c, h.log, err)
		return
	}

	h.cookies.setCookie(c, h.cookies.AccessName, tokens.Access)
	h.cookies.setCookie(c, h.cookies.RefreshName, tokens.Refresh)
	server.RespondOK(c, TokenResponse{Token: tokens.Access})
}

// Refresh handles POST /auth/refresh. The refresh token is read from its
// cookie only.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie(h.cookies.RefreshName)
	if err != nil || refresh == "" {
		server.RespondWithError(c, h.log, errors.MissingRefreshToken())
		return
	}

	access, err := h.svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		server.RespondWithError(c, h.log, err)
		return
	}

	h.cookies.setCookie(c, h.cookies.AccessName, access)
	server.RespondOK(c, TokenResponse{Token: access})
}

// Logout handles POST /auth/logout. The response is the same on every
// call: 204 with both cookies cleared.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.svc.Logout(c.Request.Context())
	h.cookies.clearCookie(c, h.cookies.AccessName)
	h.cookies.clearCookie(c, h.cookies.RefreshName)
	server.RespondNoContent(c)
}

// Profile handles GET /auth/profile.
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, ok := authctx.UserID(c.Request.Context())
	if !ok {
		server.RespondWithError(c, h.log, errors.Unauthorized(""))
		return
	}

	profile, err := h.svc.Profile(c.Request.Context(), userID)
	if err != nil {
		server.RespondWithError(c, h.log, err)
		return
	}
	server.RespondOK(c, profile)
}
