package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/accountd/internal/auth"
	"github.com/charlesng35/accountd/internal/auth/providers"
	"github.com/charlesng35/accountd/internal/middleware"
	"github.com/charlesng35/accountd/internal/store"
	appErrors "github.com/charlesng35/accountd/pkg/errors"
	"github.com/charlesng35/accountd/pkg/metrics"
	"github.com/charlesng35/accountd/pkg/response"
)

// AuthHandler manages authentication flows (login/refresh/logout/me).
type AuthHandler struct {
	provider   *providers.LocalProvider
	sessions   *iauth.SessionService
	identities store.IdentityStore
}

func NewAuthHandler(provider *providers.LocalProvider, sessions *iauth.SessionService, identities store.IdentityStore) *AuthHandler {
	return &AuthHandler{provider: provider, sessions: sessions, identities: identities}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	identity, err := h.provider.Authenticate(c.Request.Context(), providers.AuthenticateInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()

		// Credential failures and unactivated accounts both yield 401; the
		// latter gets its own message so the user knows to check their inbox.
		if errors.Is(err, providers.ErrNotActivated) {
			response.Error(c, appErrors.New("NOT_ACTIVATED", "Please confirm your email address first", http.StatusUnauthorized))
			return
		}
		response.Error(c, appErrors.ErrInvalidCredentials)
		return
	}

	pair, _, err := h.sessions.CreateSession(identity.ID, iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()

	response.Success(c, http.StatusOK, gin.H{
		"tokens": tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
		"identity": gin.H{
			"id":    identity.ID,
			"name":  identity.Name,
			"email": identity.Email,
		},
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindAndValidate(c, &req) {
		return
	}

	pair, _, err := h.sessions.RefreshSession(req.RefreshToken)
	if err != nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	response.Success(c, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	v, ok := c.Get(middleware.CtxSessionIDKey)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	sid, _ := v.(string)
	if sid == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.sessions.RevokeSession(sid); err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	v, ok := c.Get(middleware.CtxIdentityIDKey)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	identityID, _ := v.(string)

	identity, err := h.identities.FindByID(c.Request.Context(), identityID)
	if err != nil {
		response.Error(c, appErrors.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"id":         identity.ID,
		"name":       identity.Name,
		"email":      identity.Email,
		"activated":  identity.Activated,
		"created_at": identity.CreatedAt,
	})
}
