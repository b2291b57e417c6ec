package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/accountd/internal/services"
	appErrors "github.com/charlesng35/accountd/pkg/errors"
	"github.com/charlesng35/accountd/pkg/metrics"
	"github.com/charlesng35/accountd/pkg/response"
)

// AccountsHandler exposes the account lifecycle flows: registration with
// email confirmation, and password recovery with a rotating reset link.
type AccountsHandler struct {
	activation *services.ActivationService
	recovery   *services.RecoveryService
}

func NewAccountsHandler(activation *services.ActivationService, recovery *services.RecoveryService) *AccountsHandler {
	return &AccountsHandler{activation: activation, recovery: recovery}
}

type registerRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

// POST /api/accounts/register
func (h *AccountsHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	receipt, err := h.activation.Register(c.Request.Context(), services.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		metrics.Registrations.WithLabelValues("failure").Inc()
		h.writeRegistrationError(c, err)
		return
	}

	metrics.Registrations.WithLabelValues("success").Inc()

	response.Success(c, http.StatusAccepted, gin.H{
		"email":   receipt.Email,
		"message": "A confirmation link has been sent to your email address",
	})
}

func (h *AccountsHandler) writeRegistrationError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		// Echo the non-secret fields so the client can redisplay the form.
		response.ErrorWithData(c, appErrors.NewValidation(validationErr.Error()), gin.H{
			"name":  validationErr.Name,
			"email": validationErr.Email,
		})
		return
	}

	var notificationErr *services.NotificationError
	switch {
	case errors.Is(err, services.ErrDuplicateEmail):
		response.Error(c, appErrors.ErrDuplicateEmail)
	case errors.As(err, &notificationErr):
		response.Error(c, appErrors.ErrNotificationFailed.WithInternal(err))
	default:
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
	}
}

// GET /api/accounts/activate/:token
func (h *AccountsHandler) Activate(c *gin.Context) {
	identity, err := h.activation.Activate(c.Request.Context(), c.Param("token"))
	if err != nil {
		metrics.Activations.WithLabelValues("failure").Inc()

		var tokenErr *services.TokenRejectedError
		switch {
		case errors.As(err, &tokenErr):
			response.Error(c, appErrors.ErrTokenRejected.WithInternal(err))
		case errors.Is(err, services.ErrDuplicateEmail):
			response.Error(c, appErrors.ErrDuplicateEmail)
		default:
			response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		}
		return
	}

	metrics.Activations.WithLabelValues("success").Inc()

	response.Success(c, http.StatusCreated, gin.H{
		"id":        identity.ID,
		"name":      identity.Name,
		"email":     identity.Email,
		"activated": identity.Activated,
	})
}

type recoverRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// POST /api/accounts/recover
func (h *AccountsHandler) RequestReset(c *gin.Context) {
	var req recoverRequest
	if !bindAndValidate(c, &req) {
		return
	}

	receipt, err := h.recovery.RequestReset(c.Request.Context(), req.Email)
	if err != nil {
		metrics.PasswordResets.WithLabelValues("request_failure").Inc()

		var validationErr *services.ValidationError
		var notificationErr *services.NotificationError
		switch {
		case errors.As(err, &validationErr):
			response.Error(c, appErrors.NewValidation(validationErr.Error()))
		case errors.As(err, &notificationErr):
			response.Error(c, appErrors.ErrNotificationFailed.WithInternal(err))
		default:
			response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		}
		return
	}

	metrics.PasswordResets.WithLabelValues("requested").Inc()

	// Same response whether or not the email is registered.
	response.Success(c, http.StatusAccepted, gin.H{
		"email":   receipt.Email,
		"message": "If that email is registered, a reset link has been sent",
	})
}

// GET /api/accounts/recover/:token
func (h *AccountsHandler) ResolveResetToken(c *gin.Context) {
	identity, err := h.recovery.ResolveToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		var tokenErr *services.TokenRejectedError
		if errors.As(err, &tokenErr) {
			response.Error(c, appErrors.ErrTokenRejected.WithInternal(err))
			return
		}
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	// The recovery id keys the follow-up reset submission.
	response.Success(c, http.StatusOK, gin.H{
		"name":        identity.Name,
		"email":       identity.Email,
		"recovery_id": identity.RecoveryID,
	})
}

type resetRequest struct {
	RecoveryID      string `json:"recovery_id" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

// POST /api/accounts/reset
func (h *AccountsHandler) CompleteReset(c *gin.Context) {
	var req resetRequest
	if !bindAndValidate(c, &req) {
		return
	}

	identity, err := h.recovery.CompleteReset(c.Request.Context(), req.RecoveryID, req.Password, req.PasswordConfirm)
	if err != nil {
		metrics.PasswordResets.WithLabelValues("failure").Inc()

		var validationErr *services.ValidationError
		var partialErr *services.PartialFailureError
		switch {
		case errors.As(err, &validationErr):
			response.Error(c, appErrors.NewValidation(validationErr.Error()))
		case errors.Is(err, services.ErrInvalidRequest):
			response.Error(c, appErrors.ErrInvalidRequest)
		case errors.As(err, &partialErr):
			response.Error(c, appErrors.ErrPartialFailure.WithInternal(err))
		default:
			response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		}
		return
	}

	metrics.PasswordResets.WithLabelValues("completed").Inc()

	response.Success(c, http.StatusOK, gin.H{
		"email":   identity.Email,
		"message": "Password updated, you can now log in",
	})
}
