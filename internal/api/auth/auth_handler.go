package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/examhub/examhub-api/internal/api"
	"github.com/examhub/examhub-api/internal/types"
)

type AuthHandler struct {
	authService AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login authenticates against all three role partitions and returns a
// session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Login"))

	var req LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Email and password are required")
		return
	}

	token, identity, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, types.ErrInvalidCredentials) {
			l.WarnContext(ctx, "Login rejected")
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		l.ErrorContext(ctx, "Login failed", slog.Any("error", err))
		api.ErrorResponse(w, r, api.UpstreamStatus(err), "Authentication failed")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, LoginResponse{
		Token:   token,
		Role:    string(identity.Role),
		Name:    identity.Name,
		Email:   identity.Email,
		Message: "Login successful",
	})
}

// ForgotPassword starts the reset flow. The response is identical whether or
// not the email matched, to prevent user enumeration.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ForgotPassword"))

	var req ForgotPasswordRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.authService.RequestPasswordReset(ctx, req.Email); err != nil {
		l.ErrorContext(ctx, "Reset request failed", slog.Any("error", err))
		api.ErrorResponse(w, r, api.UpstreamStatus(err), "Error processing your request")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, Response{
		Success: true,
		Message: "Password reset instructions sent to your email",
	})
}

// ResetPassword consumes a reset token and sets the new password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ResetPassword"))

	var req ResetPasswordRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Token == "" || req.Password == "" || req.Type == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Token, password, and user type are required")
		return
	}
	role, ok := types.ParseRole(req.Type)
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user type")
		return
	}

	if err := h.authService.ResetPassword(ctx, role, req.Token, req.Password); err != nil {
		if errors.Is(err, types.ErrInvalidOrExpiredToken) {
			api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid or expired reset token")
			return
		}
		l.ErrorContext(ctx, "Password reset failed", slog.Any("error", err))
		api.ErrorResponse(w, r, api.UpstreamStatus(err), "Error resetting password")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, Response{
		Success: true,
		Message: "Password has been reset successfully",
	})
}

// Me returns the profile of the authenticated identity.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Me"))

	identityID, ok := GetIdentityIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	role, ok := GetRoleFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	identity, err := h.authService.GetIdentity(ctx, role, identityID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Identity not found")
			return
		}
		l.ErrorContext(ctx, "Failed to fetch identity", slog.Any("error", err))
		api.ErrorResponse(w, r, api.UpstreamStatus(err), "Failed to fetch profile")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, identity)
}
