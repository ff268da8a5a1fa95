package admin

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/examhub/examhub-api/internal/api"
	"github.com/examhub/examhub-api/internal/api/auth"
	"github.com/examhub/examhub-api/internal/types"
)

type AdminHandler struct {
	service AdminService
	logger  *slog.Logger
}

func NewAdminHandler(service AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger,
	}
}

func (h *AdminHandler) Exists(w http.ResponseWriter, r *http.Request) {
	exists, err := h.service.Exists(r.Context())
	if err != nil {
		api.ErrorResponse(w, r, api.UpstreamStatus(err), "Failed to check for existing admins")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, ExistsResponse{Exists: exists})
}

func (h *AdminHandler) CreateFirstAdmin(w http.ResponseWriter, r *http.Request) {
	var req CreateFirstAdminRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Name, email, and password are required")
		return
	}

	identity, err := h.service.CreateFirstAdmin(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrForbidden):
			api.ErrorResponse(w, r, http.StatusForbidden, "An admin account already exists")
		case errors.Is(err, types.ErrDuplicateEmail):
			api.ErrorResponse(w, r, http.StatusConflict, "An admin with this email already exists")
		default:
			h.logger.ErrorContext(r.Context(), "First admin creation failed", slog.Any("error", err))
			api.ErrorResponse(w, r, api.UpstreamStatus(err), "Failed to create admin")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, identity)
}

func (h *AdminHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req CreateAdminRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Name, email, and password are required")
		return
	}
	if req.AdminEmail == "" || req.AdminPassword == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Existing admin credentials are required")
		return
	}

	identity, err := h.service.CreateAdmin(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrInvalidCredentials):
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid admin credentials")
		case errors.Is(err, types.ErrDuplicateEmail):
			api.ErrorResponse(w, r, http.StatusConflict, "An admin with this email already exists")
		default:
			h.logger.ErrorContext(r.Context(), "Admin creation failed", slog.Any("error", err))
			api.ErrorResponse(w, r, api.UpstreamStatus(err), "Failed to create admin")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, identity)
}

func (h *AdminHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentityIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	identity, err := h.service.GetProfile(r.Context(), id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Admin not found")
			return
		}
		api.ErrorResponse(w, r, api.UpstreamStatus(err), "Failed to fetch profile")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, identity)
}

func (h *AdminHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentityIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	identity, err := h.service.UpdateProfile(r.Context(), id, types.UpdateIdentityParams{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Admin not found")
			return
		}
		api.ErrorResponse(w, r, api.UpstreamStatus(err), "Failed to update profile")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, identity)
}

func (h *AdminHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentityIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := r.ParseMultipartForm(4 << 20); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, fileHeader, err := r.FormFile("avatar")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Avatar file is required")
		return
	}
	file.Close()

	path, err := h.service.UpdateAvatar(r.Context(), id, fileHeader)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Admin not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "Avatar upload failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success":     true,
		"avatar_path": path,
	})
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid admin ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Admin not found")
			return
		}
		api.ErrorResponse(w, r, api.UpstreamStatus(err), "Failed to delete admin")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Admin deleted successfully",
	})
}
