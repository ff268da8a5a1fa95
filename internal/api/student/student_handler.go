package student

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/examhub/examhub-api/internal/api"
	"github.com/examhub/examhub-api/internal/api/auth"
	"github.com/examhub/examhub-api/internal/types"
)

type StudentHandler struct {
	service StudentService
	logger  *slog.Logger
}

func NewStudentHandler(service StudentService, logger *slog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger,
	}
}

func (h *StudentHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Name, email, and password are required")
		return
	}

	identity, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, types.ErrDuplicateEmail) {
			api.ErrorResponse(w, r, http.StatusConflict, "A student with this email already exists")
			return
		}
		h.logger.ErrorContext(r.Context(), "Student registration failed", slog.Any("error", err))
		api.ErrorResponse(w, r, api.UpstreamStatus(err), "Failed to register student")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, identity)
}

func (h *StudentHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentityIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	identity, err := h.service.GetProfile(r.Context(), id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Student not found")
			return
		}
		api.ErrorResponse(w, r, api.UpstreamStatus(err), "Failed to fetch profile")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, identity)
}

func (h *StudentHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
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
			api.ErrorResponse(w, r, http.StatusNotFound, "Student not found")
			return
		}
		api.ErrorResponse(w, r, api.UpstreamStatus(err), "Failed to update profile")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, identity)
}

func (h *StudentHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
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
			api.ErrorResponse(w, r, http.StatusNotFound, "Student not found")
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
