package faculty

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

type FacultyHandler struct {
	service FacultyService
	logger  *slog.Logger
}

func NewFacultyHandler(service FacultyService, logger *slog.Logger) *FacultyHandler {
	return &FacultyHandler{
		service: service,
		logger:  logger,
	}
}

func (h *FacultyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateFacultyRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Name, email, and password are required")
		return
	}

	identity, err := h.service.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, types.ErrDuplicateEmail) {
			api.ErrorResponse(w, r, http.StatusConflict, "A faculty member with this email already exists")
			return
		}
		h.logger.ErrorContext(r.Context(), "Faculty creation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, api.UpstreamStatus(err), "Failed to create faculty")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, identity)
}

func (h *FacultyHandler) List(w http.ResponseWriter, r *http.Request) {
	faculties, err := h.service.List(r.Context())
	if err != nil {
		api.ErrorResponse(w, r, api.UpstreamStatus(err), "Failed to list faculties")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(faculties),
		"data":    faculties,
	})
}

func (h *FacultyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid faculty ID")
		return
	}

	identity, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Faculty not found")
			return
		}
		api.ErrorResponse(w, r, api.UpstreamStatus(err), "Failed to fetch faculty")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, identity)
}

func (h *FacultyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid faculty ID")
		return
	}

	var req UpdateProfileRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	identity, err := h.service.Update(r.Context(), id, types.UpdateIdentityParams{
		Name:           req.Name,
		Phone:          req.Phone,
		Specialization: req.Specialization,
	})
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Faculty not found")
			return
		}
		api.ErrorResponse(w, r, api.UpstreamStatus(err), "Failed to update faculty")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, identity)
}

func (h *FacultyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid faculty ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Faculty not found")
			return
		}
		api.ErrorResponse(w, r, api.UpstreamStatus(err), "Failed to delete faculty")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Faculty deleted successfully",
	})
}

func (h *FacultyHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.GetIdentityIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	identity, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Faculty not found")
			return
		}
		api.ErrorResponse(w, r, api.UpstreamStatus(err), "Failed to fetch profile")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, identity)
}

func (h *FacultyHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
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

	identity, err := h.service.Update(r.Context(), id, types.UpdateIdentityParams{
		Name:           req.Name,
		Phone:          req.Phone,
		Specialization: req.Specialization,
	})
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Faculty not found")
			return
		}
		api.ErrorResponse(w, r, api.UpstreamStatus(err), "Failed to update profile")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, identity)
}

func (h *FacultyHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
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
			api.ErrorResponse(w, r, http.StatusNotFound, "Faculty not found")
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
