package testseries

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

type TestSeriesHandler struct {
	service TestSeriesService
	logger  *slog.Logger
}

func NewTestSeriesHandler(service TestSeriesService, logger *slog.Logger) *TestSeriesHandler {
	return &TestSeriesHandler{
		service: service,
		logger:  logger,
	}
}

// CreateTestSeriesRequest represents the create request body.
type CreateTestSeriesRequest struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Subject         string  `json:"subject"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
}

// AddQuestionRequest represents the add-question request body.
type AddQuestionRequest struct {
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Marks         int      `json:"marks"`
	NegativeMarks int      `json:"negative_marks"`
}

// actingIdentity pulls the authenticated {id, role} pair set by the
// Authenticate middleware.
func actingIdentity(w http.ResponseWriter, r *http.Request) (uuid.UUID, types.Role, bool) {
	id, ok := auth.GetIdentityIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, "", false
	}
	role, ok := auth.GetRoleFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, "", false
	}
	return id, role, true
}

func (h *TestSeriesHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "Test series not found")
	case errors.Is(err, types.ErrForbidden):
		api.ErrorResponse(w, r, http.StatusForbidden, "Unauthorized access to this test series")
	default:
		h.logger.ErrorContext(r.Context(), "Test series operation failed",
			slog.String("action", action), slog.Any("error", err))
		api.ErrorResponse(w, r, api.UpstreamStatus(err), "Failed to "+action)
	}
}

func (h *TestSeriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole, ok := actingIdentity(w, r)
	if !ok {
		return
	}

	var req CreateTestSeriesRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title == "" || req.Subject == "" || req.DurationMinutes <= 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Title, subject, and duration are required")
		return
	}

	series, err := h.service.Create(r.Context(), actorID, actorRole, types.CreateTestSeriesParams{
		Title:           req.Title,
		Description:     req.Description,
		Subject:         req.Subject,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
	})
	if err != nil {
		if errors.Is(err, types.ErrForbidden) {
			api.ErrorResponse(w, r, http.StatusForbidden, "Only admins and faculty can create test series")
			return
		}
		h.writeServiceError(w, r, err, "create test series")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, series)
}

func (h *TestSeriesHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole, ok := actingIdentity(w, r)
	if !ok {
		return
	}

	series, err := h.service.ListMine(r.Context(), actorID, actorRole)
	if err != nil {
		h.writeServiceError(w, r, err, "list test series")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(series),
		"data":    series,
	})
}

func (h *TestSeriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole, ok := actingIdentity(w, r)
	if !ok {
		return
	}
	seriesID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid test series ID")
		return
	}

	series, err := h.service.Get(r.Context(), actorID, actorRole, seriesID)
	if err != nil {
		h.writeServiceError(w, r, err, "fetch test series")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, series)
}

func (h *TestSeriesHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole, ok := actingIdentity(w, r)
	if !ok {
		return
	}
	seriesID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid test series ID")
		return
	}

	var req AddQuestionRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.QuestionText == "" || len(req.Options) == 0 || req.CorrectAnswer == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Question text, options, and correct answer are required")
		return
	}

	question, err := h.service.AddQuestion(r.Context(), actorID, actorRole, seriesID, types.AddQuestionParams{
		QuestionText:  req.QuestionText,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Explanation:   req.Explanation,
		Marks:         req.Marks,
		NegativeMarks: req.NegativeMarks,
	})
	if err != nil {
		h.writeServiceError(w, r, err, "add question")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, question)
}

func (h *TestSeriesHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole, ok := actingIdentity(w, r)
	if !ok {
		return
	}
	seriesID, err := uuid.Parse(chi.URLParam(r, "testID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid test series ID")
		return
	}
	questionID, err := uuid.Parse(chi.URLParam(r, "questionID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid question ID")
		return
	}

	if err := h.service.DeleteQuestion(r.Context(), actorID, actorRole, seriesID, questionID); err != nil {
		h.writeServiceError(w, r, err, "delete question")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Question deleted successfully",
	})
}

func (h *TestSeriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole, ok := actingIdentity(w, r)
	if !ok {
		return
	}
	seriesID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid test series ID")
		return
	}

	if err := h.service.Delete(r.Context(), actorID, actorRole, seriesID); err != nil {
		h.writeServiceError(w, r, err, "delete test series")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Test series and all associated questions deleted successfully",
	})
}
