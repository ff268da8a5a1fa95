package testseries

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/examhub/examhub-api/internal/types"
)

var _ TestSeriesService = (*TestSeriesServiceImpl)(nil)

// TestSeriesService holds the ownership rule: a series may only be read in
// full or mutated by its creator, matched on both id and role tag. There is
// no role hierarchy; an admin does not bypass a faculty's ownership.
type TestSeriesService interface {
	Create(ctx context.Context, actorID uuid.UUID, actorRole types.Role, params types.CreateTestSeriesParams) (*types.TestSeries, error)
	ListMine(ctx context.Context, actorID uuid.UUID, actorRole types.Role) ([]types.TestSeries, error)
	// Get returns the series with its questions, creator-only.
	Get(ctx context.Context, actorID uuid.UUID, actorRole types.Role, seriesID uuid.UUID) (*types.TestSeries, error)
	AddQuestion(ctx context.Context, actorID uuid.UUID, actorRole types.Role, seriesID uuid.UUID, params types.AddQuestionParams) (*types.Question, error)
	DeleteQuestion(ctx context.Context, actorID uuid.UUID, actorRole types.Role, seriesID, questionID uuid.UUID) error
	Delete(ctx context.Context, actorID uuid.UUID, actorRole types.Role, seriesID uuid.UUID) error
}

type TestSeriesServiceImpl struct {
	logger *slog.Logger
	repo   TestSeriesRepo
}

func NewTestSeriesService(repo TestSeriesRepo, logger *slog.Logger) *TestSeriesServiceImpl {
	return &TestSeriesServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

// authorize loads the series and applies the ownership rule. Existence is
// checked first, so a non-owner probing a random id sees the same NotFound
// as everyone else only when the series is truly absent.
func (s *TestSeriesServiceImpl) authorize(ctx context.Context, actorID uuid.UUID, actorRole types.Role, seriesID uuid.UUID) (*types.TestSeries, error) {
	series, err := s.repo.GetByID(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	if series.CreatedBy != actorID || series.CreatedByModel != actorRole {
		return nil, types.ErrForbidden
	}
	return series, nil
}

func (s *TestSeriesServiceImpl) Create(ctx context.Context, actorID uuid.UUID, actorRole types.Role, params types.CreateTestSeriesParams) (*types.TestSeries, error) {
	ctx, span := otel.Tracer("TestSeriesService").Start(ctx, "Create", trace.WithAttributes(
		attribute.String("actor.role", string(actorRole)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Create"), slog.String("actorID", actorID.String()))

	// Only admins and faculty author test series.
	if actorRole != types.RoleAdmin && actorRole != types.RoleFaculty {
		return nil, types.ErrForbidden
	}

	series := &types.TestSeries{
		Title:           params.Title,
		Description:     params.Description,
		Subject:         params.Subject,
		DurationMinutes: params.DurationMinutes,
		Price:           params.Price,
		CreatedBy:       actorID,
		CreatedByModel:  actorRole,
	}

	id, err := s.repo.Insert(ctx, series)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create test series", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "test series insert failed")
		return nil, fmt.Errorf("error creating test series: %w", err)
	}
	series.ID = id

	l.InfoContext(ctx, "Test series created", slog.String("seriesID", id.String()))
	return series, nil
}

func (s *TestSeriesServiceImpl) ListMine(ctx context.Context, actorID uuid.UUID, actorRole types.Role) ([]types.TestSeries, error) {
	series, err := s.repo.ListByCreator(ctx, actorID, actorRole)
	if err != nil {
		return nil, fmt.Errorf("error listing test series: %w", err)
	}
	return series, nil
}

func (s *TestSeriesServiceImpl) Get(ctx context.Context, actorID uuid.UUID, actorRole types.Role, seriesID uuid.UUID) (*types.TestSeries, error) {
	series, err := s.authorize(ctx, actorID, actorRole, seriesID)
	if err != nil {
		return nil, err
	}

	questions, err := s.repo.ListQuestions(ctx, seriesID)
	if err != nil {
		return nil, fmt.Errorf("error listing questions: %w", err)
	}
	series.Questions = questions
	return series, nil
}

func (s *TestSeriesServiceImpl) AddQuestion(ctx context.Context, actorID uuid.UUID, actorRole types.Role, seriesID uuid.UUID, params types.AddQuestionParams) (*types.Question, error) {
	l := s.logger.With(slog.String("method", "AddQuestion"), slog.String("seriesID", seriesID.String()))

	if _, err := s.authorize(ctx, actorID, actorRole, seriesID); err != nil {
		return nil, err
	}

	marks := params.Marks
	if marks == 0 {
		marks = 1
	}
	question := &types.Question{
		TestSeriesID:  seriesID,
		QuestionText:  params.QuestionText,
		Options:       params.Options,
		CorrectAnswer: params.CorrectAnswer,
		Explanation:   params.Explanation,
		Marks:         marks,
		NegativeMarks: params.NegativeMarks,
	}

	id, err := s.repo.InsertQuestion(ctx, question)
	if err != nil {
		l.ErrorContext(ctx, "Failed to add question", slog.Any("error", err))
		return nil, fmt.Errorf("error adding question: %w", err)
	}
	question.ID = id

	l.InfoContext(ctx, "Question added", slog.String("questionID", id.String()))
	return question, nil
}

func (s *TestSeriesServiceImpl) DeleteQuestion(ctx context.Context, actorID uuid.UUID, actorRole types.Role, seriesID, questionID uuid.UUID) error {
	if _, err := s.authorize(ctx, actorID, actorRole, seriesID); err != nil {
		return err
	}

	// A concurrent delete of the same question surfaces as NotFound here,
	// never as corrupted state.
	if err := s.repo.DeleteQuestion(ctx, seriesID, questionID); err != nil {
		return err
	}
	return nil
}

func (s *TestSeriesServiceImpl) Delete(ctx context.Context, actorID uuid.UUID, actorRole types.Role, seriesID uuid.UUID) error {
	l := s.logger.With(slog.String("method", "Delete"), slog.String("seriesID", seriesID.String()))

	if _, err := s.authorize(ctx, actorID, actorRole, seriesID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, seriesID); err != nil {
		return err
	}

	l.InfoContext(ctx, "Test series deleted")
	return nil
}
