package testseries

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/examhub/examhub-api/internal/types"
)

// MockTestSeriesRepo is a mock implementation of the TestSeriesRepo interface
type MockTestSeriesRepo struct {
	mock.Mock
}

func (m *MockTestSeriesRepo) Insert(ctx context.Context, series *types.TestSeries) (uuid.UUID, error) {
	args := m.Called(ctx, series)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTestSeriesRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.TestSeries, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TestSeries), args.Error(1)
}

func (m *MockTestSeriesRepo) ListByCreator(ctx context.Context, creatorID uuid.UUID, creatorRole types.Role) ([]types.TestSeries, error) {
	args := m.Called(ctx, creatorID, creatorRole)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.TestSeries), args.Error(1)
}

func (m *MockTestSeriesRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTestSeriesRepo) InsertQuestion(ctx context.Context, question *types.Question) (uuid.UUID, error) {
	args := m.Called(ctx, question)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTestSeriesRepo) ListQuestions(ctx context.Context, seriesID uuid.UUID) ([]types.Question, error) {
	args := m.Called(ctx, seriesID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Question), args.Error(1)
}

func (m *MockTestSeriesRepo) DeleteQuestion(ctx context.Context, seriesID, questionID uuid.UUID) error {
	args := m.Called(ctx, seriesID, questionID)
	return args.Error(0)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("FacultyCreates", func(t *testing.T) {
		mockRepo := new(MockTestSeriesRepo)
		service := NewTestSeriesService(mockRepo, slog.Default())

		facultyID := uuid.New()
		seriesID := uuid.New()
		mockRepo.On("Insert", ctx, mock.MatchedBy(func(s *types.TestSeries) bool {
			return s.CreatedBy == facultyID && s.CreatedByModel == types.RoleFaculty
		})).Return(seriesID, nil).Once()

		series, err := service.Create(ctx, facultyID, types.RoleFaculty, types.CreateTestSeriesParams{
			Title:           "Algebra Mock 1",
			Subject:         "Mathematics",
			DurationMinutes: 90,
		})
		require.NoError(t, err)
		assert.Equal(t, seriesID, series.ID)
		assert.Equal(t, facultyID, series.CreatedBy)
		assert.Equal(t, types.RoleFaculty, series.CreatedByModel)
		mockRepo.AssertExpectations(t)
	})

	t.Run("StudentCannotCreate", func(t *testing.T) {
		mockRepo := new(MockTestSeriesRepo)
		service := NewTestSeriesService(mockRepo, slog.Default())

		_, err := service.Create(ctx, uuid.New(), types.RoleStudent, types.CreateTestSeriesParams{
			Title:           "Nope",
			Subject:         "Anything",
			DurationMinutes: 10,
		})
		assert.True(t, errors.Is(err, types.ErrForbidden))
		mockRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})
}

func TestOwnership(t *testing.T) {
	ctx := context.Background()

	ownerID := uuid.New()
	seriesID := uuid.New()
	series := &types.TestSeries{
		ID:             seriesID,
		Title:          "Physics Mock 2",
		CreatedBy:      ownerID,
		CreatedByModel: types.RoleFaculty,
	}

	t.Run("OwnerReads", func(t *testing.T) {
		mockRepo := new(MockTestSeriesRepo)
		service := NewTestSeriesService(mockRepo, slog.Default())

		mockRepo.On("GetByID", ctx, seriesID).Return(series, nil).Once()
		mockRepo.On("ListQuestions", ctx, seriesID).Return([]types.Question{}, nil).Once()

		got, err := service.Get(ctx, ownerID, types.RoleFaculty, seriesID)
		require.NoError(t, err)
		assert.Equal(t, seriesID, got.ID)
	})

	t.Run("OtherFacultyForbidden", func(t *testing.T) {
		mockRepo := new(MockTestSeriesRepo)
		service := NewTestSeriesService(mockRepo, slog.Default())

		mockRepo.On("GetByID", ctx, seriesID).Return(series, nil).Once()

		_, err := service.Get(ctx, uuid.New(), types.RoleFaculty, seriesID)
		assert.True(t, errors.Is(err, types.ErrForbidden))
	})

	t.Run("SameIDDifferentRoleForbidden", func(t *testing.T) {
		// The ownership check matches on both creator id and role tag, so
		// an id collision across partitions still fails.
		mockRepo := new(MockTestSeriesRepo)
		service := NewTestSeriesService(mockRepo, slog.Default())

		mockRepo.On("GetByID", ctx, seriesID).Return(series, nil).Once()

		_, err := service.Get(ctx, ownerID, types.RoleAdmin, seriesID)
		assert.True(t, errors.Is(err, types.ErrForbidden))
	})

	t.Run("AdminDoesNotBypassOwnership", func(t *testing.T) {
		mockRepo := new(MockTestSeriesRepo)
		service := NewTestSeriesService(mockRepo, slog.Default())

		mockRepo.On("GetByID", ctx, seriesID).Return(series, nil).Once()

		err := service.Delete(ctx, uuid.New(), types.RoleAdmin, seriesID)
		assert.True(t, errors.Is(err, types.ErrForbidden))
		mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("MissingSeriesIsNotFoundBeforeOwnership", func(t *testing.T) {
		mockRepo := new(MockTestSeriesRepo)
		service := NewTestSeriesService(mockRepo, slog.Default())

		missing := uuid.New()
		mockRepo.On("GetByID", ctx, missing).Return(nil, types.ErrNotFound).Once()

		_, err := service.Get(ctx, uuid.New(), types.RoleFaculty, missing)
		assert.True(t, errors.Is(err, types.ErrNotFound))
		assert.False(t, errors.Is(err, types.ErrForbidden))
	})
}

func TestAddQuestion(t *testing.T) {
	ctx := context.Background()

	ownerID := uuid.New()
	seriesID := uuid.New()
	series := &types.TestSeries{
		ID:             seriesID,
		CreatedBy:      ownerID,
		CreatedByModel: types.RoleAdmin,
	}

	t.Run("DefaultsMarksToOne", func(t *testing.T) {
		mockRepo := new(MockTestSeriesRepo)
		service := NewTestSeriesService(mockRepo, slog.Default())

		mockRepo.On("GetByID", ctx, seriesID).Return(series, nil).Once()
		mockRepo.On("InsertQuestion", ctx, mock.MatchedBy(func(q *types.Question) bool {
			return q.Marks == 1 && q.TestSeriesID == seriesID
		})).Return(uuid.New(), nil).Once()

		question, err := service.AddQuestion(ctx, ownerID, types.RoleAdmin, seriesID, types.AddQuestionParams{
			QuestionText:  "2 + 2 = ?",
			Options:       []string{"3", "4", "5"},
			CorrectAnswer: "4",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, question.Marks)
		mockRepo.AssertExpectations(t)
	})

	t.Run("NonOwnerForbidden", func(t *testing.T) {
		mockRepo := new(MockTestSeriesRepo)
		service := NewTestSeriesService(mockRepo, slog.Default())

		mockRepo.On("GetByID", ctx, seriesID).Return(series, nil).Once()

		_, err := service.AddQuestion(ctx, uuid.New(), types.RoleAdmin, seriesID, types.AddQuestionParams{
			QuestionText:  "2 + 2 = ?",
			Options:       []string{"3", "4"},
			CorrectAnswer: "4",
		})
		assert.True(t, errors.Is(err, types.ErrForbidden))
		mockRepo.AssertNotCalled(t, "InsertQuestion", mock.Anything, mock.Anything)
	})
}

func TestDeleteQuestion(t *testing.T) {
	ctx := context.Background()

	ownerID := uuid.New()
	seriesID := uuid.New()
	questionID := uuid.New()
	series := &types.TestSeries{
		ID:             seriesID,
		CreatedBy:      ownerID,
		CreatedByModel: types.RoleFaculty,
	}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockTestSeriesRepo)
		service := NewTestSeriesService(mockRepo, slog.Default())

		mockRepo.On("GetByID", ctx, seriesID).Return(series, nil).Once()
		mockRepo.On("DeleteQuestion", ctx, seriesID, questionID).Return(nil).Once()

		err := service.DeleteQuestion(ctx, ownerID, types.RoleFaculty, seriesID, questionID)
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("QuestionFromAnotherSeries", func(t *testing.T) {
		// The repository filters on (series id, question id); a question id
		// belonging to a different series comes back NotFound.
		mockRepo := new(MockTestSeriesRepo)
		service := NewTestSeriesService(mockRepo, slog.Default())

		mockRepo.On("GetByID", ctx, seriesID).Return(series, nil).Once()
		mockRepo.On("DeleteQuestion", ctx, seriesID, questionID).Return(types.ErrNotFound).Once()

		err := service.DeleteQuestion(ctx, ownerID, types.RoleFaculty, seriesID, questionID)
		assert.True(t, errors.Is(err, types.ErrNotFound))
	})
}

func TestListMine(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockTestSeriesRepo)
	service := NewTestSeriesService(mockRepo, slog.Default())

	creatorID := uuid.New()
	mockRepo.On("ListByCreator", ctx, creatorID, types.RoleFaculty).Return([]types.TestSeries{
		{ID: uuid.New(), Title: "Mock 1"},
		{ID: uuid.New(), Title: "Mock 2"},
	}, nil).Once()

	series, err := service.ListMine(ctx, creatorID, types.RoleFaculty)
	require.NoError(t, err)
	assert.Len(t, series, 2)
}
