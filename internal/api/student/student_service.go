package student

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/examhub/examhub-api/app/uploads"
	"github.com/examhub/examhub-api/internal/api/auth"
	"github.com/examhub/examhub-api/internal/types"
)

var _ StudentService = (*StudentServiceImpl)(nil)

// StudentService covers self-service registration and the student's own
// profile.
type StudentService interface {
	// Register creates a student account. The email only needs to be free
	// within the student partition; types.ErrDuplicateEmail otherwise.
	Register(ctx context.Context, req RegisterRequest) (*types.Identity, error)

	GetProfile(ctx context.Context, id uuid.UUID) (*types.Identity, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, params types.UpdateIdentityParams) (*types.Identity, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, fileHeader *multipart.FileHeader) (string, error)
}

type StudentServiceImpl struct {
	logger *slog.Logger
	repo   auth.IdentityRepo
	store  uploads.Store
}

func NewStudentService(repo auth.IdentityRepo, store uploads.Store, logger *slog.Logger) *StudentServiceImpl {
	return &StudentServiceImpl{
		logger: logger,
		repo:   repo,
		store:  store,
	}
}

func (s *StudentServiceImpl) Register(ctx context.Context, req RegisterRequest) (*types.Identity, error) {
	ctx, span := otel.Tracer("StudentService").Start(ctx, "Register")
	defer span.End()

	l := s.logger.With(slog.String("method", "Register"))

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	identity := &types.Identity{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         types.RoleStudent,
	}

	id, err := s.repo.Insert(ctx, identity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "student insert failed")
		return nil, err
	}

	l.InfoContext(ctx, "Student registered", slog.String("studentID", id.String()))
	return s.repo.GetByID(ctx, types.RoleStudent, id)
}

func (s *StudentServiceImpl) GetProfile(ctx context.Context, id uuid.UUID) (*types.Identity, error) {
	return s.repo.GetByID(ctx, types.RoleStudent, id)
}

func (s *StudentServiceImpl) UpdateProfile(ctx context.Context, id uuid.UUID, params types.UpdateIdentityParams) (*types.Identity, error) {
	if err := s.repo.UpdateProfile(ctx, types.RoleStudent, id, params); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, types.RoleStudent, id)
}

func (s *StudentServiceImpl) UpdateAvatar(ctx context.Context, id uuid.UUID, fileHeader *multipart.FileHeader) (string, error) {
	path, err := s.store.SaveAvatar(types.RoleStudent, fileHeader)
	if err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}
	if err := s.repo.UpdateAvatar(ctx, types.RoleStudent, id, path); err != nil {
		return "", err
	}
	return path, nil
}
