package faculty

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

var _ FacultyService = (*FacultyServiceImpl)(nil)

// FacultyService covers faculty onboarding, the roster listing, and a
// faculty member's own profile.
type FacultyService interface {
	// Create registers a faculty account. Email uniqueness is scoped to
	// the faculty partition; types.ErrDuplicateEmail otherwise.
	Create(ctx context.Context, req CreateFacultyRequest) (*types.Identity, error)
	List(ctx context.Context) ([]types.Identity, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Identity, error)
	Update(ctx context.Context, id uuid.UUID, params types.UpdateIdentityParams) (*types.Identity, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateAvatar(ctx context.Context, id uuid.UUID, fileHeader *multipart.FileHeader) (string, error)
}

type FacultyServiceImpl struct {
	logger *slog.Logger
	repo   auth.IdentityRepo
	store  uploads.Store
}

func NewFacultyService(repo auth.IdentityRepo, store uploads.Store, logger *slog.Logger) *FacultyServiceImpl {
	return &FacultyServiceImpl{
		logger: logger,
		repo:   repo,
		store:  store,
	}
}

func (s *FacultyServiceImpl) Create(ctx context.Context, req CreateFacultyRequest) (*types.Identity, error) {
	ctx, span := otel.Tracer("FacultyService").Start(ctx, "Create")
	defer span.End()

	l := s.logger.With(slog.String("method", "Create"))

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	identity := &types.Identity{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         types.RoleFaculty,
	}
	if req.Specialization != "" {
		identity.Specialization = &req.Specialization
	}

	id, err := s.repo.Insert(ctx, identity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "faculty insert failed")
		return nil, err
	}

	l.InfoContext(ctx, "Faculty created", slog.String("facultyID", id.String()))
	return s.repo.GetByID(ctx, types.RoleFaculty, id)
}

func (s *FacultyServiceImpl) List(ctx context.Context) ([]types.Identity, error) {
	return s.repo.ListByRole(ctx, types.RoleFaculty)
}

func (s *FacultyServiceImpl) Get(ctx context.Context, id uuid.UUID) (*types.Identity, error) {
	return s.repo.GetByID(ctx, types.RoleFaculty, id)
}

func (s *FacultyServiceImpl) Update(ctx context.Context, id uuid.UUID, params types.UpdateIdentityParams) (*types.Identity, error) {
	if err := s.repo.UpdateProfile(ctx, types.RoleFaculty, id, params); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, types.RoleFaculty, id)
}

func (s *FacultyServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, types.RoleFaculty, id)
}

func (s *FacultyServiceImpl) UpdateAvatar(ctx context.Context, id uuid.UUID, fileHeader *multipart.FileHeader) (string, error) {
	path, err := s.store.SaveAvatar(types.RoleFaculty, fileHeader)
	if err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}
	if err := s.repo.UpdateAvatar(ctx, types.RoleFaculty, id, path); err != nil {
		return "", err
	}
	return path, nil
}
