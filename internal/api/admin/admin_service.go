package admin

import (
	"context"
	"errors"
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

var _ AdminService = (*AdminServiceImpl)(nil)

// AdminService covers the admin bootstrap flow and an admin's own profile.
type AdminService interface {
	Exists(ctx context.Context) (bool, error)

	// CreateFirstAdmin bootstraps the initial admin. It is rejected with
	// types.ErrForbidden once any admin exists; after that, new admins come
	// through CreateAdmin only.
	CreateFirstAdmin(ctx context.Context, req CreateFirstAdminRequest) (*types.Identity, error)

	// CreateAdmin creates another admin after re-verifying an existing
	// admin's credentials supplied in the request. Wrong credentials yield
	// types.ErrInvalidCredentials.
	CreateAdmin(ctx context.Context, req CreateAdminRequest) (*types.Identity, error)

	GetProfile(ctx context.Context, id uuid.UUID) (*types.Identity, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, params types.UpdateIdentityParams) (*types.Identity, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, fileHeader *multipart.FileHeader) (string, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type AdminServiceImpl struct {
	logger *slog.Logger
	repo   auth.IdentityRepo
	store  uploads.Store
}

func NewAdminService(repo auth.IdentityRepo, store uploads.Store, logger *slog.Logger) *AdminServiceImpl {
	return &AdminServiceImpl{
		logger: logger,
		repo:   repo,
		store:  store,
	}
}

func (s *AdminServiceImpl) Exists(ctx context.Context) (bool, error) {
	return s.repo.AdminExists(ctx)
}

func (s *AdminServiceImpl) insertAdmin(ctx context.Context, name, email, phone, password string) (*types.Identity, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	identity := &types.Identity{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         types.RoleAdmin,
	}

	id, err := s.repo.Insert(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, types.RoleAdmin, id)
}

func (s *AdminServiceImpl) CreateFirstAdmin(ctx context.Context, req CreateFirstAdminRequest) (*types.Identity, error) {
	ctx, span := otel.Tracer("AdminService").Start(ctx, "CreateFirstAdmin")
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateFirstAdmin"))

	exists, err := s.repo.AdminExists(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error checking for existing admins: %w", err)
	}
	if exists {
		l.WarnContext(ctx, "Bootstrap attempted with an admin already present")
		return nil, types.ErrForbidden
	}

	identity, err := s.insertAdmin(ctx, req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "first admin insert failed")
		return nil, err
	}

	l.InfoContext(ctx, "First admin created", slog.String("adminID", identity.ID.String()))
	return identity, nil
}

func (s *AdminServiceImpl) CreateAdmin(ctx context.Context, req CreateAdminRequest) (*types.Identity, error) {
	ctx, span := otel.Tracer("AdminService").Start(ctx, "CreateAdmin")
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateAdmin"))

	existing, err := s.repo.GetByEmail(ctx, types.RoleAdmin, req.AdminEmail)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.ErrInvalidCredentials
		}
		span.RecordError(err)
		return nil, fmt.Errorf("error verifying admin credentials: %w", err)
	}
	if !auth.VerifyPassword(req.AdminPassword, existing.PasswordHash) {
		l.WarnContext(ctx, "Admin credential re-verification failed")
		return nil, types.ErrInvalidCredentials
	}

	identity, err := s.insertAdmin(ctx, req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "admin insert failed")
		return nil, err
	}

	l.InfoContext(ctx, "Admin created",
		slog.String("adminID", identity.ID.String()),
		slog.String("createdBy", existing.ID.String()))
	return identity, nil
}

func (s *AdminServiceImpl) GetProfile(ctx context.Context, id uuid.UUID) (*types.Identity, error) {
	return s.repo.GetByID(ctx, types.RoleAdmin, id)
}

func (s *AdminServiceImpl) UpdateProfile(ctx context.Context, id uuid.UUID, params types.UpdateIdentityParams) (*types.Identity, error) {
	if err := s.repo.UpdateProfile(ctx, types.RoleAdmin, id, params); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, types.RoleAdmin, id)
}

func (s *AdminServiceImpl) UpdateAvatar(ctx context.Context, id uuid.UUID, fileHeader *multipart.FileHeader) (string, error) {
	path, err := s.store.SaveAvatar(types.RoleAdmin, fileHeader)
	if err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}
	if err := s.repo.UpdateAvatar(ctx, types.RoleAdmin, id, path); err != nil {
		return "", err
	}
	return path, nil
}

func (s *AdminServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, types.RoleAdmin, id)
}
