package admin

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/examhub/examhub-api/internal/api/auth"
	"github.com/examhub/examhub-api/internal/types"
)

// mockIdentityRepo is a mock implementation of auth.IdentityRepo
type mockIdentityRepo struct {
	mock.Mock
}

func (m *mockIdentityRepo) GetByEmail(ctx context.Context, role types.Role, email string) (*types.Identity, error) {
	args := m.Called(ctx, role, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Identity), args.Error(1)
}

func (m *mockIdentityRepo) GetByID(ctx context.Context, role types.Role, id uuid.UUID) (*types.Identity, error) {
	args := m.Called(ctx, role, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Identity), args.Error(1)
}

func (m *mockIdentityRepo) GetByResetToken(ctx context.Context, role types.Role, token string) (*types.Identity, error) {
	args := m.Called(ctx, role, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Identity), args.Error(1)
}

func (m *mockIdentityRepo) Insert(ctx context.Context, identity *types.Identity) (uuid.UUID, error) {
	args := m.Called(ctx, identity)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockIdentityRepo) UpdateProfile(ctx context.Context, role types.Role, id uuid.UUID, params types.UpdateIdentityParams) error {
	args := m.Called(ctx, role, id, params)
	return args.Error(0)
}

func (m *mockIdentityRepo) UpdatePassword(ctx context.Context, role types.Role, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, role, id, passwordHash)
	return args.Error(0)
}

func (m *mockIdentityRepo) SetResetToken(ctx context.Context, role types.Role, id uuid.UUID, token string, expiry time.Time) error {
	args := m.Called(ctx, role, id, token, expiry)
	return args.Error(0)
}

func (m *mockIdentityRepo) UpdateAvatar(ctx context.Context, role types.Role, id uuid.UUID, avatarPath string) error {
	args := m.Called(ctx, role, id, avatarPath)
	return args.Error(0)
}

func (m *mockIdentityRepo) ListByRole(ctx context.Context, role types.Role) ([]types.Identity, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Identity), args.Error(1)
}

func (m *mockIdentityRepo) Delete(ctx context.Context, role types.Role, id uuid.UUID) error {
	args := m.Called(ctx, role, id)
	return args.Error(0)
}

func (m *mockIdentityRepo) AdminExists(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

var _ auth.IdentityRepo = (*mockIdentityRepo)(nil)

func TestCreateFirstAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("BootstrapsWhenEmpty", func(t *testing.T) {
		mockRepo := new(mockIdentityRepo)
		service := NewAdminService(mockRepo, nil, slog.Default())

		adminID := uuid.New()
		mockRepo.On("AdminExists", ctx).Return(false, nil).Once()
		mockRepo.On("Insert", ctx, mock.MatchedBy(func(i *types.Identity) bool {
			return i.Role == types.RoleAdmin && i.Email == "root@exam.test" &&
				i.PasswordHash != "bootstrap-password"
		})).Return(adminID, nil).Once()
		mockRepo.On("GetByID", ctx, types.RoleAdmin, adminID).
			Return(&types.Identity{ID: adminID, Email: "root@exam.test", Role: types.RoleAdmin}, nil).Once()

		identity, err := service.CreateFirstAdmin(ctx, CreateFirstAdminRequest{
			Name:     "Root",
			Email:    "root@exam.test",
			Password: "bootstrap-password",
		})
		require.NoError(t, err)
		assert.Equal(t, adminID, identity.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("RejectedOnceAnAdminExists", func(t *testing.T) {
		mockRepo := new(mockIdentityRepo)
		service := NewAdminService(mockRepo, nil, slog.Default())

		mockRepo.On("AdminExists", ctx).Return(true, nil).Once()

		_, err := service.CreateFirstAdmin(ctx, CreateFirstAdminRequest{
			Name:     "Sneaky",
			Email:    "sneaky@exam.test",
			Password: "whatever",
		})
		assert.True(t, errors.Is(err, types.ErrForbidden))
		mockRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})
}

func TestCreateAdmin(t *testing.T) {
	ctx := context.Background()

	existingHash, err := auth.HashPassword("existing-password")
	require.NoError(t, err)
	existing := &types.Identity{
		ID:           uuid.New(),
		Email:        "root@exam.test",
		PasswordHash: existingHash,
		Role:         types.RoleAdmin,
	}

	t.Run("VerifiesExistingAdmin", func(t *testing.T) {
		mockRepo := new(mockIdentityRepo)
		service := NewAdminService(mockRepo, nil, slog.Default())

		newID := uuid.New()
		mockRepo.On("GetByEmail", ctx, types.RoleAdmin, "root@exam.test").Return(existing, nil).Once()
		mockRepo.On("Insert", ctx, mock.AnythingOfType("*types.Identity")).Return(newID, nil).Once()
		mockRepo.On("GetByID", ctx, types.RoleAdmin, newID).
			Return(&types.Identity{ID: newID, Role: types.RoleAdmin}, nil).Once()

		identity, err := service.CreateAdmin(ctx, CreateAdminRequest{
			Name:          "Second Admin",
			Email:         "second@exam.test",
			Password:      "second-password",
			AdminEmail:    "root@exam.test",
			AdminPassword: "existing-password",
		})
		require.NoError(t, err)
		assert.Equal(t, newID, identity.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("WrongAdminPassword", func(t *testing.T) {
		mockRepo := new(mockIdentityRepo)
		service := NewAdminService(mockRepo, nil, slog.Default())

		mockRepo.On("GetByEmail", ctx, types.RoleAdmin, "root@exam.test").Return(existing, nil).Once()

		_, err := service.CreateAdmin(ctx, CreateAdminRequest{
			Name:          "Second Admin",
			Email:         "second@exam.test",
			Password:      "second-password",
			AdminEmail:    "root@exam.test",
			AdminPassword: "guessed-password",
		})
		assert.True(t, errors.Is(err, types.ErrInvalidCredentials))
		mockRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("UnknownAdminEmail", func(t *testing.T) {
		mockRepo := new(mockIdentityRepo)
		service := NewAdminService(mockRepo, nil, slog.Default())

		mockRepo.On("GetByEmail", ctx, types.RoleAdmin, "ghost@exam.test").
			Return(nil, types.ErrNotFound).Once()

		_, err := service.CreateAdmin(ctx, CreateAdminRequest{
			Name:          "Second Admin",
			Email:         "second@exam.test",
			Password:      "second-password",
			AdminEmail:    "ghost@exam.test",
			AdminPassword: "anything",
		})
		assert.True(t, errors.Is(err, types.ErrInvalidCredentials))
	})
}
