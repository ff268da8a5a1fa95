package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examhub/examhub-api/internal/types"
)

func newMockRepo(t *testing.T) (*PostgresIdentityRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return NewPostgresIdentityRepo(mockPool, slog.Default()), mockPool
}

func adminColumns() []string {
	return []string{
		"id", "name", "email", "phone", "password_hash",
		"avatar_path", "reset_token", "reset_token_expiry",
		"created_at", "updated_at",
	}
}

func TestPostgresIdentityRepo_GetByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		id := uuid.New()
		now := time.Now()
		mockPool.ExpectQuery("SELECT (.+) FROM admins WHERE email = \\$1").
			WithArgs("admin@exam.test").
			WillReturnRows(pgxmock.NewRows(adminColumns()).
				AddRow(id, "Root Admin", "admin@exam.test", "123456", "$2a$10$hash",
					nil, nil, nil, now, now))

		identity, err := repo.GetByEmail(ctx, types.RoleAdmin, "admin@exam.test")
		require.NoError(t, err)
		assert.Equal(t, id, identity.ID)
		assert.Equal(t, types.RoleAdmin, identity.Role)
		assert.Nil(t, identity.ResetToken)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("LowercasesEmail", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		mockPool.ExpectQuery("SELECT (.+) FROM admins WHERE email = \\$1").
			WithArgs("admin@exam.test").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByEmail(ctx, types.RoleAdmin, "Admin@Exam.Test")
		assert.True(t, errors.Is(err, types.ErrNotFound))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		mockPool.ExpectQuery("SELECT (.+) FROM students WHERE email = \\$1").
			WithArgs("nobody@exam.test").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByEmail(ctx, types.RoleStudent, "nobody@exam.test")
		assert.True(t, errors.Is(err, types.ErrNotFound))
	})
}

func TestPostgresIdentityRepo_Insert(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		id := uuid.New()
		mockPool.ExpectQuery("INSERT INTO students").
			WithArgs("Kid", "kid@exam.test", "123456", "$2a$10$hash").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))

		got, err := repo.Insert(ctx, &types.Identity{
			Name:         "Kid",
			Email:        "Kid@Exam.Test",
			Phone:        "123456",
			PasswordHash: "$2a$10$hash",
			Role:         types.RoleStudent,
		})
		require.NoError(t, err)
		assert.Equal(t, id, got)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		mockPool.ExpectQuery("INSERT INTO students").
			WithArgs("Kid", "kid@exam.test", "123456", "$2a$10$hash").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "students_email_key"})

		_, err := repo.Insert(ctx, &types.Identity{
			Name:         "Kid",
			Email:        "kid@exam.test",
			Phone:        "123456",
			PasswordHash: "$2a$10$hash",
			Role:         types.RoleStudent,
		})
		assert.True(t, errors.Is(err, types.ErrDuplicateEmail))
	})

	t.Run("FacultyCarriesSpecialization", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		id := uuid.New()
		spec := "Mathematics"
		mockPool.ExpectQuery("INSERT INTO faculties").
			WithArgs("Prof", "prof@exam.test", "123456", "$2a$10$hash", spec).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))

		got, err := repo.Insert(ctx, &types.Identity{
			Name:           "Prof",
			Email:          "prof@exam.test",
			Phone:          "123456",
			PasswordHash:   "$2a$10$hash",
			Role:           types.RoleFaculty,
			Specialization: &spec,
		})
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})
}

func TestPostgresIdentityRepo_UpdatePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("ClearsResetTokenInSameStatement", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		id := uuid.New()
		mockPool.ExpectExec("UPDATE students\\s+SET password_hash = \\$1, reset_token = NULL, reset_token_expiry = NULL").
			WithArgs("$2a$10$newhash", id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdatePassword(ctx, types.RoleStudent, id, "$2a$10$newhash")
		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("MissingIdentity", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		id := uuid.New()
		mockPool.ExpectExec("UPDATE students").
			WithArgs("$2a$10$newhash", id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdatePassword(ctx, types.RoleStudent, id, "$2a$10$newhash")
		assert.True(t, errors.Is(err, types.ErrNotFound))
	})
}

func TestPostgresIdentityRepo_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("PartialUpdate", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		id := uuid.New()
		name := "New Name"
		mockPool.ExpectExec("UPDATE faculties SET name = \\$1, updated_at = now\\(\\) WHERE id = \\$2").
			WithArgs(name, id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateProfile(ctx, types.RoleFaculty, id, types.UpdateIdentityParams{Name: &name})
		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NoFieldsIsNoOp", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		err := repo.UpdateProfile(ctx, types.RoleFaculty, uuid.New(), types.UpdateIdentityParams{})
		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("SpecializationIgnoredOutsideFaculty", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		id := uuid.New()
		spec := "Physics"
		phone := "999"
		mockPool.ExpectExec("UPDATE students SET phone = \\$1, updated_at = now\\(\\) WHERE id = \\$2").
			WithArgs(phone, id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateProfile(ctx, types.RoleStudent, id, types.UpdateIdentityParams{
			Phone:          &phone,
			Specialization: &spec,
		})
		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresIdentityRepo_AdminExists(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		mockPool.ExpectQuery("SELECT EXISTS").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		exists, err := repo.AdminExists(ctx)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Populated", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		mockPool.ExpectQuery("SELECT EXISTS").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := repo.AdminExists(ctx)
		require.NoError(t, err)
		assert.True(t, exists)
	})
}

func TestTableFor_UnknownRolePanics(t *testing.T) {
	assert.Panics(t, func() { tableFor(types.Role("superuser")) })
}
