package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/examhub/examhub-api/internal/api"
	"github.com/examhub/examhub-api/internal/types"
)

var _ IdentityRepo = (*PostgresIdentityRepo)(nil)

// IdentityRepo is the credential store: durable lookup/insert/update of
// identity records, partitioned by role. Each partition is its own table;
// no cross-partition transaction guarantee is given or needed.
type IdentityRepo interface {
	// GetByEmail returns the identity in the given partition, or
	// types.ErrNotFound.
	GetByEmail(ctx context.Context, role types.Role, email string) (*types.Identity, error)
	GetByID(ctx context.Context, role types.Role, id uuid.UUID) (*types.Identity, error)
	// GetByResetToken matches on the stored token only; expiry is the
	// service's concern.
	GetByResetToken(ctx context.Context, role types.Role, token string) (*types.Identity, error)

	// Insert persists a new identity in the partition given by its Role.
	// Fails with types.ErrDuplicateEmail when the email is already taken
	// in that partition.
	Insert(ctx context.Context, identity *types.Identity) (uuid.UUID, error)

	UpdateProfile(ctx context.Context, role types.Role, id uuid.UUID, params types.UpdateIdentityParams) error
	// UpdatePassword stores a new hash and clears any pending reset token.
	UpdatePassword(ctx context.Context, role types.Role, id uuid.UUID, passwordHash string) error
	SetResetToken(ctx context.Context, role types.Role, id uuid.UUID, token string, expiry time.Time) error
	UpdateAvatar(ctx context.Context, role types.Role, id uuid.UUID, avatarPath string) error

	ListByRole(ctx context.Context, role types.Role) ([]types.Identity, error)
	Delete(ctx context.Context, role types.Role, id uuid.UUID) error
	AdminExists(ctx context.Context) (bool, error)
}

type PostgresIdentityRepo struct {
	logger *slog.Logger
	pgpool api.PostgresPool
}

func NewPostgresIdentityRepo(pgpool api.PostgresPool, logger *slog.Logger) *PostgresIdentityRepo {
	return &PostgresIdentityRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

// tableFor maps a role tag to its partition table. Roles are validated at
// the boundary, so an unknown role here is a programming error.
func tableFor(role types.Role) string {
	switch role {
	case types.RoleAdmin:
		return "admins"
	case types.RoleFaculty:
		return "faculties"
	case types.RoleStudent:
		return "students"
	}
	panic(fmt.Sprintf("unknown role partition: %q", role))
}

func selectColumns(role types.Role) string {
	cols := "id, name, email, phone, password_hash, avatar_path, reset_token, reset_token_expiry, created_at, updated_at"
	switch role {
	case types.RoleFaculty:
		cols += ", specialization"
	case types.RoleStudent:
		cols += ", enrolled_tests"
	}
	return cols
}

func scanIdentity(row pgx.Row, role types.Role) (*types.Identity, error) {
	identity := types.Identity{Role: role}
	dest := []interface{}{
		&identity.ID, &identity.Name, &identity.Email, &identity.Phone,
		&identity.PasswordHash, &identity.AvatarPath,
		&identity.ResetToken, &identity.ResetTokenExpiry,
		&identity.CreatedAt, &identity.UpdatedAt,
	}
	switch role {
	case types.RoleFaculty:
		dest = append(dest, &identity.Specialization)
	case types.RoleStudent:
		dest = append(dest, &identity.EnrolledTests)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("%w: identity scan failed: %w", types.ErrUpstreamUnavailable, err)
	}
	return &identity, nil
}

func (r *PostgresIdentityRepo) GetByEmail(ctx context.Context, role types.Role, email string) (*types.Identity, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE email = $1", selectColumns(role), tableFor(role))
	return scanIdentity(r.pgpool.QueryRow(ctx, query, strings.ToLower(email)), role)
}

func (r *PostgresIdentityRepo) GetByID(ctx context.Context, role types.Role, id uuid.UUID) (*types.Identity, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", selectColumns(role), tableFor(role))
	return scanIdentity(r.pgpool.QueryRow(ctx, query, id), role)
}

func (r *PostgresIdentityRepo) GetByResetToken(ctx context.Context, role types.Role, token string) (*types.Identity, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE reset_token = $1", selectColumns(role), tableFor(role))
	return scanIdentity(r.pgpool.QueryRow(ctx, query, token), role)
}

func (r *PostgresIdentityRepo) Insert(ctx context.Context, identity *types.Identity) (uuid.UUID, error) {
	ctx, span := otel.Tracer("IdentityRepo").Start(ctx, "Insert", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", tableFor(identity.Role)),
	))
	defer span.End()

	var query string
	var args []interface{}
	switch identity.Role {
	case types.RoleFaculty:
		specialization := ""
		if identity.Specialization != nil {
			specialization = *identity.Specialization
		}
		query = `INSERT INTO faculties (name, email, phone, password_hash, specialization)
		         VALUES ($1, $2, $3, $4, $5) RETURNING id`
		args = []interface{}{identity.Name, strings.ToLower(identity.Email), identity.Phone, identity.PasswordHash, specialization}
	default:
		query = fmt.Sprintf(`INSERT INTO %s (name, email, phone, password_hash)
		         VALUES ($1, $2, $3, $4) RETURNING id`, tableFor(identity.Role))
		args = []interface{}{identity.Name, strings.ToLower(identity.Email), identity.Phone, identity.PasswordHash}
	}

	var id uuid.UUID
	err := r.pgpool.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uuid.Nil, types.ErrDuplicateEmail
		}
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("%w: identity insert failed: %w", types.ErrUpstreamUnavailable, err)
	}
	return id, nil
}

func (r *PostgresIdentityRepo) UpdateProfile(ctx context.Context, role types.Role, id uuid.UUID, params types.UpdateIdentityParams) error {
	var setClauses []string
	var args []interface{}
	argID := 1

	if params.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argID))
		args = append(args, *params.Name)
		argID++
	}
	if params.Phone != nil {
		setClauses = append(setClauses, fmt.Sprintf("phone = $%d", argID))
		args = append(args, *params.Phone)
		argID++
	}
	if params.Specialization != nil && role == types.RoleFaculty {
		setClauses = append(setClauses, fmt.Sprintf("specialization = $%d", argID))
		args = append(args, *params.Specialization)
		argID++
	}

	if len(setClauses) == 0 {
		r.logger.WarnContext(ctx, "UpdateProfile called with no fields to update", slog.String("role", string(role)))
		return nil
	}

	setClauses = append(setClauses, "updated_at = now()")
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", tableFor(role), strings.Join(setClauses, ", "), argID)
	args = append(args, id)

	tag, err := r.pgpool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: profile update failed: %w", types.ErrUpstreamUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *PostgresIdentityRepo) UpdatePassword(ctx context.Context, role types.Role, id uuid.UUID, passwordHash string) error {
	query := fmt.Sprintf(`UPDATE %s
	    SET password_hash = $1, reset_token = NULL, reset_token_expiry = NULL, updated_at = now()
	    WHERE id = $2`, tableFor(role))
	tag, err := r.pgpool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("%w: password update failed: %w", types.ErrUpstreamUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

// SetResetToken overwrites any pending token; the last writer wins, which is
// the desired behavior: only the most recently mailed token should be valid.
func (r *PostgresIdentityRepo) SetResetToken(ctx context.Context, role types.Role, id uuid.UUID, token string, expiry time.Time) error {
	query := fmt.Sprintf(`UPDATE %s
	    SET reset_token = $1, reset_token_expiry = $2, updated_at = now()
	    WHERE id = $3`, tableFor(role))
	tag, err := r.pgpool.Exec(ctx, query, token, expiry, id)
	if err != nil {
		return fmt.Errorf("%w: reset token update failed: %w", types.ErrUpstreamUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *PostgresIdentityRepo) UpdateAvatar(ctx context.Context, role types.Role, id uuid.UUID, avatarPath string) error {
	query := fmt.Sprintf("UPDATE %s SET avatar_path = $1, updated_at = now() WHERE id = $2", tableFor(role))
	tag, err := r.pgpool.Exec(ctx, query, avatarPath, id)
	if err != nil {
		return fmt.Errorf("%w: avatar update failed: %w", types.ErrUpstreamUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *PostgresIdentityRepo) ListByRole(ctx context.Context, role types.Role) ([]types.Identity, error) {
	ctx, span := otel.Tracer("IdentityRepo").Start(ctx, "ListByRole", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", tableFor(role)),
	))
	defer span.End()

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at DESC", selectColumns(role), tableFor(role))
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: identity list failed: %w", types.ErrUpstreamUnavailable, err)
	}
	defer rows.Close()

	var identities []types.Identity
	for rows.Next() {
		identity, err := scanIdentity(rows, role)
		if err != nil {
			return nil, err
		}
		identities = append(identities, *identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: identity list iteration failed: %w", types.ErrUpstreamUnavailable, err)
	}
	return identities, nil
}

func (r *PostgresIdentityRepo) Delete(ctx context.Context, role types.Role, id uuid.UUID) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", tableFor(role))
	tag, err := r.pgpool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%w: identity delete failed: %w", types.ErrUpstreamUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *PostgresIdentityRepo) AdminExists(ctx context.Context) (bool, error) {
	var exists bool
	err := r.pgpool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM admins)").Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: admin existence check failed: %w", types.ErrUpstreamUnavailable, err)
	}
	return exists, nil
}
