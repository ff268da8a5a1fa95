package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/examhub/examhub-api/app/mail"
	"github.com/examhub/examhub-api/config"
	"github.com/examhub/examhub-api/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService defines the business logic contract for authentication and
// the password reset flow.
type AuthService interface {
	// Login verifies credentials across the three role partitions and
	// returns a session token plus the matched identity. Unknown email and
	// wrong password are indistinguishable: both yield
	// types.ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (string, *types.Identity, error)

	// RequestPasswordReset generates and stores a single-use reset token
	// and dispatches the reset mail. It never reveals whether the email
	// matched an identity: callers get nil either way, and mail dispatch
	// failure is deliberately non-fatal (the token stays persisted).
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword consumes a reset token: valid only while unexpired and
	// matching the stored value. On success the new password is hashed,
	// persisted, and the token cleared, making it single-use.
	ResetPassword(ctx context.Context, role types.Role, token, newPassword string) error

	// GetIdentity resolves the identity behind validated token claims.
	GetIdentity(ctx context.Context, role types.Role, id uuid.UUID) (*types.Identity, error)
}

// loginScanOrder is the partition scan order on login and forgot-password,
// matching first-match semantics: an email present in two partitions
// resolves to the earlier one.
var loginScanOrder = []types.Role{types.RoleAdmin, types.RoleFaculty, types.RoleStudent}

type AuthServiceImpl struct {
	logger *slog.Logger
	repo   IdentityRepo
	issuer *TokenIssuer
	mailer mail.Sender
	cfg    config.ResetConfig
	now    func() time.Time
}

func NewAuthService(repo IdentityRepo, issuer *TokenIssuer, mailer mail.Sender, cfg config.ResetConfig, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger: logger,
		repo:   repo,
		issuer: issuer,
		mailer: mailer,
		cfg:    cfg,
		now:    time.Now,
	}
}

// HashPassword derives a one-way bcrypt hash. All writes of a plaintext
// password field must pass through here before persistence.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext candidate against a stored hash.
func VerifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, *types.Identity, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()

	l := s.logger.With(slog.String("method", "Login"))

	for _, role := range loginScanOrder {
		identity, err := s.repo.GetByEmail(ctx, role, email)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				continue
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "credential lookup failed")
			return "", nil, fmt.Errorf("error looking up credentials: %w", err)
		}

		if !VerifyPassword(password, identity.PasswordHash) {
			l.WarnContext(ctx, "Password mismatch", slog.String("role", string(role)))
			continue
		}

		token, err := s.issuer.Issue(identity.ID, identity.Role)
		if err != nil {
			span.RecordError(err)
			return "", nil, fmt.Errorf("error issuing session token: %w", err)
		}

		l.InfoContext(ctx, "Login successful", slog.String("role", string(role)))
		span.SetAttributes(attribute.String("identity.role", string(role)))
		return token, identity, nil
	}

	// Uniform failure: no hint whether the email exists anywhere.
	return "", nil, types.ErrInvalidCredentials
}

// generateResetToken returns 20 bytes of cryptographically secure
// randomness, hex-encoded; enough to resist guessing within the validity
// window.
func generateResetToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *AuthServiceImpl) RequestPasswordReset(ctx context.Context, email string) error {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "RequestPasswordReset")
	defer span.End()

	l := s.logger.With(slog.String("method", "RequestPasswordReset"))

	var identity *types.Identity
	for _, role := range loginScanOrder {
		found, err := s.repo.GetByEmail(ctx, role, email)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				continue
			}
			span.RecordError(err)
			return fmt.Errorf("error looking up identity: %w", err)
		}
		identity = found
		break
	}
	if identity == nil {
		// Same outward behavior as a hit, to avoid user enumeration.
		l.DebugContext(ctx, "Reset requested for unknown email")
		return nil
	}

	token, err := generateResetToken()
	if err != nil {
		return err
	}

	ttl := s.cfg.TokenTTL
	if ttl == 0 {
		ttl = time.Hour
	}
	expiry := s.now().Add(ttl)

	if err := s.repo.SetResetToken(ctx, identity.Role, identity.ID, token, expiry); err != nil {
		span.RecordError(err)
		return fmt.Errorf("error storing reset token: %w", err)
	}

	// Dispatch failure is not rolled back: the token is already persisted
	// and stays usable until expiry even if the mail never arrives.
	msg := mail.Message{
		To:      identity.Email,
		Subject: "Password Reset Request",
		Body:    s.resetMailBody(token, identity.Role),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		l.WarnContext(ctx, "Reset mail dispatch failed", slog.Any("error", err))
	}

	l.InfoContext(ctx, "Reset token issued", slog.String("role", string(identity.Role)))
	return nil
}

func (s *AuthServiceImpl) resetMailBody(token string, role types.Role) string {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s&type=%s", s.cfg.FrontendURL, token, role)
	return fmt.Sprintf(`<p>You requested a password reset for your %s account.</p>
<p>Click the link below to reset your password:</p>
<a href="%s">%s</a>
<p>This link will expire in 1 hour.</p>
<p>If you didn't request this, please ignore this email.</p>`, role, resetURL, resetURL)
}

func (s *AuthServiceImpl) ResetPassword(ctx context.Context, role types.Role, token, newPassword string) error {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "ResetPassword", trace.WithAttributes(
		attribute.String("identity.role", string(role)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "ResetPassword"), slog.String("role", string(role)))

	identity, err := s.repo.GetByResetToken(ctx, role, token)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return types.ErrInvalidOrExpiredToken
		}
		span.RecordError(err)
		return fmt.Errorf("error looking up reset token: %w", err)
	}

	if identity.ResetToken == nil || *identity.ResetToken != token {
		return types.ErrInvalidOrExpiredToken
	}
	if identity.ResetTokenExpiry == nil || !s.now().Before(*identity.ResetTokenExpiry) {
		l.WarnContext(ctx, "Expired reset token presented")
		return types.ErrInvalidOrExpiredToken
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	// UpdatePassword clears the reset fields in the same statement, so the
	// token cannot be replayed.
	if err := s.repo.UpdatePassword(ctx, role, identity.ID, hash); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "password update failed")
		return fmt.Errorf("error updating password: %w", err)
	}

	l.InfoContext(ctx, "Password reset completed")
	return nil
}

func (s *AuthServiceImpl) GetIdentity(ctx context.Context, role types.Role, id uuid.UUID) (*types.Identity, error) {
	identity, err := s.repo.GetByID(ctx, role, id)
	if err != nil {
		return nil, fmt.Errorf("error fetching identity: %w", err)
	}
	return identity, nil
}
