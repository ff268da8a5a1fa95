package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/examhub/examhub-api/config"
	"github.com/examhub/examhub-api/internal/api"
	"github.com/examhub/examhub-api/internal/types"
)

// TokenIssuer mints and verifies the HS256 session tokens. Tokens are
// stateless: validity is entirely signature plus expiry, so a leaked token
// stays valid until it expires naturally.
type TokenIssuer struct {
	cfg config.JWTConfig
	now func() time.Time
}

func NewTokenIssuer(cfg config.JWTConfig) *TokenIssuer {
	return &TokenIssuer{cfg: cfg, now: time.Now}
}

// Issue signs a claim set for the given identity with the configured TTL.
func (t *TokenIssuer) Issue(identityID uuid.UUID, role types.Role) (string, error) {
	if t.cfg.SecretKey == "" {
		return "", errors.New("jwt secret key is not configured")
	}

	now := t.now()
	ttl := t.cfg.TokenTTL
	if ttl == 0 {
		ttl = time.Hour
	}

	claims := types.Claims{
		IdentityID: identityID.String(),
		Role:       string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID.String(),
			Issuer:    t.cfg.Issuer,
			Audience:  jwt.ClaimStrings{t.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(t.cfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a bearer token. Any failure (bad signature,
// malformed payload, expiry, wrong issuer or audience) maps to
// types.ErrUnauthenticated so callers cannot distinguish the cause.
func (t *TokenIssuer) Verify(tokenString string) (*types.Claims, error) {
	claims := &types.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(t.cfg.SecretKey), nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrUnauthenticated, err)
	}
	if !token.Valid {
		return nil, types.ErrUnauthenticated
	}

	if claims.Issuer != t.cfg.Issuer {
		return nil, fmt.Errorf("%w: issuer mismatch", types.ErrUnauthenticated)
	}
	if !api.VerifyAudience(claims.Audience, t.cfg.Audience) {
		return nil, fmt.Errorf("%w: audience mismatch", types.ErrUnauthenticated)
	}
	if _, ok := types.ParseRole(claims.Role); !ok {
		return nil, fmt.Errorf("%w: unknown role claim", types.ErrUnauthenticated)
	}

	return claims, nil
}
