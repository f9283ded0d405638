package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/99minutos/product-api/internal/core/domain"
	"github.com/99minutos/product-api/internal/core/ports"
)

// MinSigningKeyLength is the shortest HS256 secret accepted at startup.
const MinSigningKeyLength = 32

const defaultTokenLifetime = 2 * time.Hour

// TokenConfig is shared by the issuer and the verifier. The key is read once
// at startup; replacing it invalidates every token issued under the old key,
// and there is no revocation list, so a token stays usable until it expires.
type TokenConfig struct {
	SigningKey []byte
	Issuer     string
	Lifetime   time.Duration
}

func (c TokenConfig) validate() error {
	if len(c.SigningKey) < MinSigningKeyLength {
		return fmt.Errorf("token signing key must be at least %d bytes", MinSigningKeyLength)
	}
	return nil
}

// tokenClaims is the wire form of domain.Claims.
type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs HS256 JWTs carrying the subject and role of an identity.
type TokenIssuer struct {
	key      []byte
	issuer   string
	lifetime time.Duration
	now      func() time.Time
}

func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	lifetime := cfg.Lifetime
	if lifetime <= 0 {
		lifetime = defaultTokenLifetime
	}
	return &TokenIssuer{
		key:      append([]byte(nil), cfg.SigningKey...),
		issuer:   cfg.Issuer,
		lifetime: lifetime,
		now:      time.Now,
	}, nil
}

// Issue snapshots the identity's username and role into a new token. Later
// role changes are not reflected until the token expires.
func (i *TokenIssuer) Issue(identity *domain.Identity) (ports.IssuedToken, error) {
	if identity == nil || identity.Username == "" {
		return ports.IssuedToken{}, errors.New("issue token: identity has no username")
	}
	if !identity.Role.IsValid() {
		return ports.IssuedToken{}, fmt.Errorf("issue token: %w", domain.ErrInvalidRole)
	}

	// NumericDate has second precision; truncate so the returned expiry is
	// exactly the one embedded in the token.
	issuedAt := i.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(i.lifetime)

	claims := tokenClaims{
		Role: identity.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.Username,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return ports.IssuedToken{}, fmt.Errorf("issue token: %w", err)
	}

	return ports.IssuedToken{Token: signed, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// TokenVerifier checks tokens produced by TokenIssuer with the same config.
type TokenVerifier struct {
	key    []byte
	now    func() time.Time
	parser *jwt.Parser
}

func NewTokenVerifier(cfg TokenConfig) (*TokenVerifier, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	v := &TokenVerifier{
		key: append([]byte(nil), cfg.SigningKey...),
		now: time.Now,
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return v.now() }),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	v.parser = jwt.NewParser(opts...)
	return v, nil
}

// Verify accepts a token iff its signature matches the signing key and the
// current time is strictly before its expiry. The signature is checked before
// any claim, so ErrTokenExpired is only returned for authentic tokens.
func (v *TokenVerifier) Verify(raw string) (*domain.Claims, error) {
	var claims tokenClaims
	_, err := v.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenInvalidIssuer) {
			return nil, domain.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidToken, claims.Role)
	}

	out := &domain.Claims{
		Subject:   claims.Subject,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	return out, nil
}
