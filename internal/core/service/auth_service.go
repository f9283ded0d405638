package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/product-api/internal/core/domain"
	"github.com/99minutos/product-api/internal/core/ports"
	"github.com/99minutos/product-api/internal/pkg/metrics"
)

// AuthDeps wires the collaborators of authService. Throttle and Audit are
// optional.
type AuthDeps struct {
	Registration  *RegistrationService
	Authenticator *Authenticator
	Issuer        ports.TokenIssuer
	Verifier      ports.TokenVerifier
	Throttle      ports.LoginThrottle
	Audit         ports.AuditRecorder
	Log           zerolog.Logger
}

type authService struct {
	registration  *RegistrationService
	authenticator *Authenticator
	issuer        ports.TokenIssuer
	verifier      ports.TokenVerifier
	throttle      ports.LoginThrottle
	audit         ports.AuditRecorder
	log           zerolog.Logger
	now           func() time.Time
}

// NewAuthService returns an AuthService implementation.
func NewAuthService(deps AuthDeps) ports.AuthService {
	return &authService{
		registration:  deps.Registration,
		authenticator: deps.Authenticator,
		issuer:        deps.Issuer,
		verifier:      deps.Verifier,
		throttle:      deps.Throttle,
		audit:         deps.Audit,
		log:           deps.Log,
		now:           time.Now,
	}
}

func (s *authService) Register(ctx context.Context, username, password string, role domain.Role) (*domain.Identity, error) {
	identity, err := s.registration.Register(ctx, username, password, role)
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.Is(err, domain.ErrUsernameTaken):
			metrics.RegistrationsTotal.WithLabelValues(metrics.ResultConflict).Inc()
		case errors.As(err, &verr), errors.Is(err, domain.ErrInvalidRole):
			metrics.RegistrationsTotal.WithLabelValues(metrics.ResultRejected).Inc()
		default:
			metrics.RegistrationsTotal.WithLabelValues(metrics.ResultError).Inc()
			s.log.Error().Err(err).Str("username", username).Msg("registration failed")
			return nil, err
		}
		s.record(domain.EventRegistrationRejected, username, "")
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	s.record(domain.EventRegistered, identity.Username, identity.Role)
	return identity, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, username)
		if err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("login throttle unavailable, allowing attempt")
		} else if !allowed {
			metrics.LoginsTotal.WithLabelValues(metrics.ResultThrottled).Inc()
			s.record(domain.EventLoginThrottled, username, "")
			return nil, domain.ErrTooManyAttempts
		}
	}

	identity, err := s.authenticator.Authenticate(ctx, username, password)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues(metrics.ResultError).Inc()
			s.log.Error().Err(err).Str("username", username).Msg("login failed")
			return nil, err
		}
		metrics.LoginsTotal.WithLabelValues(metrics.ResultRejected).Inc()
		s.record(domain.EventLoginFailed, username, "")
		return nil, err
	}

	token, err := s.issuer.Issue(identity)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.ResultError).Inc()
		s.log.Error().Err(err).Str("username", username).Msg("token issuance failed")
		return nil, err
	}

	if s.throttle != nil {
		if rerr := s.throttle.Reset(ctx, username); rerr != nil {
			s.log.Warn().Err(rerr).Str("username", username).Msg("failed to reset login attempts")
		}
	}

	metrics.LoginsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	s.record(domain.EventLoginSucceeded, identity.Username, identity.Role)

	return &ports.LoginResult{
		Token:     token.Token,
		Username:  identity.Username,
		Role:      identity.Role,
		ExpiresAt: token.ExpiresAt,
	}, nil
}

// Verify checks a bearer token. The outcome is counted but never audited;
// verification runs on every protected request.
func (s *authService) Verify(token string) (*domain.Claims, error) {
	claims, err := s.verifier.Verify(token)
	switch {
	case err == nil:
		metrics.TokenVerificationsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	case errors.Is(err, domain.ErrTokenExpired):
		metrics.TokenVerificationsTotal.WithLabelValues(metrics.ResultExpired).Inc()
	default:
		metrics.TokenVerificationsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
	}
	return claims, err
}

func (s *authService) record(typ domain.AuthEventType, username string, role domain.Role) {
	if s.audit == nil {
		return
	}
	s.audit.Record(domain.AuthEvent{
		Type:       typ,
		Username:   username,
		Role:       role,
		OccurredAt: s.now().UTC(),
	})
}
