package service

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/rs/zerolog"

	"eldrix/admin/internal/apperr"
	"eldrix/admin/internal/config"
	"eldrix/admin/internal/ids"
	"eldrix/admin/internal/security"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
	Reset(ctx context.Context, key string) error
}

type LoginInput struct {
	Username string
	Password string
	ClientIP string
}

type LoginResult struct {
	Username    string
	AccessToken string
	ExpiresAt   time.Time
}

type AuthService struct {
	cfg     config.SecurityConfig
	limiter RateLimiter
	log     zerolog.Logger
}

func NewAuthService(cfg config.SecurityConfig, limiter RateLimiter, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:     cfg,
		limiter: limiter,
		log:     log,
	}
}

var errInvalidCredentials = apperr.ErrUnauthorized.WithMessage("Invalid credentials")

func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	if input.Username == "" || input.Password == "" {
		return LoginResult{}, apperr.Validation("username", "username and password are required")
	}

	if s.limiter != nil {
		allowed, retryAfter, err := s.limiter.Allow(ctx, input.ClientIP)
		if err != nil {
			s.log.Error().Err(err).Msg("login rate limiter unavailable")
		} else if !allowed {
			return LoginResult{}, apperr.ErrRateLimited.WithDetails(map[string]any{"retryAfterSeconds": int(retryAfter.Seconds())})
		}
	}

	if s.cfg.AdminPasswordHash == "" {
		s.log.Error().Msg("admin password hash is not configured")
		return LoginResult{}, errInvalidCredentials
	}

	userOK := subtle.ConstantTimeCompare([]byte(input.Username), []byte(s.cfg.AdminUsername)) == 1
	passOK, err := security.VerifyPassword(input.Password, s.cfg.AdminPasswordHash)
	if err != nil {
		s.log.Error().Err(err).Msg("admin password hash is malformed")
		return LoginResult{}, errInvalidCredentials
	}
	if !userOK || !passOK {
		s.log.Warn().Str("client_ip", input.ClientIP).Msg("admin login rejected")
		return LoginResult{}, errInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, input.ClientIP); err != nil {
			s.log.Warn().Err(err).Msg("reset login limiter failed")
		}
	}

	token, expires, err := security.GenerateAdminToken(s.cfg.JWTSecret, s.cfg.AdminUsername, ids.New(), s.cfg.JWTTTL)
	if err != nil {
		return LoginResult{}, err
	}

	s.log.Info().Str("client_ip", input.ClientIP).Msg("admin logged in")
	return LoginResult{Username: s.cfg.AdminUsername, AccessToken: token, ExpiresAt: expires}, nil
}

func (s *AuthService) ValidateToken(token string) (*security.AdminClaims, error) {
	claims, err := security.ParseAdminToken(token, s.cfg.JWTSecret)
	if err != nil {
		return nil, apperr.ErrUnauthorized.Wrap(err)
	}
	return claims, nil
}
