package auth

import (
	"context"
	"time"

	"recovery_crm_backend/platform/apperr"
	"recovery_crm_backend/platform/config"
	"recovery_crm_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TokenPair is the access/refresh token set issued on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Service implements login and token issuance.
type Service struct {
	repo *Repository
	cfg  config.AuthServiceConfig
	log  *logger.Logger
}

// NewService creates a new auth service.
func NewService(repo *Repository, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log}
}

// Login verifies credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, Account, error) {
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		s.log.AuthEvent("login", email, false, "unknown email")
		return TokenPair{}, Account{}, err
	}
	if !account.IsActive {
		s.log.AuthEvent("login", email, false, "account deactivated")
		return TokenPair{}, Account{}, apperr.Unauthorized("account is deactivated")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.log.AuthEvent("login", email, false, "wrong password")
		return TokenPair{}, Account{}, apperr.Unauthorized("invalid credentials")
	}

	pair, err := s.issuePair(account)
	if err != nil {
		return TokenPair{}, Account{}, err
	}
	s.log.AuthEvent("login", email, true, "")
	return pair, account, nil
}

// Refresh validates a refresh token and issues a fresh pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(refreshToken, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Unauthorized("unexpected signing method")
		}
		return []byte(s.cfg.GetJWTRefreshSecret()), nil
	})
	if err != nil || !token.Valid {
		return TokenPair{}, apperr.Unauthorized("invalid refresh token")
	}
	if typ, _ := claims["type"].(string); typ != "refresh" {
		return TokenPair{}, apperr.Unauthorized("invalid token type")
	}
	sub, _ := claims["sub"].(string)
	subject, err := uuid.Parse(sub)
	if err != nil {
		return TokenPair{}, apperr.Unauthorized("invalid token subject")
	}

	account, err := s.repo.GetByUUID(ctx, subject)
	if err != nil {
		return TokenPair{}, err
	}
	if !account.IsActive {
		return TokenPair{}, apperr.Unauthorized("account is deactivated")
	}
	return s.issuePair(account)
}

// Me loads the profile behind an authenticated token subject.
func (s *Service) Me(ctx context.Context, subject uuid.UUID) (Account, error) {
	return s.repo.GetByUUID(ctx, subject)
}

func (s *Service) issuePair(account Account) (TokenPair, error) {
	now := time.Now()
	accessTTL := s.cfg.GetAccessTokenTTL()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  account.UUID.String(),
		"uid":  account.ID,
		"role": account.Role,
		"name": account.Name,
		"type": "access",
		"iat":  now.Unix(),
		"exp":  now.Add(accessTTL).Unix(),
	})
	accessToken, err := access.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
	if err != nil {
		return TokenPair{}, apperr.Wrap(apperr.KindInternal, "could not sign access token", err)
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  account.UUID.String(),
		"type": "refresh",
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.GetRefreshTokenTTL()).Unix(),
	})
	refreshToken, err := refresh.SignedString([]byte(s.cfg.GetJWTRefreshSecret()))
	if err != nil {
		return TokenPair{}, apperr.Wrap(apperr.KindInternal, "could not sign refresh token", err)
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(accessTTL.Seconds()),
	}, nil
}
