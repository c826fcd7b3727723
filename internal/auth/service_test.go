package auth

import (
	"context"
	"testing"
	"time"

	"recovery_crm_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type fakeAuthConfig struct {
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func (f fakeAuthConfig) GetJWTAccessSecret() string        { return f.accessSecret }
func (f fakeAuthConfig) GetJWTRefreshSecret() string       { return f.refreshSecret }
func (f fakeAuthConfig) GetAccessTokenTTL() time.Duration  { return f.accessTTL }
func (f fakeAuthConfig) GetRefreshTokenTTL() time.Duration { return f.refreshTTL }

func newTokenService() (*Service, fakeAuthConfig) {
	cfg := fakeAuthConfig{
		accessSecret:  "access-secret",
		refreshSecret: "refresh-secret",
		accessTTL:     15 * time.Minute,
		refreshTTL:    7 * 24 * time.Hour,
	}
	return NewService(nil, cfg, logger.New("test")), cfg
}

func parseClaims(t *testing.T, raw, secret string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token did not verify: %v", err)
	}
	return claims
}

func TestIssuePairAccessClaims(t *testing.T) {
	svc, cfg := newTokenService()
	account := Account{ID: 7, UUID: uuid.New(), Name: "Ana", Role: "seller"}

	pair, err := svc.issuePair(account)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.ExpiresIn != int64(cfg.accessTTL.Seconds()) {
		t.Errorf("expires_in = %d, want %d", pair.ExpiresIn, int64(cfg.accessTTL.Seconds()))
	}

	claims := parseClaims(t, pair.AccessToken, cfg.accessSecret)
	if claims["sub"] != account.UUID.String() {
		t.Errorf("sub = %v", claims["sub"])
	}
	if uid, _ := claims["uid"].(float64); int64(uid) != account.ID {
		t.Errorf("uid = %v", claims["uid"])
	}
	if claims["role"] != "seller" || claims["name"] != "Ana" {
		t.Errorf("role/name = %v/%v", claims["role"], claims["name"])
	}
	if claims["type"] != "access" {
		t.Errorf("type = %v", claims["type"])
	}
}

func TestIssuePairRefreshUsesSeparateSecret(t *testing.T) {
	svc, cfg := newTokenService()
	pair, err := svc.issuePair(Account{ID: 1, UUID: uuid.New(), Name: "Ana", Role: "admin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := jwt.Parse(pair.RefreshToken, func(*jwt.Token) (any, error) {
		return []byte(cfg.accessSecret), nil
	}); err == nil {
		t.Fatal("refresh token must not verify under the access secret")
	}

	claims := parseClaims(t, pair.RefreshToken, cfg.refreshSecret)
	if claims["type"] != "refresh" {
		t.Errorf("type = %v", claims["type"])
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newTokenService()
	pair, err := svc.issuePair(Account{ID: 1, UUID: uuid.New(), Name: "Ana", Role: "admin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), pair.AccessToken); err == nil {
		t.Fatal("access token must not pass as a refresh token")
	}
}

func TestRefreshRejectsWrongTokenType(t *testing.T) {
	svc, cfg := newTokenService()

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  uuid.New().String(),
		"type": "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	raw, err := forged.SignedString([]byte(cfg.refreshSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), raw); err == nil {
		t.Fatal("token with the wrong type claim must be rejected")
	}
}
