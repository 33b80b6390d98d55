package jwt

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

type testClaims struct {
	gojwt.RegisteredClaims
	UserID string `json:"uid"`
}

func (c *testClaims) SetDefaults(now time.Time, ttl time.Duration, issuer string, _ []string) {
	c.IssuedAt = gojwt.NewNumericDate(now)
	c.ExpiresAt = gojwt.NewNumericDate(now.Add(ttl))
	c.Issuer = issuer
}

func newService(t *testing.T, cfg Config) *Service[*testClaims] {
	t.Helper()
	svc, err := NewService(&cfg, func() *testClaims { return &testClaims{} })
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestGenerateAccessAndParse(t *testing.T) {
	svc := newService(t, Config{Secret: "s3cret", Issuer: "montessa"})

	token, err := svc.GenerateAccess(&testClaims{UserID: "u-1"})
	if err != nil {
		t.Fatalf("GenerateAccess: %v", err)
	}
	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != "u-1" || claims.Issuer != "montessa" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestParseRejects(t *testing.T) {
	svc := newService(t, Config{Secret: "s3cret", Issuer: "montessa"})
	other := newService(t, Config{Secret: "other", Issuer: "montessa"})
	wrongIssuer := newService(t, Config{Secret: "s3cret", Issuer: "elsewhere"})

	foreign, _ := other.GenerateAccess(&testClaims{UserID: "u-1"})
	misissued, _ := wrongIssuer.GenerateAccess(&testClaims{UserID: "u-1"})
	noExpiry, _ := svc.Generate(&testClaims{UserID: "u-1"})

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", foreign},
		{"wrong issuer", misissued},
		{"no expiry", noExpiry},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Parse(tc.token); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestParseExpired(t *testing.T) {
	svc := newService(t, Config{Secret: "s3cret"})
	past := time.Now().Add(-time.Hour)
	token, err := svc.Generate(&testClaims{
		RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(past)},
		UserID:           "u-1",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	_, err = svc.Parse(token)
	if !IsExpired(err) {
		t.Errorf("expected expired error, got %v", err)
	}
}

func TestECDSA(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	svc := newService(t, Config{Method: ES256, PrivateKey: key})

	token, err := svc.GenerateAccess(&testClaims{UserID: "u-2"})
	if err != nil {
		t.Fatalf("GenerateAccess: %v", err)
	}
	if claims, err := svc.Parse(token); err != nil || claims.UserID != "u-2" {
		t.Errorf("unexpected parse result %+v, %v", claims, err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"hmac ok", Config{Secret: "x"}, false},
		{"hmac no secret", Config{}, true},
		{"rsa no key", Config{Method: RS256}, true},
		{"unknown method", Config{Method: "none", Secret: "x"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.ApplyDefaults()
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
