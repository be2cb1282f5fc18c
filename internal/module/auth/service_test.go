package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/pension/internal/domain"
)

const testSecret = "k3Q!x9Lw#2mPz7Rt$5vNb8Hc@4yDf6Ga"

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(h)
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(Options{
		Secret:    testSecret,
		Issuer:    "pension-admin",
		Expiry:    15 * time.Minute,
		Operators: map[string]string{"ops": hashPassword(t, "correct horse")},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestNewService_Errors(t *testing.T) {
	if _, err := NewService(Options{}); err == nil {
		t.Error("expected error for empty secret")
	}
	_, err := NewService(Options{Secret: testSecret, Operators: map[string]string{"ops": "plain-text"}})
	if err == nil || !strings.Contains(err.Error(), "ops") {
		t.Errorf("expected invalid hash error naming the operator, got %v", err)
	}
}

func TestIssueAndVerifyToken(t *testing.T) {
	svc := newTestService(t)
	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	resp, err := svc.IssueToken(context.Background(), "ops", "correct horse")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if resp.Token == "" || !resp.ExpiresAt.Equal(now.Add(15*time.Minute)) {
		t.Errorf("response = %+v", resp)
	}

	sub, err := svc.VerifyToken(resp.Token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if sub != "ops" {
		t.Errorf("subject = %q, want ops", sub)
	}

	svc.now = func() time.Time { return now.Add(16 * time.Minute) }
	if _, err := svc.VerifyToken(resp.Token); !domain.IsUnauthorized(err) {
		t.Errorf("expired token: expected unauthorized, got %v", err)
	}
}

func TestIssueToken_BadCredentials(t *testing.T) {
	svc := newTestService(t)

	for _, tc := range []struct{ user, pass string }{
		{"ops", "wrong"},
		{"ghost", "correct horse"},
		{"", ""},
	} {
		if _, err := svc.IssueToken(context.Background(), tc.user, tc.pass); !domain.IsUnauthorized(err) {
			t.Errorf("%q/%q: expected unauthorized, got %v", tc.user, tc.pass, err)
		}
	}
}

func TestVerifyToken_Rejections(t *testing.T) {
	svc := newTestService(t)
	now := time.Now()

	sign := func(method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	valid := jwt.RegisteredClaims{
		Subject:   "ops",
		Issuer:    "pension-admin",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	wrongIssuer := valid
	wrongIssuer.Issuer = "someone-else"
	noExpiry := valid
	noExpiry.ExpiresAt = nil
	unknownSub := valid
	unknownSub.Subject = "ghost"

	tests := map[string]string{
		"garbage":      "not.a.token",
		"wrong secret": sign(jwt.SigningMethodHS256, []byte("another-secret-another-secret-xx"), valid),
		"wrong method": sign(jwt.SigningMethodHS512, []byte(testSecret), valid),
		"none method":  sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid),
		"wrong issuer": sign(jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer),
		"no expiry":    sign(jwt.SigningMethodHS256, []byte(testSecret), noExpiry),
		"unknown sub":  sign(jwt.SigningMethodHS256, []byte(testSecret), unknownSub),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.VerifyToken(token); !domain.IsUnauthorized(err) {
				t.Errorf("expected unauthorized, got %v", err)
			}
		})
	}

	if sub, err := svc.VerifyToken(sign(jwt.SigningMethodHS256, []byte(testSecret), valid)); err != nil || sub != "ops" {
		t.Errorf("valid token: sub=%q err=%v", sub, err)
	}
}
