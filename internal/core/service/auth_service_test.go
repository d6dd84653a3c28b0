package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/turtlecode/tutor-api/internal/core/domain"
)

func newTestAuthService(repo *stubAuthRepo, limiter *stubLimiter) *AuthService {
	if limiter == nil {
		return NewAuthService(repo, nil, "secret", time.Hour, zerolog.Nop())
	}
	return NewAuthService(repo, limiter, "secret", time.Hour, zerolog.Nop())
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(repo, nil)

	res, err := svc.Register(context.Background(), "  Alice@Example.com ", "pw123456")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.User.Email != "alice@example.com" {
		t.Fatalf("expected normalised email, got %q", res.User.Email)
	}
	if res.User.ID == "" || res.Token == "" {
		t.Fatalf("expected id and token, got %+v", res)
	}

	stored := repo.users["alice@example.com"]
	if stored == nil {
		t.Fatalf("user not stored")
	}
	if stored.PasswordHash == "pw123456" {
		t.Fatalf("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw123456")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	userID, err := svc.Authorize(res.Token)
	if err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}
	if userID != res.User.ID {
		t.Fatalf("expected token subject %q, got %q", res.User.ID, userID)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newTestAuthService(newStubAuthRepo(), nil)

	cases := []struct{ email, password string }{
		{"", "pw123456"},
		{"a@example.com", ""},
		{"not-an-email", "pw123456"},
		{"a@example.com", "short"},
	}
	for _, tc := range cases {
		_, err := svc.Register(context.Background(), tc.email, tc.password)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Register(%q, %q): expected ErrValidation, got %v", tc.email, tc.password, err)
		}
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc := newTestAuthService(newStubAuthRepo(), nil)

	if _, err := svc.Register(context.Background(), "a@example.com", "pw123456"); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}
	_, err := svc.Register(context.Background(), "A@example.com", "pw123456")
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	svc := newTestAuthService(newStubAuthRepo(), nil)
	reg, err := svc.Register(context.Background(), "a@example.com", "pw123456")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	res, err := svc.Login(context.Background(), "a@example.com", "pw123456", "10.0.0.1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.User.ID != reg.User.ID {
		t.Fatalf("expected user %q, got %q", reg.User.ID, res.User.ID)
	}
}

func TestAuthService_Login_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	svc := newTestAuthService(newStubAuthRepo(), nil)
	if _, err := svc.Register(context.Background(), "a@example.com", "pw123456"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	_, errWrong := svc.Login(context.Background(), "a@example.com", "wrongpass", "ip")
	_, errMissing := svc.Login(context.Background(), "nobody@example.com", "pw123456", "ip")

	if !errors.Is(errWrong, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", errWrong)
	}
	if !errors.Is(errMissing, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", errMissing)
	}
	if errWrong.Error() != errMissing.Error() {
		t.Fatalf("errors must be indistinguishable: %q vs %q", errWrong, errMissing)
	}
}

func TestAuthService_Login_UnknownEmailStillComparesHash(t *testing.T) {
	svc := newTestAuthService(newStubAuthRepo(), nil)

	var compared [][]byte
	svc.compare = func(hash, password []byte) error {
		compared = append(compared, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	}

	_, err := svc.Login(context.Background(), "nobody@example.com", "pw123456", "ip")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(compared) != 1 {
		t.Fatalf("expected one hash comparison for an unknown email, got %d", len(compared))
	}
	if cost, err := bcrypt.Cost(compared[0]); err != nil || cost != bcrypt.DefaultCost {
		t.Fatalf("expected a default-cost bcrypt hash, got cost %d (%v)", cost, err)
	}
}

func TestAuthService_Login_Lockout(t *testing.T) {
	limiter := newStubLimiter(2)
	svc := newTestAuthService(newStubAuthRepo(), limiter)
	if _, err := svc.Register(context.Background(), "a@example.com", "pw123456"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.Login(context.Background(), "a@example.com", "bad", "ip"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}

	_, err := svc.Login(context.Background(), "a@example.com", "pw123456", "ip")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited once blocked, got %v", err)
	}

	// A different client address is tracked separately.
	if _, err := svc.Login(context.Background(), "a@example.com", "pw123456", "other-ip"); err != nil {
		t.Fatalf("expected login from another address to succeed, got %v", err)
	}
}

func TestAuthService_Login_SuccessResetsFailures(t *testing.T) {
	limiter := newStubLimiter(3)
	svc := newTestAuthService(newStubAuthRepo(), limiter)
	if _, err := svc.Register(context.Background(), "a@example.com", "pw123456"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	_, _ = svc.Login(context.Background(), "a@example.com", "bad", "ip")
	if _, err := svc.Login(context.Background(), "a@example.com", "pw123456", "ip"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if len(limiter.failures) != 0 {
		t.Fatalf("expected failures cleared, got %v", limiter.failures)
	}
}

func TestAuthService_Authorize_Rejects(t *testing.T) {
	svc := newTestAuthService(newStubAuthRepo(), nil)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	expiredToken, _ := expired.SignedString([]byte("secret"))

	otherKey := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	otherKeyToken, _ := otherKey.SignedString([]byte("other-secret"))

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u1"})
	noExpToken, _ := noExp.SignedString([]byte("secret"))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	noneToken, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	for name, tok := range map[string]string{
		"garbage":   "not-a-token",
		"expired":   expiredToken,
		"wrong key": otherKeyToken,
		"no exp":    noExpToken,
		"alg none":  noneToken,
	} {
		if _, err := svc.Authorize(tok); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Errorf("%s: expected ErrUnauthenticated, got %v", name, err)
		}
	}
}

func TestAuthService_TokenLifetime(t *testing.T) {
	svc := NewAuthService(newStubAuthRepo(), nil, "secret", 0, zerolog.Nop())
	res, err := svc.Register(context.Background(), "a@example.com", "pw123456")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	claims := &tokenClaims{}
	if _, err := jwt.ParseWithClaims(res.Token, claims, func(*jwt.Token) (any, error) { return []byte("secret"), nil }); err != nil {
		t.Fatalf("parse token: %v", err)
	}
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != 7*24*time.Hour {
		t.Fatalf("expected 7 day token, got %v", ttl)
	}
	if claims.UserID != res.User.ID || claims.Subject != res.User.ID {
		t.Fatalf("token does not identify the user: %+v", claims)
	}
}

func TestAuthService_Me(t *testing.T) {
	svc := newTestAuthService(newStubAuthRepo(), nil)
	res, err := svc.Register(context.Background(), "a@example.com", "pw123456")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	u, err := svc.Me(context.Background(), res.User.ID)
	if err != nil {
		t.Fatalf("Me returned error: %v", err)
	}
	if u.Email != "a@example.com" {
		t.Fatalf("unexpected user %+v", u)
	}

	if _, err := svc.Me(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
