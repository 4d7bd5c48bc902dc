package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"leavedesk/internal/shared/model"
)

// generateExpiredToken 构造一个已过期的令牌
func generateExpiredToken(cfg Config, userID string, role model.Role) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Role: string(role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
}

func testConfig() Config {
	return Config{JWTSecret: "test-secret", TokenTTL: time.Hour}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash must not equal plaintext")
	}
	if !CheckPassword("s3cret-pass", hash) {
		t.Fatal("correct password rejected")
	}
	if CheckPassword("wrong-pass", hash) {
		t.Fatal("wrong password accepted")
	}
	// 明文永远不被当作哈希接受
	if CheckPassword("s3cret-pass", "s3cret-pass") {
		t.Fatal("plaintext comparison must not succeed")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := testConfig()
	token, err := GenerateToken(cfg, "usr-abc123", model.RoleManager)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := ParseToken(cfg, token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.Subject != "usr-abc123" {
		t.Errorf("subject = %q, want usr-abc123", claims.Subject)
	}
	if claims.Role != "Manager" {
		t.Errorf("role = %q, want Manager", claims.Role)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(testConfig(), "usr-1", model.RoleEmployee)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	_, err = ParseToken(Config{JWTSecret: "other-secret"}, token)
	if err == nil {
		t.Fatal("expected error for wrong secret")
	}
	if errors.Is(err, ErrTokenExpired) {
		t.Fatal("wrong secret must not be reported as expiry")
	}
}

func TestParseTokenExpired(t *testing.T) {
	cfg := testConfig()
	// TTL <= 0 会被 GenerateToken 纠正为 1h，手工构造过期声明
	token, err := generateExpiredToken(cfg, "usr-1", model.RoleEmployee)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	_, err = ParseToken(cfg, token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken(testConfig(), "not.a.token")
	if err == nil {
		t.Fatal("expected error for malformed token")
	}
}
