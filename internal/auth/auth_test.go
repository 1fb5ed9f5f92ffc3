package auth

import (
	"strings"
	"testing"
	"time"

	"peerdesk/internal/config"
	"peerdesk/internal/models"
)

func testService(t *testing.T) *Service {
	t.Helper()
	return NewService(&config.JWTConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
	})
}

func TestHashAndVerifyPassword(t *testing.T) {
	svc := testService(t)

	hash, err := svc.HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Error("hash should not equal the plaintext password")
	}

	if err := svc.VerifyPassword(hash, "correct horse battery staple"); err != nil {
		t.Errorf("VerifyPassword rejected the correct password: %v", err)
	}
	if err := svc.VerifyPassword(hash, "wrong password"); err == nil {
		t.Error("VerifyPassword accepted a wrong password")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := testService(t)
	role := models.GlobalRoleActionEditor
	user := &models.User{
		ID:         "user-123",
		Email:      "editor@example.com",
		GlobalRole: &role,
	}

	token, err := svc.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("expected user ID user-123, got %s", claims.UserID)
	}
	if claims.Email != "editor@example.com" {
		t.Errorf("expected email editor@example.com, got %s", claims.Email)
	}
	if claims.GlobalRole == nil || *claims.GlobalRole != models.GlobalRoleActionEditor {
		t.Errorf("expected global role %s, got %v", models.GlobalRoleActionEditor, claims.GlobalRole)
	}
}

func TestValidateTokenWithoutGlobalRole(t *testing.T) {
	svc := testService(t)
	user := &models.User{ID: "user-456", Email: "reviewer@example.com"}

	token, err := svc.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.GlobalRole != nil {
		t.Errorf("expected nil global role, got %v", *claims.GlobalRole)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := testService(t)

	if _, err := svc.ValidateToken("not.a.token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewService(&config.JWTConfig{
		Secret:     "test-secret",
		Expiration: -time.Minute,
	})
	user := &models.User{ID: "user-789", Email: "late@example.com"}

	token, err := svc.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestValidateTokenRejectsOtherKey(t *testing.T) {
	svcA := testService(t)
	svcB := testService(t)
	user := &models.User{ID: "user-abc", Email: "a@example.com"}

	token, err := svcA.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	// Both services generated ephemeral keys, so B must not accept A's token.
	if _, err := svcB.ValidateToken(token); err == nil {
		t.Error("expected error validating a token signed by another key")
	}
}

func TestGenerateRandomToken(t *testing.T) {
	a, err := GenerateRandomToken(16)
	if err != nil {
		t.Fatalf("GenerateRandomToken failed: %v", err)
	}
	b, err := GenerateRandomToken(16)
	if err != nil {
		t.Fatalf("GenerateRandomToken failed: %v", err)
	}
	if a == b {
		t.Error("expected distinct random tokens")
	}
	if strings.ContainsAny(a, "+/") {
		t.Error("expected URL-safe encoding")
	}
}
