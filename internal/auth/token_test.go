package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/link-shortener/internal/domain"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)

	token, expiresAt, err := tm.Issue("user-123", domain.RoleModerator, 15*time.Minute)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatal("expected expiry in the future")
	}

	claims, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.SubjectID != "user-123" {
		t.Errorf("subject = %q, want user-123", claims.SubjectID)
	}
	if claims.Role != domain.RoleModerator {
		t.Errorf("role = %q, want moderator", claims.Role)
	}
	if claims.ID == "" {
		t.Error("expected a token id")
	}
	if !claims.ExpiresAt.After(claims.IssuedAt.Time) {
		t.Error("expected expires_at after issued_at")
	}
}

func TestVerifyExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)

	token, _, err := tm.Issue("user-123", domain.RoleUser, -time.Minute)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := tm.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyWrongKey(t *testing.T) {
	tm1 := NewTokenManager("key-one", 15*time.Minute, 24*time.Hour)
	tm2 := NewTokenManager("key-two", 15*time.Minute, 24*time.Hour)

	token, _, err := tm1.Issue("user-123", domain.RoleUser, 15*time.Minute)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := tm2.Verify(token); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("err = %v, want ErrSignatureInvalid", err)
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	tm := NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)

	token, _, err := tm.Issue("user-123", domain.RoleUser, 15*time.Minute)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %s", token)
	}
	// swap the payload with one from a token claiming admin
	elevated, _, err := tm.Issue("user-123", domain.RoleAdmin, 15*time.Minute)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	tampered := parts[0] + "." + strings.Split(elevated, ".")[1] + "." + parts[2]

	if _, err := tm.Verify(tampered); err == nil {
		t.Error("expected tampered token to fail verification")
	}
}

func TestVerifyMalformed(t *testing.T) {
	tm := NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)

	for _, token := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		if _, err := tm.Verify(token); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Verify(%q) err = %v, want ErrTokenMalformed", token, err)
		}
	}
}

func TestIssueSession(t *testing.T) {
	tm := NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)

	session, err := tm.IssueSession("user-123", domain.RoleUser)
	if err != nil {
		t.Fatalf("IssueSession returned error: %v", err)
	}

	if session.AccessToken == session.RefreshToken {
		t.Error("expected independently signed tokens")
	}
	if !session.RefreshExpiresAt.After(session.AccessExpiresAt) {
		t.Error("expected refresh token to outlive access token")
	}

	accessClaims, err := tm.Verify(session.AccessToken)
	if err != nil {
		t.Fatalf("access did not verify: %v", err)
	}
	refreshClaims, err := tm.Verify(session.RefreshToken)
	if err != nil {
		t.Fatalf("refresh did not verify: %v", err)
	}
	if accessClaims.ID == refreshClaims.ID {
		t.Error("expected distinct token ids per token")
	}
}
