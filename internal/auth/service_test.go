package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndParse(t *testing.T) {
	svc := NewAuthService("test-secret")
	tok, err := svc.IssueJWT("u-1", "alice", "alice@example.com", RoleTeacher)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := svc.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Sub != "u-1" || claims.Username != "alice" || claims.Email != "alice@example.com" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.Role != RoleTeacher {
		t.Fatalf("role = %q, want %q", claims.Role, RoleTeacher)
	}
	if claims.Issuer != "testpad" {
		t.Fatalf("issuer = %q", claims.Issuer)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := NewAuthService("secret-a").IssueJWT("u-1", "alice", "", RoleStudent)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewAuthService("secret-b").Parse(tok); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	svc := NewAuthService("test-secret")
	claims := &Claims{
		Sub:  "u-1",
		Role: RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "testpad",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Parse(tok); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := NewAuthService("s").Parse("not-a-token"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{RoleStudent, RoleTeacher, RoleAdmin} {
		if !ValidRole(r) {
			t.Fatalf("%q should be valid", r)
		}
	}
	if ValidRole("superuser") {
		t.Fatal("unknown role accepted")
	}
}
