package utils

import (
	"testing"
)

func TestJwtGenerateAndValidate(t *testing.T) {
	t.Setenv("TOKEN_HOUR_LIFESPAN", "1")

	token, err := JwtGenerate(42, "alice", "Manager", 3)
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	validated, err := JwtValidate(token)
	if err != nil {
		t.Fatalf("JwtValidate: %v", err)
	}
	if !validated.Valid {
		t.Fatal("expected valid token")
	}
	claims, ok := validated.Claims.(*JwtCustomClaim)
	if !ok {
		t.Fatal("expected JwtCustomClaim claims")
	}
	if claims.ID != 42 || claims.Username != "alice" || claims.Role != "Manager" || claims.BranchId != 3 {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJwtValidateRejectsGarbage(t *testing.T) {
	if _, err := JwtValidate("not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestJwtValidateRejectsTamperedToken(t *testing.T) {
	token, err := JwtGenerate(1, "bob", "Cashier", 0)
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}
	tampered := token[:len(token)-2] + "xx"
	parsed, err := JwtValidate(tampered)
	if err == nil && parsed.Valid {
		t.Fatal("expected tampered token to be rejected")
	}
}
