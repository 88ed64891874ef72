package utils

import (
	"testing"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, "clinic", "test-secret")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}
	claims, err := ParseJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseJWT failed: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "clinic" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTWrongSecretRejected(t *testing.T) {
	token, err := GenerateJWT(1, "user", "secret-a")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}
	if _, err := ParseJWT(token, "secret-b"); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hair Transplant (FUE)", "hair-transplant-fue"},
		{"Dr. A. K. Sharma", "dr-a-k-sharma"},
		{"  Rhinoplasty  ", "rhinoplasty"},
		{"Lip Fillers & Botox", "lip-fillers-botox"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGenerateOTPShape(t *testing.T) {
	code, err := GenerateOTP("+919876543210")
	if err != nil {
		t.Fatalf("GenerateOTP failed: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("expected numeric code, got %q", code)
		}
	}
}
