package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, subject string) string {
	t.Helper()

	claims := &jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestSubjectFromToken_Success(t *testing.T) {
	sub, err := SubjectFromToken(signedToken(t, "owner-7"))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if sub != "owner-7" {
		t.Errorf("expected subject owner-7, got %q", sub)
	}
}

func TestSubjectFromToken_EmptySubject(t *testing.T) {
	if _, err := SubjectFromToken(signedToken(t, "")); err == nil {
		t.Fatal("expected error for empty subject")
	}
}

func TestSubjectFromToken_Malformed(t *testing.T) {
	if _, err := SubjectFromToken("not.a.jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestParseBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "lowercase scheme", header: "bearer tok", want: "tok"},
		{name: "padded", header: "  Bearer tok  ", want: "tok"},
		{name: "missing token", header: "Bearer ", wantErr: true},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", wantErr: true},
		{name: "empty", header: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBearerToken(tt.header)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got token %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
