package visitor

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
)

func TestNewSigner(t *testing.T) {
	if _, err := NewSigner("", time.Hour); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("expected ErrEmptySecret, got %v", err)
	}

	s, err := NewSigner("secret", 0)
	if err != nil {
		t.Fatalf("NewSigner() error = %v", err)
	}
	if s.TTL() != DefaultTTL {
		t.Errorf("TTL() = %v, want %v", s.TTL(), DefaultTTL)
	}
}

func TestSigner_RoundTrip(t *testing.T) {
	s, _ := NewSigner("test-secret", time.Hour)

	id, token, err := s.Issue()
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if id == "" || token == "" {
		t.Fatalf("empty id or token")
	}

	got, err := s.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got != id {
		t.Errorf("Parse() = %q, want %q", got, id)
	}

	id2, _, _ := s.Issue()
	if id2 == id {
		t.Errorf("visitor ids must be unique")
	}
}

func TestSigner_Parse_Rejects(t *testing.T) {
	s, _ := NewSigner("test-secret", time.Hour)
	other, _ := NewSigner("other-secret", time.Hour)
	_, foreign, _ := other.Issue()

	expired, _ := NewSigner("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	_, stale, _ := expired.Issue()

	wrongIssuer, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject: "0b6f6c2e-8f7a-4c1e-9d36-8f3f6a1b2c3d",
		Issuer:  "someone-else",
	}).SignedString([]byte("test-secret"))

	badSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject: "not-a-uuid",
		Issuer:  issuer,
	}).SignedString([]byte("test-secret"))

	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.StandardClaims{
		Subject: "0b6f6c2e-8f7a-4c1e-9d36-8f3f6a1b2c3d",
		Issuer:  issuer,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "empty", token: "", wantErr: ErrMissingToken},
		{name: "garbage", token: "invalid.token.here", wantErr: ErrInvalidToken},
		{name: "foreign signature", token: foreign, wantErr: ErrInvalidToken},
		{name: "expired", token: stale, wantErr: ErrInvalidToken},
		{name: "wrong issuer", token: wrongIssuer, wantErr: ErrInvalidToken},
		{name: "malformed subject", token: badSubject, wantErr: ErrInvalidToken},
		{name: "unsigned", token: noneAlg, wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Parse(tt.token); !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSigner_FromRequest(t *testing.T) {
	s, _ := NewSigner("test-secret", time.Hour)
	id, token, _ := s.Issue()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := s.FromRequest(req); !errors.Is(err, ErrMissingToken) {
		t.Errorf("expected ErrMissingToken without cookie, got %v", err)
	}

	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	got, err := s.FromRequest(req)
	if err != nil {
		t.Fatalf("FromRequest() error = %v", err)
	}
	if got != id {
		t.Errorf("FromRequest() = %q, want %q", got, id)
	}
}
