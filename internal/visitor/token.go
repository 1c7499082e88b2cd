package visitor

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

// CookieName is the cookie carrying the signed visitor token
const CookieName = "sf_visitor"

// DefaultTTL is how long an issued token stays valid
const DefaultTTL = 7 * 24 * time.Hour

const issuer = "sanctumfront"

var (
	ErrMissingToken = errors.New("visitor token missing")
	ErrInvalidToken = errors.New("visitor token invalid")
	ErrEmptySecret  = errors.New("visitor signing secret is required")
)

// Signer issues and verifies HS256 visitor tokens. The subject is the visitor id.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a signer. A non-positive ttl uses DefaultTTL.
func NewSigner(secret string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the token lifetime
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// Issue creates a new visitor id and its signed token
func (s *Signer) Issue() (id string, token string, err error) {
	id = uuid.NewString()
	now := s.now()
	claims := jwt.StandardClaims{
		Subject:   id,
		Issuer:    issuer,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign visitor token: %w", err)
	}
	return id, token, nil
}

// Parse verifies a token and returns the visitor id it carries
func (s *Signer) Parse(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", ErrMissingToken
	}

	var claims jwt.StandardClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Issuer != issuer {
		return "", fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, claims.Issuer)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("%w: malformed visitor id", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// FromRequest returns the visitor id from the request cookie
func (s *Signer) FromRequest(req *http.Request) (string, error) {
	cookie, err := req.Cookie(CookieName)
	if err != nil {
		return "", ErrMissingToken
	}
	return s.Parse(cookie.Value)
}
