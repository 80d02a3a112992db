package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the name of the session cookie issued to browsers.
const CookieName = "mathtrail_session"

// scopeKey is the context key under which the per-request scope lives.
type scopeKey struct{}

// scope carries the client context of one HTTP request: the token that
// arrived with it and the writer through which cookies go back out. It is
// mutated in place so a Create followed by Current within the same request
// observes the new session.
type scope struct {
	w     http.ResponseWriter
	token string
}

// CookieManager realizes Manager over an HMAC-signed token held in a
// session cookie. The token is opaque to the client; the server validates
// the signature and expiry on every read. No server-side session table is
// kept, which matches the design's single-binding, replace-on-create
// session model.
type CookieManager struct {
	signingKey []byte
	ttl        time.Duration
	timeFunc   func() time.Time // Injectable for testing
	secure     bool
}

// sessionClaims is the signed payload of the session token.
type sessionClaims struct {
	AccountID uuid.UUID `json:"aid"`
	jwt.RegisteredClaims
}

var _ Manager = (*CookieManager)(nil)

// NewCookieManager creates a cookie-backed session manager.
// The secret must be at least 32 bytes; a shorter key is a configuration
// error surfaced at startup rather than a weaker session silently issued.
func NewCookieManager(secret string, ttl time.Duration, secure bool) (*CookieManager, error) {
	if len(secret) < 32 {
		return nil, errors.New("session secret must be at least 32 characters")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	return &CookieManager{
		signingKey: []byte(secret),
		ttl:        ttl,
		timeFunc:   time.Now,
		secure:     secure,
	}, nil
}

// WithRequest prepares the context with the request's session scope.
// Handlers reached without this (direct service calls, tests using
// MemoryManager) are unaffected; CookieManager requires it.
func (m *CookieManager) WithRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) context.Context {
	s := &scope{w: w}
	if c, err := r.Cookie(CookieName); err == nil {
		s.token = c.Value
	}
	return context.WithValue(ctx, scopeKey{}, s)
}

// Create implements Manager.Create. It signs a fresh session token for the
// account and sets it as the session cookie, replacing any prior session.
func (m *CookieManager) Create(ctx context.Context, accountID uuid.UUID) error {
	s, ok := ctx.Value(scopeKey{}).(*scope)
	if !ok {
		return ErrNoScope
	}

	now := m.timeFunc()
	claims := sessionClaims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.New().String(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
	if err != nil {
		return fmt.Errorf("failed to sign session token: %w", err)
	}

	s.token = token
	http.SetCookie(s.w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		// No MaxAge: the cookie is scoped to the browsing session. The
		// token's own expiry bounds its server-side validity.
	})
	return nil
}

// Current implements Manager.Current. Any parse or validation failure,
// including expiry and signature mismatch, reads as "no session".
func (m *CookieManager) Current(ctx context.Context) (uuid.UUID, bool) {
	s, ok := ctx.Value(scopeKey{}).(*scope)
	if !ok || s.token == "" {
		return uuid.Nil, false
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(
		s.token,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(m.timeFunc),
	)
	if err != nil || !token.Valid || claims.AccountID == uuid.Nil {
		return uuid.Nil, false
	}

	return claims.AccountID, true
}

// Destroy implements Manager.Destroy. It expires the session cookie;
// destroying an absent session is a no-op.
func (m *CookieManager) Destroy(ctx context.Context) error {
	s, ok := ctx.Value(scopeKey{}).(*scope)
	if !ok {
		return ErrNoScope
	}

	s.token = ""
	http.SetCookie(s.w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	return nil
}
