package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-session-secret-0123456789abcdef"

func newTestCookieManager(t *testing.T) *CookieManager {
	t.Helper()
	m, err := NewCookieManager(testSecret, time.Hour, false)
	require.NoError(t, err)
	return m
}

// requestScope builds the context a request going through the session
// middleware would carry, optionally presenting an incoming cookie.
func requestScope(m *CookieManager, cookie *http.Cookie) (context.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		r.AddCookie(cookie)
	}
	return m.WithRequest(context.Background(), w, r), w
}

// issuedCookie extracts the session cookie set on the recorder.
func issuedCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestNewCookieManagerValidation(t *testing.T) {
	_, err := NewCookieManager("short", time.Hour, false)
	assert.Error(t, err)

	_, err = NewCookieManager(testSecret, 0, false)
	assert.Error(t, err)
}

func TestCookieManagerCreateSetsSessionCookie(t *testing.T) {
	m := newTestCookieManager(t)
	id := uuid.New()

	ctx, w := requestScope(m, nil)
	require.NoError(t, m.Create(ctx, id))

	c := issuedCookie(t, w)
	assert.NotEmpty(t, c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
	assert.Zero(t, c.MaxAge, "session-scoped cookie carries no MaxAge")

	// Create followed by Current within the same request sees the session.
	got, ok := m.Current(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestCookieManagerRoundTrip(t *testing.T) {
	m := newTestCookieManager(t)
	id := uuid.New()

	ctx, w := requestScope(m, nil)
	require.NoError(t, m.Create(ctx, id))
	c := issuedCookie(t, w)

	// A later request presenting the cookie resolves the same account.
	ctx2, _ := requestScope(m, c)
	got, ok := m.Current(ctx2)
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestCookieManagerNoSession(t *testing.T) {
	m := newTestCookieManager(t)

	// No cookie on the request.
	ctx, _ := requestScope(m, nil)
	_, ok := m.Current(ctx)
	assert.False(t, ok)

	// No request scope at all.
	_, ok = m.Current(context.Background())
	assert.False(t, ok)
}

func TestCookieManagerRejectsMalformedToken(t *testing.T) {
	m := newTestCookieManager(t)

	ctx, _ := requestScope(m, &http.Cookie{Name: CookieName, Value: "not-a-token"})
	_, ok := m.Current(ctx)
	assert.False(t, ok)
}

func TestCookieManagerRejectsForeignSignature(t *testing.T) {
	m := newTestCookieManager(t)
	other, err := NewCookieManager("another-secret-key-0123456789abcdef", time.Hour, false)
	require.NoError(t, err)

	ctx, w := requestScope(other, nil)
	require.NoError(t, other.Create(ctx, uuid.New()))
	c := issuedCookie(t, w)

	ctx2, _ := requestScope(m, c)
	_, ok := m.Current(ctx2)
	assert.False(t, ok, "token signed with a different key must not validate")
}

func TestCookieManagerExpiry(t *testing.T) {
	m := newTestCookieManager(t)
	now := time.Now()
	m.timeFunc = func() time.Time { return now }

	ctx, w := requestScope(m, nil)
	require.NoError(t, m.Create(ctx, uuid.New()))
	c := issuedCookie(t, w)

	// Still valid just before the ttl elapses.
	m.timeFunc = func() time.Time { return now.Add(59 * time.Minute) }
	ctx2, _ := requestScope(m, c)
	_, ok := m.Current(ctx2)
	assert.True(t, ok)

	// Reads as absent once expired.
	m.timeFunc = func() time.Time { return now.Add(2 * time.Hour) }
	ctx3, _ := requestScope(m, c)
	_, ok = m.Current(ctx3)
	assert.False(t, ok)
}

func TestCookieManagerDestroy(t *testing.T) {
	m := newTestCookieManager(t)

	ctx, w := requestScope(m, nil)
	require.NoError(t, m.Create(ctx, uuid.New()))
	require.NoError(t, m.Destroy(ctx))

	// Destroy within the same request clears the session view.
	_, ok := m.Current(ctx)
	assert.False(t, ok)

	// The last cookie written expires the session on the client.
	cookies := w.Result().Cookies()
	var last *http.Cookie
	for _, c := range cookies {
		if c.Name == CookieName {
			last = c
		}
	}
	require.NotNil(t, last)
	assert.Empty(t, last.Value)
	assert.Less(t, last.MaxAge, 0)

	// Destroying again is a no-op.
	require.NoError(t, m.Destroy(ctx))
}

func TestCookieManagerRequiresScope(t *testing.T) {
	m := newTestCookieManager(t)

	err := m.Create(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNoScope)

	err = m.Destroy(context.Background())
	assert.ErrorIs(t, err, ErrNoScope)
}
