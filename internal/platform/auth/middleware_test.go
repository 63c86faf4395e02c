package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type failingRevocations struct{}

func (failingRevocations) Revoke(context.Context, string, string, time.Time) error { return nil }
func (failingRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis: connection refused")
}

// runSession passes req through SessionMiddleware and returns the principal
// the downstream handler saw.
func runSession(t *testing.T, iss *Issuer, revoked RevocationStore, req *http.Request) (*Principal, *httptest.ResponseRecorder) {
	t.Helper()
	return runSecureSession(t, iss, revoked, req, false)
}

func runSecureSession(t *testing.T, iss *Issuer, revoked RevocationStore, req *http.Request, secure bool) (*Principal, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *Principal
	handler := func(c echo.Context) error {
		seen, _ = PrincipalFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	}

	if err := SessionMiddleware(iss, revoked, zerolog.Nop(), secure)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return seen, rec
}

func TestSessionMiddleware_Anonymous(t *testing.T) {
	p, _ := runSession(t, newTestIssuer(t), nil, httptest.NewRequest(http.MethodGet, "/", nil))
	if p != nil {
		t.Fatalf("expected anonymous request, got %+v", p)
	}
}

func TestSessionMiddleware_BearerToken(t *testing.T) {
	iss := newTestIssuer(t)
	sess, _ := iss.Issue(Principal{UID: "uid-1", Email: "a@b.com"})

	req := httptest.NewRequest(http.MethodGet, "/perfil-medico", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)

	p, _ := runSession(t, iss, nil, req)
	if p == nil || p.UID != "uid-1" {
		t.Fatalf("expected principal uid-1, got %+v", p)
	}
}

func TestSessionMiddleware_Cookie(t *testing.T) {
	iss := newTestIssuer(t)
	sess, _ := iss.Issue(Principal{UID: "uid-2"})

	req := httptest.NewRequest(http.MethodGet, "/cadastro", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sess.Token})

	p, _ := runSession(t, iss, nil, req)
	if p == nil || p.UID != "uid-2" {
		t.Fatalf("expected principal uid-2, got %+v", p)
	}
}

func TestSessionMiddleware_InvalidTokenStaysAnonymous(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"garbage", "Bearer not-a-jwt"},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"empty bearer", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tt.header)
			if p, _ := runSession(t, newTestIssuer(t), nil, req); p != nil {
				t.Fatalf("expected anonymous, got %+v", p)
			}
		})
	}
}

func TestSessionMiddleware_InvalidCookieIsCleared(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "stale"})

	p, rec := runSession(t, newTestIssuer(t), nil, req)
	if p != nil {
		t.Fatal("expected anonymous request")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected session cookie to be cleared, got %+v", cookies)
	}
}

func TestSessionMiddleware_ClearedCookieKeepsSecureFlag(t *testing.T) {
	iss := newTestIssuer(t)
	store := NewMemoryRevocationStore()
	defer store.Close()
	sess, _ := iss.Issue(Principal{UID: "uid-1"})
	_ = store.Revoke(context.Background(), sess.ID, "uid-1", sess.ExpiresAt)

	tests := []struct {
		name  string
		token string
	}{
		{"invalid", "stale"},
		{"revoked", sess.Token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, secure := range []bool{true, false} {
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.token})

				_, rec := runSecureSession(t, iss, store, req, secure)
				cookies := rec.Result().Cookies()
				if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
					t.Fatalf("expected session cookie to be cleared, got %+v", cookies)
				}
				if cookies[0].Secure != secure {
					t.Errorf("secure=%v: cleared cookie has Secure=%v", secure, cookies[0].Secure)
				}
			}
		})
	}
}

func TestSessionMiddleware_RevokedSession(t *testing.T) {
	iss := newTestIssuer(t)
	store := NewMemoryRevocationStore()
	defer store.Close()

	sess, _ := iss.Issue(Principal{UID: "uid-1"})
	_ = store.Revoke(context.Background(), sess.ID, "uid-1", sess.ExpiresAt)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)

	if p, _ := runSession(t, iss, store, req); p != nil {
		t.Fatalf("expected revoked session to be anonymous, got %+v", p)
	}
}

func TestSessionMiddleware_RevocationBackendFailureIsAnonymous(t *testing.T) {
	iss := newTestIssuer(t)
	sess, _ := iss.Issue(Principal{UID: "uid-1"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)

	if p, _ := runSession(t, iss, failingRevocations{}, req); p != nil {
		t.Fatalf("expected anonymous when revocation check fails, got %+v", p)
	}
}

func TestSessionMiddleware_SkipsHealth(t *testing.T) {
	iss := newTestIssuer(t)
	sess, _ := iss.Issue(Principal{UID: "uid-1"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)

	if p, _ := runSession(t, iss, nil, req); p != nil {
		t.Fatal("expected health check to skip session resolution")
	}
}

func TestRequireIdentity_RedirectsAnonymous(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/perfil-paciente", nil), rec)

	called := false
	err := RequireIdentity("/login")(func(c echo.Context) error {
		called = true
		return nil
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if called {
		t.Error("guarded handler must not run for anonymous callers")
	}
	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected Location /login, got %q", loc)
	}
}

func TestRequireIdentity_AllowsSignedIn(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/perfil-paciente", nil)
	req = req.WithContext(WithPrincipal(req.Context(), &Principal{UID: "uid-1"}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	_ = RequireIdentity("/login")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)

	if !called {
		t.Error("expected guarded handler to run")
	}
}

func TestSetSessionCookie(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), rec)

	SetSessionCookie(c, &Session{Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}, true)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	ck := cookies[0]
	if ck.Name != SessionCookie || ck.Value != "tok" {
		t.Errorf("unexpected cookie %+v", ck)
	}
	if !ck.HttpOnly || !ck.Secure {
		t.Error("expected HttpOnly and Secure cookie")
	}
}

func TestUIDFromContext(t *testing.T) {
	if uid := UIDFromContext(context.Background()); uid != "" {
		t.Errorf("expected empty uid, got %q", uid)
	}
	ctx := WithPrincipal(context.Background(), &Principal{UID: "uid-3"})
	if uid := UIDFromContext(ctx); uid != "uid-3" {
		t.Errorf("expected uid-3, got %q", uid)
	}
	if _, ok := PrincipalFromContext(WithPrincipal(context.Background(), nil)); ok {
		t.Error("nil principal should read as anonymous")
	}
}
