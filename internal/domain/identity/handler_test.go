package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/agendarbrasil/agendar/internal/platform/auth"
)

func TestHandler_LogoutRevokesAndClearsCookie(t *testing.T) {
	svc, issuer, revoked := newTestService(t)
	h := NewHandler(svc, false)
	e := echo.New()

	_, sess, err := svc.SignUp(context.Background(), "a@b.com", "secret1", "")
	if err != nil {
		t.Fatal(err)
	}
	p, _ := issuer.Verify(sess.Token)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), p))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var body logoutResponse
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Redirect != "/" {
		t.Errorf("expected redirect /, got %q", body.Redirect)
	}

	cleared := false
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == auth.SessionCookie && ck.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected session cookie to be cleared")
	}
	if ok, _ := revoked.IsRevoked(context.Background(), sess.ID); !ok {
		t.Error("expected session to be revoked")
	}
}

func TestHandler_LogoutAnonymous(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := NewHandler(svc, false)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	if err := h.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_Me(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := NewHandler(svc, false)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	err := h.Me(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous caller, got %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), &auth.Principal{UID: "u1", Email: "a@b.com", Provider: "password"}))
	rec = httptest.NewRecorder()
	if err := h.Me(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var view SessionView
	json.Unmarshal(rec.Body.Bytes(), &view)
	if view.Identity == nil || view.Identity.ID != "u1" {
		t.Errorf("unexpected view %+v", view)
	}
}
