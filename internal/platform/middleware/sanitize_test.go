package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func runSanitize(req *http.Request) (*httptest.ResponseRecorder, bool) {
	e := echo.New()
	rec := httptest.NewRecorder()
	called := false
	h := Sanitize(zerolog.Nop())(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	_ = h(e.NewContext(req, rec))
	return rec, called
}

func TestSanitize_AllowsNormalRequests(t *testing.T) {
	rec, called := runSanitize(httptest.NewRequest(http.MethodGet, "/cadastro?tipo=medico", nil))
	if !called || rec.Code != http.StatusOK {
		t.Errorf("expected pass-through, got %d", rec.Code)
	}
}

func TestSanitize_Blocks(t *testing.T) {
	tests := []struct {
		name string
		req  func() *http.Request
	}{
		{"script in query", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/cadastro?tipo=%3Cscript%3Ealert(1)%3C/script%3E", nil)
		}},
		{"event handler in query", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/login?next=x%20onload%3Dalert(1)", nil)
		}},
		{"null byte in query", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/cadastro?tipo=a%00b", nil)
		}},
		{"encoded traversal", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/static/%2e%2e/etc/passwd", nil)
		}},
		{"header injection", func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header["X-Test"] = []string{"a\r\nSet-Cookie: x=1"}
			return r
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, called := runSanitize(tt.req())
			if called {
				t.Error("expected handler not to run")
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestSanitize_SQLPatternOnlyLogged(t *testing.T) {
	rec, called := runSanitize(httptest.NewRequest(http.MethodGet, "/?q=1%3D1", nil))
	if !called || rec.Code != http.StatusOK {
		t.Errorf("expected pass-through, got %d", rec.Code)
	}
}
