package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "agendar_session"

// SessionMiddleware resolves the caller's identity from a Bearer token or the
// session cookie. A missing, invalid, expired or revoked session leaves the
// request anonymous; only RequireIdentity turns that into a redirect. A stale
// cookie is cleared with the same Secure attribute the handlers set it with.
func SessionMiddleware(issuer *Issuer, revoked RevocationStore, logger zerolog.Logger, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if InfraSkipper(c) {
				return next(c)
			}

			token, fromCookie := sessionToken(c.Request())
			if token == "" {
				return next(c)
			}

			p, err := issuer.Verify(token)
			if err != nil {
				if fromCookie {
					ClearSessionCookie(c, secure)
				}
				return next(c)
			}

			if revoked != nil {
				isRevoked, err := revoked.IsRevoked(c.Request().Context(), p.SessionID)
				if err != nil {
					// Fail closed.
					logger.Error().Err(err).Str("uid", p.UID).Msg("session revocation check failed")
					return next(c)
				}
				if isRevoked {
					if fromCookie {
						ClearSessionCookie(c, secure)
					}
					return next(c)
				}
			}

			ctx := WithPrincipal(c.Request().Context(), p)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func sessionToken(r *http.Request) (token string, fromCookie bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1]), false
		}
		return "", false
	}
	if ck, err := r.Cookie(SessionCookie); err == nil {
		return ck.Value, true
	}
	return "", false
}

// RequireIdentity guards a route on "is anyone signed in". Anonymous callers
// get 303 See Other to loginPath. The record's role is not consulted.
func RequireIdentity(loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := PrincipalFromContext(c.Request().Context()); !ok {
				return c.Redirect(http.StatusSeeOther, loginPath)
			}
			return next(c)
		}
	}
}

// SetSessionCookie stores s in an HttpOnly cookie that expires with it.
func SetSessionCookie(c echo.Context, s *Session, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
