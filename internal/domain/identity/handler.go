package identity

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agendarbrasil/agendar/internal/platform/auth"
)

type Handler struct {
	svc           *Service
	secureCookies bool
}

func NewHandler(svc *Service, secureCookies bool) *Handler {
	return &Handler{svc: svc, secureCookies: secureCookies}
}

// RegisterRoutes mounts the session routes. Sign-in itself lives with the
// onboarding handler because its answer depends on the profile record.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/logout", h.Logout)
	e.GET("/auth/me", h.Me)
}

// SessionView describes the caller's session.
type SessionView struct {
	Identity  *Identity `json:"identity"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type logoutResponse struct {
	Redirect string `json:"redirect"`
}

func (h *Handler) Logout(c echo.Context) error {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		auth.ClearSessionCookie(c, h.secureCookies)
		return c.JSON(http.StatusOK, logoutResponse{Redirect: "/"})
	}
	if err := h.svc.SignOut(c.Request().Context(), p); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "sign-out failed").SetInternal(err)
	}
	auth.ClearSessionCookie(c, h.secureCookies)
	return c.JSON(http.StatusOK, logoutResponse{Redirect: "/"})
}

func (h *Handler) Me(c echo.Context) error {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	return c.JSON(http.StatusOK, SessionView{Identity: IdentityFromPrincipal(p), ExpiresAt: p.ExpiresAt})
}
