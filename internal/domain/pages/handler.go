package pages

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type Handler struct {
	logger zerolog.Logger
}

func NewHandler(logger zerolog.Logger) *Handler {
	return &Handler{logger: logger.With().Str("component", "pages").Logger()}
}

// RegisterRoutes mounts every public page, wrapped in m, and the catch-all
// not-found page.
func (h *Handler) RegisterRoutes(e *echo.Echo, m ...echo.MiddlewareFunc) {
	for _, p := range All() {
		e.GET(p.Path, h.Show(p), m...)
	}
	e.RouteNotFound("/*", h.NotFound)
}

func (h *Handler) Show(p Page) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, p)
	}
}

// NotFound answers unknown routes with the not-found page.
func (h *Handler) NotFound(c echo.Context) error {
	path := c.Request().URL.Path
	h.logger.Warn().Str("path", path).Msg("route not found")
	p := notFound
	p.Path = path
	return c.JSON(http.StatusNotFound, p)
}
