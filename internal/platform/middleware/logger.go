package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/agendarbrasil/agendar/internal/platform/auth"
)

// Logger writes one access line per request. Health checks log at debug,
// client errors at warn and server errors at error.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			began := time.Now()
			err := next(c)

			req := c.Request()
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			} else if err != nil {
				status = http.StatusInternalServerError
			}

			var evt *zerolog.Event
			switch {
			case status >= http.StatusInternalServerError:
				evt = logger.Error().Err(err)
			case status >= http.StatusBadRequest:
				evt = logger.Warn()
			case auth.IsInfraPath(req.URL.Path):
				evt = logger.Debug()
			default:
				evt = logger.Info()
			}

			rid, _ := c.Get("request_id").(string)
			fields := map[string]any{
				"request_id": rid,
				"method":     req.Method,
				"path":       req.URL.Path,
				"status":     status,
				"remote_ip":  c.RealIP(),
			}
			if uid := auth.UIDFromContext(req.Context()); uid != "" {
				fields["uid"] = uid
			}
			evt.Fields(fields).
				Dur("took", time.Since(began)).
				Msg("http")

			return err
		}
	}
}
