package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/agendarbrasil/agendar/internal/platform/auth"
)

// Recovery turns a panicking handler into a 500. The signed-in uid is logged
// alongside the stack so support can find the affected account.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				req := c.Request()
				rid, _ := c.Get("request_id").(string)
				logger.Error().
					Interface("panic", r).
					Str("request_id", rid).
					Str("uid", auth.UIDFromContext(req.Context())).
					Str("route", req.Method+" "+req.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("handler panicked")

				err = echo.NewHTTPError(http.StatusInternalServerError, "erro interno")
			}()
			return next(c)
		}
	}
}
