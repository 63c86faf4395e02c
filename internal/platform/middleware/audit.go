package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/agendarbrasil/agendar/internal/platform/auth"
)

// AccessEntry records one read or edit of a dashboard. Dashboards expose
// medical history, so every access is logged with who and from where.
type AccessEntry struct {
	UID        string
	Dashboard  string
	Action     string // read, update
	Method     string
	Path       string
	IPAddress  string
	UserAgent  string
	StatusCode int
	RequestID  string
	Timestamp  time.Time
}

// AccessRecorder persists access entries. The zerolog line is always written;
// a recorder adds a second sink.
type AccessRecorder interface {
	RecordAccess(ctx context.Context, entry AccessEntry) error
}

// AccessRecorderFunc is a function adapter for AccessRecorder.
type AccessRecorderFunc func(ctx context.Context, entry AccessEntry) error

func (f AccessRecorderFunc) RecordAccess(ctx context.Context, entry AccessEntry) error {
	return f(ctx, entry)
}

var dashboardPrefixes = []string{"/perfil-paciente", "/perfil-medico"}

// ProfileAccessAudit logs access to the dashboard routes after the handler
// has run, so the entry carries the final status.
func ProfileAccessAudit(logger zerolog.Logger, recorders ...AccessRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			dashboard := dashboardFor(path)
			if dashboard == "" {
				return next(c)
			}

			err := next(c)

			req := c.Request()
			entry := AccessEntry{
				UID:        auth.UIDFromContext(req.Context()),
				Dashboard:  dashboard,
				Action:     methodToAction(req.Method),
				Method:     req.Method,
				Path:       path,
				IPAddress:  c.RealIP(),
				UserAgent:  req.UserAgent(),
				StatusCode: c.Response().Status,
				Timestamp:  time.Now().UTC(),
			}
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			for _, r := range recorders {
				if r == nil {
					continue
				}
				if recErr := r.RecordAccess(req.Context(), entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record profile access")
				}
			}

			logger.Info().
				Str("type", "profile_access").
				Str("request_id", entry.RequestID).
				Str("uid", entry.UID).
				Str("dashboard", entry.Dashboard).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("profile_access")

			return err
		}
	}
}

func dashboardFor(path string) string {
	for _, p := range dashboardPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return strings.TrimPrefix(p, "/perfil-")
		}
	}
	return ""
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPatch, http.MethodPut, http.MethodPost:
		return "update"
	default:
		return "read"
	}
}
