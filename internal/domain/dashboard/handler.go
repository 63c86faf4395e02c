package dashboard

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agendarbrasil/agendar/internal/domain/identity"
	"github.com/agendarbrasil/agendar/internal/domain/onboarding"
	"github.com/agendarbrasil/agendar/internal/domain/profile"
	"github.com/agendarbrasil/agendar/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts both dashboards behind guard.
func (h *Handler) RegisterRoutes(e *echo.Echo, guard echo.MiddlewareFunc) {
	for _, role := range []profile.Role{profile.RolePaciente, profile.RoleMedico} {
		e.GET(role.Dashboard(), h.Show(role), guard)
		e.PATCH(role.Dashboard(), h.Edit(role), guard)
	}
}

func currentIdentity(c echo.Context) (*identity.Identity, error) {
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	id := identity.IdentityFromPrincipal(p)
	if id == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return id, nil
}

func storeFailure(c echo.Context) error {
	return c.JSON(http.StatusServiceUnavailable, View{
		State: onboarding.StateResolved,
		Toast: onboarding.ToastStoreFailure,
	})
}

// Show returns the dashboard of role, or a redirect when the caller belongs
// elsewhere.
func (h *Handler) Show(role profile.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := currentIdentity(c)
		if err != nil {
			return err
		}
		view, err := h.svc.Load(c.Request().Context(), id, role)
		if err != nil {
			return storeFailure(c)
		}
		return c.JSON(http.StatusOK, view)
	}
}

// Edit applies a partial profile update from the role's dashboard.
func (h *Handler) Edit(role profile.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := currentIdentity(c)
		if err != nil {
			return err
		}
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "could not read body")
		}

		view, err := h.svc.Edit(c.Request().Context(), id, role, body)
		var fe onboarding.FieldErrors
		switch {
		case err == nil:
			return c.JSON(http.StatusOK, view)
		case errors.Is(err, ErrWrongDashboard):
			return c.JSON(http.StatusConflict, view)
		case errors.As(err, &fe):
			view.Errors = fe
			return c.JSON(http.StatusUnprocessableEntity, view)
		case errors.Is(err, onboarding.ErrStore):
			return storeFailure(c)
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid profile body").SetInternal(err)
	}
}
