package onboarding

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/agendarbrasil/agendar/internal/domain/identity"
	"github.com/agendarbrasil/agendar/internal/platform/auth"
)

type Handler struct {
	svc           *Service
	secureCookies bool
}

func NewHandler(svc *Service, secureCookies bool) *Handler {
	return &Handler{svc: svc, secureCookies: secureCookies}
}

// RegisterRoutes mounts the onboarding routes. credential wraps the POST
// routes that take passwords, typically a stricter rate limit.
func (h *Handler) RegisterRoutes(e *echo.Echo, credential ...echo.MiddlewareFunc) {
	e.GET(CadastroPath, h.GetCadastro)
	e.POST(CadastroPath, h.PostCadastro, credential...)
	e.GET(LoginPath, h.GetLogin)
	e.POST(LoginPath, h.PostLogin, credential...)
}

func currentIdentity(c echo.Context) *identity.Identity {
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	return identity.IdentityFromPrincipal(p)
}

// bindRoleForm binds a JSON or HTML form body. An HTML form always posts
// anosExperiencia, so an empty input there means unset rather than zero.
func bindRoleForm(c echo.Context, dst any, form *RoleForm) error {
	if err := c.Bind(dst); err != nil {
		return err
	}
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ct, echo.MIMEApplicationForm) || strings.HasPrefix(ct, echo.MIMEMultipartForm) {
		if strings.TrimSpace(c.FormValue("anosExperiencia")) == "" {
			form.AnosExperiencia = nil
		}
	}
	return nil
}

func storeFailure(c echo.Context, state State) error {
	return c.JSON(http.StatusServiceUnavailable, Envelope{State: state, Toast: ToastStoreFailure})
}

// GetCadastro shows the registration form to anonymous callers, the
// completion form to signed-in callers without a role and a redirect to the
// dashboard otherwise. ?tipo= preselects the role.
func (h *Handler) GetCadastro(c echo.Context) error {
	tipo := c.QueryParam("tipo")
	id := currentIdentity(c)
	if id == nil {
		return c.JSON(http.StatusOK, Envelope{State: StateAnonymous, Form: RegistrationFormView(tipo)})
	}

	rec, err := h.svc.EnsureRecord(c.Request().Context(), id)
	if err != nil {
		return storeFailure(c, StateNeedsRecord)
	}

	state := Resolve(id, rec)
	if state == StateResolved {
		return c.JSON(http.StatusOK, Envelope{State: state, Redirect: Redirect(state, rec), Profile: rec})
	}
	return c.JSON(http.StatusOK, Envelope{State: state, Form: CompletionFormView(tipo), Profile: rec})
}

// PostCadastro registers anonymous callers and completes the profile of
// signed-in ones.
func (h *Handler) PostCadastro(c echo.Context) error {
	if id := currentIdentity(c); id != nil {
		return h.complete(c, id)
	}
	return h.register(c)
}

func (h *Handler) complete(c echo.Context, id *identity.Identity) error {
	var form RoleForm
	if err := bindRoleForm(c, &form, &form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form body")
	}

	rec, err := h.svc.CompleteProfile(c.Request().Context(), id, form)
	var fe FieldErrors
	switch {
	case errors.Is(err, ErrAlreadyResolved):
		return c.JSON(http.StatusOK, Envelope{State: StateResolved, Redirect: Redirect(StateResolved, rec), Profile: rec})
	case errors.As(err, &fe):
		return c.JSON(http.StatusUnprocessableEntity, Envelope{State: StateNeedsRole, Form: CompletionFormView(form.Tipo), Errors: fe})
	case err != nil:
		return storeFailure(c, StateNeedsRole)
	}

	role, _ := rec.Role()
	return c.JSON(http.StatusOK, Envelope{
		State:    StateResolved,
		Redirect: role.Dashboard(),
		Profile:  rec,
		Toast:    CompletedToast(role),
	})
}

func (h *Handler) register(c echo.Context) error {
	var form RegistrationForm
	if err := bindRoleForm(c, &form, &form.RoleForm); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form body")
	}

	reg, err := h.svc.Register(c.Request().Context(), form)
	if reg != nil && reg.Session != nil {
		auth.SetSessionCookie(c, reg.Session, h.secureCookies)
	}

	var fe FieldErrors
	switch {
	case errors.As(err, &fe):
		return c.JSON(http.StatusUnprocessableEntity, Envelope{State: StateAnonymous, Form: RegistrationFormView(form.Tipo), Errors: fe})
	case identity.IsGatewayError(err):
		return c.JSON(http.StatusBadRequest, Envelope{
			State:  StateAnonymous,
			Form:   RegistrationFormView(form.Tipo),
			Toast:  signUpFailedToast(identity.MessageFor(err)),
			Errors: gatewayFieldErrors(err),
		})
	case err != nil && reg != nil:
		// Signed up but the profile write failed: the caller is signed in
		// and lands on the completion form.
		return c.JSON(http.StatusServiceUnavailable, Envelope{
			State:    StateNeedsRole,
			Redirect: CadastroPath,
			Session:  reg.Session,
			Toast:    ToastStoreFailure,
		})
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "registration failed").SetInternal(err)
	}

	role, _ := reg.Record.Role()
	return c.JSON(http.StatusCreated, Envelope{
		State:    StateResolved,
		Redirect: reg.Redirect,
		Profile:  reg.Record,
		Session:  reg.Session,
		Toast:    CompletedToast(role),
	})
}

// gatewayFieldErrors pins credential failures to the field they concern.
func gatewayFieldErrors(err error) FieldErrors {
	var gerr *identity.GatewayError
	if !errors.As(err, &gerr) {
		return nil
	}
	switch gerr.Code {
	case identity.CodeEmailAlreadyInUse, identity.CodeInvalidEmail:
		return FieldErrors{"email": gerr.Message()}
	case identity.CodeWeakPassword:
		return FieldErrors{"senha": gerr.Message()}
	}
	return nil
}

// GetLogin shows the login surface, or where a signed-in caller belongs.
func (h *Handler) GetLogin(c echo.Context) error {
	id := currentIdentity(c)
	if id == nil {
		return c.JSON(http.StatusOK, Envelope{State: StateAnonymous, Form: LoginFormView()})
	}

	rec, err := h.svc.Lookup(c.Request().Context(), id.ID)
	if err != nil {
		return storeFailure(c, StateNeedsRecord)
	}
	state := Resolve(id, rec)
	return c.JSON(http.StatusOK, Envelope{State: state, Redirect: Redirect(state, rec), Profile: rec})
}

// PostLogin signs in and answers with the dashboard or the completion form.
func (h *Handler) PostLogin(c echo.Context) error {
	var cred identity.Credential
	if err := c.Bind(&cred); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid credential body")
	}

	id, sess, rec, err := h.svc.SignIn(c.Request().Context(), cred)
	if id == nil {
		if identity.IsGatewayError(err) {
			env := Envelope{State: StateAnonymous, Toast: loginFailedToast(identity.MessageFor(err))}
			if cred.ClientError != "" {
				env.Redirect = HomePath
			}
			return c.JSON(http.StatusUnauthorized, env)
		}
		return echo.NewHTTPError(http.StatusBadGateway, "identity backend unavailable").SetInternal(err)
	}

	auth.SetSessionCookie(c, sess, h.secureCookies)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, Envelope{
			State:    StateNeedsRecord,
			Redirect: CadastroPath,
			Session:  sess,
			Toast:    ToastStoreFailure,
		})
	}

	state := Resolve(id, rec)
	return c.JSON(http.StatusOK, Envelope{
		State:    state,
		Redirect: Redirect(state, rec),
		Profile:  rec,
		Session:  sess,
		Toast:    welcomeToast(id.DisplayName, id.Email),
	})
}
