package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/agendarbrasil/agendar/internal/domain/identity"
	"github.com/agendarbrasil/agendar/internal/domain/onboarding"
	"github.com/agendarbrasil/agendar/internal/domain/profile"
)

// ErrWrongDashboard is returned by Edit when the caller's record is not
// resolved to the dashboard's role. The returned view carries the redirect.
var ErrWrongDashboard = errors.New("record does not belong to this dashboard")

// View is the dashboard body. Exactly one of Paciente and Medico is set when
// the caller is on the right dashboard; otherwise only Redirect is.
type View struct {
	State    onboarding.State       `json:"state"`
	Redirect string                 `json:"redirect,omitempty"`
	Profile  *profile.Record        `json:"profile,omitempty"`
	Paciente *PatientPanel          `json:"paciente,omitempty"`
	Medico   *DoctorPanel           `json:"medico,omitempty"`
	Toast    *onboarding.Toast      `json:"toast,omitempty"`
	Errors   onboarding.FieldErrors `json:"errors,omitempty"`
}

var toastUpdated = &onboarding.Toast{
	Title:       "Perfil atualizado",
	Description: "Suas alterações foram salvas.",
	Variant:     onboarding.ToastDefault,
}

type Service struct {
	store  profile.Store
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(store profile.Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "dashboard").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Load returns the dashboard of role for id. A caller without a resolved
// record is sent to the completion form and a caller of the other role to
// their own dashboard.
func (s *Service) Load(ctx context.Context, id *identity.Identity, role profile.Role) (*View, error) {
	rec, err := s.store.Get(ctx, id.ID)
	if errors.Is(err, profile.ErrNotFound) {
		rec, err = nil, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("uid", id.ID).Msg("profile lookup failed")
		return nil, fmt.Errorf("load dashboard: %w: %w", onboarding.ErrStore, err)
	}

	state := onboarding.Resolve(id, rec)
	if state != onboarding.StateResolved {
		return &View{State: state, Redirect: onboarding.Redirect(state, rec)}, nil
	}
	if have, _ := rec.Role(); have != role {
		return &View{State: state, Redirect: have.Dashboard()}, nil
	}

	view := &View{State: state, Profile: rec}
	switch role {
	case profile.RolePaciente:
		view.Paciente = patientPanel()
	case profile.RoleMedico:
		view.Medico = doctorPanel()
	}
	return view, nil
}

// Edit merges a PATCH body into the caller's record and returns the updated
// dashboard. Validation failures return onboarding.FieldErrors and nothing is
// written.
func (s *Service) Edit(ctx context.Context, id *identity.Identity, role profile.Role, body []byte) (*View, error) {
	view, err := s.Load(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if view.Redirect != "" {
		return view, ErrWrongDashboard
	}

	fields, err := ParseEdit(role, body)
	if err != nil {
		return view, err
	}
	if len(fields) == 0 {
		return view, nil
	}
	fields[profile.FieldDataAtualizacao] = s.now()

	if err := s.store.Merge(ctx, id.ID, fields); err != nil {
		s.logger.Error().Err(err).Str("uid", id.ID).Msg("profile edit failed")
		return view, fmt.Errorf("edit profile: %w: %w", onboarding.ErrStore, err)
	}

	updated := *view.Profile
	if err := fields.Apply(&updated); err != nil {
		return view, err
	}
	s.logger.Info().Str("uid", id.ID).Int("fields", len(fields)-1).Msg("profile edited")

	view.Profile = &updated
	view.Toast = toastUpdated
	return view, nil
}
