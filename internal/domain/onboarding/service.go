package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/agendarbrasil/agendar/internal/domain/identity"
	"github.com/agendarbrasil/agendar/internal/domain/profile"
	"github.com/agendarbrasil/agendar/internal/platform/auth"
)

var (
	// ErrAlreadyResolved is returned by CompleteProfile when the record
	// already has a role. Nothing is written.
	ErrAlreadyResolved = errors.New("profile already has a role")

	// ErrStore wraps profile store failures. The caller shows a generic toast.
	ErrStore = errors.New("profile store unavailable")
)

// Identities is what onboarding needs from the identity service.
type Identities interface {
	SignIn(ctx context.Context, cred identity.Credential) (*identity.Identity, *auth.Session, error)
	SignUp(ctx context.Context, email, password, displayName string) (*identity.Identity, *auth.Session, error)
}

type Service struct {
	identities Identities
	store      profile.Store
	logger     zerolog.Logger
	ensure     singleflight.Group
	now        func() time.Time
}

func NewService(identities Identities, store profile.Store, logger zerolog.Logger) *Service {
	return &Service{
		identities: identities,
		store:      store,
		logger:     logger.With().Str("component", "onboarding").Logger(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}

// Lookup returns the identity's record, or nil when none exists.
func (s *Service) Lookup(ctx context.Context, uid string) (*profile.Record, error) {
	rec, err := s.store.Get(ctx, uid)
	if errors.Is(err, profile.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("uid", uid).Msg("profile lookup failed")
		return nil, storeError("lookup", err)
	}
	return rec, nil
}

// EnsureRecord returns the identity's record, creating a minimal one with no
// role when none exists. An existing record is returned untouched. Concurrent
// calls for the same identity share one store round trip.
func (s *Service) EnsureRecord(ctx context.Context, id *identity.Identity) (*profile.Record, error) {
	v, err, _ := s.ensure.Do(id.ID, func() (interface{}, error) {
		rec, err := s.Lookup(ctx, id.ID)
		if err != nil || rec != nil {
			return rec, err
		}

		now := s.now()
		rec = &profile.Record{
			UID:          id.ID,
			Email:        id.Email,
			NomeCompleto: id.DisplayName,
			Telefone:     id.Phone,
			Provider:     string(id.Provider),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		created, err := s.store.Create(ctx, rec)
		if err != nil {
			s.logger.Error().Err(err).Str("uid", id.ID).Msg("profile create failed")
			return nil, storeError("create record", err)
		}
		if !created {
			// Another replica created it between the lookup and the insert.
			return s.existing(ctx, id.ID)
		}
		s.logger.Info().Str("uid", id.ID).Msg("profile record created")
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	rec := *v.(*profile.Record)
	return &rec, nil
}

func (s *Service) existing(ctx context.Context, uid string) (*profile.Record, error) {
	rec, err := s.Lookup(ctx, uid)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, storeError("create record", profile.ErrNotFound)
	}
	return rec, nil
}

// CompleteProfile validates form and writes the role and its fields. A record
// that already has a valid role is left alone and ErrAlreadyResolved is
// returned. Validation failures return FieldErrors without any write.
func (s *Service) CompleteProfile(ctx context.Context, id *identity.Identity, form RoleForm) (*profile.Record, error) {
	rec, err := s.Lookup(ctx, id.ID)
	if err != nil {
		return nil, err
	}
	if Resolve(id, rec) == StateResolved {
		return rec, ErrAlreadyResolved
	}

	form.normalize()
	if err := form.requireContact(Validate(&form)); err != nil {
		return nil, err
	}

	if rec == nil {
		if rec, err = s.EnsureRecord(ctx, id); err != nil {
			return nil, err
		}
	}
	return s.complete(ctx, rec, &form)
}

func (s *Service) complete(ctx context.Context, rec *profile.Record, form *RoleForm) (*profile.Record, error) {
	fields := form.ProfileFields()
	fields[profile.FieldPerfilCompleto] = true
	fields[profile.FieldDataAtualizacao] = s.now()

	if err := s.store.Merge(ctx, rec.UID, fields); err != nil {
		s.logger.Error().Err(err).Str("uid", rec.UID).Str("tipo", form.Tipo).Msg("profile completion failed")
		return nil, storeError("complete profile", err)
	}

	updated := *rec
	if err := fields.Apply(&updated); err != nil {
		return nil, err
	}
	s.logger.Info().Str("uid", rec.UID).Str("tipo", form.Tipo).Msg("profile completed")
	return &updated, nil
}

// Registration is the outcome of Register. Identity and Session are set as
// soon as the account exists, even when the profile write then fails.
type Registration struct {
	Identity *identity.Identity
	Session  *auth.Session
	Record   *profile.Record
	Redirect string
}

// Register creates credentials and a completed profile in one step. Invalid
// input returns FieldErrors before the gateway is called.
func (s *Service) Register(ctx context.Context, form RegistrationForm) (*Registration, error) {
	form.normalize()
	if err := Validate(&form); err != nil {
		return nil, err
	}

	id, sess, err := s.identities.SignUp(ctx, form.Email, form.Senha, form.NomeCompleto)
	if err != nil {
		return nil, err
	}
	reg := &Registration{Identity: id, Session: sess, Redirect: CadastroPath}

	rec, err := s.EnsureRecord(ctx, id)
	if err != nil {
		return reg, err
	}
	if rec, err = s.complete(ctx, rec, &form.RoleForm); err != nil {
		return reg, err
	}
	reg.Record = rec
	reg.Redirect = form.Role().Dashboard()
	return reg, nil
}

// SignIn authenticates and resolves the identity's state, creating the
// record on first sign-in.
func (s *Service) SignIn(ctx context.Context, cred identity.Credential) (*identity.Identity, *auth.Session, *profile.Record, error) {
	id, sess, err := s.identities.SignIn(ctx, cred)
	if err != nil {
		return nil, nil, nil, err
	}
	rec, err := s.EnsureRecord(ctx, id)
	return id, sess, rec, err
}

// OnIdentityChange is subscribed to the identity service so a record exists
// as soon as someone signs in. Sign-outs are ignored.
func (s *Service) OnIdentityChange(id *identity.Identity) {
	if id == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.EnsureRecord(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("uid", id.ID).Msg("ensure record on sign-in failed")
	}
}
