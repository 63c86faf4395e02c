package identity

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agendarbrasil/agendar/internal/platform/auth"
)

// Service pairs a gateway with the session issuer: every successful sign-in
// or sign-up yields a session token, and sign-out revokes it.
type Service struct {
	gateway Gateway
	issuer  *auth.Issuer
	revoked auth.RevocationStore
	logger  zerolog.Logger
}

func NewService(gateway Gateway, issuer *auth.Issuer, revoked auth.RevocationStore, logger zerolog.Logger) *Service {
	return &Service{
		gateway: gateway,
		issuer:  issuer,
		revoked: revoked,
		logger:  logger.With().Str("component", "identity").Logger(),
	}
}

func (s *Service) SignIn(ctx context.Context, cred Credential) (*Identity, *auth.Session, error) {
	id, err := s.gateway.SignIn(ctx, cred)
	if err != nil {
		s.logFailure("sign_in", err)
		return nil, nil, err
	}
	sess, err := s.issue(id)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info().Str("uid", id.ID).Str("provider", string(id.Provider)).Msg("signed in")
	return id, sess, nil
}

func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (*Identity, *auth.Session, error) {
	id, err := s.gateway.SignUp(ctx, email, password, displayName)
	if err != nil {
		s.logFailure("sign_up", err)
		return nil, nil, err
	}
	sess, err := s.issue(id)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info().Str("uid", id.ID).Msg("signed up")
	return id, sess, nil
}

// SignOut revokes the caller's session until it would have expired and
// signs the identity out of the backend.
func (s *Service) SignOut(ctx context.Context, p *auth.Principal) error {
	if p.SessionID != "" {
		if err := s.revoked.Revoke(ctx, p.SessionID, p.UID, p.ExpiresAt); err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
	}
	if err := s.gateway.SignOut(ctx, p.UID); err != nil {
		s.logger.Error().Err(err).Str("uid", p.UID).Msg("gateway sign-out failed")
		return err
	}
	s.logger.Info().Str("uid", p.UID).Msg("signed out")
	return nil
}

func (s *Service) OnStateChange(fn func(*Identity)) (unsubscribe func()) {
	return s.gateway.OnStateChange(fn)
}

func (s *Service) issue(id *Identity) (*auth.Session, error) {
	sess, err := s.issuer.Issue(auth.Principal{
		UID:         id.ID,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		Provider:    string(id.Provider),
	})
	if err != nil {
		return nil, fmt.Errorf("issue session for %s: %w", id.ID, err)
	}
	return sess, nil
}

func (s *Service) logFailure(op string, err error) {
	if IsGatewayError(err) {
		s.logger.Info().Str("op", op).Err(err).Msg("credential rejected")
		return
	}
	s.logger.Error().Str("op", op).Err(err).Msg("identity backend failure")
}

// IdentityFromPrincipal rebuilds the identity a verified session describes.
func IdentityFromPrincipal(p *auth.Principal) *Identity {
	if p == nil {
		return nil
	}
	return &Identity{
		ID:          p.UID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Provider:    Provider(p.Provider),
	}
}
