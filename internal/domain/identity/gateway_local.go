package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"

	"github.com/agendarbrasil/agendar/internal/platform/events"
)

// TokenValidator checks a Google ID token. idtoken.Validate satisfies it
// through GoogleTokenValidator.
type TokenValidator interface {
	Validate(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

// GoogleTokenValidator validates tokens against Google's published keys.
type GoogleTokenValidator struct{}

func (GoogleTokenValidator) Validate(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
	return idtoken.Validate(ctx, token, audience)
}

// LocalGateway keeps accounts in Postgres, hashes passwords with bcrypt and
// accepts Google ID tokens issued for clientID.
type LocalGateway struct {
	notifier
	accounts   AccountRepository
	google     TokenValidator
	clientID   string
	bcryptCost int
}

func NewLocalGateway(accounts AccountRepository, google TokenValidator, clientID string, broker *events.Broker) *LocalGateway {
	return &LocalGateway{
		notifier:   notifier{broker: broker},
		accounts:   accounts,
		google:     google,
		clientID:   clientID,
		bcryptCost: bcrypt.DefaultCost,
	}
}

func (g *LocalGateway) SignUp(ctx context.Context, email, password, displayName string) (*Identity, error) {
	email = strings.TrimSpace(email)
	if err := checkEmail(email); err != nil {
		return nil, err
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), g.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("identity sign-up: hash password: %w", err)
	}
	h := string(hash)

	acct := &Account{Email: email, PasswordHash: &h, Provider: ProviderPassword}
	if displayName != "" {
		acct.DisplayName = &displayName
	}
	if err := g.accounts.Create(ctx, acct); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, newError(CodeEmailAlreadyInUse, nil)
		}
		return nil, wrapBackend("sign-up", err)
	}

	id := acct.Identity()
	g.publish(ctx, events.SignedUp, id)
	return id, nil
}

func (g *LocalGateway) SignIn(ctx context.Context, cred Credential) (*Identity, error) {
	if cred.ClientError != "" {
		return nil, clientError(cred.ClientError)
	}

	var (
		id    *Identity
		isNew bool
		err   error
	)
	switch cred.Kind {
	case KindPassword:
		id, err = g.signInPassword(ctx, cred.Email, cred.Password)
	case KindGoogle:
		id, isNew, err = g.signInGoogle(ctx, cred.IDToken)
	default:
		return nil, unsupported(cred.Kind)
	}
	if err != nil {
		return nil, err
	}

	kind := events.SignedIn
	if isNew {
		kind = events.SignedUp
	}
	g.publish(ctx, kind, id)
	return id, nil
}

func (g *LocalGateway) signInPassword(ctx context.Context, email, password string) (*Identity, error) {
	email = strings.TrimSpace(email)
	if err := checkEmail(email); err != nil {
		return nil, err
	}

	acct, err := g.accounts.GetByEmail(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, newError(CodeUserNotFound, nil)
	}
	if err != nil {
		return nil, wrapBackend("sign-in", err)
	}
	if acct.PasswordHash == nil {
		// Google-only account.
		return nil, newError(CodeInvalidCredential, nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*acct.PasswordHash), []byte(password)); err != nil {
		return nil, newError(CodeWrongPassword, nil)
	}
	return acct.Identity(), nil
}

// signInGoogle resolves a Google ID token to an account, linking by email to
// an existing password account or creating a new one.
func (g *LocalGateway) signInGoogle(ctx context.Context, token string) (*Identity, bool, error) {
	if g.google == nil || g.clientID == "" {
		return nil, false, unsupported(KindGoogle)
	}
	if token == "" {
		return nil, false, newError(CodeInvalidCredential, errors.New("missing id token"))
	}

	payload, err := g.google.Validate(ctx, token, g.clientID)
	if err != nil {
		return nil, false, newError(CodeInvalidCredential, err)
	}
	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	if payload.Subject == "" || email == "" {
		return nil, false, newError(CodeInvalidCredential, errors.New("token without subject or email"))
	}

	acct, err := g.accounts.GetByGoogleSubject(ctx, payload.Subject)
	if err == nil {
		return acct.Identity(), false, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, false, wrapBackend("google sign-in", err)
	}

	acct, err = g.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := g.accounts.LinkGoogle(ctx, acct.ID, payload.Subject); err != nil {
			return nil, false, wrapBackend("google sign-in", err)
		}
		return acct.Identity(), false, nil
	case !errors.Is(err, ErrAccountNotFound):
		return nil, false, wrapBackend("google sign-in", err)
	}

	subject := payload.Subject
	acct = &Account{Email: email, Provider: ProviderGoogle, GoogleSubject: &subject}
	if name != "" {
		acct.DisplayName = &name
	}
	if err := g.accounts.Create(ctx, acct); err != nil {
		return nil, false, wrapBackend("google sign-in", err)
	}
	return acct.Identity(), true, nil
}

func (g *LocalGateway) SignOut(ctx context.Context, identityID string) error {
	g.signedOut(ctx, identityID)
	return nil
}
