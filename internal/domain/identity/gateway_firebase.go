package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/agendarbrasil/agendar/internal/platform/events"
)

// FirebaseAuth is the subset of the Admin SDK auth client the gateway uses.
type FirebaseAuth interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// PasswordVerifier checks an email/password pair and returns the Firebase uid.
type PasswordVerifier interface {
	VerifyPassword(ctx context.Context, email, password string) (string, error)
}

// toolkitVerifier signs in through the Identity Toolkit REST API with the
// project's web API key. The Admin SDK has no password check of its own.
type toolkitVerifier struct {
	svc *identitytoolkit.Service
}

func NewToolkitVerifier(ctx context.Context, apiKey string) (PasswordVerifier, error) {
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create identity toolkit client: %w", err)
	}
	return &toolkitVerifier{svc: svc}, nil
}

func (v *toolkitVerifier) VerifyPassword(ctx context.Context, email, password string) (string, error) {
	resp, err := v.svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return "", toolkitError(err)
	}
	return resp.LocalId, nil
}

// toolkitError maps the REST API's error strings onto gateway codes.
func toolkitError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	msg := apiErr.Message
	switch {
	case strings.HasPrefix(msg, "EMAIL_NOT_FOUND"):
		return newError(CodeUserNotFound, err)
	case strings.HasPrefix(msg, "INVALID_PASSWORD"):
		return newError(CodeWrongPassword, err)
	case strings.HasPrefix(msg, "INVALID_EMAIL"):
		return newError(CodeInvalidEmail, err)
	case strings.HasPrefix(msg, "INVALID_LOGIN_CREDENTIALS"), strings.HasPrefix(msg, "USER_DISABLED"):
		return newError(CodeInvalidCredential, err)
	case strings.HasPrefix(msg, "PASSWORD_LOGIN_DISABLED"), strings.HasPrefix(msg, "OPERATION_NOT_ALLOWED"):
		return newError(CodeOperationNotAllowed, err)
	}
	return err
}

// FirebaseGateway delegates accounts to Firebase Authentication.
type FirebaseGateway struct {
	notifier
	auth      FirebaseAuth
	passwords PasswordVerifier
}

func NewFirebaseGateway(client FirebaseAuth, passwords PasswordVerifier, broker *events.Broker) *FirebaseGateway {
	return &FirebaseGateway{
		notifier:  notifier{broker: broker},
		auth:      client,
		passwords: passwords,
	}
}

func (g *FirebaseGateway) SignUp(ctx context.Context, email, password, displayName string) (*Identity, error) {
	email = strings.TrimSpace(email)
	if err := checkEmail(email); err != nil {
		return nil, err
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	params := (&auth.UserToCreate{}).Email(email).Password(password)
	if displayName != "" {
		params = params.DisplayName(displayName)
	}
	user, err := g.auth.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return nil, newError(CodeEmailAlreadyInUse, err)
		}
		return nil, wrapBackend("sign-up", err)
	}

	id := firebaseIdentity(user, ProviderPassword)
	g.publish(ctx, events.SignedUp, id)
	return id, nil
}

func (g *FirebaseGateway) SignIn(ctx context.Context, cred Credential) (*Identity, error) {
	if cred.ClientError != "" {
		return nil, clientError(cred.ClientError)
	}

	var (
		id  *Identity
		err error
	)
	switch cred.Kind {
	case KindPassword:
		id, err = g.signInPassword(ctx, cred.Email, cred.Password)
	case KindGoogle, KindFirebaseToken:
		// The browser completes the Google popup against Firebase and hands
		// over the resulting Firebase ID token.
		id, err = g.signInToken(ctx, cred.IDToken)
	default:
		return nil, unsupported(cred.Kind)
	}
	if err != nil {
		return nil, err
	}

	g.publish(ctx, events.SignedIn, id)
	return id, nil
}

func (g *FirebaseGateway) signInPassword(ctx context.Context, email, password string) (*Identity, error) {
	email = strings.TrimSpace(email)
	if err := checkEmail(email); err != nil {
		return nil, err
	}
	if g.passwords == nil {
		return nil, unsupported(KindPassword)
	}

	uid, err := g.passwords.VerifyPassword(ctx, email, password)
	if err != nil {
		return nil, wrapBackend("sign-in", err)
	}
	user, err := g.auth.GetUser(ctx, uid)
	if err != nil {
		return nil, g.userError(err)
	}
	return firebaseIdentity(user, ProviderPassword), nil
}

func (g *FirebaseGateway) signInToken(ctx context.Context, idToken string) (*Identity, error) {
	if idToken == "" {
		return nil, newError(CodeInvalidCredential, errors.New("missing id token"))
	}
	tok, err := g.auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, newError(CodeInvalidCredential, err)
	}
	user, err := g.auth.GetUser(ctx, tok.UID)
	if err != nil {
		return nil, g.userError(err)
	}
	return firebaseIdentity(user, providerFromSignIn(tok.Firebase.SignInProvider)), nil
}

func (g *FirebaseGateway) userError(err error) error {
	if auth.IsUserNotFound(err) {
		return newError(CodeUserNotFound, err)
	}
	return wrapBackend("get user", err)
}

// SignOut revokes the user's Firebase refresh tokens so other devices have to
// sign in again, then reports the sign-out.
func (g *FirebaseGateway) SignOut(ctx context.Context, identityID string) error {
	if err := g.auth.RevokeRefreshTokens(ctx, identityID); err != nil && !auth.IsUserNotFound(err) {
		return fmt.Errorf("identity sign-out: revoke refresh tokens: %w", err)
	}
	g.signedOut(ctx, identityID)
	return nil
}

func providerFromSignIn(p string) Provider {
	switch p {
	case "google.com":
		return ProviderGoogle
	case "password":
		return ProviderPassword
	}
	return ProviderFirebase
}

func firebaseIdentity(u *auth.UserRecord, provider Provider) *Identity {
	id := &Identity{Provider: provider}
	if u.UserInfo != nil {
		id.ID = u.UID
		id.Email = u.Email
		id.DisplayName = u.DisplayName
		id.Phone = u.PhoneNumber
	}
	return id
}
