package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/agendarbrasil/agendar/internal/platform/events"
)

// Gateway authenticates users against one identity backend.
type Gateway interface {
	SignIn(ctx context.Context, cred Credential) (*Identity, error)
	SignUp(ctx context.Context, email, password, displayName string) (*Identity, error)
	SignOut(ctx context.Context, identityID string) error
	// OnStateChange calls fn after every sign-in, sign-up and sign-out made
	// through this process. fn receives nil on sign-out.
	OnStateChange(fn func(*Identity)) (unsubscribe func())
}

// MinPasswordLength is the shortest password a backend accepts.
const MinPasswordLength = 6

var validate = validator.New()

func checkEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return newError(CodeInvalidEmail, nil)
	}
	return nil
}

func checkPassword(password string) error {
	if len(password) < MinPasswordLength {
		return newError(CodeWeakPassword, nil)
	}
	return nil
}

// notifier is the state change plumbing shared by the backends.
type notifier struct {
	broker *events.Broker
}

func (n notifier) publish(ctx context.Context, kind events.Kind, id *Identity) {
	n.broker.Publish(ctx, eventFor(kind, id))
}

func (n notifier) signedOut(ctx context.Context, uid string) {
	n.broker.Publish(ctx, events.IdentityEvent{Kind: events.SignedOut, UID: uid})
}

func (n notifier) OnStateChange(fn func(*Identity)) (unsubscribe func()) {
	return n.broker.Subscribe(func(_ context.Context, ev events.IdentityEvent) {
		if ev.Remote {
			return
		}
		fn(identityFromEvent(ev))
	})
}

// unsupported answers the credential kinds no backend implements.
func unsupported(kind CredentialKind) error {
	return newError(CodeOperationNotAllowed, fmt.Errorf("credential kind %q", kind))
}

// wrapBackend marks a backend fault so it is not shown as a credential error.
func wrapBackend(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *GatewayError
	if errors.As(err, &gerr) {
		return err
	}
	return fmt.Errorf("identity %s: %w", op, err)
}
