package identity

import (
	"time"

	"github.com/agendarbrasil/agendar/internal/platform/events"
)

// Provider is how an identity authenticated.
type Provider string

const (
	ProviderPassword Provider = "password"
	ProviderGoogle   Provider = "google"
	ProviderFirebase Provider = "firebase"
)

// Identity is an authenticated principal as reported by a gateway backend.
type Identity struct {
	ID          string   `json:"uid"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Provider    Provider `json:"provider"`
}

// CredentialKind selects the sign-in method.
type CredentialKind string

const (
	KindPassword      CredentialKind = "password"
	KindGoogle        CredentialKind = "google"
	KindFirebaseToken CredentialKind = "firebase"
	KindPhone         CredentialKind = "phone"
	KindWebAuthn      CredentialKind = "webauthn"
)

// Credential is what the client submits to sign in. IDToken carries the
// Google or Firebase ID token for federated kinds. ClientError is set when
// the browser popup failed before producing a token.
type Credential struct {
	Kind        CredentialKind `json:"kind" form:"kind"`
	Email       string         `json:"email,omitempty" form:"email"`
	Password    string         `json:"password,omitempty" form:"password"`
	IDToken     string         `json:"idToken,omitempty" form:"idToken"`
	Phone       string         `json:"phone,omitempty" form:"phone"`
	Code        string         `json:"code,omitempty" form:"code"`
	ClientError string         `json:"clientError,omitempty" form:"clientError"`
}

// Account is a row of identity_account, owned by the local backend.
type Account struct {
	ID            string
	Email         string
	PasswordHash  *string
	DisplayName   *string
	Phone         *string
	Provider      Provider
	GoogleSubject *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (a *Account) Identity() *Identity {
	id := &Identity{ID: a.ID, Email: a.Email, Provider: a.Provider}
	if a.DisplayName != nil {
		id.DisplayName = *a.DisplayName
	}
	if a.Phone != nil {
		id.Phone = *a.Phone
	}
	return id
}

func eventFor(kind events.Kind, id *Identity) events.IdentityEvent {
	return events.IdentityEvent{
		Kind:        kind,
		UID:         id.ID,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		Provider:    string(id.Provider),
	}
}

// identityFromEvent rebuilds the identity an event describes, or nil for a
// sign-out.
func identityFromEvent(ev events.IdentityEvent) *Identity {
	if !ev.SignedInNow() {
		return nil
	}
	return &Identity{
		ID:          ev.UID,
		Email:       ev.Email,
		DisplayName: ev.DisplayName,
		Provider:    Provider(ev.Provider),
	}
}
