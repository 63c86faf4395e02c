// Package onboarding decides, for a signed-in identity and its profile
// record, whether to show the registration form, the completion form or the
// role's dashboard, and writes completed profiles back to the store.
package onboarding

import (
	"github.com/agendarbrasil/agendar/internal/domain/identity"
	"github.com/agendarbrasil/agendar/internal/domain/profile"
)

// State is where an identity stands in onboarding.
type State string

const (
	StateAnonymous   State = "ANONYMOUS"
	StateNeedsRecord State = "NEEDS_RECORD"
	StateNeedsRole   State = "NEEDS_ROLE"
	StateResolved    State = "RESOLVED"
)

// Resolve is the pure state decision. rec is nil when no record exists. An
// unrecognized tipo counts as unset.
func Resolve(id *identity.Identity, rec *profile.Record) State {
	switch {
	case id == nil:
		return StateAnonymous
	case rec == nil:
		return StateNeedsRecord
	}
	if _, ok := rec.Role(); ok {
		return StateResolved
	}
	return StateNeedsRole
}

// Redirect returns the route a state sends the client to, if any.
func Redirect(state State, rec *profile.Record) string {
	switch state {
	case StateResolved:
		role, _ := rec.Role()
		return role.Dashboard()
	case StateNeedsRecord, StateNeedsRole:
		return CadastroPath
	}
	return ""
}

const (
	CadastroPath = "/cadastro"
	LoginPath    = "/login"
	HomePath     = "/"
)
