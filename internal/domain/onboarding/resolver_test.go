package onboarding

import (
	"testing"

	"github.com/agendarbrasil/agendar/internal/domain/identity"
	"github.com/agendarbrasil/agendar/internal/domain/profile"
)

func tipo(s string) *string { return &s }

func TestResolve(t *testing.T) {
	id := &identity.Identity{ID: "u1", Email: "a@b.com"}

	tests := []struct {
		name string
		id   *identity.Identity
		rec  *profile.Record
		want State
	}{
		{"no identity", nil, nil, StateAnonymous},
		{"no identity ignores record", nil, &profile.Record{UID: "u1", Tipo: tipo("medico")}, StateAnonymous},
		{"no record", id, nil, StateNeedsRecord},
		{"unset tipo", id, &profile.Record{UID: "u1"}, StateNeedsRole},
		{"unrecognized tipo", id, &profile.Record{UID: "u1", Tipo: tipo("admin")}, StateNeedsRole},
		{"empty tipo", id, &profile.Record{UID: "u1", Tipo: tipo("")}, StateNeedsRole},
		{"paciente", id, &profile.Record{UID: "u1", Tipo: tipo("paciente")}, StateResolved},
		{"medico", id, &profile.Record{UID: "u1", Tipo: tipo("medico")}, StateResolved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.id, tt.rec); got != tt.want {
				t.Errorf("Resolve() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRedirect(t *testing.T) {
	if got := Redirect(StateResolved, &profile.Record{Tipo: tipo("medico")}); got != "/perfil-medico" {
		t.Errorf("expected /perfil-medico, got %q", got)
	}
	if got := Redirect(StateResolved, &profile.Record{Tipo: tipo("paciente")}); got != "/perfil-paciente" {
		t.Errorf("expected /perfil-paciente, got %q", got)
	}
	if got := Redirect(StateNeedsRole, &profile.Record{}); got != CadastroPath {
		t.Errorf("expected %s, got %q", CadastroPath, got)
	}
	if got := Redirect(StateAnonymous, nil); got != "" {
		t.Errorf("expected no redirect for anonymous, got %q", got)
	}
}
