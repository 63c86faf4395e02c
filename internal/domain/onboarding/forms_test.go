package onboarding

import (
	"errors"
	"testing"
	"time"

	"github.com/agendarbrasil/agendar/internal/domain/profile"
)

func intPtr(n int) *int { return &n }

func validPatient() RoleForm {
	return RoleForm{Tipo: "paciente", NomeCompleto: "Maria Souza", Telefone: "(11) 99999-9999"}
}

func validDoctor() RoleForm {
	return RoleForm{
		Tipo:          "medico",
		NomeCompleto:  "Ana Silva",
		Telefone:      "11988887777",
		CRM:           "CRM/SP 1",
		Especialidade: "Cardiologia",
	}
}

func fieldErrors(t *testing.T, err error) FieldErrors {
	t.Helper()
	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	return fe
}

func TestValidate_RoleForm(t *testing.T) {
	today = func() time.Time { return time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC) }
	defer func() { today = func() time.Time { return time.Now() } }()

	tests := []struct {
		name      string
		mutate    func(*RoleForm)
		base      func() RoleForm
		wantField string
	}{
		{"patient ok", func(*RoleForm) {}, validPatient, ""},
		{"doctor ok", func(*RoleForm) {}, validDoctor, ""},
		{"doctor without crm", func(f *RoleForm) { f.CRM = "" }, validDoctor, "crm"},
		{"doctor without especialidade", func(f *RoleForm) { f.Especialidade = "" }, validDoctor, "especialidade"},
		{"patient needs no crm", func(f *RoleForm) { f.CRM = "" }, validPatient, ""},
		{"experience too high", func(f *RoleForm) { f.AnosExperiencia = intPtr(71) }, validDoctor, "anosExperiencia"},
		{"experience negative", func(f *RoleForm) { f.AnosExperiencia = intPtr(-1) }, validDoctor, "anosExperiencia"},
		{"experience zero", func(f *RoleForm) { f.AnosExperiencia = intPtr(0) }, validDoctor, ""},
		{"experience seventy", func(f *RoleForm) { f.AnosExperiencia = intPtr(70) }, validDoctor, ""},
		{"short name", func(f *RoleForm) { f.NomeCompleto = "A" }, validPatient, "nomeCompleto"},
		{"short phone", func(f *RoleForm) { f.Telefone = "1199999" }, validPatient, "telefone"},
		{"phone with letters", func(f *RoleForm) { f.Telefone = "11 9999-ABCD" }, validPatient, "telefone"},
		{"missing tipo", func(f *RoleForm) { f.Tipo = "" }, validPatient, "tipo"},
		{"unknown tipo", func(f *RoleForm) { f.Tipo = "admin" }, validPatient, "tipo"},
		{"unknown gender", func(f *RoleForm) { f.Genero = "x" }, validPatient, "genero"},
		{"known gender", func(f *RoleForm) { f.Genero = "prefiro-nao-informar" }, validPatient, ""},
		{"future birth date", func(f *RoleForm) { f.DataNascimento = "2026-06-16" }, validPatient, "dataNascimento"},
		{"birth date today", func(f *RoleForm) { f.DataNascimento = "2026-06-15" }, validPatient, ""},
		{"malformed birth date", func(f *RoleForm) { f.DataNascimento = "15/06/1990" }, validPatient, "dataNascimento"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := tt.base()
			tt.mutate(&form)
			err := Validate(&form)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			fe := fieldErrors(t, err)
			if _, ok := fe[tt.wantField]; !ok {
				t.Errorf("expected error on %s, got %v", tt.wantField, fe)
			}
		})
	}
}

func TestValidate_RegistrationForm(t *testing.T) {
	form := RegistrationForm{RoleForm: validDoctor(), Email: "a@b.com", Senha: "secret1", ConfirmarSenha: "secret1"}
	if err := Validate(&form); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	form.ConfirmarSenha = "secret2"
	fe := fieldErrors(t, Validate(&form))
	if fe["confirmarSenha"] != "Senhas não coincidem" {
		t.Errorf("unexpected message %q", fe["confirmarSenha"])
	}

	form = RegistrationForm{RoleForm: validPatient(), Email: "nope", Senha: "123", ConfirmarSenha: "123"}
	fe = fieldErrors(t, Validate(&form))
	if fe["email"] != "E-mail inválido" {
		t.Errorf("unexpected email message %q", fe["email"])
	}
	if fe["senha"] != "Senha deve ter pelo menos 6 caracteres" {
		t.Errorf("unexpected senha message %q", fe["senha"])
	}
}

func TestFieldErrors_Error(t *testing.T) {
	fe := FieldErrors{"telefone": "x", "crm": "y"}
	if got := fe.Error(); got != "invalid fields: crm, telefone" {
		t.Errorf("unexpected error string %q", got)
	}
}

func TestProfileFields_Patient(t *testing.T) {
	form := validPatient()
	form.PlanoSaude = "Unimed"
	fields := form.ProfileFields()

	for _, name := range profile.PatientFields {
		if !fields.Has(name) {
			t.Errorf("expected patient field %s to be written", name)
		}
	}
	for _, name := range profile.DoctorFields {
		if fields.Has(name) {
			t.Errorf("patient completion must not write %s", name)
		}
	}
	if p, ok := fields[profile.FieldGenero].(*string); !ok || p != nil {
		t.Errorf("expected explicit null genero, got %#v", fields[profile.FieldGenero])
	}
	if p, ok := fields[profile.FieldPlanoSaude].(*string); !ok || p == nil || *p != "Unimed" {
		t.Errorf("expected planoSaude Unimed, got %#v", fields[profile.FieldPlanoSaude])
	}
}

func TestProfileFields_Doctor(t *testing.T) {
	form := validDoctor()
	form.AnosExperiencia = intPtr(12)
	form.DataNascimento = "1980-01-01"
	fields := form.ProfileFields()

	for _, name := range profile.DoctorFields {
		if !fields.Has(name) {
			t.Errorf("expected doctor field %s to be written", name)
		}
	}
	for _, name := range profile.PatientFields {
		if fields.Has(name) {
			t.Errorf("doctor completion must not write %s", name)
		}
	}
	if fields[profile.FieldTipo] != "medico" {
		t.Errorf("expected tipo medico, got %v", fields[profile.FieldTipo])
	}
}

func TestNormalize_TrimsInput(t *testing.T) {
	form := RegistrationForm{RoleForm: RoleForm{Tipo: " medico ", NomeCompleto: "  Ana  "}, Email: " a@b.com "}
	form.normalize()
	if form.Tipo != "medico" || form.NomeCompleto != "Ana" || form.Email != "a@b.com" {
		t.Errorf("unexpected normalized form %+v", form)
	}
}

func TestValidate_RegistrationWithoutContact(t *testing.T) {
	form := RegistrationForm{
		RoleForm:       RoleForm{Tipo: "paciente"},
		Email:          "a@b.com",
		Senha:          "secret1",
		ConfirmarSenha: "secret1",
	}
	if err := Validate(&form); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	form.Telefone = "123"
	fe := fieldErrors(t, Validate(&form))
	if _, ok := fe["telefone"]; !ok {
		t.Errorf("expected telefone checked when present, got %v", fe)
	}
}

func TestRequireContact(t *testing.T) {
	form := validDoctor()
	if err := form.requireContact(Validate(&form)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	form.NomeCompleto = ""
	form.CRM = ""
	fe := fieldErrors(t, form.requireContact(Validate(&form)))
	if _, ok := fe["nomeCompleto"]; !ok {
		t.Error("expected nomeCompleto error")
	}
	if _, ok := fe["crm"]; !ok {
		t.Error("expected crm error kept alongside")
	}
	if _, ok := fe["telefone"]; ok {
		t.Error("unexpected telefone error")
	}
}

func TestRegistrationFormView_ContactOptional(t *testing.T) {
	for _, fv := range RegistrationFormView("medico").Fields {
		if (fv.Name == "nomeCompleto" || fv.Name == "telefone") && fv.Required {
			t.Errorf("%s should be optional at sign-up", fv.Name)
		}
	}
	for _, fv := range CompletionFormView("medico").Fields {
		if (fv.Name == "nomeCompleto" || fv.Name == "telefone") && !fv.Required {
			t.Errorf("%s should be required on completion", fv.Name)
		}
	}
}
