package onboarding

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/agendarbrasil/agendar/internal/domain/profile"
)

// RoleForm is the profile completion form. Optional text fields left empty
// are stored as explicit nulls. nomeCompleto and telefone are checked when
// present; the completion path also requires them (see requireContact).
type RoleForm struct {
	Tipo         string `json:"tipo" form:"tipo" validate:"required,oneof=paciente medico"`
	NomeCompleto string `json:"nomeCompleto" form:"nomeCompleto" validate:"omitempty,min=2"`
	Telefone     string `json:"telefone" form:"telefone" validate:"omitempty,telefone"`

	DataNascimento  string `json:"dataNascimento" form:"dataNascimento" validate:"omitempty,datetime=2006-01-02,notfuture"`
	Genero          string `json:"genero" form:"genero" validate:"omitempty,oneof=masculino feminino outro prefiro-nao-informar"`
	HistoricoMedico string `json:"historicoMedico" form:"historicoMedico"`
	PlanoSaude      string `json:"planoSaude" form:"planoSaude"`

	CRM             string `json:"crm" form:"crm" validate:"required_if=Tipo medico"`
	Especialidade   string `json:"especialidade" form:"especialidade" validate:"required_if=Tipo medico"`
	AnosExperiencia *int   `json:"anosExperiencia" form:"anosExperiencia" validate:"omitnil,min=0,max=70"`
	Biografia       string `json:"biografia" form:"biografia"`
}

// RegistrationForm is the completion form plus new credentials. A sign-up
// may leave nomeCompleto and telefone out: the record then keeps what the
// new identity carries and the dashboard fills them in later.
type RegistrationForm struct {
	RoleForm
	Email          string `json:"email" form:"email" validate:"required,email"`
	Senha          string `json:"senha" form:"senha" validate:"required,min=6"`
	ConfirmarSenha string `json:"confirmarSenha" form:"confirmarSenha" validate:"eqfield=Senha"`
}

// requireContact adds the base fields a signed-in completion cannot skip to
// the errors Validate found.
func (f *RoleForm) requireContact(err error) error {
	fe := FieldErrors{}
	if err != nil && !errors.As(err, &fe) {
		return err
	}
	if f.NomeCompleto == "" {
		fe["nomeCompleto"] = message("nomeCompleto", "required")
	}
	if f.Telefone == "" {
		fe["telefone"] = message("telefone", "required")
	}
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func (f *RoleForm) normalize() {
	for _, s := range []*string{&f.Tipo, &f.NomeCompleto, &f.Telefone, &f.DataNascimento, &f.Genero,
		&f.HistoricoMedico, &f.PlanoSaude, &f.CRM, &f.Especialidade, &f.Biografia} {
		*s = strings.TrimSpace(*s)
	}
}

func (f *RegistrationForm) normalize() {
	f.RoleForm.normalize()
	f.Email = strings.TrimSpace(f.Email)
}

// Role returns the selected role. Call after validation.
func (f *RoleForm) Role() profile.Role {
	return profile.Role(f.Tipo)
}

// ProfileFields returns the merge for the form: tipo, the base fields that
// were filled in and every field of the selected role, empty ones as null.
// The other role's fields are never included.
func (f *RoleForm) ProfileFields() profile.Fields {
	fields := profile.Fields{profile.FieldTipo: f.Tipo}
	if f.NomeCompleto != "" {
		fields[profile.FieldNomeCompleto] = f.NomeCompleto
	}
	if f.Telefone != "" {
		fields[profile.FieldTelefone] = f.Telefone
	}
	switch f.Role() {
	case profile.RolePaciente:
		fields[profile.FieldDataNascimento] = nullable(f.DataNascimento)
		fields[profile.FieldGenero] = nullable(f.Genero)
		fields[profile.FieldHistoricoMedico] = nullable(f.HistoricoMedico)
		fields[profile.FieldPlanoSaude] = nullable(f.PlanoSaude)
	case profile.RoleMedico:
		fields[profile.FieldCRM] = nullable(f.CRM)
		fields[profile.FieldEspecialidade] = nullable(f.Especialidade)
		fields[profile.FieldAnosExperiencia] = f.AnosExperiencia
		fields[profile.FieldBiografia] = nullable(f.Biografia)
	}
	return fields
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// FieldErrors maps a form field name to its message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	names := make([]string, 0, len(fe))
	for name := range fe {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid fields: " + strings.Join(names, ", ")
}

// fieldMessages holds the per-field text shown under an input.
var fieldMessages = map[string]string{
	"tipo":            "Por favor, escolha um tipo de perfil.",
	"nomeCompleto":    "Nome deve ter pelo menos 2 caracteres",
	"telefone":        "Telefone inválido",
	"email":           "E-mail inválido",
	"senha":           "Senha deve ter pelo menos 6 caracteres",
	"confirmarSenha":  "Senhas não coincidem",
	"dataNascimento":  "Data de nascimento inválida",
	"genero":          "Gênero inválido",
	"crm":             "CRM é obrigatório",
	"especialidade":   "Especialidade é obrigatória",
	"anosExperiencia": "Anos de experiência deve estar entre 0 e 70",
}

// tagMessages covers fields without an entry above.
var tagMessages = map[string]string{
	"required":    "Campo obrigatório",
	"required_if": "Campo obrigatório",
	"min":         "Valor muito curto",
	"max":         "Valor muito longo",
	"oneof":       "Opção inválida",
}

func message(field, tag string) string {
	if m, ok := fieldMessages[field]; ok {
		return m
	}
	if m, ok := tagMessages[tag]; ok {
		return m
	}
	return "Valor inválido"
}

// today is replaced in tests.
var today = func() time.Time { return time.Now() }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("telefone", validTelefone)
	_ = v.RegisterValidation("notfuture", notFuture)
	return v
}

// validTelefone accepts at least ten digits-or-formatting characters.
func validTelefone(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len([]rune(s)) < 10 {
		return false
	}
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case strings.ContainsRune(" ()+-.", r):
		default:
			return false
		}
	}
	return digits > 0
}

func notFuture(fl validator.FieldLevel) bool {
	d, err := time.Parse("2006-01-02", fl.Field().String())
	if err != nil {
		return false
	}
	y, m, day := today().Date()
	return !d.After(time.Date(y, m, day, 0, 0, 0, 0, time.UTC))
}

// Validate checks v against its struct tags and returns FieldErrors with one
// message per failing field, or nil.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := make(FieldErrors, len(verrs))
	for _, e := range verrs {
		name := e.Field()
		if _, seen := fe[name]; seen {
			continue
		}
		fe[name] = message(name, e.Tag())
	}
	return fe
}
