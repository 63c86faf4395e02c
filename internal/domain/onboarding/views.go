package onboarding

import (
	"slices"

	"github.com/agendarbrasil/agendar/internal/domain/profile"
	"github.com/agendarbrasil/agendar/internal/platform/auth"
)

// Form variants.
const (
	VariantRegistration = "registration"
	VariantCompletion   = "completion"
	VariantLogin        = "login"
)

// Option is one choice of a select or radio field.
type Option struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// FieldView describes one input for the client to render.
type FieldView struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	Required    bool     `json:"required,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Options     []Option `json:"options,omitempty"`
}

// FormView is the form the client should show. Tipo is the locally selected
// role, not the stored one.
type FormView struct {
	Variant string       `json:"variant"`
	Tipo    profile.Role `json:"tipo,omitempty"`
	Fields  []FieldView  `json:"fields"`
}

// HasField reports whether the form includes name.
func (f *FormView) HasField(name string) bool {
	for _, fv := range f.Fields {
		if fv.Name == name {
			return true
		}
	}
	return false
}

var tipoField = FieldView{
	Name:     "tipo",
	Label:    "Tipo de conta",
	Type:     "radio",
	Required: true,
	Options: []Option{
		{Value: string(profile.RolePaciente), Label: "Paciente", Description: "Agendar consultas"},
		{Value: string(profile.RoleMedico), Label: "Médico", Description: "Gerenciar agenda"},
	},
}

var baseFields = []FieldView{
	{Name: "nomeCompleto", Label: "Nome completo", Type: "text", Required: true},
	{Name: "telefone", Label: "Telefone", Type: "tel", Required: true, Placeholder: "(11) 99999-9999"},
}

// signUpBaseFields are baseFields as the registration form shows them. They
// may be left for the dashboard.
func signUpBaseFields() []FieldView {
	fields := slices.Clone(baseFields)
	for i := range fields {
		fields[i].Required = false
	}
	return fields
}

var credentialFields = []FieldView{
	{Name: "email", Label: "E-mail", Type: "email", Required: true},
	{Name: "senha", Label: "Senha", Type: "password", Required: true},
	{Name: "confirmarSenha", Label: "Confirmar senha", Type: "password", Required: true},
}

var patientFields = []FieldView{
	{Name: "dataNascimento", Label: "Data de nascimento", Type: "date"},
	{Name: "genero", Label: "Gênero", Type: "select", Placeholder: "Selecione", Options: []Option{
		{Value: string(profile.GenderMasculino), Label: "Masculino"},
		{Value: string(profile.GenderFeminino), Label: "Feminino"},
		{Value: string(profile.GenderOutro), Label: "Outro"},
		{Value: string(profile.GenderPrefiroNaoInformar), Label: "Prefiro não informar"},
	}},
	{Name: "planoSaude", Label: "Plano de saúde (opcional)", Type: "text", Placeholder: "Ex: Unimed, Bradesco Saúde"},
	{Name: "historicoMedico", Label: "Histórico médico (opcional)", Type: "textarea",
		Placeholder: "Descreva condições médicas relevantes, alergias, medicamentos em uso..."},
}

var doctorFields = []FieldView{
	{Name: "crm", Label: "CRM", Type: "text", Required: true, Placeholder: "Ex: CRM/SP 123456"},
	{Name: "especialidade", Label: "Especialidade", Type: "text", Required: true, Placeholder: "Ex: Cardiologia"},
	{Name: "anosExperiencia", Label: "Anos de experiência", Type: "number"},
	{Name: "biografia", Label: "Biografia (opcional)", Type: "textarea",
		Placeholder: "Descreva sua formação, especializações, experiência..."},
}

func roleFieldViews(role profile.Role) []FieldView {
	if role == profile.RoleMedico {
		return doctorFields
	}
	return patientFields
}

// selectedRole defaults an empty or unknown selection to paciente.
func selectedRole(tipo string) profile.Role {
	if r := profile.Role(tipo); r.Valid() {
		return r
	}
	return profile.RolePaciente
}

// RegistrationFormView is the anonymous form: role, base, credential and role
// fields.
func RegistrationFormView(tipo string) *FormView {
	role := selectedRole(tipo)
	fields := []FieldView{tipoField}
	fields = append(fields, signUpBaseFields()...)
	fields = append(fields, credentialFields...)
	fields = append(fields, roleFieldViews(role)...)
	return &FormView{Variant: VariantRegistration, Tipo: role, Fields: fields}
}

// CompletionFormView is the signed-in form. It has no credential fields.
func CompletionFormView(tipo string) *FormView {
	role := selectedRole(tipo)
	fields := []FieldView{tipoField}
	fields = append(fields, baseFields...)
	fields = append(fields, roleFieldViews(role)...)
	return &FormView{Variant: VariantCompletion, Tipo: role, Fields: fields}
}

// LoginFormView lists the password fields and the federated providers.
func LoginFormView() *FormView {
	return &FormView{
		Variant: VariantLogin,
		Fields: []FieldView{
			{Name: "kind", Label: "Entrar com", Type: "radio", Options: []Option{
				{Value: "password", Label: "E-mail e senha"},
				{Value: "google", Label: "Google"},
			}},
			{Name: "email", Label: "E-mail", Type: "email"},
			{Name: "password", Label: "Senha", Type: "password"},
		},
	}
}

// Toast variants.
const (
	ToastDefault     = "default"
	ToastDestructive = "destructive"
)

type Toast struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
}

// Envelope is the body of every state-bearing response.
type Envelope struct {
	State    State           `json:"state"`
	Redirect string          `json:"redirect,omitempty"`
	Form     *FormView       `json:"form,omitempty"`
	Profile  *profile.Record `json:"profile,omitempty"`
	Session  *auth.Session   `json:"session,omitempty"`
	Toast    *Toast          `json:"toast,omitempty"`
	Errors   FieldErrors     `json:"errors,omitempty"`
}

// Toast texts.
var (
	ToastStoreFailure = &Toast{
		Title:       "Erro",
		Description: "Não foi possível salvar seus dados. Tente novamente.",
		Variant:     ToastDestructive,
	}
	ToastNotAuthenticated = &Toast{
		Title:       "Erro",
		Description: "Usuário não autenticado. Faça login novamente.",
		Variant:     ToastDestructive,
	}
)

// CompletedToast is shown after a successful completion for role.
func CompletedToast(role profile.Role) *Toast {
	desc := "Seus dados foram salvos com sucesso."
	if role == profile.RoleMedico {
		desc = "Seus dados profissionais foram salvos com sucesso."
	}
	return &Toast{Title: "Cadastro concluído!", Description: desc, Variant: ToastDefault}
}

func loginFailedToast(description string) *Toast {
	return &Toast{Title: "Erro no Login", Description: description, Variant: ToastDestructive}
}

func signUpFailedToast(description string) *Toast {
	return &Toast{Title: "Erro no cadastro", Description: description, Variant: ToastDestructive}
}

func welcomeToast(name, email string) *Toast {
	who := name
	if who == "" {
		who = email
	}
	return &Toast{Title: "Login realizado com sucesso!", Description: "Bem-vindo, " + who, Variant: ToastDefault}
}
