package dashboard

import (
	"encoding/json"
	"strings"

	"github.com/agendarbrasil/agendar/internal/domain/onboarding"
	"github.com/agendarbrasil/agendar/internal/domain/profile"
)

// ProfileEdit is a dashboard PATCH body. Only keys present in the body are
// validated and written. Required fields are pointers so an absent key can be
// told apart from an empty one.
type ProfileEdit struct {
	NomeCompleto *string `json:"nomeCompleto" validate:"omitnil,min=2"`
	Telefone     *string `json:"telefone" validate:"omitnil,telefone"`

	DataNascimento  string `json:"dataNascimento" validate:"omitempty,datetime=2006-01-02,notfuture"`
	Genero          string `json:"genero" validate:"omitempty,oneof=masculino feminino outro prefiro-nao-informar"`
	HistoricoMedico string `json:"historicoMedico"`
	PlanoSaude      string `json:"planoSaude"`

	CRM             *string `json:"crm" validate:"omitnil,min=1"`
	Especialidade   *string `json:"especialidade" validate:"omitnil,min=1"`
	AnosExperiencia *int    `json:"anosExperiencia" validate:"omitnil,min=0,max=70"`
	Biografia       string  `json:"biografia"`
}

// Messages for keys a dashboard edit may not carry.
const (
	msgReadOnly  = "Campo não pode ser alterado"
	msgOtherRole = "Campo não pertence a este perfil"
	msgUnknown   = "Campo desconhecido"
)

var readOnlyFields = map[string]bool{
	profile.FieldUID:             true,
	profile.FieldEmail:           true,
	profile.FieldTipo:            true,
	profile.FieldProvider:        true,
	profile.FieldPerfilCompleto:  true,
	profile.FieldDataCriacao:     true,
	profile.FieldDataAtualizacao: true,
}

func editableFields(role profile.Role) map[string]bool {
	allowed := map[string]bool{
		profile.FieldNomeCompleto: true,
		profile.FieldTelefone:     true,
	}
	for _, name := range profile.RoleFields(role) {
		allowed[name] = true
	}
	return allowed
}

func otherRole(role profile.Role) profile.Role {
	if role == profile.RoleMedico {
		return profile.RolePaciente
	}
	return profile.RoleMedico
}

// ParseEdit turns a PATCH body for role into a merge. Keys outside the role's
// editable set and invalid values are reported as onboarding.FieldErrors.
// Empty optional fields are cleared to null.
func ParseEdit(role profile.Role, body []byte) (profile.Fields, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	allowed := editableFields(role)
	foreign := make(map[string]bool)
	for _, name := range profile.RoleFields(otherRole(role)) {
		foreign[name] = true
	}

	rejected := onboarding.FieldErrors{}
	for name := range raw {
		switch {
		case allowed[name]:
		case readOnlyFields[name]:
			rejected[name] = msgReadOnly
		case foreign[name]:
			rejected[name] = msgOtherRole
		default:
			rejected[name] = msgUnknown
		}
	}
	if len(rejected) > 0 {
		return nil, rejected
	}

	var edit ProfileEdit
	if err := json.Unmarshal(body, &edit); err != nil {
		return nil, err
	}
	edit.normalize(raw)

	if err := onboarding.Validate(&edit); err != nil {
		return nil, err
	}
	return edit.fields(raw), nil
}

// normalize trims input and turns an explicit null on a required field into
// an empty value so validation rejects it.
func (e *ProfileEdit) normalize(present map[string]json.RawMessage) {
	for name, p := range map[string]**string{
		profile.FieldNomeCompleto:  &e.NomeCompleto,
		profile.FieldTelefone:      &e.Telefone,
		profile.FieldCRM:           &e.CRM,
		profile.FieldEspecialidade: &e.Especialidade,
	} {
		if _, ok := present[name]; !ok {
			continue
		}
		if *p == nil {
			empty := ""
			*p = &empty
		}
		trimmed := strings.TrimSpace(**p)
		*p = &trimmed
	}
	for _, s := range []*string{&e.DataNascimento, &e.Genero, &e.HistoricoMedico, &e.PlanoSaude, &e.Biografia} {
		*s = strings.TrimSpace(*s)
	}
}

func (e *ProfileEdit) fields(present map[string]json.RawMessage) profile.Fields {
	values := map[string]any{
		profile.FieldDataNascimento:  nullable(e.DataNascimento),
		profile.FieldGenero:          nullable(e.Genero),
		profile.FieldHistoricoMedico: nullable(e.HistoricoMedico),
		profile.FieldPlanoSaude:      nullable(e.PlanoSaude),
		profile.FieldAnosExperiencia: e.AnosExperiencia,
		profile.FieldBiografia:       nullable(e.Biografia),
	}
	if e.NomeCompleto != nil {
		values[profile.FieldNomeCompleto] = *e.NomeCompleto
	}
	if e.Telefone != nil {
		values[profile.FieldTelefone] = *e.Telefone
	}
	if e.CRM != nil {
		values[profile.FieldCRM] = e.CRM
	}
	if e.Especialidade != nil {
		values[profile.FieldEspecialidade] = e.Especialidade
	}

	fields := profile.Fields{}
	for name := range present {
		fields[name] = values[name]
	}
	return fields
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
