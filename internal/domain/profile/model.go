package profile

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("profile record not found")

// Role is the record's tipo.
type Role string

const (
	RolePaciente Role = "paciente"
	RoleMedico   Role = "medico"
)

func (r Role) Valid() bool {
	return r == RolePaciente || r == RoleMedico
}

// Dashboard returns the route of the role's dashboard.
func (r Role) Dashboard() string {
	switch r {
	case RolePaciente:
		return "/perfil-paciente"
	case RoleMedico:
		return "/perfil-medico"
	}
	return ""
}

// Gender is the patient's genero.
type Gender string

const (
	GenderMasculino          Gender = "masculino"
	GenderFeminino           Gender = "feminino"
	GenderOutro              Gender = "outro"
	GenderPrefiroNaoInformar Gender = "prefiro-nao-informar"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMasculino, GenderFeminino, GenderOutro, GenderPrefiroNaoInformar:
		return true
	}
	return false
}

// Record is the profile document kept for every identity. Tipo holds the
// stored value verbatim so an unrecognized value can be told apart from an
// unset one; use Role to interpret it.
type Record struct {
	UID          string  `json:"uid" firestore:"uid"`
	Email        string  `json:"email" firestore:"email"`
	NomeCompleto string  `json:"nomeCompleto" firestore:"nomeCompleto"`
	Telefone     string  `json:"telefone" firestore:"telefone"`
	Tipo         *string `json:"tipo" firestore:"tipo"`

	// paciente
	DataNascimento  *string `json:"dataNascimento,omitempty" firestore:"dataNascimento,omitempty"`
	Genero          *string `json:"genero,omitempty" firestore:"genero,omitempty"`
	HistoricoMedico *string `json:"historicoMedico,omitempty" firestore:"historicoMedico,omitempty"`
	PlanoSaude      *string `json:"planoSaude,omitempty" firestore:"planoSaude,omitempty"`

	// medico
	CRM             *string `json:"crm,omitempty" firestore:"crm,omitempty"`
	Especialidade   *string `json:"especialidade,omitempty" firestore:"especialidade,omitempty"`
	AnosExperiencia *int    `json:"anosExperiencia,omitempty" firestore:"anosExperiencia,omitempty"`
	Biografia       *string `json:"biografia,omitempty" firestore:"biografia,omitempty"`

	Provider       string    `json:"provider,omitempty" firestore:"provider"`
	PerfilCompleto bool      `json:"perfilCompleto" firestore:"perfilCompleto"`
	CreatedAt      time.Time `json:"dataCriacao" firestore:"dataCriacao"`
	UpdatedAt      time.Time `json:"dataAtualizacao" firestore:"dataAtualizacao"`
}

// Role returns the record's role and whether it is one of the two known
// roles. Unset and unrecognized values both report false.
func (r *Record) Role() (Role, bool) {
	if r == nil || r.Tipo == nil {
		return "", false
	}
	role := Role(*r.Tipo)
	return role, role.Valid()
}

// Document field names. These are the keys accepted by Merge.
const (
	FieldUID             = "uid"
	FieldEmail           = "email"
	FieldNomeCompleto    = "nomeCompleto"
	FieldTelefone        = "telefone"
	FieldTipo            = "tipo"
	FieldDataNascimento  = "dataNascimento"
	FieldGenero          = "genero"
	FieldHistoricoMedico = "historicoMedico"
	FieldPlanoSaude      = "planoSaude"
	FieldCRM             = "crm"
	FieldEspecialidade   = "especialidade"
	FieldAnosExperiencia = "anosExperiencia"
	FieldBiografia       = "biografia"
	FieldProvider        = "provider"
	FieldPerfilCompleto  = "perfilCompleto"
	FieldDataCriacao     = "dataCriacao"
	FieldDataAtualizacao = "dataAtualizacao"
)

// PatientFields and DoctorFields are the role-specific fields. A record never
// carries fields of the role it does not have.
var (
	PatientFields = []string{FieldDataNascimento, FieldGenero, FieldHistoricoMedico, FieldPlanoSaude}
	DoctorFields  = []string{FieldCRM, FieldEspecialidade, FieldAnosExperiencia, FieldBiografia}
)

// RoleFields returns the role-specific field names for role.
func RoleFields(role Role) []string {
	switch role {
	case RolePaciente:
		return PatientFields
	case RoleMedico:
		return DoctorFields
	}
	return nil
}

// Fields is a partial update keyed by document field name. A nil value
// stores an explicit null.
type Fields map[string]any

// Has reports whether name is present in the update.
func (f Fields) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// Apply copies the fields onto r, mirroring what the stores do with Merge.
// Unknown names and values of the wrong type are reported as errors.
func (f Fields) Apply(r *Record) error {
	for name, value := range f {
		if err := applyField(r, name, value); err != nil {
			return err
		}
	}
	return nil
}
