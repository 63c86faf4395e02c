package profile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agendarbrasil/agendar/internal/platform/phi"
)

type queryable interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type storePG struct {
	db     queryable
	cipher phi.FieldCipher
}

// NewStorePG returns a Postgres-backed Store over the profile_record table.
// historicoMedico goes through cipher on the way in and out; pass
// phi.Plaintext{} to store it as is.
func NewStorePG(pool *pgxpool.Pool, cipher phi.FieldCipher) Store {
	if cipher == nil {
		cipher = phi.Plaintext{}
	}
	return &storePG{db: pool, cipher: cipher}
}

// fieldColumns maps Merge field names to columns. Names outside this map are
// rejected, so no caller-supplied text reaches the SQL.
var fieldColumns = map[string]string{
	FieldEmail:           "email",
	FieldNomeCompleto:    "nome_completo",
	FieldTelefone:        "telefone",
	FieldTipo:            "tipo",
	FieldDataNascimento:  "data_nascimento",
	FieldGenero:          "genero",
	FieldHistoricoMedico: "historico_medico",
	FieldPlanoSaude:      "plano_saude",
	FieldCRM:             "crm",
	FieldEspecialidade:   "especialidade",
	FieldAnosExperiencia: "anos_experiencia",
	FieldBiografia:       "biografia",
	FieldProvider:        "provider",
	FieldPerfilCompleto:  "perfil_completo",
	FieldDataCriacao:     "created_at",
	FieldDataAtualizacao: "updated_at",
}

const recordCols = `uid, email, nome_completo, telefone, tipo,
	to_char(data_nascimento, 'YYYY-MM-DD'), genero, historico_medico, plano_saude,
	crm, especialidade, anos_experiencia, biografia,
	provider, perfil_completo, created_at, updated_at`

func (s *storePG) scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	err := row.Scan(&r.UID, &r.Email, &r.NomeCompleto, &r.Telefone, &r.Tipo,
		&r.DataNascimento, &r.Genero, &r.HistoricoMedico, &r.PlanoSaude,
		&r.CRM, &r.Especialidade, &r.AnosExperiencia, &r.Biografia,
		&r.Provider, &r.PerfilCompleto, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if r.HistoricoMedico != nil {
		plain, err := s.cipher.Open(*r.HistoricoMedico)
		if err != nil {
			return nil, fmt.Errorf("decrypt historicoMedico: %w", err)
		}
		r.HistoricoMedico = &plain
	}
	return &r, nil
}

func (s *storePG) Get(ctx context.Context, uid string) (*Record, error) {
	r, err := s.scanRecord(s.db.QueryRow(ctx, `SELECT `+recordCols+` FROM profile_record WHERE uid = $1`, uid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", uid, err)
	}
	return r, nil
}

func (s *storePG) sealOpt(v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	sealed, err := s.cipher.Seal(*v)
	if err != nil {
		return nil, err
	}
	return &sealed, nil
}

const insertRecord = `
	INSERT INTO profile_record (uid, email, nome_completo, telefone, tipo,
		data_nascimento, genero, historico_medico, plano_saude,
		crm, especialidade, anos_experiencia, biografia,
		provider, perfil_completo, created_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6::date,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`

func (s *storePG) recordArgs(r *Record) ([]any, error) {
	historico, err := s.sealOpt(r.HistoricoMedico)
	if err != nil {
		return nil, fmt.Errorf("encrypt historicoMedico: %w", err)
	}
	return []any{
		r.UID, r.Email, r.NomeCompleto, r.Telefone, r.Tipo,
		r.DataNascimento, r.Genero, historico, r.PlanoSaude,
		r.CRM, r.Especialidade, r.AnosExperiencia, r.Biografia,
		r.Provider, r.PerfilCompleto, r.CreatedAt, r.UpdatedAt,
	}, nil
}

func (s *storePG) Set(ctx context.Context, r *Record) error {
	args, err := s.recordArgs(r)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, insertRecord+`
		ON CONFLICT (uid) DO UPDATE SET
			email = EXCLUDED.email,
			nome_completo = EXCLUDED.nome_completo,
			telefone = EXCLUDED.telefone,
			tipo = EXCLUDED.tipo,
			data_nascimento = EXCLUDED.data_nascimento,
			genero = EXCLUDED.genero,
			historico_medico = EXCLUDED.historico_medico,
			plano_saude = EXCLUDED.plano_saude,
			crm = EXCLUDED.crm,
			especialidade = EXCLUDED.especialidade,
			anos_experiencia = EXCLUDED.anos_experiencia,
			biografia = EXCLUDED.biografia,
			provider = EXCLUDED.provider,
			perfil_completo = EXCLUDED.perfil_completo,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at`, args...)
	if err != nil {
		return fmt.Errorf("set profile %s: %w", r.UID, err)
	}
	return nil
}

// Create inserts r unless a row for r.UID already exists. A concurrent
// writer on another replica keeps its row.
func (s *storePG) Create(ctx context.Context, r *Record) (bool, error) {
	args, err := s.recordArgs(r)
	if err != nil {
		return false, err
	}

	tag, err := s.db.Exec(ctx, insertRecord+`
		ON CONFLICT (uid) DO NOTHING`, args...)
	if err != nil {
		return false, fmt.Errorf("create profile %s: %w", r.UID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *storePG) Merge(ctx context.Context, uid string, fields Fields) error {
	query, args, err := s.buildMerge(uid, fields)
	if err != nil {
		return err
	}
	if query == "" {
		return nil
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("merge profile %s: %w", uid, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// buildMerge produces the UPDATE for a partial merge. Columns are emitted in
// sorted field order so the statement is stable for a given field set.
func (s *storePG) buildMerge(uid string, fields Fields) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		if _, ok := fieldColumns[name]; !ok {
			return "", nil, fmt.Errorf("merge profile %s: field %q is not mergeable", uid, name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	// Validate value types against the model before touching SQL.
	var scratch Record
	if err := fields.Apply(&scratch); err != nil {
		return "", nil, fmt.Errorf("merge profile %s: %w", uid, err)
	}

	sets := make([]string, 0, len(names))
	args := []any{uid}
	for _, name := range names {
		value := fields[name]
		if name == FieldHistoricoMedico {
			sealed, err := s.sealOpt(scratch.HistoricoMedico)
			if err != nil {
				return "", nil, fmt.Errorf("encrypt historicoMedico: %w", err)
			}
			value = sealed
		}
		args = append(args, value)

		placeholder := fmt.Sprintf("$%d", len(args))
		if name == FieldDataNascimento {
			placeholder += "::date"
		}
		sets = append(sets, fieldColumns[name]+" = "+placeholder)
	}

	return `UPDATE profile_record SET ` + strings.Join(sets, ", ") + ` WHERE uid = $1`, args, nil
}
