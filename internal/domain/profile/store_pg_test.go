package profile

import (
	"context"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/agendarbrasil/agendar/internal/platform/phi"
)

// execRecorder answers Exec with a fixed command tag and keeps the SQL.
type execRecorder struct {
	tag   string
	query string
	args  []any
}

func (r *execRecorder) QueryRow(context.Context, string, ...interface{}) pgx.Row { return nil }

func (r *execRecorder) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	r.query, r.args = sql, args
	return pgconn.NewCommandTag(r.tag), nil
}

func TestCreate_InsertsOnlyWhenAbsent(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		created bool
	}{
		{"new row", "INSERT 0 1", true},
		{"row already there", "INSERT 0 0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &execRecorder{tag: tt.tag}
			s := &storePG{db: db, cipher: phi.Plaintext{}}

			created, err := s.Create(context.Background(), &Record{UID: "u1", Email: "a@b.com"})
			if err != nil {
				t.Fatalf("Create() error: %v", err)
			}
			if created != tt.created {
				t.Errorf("created = %v, want %v", created, tt.created)
			}
			if !strings.Contains(db.query, "ON CONFLICT (uid) DO NOTHING") {
				t.Errorf("expected insert that keeps an existing row, got %s", db.query)
			}
			if strings.Contains(db.query, "DO UPDATE") {
				t.Error("create must never update an existing row")
			}
			if len(db.args) != 17 || db.args[0] != "u1" {
				t.Errorf("unexpected args %v", db.args)
			}
		})
	}
}

func TestBuildMerge_Empty(t *testing.T) {
	s := &storePG{cipher: phi.Plaintext{}}
	query, args, err := s.buildMerge("u1", Fields{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if query != "" || args != nil {
		t.Errorf("expected no statement for empty fields, got %q %v", query, args)
	}
}

func TestBuildMerge_SortedColumns(t *testing.T) {
	s := &storePG{cipher: phi.Plaintext{}}
	query, args, err := s.buildMerge("u1", Fields{
		FieldTipo:           "medico",
		FieldCRM:            "12345-SP",
		FieldPerfilCompleto: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "UPDATE profile_record SET crm = $2, perfil_completo = $3, tipo = $4 WHERE uid = $1"
	if query != want {
		t.Errorf("query:\n got %s\nwant %s", query, want)
	}
	if len(args) != 4 || args[0] != "u1" || args[1] != "12345-SP" || args[2] != true || args[3] != "medico" {
		t.Errorf("unexpected args %v", args)
	}
}

func TestBuildMerge_DateCast(t *testing.T) {
	s := &storePG{cipher: phi.Plaintext{}}
	query, _, err := s.buildMerge("u1", Fields{FieldDataNascimento: "1990-05-20"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(query, "data_nascimento = $2::date") {
		t.Errorf("expected date cast, got %s", query)
	}
}

func TestBuildMerge_SealsHistorico(t *testing.T) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}
	enc, err := phi.NewEncryptor(key)
	if err != nil {
		t.Fatal(err)
	}

	s := &storePG{cipher: enc}
	_, args, err := s.buildMerge("u1", Fields{FieldHistoricoMedico: "asma"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sealed, ok := args[1].(*string)
	if !ok || sealed == nil {
		t.Fatalf("expected sealed *string arg, got %T", args[1])
	}
	if *sealed == "asma" || !strings.HasPrefix(*sealed, "enc:v1:") {
		t.Errorf("expected encrypted value, got %q", *sealed)
	}
	plain, err := enc.Open(*sealed)
	if err != nil || plain != "asma" {
		t.Errorf("Open() = %q, %v", plain, err)
	}
}

func TestBuildMerge_NullHistorico(t *testing.T) {
	s := &storePG{cipher: phi.Plaintext{}}
	_, args, err := s.buildMerge("u1", Fields{FieldHistoricoMedico: nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p, ok := args[1].(*string); !ok || p != nil {
		t.Errorf("expected typed nil for null historico, got %#v", args[1])
	}
}

func TestBuildMerge_Rejects(t *testing.T) {
	s := &storePG{cipher: phi.Plaintext{}}

	if _, _, err := s.buildMerge("u1", Fields{FieldUID: "other"}); err == nil {
		t.Error("expected uid to be rejected")
	}
	if _, _, err := s.buildMerge("u1", Fields{"nome_completo; DROP TABLE x": "y"}); err == nil {
		t.Error("expected unknown field to be rejected")
	}
	if _, _, err := s.buildMerge("u1", Fields{FieldAnosExperiencia: "dez"}); err == nil {
		t.Error("expected wrong value type to be rejected")
	}
}

func TestFieldColumns_CoverModel(t *testing.T) {
	for _, name := range append(append([]string{}, PatientFields...), DoctorFields...) {
		if _, ok := fieldColumns[name]; !ok {
			t.Errorf("role field %s has no column", name)
		}
	}
}
