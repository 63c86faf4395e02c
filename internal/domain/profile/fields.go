package profile

import (
	"fmt"
	"time"
)

func applyField(r *Record, name string, value any) error {
	switch name {
	case FieldUID:
		return setString(&r.UID, name, value)
	case FieldEmail:
		return setString(&r.Email, name, value)
	case FieldNomeCompleto:
		return setString(&r.NomeCompleto, name, value)
	case FieldTelefone:
		return setString(&r.Telefone, name, value)
	case FieldProvider:
		return setString(&r.Provider, name, value)
	case FieldTipo:
		return setOptString(&r.Tipo, name, value)
	case FieldDataNascimento:
		return setOptString(&r.DataNascimento, name, value)
	case FieldGenero:
		return setOptString(&r.Genero, name, value)
	case FieldHistoricoMedico:
		return setOptString(&r.HistoricoMedico, name, value)
	case FieldPlanoSaude:
		return setOptString(&r.PlanoSaude, name, value)
	case FieldCRM:
		return setOptString(&r.CRM, name, value)
	case FieldEspecialidade:
		return setOptString(&r.Especialidade, name, value)
	case FieldBiografia:
		return setOptString(&r.Biografia, name, value)
	case FieldAnosExperiencia:
		n, err := optInt(name, value)
		if err != nil {
			return err
		}
		r.AnosExperiencia = n
		return nil
	case FieldPerfilCompleto:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("field %s: expected bool, got %T", name, value)
		}
		r.PerfilCompleto = b
		return nil
	case FieldDataCriacao:
		return setTime(&r.CreatedAt, name, value)
	case FieldDataAtualizacao:
		return setTime(&r.UpdatedAt, name, value)
	}
	return fmt.Errorf("unknown profile field %q", name)
}

func setString(dst *string, name string, value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("field %s: expected string, got %T", name, value)
	}
	*dst = s
	return nil
}

func setOptString(dst **string, name string, value any) error {
	s, err := optString(name, value)
	if err != nil {
		return err
	}
	*dst = s
	return nil
}

func optString(name string, value any) (*string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return &v, nil
	case *string:
		if v == nil {
			return nil, nil
		}
		s := *v
		return &s, nil
	}
	return nil, fmt.Errorf("field %s: expected string or null, got %T", name, value)
}

func optInt(name string, value any) (*int, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case int:
		return &v, nil
	case int64:
		n := int(v)
		return &n, nil
	case *int:
		if v == nil {
			return nil, nil
		}
		n := *v
		return &n, nil
	}
	return nil, fmt.Errorf("field %s: expected integer or null, got %T", name, value)
}

func setTime(dst *time.Time, name string, value any) error {
	t, ok := value.(time.Time)
	if !ok {
		return fmt.Errorf("field %s: expected time, got %T", name, value)
	}
	*dst = t
	return nil
}
