package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type accountRepoPG struct {
	db queryable
}

func NewAccountRepo(pool *pgxpool.Pool) AccountRepository {
	return &accountRepoPG{db: pool}
}

const accountCols = `id, email, password_hash, display_name, phone, provider, google_subject, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	var provider string
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.DisplayName, &a.Phone,
		&provider, &a.GoogleSubject, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Provider = Provider(provider)
	return &a, nil
}

func (r *accountRepoPG) getOne(ctx context.Context, where string, arg any) (*Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountCols+` FROM identity_account WHERE `+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *accountRepoPG) Create(ctx context.Context, a *Account) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := r.db.Exec(ctx, `
		INSERT INTO identity_account (id, email, password_hash, display_name, phone, provider, google_subject, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.Email, a.PasswordHash, a.DisplayName, a.Phone, string(a.Provider), a.GoogleSubject, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "identity_account_email_key" {
			return ErrEmailTaken
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *accountRepoPG) GetByID(ctx context.Context, id string) (*Account, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *accountRepoPG) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return r.getOne(ctx, `LOWER(email) = $1`, strings.ToLower(email))
}

func (r *accountRepoPG) GetByGoogleSubject(ctx context.Context, subject string) (*Account, error) {
	return r.getOne(ctx, `google_subject = $1`, subject)
}

func (r *accountRepoPG) LinkGoogle(ctx context.Context, id, subject string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE identity_account SET google_subject = $2, updated_at = NOW() WHERE id = $1`, id, subject)
	if err != nil {
		return fmt.Errorf("link google account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}
