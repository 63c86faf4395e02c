package middleware

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// PGAccessRecorder writes access entries to the profile_access_log table.
type PGAccessRecorder struct {
	db execer
}

// NewPGAccessRecorder accepts a *pgxpool.Pool or anything else that can Exec.
func NewPGAccessRecorder(db execer) *PGAccessRecorder {
	return &PGAccessRecorder{db: db}
}

func (r *PGAccessRecorder) RecordAccess(ctx context.Context, entry AccessEntry) error {
	const query = `
		INSERT INTO profile_access_log (
			uid, dashboard, action, method, path,
			ip_address, user_agent, status_code, request_id, accessed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`

	_, err := r.db.Exec(ctx, query,
		entry.UID, entry.Dashboard, entry.Action, entry.Method, entry.Path,
		entry.IPAddress, entry.UserAgent, entry.StatusCode, entry.RequestID, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("profile access log: %w", err)
	}
	return nil
}
