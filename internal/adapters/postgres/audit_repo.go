package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samirrijal/echoadmin/internal/core/domain"
)

// AuditRepo implements ports.UploadAuditRepository with pgx.
type AuditRepo struct {
	db *DB
}

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Record upserts the final state of an upload session. Redelivered events overwrite the same row.
func (r *AuditRepo) Record(ctx context.Context, snap domain.UploadSnapshot) error {
	files, err := json.Marshal(snap.Files)
	if err != nil {
		return fmt.Errorf("marshal files: %w", err)
	}
	meta, err := json.Marshal(snap.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	result, err := json.Marshal(snap.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO upload_audit (session_id, upload_id, phase, bundle_id, files, metadata, result,
		                          error, failed_file, attempts, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10, $11, $12)
		ON CONFLICT (session_id) DO UPDATE
		SET upload_id = EXCLUDED.upload_id, phase = EXCLUDED.phase, bundle_id = EXCLUDED.bundle_id,
		    files = EXCLUDED.files, metadata = EXCLUDED.metadata, result = EXCLUDED.result,
		    error = EXCLUDED.error, failed_file = EXCLUDED.failed_file,
		    attempts = EXCLUDED.attempts, updated_at = EXCLUDED.updated_at
	`, snap.ID, snap.UploadID, string(snap.Phase), snap.Result.ID(), files, meta, result,
		snap.Error, snap.FailedOn, snap.Attempts, snap.CreatedAt, snap.UpdatedAt)
	return err
}

// Recent returns the latest finished sessions, newest first.
func (r *AuditRepo) Recent(ctx context.Context, limit int) ([]domain.UploadSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT session_id, COALESCE(upload_id, ''), phase, files, metadata, result,
		       COALESCE(error, ''), COALESCE(failed_file, ''), attempts, created_at, updated_at
		FROM upload_audit
		ORDER BY updated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UploadSnapshot
	for rows.Next() {
		var (
			s                      domain.UploadSnapshot
			phase                  string
			files, meta, resultRaw []byte
		)
		if err := rows.Scan(&s.ID, &s.UploadID, &phase, &files, &meta, &resultRaw,
			&s.Error, &s.FailedOn, &s.Attempts, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Phase = domain.UploadPhase(phase)
		if err := json.Unmarshal(files, &s.Files); err != nil {
			return nil, fmt.Errorf("decode files: %w", err)
		}
		if err := json.Unmarshal(meta, &s.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
		if len(resultRaw) > 0 && string(resultRaw) != "null" {
			if err := json.Unmarshal(resultRaw, &s.Result); err != nil {
				return nil, fmt.Errorf("decode result: %w", err)
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
