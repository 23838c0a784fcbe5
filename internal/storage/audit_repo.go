package storage

import (
	"context"
	"fmt"

	"docqa/internal/models"
)

type AuditRepo struct {
	db *DB
}

func NewAuditRepo(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Insert(ctx context.Context, rec models.AnalysisCall) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO analysis_calls(call_id, source, raw_reference, reference_kind, question_count, answer_count, status, error_kind, status_code, error_detail, duration_ms)
VALUES (COALESCE(NULLIF($1,'')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, NULLIF($8,''), NULLIF($9,0), NULLIF($10,''), $11)
ON CONFLICT (call_id) DO NOTHING`,
		rec.CallID, rec.Source, rec.RawReference, rec.ReferenceKind, rec.QuestionCount, rec.AnswerCount,
		rec.Status, rec.ErrorKind, rec.StatusCode, rec.ErrorDetail, rec.DurationMS)
	if err != nil {
		return fmt.Errorf("insert analysis call: %w", err)
	}
	return nil
}

func (r *AuditRepo) ListRecent(ctx context.Context, limit int) ([]models.AnalysisCall, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Pool.Query(ctx, `
SELECT call_id::text, source, raw_reference, reference_kind, question_count, answer_count, status,
       COALESCE(error_kind,''), COALESCE(status_code,0), COALESCE(error_detail,''), duration_ms, created_at
FROM analysis_calls ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list analysis calls: %w", err)
	}
	defer rows.Close()

	out := make([]models.AnalysisCall, 0)
	for rows.Next() {
		var c models.AnalysisCall
		if err := rows.Scan(&c.CallID, &c.Source, &c.RawReference, &c.ReferenceKind, &c.QuestionCount, &c.AnswerCount,
			&c.Status, &c.ErrorKind, &c.StatusCode, &c.ErrorDetail, &c.DurationMS, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analysis call: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis calls: %w", err)
	}
	return out, nil
}
