package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MQasim39/career-dashboard/internal/extract"
	"github.com/MQasim39/career-dashboard/internal/store"
)

// ResumeRepository keeps parsed résumés as JSON documents.
type ResumeRepository struct {
	pool *pgxpool.Pool
}

func NewResumeRepository(ctx context.Context, pool *pgxpool.Pool) (*ResumeRepository, error) {
	r := &ResumeRepository{pool: pool}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure parsed_resumes schema: %w", err)
	}
	return r, nil
}

func (r *ResumeRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS parsed_resumes (
	resume_id UUID PRIMARY KEY,
	user_id TEXT NOT NULL,
	document JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_parsed_resumes_user ON parsed_resumes(user_id);
`)
	return err
}

func (r *ResumeRepository) GetParsedResume(ctx context.Context, resumeID, userID string) (*extract.ParsedDocument, error) {
	id, err := uuid.Parse(resumeID)
	if err != nil {
		return nil, fmt.Errorf("parse resume id: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
SELECT document FROM parsed_resumes WHERE resume_id = $1 AND user_id = $2
`, id, userID)

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return decodeDocument(raw)
}

// SaveParsedResume inserts the document or replaces the stored one for the same résumé id.
func (r *ResumeRepository) SaveParsedResume(ctx context.Context, resumeID, userID string, doc *extract.ParsedDocument) error {
	id, err := uuid.Parse(resumeID)
	if err != nil {
		return fmt.Errorf("parse resume id: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal parsed resume: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
INSERT INTO parsed_resumes (resume_id, user_id, document, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (resume_id) DO UPDATE
SET user_id = EXCLUDED.user_id, document = EXCLUDED.document, updated_at = EXCLUDED.updated_at
`, id, userID, raw)
	return err
}

func decodeDocument(raw []byte) (*extract.ParsedDocument, error) {
	var doc extract.ParsedDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode parsed resume: %w", err)
	}
	return &doc, nil
}
