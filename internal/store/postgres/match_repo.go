package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MQasim39/career-dashboard/internal/matching"
)

// MatchRepository stores the ranked results of the last matching run per résumé.
type MatchRepository struct {
	pool *pgxpool.Pool
}

func NewMatchRepository(ctx context.Context, pool *pgxpool.Pool) (*MatchRepository, error) {
	r := &MatchRepository{pool: pool}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure job_matches schema: %w", err)
	}
	return r, nil
}

func (r *MatchRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS job_matches (
	id UUID PRIMARY KEY,
	user_id TEXT NOT NULL,
	resume_id UUID NOT NULL,
	job_id TEXT NOT NULL,
	rank INTEGER NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	score DOUBLE PRECISION NOT NULL CHECK (score >= 0 AND score <= 100),
	matched_skills TEXT[] NOT NULL DEFAULT '{}',
	missing_skills TEXT[] NOT NULL DEFAULT '{}',
	explanation TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_job_matches_owner ON job_matches(user_id, resume_id);
`)
	return err
}

// ReplaceMatches deletes the previous results of the résumé and inserts the new ones
// in the same transaction. The rank column keeps the given order.
func (r *MatchRepository) ReplaceMatches(ctx context.Context, userID, resumeID string, results []matching.Result) error {
	id, err := uuid.Parse(resumeID)
	if err != nil {
		return fmt.Errorf("parse resume id: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `DELETE FROM job_matches WHERE user_id = $1 AND resume_id = $2`, userID, id)
	if err != nil {
		return err
	}

	for rank, result := range results {
		_, err = tx.Exec(ctx, `
INSERT INTO job_matches (id, user_id, resume_id, job_id, rank, title, company, score, matched_skills, missing_skills, explanation, source)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`, matchArgs(uuid.New(), userID, id, rank, result)...)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ListMatches returns the stored results by score descending.
func (r *MatchRepository) ListMatches(ctx context.Context, userID, resumeID string) ([]matching.Result, error) {
	id, err := uuid.Parse(resumeID)
	if err != nil {
		return nil, fmt.Errorf("parse resume id: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
SELECT job_id, title, company, score, matched_skills, missing_skills, explanation, source
FROM job_matches WHERE user_id = $1 AND resume_id = $2
ORDER BY score DESC, rank
`, userID, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []matching.Result{}
	for rows.Next() {
		var m matching.Result
		if err := rows.Scan(&m.JobID, &m.Title, &m.Company, &m.Score, &m.MatchedSkills, &m.MissingSkills, &m.Explanation, &m.Source); err != nil {
			return nil, err
		}
		m.MatchedSkills = nonNil(m.MatchedSkills)
		m.MissingSkills = nonNil(m.MissingSkills)
		res = append(res, m)
	}
	return res, rows.Err()
}

func matchArgs(id uuid.UUID, userID string, resumeID uuid.UUID, rank int, result matching.Result) []any {
	return []any{
		id,
		userID,
		resumeID,
		result.JobID,
		rank,
		result.Title,
		result.Company,
		result.Score,
		nonNil(result.MatchedSkills),
		nonNil(result.MissingSkills),
		result.Explanation,
		string(result.Source),
	}
}
