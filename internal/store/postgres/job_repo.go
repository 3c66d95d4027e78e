package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MQasim39/career-dashboard/internal/jobs"
)

// JobRepository stores scraped job postings.
type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(ctx context.Context, pool *pgxpool.Pool) (*JobRepository, error) {
	r := &JobRepository{pool: pool}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure jobs schema: %w", err)
	}
	return r, nil
}

func (r *JobRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	requirements TEXT[] NOT NULL DEFAULT '{}',
	url TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`)
	return err
}

func (r *JobRepository) ListJobs(ctx context.Context, filter jobs.Filter) ([]*jobs.Job, error) {
	query, args := buildJobsQuery(filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*jobs.Job
	for rows.Next() {
		job := &jobs.Job{}
		if err := rows.Scan(&job.ID, &job.Title, &job.Company, &job.Location, &job.Description, &job.Requirements, &job.URL); err != nil {
			return nil, err
		}
		res = append(res, job)
	}
	return res, rows.Err()
}

// UpsertJobs writes every job in one transaction, replacing rows with the same id.
func (r *JobRepository) UpsertJobs(ctx context.Context, list []*jobs.Job) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, job := range list {
		if err := job.Validate(); err != nil {
			return fmt.Errorf("job %d: %w", i, err)
		}
		_, err = tx.Exec(ctx, `
INSERT INTO jobs (id, title, company, location, description, requirements, url)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
	title = EXCLUDED.title,
	company = EXCLUDED.company,
	location = EXCLUDED.location,
	description = EXCLUDED.description,
	requirements = EXCLUDED.requirements,
	url = EXCLUDED.url
`, job.ID, job.Title, job.Company, job.Location, job.Description, nonNil(job.Requirements), job.URL)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// buildJobsQuery turns a filter into SQL with positional arguments. Every keyword
// must appear in the title, description or requirements.
func buildJobsQuery(filter jobs.Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, keyword := range filter.Keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		p := next(likePattern(keyword))
		where = append(where, fmt.Sprintf("(title ILIKE %[1]s OR description ILIKE %[1]s OR array_to_string(requirements, ' ') ILIKE %[1]s)", p))
	}
	if location := strings.TrimSpace(filter.Location); location != "" {
		where = append(where, "location ILIKE "+next(likePattern(location)))
	}
	if company := strings.TrimSpace(filter.Company); company != "" {
		where = append(where, "company ILIKE "+next(likePattern(company)))
	}

	var b strings.Builder
	b.WriteString("SELECT id, title, company, location, description, requirements, url FROM jobs")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC, id")
	if filter.Limit > 0 {
		b.WriteString(" LIMIT " + next(filter.Limit))
	}

	return b.String(), args
}

// likePattern wraps s in wildcards, escaping the LIKE metacharacters it contains.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
