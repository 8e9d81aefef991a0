// Package postings manages the curated job postings stored in PostgreSQL.
// Admins create and edit them; the public board lists the active ones.
package postings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kaamkhoj/jobboard/internal/model"
)

// ErrNotFound is returned when a posting does not exist.
var ErrNotFound = errors.New("job posting not found")

// Store persists postings.
type Store interface {
	List(ctx context.Context, f model.PostingFilter) ([]model.Posting, error)
	Get(ctx context.Context, id string) (*model.Posting, error)
	Create(ctx context.Context, p model.Posting) (*model.Posting, error)
	Update(ctx context.Context, p model.Posting) (*model.Posting, error)
	Delete(ctx context.Context, id string) error
}

// ─── PostgreSQL ──────────────────────────────────────────────────────────────

const postingColumns = `id::text, title, description, requirements, salary_min, salary_max,
	location, job_type, experience_level, category, company_name, status,
	posted_date, updated_at`

// PostgresStore implements Store on the jobs table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// List returns active postings matching f, newest first.
func (s *PostgresStore) List(ctx context.Context, f model.PostingFilter) ([]model.Posting, error) {
	query, args := buildListQuery(f)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listPostings query: %w", err)
	}
	defer rows.Close()

	out := make([]model.Posting, 0)
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("listPostings scan: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listPostings rows: %w", err)
	}
	return out, nil
}

// buildListQuery turns f into a parameterised SELECT.
func buildListQuery(f model.PostingFilter) (string, []any) {
	var (
		where = []string{"status = 'active'"}
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		p := next("%" + q + "%")
		where = append(where, fmt.Sprintf("(title ILIKE %[1]s OR description ILIKE %[1]s OR company_name ILIKE %[1]s)", p))
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		where = append(where, "location ILIKE "+next("%"+loc+"%"))
	}
	if cat := strings.TrimSpace(f.Category); cat != "" {
		where = append(where, "category ILIKE "+next("%"+cat+"%"))
	}
	if f.SalaryMin > 0 {
		where = append(where, "salary_min >= "+next(f.SalaryMin))
	}
	if len(f.JobTypes) > 0 {
		where = append(where, "job_type = ANY("+next(f.JobTypes)+")")
	}
	if len(f.ExperienceLevels) > 0 {
		where = append(where, "experience_level = ANY("+next(f.ExperienceLevels)+")")
	}

	query := "SELECT " + postingColumns + " FROM jobs WHERE " +
		strings.Join(where, " AND ") + " ORDER BY posted_date DESC"
	return query, args
}

// Get returns the posting with id regardless of status.
func (s *PostgresStore) Get(ctx context.Context, id string) (*model.Posting, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+postingColumns+" FROM jobs WHERE id::text = $1", id)
	p, err := scanPosting(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getPosting: %w", err)
	}
	return p, nil
}

// Create inserts p and returns the stored row.
func (s *PostgresStore) Create(ctx context.Context, p model.Posting) (*model.Posting, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO jobs (id, title, description, requirements, salary_min, salary_max,
		                   location, job_type, experience_level, category, company_name, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+postingColumns,
		p.ID, p.Title, p.Description, p.Requirements, p.SalaryMin, p.SalaryMax,
		p.Location, p.JobType, p.ExperienceLevel, p.Category, p.CompanyName, string(p.Status),
	)
	created, err := scanPosting(row)
	if err != nil {
		return nil, fmt.Errorf("createPosting: %w", err)
	}
	return created, nil
}

// Update overwrites the editable fields of p.ID.
func (s *PostgresStore) Update(ctx context.Context, p model.Posting) (*model.Posting, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE jobs
		 SET title = $2, description = $3, requirements = $4, salary_min = $5, salary_max = $6,
		     location = $7, job_type = $8, experience_level = $9, category = $10,
		     company_name = $11, status = $12, updated_at = NOW()
		 WHERE id::text = $1
		 RETURNING `+postingColumns,
		p.ID, p.Title, p.Description, p.Requirements, p.SalaryMin, p.SalaryMax,
		p.Location, p.JobType, p.ExperienceLevel, p.Category, p.CompanyName, string(p.Status),
	)
	updated, err := scanPosting(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updatePosting: %w", err)
	}
	return updated, nil
}

// Delete removes the posting with id.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM jobs WHERE id::text = $1`, id)
	if err != nil {
		return fmt.Errorf("deletePosting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPosting(row pgx.Row) (*model.Posting, error) {
	var (
		p      model.Posting
		status string
	)
	if err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Requirements, &p.SalaryMin, &p.SalaryMax,
		&p.Location, &p.JobType, &p.ExperienceLevel, &p.Category, &p.CompanyName, &status,
		&p.PostedDate, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Status = model.PostingStatus(status)
	return &p, nil
}
