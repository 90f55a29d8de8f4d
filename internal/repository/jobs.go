package repository

import (
	"github.com/crewboard/daily-schedule/backend/internal/domain"
)

func (r *Repository) GetJobByID(id int64) (*domain.Job, error) {
	query := `
		SELECT name, address, is_active, created_at, version
		FROM jobs WHERE id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	job := &domain.Job{
		ID: id,
	}

	dst := []any{&job.Name, &job.Address, &job.IsActive, &job.CreatedAt, &job.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return job, nil
}

func (r *Repository) GetAllJobs() ([]*domain.Job, error) {
	query := `
		SELECT id, name, address, is_active, created_at, version
		FROM jobs ORDER BY name
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]*domain.Job, 0)
	for rows.Next() {
		job := &domain.Job{}
		dst := []any{&job.ID, &job.Name, &job.Address, &job.IsActive, &job.CreatedAt, &job.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}

func (r *Repository) CreateJob(job *domain.Job) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO jobs (name, address)
		VALUES ($1, $2)
		RETURNING id, is_active, created_at, version
	`

	dst := []any{&job.ID, &job.IsActive, &job.CreatedAt, &job.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, job.Name, job.Address).Scan(dst...); err != nil {
		return err
	}

	return nil
}
