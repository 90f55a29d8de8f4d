package repository

import (
	"database/sql"
	"errors"

	"github.com/crewboard/daily-schedule/backend/internal/domain"
)

// Directory 给派发器使用的只读查询，记录不存在时返回 (nil, nil)
type Directory struct {
	repo *Repository
}

func (r *Repository) Directory() *Directory {
	return &Directory{repo: r}
}

func (d *Directory) GetEmployee(id int64) (*domain.Employee, error) {
	employee, err := d.repo.GetEmployeeByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return employee, err
}

func (d *Directory) GetJob(id int64) (*domain.Job, error) {
	job, err := d.repo.GetJobByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return job, err
}
