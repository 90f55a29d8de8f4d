package repository

import (
	"github.com/crewboard/daily-schedule/backend/internal/domain"
)

func (r *Repository) GetEmployeeByID(id int64) (*domain.Employee, error) {
	query := `
		SELECT full_name, phone, contact_address, language, is_active, created_at, version
		FROM employees WHERE id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	employee := &domain.Employee{
		ID: id,
	}

	dst := []any{&employee.FullName, &employee.Phone, &employee.ContactAddress, &employee.Language, &employee.IsActive, &employee.CreatedAt, &employee.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return employee, nil
}

func (r *Repository) GetAllEmployees() ([]*domain.Employee, error) {
	query := `
		SELECT id, full_name, phone, contact_address, language, is_active, created_at, version
		FROM employees ORDER BY full_name
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]*domain.Employee, 0)
	for rows.Next() {
		employee := &domain.Employee{}
		dst := []any{&employee.ID, &employee.FullName, &employee.Phone, &employee.ContactAddress, &employee.Language, &employee.IsActive, &employee.CreatedAt, &employee.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

func (r *Repository) CreateEmployee(employee *domain.Employee) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO employees (full_name, phone, contact_address, language)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active, created_at, version
	`

	args := []any{employee.FullName, employee.Phone, employee.ContactAddress, employee.Language}
	dst := []any{&employee.ID, &employee.IsActive, &employee.CreatedAt, &employee.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}
