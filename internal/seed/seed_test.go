package seed

import (
	"strings"
	"testing"

	"github.com/crewboard/daily-schedule/backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type memoryRepository struct {
	employees []*domain.Employee
	jobs      []*domain.Job
	saved     map[string][]domain.AssignmentRow
}

func (m *memoryRepository) CreateEmployee(employee *domain.Employee) error {
	for _, e := range m.employees {
		if e.FullName == employee.FullName {
			return &pgconn.PgError{Code: "23505", ConstraintName: "employees_full_name_key"}
		}
	}
	employee.ID = int64(len(m.employees) + 1)
	m.employees = append(m.employees, employee)
	return nil
}

func (m *memoryRepository) CreateJob(job *domain.Job) error {
	job.ID = int64(len(m.jobs) + 100)
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *memoryRepository) GetAllEmployees() ([]*domain.Employee, error) {
	return m.employees, nil
}

func (m *memoryRepository) GetAllJobs() ([]*domain.Job, error) {
	return m.jobs, nil
}

func (m *memoryRepository) SaveAssignments(date string, rows []domain.AssignmentRow) (map[string]string, error) {
	if m.saved == nil {
		m.saved = map[string][]domain.AssignmentRow{}
	}
	m.saved[date] = rows
	return map[string]string{}, nil
}

func TestImportEmployees(t *testing.T) {
	repo := &memoryRepository{}
	input := "name,phone,contact,language\n" +
		"Ana Ruiz,5550001,5550001@sms.example.com,es\n" +
		",5550002,,\n" +
		"Ana Ruiz,5550003,,\n" +
		"Ben Ode,5550004\n"

	n, err := ImportEmployees(repo, strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, "es", repo.employees[0].Language)
	require.Empty(t, repo.employees[1].ContactAddress)
}

func TestSeedSchedule(t *testing.T) {
	repo := &memoryRepository{}
	require.Equal(t, 3, SeedRandomJobs(repo, 3))
	for _, name := range []string{"A", "B", "C", "D"} {
		require.NoError(t, repo.CreateEmployee(&domain.Employee{FullName: name}))
	}

	n, err := SeedSchedule(repo, "2026-10-15")
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Len(t, repo.saved["2026-10-15"], 4)
}
