package seed

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/crewboard/daily-schedule/backend/internal/domain"
	"github.com/crewboard/daily-schedule/backend/internal/utils"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository 种子数据需要用到的写入操作，由 repository.Repository 实现
type Repository interface {
	CreateEmployee(employee *domain.Employee) error
	CreateJob(job *domain.Job) error
	GetAllEmployees() ([]*domain.Employee, error)
	GetAllJobs() ([]*domain.Job, error)
	SaveAssignments(date string, rows []domain.AssignmentRow) (map[string]string, error)
}

func isDuplicate(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.ConstraintName == constraint
}

// SeedRandomEmployees 插入 n 个随机员工，返回成功插入的数量。重名的员工直接跳过
func SeedRandomEmployees(r Repository, n int, gatewayDomain string) int {
	cnt := 0
	for i := 0; i < n; i++ {
		employee := utils.GenerateRandomEmployee(gatewayDomain)
		if err := r.CreateEmployee(employee); err != nil {
			if !isDuplicate(err, "employees_full_name_key") {
				slog.Error("无法插入员工", "error", err)
			}
			continue
		}
		cnt++
	}
	return cnt
}

// SeedRandomJobs 插入 n 个随机工地，返回成功插入的数量
func SeedRandomJobs(r Repository, n int) int {
	cnt := 0
	for i := 0; i < n; i++ {
		if err := r.CreateJob(utils.GenerateRandomJob()); err != nil {
			if !isDuplicate(err, "jobs_name_key") {
				slog.Error("无法插入工地", "error", err)
			}
			continue
		}
		cnt++
	}
	return cnt
}

// SeedSchedule 用现有的员工和工地生成某一天的排班并保存，返回保存的行数
func SeedSchedule(r Repository, date string) (int, error) {
	employees, err := r.GetAllEmployees()
	if err != nil {
		return 0, err
	}
	jobs, err := r.GetAllJobs()
	if err != nil {
		return 0, err
	}

	rows := utils.GenerateRandomSchedule(employees, jobs)
	if len(rows) == 0 {
		return 0, nil
	}

	if _, err := r.SaveAssignments(date, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ImportEmployees 从 CSV 导入员工，列依次为：姓名、电话、联系地址、语言，第一行是表头
func ImportEmployees(r Repository, reader io.Reader) (int, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1

	// 跳过表头
	if _, err := csvReader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, err
	}

	cnt := 0
	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return cnt, err
		}

		field := func(i int) string {
			if i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		employee := &domain.Employee{
			FullName:       field(0),
			Phone:          field(1),
			ContactAddress: field(2),
			Language:       field(3),
		}
		if employee.FullName == "" {
			slog.Warn("跳过没有姓名的员工")
			continue
		}

		if err := r.CreateEmployee(employee); err != nil {
			if isDuplicate(err, "employees_full_name_key") {
				slog.Info("员工已存在", "name", employee.FullName)
				continue
			}
			return cnt, err
		}
		cnt++
	}

	return cnt, nil
}
