package repository

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/crewboard/daily-schedule/backend/internal/domain"
	"github.com/crewboard/daily-schedule/backend/internal/scheduler"
)

// GetScheduleForDate 按位置顺序返回某天保存过的行，员工和工地的名称从目录表中取
func (r *Repository) GetScheduleForDate(date string) ([]domain.AssignmentRow, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT
			sa.id,
			sa.employee_id,
			e.full_name,
			sa.job_id,
			j.name,
			j.address,
			sa.cost_code,
			sa.hours_worked,
			sa.scheduled_tasks,
			sa.added_tasks,
			sa.notes,
			sa.tasks_not_completed,
			sa.materials_needed,
			sa.exception_acknowledged,
			sa.unmerged_from_job
		FROM schedule_assignments sa
		JOIN employees e ON e.id = sa.employee_id
		JOIN jobs j ON j.id = sa.job_id
		WHERE sa.work_date = $1::date
		ORDER BY sa.position
	`

	rows, err := r.dbpool.QueryContext(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.AssignmentRow, 0)
	for rows.Next() {
		var (
			id         int64
			employeeID int64
			jobID      int64
			row        domain.AssignmentRow
		)

		dst := []any{
			&id,
			&employeeID,
			&row.EmployeeName,
			&jobID,
			&row.JobName,
			&row.JobAddress,
			&row.CostCode,
			&row.HoursWorked,
			&row.ScheduledTasks,
			&row.AddedTasks,
			&row.Notes,
			&row.TasksNotCompleted,
			&row.MaterialsNeeded,
			&row.ExceptionAcknowledged,
			&row.UnmergedFromJob,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		row.ID = strconv.FormatInt(id, 10)
		row.EmployeeID = &employeeID
		row.JobID = &jobID
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// SaveAssignments 用给定的行整体替换某天的排班，调用方负责只传入有效行。
// 返回行原来的 ID 到数据库 ID 的映射
func (r *Repository) SaveAssignments(date string, rows []domain.AssignmentRow) (map[string]string, error) {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	saved, err := replaceAssignments(ctx, tx, date, rows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return saved, nil
}

// CopyAssignments 把 sourceDate 的计划复制到 targetDate 并覆盖其原有内容，返回新保存的行。
// rows 为空时使用 sourceDate 已保存的行
func (r *Repository) CopyAssignments(sourceDate, targetDate string, rows []domain.AssignmentRow) ([]domain.AssignmentRow, error) {
	if rows == nil {
		source, err := r.GetScheduleForDate(sourceDate)
		if err != nil {
			return nil, err
		}
		rows = source
	}

	copied := scheduler.CopyAssignments(rows, nil)
	if len(copied) == 0 {
		return nil, scheduler.ErrNoValidRows
	}

	saved, err := r.SaveAssignments(targetDate, copied)
	if err != nil {
		return nil, err
	}

	for i := range copied {
		copied[i].ID = saved[copied[i].ID]
	}

	return copied, nil
}

func replaceAssignments(ctx context.Context, tx *sql.Tx, date string, rows []domain.AssignmentRow) (map[string]string, error) {
	// 先将这一天原有的排班删除
	query := `DELETE FROM schedule_assignments WHERE work_date = $1::date`
	if _, err := tx.ExecContext(ctx, query, date); err != nil {
		return nil, err
	}

	query = `
		INSERT INTO schedule_assignments (
			work_date, position, employee_id, job_id, cost_code, hours_worked, scheduled_tasks,
			added_tasks, notes, tasks_not_completed, materials_needed, exception_acknowledged, unmerged_from_job
		)
		VALUES ($1::date, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	saved := make(map[string]string, len(rows))
	for i, row := range rows {
		args := []any{
			date,
			i,
			*row.EmployeeID,
			*row.JobID,
			row.CostCode,
			row.HoursWorked,
			row.ScheduledTasks,
			row.AddedTasks,
			row.Notes,
			row.TasksNotCompleted,
			row.MaterialsNeeded,
			row.ExceptionAcknowledged,
			row.UnmergedFromJob,
		}

		var id int64
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return nil, err
		}
		saved[row.ID] = strconv.FormatInt(id, 10)
	}

	return saved, nil
}
