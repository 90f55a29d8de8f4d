package scheduler

import (
	"strings"

	"github.com/crewboard/daily-schedule/backend/internal/domain"
)

// Filter 返回匹配查询文本（不区分大小写）的行下标；查询为空时返回所有行
func Filter(rows []domain.AssignmentRow, query string) []int {
	query = strings.ToLower(strings.TrimSpace(query))

	visible := make([]int, 0, len(rows))
	for i := range rows {
		if query == "" || rowMatches(&rows[i], query) {
			visible = append(visible, i)
		}
	}
	return visible
}

func rowMatches(row *domain.AssignmentRow, query string) bool {
	texts := []string{
		row.EmployeeName,
		row.JobName,
		row.JobAddress,
		row.CostCode,
		row.ScheduledTasks,
		row.AddedTasks,
		row.Notes,
		row.TasksNotCompleted,
		row.MaterialsNeeded,
	}
	for _, text := range texts {
		if strings.Contains(strings.ToLower(text), query) {
			return true
		}
	}
	return false
}
