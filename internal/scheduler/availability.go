package scheduler

import "github.com/crewboard/daily-schedule/backend/internal/domain"

// AvailableEmployees 返回可以分配到第 index 行的员工：已经在其他行中出现的员工会被排除，
// 当前行自己占用的员工仍然可选。index 为 -1 时表示新行
func AvailableEmployees(rows []domain.AssignmentRow, employees []*domain.Employee, index int) []*domain.Employee {
	booked := make(map[int64]bool)
	for i := range rows {
		if i == index || rows[i].EmployeeID == nil {
			continue
		}
		booked[*rows[i].EmployeeID] = true
	}

	available := make([]*domain.Employee, 0, len(employees))
	for _, e := range employees {
		if !booked[e.ID] {
			available = append(available, e)
		}
	}
	return available
}
