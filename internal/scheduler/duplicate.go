package scheduler

import "github.com/crewboard/daily-schedule/backend/internal/domain"

// CopyAssignments 把某一天的有效行复制成另一天的新行
//
// 只复制员工、工地、成本代码和计划任务；工时和所需材料属于当天的实际情况，不会被带到新的一天，
// 偏差字段和确认状态也不会复制。UnmergedFromJob 是排版上的属性，会原样保留，
// 使新的一天的分组和原来一致
func CopyAssignments(rows []domain.AssignmentRow, newID func() string) []domain.AssignmentRow {
	if newID == nil {
		newID = NewLocalID
	}

	copied := make([]domain.AssignmentRow, 0, len(rows))
	for _, row := range PrepareSave(rows) {
		copied = append(copied, domain.AssignmentRow{
			ID:              newID(),
			EmployeeID:      cloneInt64(row.EmployeeID),
			EmployeeName:    row.EmployeeName,
			JobID:           cloneInt64(row.JobID),
			JobName:         row.JobName,
			JobAddress:      row.JobAddress,
			CostCode:        row.CostCode,
			ScheduledTasks:  row.ScheduledTasks,
			UnmergedFromJob: row.UnmergedFromJob,
		})
	}
	return copied
}

// PrepareSave 挑出有效行用于保存。
//
// 无效行（例如用于分隔的空行）被去掉之后，原本不在同一组的两行可能变得相邻且工地相同，
// 这种情况下给后一行打上 UnmergedFromJob，避免重新加载后被错误地合并
func PrepareSave(rows []domain.AssignmentRow) []domain.AssignmentRow {
	groupOf := make(map[int]int, len(rows))
	for gi, g := range GroupRows(rows) {
		for _, i := range g.Indices {
			groupOf[i] = gi
		}
	}

	valid := make([]domain.AssignmentRow, 0, len(rows))
	prev := -1
	for i := range rows {
		if !rows[i].IsValid() {
			continue
		}
		row := cloneRow(rows[i])
		if prev >= 0 && rows[prev].SameJob(&row) && groupOf[prev] != groupOf[i] {
			row.UnmergedFromJob = true
		}
		valid = append(valid, row)
		prev = i
	}
	return valid
}
