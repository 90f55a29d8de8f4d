package scheduler

import "github.com/crewboard/daily-schedule/backend/internal/domain"

// ExceptionStatus 一个组的异常状态
type ExceptionStatus struct {
	Group        Group `json:"group"`
	HasDeviation bool  `json:"hasDeviation"`
	Acknowledged bool  `json:"acknowledged"`
}

// Pending 有偏差且还没有被全部确认
func (s ExceptionStatus) Pending() bool {
	return s.HasDeviation && !s.Acknowledged
}

func HasDeviation(view MergedView) bool {
	return !isBlank(view.AddedTasks) || !isBlank(view.Notes) || !isBlank(view.TasksNotCompleted)
}

// EvaluateExceptions 计算每个组的异常状态
func EvaluateExceptions(rows []domain.AssignmentRow, groups []Group) []ExceptionStatus {
	statuses := make([]ExceptionStatus, 0, len(groups))
	for _, g := range groups {
		acknowledged := true
		for _, i := range g.Indices {
			if !rows[i].ExceptionAcknowledged {
				acknowledged = false
				break
			}
		}
		statuses = append(statuses, ExceptionStatus{
			Group:        g,
			HasDeviation: HasDeviation(g.Merged),
			Acknowledged: acknowledged,
		})
	}
	return statuses
}

// PendingExceptions 当前所有待处理的异常，每次都从最新的分组结果重新计算
func PendingExceptions(rows []domain.AssignmentRow) []ExceptionStatus {
	pending := []ExceptionStatus{}
	for _, status := range EvaluateExceptions(rows, GroupRows(rows)) {
		if status.Pending() {
			pending = append(pending, status)
		}
	}
	return pending
}

func (b *Board) PendingExceptions() []ExceptionStatus {
	return PendingExceptions(b.rows)
}

// Acknowledge 确认 index 所在组的异常，可重复调用
func (b *Board) Acknowledge(index int) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}

	group, _ := GroupOf(b.Groups(), index)
	for _, i := range group.Indices {
		b.rows[i].ExceptionAcknowledged = true
	}

	b.commit(OpAcknowledge)
	return nil
}

// ClearException 清空 index 所在组的三个偏差字段，确认状态保持不变
func (b *Board) ClearException(index int) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}

	group, _ := GroupOf(b.Groups(), index)
	for _, i := range group.Indices {
		b.rows[i].AddedTasks = ""
		b.rows[i].Notes = ""
		b.rows[i].TasksNotCompleted = ""
	}

	b.commit(OpClear)
	return nil
}
