package scheduler

import "github.com/crewboard/daily-schedule/backend/internal/domain"

// SetField 编辑某一行的文本字段
//
// 仅属于本行的字段（成本代码、工时）只写这一行；共享字段写穿到同组的每一行，
// 其中 "新增任务"、"备注"、"未完成任务" 还会把整组的异常确认状态重置为未确认
func (b *Board) SetField(index int, field Field, value string) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	if !field.valid() {
		return ErrUnknownField
	}

	targets := []int{index}
	if field.IsShared() {
		group, _ := GroupOf(b.Groups(), index)
		targets = group.Indices
	}

	for _, i := range targets {
		row := &b.rows[i]
		setText(row, field, value)
		if field.ReopensException() {
			row.ExceptionAcknowledged = false
		}
	}

	b.commit(OpEdit)
	return nil
}

func setText(row *domain.AssignmentRow, field Field, value string) {
	switch field {
	case FieldCostCode:
		row.CostCode = value
	case FieldHoursWorked:
		row.HoursWorked = value
	case FieldScheduledTasks:
		row.ScheduledTasks = value
	case FieldAddedTasks:
		row.AddedTasks = value
	case FieldNotes:
		row.Notes = value
	case FieldTasksNotCompleted:
		row.TasksNotCompleted = value
	case FieldMaterialsNeeded:
		row.MaterialsNeeded = value
	}
}

// AssignEmployee 给某一行指定员工，employee 为 nil 时清空；同一天同一员工只能出现在一行中
func (b *Board) AssignEmployee(index int, employee *domain.Employee) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}

	row := &b.rows[index]
	if employee == nil {
		row.EmployeeID = nil
		row.EmployeeName = ""
		b.commit(OpAssign)
		return nil
	}

	for i := range b.rows {
		if i != index && b.rows[i].EmployeeID != nil && *b.rows[i].EmployeeID == employee.ID {
			return ErrEmployeeDoubleBooked
		}
	}

	row.EmployeeID = cloneInt64(&employee.ID)
	row.EmployeeName = employee.FullName
	b.commit(OpAssign)
	return nil
}

// AssignJob 给某一行指定工地，并用工地当前的名称和地址覆盖这一行的缓存；job 为 nil 时清空
//
// 其他行的分组不受影响（分组每次读取时重新计算）。如果这一行因此并入了某个多行的组，
// 这一行会采用组内原有行的共享文本；换到别的工地时清除拆分标记
func (b *Board) AssignJob(index int, job *domain.Job) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}

	row := &b.rows[index]
	if job == nil {
		row.JobID = nil
		row.JobName = ""
		row.JobAddress = ""
		row.UnmergedFromJob = false
	} else {
		if row.JobID == nil || *row.JobID != job.ID {
			row.UnmergedFromJob = false
		}
		row.JobID = cloneInt64(&job.ID)
		row.JobName = job.Name
		row.JobAddress = job.Address
	}

	b.normalizeGroupOf(index)
	b.commit(OpAssign)
	return nil
}

// Unmerge 把某一行从上方的组中拆出来，该行保留自己已有的共享字段文本
func (b *Board) Unmerge(index int) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	if b.rows[index].JobID == nil {
		return nil
	}

	b.rows[index].UnmergedFromJob = true
	b.commit(OpUnmerge)
	return nil
}

// Merge 撤销拆分，使该行重新可以与上方同工地的行合并
func (b *Board) Merge(index int) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	if !b.rows[index].UnmergedFromJob {
		return nil
	}

	b.rows[index].UnmergedFromJob = false
	b.normalizeGroupOf(index)
	b.commit(OpMerge)
	return nil
}

// normalizeGroupOf 让 index 所在组的所有行共享同一份文本
//
// 文本取自组内原有行（不含 index）中第一条有共享文本的行；原有行都为空时才采用 index 自己的文本。
// 任何一行的偏差文本因此发生变化，整组的异常确认状态都重置为未确认
func (b *Board) normalizeGroupOf(index int) {
	group, ok := GroupOf(b.Groups(), index)
	if !ok || group.Rowspan() < 2 {
		return
	}

	source := mergedViewOf(&b.rows[index])
	for _, i := range group.Indices {
		if i == index {
			continue
		}
		if view := mergedViewOf(&b.rows[i]); !view.isBlank() {
			source = view
			break
		}
	}

	reopen := false
	for _, i := range group.Indices {
		row := &b.rows[i]
		if deviationChanged(mergedViewOf(row), source) {
			reopen = true
		}
		source.applyTo(row)
	}

	if reopen {
		for _, i := range group.Indices {
			b.rows[i].ExceptionAcknowledged = false
		}
	}
}

func deviationChanged(before, after MergedView) bool {
	return before.AddedTasks != after.AddedTasks ||
		before.Notes != after.Notes ||
		before.TasksNotCompleted != after.TasksNotCompleted
}
