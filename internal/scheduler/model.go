package scheduler

import (
	"errors"

	"github.com/crewboard/daily-schedule/backend/internal/domain"
)

const DefaultMinRows = 30

var (
	ErrRowIndexOutOfRange   = errors.New("row index out of range")
	ErrRowNotFound          = errors.New("row not found")
	ErrEmployeeDoubleBooked = errors.New("employee already assigned on this date")
	ErrNoValidRows          = errors.New("no row has both an employee and a job")
	ErrUnknownField         = errors.New("unknown or non-text field")
)

// Field 可以用文本直接编辑的字段
type Field string

const (
	FieldCostCode          Field = "costCode"
	FieldHoursWorked       Field = "hoursWorked"
	FieldScheduledTasks    Field = "scheduledTasks"
	FieldAddedTasks        Field = "addedTasks"
	FieldNotes             Field = "notes"
	FieldTasksNotCompleted Field = "tasksNotCompleted"
	FieldMaterialsNeeded   Field = "materialsNeeded"
)

// IsShared 共享字段需要写穿到同组的所有行
func (f Field) IsShared() bool {
	switch f {
	case FieldScheduledTasks, FieldAddedTasks, FieldNotes, FieldTasksNotCompleted, FieldMaterialsNeeded:
		return true
	}
	return false
}

// ReopensException 修改这些字段会让整组的异常重新变为未确认
func (f Field) ReopensException() bool {
	switch f {
	case FieldAddedTasks, FieldNotes, FieldTasksNotCompleted:
		return true
	}
	return false
}

func (f Field) valid() bool {
	return f == FieldCostCode || f == FieldHoursWorked || f.IsShared()
}

// MergedView 一组行共享的字段，总是取自组内第一行
type MergedView struct {
	ScheduledTasks    string `json:"scheduledTasks"`
	AddedTasks        string `json:"addedTasks"`
	Notes             string `json:"notes"`
	TasksNotCompleted string `json:"tasksNotCompleted"`
	MaterialsNeeded   string `json:"materialsNeeded"`
}

func mergedViewOf(row *domain.AssignmentRow) MergedView {
	return MergedView{
		ScheduledTasks:    row.ScheduledTasks,
		AddedTasks:        row.AddedTasks,
		Notes:             row.Notes,
		TasksNotCompleted: row.TasksNotCompleted,
		MaterialsNeeded:   row.MaterialsNeeded,
	}
}

func (v MergedView) applyTo(row *domain.AssignmentRow) {
	row.ScheduledTasks = v.ScheduledTasks
	row.AddedTasks = v.AddedTasks
	row.Notes = v.Notes
	row.TasksNotCompleted = v.TasksNotCompleted
	row.MaterialsNeeded = v.MaterialsNeeded
}

func (v MergedView) isBlank() bool {
	return isBlank(v.ScheduledTasks) && isBlank(v.AddedTasks) && isBlank(v.Notes) &&
		isBlank(v.TasksNotCompleted) && isBlank(v.MaterialsNeeded)
}

// Group 连续且属于同一工地的若干行（派生数据，不持久化）
type Group struct {
	Indices []int      `json:"indices"`
	JobID   *int64     `json:"jobID"`
	Merged  MergedView `json:"merged"`
}

func (g Group) First() int {
	return g.Indices[0]
}

func (g Group) Rowspan() int {
	return len(g.Indices)
}

func (g Group) Contains(index int) bool {
	for _, i := range g.Indices {
		if i == index {
			return true
		}
	}
	return false
}

// Op 排班表发生的变更类型
type Op string

const (
	OpLoad        Op = "load"
	OpAddRow      Op = "add_row"
	OpRemoveRow   Op = "remove_row"
	OpSeparators  Op = "insert_separators"
	OpEdit        Op = "edit"
	OpAssign      Op = "assign"
	OpUnmerge     Op = "unmerge"
	OpMerge       Op = "merge"
	OpAcknowledge Op = "acknowledge"
	OpClear       Op = "clear"
	OpSaved       Op = "saved"
)

// Change 每次变更后推送给订阅者的快照
type Change struct {
	Date string                 `json:"date"`
	Op   Op                     `json:"op"`
	Rows []domain.AssignmentRow `json:"rows"`
}
