package domain

import "strings"

// AssignmentRow 表示某一天排班表中的一行，即一个员工到一个工地的分配
type AssignmentRow struct {
	ID string `json:"id"` // 本地新建的行为 "local-<uuid>"，保存后为数据库中的 ID

	EmployeeID   *int64 `json:"employeeID"`
	EmployeeName string `json:"employeeName"`

	JobID      *int64 `json:"jobID"`
	JobName    string `json:"jobName"`
	JobAddress string `json:"jobAddress"`

	// 仅属于本行的字段，不参与合并
	CostCode    string `json:"costCode"`
	HoursWorked string `json:"hoursWorked"`

	// 属于 "当天这个工地" 的共享字段，同一组内的所有行保持一致
	ScheduledTasks    string `json:"scheduledTasks"`
	AddedTasks        string `json:"addedTasks"`
	Notes             string `json:"notes"`
	TasksNotCompleted string `json:"tasksNotCompleted"`
	MaterialsNeeded   string `json:"materialsNeeded"`

	ExceptionAcknowledged bool `json:"exceptionAcknowledged"`
	UnmergedFromJob       bool `json:"unmergedFromJob"`
}

// IsValid 只有同时指定了员工和工地的行才可以保存、导出和发送消息
func (r *AssignmentRow) IsValid() bool {
	return r.EmployeeID != nil && r.JobID != nil
}

// IsEmpty 没有员工、没有工地、所有文本字段都为空
func (r *AssignmentRow) IsEmpty() bool {
	if r.EmployeeID != nil || r.JobID != nil {
		return false
	}

	texts := []string{
		r.EmployeeName,
		r.JobName,
		r.JobAddress,
		r.CostCode,
		r.HoursWorked,
		r.ScheduledTasks,
		r.AddedTasks,
		r.Notes,
		r.TasksNotCompleted,
		r.MaterialsNeeded,
	}
	for _, text := range texts {
		if strings.TrimSpace(text) != "" {
			return false
		}
	}

	return true
}

// SameJob 两行是否指向同一个（非空的）工地
func (r *AssignmentRow) SameJob(other *AssignmentRow) bool {
	return r.JobID != nil && other.JobID != nil && *r.JobID == *other.JobID
}

// ScheduleDraft 某天尚未保存的工作副本；LoadError 记录生成草稿时数据库加载失败，
// 直到保存或放弃草稿之前都会一直提示
type ScheduleDraft struct {
	Rows      []AssignmentRow `json:"rows"`
	LoadError string          `json:"loadError,omitempty"`
}
