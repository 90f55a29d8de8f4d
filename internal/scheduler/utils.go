package scheduler

import (
	"strings"

	"github.com/crewboard/daily-schedule/backend/internal/domain"
	"github.com/google/uuid"
)

const localIDPrefix = "local-"

func NewLocalID() string {
	return localIDPrefix + uuid.NewString()
}

func IsLocalID(id string) bool {
	return strings.HasPrefix(id, localIDPrefix)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func cloneInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneRow(row domain.AssignmentRow) domain.AssignmentRow {
	row.EmployeeID = cloneInt64(row.EmployeeID)
	row.JobID = cloneInt64(row.JobID)
	return row
}

func cloneRows(rows []domain.AssignmentRow) []domain.AssignmentRow {
	out := make([]domain.AssignmentRow, len(rows))
	for i, row := range rows {
		out[i] = cloneRow(row)
	}
	return out
}

// ValidRows 挑出可以保存的行（员工和工地都不为空），保持原有顺序
func ValidRows(rows []domain.AssignmentRow) []domain.AssignmentRow {
	valid := make([]domain.AssignmentRow, 0, len(rows))
	for _, row := range rows {
		if row.IsValid() {
			valid = append(valid, cloneRow(row))
		}
	}
	return valid
}
