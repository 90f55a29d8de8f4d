package scheduler

import (
	"fmt"

	"github.com/crewboard/daily-schedule/backend/internal/domain"
)

func id64(v int64) *int64 {
	return &v
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("local-%d", n)
	}
}

func jobRow(id string, jobID int64) domain.AssignmentRow {
	return domain.AssignmentRow{
		ID:      id,
		JobID:   id64(jobID),
		JobName: fmt.Sprintf("Job %d", jobID),
	}
}

func crewRow(id string, employeeID, jobID int64) domain.AssignmentRow {
	row := jobRow(id, jobID)
	row.EmployeeID = id64(employeeID)
	row.EmployeeName = fmt.Sprintf("Employee %d", employeeID)
	return row
}

func groupIndices(groups []Group) [][]int {
	out := make([][]int, len(groups))
	for i, g := range groups {
		out[i] = g.Indices
	}
	return out
}

func newTestBoard(rows ...domain.AssignmentRow) *Board {
	b := NewBoard("2026-10-15", WithIDGenerator(sequentialIDs()))
	b.Load(rows)
	return b
}
