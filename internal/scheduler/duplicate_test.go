package scheduler

import (
	"testing"

	"github.com/crewboard/daily-schedule/backend/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestCopyAssignments(t *testing.T) {
	source := []domain.AssignmentRow{crewRow("1", 1, 7), crewRow("2", 2, 7), {ID: "3"}, jobRow("4", 8)}
	for i := range source[:2] {
		source[i].CostCode = "CC-7"
		source[i].HoursWorked = "8"
		source[i].ScheduledTasks = "Framing"
		source[i].MaterialsNeeded = "Nails"
		source[i].AddedTasks = "Cleanup"
		source[i].Notes = "Rain"
		source[i].TasksNotCompleted = "Stairs"
		source[i].ExceptionAcknowledged = true
	}

	copied := CopyAssignments(source, sequentialIDs())

	require.Len(t, copied, 2, "only valid rows are carried forward")
	for i, row := range copied {
		require.Equal(t, *source[i].EmployeeID, *row.EmployeeID)
		require.Equal(t, source[i].EmployeeName, row.EmployeeName)
		require.Equal(t, *source[i].JobID, *row.JobID)
		require.Equal(t, "Job 7", row.JobName)
		require.Equal(t, "CC-7", row.CostCode)
		require.Equal(t, "Framing", row.ScheduledTasks)

		require.Empty(t, row.HoursWorked)
		require.Empty(t, row.MaterialsNeeded)
		require.Empty(t, row.AddedTasks)
		require.Empty(t, row.Notes)
		require.Empty(t, row.TasksNotCompleted)
		require.False(t, row.ExceptionAcknowledged)
	}
	require.Equal(t, "local-1", copied[0].ID)
	require.Equal(t, "local-2", copied[1].ID)

	// 新的一天加载后的分组与原来一致
	target := NewBoard("2026-10-16", WithIDGenerator(sequentialIDs()))
	target.Load(copied)
	require.Equal(t, []int{0, 1}, target.Groups()[0].Indices)
	require.Equal(t, 30, target.Len())
}

func TestCopyAssignments_KeepsSplitGroups(t *testing.T) {
	source := []domain.AssignmentRow{crewRow("1", 1, 7), crewRow("2", 2, 7)}
	source[0].ScheduledTasks = "North wing"
	source[1].ScheduledTasks = "South wing"
	source[1].UnmergedFromJob = true

	copied := CopyAssignments(source, nil)

	require.True(t, copied[1].UnmergedFromJob)
	require.Equal(t, [][]int{{0}, {1}}, groupIndices(GroupRows(copied)))
}

func TestPrepareSave(t *testing.T) {
	t.Run("separator between the same job keeps groups apart", func(t *testing.T) {
		rows := []domain.AssignmentRow{crewRow("1", 1, 7), {ID: "sep"}, crewRow("2", 2, 7)}

		saved := PrepareSave(rows)

		require.Len(t, saved, 2)
		require.False(t, saved[0].UnmergedFromJob)
		require.True(t, saved[1].UnmergedFromJob)
	})

	t.Run("invalid member inside a group does not split it", func(t *testing.T) {
		rows := []domain.AssignmentRow{crewRow("1", 1, 7), jobRow("2", 7), crewRow("3", 3, 7)}

		saved := PrepareSave(rows)

		require.Len(t, saved, 2)
		require.False(t, saved[1].UnmergedFromJob)
	})

	t.Run("no valid rows", func(t *testing.T) {
		require.Empty(t, PrepareSave([]domain.AssignmentRow{{ID: "a"}, jobRow("b", 1)}))
	})
}

func TestValidRows(t *testing.T) {
	rows := []domain.AssignmentRow{crewRow("1", 1, 7), jobRow("2", 7), {ID: "3", EmployeeID: id64(3)}}

	valid := ValidRows(rows)

	require.Len(t, valid, 1)
	require.Equal(t, "1", valid[0].ID)
}
