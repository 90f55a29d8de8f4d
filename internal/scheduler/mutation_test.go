package scheduler

import (
	"testing"

	"github.com/crewboard/daily-schedule/backend/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestBoard_SetField(t *testing.T) {
	t.Run("per-row field only touches the row", func(t *testing.T) {
		b := newTestBoard(crewRow("1", 1, 7), crewRow("2", 2, 7))

		require.NoError(t, b.SetField(1, FieldHoursWorked, "8"))
		require.NoError(t, b.SetField(1, FieldCostCode, "CC-1"))

		rows := b.Rows()
		require.Empty(t, rows[0].HoursWorked)
		require.Empty(t, rows[0].CostCode)
		require.Equal(t, "8", rows[1].HoursWorked)
		require.Equal(t, "CC-1", rows[1].CostCode)
	})

	t.Run("shared field writes through the whole group", func(t *testing.T) {
		b := newTestBoard(crewRow("1", 1, 7), crewRow("2", 2, 7), crewRow("3", 3, 7), crewRow("4", 4, 8))
		for _, i := range []int{0, 1, 2} {
			require.NoError(t, b.Acknowledge(i))
		}

		require.NoError(t, b.SetField(2, FieldNotes, "Gate code 4411"))

		rows := b.Rows()
		for _, i := range []int{0, 1, 2} {
			require.Equal(t, "Gate code 4411", rows[i].Notes)
			require.False(t, rows[i].ExceptionAcknowledged)
		}
		require.Empty(t, rows[3].Notes)
	})

	t.Run("scheduled tasks do not reopen exceptions", func(t *testing.T) {
		b := newTestBoard(crewRow("1", 1, 7), crewRow("2", 2, 7))
		require.NoError(t, b.Acknowledge(0))

		require.NoError(t, b.SetField(0, FieldScheduledTasks, "Pour slab"))
		require.NoError(t, b.SetField(0, FieldMaterialsNeeded, "Rebar"))

		rows := b.Rows()
		for _, i := range []int{0, 1} {
			require.Equal(t, "Pour slab", rows[i].ScheduledTasks)
			require.Equal(t, "Rebar", rows[i].MaterialsNeeded)
			require.True(t, rows[i].ExceptionAcknowledged)
		}
	})

	t.Run("added tasks scenario", func(t *testing.T) {
		b := newTestBoard(crewRow("1", 1, 7), crewRow("2", 2, 7))
		groups := b.Groups()
		require.Equal(t, 2, groups[0].Rowspan())

		require.NoError(t, b.SetField(1, FieldAddedTasks, "Extra cleanup"))

		rows := b.Rows()
		for _, i := range []int{0, 1} {
			require.Equal(t, "Extra cleanup", rows[i].AddedTasks)
			require.False(t, rows[i].ExceptionAcknowledged)
		}
		statuses := EvaluateExceptions(rows, b.Groups())
		require.True(t, statuses[0].HasDeviation)
		require.True(t, statuses[0].Pending())
	})

	t.Run("rejects unknown field and bad index", func(t *testing.T) {
		b := newTestBoard()
		require.ErrorIs(t, b.SetField(0, Field("employeeID"), "1"), ErrUnknownField)
		require.ErrorIs(t, b.SetField(99, FieldNotes, "x"), ErrRowIndexOutOfRange)
	})

	t.Run("keeps an empty row after editing the last one", func(t *testing.T) {
		b := newTestBoard()
		for i := range b.Len() {
			require.NoError(t, b.SetField(i, FieldCostCode, "X"))
		}
		requireInvariants(t, b)
	})
}

func TestBoard_AssignEmployee(t *testing.T) {
	b := newTestBoard(crewRow("1", 1, 7), jobRow("2", 7))

	t.Run("sets id and name", func(t *testing.T) {
		require.NoError(t, b.AssignEmployee(1, &domain.Employee{ID: 2, FullName: "Rosa Diaz"}))
		row, _ := b.Row(1)
		require.Equal(t, int64(2), *row.EmployeeID)
		require.Equal(t, "Rosa Diaz", row.EmployeeName)
	})

	t.Run("rejects double booking", func(t *testing.T) {
		err := b.AssignEmployee(2, &domain.Employee{ID: 1, FullName: "Employee 1"})
		require.ErrorIs(t, err, ErrEmployeeDoubleBooked)
	})

	t.Run("re-assigning the same row is allowed", func(t *testing.T) {
		require.NoError(t, b.AssignEmployee(0, &domain.Employee{ID: 1, FullName: "Employee 1"}))
	})

	t.Run("nil clears", func(t *testing.T) {
		require.NoError(t, b.AssignEmployee(1, nil))
		row, _ := b.Row(1)
		require.Nil(t, row.EmployeeID)
		require.Empty(t, row.EmployeeName)
	})
}

func TestBoard_AssignJob(t *testing.T) {
	t.Run("overwrites cached name and address", func(t *testing.T) {
		b := newTestBoard(crewRow("1", 1, 7))

		require.NoError(t, b.AssignJob(0, &domain.Job{ID: 9, Name: "Harbor Lofts", Address: "12 Pier Rd"}))

		row, _ := b.Row(0)
		require.Equal(t, int64(9), *row.JobID)
		require.Equal(t, "Harbor Lofts", row.JobName)
		require.Equal(t, "12 Pier Rd", row.JobAddress)
	})

	t.Run("joining a group adopts its shared text", func(t *testing.T) {
		b := newTestBoard(crewRow("1", 1, 7), crewRow("2", 2, 7), crewRow("3", 3, 8))
		require.NoError(t, b.SetField(0, FieldScheduledTasks, "Drywall"))

		require.NoError(t, b.AssignJob(2, &domain.Job{ID: 7, Name: "Job 7"}))

		groups := b.Groups()
		require.Equal(t, []int{0, 1, 2}, groups[0].Indices)
		rows := b.Rows()
		require.Equal(t, "Drywall", rows[2].ScheduledTasks)
	})

	t.Run("row moved above a group keeps the group's text", func(t *testing.T) {
		c := crewRow("c", 3, 2)
		c.Notes = "crane late"
		c.ExceptionAcknowledged = true
		a := crewRow("a", 1, 1)
		a.Notes = "gate code 4411"
		a.ExceptionAcknowledged = true
		bRow := crewRow("b", 2, 1)
		bRow.Notes = "gate code 4411"
		bRow.ExceptionAcknowledged = true
		b := newTestBoard(c, a, bRow)
		require.Empty(t, b.PendingExceptions())

		require.NoError(t, b.AssignJob(0, &domain.Job{ID: 1, Name: "Job 1"}))

		groups := b.Groups()
		require.Equal(t, []int{0, 1, 2}, groups[0].Indices)
		rows := b.Rows()
		for _, i := range []int{0, 1, 2} {
			require.Equal(t, "gate code 4411", rows[i].Notes)
			require.False(t, rows[i].ExceptionAcknowledged)
		}
		require.Len(t, b.PendingExceptions(), 1)
	})

	t.Run("unchanged deviation text stays acknowledged", func(t *testing.T) {
		a := crewRow("a", 1, 1)
		a.Notes = "gate code 4411"
		a.ExceptionAcknowledged = true
		bRow := crewRow("b", 2, 1)
		bRow.Notes = "gate code 4411"
		bRow.ExceptionAcknowledged = true
		c := crewRow("c", 3, 2)
		c.Notes = "gate code 4411"
		c.ExceptionAcknowledged = true
		b := newTestBoard(a, bRow, c)

		require.NoError(t, b.AssignJob(2, &domain.Job{ID: 1, Name: "Job 1"}))

		require.Empty(t, b.PendingExceptions())
	})

	t.Run("moving to another job clears the unmerge flag", func(t *testing.T) {
		b := newTestBoard(crewRow("a", 1, 1), crewRow("b", 2, 1), crewRow("c", 3, 2))
		require.NoError(t, b.Unmerge(1))

		require.NoError(t, b.AssignJob(1, &domain.Job{ID: 2, Name: "Job 2"}))

		row, _ := b.Row(1)
		require.False(t, row.UnmergedFromJob)
		require.Equal(t, [][]int{{0}, {1, 2}}, groupIndices(b.Groups())[:2])
	})

	t.Run("same job keeps the unmerge flag", func(t *testing.T) {
		b := newTestBoard(crewRow("a", 1, 1), crewRow("b", 2, 1))
		require.NoError(t, b.Unmerge(1))

		require.NoError(t, b.AssignJob(1, &domain.Job{ID: 1, Name: "Job 1"}))

		row, _ := b.Row(1)
		require.True(t, row.UnmergedFromJob)
	})

	t.Run("nil clears the job and the unmerge flag", func(t *testing.T) {
		b := newTestBoard(crewRow("1", 1, 7), crewRow("2", 2, 7))
		require.NoError(t, b.Unmerge(1))

		require.NoError(t, b.AssignJob(1, nil))

		row, _ := b.Row(1)
		require.Nil(t, row.JobID)
		require.Empty(t, row.JobName)
		require.False(t, row.UnmergedFromJob)
	})
}

func TestBoard_Unmerge(t *testing.T) {
	b := newTestBoard(crewRow("a", 1, 1), crewRow("b", 2, 1), crewRow("c", 3, 1))
	require.NoError(t, b.SetField(0, FieldNotes, "shared"))

	require.NoError(t, b.Unmerge(1))

	groups := b.Groups()
	require.Equal(t, []int{0}, groups[0].Indices)
	require.Equal(t, []int{1}, groups[1].Indices)
	require.Equal(t, []int{2}, groups[2].Indices)

	// 拆分不会清空该行已有的共享字段
	row, _ := b.Row(1)
	require.Equal(t, "shared", row.Notes)

	// 之后对拆出来的行的编辑只影响它自己
	require.NoError(t, b.SetField(1, FieldNotes, "own notes"))
	rows := b.Rows()
	require.Equal(t, "shared", rows[0].Notes)
	require.Equal(t, "own notes", rows[1].Notes)
	require.Equal(t, "shared", rows[2].Notes)

	t.Run("row without a job is a no-op", func(t *testing.T) {
		require.NoError(t, b.Unmerge(10))
		row, _ := b.Row(10)
		require.False(t, row.UnmergedFromJob)
	})
}

func TestBoard_Merge(t *testing.T) {
	b := newTestBoard(crewRow("a", 1, 1), crewRow("b", 2, 1))
	require.NoError(t, b.Unmerge(1))
	require.NoError(t, b.SetField(0, FieldScheduledTasks, "Roofing"))
	require.NoError(t, b.SetField(1, FieldScheduledTasks, "Gutters"))

	require.NoError(t, b.Merge(1))

	groups := b.Groups()
	require.Equal(t, []int{0, 1}, groups[0].Indices)
	rows := b.Rows()
	require.Equal(t, "Roofing", rows[0].ScheduledTasks)
	require.Equal(t, "Roofing", rows[1].ScheduledTasks)
}

func TestBoard_MergeReopensChangedDeviation(t *testing.T) {
	a := crewRow("a", 1, 1)
	a.Notes = "gate code 4411"
	a.ExceptionAcknowledged = true
	bRow := crewRow("b", 2, 1)
	bRow.Notes = "own notes"
	bRow.ExceptionAcknowledged = true
	bRow.UnmergedFromJob = true
	b := newTestBoard(a, bRow)
	require.Empty(t, b.PendingExceptions())

	require.NoError(t, b.Merge(1))

	rows := b.Rows()
	require.Equal(t, "gate code 4411", rows[0].Notes)
	require.Equal(t, "gate code 4411", rows[1].Notes)
	require.False(t, rows[0].ExceptionAcknowledged)
	require.False(t, rows[1].ExceptionAcknowledged)
	require.Len(t, b.PendingExceptions(), 1)
}
