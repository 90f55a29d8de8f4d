package scheduler

import "github.com/crewboard/daily-schedule/backend/internal/domain"

type JobSummary struct {
	JobID      int64    `json:"jobID"`
	JobName    string   `json:"jobName"`
	JobAddress string   `json:"jobAddress"`
	Headcount  int      `json:"headcount"`
	Employees  []string `json:"employees"`
}

type Summary struct {
	Date              string       `json:"date"`
	ValidRows         int          `json:"validRows"`
	PendingExceptions int          `json:"pendingExceptions"`
	Jobs              []JobSummary `json:"jobs"`
}

// Summarize 当天的概览：每个工地的人数和人员，以及待处理异常数量。工地按第一次出现的顺序排列
func Summarize(date string, rows []domain.AssignmentRow) Summary {
	summary := Summary{
		Date:              date,
		PendingExceptions: len(PendingExceptions(rows)),
		Jobs:              []JobSummary{},
	}

	position := make(map[int64]int)
	for i := range rows {
		row := &rows[i]
		if !row.IsValid() {
			continue
		}
		summary.ValidRows++

		pos, ok := position[*row.JobID]
		if !ok {
			pos = len(summary.Jobs)
			position[*row.JobID] = pos
			summary.Jobs = append(summary.Jobs, JobSummary{
				JobID:      *row.JobID,
				JobName:    row.JobName,
				JobAddress: row.JobAddress,
				Employees:  []string{},
			})
		}
		summary.Jobs[pos].Headcount++
		summary.Jobs[pos].Employees = append(summary.Jobs[pos].Employees, row.EmployeeName)
	}

	return summary
}
