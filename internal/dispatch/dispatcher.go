package dispatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/crewboard/daily-schedule/backend/internal/domain"
	"github.com/crewboard/daily-schedule/backend/internal/scheduler"
)

const (
	ReasonMissingContact  = "missing_contact"
	ReasonMissingLocation = "missing_location"
	ReasonLookupFailed    = "lookup_failed"
	ReasonSendFailed      = "send_failed"
)

// Directory 员工和工地的只读查询，不存在时返回 (nil, nil)
type Directory interface {
	GetEmployee(id int64) (*domain.Employee, error)
	GetJob(id int64) (*domain.Job, error)
}

// Sender 发送一条单收件人的排班通知
type Sender interface {
	SendAssignmentMessage(ctx context.Context, rowID string, msg domain.AssignmentMessage) error
}

type Request struct {
	Date   string
	Rows   []domain.AssignmentRow
	RowIDs []string // 为空时发送给所有有效行
}

type Result struct {
	RowID      string `json:"rowID"`
	EmployeeID int64  `json:"employeeID"`
	Employee   string `json:"employee"`
	Success    bool   `json:"success"`
	Reason     string `json:"reason,omitempty"`
	Error      string `json:"error,omitempty"`
}

type Report struct {
	Date      string   `json:"date"`
	Attempted int      `json:"attempted"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Results   []Result `json:"results"`
}

// FailureSummary 给操作员看的失败汇总，没有失败时返回空字符串
func (r *Report) FailureSummary() string {
	if r.Failed == 0 {
		return ""
	}

	details := make([]string, 0, r.Failed)
	for _, res := range r.Results {
		if res.Success {
			continue
		}
		who := res.Employee
		if who == "" {
			who = res.RowID
		}
		detail := res.Reason
		if res.Error != "" {
			detail = res.Error
		}
		details = append(details, fmt.Sprintf("%s (%s)", who, detail))
	}

	return fmt.Sprintf("%d message(s) failed: %s", r.Failed, strings.Join(details, "; "))
}

type Dispatcher struct {
	directory   Directory
	sender      Sender
	metrics     Metrics
	logger      *slog.Logger
	sendTimeout time.Duration
	language    string
}

type Option func(*Dispatcher)

func WithMetrics(m Metrics) Option {
	return func(d *Dispatcher) {
		if m != nil {
			d.metrics = m
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithSendTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.sendTimeout = timeout
	}
}

// WithDefaultLanguage 员工没有设置语言时使用
func WithDefaultLanguage(language string) Option {
	return func(d *Dispatcher) {
		d.language = language
	}
}

func New(directory Directory, sender Sender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		directory: directory,
		sender:    sender,
		metrics:   NopMetrics{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Candidates 需要发送的行：有效行，且（如果指定了）在 RowIDs 中，保持原有顺序
func Candidates(rows []domain.AssignmentRow, rowIDs []string) []int {
	wanted := make(map[string]bool, len(rowIDs))
	for _, id := range rowIDs {
		wanted[id] = true
	}

	candidates := []int{}
	for i := range rows {
		if !rows[i].IsValid() {
			continue
		}
		if len(wanted) > 0 && !wanted[rows[i].ID] {
			continue
		}
		candidates = append(candidates, i)
	}
	return candidates
}

// Dispatch 按顺序逐行发送通知。单行失败只会记录在结果中，不会中断整批发送；
// 一批开始之后会跑完所有行，调用方的 ctx 被取消也不会中途放弃
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Report, error) {
	candidates := Candidates(req.Rows, req.RowIDs)
	if len(candidates) == 0 {
		return nil, scheduler.ErrNoValidRows
	}

	ctx = context.WithoutCancel(ctx)
	groups := scheduler.GroupRows(req.Rows)
	start := time.Now()

	report := &Report{
		Date:    req.Date,
		Results: make([]Result, 0, len(candidates)),
	}

	for _, index := range candidates {
		group, _ := scheduler.GroupOf(groups, index)
		res := d.dispatchRow(ctx, req.Date, &req.Rows[index], group.Merged)

		report.Attempted++
		if res.Success {
			report.Succeeded++
		} else {
			report.Failed++
			d.logger.Warn("排班通知发送失败", "date", req.Date, "row", res.RowID, "reason", res.Reason, "error", res.Error)
		}
		d.metrics.RecordSend(res.Success, res.Reason)
		report.Results = append(report.Results, res)
	}

	d.metrics.ObserveBatch(time.Since(start))
	d.logger.Info("排班通知发送完成", "date", req.Date, "attempted", report.Attempted, "succeeded", report.Succeeded, "failed", report.Failed)

	return report, nil
}

func (d *Dispatcher) dispatchRow(ctx context.Context, date string, row *domain.AssignmentRow, merged scheduler.MergedView) Result {
	res := Result{
		RowID:      row.ID,
		EmployeeID: *row.EmployeeID,
		Employee:   row.EmployeeName,
	}

	employee, err := d.directory.GetEmployee(*row.EmployeeID)
	if err != nil {
		return res.fail(ReasonLookupFailed, err)
	}
	if employee == nil || !employee.HasContact() {
		return res.fail(ReasonMissingContact, nil)
	}
	res.Employee = employee.FullName

	job, err := d.directory.GetJob(*row.JobID)
	if err != nil {
		return res.fail(ReasonLookupFailed, err)
	}
	if job == nil || !job.HasLocation() {
		return res.fail(ReasonMissingLocation, nil)
	}

	msg := BuildMessage(date, employee, job, merged)
	if msg.Language == "" {
		msg.Language = d.language
	}

	sendCtx := ctx
	if d.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.sendTimeout)
		defer cancel()
	}

	if err := d.sender.SendAssignmentMessage(sendCtx, row.ID, msg); err != nil {
		return res.fail(ReasonSendFailed, err)
	}

	res.Success = true
	return res
}

func (r Result) fail(reason string, err error) Result {
	r.Success = false
	r.Reason = reason
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// BuildMessage 用组的共享字段构建消息，同一工地的员工收到相同的任务和备注
func BuildMessage(date string, employee *domain.Employee, job *domain.Job, merged scheduler.MergedView) domain.AssignmentMessage {
	return domain.AssignmentMessage{
		RecipientID:    employee.ID,
		RecipientName:  employee.FullName,
		ContactAddress: strings.TrimSpace(employee.ContactAddress),
		JobName:        job.Name,
		JobAddress:     job.Address,
		Tasks:          strings.TrimSpace(merged.ScheduledTasks),
		Date:           date,
		Notes:          combineNotes(merged),
		Language:       employee.Language,
	}
}

func combineNotes(merged scheduler.MergedView) string {
	parts := []string{}
	if notes := strings.TrimSpace(merged.Notes); notes != "" {
		parts = append(parts, notes)
	}
	if materials := strings.TrimSpace(merged.MaterialsNeeded); materials != "" {
		parts = append(parts, "Materials: "+materials)
	}
	if pending := strings.TrimSpace(merged.TasksNotCompleted); pending != "" {
		parts = append(parts, "Pending: "+pending)
	}
	return strings.Join(parts, "\n")
}
