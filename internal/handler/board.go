package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/crewboard/daily-schedule/backend/internal/domain"
	"github.com/crewboard/daily-schedule/backend/internal/scheduler"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	errEmployeeNotFound = errors.New("员工不存在")
	errJobNotFound      = errors.New("工地不存在")
)

type groupView struct {
	Indices      []int                `json:"indices"`
	RowIDs       []string             `json:"rowIDs"`
	JobID        *int64               `json:"jobID"`
	Rowspan      int                  `json:"rowspan"`
	Merged       scheduler.MergedView `json:"merged"`
	HasDeviation bool                 `json:"hasDeviation"`
	Acknowledged bool                 `json:"acknowledged"`
}

type boardView struct {
	Date              string                 `json:"date"`
	Rows              []domain.AssignmentRow `json:"rows"`
	Visible           []int                  `json:"visible"`
	Groups            []groupView            `json:"groups"`
	PendingExceptions int                    `json:"pendingExceptions"`
	LoadError         string                 `json:"loadError,omitempty"`
}

// newBoardView 按过滤文本生成视图，分组只在可见的行之间计算
func newBoardView(board *scheduler.Board, query string, loadErr string) *boardView {
	rows := board.Rows()
	visible := scheduler.Filter(rows, query)
	statuses := scheduler.EvaluateExceptions(rows, scheduler.GroupVisible(rows, visible))

	view := &boardView{
		Date:              board.Date(),
		Rows:              rows,
		Visible:           visible,
		Groups:            make([]groupView, 0, len(statuses)),
		PendingExceptions: len(board.PendingExceptions()),
		LoadError:         loadErr,
	}

	for _, s := range statuses {
		rowIDs := make([]string, 0, len(s.Group.Indices))
		for _, i := range s.Group.Indices {
			rowIDs = append(rowIDs, rows[i].ID)
		}
		view.Groups = append(view.Groups, groupView{
			Indices:      s.Group.Indices,
			RowIDs:       rowIDs,
			JobID:        s.Group.JobID,
			Rowspan:      s.Group.Rowspan(),
			Merged:       s.Group.Merged,
			HasDeviation: s.HasDeviation,
			Acknowledged: s.Acknowledged,
		})
	}

	return view
}

// loadBoard 优先使用 Redis 中的草稿，没有草稿时从数据库加载。
// 数据库加载失败时仍然返回补齐后的空白排班表，loadErr 说明原因，并随草稿一起保存
func (h *Handler) loadBoard(r *http.Request, date string) (board *scheduler.Board, loadErr string) {
	board = scheduler.NewBoard(date, scheduler.WithMinRows(h.config.Schedule.MinRows))

	draft, ok, err := h.drafts.Get(r.Context(), date)
	if err != nil {
		slog.Warn("读取排班草稿失败，改为从数据库加载", "date", date, "error", err)
	}
	if ok {
		board.Load(draft.Rows)
		return board, draft.LoadError
	}

	rows, err := h.store.GetScheduleForDate(date)
	if err != nil {
		slog.Error("加载排班失败", "date", date, "error", err)
		loadErr = "加载排班失败，已显示空白排班表"

		// 空白表也存为草稿，后续编辑的行 ID 才能对得上；失败标记一直保留到保存或放弃草稿
		blank := domain.ScheduleDraft{Rows: board.Rows(), LoadError: loadErr}
		if err := h.drafts.Put(r.Context(), date, blank); err != nil {
			slog.Warn("保存空白排班草稿失败", "date", date, "error", err)
		}
		return board, loadErr
	}

	board.Load(rows)
	return board, ""
}

// mutateBoard 加载当天的排班表，执行 fn，并把变更后的行写回草稿
func (h *Handler) mutateBoard(w http.ResponseWriter, r *http.Request, msg string, fn func(board *scheduler.Board) error) {
	date := r.Context().Value(DateCtx).(string)
	board, loadErr := h.loadBoard(r, date)

	var last *scheduler.Change
	unsubscribe := board.Subscribe(func(c scheduler.Change) {
		last = &c
	})
	defer unsubscribe()

	if err := fn(board); err != nil {
		h.boardError(w, r, err)
		return
	}

	if last != nil {
		// 加载失败的标记跟着草稿走，保存成功后才清除
		if last.Op == scheduler.OpSaved {
			loadErr = ""
		}
		draft := domain.ScheduleDraft{Rows: last.Rows, LoadError: loadErr}
		if err := h.drafts.Put(r.Context(), date, draft); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	h.successResponse(w, r, msg, newBoardView(board, r.URL.Query().Get("q"), loadErr))
}

func (h *Handler) boardError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.ConstraintName {
		case "schedule_assignments_date_employee_key":
			h.errorResponse(w, r, "同一员工在当天被安排了多次")
		case "fk_schedule_assignments_employee_id":
			h.errorResponse(w, r, "员工不存在")
		case "fk_schedule_assignments_job_id":
			h.errorResponse(w, r, "工地不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	switch {
	case errors.Is(err, scheduler.ErrRowNotFound):
		h.errorResponse(w, r, "排班行不存在")
	case errors.Is(err, scheduler.ErrRowIndexOutOfRange):
		h.errorResponse(w, r, "行号超出范围")
	case errors.Is(err, scheduler.ErrEmployeeDoubleBooked):
		h.errorResponse(w, r, "该员工当天已有其他安排")
	case errors.Is(err, scheduler.ErrUnknownField):
		h.errorResponse(w, r, "字段无效")
	case errors.Is(err, scheduler.ErrNoValidRows):
		h.errorResponse(w, r, "没有同时分配了员工和工地的行")
	case errors.Is(err, errEmployeeNotFound), errors.Is(err, errJobNotFound):
		h.errorResponse(w, r, err.Error())
	default:
		h.internalServerError(w, r, err)
	}
}

// lookupEmployee id 为 0 时返回 nil，表示清空
func (h *Handler) lookupEmployee(id int64) (*domain.Employee, error) {
	if id == 0 {
		return nil, nil
	}
	employee, err := h.store.GetEmployeeByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errEmployeeNotFound
	}
	return employee, err
}

func (h *Handler) lookupJob(id int64) (*domain.Job, error) {
	if id == 0 {
		return nil, nil
	}
	job, err := h.store.GetJobByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errJobNotFound
	}
	return job, err
}
