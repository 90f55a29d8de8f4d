package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/crewboard/daily-schedule/backend/internal/dispatch"
	"github.com/crewboard/daily-schedule/backend/internal/domain"
	"github.com/crewboard/daily-schedule/backend/internal/scheduler"
	"github.com/crewboard/daily-schedule/backend/internal/utils"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	date := r.Context().Value(DateCtx).(string)
	board, loadErr := h.loadBoard(r, date)

	h.successResponse(w, r, "获取排班成功", newBoardView(board, r.URL.Query().Get("q"), loadErr))
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	date := r.Context().Value(DateCtx).(string)
	board, _ := h.loadBoard(r, date)

	h.successResponse(w, r, "获取排班概览成功", scheduler.Summarize(date, board.Rows()))
}

func (h *Handler) GetPendingExceptions(w http.ResponseWriter, r *http.Request) {
	date := r.Context().Value(DateCtx).(string)
	board, _ := h.loadBoard(r, date)

	h.successResponse(w, r, "获取待处理异常成功", board.PendingExceptions())
}

// GetAvailableEmployees 返回还可以分配的员工，带上 rowID 时该行当前的员工也算可选
func (h *Handler) GetAvailableEmployees(w http.ResponseWriter, r *http.Request) {
	date := r.Context().Value(DateCtx).(string)
	board, _ := h.loadBoard(r, date)

	index := -1
	if rowID := r.URL.Query().Get("rowID"); rowID != "" {
		i, err := board.IndexOf(rowID)
		if err != nil {
			h.boardError(w, r, err)
			return
		}
		index = i
	}

	employees, err := h.store.GetAllEmployees()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取可分配员工成功", scheduler.AvailableEmployees(board.Rows(), employees, index))
}

func (h *Handler) AddRow(w http.ResponseWriter, r *http.Request) {
	h.mutateBoard(w, r, "添加行成功", func(board *scheduler.Board) error {
		board.AddRow()
		return nil
	})
}

func (h *Handler) RemoveRow(w http.ResponseWriter, r *http.Request) {
	h.mutateBoard(w, r, "删除行成功", func(board *scheduler.Board) error {
		index, err := board.IndexOf(chi.URLParam(r, "rowID"))
		if err != nil {
			return err
		}
		return board.RemoveRow(index)
	})
}

func (h *Handler) InsertSeparators(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int  `json:"count" validate:"lte=50"` // 小于等于 0 时不插入
		Above bool `json:"above"`                   // 插入到该行之前
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	h.mutateBoard(w, r, "插入空行成功", func(board *scheduler.Board) error {
		index, err := board.IndexOf(chi.URLParam(r, "rowID"))
		if err != nil {
			return err
		}
		if req.Above {
			index--
		}
		return board.InsertSeparators(index, req.Count)
	})
}

// UpdateRow 修改一行：employeeID / jobID 为 0 表示清空；field 和 value 一起出现时编辑文本字段
func (h *Handler) UpdateRow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID *int64  `json:"employeeID" validate:"omitempty,gte=0"`
		JobID      *int64  `json:"jobID" validate:"omitempty,gte=0"`
		Field      *string `json:"field" validate:"omitempty,oneof=costCode hoursWorked scheduledTasks addedTasks notes tasksNotCompleted materialsNeeded"`
		Value      *string `json:"value" validate:"required_with=Field"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	h.mutateBoard(w, r, "修改成功", func(board *scheduler.Board) error {
		index, err := board.IndexOf(chi.URLParam(r, "rowID"))
		if err != nil {
			return err
		}

		if req.EmployeeID != nil {
			employee, err := h.lookupEmployee(*req.EmployeeID)
			if err != nil {
				return err
			}
			if err := board.AssignEmployee(index, employee); err != nil {
				return err
			}
		}

		if req.JobID != nil {
			job, err := h.lookupJob(*req.JobID)
			if err != nil {
				return err
			}
			if err := board.AssignJob(index, job); err != nil {
				return err
			}
		}

		if req.Field != nil {
			if err := board.SetField(index, scheduler.Field(*req.Field), *req.Value); err != nil {
				return err
			}
		}

		return nil
	})
}

func (h *Handler) UnmergeRow(w http.ResponseWriter, r *http.Request) {
	h.mutateBoard(w, r, "拆分成功", func(board *scheduler.Board) error {
		index, err := board.IndexOf(chi.URLParam(r, "rowID"))
		if err != nil {
			return err
		}
		return board.Unmerge(index)
	})
}

func (h *Handler) MergeRow(w http.ResponseWriter, r *http.Request) {
	h.mutateBoard(w, r, "合并成功", func(board *scheduler.Board) error {
		index, err := board.IndexOf(chi.URLParam(r, "rowID"))
		if err != nil {
			return err
		}
		return board.Merge(index)
	})
}

func (h *Handler) AcknowledgeException(w http.ResponseWriter, r *http.Request) {
	h.mutateBoard(w, r, "已确认异常", func(board *scheduler.Board) error {
		index, err := board.IndexOf(chi.URLParam(r, "rowID"))
		if err != nil {
			return err
		}
		return board.Acknowledge(index)
	})
}

func (h *Handler) ClearException(w http.ResponseWriter, r *http.Request) {
	h.mutateBoard(w, r, "已清除异常", func(board *scheduler.Board) error {
		index, err := board.IndexOf(chi.URLParam(r, "rowID"))
		if err != nil {
			return err
		}
		return board.ClearException(index)
	})
}

// SaveSchedule 只保存有效行，保存成功后草稿中的本地 ID 替换为数据库 ID
func (h *Handler) SaveSchedule(w http.ResponseWriter, r *http.Request) {
	h.mutateBoard(w, r, "保存成功", func(board *scheduler.Board) error {
		rows := scheduler.PrepareSave(board.Rows())
		if len(rows) == 0 {
			return scheduler.ErrNoValidRows
		}

		ids, err := h.store.SaveAssignments(board.Date(), rows)
		if err != nil {
			return err
		}

		board.ApplySavedIDs(ids)
		return nil
	})
}

// DuplicateSchedule 把当前排班的计划部分复制到目标日期并直接保存，返回目标日期的排班表
func (h *Handler) DuplicateSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TargetDate string `json:"targetDate" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date := r.Context().Value(DateCtx).(string)
	target, err := utils.ParseScheduleDate(req.TargetDate, h.now())
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if err := utils.ValidateCopyDates(date, target); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	// 当前日期的锁已经持有，目标日期只尝试一次，避免两个方向的复制互相等待
	mu := h.dateLock(target)
	if !mu.TryLock() {
		h.errorResponse(w, r, "目标日期正在被编辑，请稍后再试")
		return
	}
	defer mu.Unlock()

	source, _ := h.loadBoard(r, date)
	rows, err := h.store.CopyAssignments(date, target, source.Rows())
	if err != nil {
		h.boardError(w, r, err)
		return
	}

	// 目标日期旧的草稿已经没有意义
	if err := h.drafts.Delete(r.Context(), target); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	board := scheduler.NewBoard(target, scheduler.WithMinRows(h.config.Schedule.MinRows))
	board.Load(rows)

	h.successResponse(w, r, fmt.Sprintf("已复制 %d 行到 %s", len(rows), target), newBoardView(board, "", ""))
}

// DispatchSchedule 逐行发送排班通知，单行失败不会中断整批发送
func (h *Handler) DispatchSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RowIDs []string `json:"rowIDs" validate:"omitempty,dive,required"`
	}

	if r.ContentLength != 0 {
		if err := h.readJSON(r, &req); err != nil {
			h.badRequest(w, r, err)
			return
		}
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date := r.Context().Value(DateCtx).(string)
	board, _ := h.loadBoard(r, date)
	h.extendWriteDeadline(w, board.Rows())

	report, err := h.dispatcher.Dispatch(r.Context(), dispatch.Request{
		Date:   date,
		Rows:   board.Rows(),
		RowIDs: req.RowIDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrNoValidRows):
			h.errorResponse(w, r, "没有可以发送通知的行")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	msg := fmt.Sprintf("已发送 %d 条通知", report.Succeeded)
	if report.Failed > 0 {
		msg = report.FailureSummary()
	}

	h.successResponse(w, r, msg, report)
}

func (h *Handler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	date := r.Context().Value(DateCtx).(string)
	if err := h.drafts.Delete(r.Context(), date); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	board, loadErr := h.loadBoard(r, date)
	h.successResponse(w, r, "已放弃未保存的修改", newBoardView(board, "", loadErr))
}

// extendWriteDeadline 逐行同步发送可能超过服务器的写超时，按可发送的行数延长本次请求的写超时
func (h *Handler) extendWriteDeadline(w http.ResponseWriter, rows []domain.AssignmentRow) time.Duration {
	candidates := 0
	for i := range rows {
		if rows[i].IsValid() {
			candidates++
		}
	}

	budget := time.Duration(h.config.Server.WriteTimeout)*time.Second + time.Duration(candidates)*h.config.SendTimeout()
	if err := http.NewResponseController(w).SetWriteDeadline(time.Now().Add(budget)); err != nil {
		slog.Debug("无法延长写超时", "error", err)
	}
	return budget
}
