package handler

import (
	"context"
	"sync"
	"time"

	"github.com/crewboard/daily-schedule/backend/internal/config"
	"github.com/crewboard/daily-schedule/backend/internal/dispatch"
	"github.com/crewboard/daily-schedule/backend/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/puzpuzpuz/xsync/v4"
)

// Store 排班和员工、工地目录的持久化，由 repository.Repository 实现
type Store interface {
	GetScheduleForDate(date string) ([]domain.AssignmentRow, error)
	SaveAssignments(date string, rows []domain.AssignmentRow) (map[string]string, error)
	CopyAssignments(sourceDate, targetDate string, rows []domain.AssignmentRow) ([]domain.AssignmentRow, error)
	GetEmployeeByID(id int64) (*domain.Employee, error)
	GetAllEmployees() ([]*domain.Employee, error)
	GetJobByID(id int64) (*domain.Job, error)
	GetAllJobs() ([]*domain.Job, error)
}

// DraftStore 保存尚未落库的工作副本，由 cache.DraftStore 实现
type DraftStore interface {
	Get(ctx context.Context, date string) (domain.ScheduleDraft, bool, error)
	Put(ctx context.Context, date string, draft domain.ScheduleDraft) error
	Delete(ctx context.Context, date string) error
}

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	store      Store
	drafts     DraftStore
	dispatcher *dispatch.Dispatcher
	translator ut.Translator

	// 同一天的排班同一时间只允许一个请求修改
	dateLocks *xsync.Map[string, *sync.Mutex]
	now       func() time.Time

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, store Store, drafts DraftStore, dispatcher *dispatch.Dispatcher) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		store:      store,
		drafts:     drafts,
		dispatcher: dispatcher,
		translator: trans,
		dateLocks:  xsync.NewMap[string, *sync.Mutex](),
		now:        time.Now,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Handle("/metrics", promhttp.Handler())

	h.Mux.Get("/employees", h.GetAllEmployees)
	h.Mux.Get("/jobs", h.GetAllJobs)

	h.Mux.Route("/schedules/{date}", func(r chi.Router) {
		r.Use(h.scheduleDate)
		r.Use(h.lockDate)

		r.Get("/", h.GetBoard)
		r.Get("/summary", h.GetSummary)
		r.Get("/available-employees", h.GetAvailableEmployees)
		r.Delete("/draft", h.DiscardDraft)

		r.Route("/rows", func(r chi.Router) {
			r.Post("/", h.AddRow)
			r.Route("/{rowID}", func(r chi.Router) {
				r.Patch("/", h.UpdateRow)
				r.Delete("/", h.RemoveRow)
				r.Post("/separators", h.InsertSeparators)
				r.Post("/unmerge", h.UnmergeRow)
				r.Post("/merge", h.MergeRow)
			})
		})

		r.Route("/exceptions", func(r chi.Router) {
			r.Get("/", h.GetPendingExceptions)
			r.Post("/{rowID}/acknowledge", h.AcknowledgeException)
			r.Post("/{rowID}/clear", h.ClearException)
		})

		r.Post("/save", h.SaveSchedule)
		r.Post("/duplicate", h.DuplicateSchedule)
		r.Post("/dispatch", h.DispatchSchedule)
	})
}
