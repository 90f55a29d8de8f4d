package scheduler

import (
	"sync/atomic"

	"github.com/crewboard/daily-schedule/backend/internal/domain"
	"github.com/puzpuzpuz/xsync/v4"
)

// Board 某一天的排班表（有序的行集合），负责维护结构上的不变量：
//   - 行数不少于 minRows
//   - 至少存在一行完全为空的行，方便随时开始新的分配
//
// Board 不是并发安全的，调用方需要保证同一时间只有一个协程在修改它
type Board struct {
	date    string
	rows    []domain.AssignmentRow
	minRows int
	newID   func() string

	subscribers      *xsync.Map[uint64, func(Change)]
	nextSubscriberID atomic.Uint64
}

type Option func(*Board)

func WithMinRows(n int) Option {
	return func(b *Board) {
		if n > 0 {
			b.minRows = n
		}
	}
}

// WithIDGenerator 替换本地 ID 的生成方式，主要用于测试
func WithIDGenerator(fn func() string) Option {
	return func(b *Board) {
		if fn != nil {
			b.newID = fn
		}
	}
}

func NewBoard(date string, opts ...Option) *Board {
	b := &Board{
		date:        date,
		minRows:     DefaultMinRows,
		newID:       NewLocalID,
		subscribers: xsync.NewMap[uint64, func(Change)](),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.ensureInvariants()
	return b
}

func (b *Board) Date() string {
	return b.date
}

func (b *Board) Len() int {
	return len(b.rows)
}

func (b *Board) MinRows() int {
	return b.minRows
}

// Rows 返回当前所有行的拷贝
func (b *Board) Rows() []domain.AssignmentRow {
	return cloneRows(b.rows)
}

func (b *Board) Row(index int) (domain.AssignmentRow, error) {
	if err := b.checkIndex(index); err != nil {
		return domain.AssignmentRow{}, err
	}
	return cloneRow(b.rows[index]), nil
}

func (b *Board) IndexOf(id string) (int, error) {
	for i := range b.rows {
		if b.rows[i].ID == id {
			return i, nil
		}
	}
	return -1, ErrRowNotFound
}

// Groups 每次读取都重新计算，分组从不单独保存
func (b *Board) Groups() []Group {
	return GroupRows(b.rows)
}

// Subscribe 注册一个回调，每次变更并恢复不变量之后同步调用；返回的函数用于取消订阅
func (b *Board) Subscribe(fn func(Change)) func() {
	id := b.nextSubscriberID.Add(1)
	b.subscribers.Store(id, fn)
	return func() {
		b.subscribers.Delete(id)
	}
}

// Load 用新的行替换整个工作集，再补齐到最少行数
func (b *Board) Load(rows []domain.AssignmentRow) {
	b.rows = make([]domain.AssignmentRow, 0, max(len(rows), b.minRows))
	for _, row := range rows {
		row = cloneRow(row)
		if row.ID == "" {
			row.ID = b.newID()
		}
		// 没有工地的行不存在 "被拆分" 的概念
		if row.JobID == nil {
			row.UnmergedFromJob = false
		}
		b.rows = append(b.rows, row)
	}
	b.commit(OpLoad)
}

func (b *Board) AddRow() {
	b.rows = append(b.rows, b.emptyRow())
	b.commit(OpAddRow)
}

// RemoveRow 删除一行，之后重新补齐
func (b *Board) RemoveRow(index int) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	b.rows = append(b.rows[:index], b.rows[index+1:]...)
	b.commit(OpRemoveRow)
	return nil
}

// InsertSeparators 在 afterIndex 之后插入 count 个空行，afterIndex 为 -1 时插入到最前面；
// count 不是正数时什么也不做
func (b *Board) InsertSeparators(afterIndex, count int) error {
	if count <= 0 {
		return nil
	}
	if afterIndex < -1 || afterIndex >= len(b.rows) {
		return ErrRowIndexOutOfRange
	}

	separators := make([]domain.AssignmentRow, count)
	for i := range separators {
		separators[i] = b.emptyRow()
	}

	at := afterIndex + 1
	rows := make([]domain.AssignmentRow, 0, len(b.rows)+count)
	rows = append(rows, b.rows[:at]...)
	rows = append(rows, separators...)
	rows = append(rows, b.rows[at:]...)
	b.rows = rows

	b.commit(OpSeparators)
	return nil
}

// ApplySavedIDs 保存成功后用数据库 ID 替换本地 ID
func (b *Board) ApplySavedIDs(ids map[string]string) {
	if len(ids) == 0 {
		return
	}
	for i := range b.rows {
		if saved, ok := ids[b.rows[i].ID]; ok {
			b.rows[i].ID = saved
		}
	}
	b.commit(OpSaved)
}

func (b *Board) emptyRow() domain.AssignmentRow {
	return domain.AssignmentRow{ID: b.newID()}
}

func (b *Board) checkIndex(index int) error {
	if index < 0 || index >= len(b.rows) {
		return ErrRowIndexOutOfRange
	}
	return nil
}

// ensureInvariants 只会追加空行，从不为了满足最少行数而删除行
func (b *Board) ensureInvariants() {
	for len(b.rows) < b.minRows {
		b.rows = append(b.rows, b.emptyRow())
	}
	if !b.hasEmptyRow() {
		b.rows = append(b.rows, b.emptyRow())
	}
}

func (b *Board) hasEmptyRow() bool {
	for i := range b.rows {
		if b.rows[i].IsEmpty() {
			return true
		}
	}
	return false
}

func (b *Board) commit(op Op) {
	b.ensureInvariants()

	b.subscribers.Range(func(_ uint64, fn func(Change)) bool {
		fn(Change{Date: b.date, Op: op, Rows: b.Rows()})
		return true
	})
}
