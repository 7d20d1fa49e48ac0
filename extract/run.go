package extract

// 一次提取运行（ExtractionRun）的生命周期：
// Idle → Locating → ExtractingRow(i) → [RevealingEmail → Waiting] → ExtractingRow(i+1) → … → Assembled → Done
// 任何未处理的错误都会进入Failed，已累积的记录随之丢弃

import (
	"errors"

	"github.com/dszqbsm/pocextractor/poc"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type State int

const (
	Idle State = iota
	Locating
	ExtractingRow
	RevealingEmail
	Waiting
	Assembled
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Locating:
		return "Locating"
	case ExtractingRow:
		return "ExtractingRow"
	case RevealingEmail:
		return "RevealingEmail"
	case Waiting:
		return "Waiting"
	case Assembled:
		return "Assembled"
	case Done:
		return "Done"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// 终止状态之后不再接受任何迁移
func (s State) Terminal() bool {
	return s == Done || s == Failed
}

var (
	ErrRunFailed       = errors.New("extraction run failed")
	ErrDropdownTimeout = errors.New("email dropdown did not settle in time")
)

// 单次提取运行，由Extractor在运行期间独占
type Run struct {
	ID       string
	Platform poc.Platform

	state    State
	row      int
	history  []State
	sections [][]poc.Record
	logger   *zap.Logger
}

func newRun(p poc.Platform, logger *zap.Logger) *Run {
	id := uuid.New().String()
	return &Run{
		ID:       id,
		Platform: p,
		state:    Idle,
		history:  []State{Idle},
		logger:   logger.With(zap.String("run", id), zap.String("platform", string(p))),
	}
}

func (r *Run) State() State {
	return r.state
}

// 经历过的全部状态，按时间顺序
func (r *Run) History() []State {
	return append([]State(nil), r.history...)
}

func (r *Run) transition(s State) {
	if r == nil || r.state.Terminal() {
		return
	}
	r.state = s
	r.history = append(r.history, s)
	r.logger.Debug("run state", zap.Stringer("state", s), zap.Int("row", r.row))
}

func (r *Run) enterRow(i int) {
	if r == nil {
		return
	}
	r.row = i
	r.transition(ExtractingRow)
}

// 追加一个分区（或平铺列表）的记录
func (r *Run) addSection(records []poc.Record) {
	r.sections = append(r.sections, records)
}

/*
无输入，输出按发现顺序拼接后的记录列表

依次拼接各分区的记录，分区顺序与记录在分区内的顺序都保持不变，然后进入Assembled状态
*/
func (r *Run) assemble() []poc.Record {
	records := Assemble(r.sections...)
	r.transition(Assembled)
	return records
}

func (r *Run) fail(err error) {
	r.sections = nil
	r.transition(Failed)
	r.logger.Error("run failed", zap.Error(err))
}

// 拼接多个记录序列，保持发现顺序；没有记录时返回非nil的空切片
func Assemble(sections ...[]poc.Record) []poc.Record {
	n := 0
	for _, s := range sections {
		n += len(s)
	}
	out := make([]poc.Record, 0, n)
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}
