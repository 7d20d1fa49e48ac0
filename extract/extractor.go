package extract

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/dszqbsm/pocextractor/poc"
	"go.uber.org/zap"
)

// 提取所需的页面：可以获取DOM快照，也可以执行邮箱下拉框的交互
type Page interface {
	Snapshot(ctx context.Context) (*goquery.Document, error)
	Surface
}

// 接收最终结果的渲染端（表格显示、CSV导出等）
type Renderer interface {
	Render(res poc.Result) error
}

type options struct {
	logger     *zap.Logger
	reveal     RevealConfig
	renderers  []Renderer
	strategies *strategyStore
}

var defaultOptions = options{
	logger:     zap.NewNop(),
	reveal:     DefaultRevealConfig(),
	strategies: Strategies,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func WithRevealConfig(cfg RevealConfig) Option {
	return func(opts *options) {
		opts.reveal = cfg
	}
}

func WithRenderers(rs ...Renderer) Option {
	return func(opts *options) {
		opts.renderers = append(opts.renderers, rs...)
	}
}

func withStrategies(s *strategyStore) Option {
	return func(opts *options) {
		opts.strategies = s
	}
}

type Extractor struct {
	options
}

func New(opts ...Option) *Extractor {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Extractor{options: o}
}

/*
输入上下文、平台和页面，输出提取结果、本次运行和一个error

按平台选择策略，获取快照后执行提取，拼接结果并交给所有渲染端。任何错误或panic都使运行进入Failed，
已累积的记录全部丢弃，返回包装了ErrRunFailed的错误，不做重试
*/
func (e *Extractor) Extract(ctx context.Context, platform poc.Platform, page Page) (res poc.Result, run *Run, err error) {
	strategy, err := e.strategies.Get(platform)
	if err != nil {
		return poc.Result{}, nil, err
	}

	run = newRun(platform, e.logger)
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w:panic: %v", ErrRunFailed, p)
		}
		if err != nil {
			run.fail(err)
			res = poc.Result{}
		}
	}()

	run.logger.Info("extraction started")
	run.transition(Locating)
	doc, err := page.Snapshot(ctx)
	if err != nil {
		return poc.Result{}, run, fmt.Errorf("%w:snapshot:%w", ErrRunFailed, err)
	}

	rev := NewRevealer(page, e.reveal, run.logger)
	if err := strategy.Extract(ctx, run, doc, rev); err != nil {
		return poc.Result{}, run, fmt.Errorf("%w:%w", ErrRunFailed, err)
	}

	res = poc.Result{
		RunID:    run.ID,
		Platform: platform,
		Records:  run.assemble(),
	}
	for _, r := range e.renderers {
		if err := r.Render(res); err != nil {
			return poc.Result{}, run, fmt.Errorf("%w:render:%w", ErrRunFailed, err)
		}
	}

	run.transition(Done)
	run.logger.Info("extraction finished", zap.Int("records", len(res.Records)))
	return res, run, nil
}

// 面向用户的单条错误提示
func FailureMessage(platform poc.Platform, err error) string {
	return fmt.Sprintf("An error occurred during %s extraction: %v", platform.Label(), err)
}
