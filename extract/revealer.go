package extract

// 邮箱下拉框的交互：点击信封图标展开下拉框，读取mailto链接，再点击空白处收起。
// 同一时刻页面上只能有一个下拉框展开，Revealer独占这份状态，所有展开操作串行执行

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dszqbsm/pocextractor/limiter"
	"go.uber.org/zap"
)

// 页面交互原语，由live页面（chromedp）或离线快照实现；icon为信封图标在全文档中的序号
type Surface interface {
	HideDropdowns(ctx context.Context) error
	Activate(ctx context.Context, icon int) error
	// 返回当前可见下拉框中第一个mailto链接的文本；open表示是否存在可见下拉框
	DropdownEmail(ctx context.Context) (email string, open bool, err error)
	// 兜底：页面上第一个有实际尺寸的mailto链接
	VisibleMailto(ctx context.Context) (string, error)
	Dismiss(ctx context.Context) error
	DropdownOpen(ctx context.Context) (bool, error)
}

type RevealConfig struct {
	Timeout        time.Duration       // 等待下拉框出现的上限
	DismissTimeout time.Duration       // 等待下拉框收起的上限
	PollInterval   time.Duration       // 轮询间隔
	Fallback       bool                // 下拉框未出现时扫描页面上可见的mailto链接
	Limiter        limiter.RateLimiter // 图标点击限速，nil表示不限速
}

func DefaultRevealConfig() RevealConfig {
	return RevealConfig{
		Timeout:        500 * time.Millisecond,
		DismissTimeout: 200 * time.Millisecond,
		PollInterval:   50 * time.Millisecond,
		Fallback:       true,
	}
}

type Revealer struct {
	mu      sync.Mutex
	surface Surface
	cfg     RevealConfig
	open    int // 由本Revealer展开的图标序号，-1表示没有
	logger  *zap.Logger
}

func NewRevealer(s Surface, cfg RevealConfig, logger *zap.Logger) *Revealer {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultRevealConfig().PollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Revealer{surface: s, cfg: cfg, open: -1, logger: logger}
}

// 当前由本Revealer展开的图标序号
func (r *Revealer) openIcon() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.open
}

/*
输入上下文、所属运行和图标序号，输出邮箱和一个error

依次执行：收起所有已展开的下拉框、点击图标、轮询直到下拉框可见（超过Timeout视为DropdownTimeout，邮箱为空，
按配置尝试兜底扫描）、读取邮箱、点击空白处收起、轮询直到下拉框消失（超过DismissTimeout只记录日志）。
DropdownTimeout不是错误，其它页面交互失败原样返回，由调用方终止本次运行
*/
func (r *Revealer) Reveal(ctx context.Context, run *Run, icon int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cfg.Limiter != nil {
		if err := r.cfg.Limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	run.transition(RevealingEmail)
	if err := r.surface.HideDropdowns(ctx); err != nil {
		return "", fmt.Errorf("hide dropdowns failed:%w", err)
	}
	r.open = -1

	if err := r.surface.Activate(ctx, icon); err != nil {
		return "", fmt.Errorf("activate icon %d failed:%w", icon, err)
	}
	r.open = icon
	r.logger.Debug("icon activated", zap.Int("open", r.open))

	run.transition(Waiting)
	email, err := r.awaitEmail(ctx)
	switch {
	case errors.Is(err, ErrDropdownTimeout):
		r.logger.Debug("dropdown timeout", zap.Int("icon", icon), zap.Duration("timeout", r.cfg.Timeout))
		if r.cfg.Fallback {
			if email, err = r.surface.VisibleMailto(ctx); err != nil {
				return "", fmt.Errorf("scan visible mailto failed:%w", err)
			}
		}
	case err != nil:
		return "", err
	}

	if err := r.dismiss(ctx); err != nil {
		return "", err
	}
	return email, nil
}

func (r *Revealer) awaitEmail(ctx context.Context) (string, error) {
	var email string
	err := pollUntil(ctx, r.cfg.Timeout, r.cfg.PollInterval, func(ctx context.Context) (bool, error) {
		e, open, err := r.surface.DropdownEmail(ctx)
		if err != nil {
			return false, fmt.Errorf("read dropdown failed:%w", err)
		}
		if open {
			email = e
		}
		return open, nil
	})
	return email, err
}

func (r *Revealer) dismiss(ctx context.Context) error {
	if err := r.surface.Dismiss(ctx); err != nil {
		return fmt.Errorf("dismiss dropdown failed:%w", err)
	}
	icon := r.open
	r.open = -1

	err := pollUntil(ctx, r.cfg.DismissTimeout, r.cfg.PollInterval, func(ctx context.Context) (bool, error) {
		open, err := r.surface.DropdownOpen(ctx)
		if err != nil {
			return false, fmt.Errorf("check dropdown failed:%w", err)
		}
		return !open, nil
	})
	if errors.Is(err, ErrDropdownTimeout) {
		r.logger.Warn("dropdown still open after dismiss", zap.Int("icon", icon))
		return nil
	}
	return err
}

/*
输入上下文、超时、轮询间隔和条件函数，输出一个error

先立即检查一次条件，之后按间隔轮询；条件满足返回nil，超时返回ErrDropdownTimeout，上下文取消返回上下文错误
*/
func pollUntil(ctx context.Context, timeout, interval time.Duration, cond func(context.Context) (bool, error)) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ok, err := cond(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return ErrDropdownTimeout
		case <-ticker.C:
		}
	}
}
