package page

// 通过chromedp驱动Chrome标签页：打开资料页、获取DOM快照，并提供点击图标、读取下拉框等页面交互原语

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/dszqbsm/pocextractor/proxy"
	"go.uber.org/zap"
)

var ErrIconNotFound = errors.New("email icon not found")

type options struct {
	logger          *zap.Logger
	headless        bool
	execPath        string
	userAgent       string
	userDataDir     string
	proxy           proxy.ProxyFunc
	navigateTimeout time.Duration
	waitSelector    string
	waitTimeout     time.Duration
}

var defaultOptions = options{
	logger:          zap.NewNop(),
	headless:        true,
	navigateTimeout: 30 * time.Second,
	waitTimeout:     5 * time.Minute,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func WithHeadless(headless bool) Option {
	return func(opts *options) {
		opts.headless = headless
	}
}

// 指定Chrome可执行文件路径，为空时由chromedp自行查找
func WithExecPath(path string) Option {
	return func(opts *options) {
		opts.execPath = path
	}
}

func WithUserAgent(ua string) Option {
	return func(opts *options) {
		opts.userAgent = ua
	}
}

// 复用已登录的Chrome用户目录，目标站点都需要登录后才能看到联系人
func WithUserDataDir(dir string) Option {
	return func(opts *options) {
		opts.userDataDir = dir
	}
}

func WithProxy(p proxy.ProxyFunc) Option {
	return func(opts *options) {
		opts.proxy = p
	}
}

func WithNavigateTimeout(d time.Duration) Option {
	return func(opts *options) {
		opts.navigateTimeout = d
	}
}

// 打开页面后等待该选择器可见再开始提取，用于在非无头模式下手动登录
func WithWaitSelector(selector string, timeout time.Duration) Option {
	return func(opts *options) {
		opts.waitSelector = selector
		if timeout > 0 {
			opts.waitTimeout = timeout
		}
	}
}

// 一个Chrome实例
type Browser struct {
	options
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
}

/*
输入父上下文和配置选项，输出Browser实例和一个error

在默认启动参数基础上设置无头模式、UA、用户目录与代理，创建分配器和浏览器上下文；父上下文取消时浏览器随之退出
*/
func NewBrowser(parent context.Context, opts ...Option) (*Browser, error) {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}

	allocOpts, err := allocatorOptions(o)
	if err != nil {
		return nil, err
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(o.logger.Sugar().Debugf))

	return &Browser{
		options:     o,
		allocCancel: allocCancel,
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

func allocatorOptions(o options) ([]chromedp.ExecAllocatorOption, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", o.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if o.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(o.execPath))
	}
	if o.userAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(o.userAgent))
	}
	if o.userDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(o.userDataDir))
	}
	if o.proxy != nil {
		u, err := o.proxy()
		if err != nil {
			return nil, fmt.Errorf("select proxy failed:%w", err)
		}
		allocOpts = append(allocOpts, chromedp.ProxyServer(u.String()))
	}
	return allocOpts, nil
}

/*
输入上下文和资料页URL，输出Live页面和一个error

在导航超时内打开页面并等待body就绪；若配置了等待选择器，再等待其可见（可用于人工登录）
*/
func (b *Browser) Open(ctx context.Context, url string) (*Live, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	navCtx, cancel := context.WithTimeout(b.ctx, b.navigateTimeout)
	defer cancel()

	b.logger.Info("navigate", zap.String("url", url))
	if err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("navigate %s failed:%w", url, err)
	}

	if b.waitSelector != "" {
		waitCtx, cancel := context.WithTimeout(b.ctx, b.waitTimeout)
		defer cancel()
		b.logger.Info("waiting for selector", zap.String("selector", b.waitSelector))
		if err := chromedp.Run(waitCtx, chromedp.WaitVisible(b.waitSelector, chromedp.ByQuery)); err != nil {
			return nil, fmt.Errorf("wait for %q failed:%w", b.waitSelector, err)
		}
	}
	return &Live{ctx: b.ctx, logger: b.logger}, nil
}

// 关闭标签页和Chrome进程
func (b *Browser) Close() error {
	b.cancel()
	b.allocCancel()
	return nil
}

// 页面端执行的脚本，选择器与Static保持一致
const (
	hideDropdownsJS = `document.querySelectorAll('.listDropdown__wrapper').forEach(d => {
	if (d.style.display !== 'none') { d.style.display = 'none'; }
}); true`

	activateJS = `(() => {
	const el = document.querySelectorAll('span.fa-envelope')[%d];
	if (!el) { return false; }
	el.click();
	return true;
})()`

	dropdownEmailJS = `(() => {
	const dd = document.querySelector('.listDropdown__wrapper:not([style*="display: none"])');
	if (!dd) { return {open: false, email: ''}; }
	const a = dd.querySelector('a[href^="mailto:"]');
	return {open: true, email: a ? a.textContent.trim() : ''};
})()`

	visibleMailtoJS = `(() => {
	for (const a of document.querySelectorAll('a[href^="mailto:"]:not([style*="display: none"])')) {
		const r = a.getBoundingClientRect();
		if (r.width > 0 && r.height > 0) { return a.textContent.trim(); }
	}
	return '';
})()`

	dismissJS = `document.body.click(); true`

	dropdownOpenJS = `!!document.querySelector('.listDropdown__wrapper:not([style*="display: none"])')`
)

// 已打开的资料页
type Live struct {
	ctx    context.Context
	logger *zap.Logger
}

func (l *Live) eval(ctx context.Context, js string, res interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(l.ctx, chromedp.Evaluate(js, res))
}

// 读取当前DOM的完整HTML并解析，提取逻辑都在这份快照上进行
func (l *Live) Snapshot(ctx context.Context) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var html string
	if err := chromedp.Run(l.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("snapshot failed:%w", err)
	}
	return Load(strings.NewReader(html))
}

func (l *Live) HideDropdowns(ctx context.Context) error {
	var ok bool
	return l.eval(ctx, hideDropdownsJS, &ok)
}

func (l *Live) Activate(ctx context.Context, icon int) error {
	var ok bool
	if err := l.eval(ctx, fmt.Sprintf(activateJS, icon), &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w:%d", ErrIconNotFound, icon)
	}
	return nil
}

func (l *Live) DropdownEmail(ctx context.Context) (string, bool, error) {
	var res struct {
		Open  bool   `json:"open"`
		Email string `json:"email"`
	}
	if err := l.eval(ctx, dropdownEmailJS, &res); err != nil {
		return "", false, err
	}
	return res.Email, res.Open, nil
}

func (l *Live) VisibleMailto(ctx context.Context) (string, error) {
	var email string
	err := l.eval(ctx, visibleMailtoJS, &email)
	return email, err
}

func (l *Live) Dismiss(ctx context.Context) error {
	var ok bool
	return l.eval(ctx, dismissJS, &ok)
}

func (l *Live) DropdownOpen(ctx context.Context) (bool, error) {
	var open bool
	err := l.eval(ctx, dropdownOpenJS, &open)
	return open, err
}
