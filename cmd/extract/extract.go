package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dszqbsm/pocextractor/extract"
	"github.com/dszqbsm/pocextractor/limiter"
	"github.com/dszqbsm/pocextractor/log"
	"github.com/dszqbsm/pocextractor/page"
	"github.com/dszqbsm/pocextractor/poc"
	"github.com/dszqbsm/pocextractor/proxy"
	"github.com/dszqbsm/pocextractor/render"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var configPath string

// 提取失败信息已输出到stderr，调用方无需再次打印
var ErrReported = errors.New("failure already reported")

var ExtractCmd = &cobra.Command{
	Use:   "extract",
	Short: "extract POC records from a company profile page.",
	Long: `extract POC records (role, name, email) from a Traxcn or Apollo company profile.

The page is either opened in Chrome (--url) or read from a saved HTML snapshot (--file).
Results are printed as a table and exported to poc-data-<platform>-<date>.csv.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(configPath)
		if err != nil {
			return err
		}
		applyFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return Run(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// 仅被显式设置的命令行参数才覆盖配置文件
var flagValues = DefaultConfig()

func init() {
	f := ExtractCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "YAML config file")
	f.StringVarP(&flagValues.Platform, "platform", "p", flagValues.Platform, "target platform: traxcn or apollo")
	f.StringVar(&flagValues.URL, "url", "", "profile page URL to open in Chrome")
	f.StringVar(&flagValues.File, "file", "", "saved HTML snapshot of the profile page")
	f.StringVar(&flagValues.LogLevel, "log-level", flagValues.LogLevel, "log level")
	f.StringVar(&flagValues.LogFile, "log-file", "", "also write logs to this rotating file")
	f.BoolVar(&flagValues.Browser.Headless, "headless", flagValues.Browser.Headless, "run Chrome headless")
	f.StringVar(&flagValues.Browser.ExecPath, "chrome", "", "Chrome executable path")
	f.StringVar(&flagValues.Browser.UserDataDir, "user-data-dir", "", "Chrome profile directory with an existing login")
	f.StringSliceVar(&flagValues.Browser.Proxies, "proxy", nil, "proxy server URLs, picked round-robin")
	f.StringVar(&flagValues.Browser.WaitSelector, "wait-selector", "", "CSS selector to wait for before extracting")
	f.DurationVar(&flagValues.Reveal.Timeout, "reveal-timeout", flagValues.Reveal.Timeout, "max wait for an email dropdown to appear")
	f.DurationVar(&flagValues.Reveal.DismissTimeout, "dismiss-timeout", flagValues.Reveal.DismissTimeout, "max wait for an email dropdown to close")
	f.BoolVar(&flagValues.Reveal.Fallback, "fallback", flagValues.Reveal.Fallback, "scan visible mailto links when no dropdown appears")
	f.Float64Var(&flagValues.Reveal.PerSecond, "clicks-per-second", 0, "limit email icon clicks per second (0 = unlimited)")
	f.IntVar(&flagValues.Reveal.PerMinute, "clicks-per-minute", 0, "email icon click budget per minute (0 = unlimited)")
	f.StringVarP(&flagValues.Output.Dir, "out", "o", flagValues.Output.Dir, "directory for the CSV export")
	f.BoolVar(&flagValues.Output.CSV, "csv", flagValues.Output.CSV, "export CSV")
	f.BoolVar(&flagValues.Output.Table, "table", flagValues.Output.Table, "print result table")
}

func applyFlags(cmd *cobra.Command, cfg *Config) {
	changed := cmd.Flags().Changed
	set := func(name string, apply func()) {
		if changed(name) {
			apply()
		}
	}
	set("platform", func() { cfg.Platform = flagValues.Platform })
	set("url", func() { cfg.URL = flagValues.URL })
	set("file", func() { cfg.File = flagValues.File })
	set("log-level", func() { cfg.LogLevel = flagValues.LogLevel })
	set("log-file", func() { cfg.LogFile = flagValues.LogFile })
	set("headless", func() { cfg.Browser.Headless = flagValues.Browser.Headless })
	set("chrome", func() { cfg.Browser.ExecPath = flagValues.Browser.ExecPath })
	set("user-data-dir", func() { cfg.Browser.UserDataDir = flagValues.Browser.UserDataDir })
	set("proxy", func() { cfg.Browser.Proxies = flagValues.Browser.Proxies })
	set("wait-selector", func() { cfg.Browser.WaitSelector = flagValues.Browser.WaitSelector })
	set("reveal-timeout", func() { cfg.Reveal.Timeout = flagValues.Reveal.Timeout })
	set("dismiss-timeout", func() { cfg.Reveal.DismissTimeout = flagValues.Reveal.DismissTimeout })
	set("fallback", func() { cfg.Reveal.Fallback = flagValues.Reveal.Fallback })
	set("clicks-per-second", func() { cfg.Reveal.PerSecond = flagValues.Reveal.PerSecond })
	set("clicks-per-minute", func() { cfg.Reveal.PerMinute = flagValues.Reveal.PerMinute })
	set("out", func() { cfg.Output.Dir = flagValues.Output.Dir })
	set("csv", func() { cfg.Output.CSV = flagValues.Output.CSV })
	set("table", func() { cfg.Output.Table = flagValues.Output.Table })
}

/*
输入上下文、已校验的配置和输出目标，输出一个error

初始化日志，按配置打开页面（Chrome或离线快照），组装渲染端后执行一次提取；失败时向stderr输出一条面向用户的错误信息
*/
func Run(ctx context.Context, cfg Config, stdout, stderr io.Writer) (err error) {
	logger, closer, err := log.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("init logger failed:%w", err)
	}
	defer func() {
		_ = logger.Sync()
		err = multierr.Append(err, closer.Close())
	}()
	restore := zap.ReplaceGlobals(logger)
	defer restore()

	platform, err := poc.ParsePlatform(cfg.Platform)
	if err != nil {
		return err
	}

	p, cleanup, err := openPage(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(stderr, extract.FailureMessage(platform, err))
		return fmt.Errorf("%w:%w", ErrReported, err)
	}
	defer func() {
		err = multierr.Append(err, cleanup())
	}()

	var renderers []extract.Renderer
	if cfg.Output.Table {
		renderers = append(renderers, render.NewTable(stdout))
	}
	if cfg.Output.CSV {
		renderers = append(renderers, render.NewCSVFile(cfg.Output.Dir, render.WithLogger(logger.Named("csv"))))
	}

	e := extract.New(
		extract.WithLogger(logger.Named("extract")),
		extract.WithRevealConfig(extract.RevealConfig{
			Timeout:        cfg.Reveal.Timeout,
			DismissTimeout: cfg.Reveal.DismissTimeout,
			PollInterval:   cfg.Reveal.PollInterval,
			Fallback:       cfg.Reveal.Fallback,
			Limiter:        limiter.NewBudget(cfg.Reveal.PerSecond, cfg.Reveal.PerMinute),
		}),
		extract.WithRenderers(renderers...),
	)

	if _, _, err := e.Extract(ctx, platform, p); err != nil {
		fmt.Fprintln(stderr, extract.FailureMessage(platform, err))
		return fmt.Errorf("%w:%w", ErrReported, err)
	}
	return nil
}

func openPage(ctx context.Context, cfg Config, logger *zap.Logger) (extract.Page, func() error, error) {
	if cfg.File != "" {
		s, err := page.OpenFile(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	}

	opts := []page.Option{
		page.WithLogger(logger.Named("browser")),
		page.WithHeadless(cfg.Browser.Headless),
		page.WithExecPath(cfg.Browser.ExecPath),
		page.WithUserAgent(cfg.Browser.UserAgent),
		page.WithUserDataDir(cfg.Browser.UserDataDir),
		page.WithNavigateTimeout(cfg.Browser.NavigateTimeout),
		page.WithWaitSelector(cfg.Browser.WaitSelector, cfg.Browser.WaitTimeout),
	}
	if len(cfg.Browser.Proxies) > 0 {
		p, err := proxy.RoundRobinProxySwitcher(cfg.Browser.Proxies...)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, page.WithProxy(p))
	}

	b, err := page.NewBrowser(ctx, opts...)
	if err != nil {
		return nil, nil, err
	}
	live, err := b.Open(ctx, cfg.URL)
	if err != nil {
		return nil, nil, multierr.Append(err, b.Close())
	}
	return live, b.Close, nil
}
