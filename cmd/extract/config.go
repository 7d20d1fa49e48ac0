package extract

// 配置加载：默认值 → YAML配置文件 → 命令行参数，后者覆盖前者

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dszqbsm/pocextractor/poc"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel string        `yaml:"logLevel"`
	LogFile  string        `yaml:"logFile"`
	Platform string        `yaml:"platform"`
	URL      string        `yaml:"url"`
	File     string        `yaml:"file"`
	Browser  BrowserConfig `yaml:"browser"`
	Reveal   RevealConfig  `yaml:"reveal"`
	Output   OutputConfig  `yaml:"output"`
}

type BrowserConfig struct {
	Headless        bool          `yaml:"headless"`
	ExecPath        string        `yaml:"execPath"`
	UserAgent       string        `yaml:"userAgent"`
	UserDataDir     string        `yaml:"userDataDir"`
	Proxies         []string      `yaml:"proxies"`
	NavigateTimeout time.Duration `yaml:"navigateTimeout"`
	WaitSelector    string        `yaml:"waitSelector"`
	WaitTimeout     time.Duration `yaml:"waitTimeout"`
}

type RevealConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	DismissTimeout time.Duration `yaml:"dismissTimeout"`
	PollInterval   time.Duration `yaml:"pollInterval"`
	Fallback       bool          `yaml:"fallback"`
	PerSecond      float64       `yaml:"perSecond"` // 每秒最多点击几个邮箱图标，0为不限
	PerMinute      int           `yaml:"perMinute"` // 每分钟点击预算，0为不限
}

type OutputConfig struct {
	Dir   string `yaml:"dir"`
	CSV   bool   `yaml:"csv"`
	Table bool   `yaml:"table"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "INFO",
		Platform: string(poc.Traxcn),
		Browser: BrowserConfig{
			Headless:        true,
			NavigateTimeout: 30 * time.Second,
			WaitTimeout:     5 * time.Minute,
		},
		Reveal: RevealConfig{
			Timeout:        500 * time.Millisecond,
			DismissTimeout: 200 * time.Millisecond,
			PollInterval:   50 * time.Millisecond,
			Fallback:       true,
		},
		Output: OutputConfig{
			Dir:   ".",
			CSV:   true,
			Table: true,
		},
	}
}

/*
输入配置文件路径，输出配置和一个error

在默认配置之上解析YAML文件，文件中未出现的字段保留默认值；path为空时直接返回默认配置
*/
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config failed:%w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s failed:%w", path, err)
	}
	return cfg, nil
}

// 检查来源、平台与各项超时
func (c Config) Validate() error {
	if _, err := poc.ParsePlatform(c.Platform); err != nil {
		return err
	}
	if (c.URL == "") == (c.File == "") {
		return errors.New("exactly one of url or file must be set")
	}
	if c.Reveal.Timeout <= 0 || c.Reveal.DismissTimeout <= 0 || c.Reveal.PollInterval <= 0 {
		return errors.New("reveal timeouts and poll interval must be positive")
	}
	if c.Reveal.PerSecond < 0 || c.Reveal.PerMinute < 0 {
		return errors.New("reveal click limits must not be negative")
	}
	if c.URL != "" && c.Browser.NavigateTimeout <= 0 {
		return errors.New("browser navigate timeout must be positive")
	}
	if !c.Output.CSV && !c.Output.Table {
		return errors.New("at least one of csv or table output must be enabled")
	}
	return nil
}
