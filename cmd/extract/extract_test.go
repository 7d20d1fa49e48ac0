package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dszqbsm/pocextractor/poc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const profile = `<html><body>
<div class="section">
  <div class="txn--dp-subheader">Founders &amp; Key People</div>
  <div class="comp--gridtable__wrapper-v2">
    <div class="comp--gridtable__row">
      <div data-walk-through-id="fk-cell-name">1. Jane Doe <span class="fa fa-envelope"></span>
        <div class="listDropdown__wrapper"><a href="mailto:jane@acme.io">jane@acme.io</a></div>
      </div>
      <div data-walk-through-id="fk-cell-designation">CEO</div>
    </div>
  </div>
</div>
</body></html>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	path := writeFile(t, "pocx.yaml", `
platform: apollo
file: page.html
reveal:
  timeout: 2s
  perSecond: 4
  perMinute: 30
browser:
  proxies: ["http://127.0.0.1:8888"]
output:
  table: false
`)
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "apollo", cfg.Platform)
	assert.Equal(t, "page.html", cfg.File)
	assert.Equal(t, 2*time.Second, cfg.Reveal.Timeout)
	assert.Equal(t, 200*time.Millisecond, cfg.Reveal.DismissTimeout)
	assert.Equal(t, 4.0, cfg.Reveal.PerSecond)
	assert.Equal(t, 30, cfg.Reveal.PerMinute)
	assert.Equal(t, []string{"http://127.0.0.1:8888"}, cfg.Browser.Proxies)
	assert.False(t, cfg.Output.Table)
	assert.True(t, cfg.Output.CSV)
	assert.NoError(t, cfg.Validate())

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "bad.yaml", "reveal: [1, 2"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{name: "file source", modify: func(c *Config) { c.File = "page.html" }},
		{name: "url source", modify: func(c *Config) { c.URL = "https://example.com" }},
		{name: "no source", modify: func(c *Config) {}, wantErr: true},
		{
			name:    "both sources",
			modify:  func(c *Config) { c.File = "page.html"; c.URL = "https://example.com" },
			wantErr: true,
		},
		{
			name:    "unknown platform",
			modify:  func(c *Config) { c.File = "page.html"; c.Platform = "linkedin" },
			wantErr: true,
		},
		{
			name:    "zero reveal timeout",
			modify:  func(c *Config) { c.File = "page.html"; c.Reveal.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "negative click budget",
			modify:  func(c *Config) { c.File = "page.html"; c.Reveal.PerMinute = -1 },
			wantErr: true,
		},
		{
			name:    "zero navigate timeout",
			modify:  func(c *Config) { c.URL = "https://example.com"; c.Browser.NavigateTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "no output",
			modify:  func(c *Config) { c.File = "page.html"; c.Output.CSV = false; c.Output.Table = false },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunStaticSnapshot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "error"
	cfg.File = writeFile(t, "page.html", profile)
	cfg.Output.Dir = t.TempDir()

	var stdout, stderr bytes.Buffer
	require.NoError(t, Run(context.Background(), cfg, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "jane@acme.io")
	assert.Contains(t, stdout.String(), "1 contacts extracted from Traxcn profile")
	assert.Empty(t, stderr.String())

	path := filepath.Join(cfg.Output.Dir, poc.CSVFileName(poc.Traxcn, time.Now()))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"POC Role", "POC Name", "POC Email"},
		{"CEO", "Jane Doe", "jane@acme.io"},
	}, rows)
}

func TestRunFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "error"
	cfg.Platform = "apollo"
	cfg.File = filepath.Join(t.TempDir(), "missing.html")

	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), cfg, &stdout, &stderr)
	assert.ErrorIs(t, err, ErrReported)
	assert.Contains(t, stderr.String(), "An error occurred during Apollo extraction:")
	assert.Empty(t, stdout.String())
}

func TestRunRestoresGlobalLogger(t *testing.T) {
	before := zap.L()

	cfg := DefaultConfig()
	cfg.LogLevel = "error"
	cfg.LogFile = filepath.Join(t.TempDir(), "pocx.log")
	cfg.File = writeFile(t, "page.html", profile)
	cfg.Output.Dir = t.TempDir()
	cfg.Reveal.PerSecond = 100
	cfg.Reveal.PerMinute = 600

	var stdout, stderr bytes.Buffer
	require.NoError(t, Run(context.Background(), cfg, &stdout, &stderr))
	assert.Same(t, before, zap.L())
}
