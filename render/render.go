package render

// 提取结果的渲染端：终端表格展示与CSV文件导出

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dszqbsm/pocextractor/poc"
	"go.uber.org/zap"
)

const noEmail = "Email not found"

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	missingStyle = cellStyle.Italic(true).Faint(true)
)

// 终端表格
type Table struct {
	w io.Writer
}

func NewTable(w io.Writer) *Table {
	return &Table{w: w}
}

/*
输入提取结果，输出一个error

渲染三列表格（POC Role、POC Name、POC Email），邮箱为空时显示Email not found，表格后附一行统计
*/
func (t *Table) Render(res poc.Result) error {
	rows := make([][]string, 0, len(res.Records))
	for _, r := range res.Records {
		email := r.Email
		if email == "" {
			email = noEmail
		}
		rows = append(rows, []string{r.Role, r.Name, email})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("POC Role", "POC Name", "POC Email").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 2 && res.Records[row].Email == "":
				return missingStyle
			default:
				return cellStyle
			}
		})

	_, err := fmt.Fprintf(t.w, "%s\n%d contacts extracted from %s profile\n", tbl.Render(), len(res.Records), res.Label())
	return err
}

type options struct {
	logger *zap.Logger
	now    func() time.Time
}

var defaultOptions = options{
	logger: zap.NewNop(),
	now:    time.Now,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// 用于测试时固定导出文件名中的日期
func WithClock(now func() time.Time) Option {
	return func(opts *options) {
		opts.now = now
	}
}

// CSV文件导出，文件写到dir目录下
type CSVFile struct {
	dir string
	options
	path string
}

func NewCSVFile(dir string, opts ...Option) *CSVFile {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &CSVFile{dir: dir, options: o}
}

// 最近一次导出的文件路径
func (c *CSVFile) Path() string {
	return c.path
}

func (c *CSVFile) Render(res poc.Result) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir failed:%w", err)
	}
	path := filepath.Join(c.dir, poc.CSVFileName(res.Platform, c.now()))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv failed:%w", err)
	}
	if err := poc.WriteCSV(f, res.Records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv failed:%w", err)
	}
	c.path = path
	c.logger.Info("csv exported", zap.String("path", path), zap.Int("records", len(res.Records)))
	return nil
}
