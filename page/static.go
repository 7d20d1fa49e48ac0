package page

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// 离线快照中的下拉框是保存页面时已经展开的那一份，读取时以图标所在行为范围
const (
	envelopeSelector = "span.fa-envelope"
	rowSelector      = ".comp--gridtable__row"
	dropdownSelector = ".listDropdown__wrapper"
	mailtoSelector   = `a[href^="mailto:"]`
)

// 基于已保存HTML快照的页面，没有真实的点击，只模拟下拉框的开合状态
type Static struct {
	doc    *goquery.Document
	active int // 当前“展开”的图标序号，-1表示没有
}

func NewStatic(doc *goquery.Document) *Static {
	return &Static{doc: doc, active: -1}
}

// 从文件加载快照并构造Static
func OpenFile(path string) (*Static, error) {
	doc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewStatic(doc), nil
}

func (s *Static) Snapshot(ctx context.Context) (*goquery.Document, error) {
	return s.doc, ctx.Err()
}

func (s *Static) HideDropdowns(ctx context.Context) error {
	s.active = -1
	return ctx.Err()
}

func (s *Static) Activate(ctx context.Context, icon int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if icon < 0 || icon >= s.doc.Find(envelopeSelector).Length() {
		return fmt.Errorf("%w:%d", ErrIconNotFound, icon)
	}
	s.active = icon
	return nil
}

// 当前展开图标所在行内的下拉框
func (s *Static) dropdown() *goquery.Selection {
	if s.active < 0 {
		return nil
	}
	icon := s.doc.Find(envelopeSelector).Eq(s.active)
	scope := icon.Closest(rowSelector)
	if scope.Length() == 0 {
		scope = icon.Parent()
	}
	dd := scope.Find(dropdownSelector).FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return !hidden(sel)
	}).First()
	if dd.Length() == 0 {
		return nil
	}
	return dd
}

// 内联样式为display:none的下拉框是已收起的那一份，与live页面的判断一致
func hidden(sel *goquery.Selection) bool {
	style, _ := sel.Attr("style")
	return strings.Contains(strings.ReplaceAll(style, " ", ""), "display:none")
}

func (s *Static) DropdownEmail(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	dd := s.dropdown()
	if dd == nil {
		return "", false, nil
	}
	return strings.TrimSpace(dd.Find(mailtoSelector).First().Text()), true, nil
}

// 静态快照没有布局信息，无法判断链接是否可见，兜底扫描不返回结果
func (s *Static) VisibleMailto(ctx context.Context) (string, error) {
	return "", ctx.Err()
}

func (s *Static) Dismiss(ctx context.Context) error {
	s.active = -1
	return ctx.Err()
}

func (s *Static) DropdownOpen(ctx context.Context) (bool, error) {
	return s.dropdown() != nil, ctx.Err()
}
