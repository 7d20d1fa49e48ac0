package extract

// Traxcn资料页的分区定位与行解析

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/dszqbsm/pocextractor/poc"
	"go.uber.org/zap"
)

// 需要抓取的分区标题
var TargetSections = []string{"Founders & Key People", "Senior Management"}

var (
	headingMatcher     = cascadia.MustCompile(".txn--dp-subheader")
	tableMatcher       = cascadia.MustCompile(".comp--gridtable__wrapper-v2")
	rowMatcher         = cascadia.MustCompile(".comp--gridtable__row")
	nameCellMatcher    = cascadia.MustCompile(`[data-walk-through-id*="-cell-name"]`)
	designationMatcher = cascadia.MustCompile(`[data-walk-through-id*="-cell-designation"]`)
	envelopeMatcher    = cascadia.MustCompile("span.fa-envelope")
)

var ordinalPrefixRe = regexp.MustCompile(`^\d+\.\s*`)

func isTargetSection(title string) bool {
	for _, s := range TargetSections {
		if s == title {
			return true
		}
	}
	return false
}

/*
输入页面根节点，输出所有目标分区的表格容器

遍历分区标题，标题文本在白名单内时，先在标题父元素内查找表格容器，找不到再到父元素的下一个兄弟元素内查找；
都找不到视为该分区无内容（LocatorMiss），不是错误。结果按文档顺序返回
*/
func LocateTables(root *goquery.Selection, logger *zap.Logger) []*goquery.Selection {
	var tables []*goquery.Selection
	root.FindMatcher(headingMatcher).Each(func(_ int, heading *goquery.Selection) {
		title := strings.TrimSpace(heading.Text())
		if !isTargetSection(title) {
			return
		}
		parent := heading.Parent()
		table := parent.FindMatcher(tableMatcher).First()
		if table.Length() == 0 {
			table = parent.Next().FindMatcher(tableMatcher).First()
		}
		if table.Length() == 0 {
			logger.Debug("section has no table", zap.String("section", title))
			return
		}
		tables = append(tables, table)
	})
	return tables
}

// 去掉序号前缀（"1. "），只保留第一行
func CleanName(text string) string {
	name := ordinalPrefixRe.ReplaceAllString(strings.TrimSpace(text), "")
	if i := strings.IndexByte(name, '\n'); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

/*
输入一行，输出记录（不含邮箱）、姓名单元格和是否有效

没有姓名单元格的行无效（RowMissingName），调用方直接跳过；职位单元格缺失时职位为空字符串
*/
func ParseRow(row *goquery.Selection) (poc.Record, *goquery.Selection, bool) {
	nameCell := row.FindMatcher(nameCellMatcher).First()
	if nameCell.Length() == 0 {
		return poc.Record{}, nil, false
	}
	rec := poc.Record{Name: CleanName(nameCell.Text())}
	if d := row.FindMatcher(designationMatcher).First(); d.Length() > 0 {
		rec.Role = strings.TrimSpace(d.Text())
	}
	return rec, nameCell, true
}
