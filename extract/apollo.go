package extract

// Apollo列表页的平铺提取：姓名、职位块、邮箱三组元素分别按XPath收集，再按下标对齐

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"github.com/dszqbsm/pocextractor/poc"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// 按class精确匹配，等价于CSS的tag.cls1.cls2
func classXPath(prefix, tag string, classes ...string) string {
	var conds []string
	for _, c := range classes {
		conds = append(conds, fmt.Sprintf(`contains(concat(' ', normalize-space(@class), ' '), ' %s ')`, c))
	}
	return fmt.Sprintf("%s%s[%s]", prefix, tag, strings.Join(conds, " and "))
}

var (
	apolloNameExpr     = xpath.MustCompile(classXPath("//", "span", "zp_pHNm5"))
	apolloRoleBlock    = xpath.MustCompile(classXPath("//", "div", "zp_YGDgt"))
	apolloRoleSpanExpr = xpath.MustCompile(classXPath(".//", "span", "zp_FEm_X"))
	apolloEmailExpr    = xpath.MustCompile(classXPath("//", "span", "zp_xvo3G", "zp_JTaUA"))
)

type ApolloStrategy struct{}

func (ApolloStrategy) Extract(ctx context.Context, run *Run, doc *goquery.Document, _ *Revealer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(doc.Nodes) == 0 {
		run.addSection(nil)
		return nil
	}
	records := FlatList(doc.Nodes[0])
	run.logger.Debug("flat list extracted", zap.Int("count", len(records)))
	run.addSection(records)
	return nil
}

func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.InnerText(n))
}

/*
输入角色块列表，输出职位列表

页面中职位块与装饰块交替出现，只读取下标为1、3、5……的块（每对中的第二个）；
块内没有职位span时填入空字符串以保持与姓名列表的下标对齐；文本中字面量的&amp;还原为&
*/
func RolesFromBlocks(blocks []*html.Node) []string {
	roles := make([]string, 0, len(blocks)/2)
	for i := 1; i < len(blocks); i += 2 {
		span := htmlquery.QuerySelector(blocks[i], apolloRoleSpanExpr)
		roles = append(roles, strings.ReplaceAll(nodeText(span), "&amp;", "&"))
	}
	return roles
}

/*
输入文档根节点，输出平铺提取出的记录列表

按三个列表中最长者的长度对齐，缺失位置视为空字符串；三个字段全空的位置不输出
*/
func FlatList(root *html.Node) []poc.Record {
	names := htmlquery.QuerySelectorAll(root, apolloNameExpr)
	roles := RolesFromBlocks(htmlquery.QuerySelectorAll(root, apolloRoleBlock))
	emails := htmlquery.QuerySelectorAll(root, apolloEmailExpr)

	n := max(len(names), len(roles), len(emails))
	records := make([]poc.Record, 0, n)
	for i := 0; i < n; i++ {
		var rec poc.Record
		if i < len(names) {
			rec.Name = nodeText(names[i])
		}
		if i < len(roles) {
			rec.Role = roles[i]
		}
		if i < len(emails) {
			rec.Email = nodeText(emails[i])
		}
		if rec.IsEmpty() {
			continue
		}
		records = append(records, rec)
	}
	return records
}
