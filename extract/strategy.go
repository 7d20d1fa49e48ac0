package extract

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/dszqbsm/pocextractor/poc"
	"go.uber.org/zap"
)

// 一种平台的提取策略：在快照上定位数据，按需通过Revealer展开邮箱，把每个分区的记录追加到run中
type Strategy interface {
	Extract(ctx context.Context, run *Run, doc *goquery.Document, rev *Revealer) error
}

// 全局策略表，按平台查找
var Strategies = &strategyStore{
	Hash: map[poc.Platform]Strategy{},
}

type strategyStore struct {
	List []poc.Platform
	Hash map[poc.Platform]Strategy
}

func (s *strategyStore) Add(p poc.Platform, st Strategy) {
	if _, ok := s.Hash[p]; !ok {
		s.List = append(s.List, p)
	}
	s.Hash[p] = st
}

func (s *strategyStore) Get(p poc.Platform) (Strategy, error) {
	st, ok := s.Hash[p]
	if !ok {
		return nil, fmt.Errorf("%w:%q", poc.ErrUnknownPlatform, p)
	}
	return st, nil
}

func init() {
	Strategies.Add(poc.Traxcn, TraxcnStrategy{})
	Strategies.Add(poc.Apollo, ApolloStrategy{})
}

// 网格表格策略：分区定位 → 逐行解析 → 逐行展开邮箱
type TraxcnStrategy struct{}

func (TraxcnStrategy) Extract(ctx context.Context, run *Run, doc *goquery.Document, rev *Revealer) error {
	tables := LocateTables(doc.Selection, run.logger)
	icons := doc.FindMatcher(envelopeMatcher)
	run.logger.Debug("located tables", zap.Int("count", len(tables)), zap.Int("icons", icons.Length()))

	for _, table := range tables {
		records, err := extractTable(ctx, run, table, icons, rev)
		if err != nil {
			return err
		}
		run.addSection(records)
	}
	return nil
}

/*
输入表格容器、全文档信封图标集合和Revealer，输出该表格的记录列表和一个error

按文档顺序处理每一行，没有姓名单元格的行跳过；姓名单元格内有信封图标时，用图标在全文档中的序号展开邮箱。
行与行之间严格串行，前一行的下拉框收起之后才处理下一行
*/
func extractTable(ctx context.Context, run *Run, table, icons *goquery.Selection, rev *Revealer) ([]poc.Record, error) {
	rows := table.FindMatcher(rowMatcher)
	records := make([]poc.Record, 0, rows.Length())

	for i := range rows.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		run.enterRow(i)
		rec, nameCell, ok := ParseRow(rows.Eq(i))
		if !ok {
			run.logger.Debug("row has no name cell", zap.Int("row", i))
			continue
		}

		if icon := nameCell.FindMatcher(envelopeMatcher).First(); icon.Length() > 0 {
			ordinal := icons.IndexOfNode(icon.Nodes[0])
			email, err := rev.Reveal(ctx, run, ordinal)
			if err != nil {
				return nil, fmt.Errorf("reveal email of %q failed:%w", rec.Name, err)
			}
			rec.Email = email
		}
		records = append(records, rec)
	}
	return records, nil
}
