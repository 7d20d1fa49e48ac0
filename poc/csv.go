package poc

// 将联系人记录序列化为CSV：每个字段都用双引号包裹，字段内的双引号写成两个双引号，因此逗号和换行都不会破坏列结构

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

var csvHeader = []string{"POC Role", "POC Name", "POC Email"}

// 对单个字段做引号转义并包裹
func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

/*
输入一个写入目标和记录列表，输出一个error

先写入表头，再按顺序逐行写入role、name、email三列，所有字段统一加引号，行尾使用\n
*/
func WriteCSV(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(csvHeader, ",") + "\n"); err != nil {
		return fmt.Errorf("write csv header failed:%w", err)
	}
	for i, r := range records {
		line := quoteField(r.Role) + "," + quoteField(r.Name) + "," + quoteField(r.Email) + "\n"
		if _, err := bw.WriteString(line); err != nil {
			return fmt.Errorf("write csv row %d failed:%w", i, err)
		}
	}
	return bw.Flush()
}

// 导出文件名，包含平台名和当天的UTC日期，例如poc-data-apollo-2024-05-01.csv
func CSVFileName(p Platform, now time.Time) string {
	return fmt.Sprintf("poc-data-%s-%s.csv", strings.ToLower(p.Label()), now.UTC().Format("2006-01-02"))
}
