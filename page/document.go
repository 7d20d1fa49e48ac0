package page

// 页面快照的加载：探测字符编码，统一转成UTF-8后交给goquery解析

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

/*
输入一个HTML字节流，输出goquery文档和一个error

先窥探前1024字节确定编码（meta标签或BOM），再经transform转码为UTF-8后解析
*/
func Load(r io.Reader) (*goquery.Document, error) {
	bodyReader := bufio.NewReader(r)
	e := DeterminEncoding(bodyReader)
	utf8Reader := transform.NewReader(bodyReader, e.NewDecoder())

	doc, err := goquery.NewDocumentFromReader(utf8Reader)
	if err != nil {
		return nil, fmt.Errorf("parse html failed:%w", err)
	}
	return doc, nil
}

// 读取磁盘上保存的页面快照
func LoadFile(path string) (*goquery.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot failed:%w", err)
	}
	defer f.Close()
	return Load(f)
}

// 快照不足1024字节时Peek会返回EOF，但已读到的内容仍可用于判断编码
func DeterminEncoding(r *bufio.Reader) encoding.Encoding {
	bytes, err := r.Peek(1024)
	if err != nil && !errors.Is(err, io.EOF) {
		zap.L().Error("peek snapshot failed", zap.Error(err))
		return unicode.UTF8
	}
	if len(bytes) == 0 {
		return unicode.UTF8
	}

	e, _, _ := charset.DetermineEncoding(bytes, "")
	return e
}
