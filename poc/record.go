package poc

// 定义联系人记录与平台标识，是提取器与渲染端之间传递的数据单元

import (
	"errors"
	"fmt"
	"strings"
)

// 一条联系人记录，按发现顺序输出，生成后不再修改
type Record struct {
	Role  string `json:"pocRole"`
	Name  string `json:"pocName"`
	Email string `json:"pocEmail"`
}

// 三个字段全部为空时返回true
func (r Record) IsEmpty() bool {
	return r.Role == "" && r.Name == "" && r.Email == ""
}

// 目标平台，决定使用哪一种提取策略
type Platform string

const (
	Traxcn Platform = "traxcn"
	Apollo Platform = "apollo"
)

var ErrUnknownPlatform = errors.New("unknown platform")

// 平台在渲染结果中的展示名
func (p Platform) Label() string {
	switch p {
	case Traxcn:
		return "Traxcn"
	case Apollo:
		return "Apollo"
	default:
		return string(p)
	}
}

/*
输入一个平台名称字符串，输出对应的Platform和一个error

忽略大小写和首尾空白，仅接受已知的两个平台，其余返回ErrUnknownPlatform
*/
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case Traxcn, Apollo:
		return p, nil
	}
	return "", fmt.Errorf("%w:%q", ErrUnknownPlatform, s)
}

// 所有受支持的平台
func Platforms() []Platform {
	return []Platform{Traxcn, Apollo}
}

// 一次提取的最终结果，交给渲染端
type Result struct {
	RunID    string
	Platform Platform
	Records  []Record
}

func (r Result) Label() string {
	return r.Platform.Label()
}
