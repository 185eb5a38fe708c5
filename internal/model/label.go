package model

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeLabel 去除首尾空白并统一为 NFC
// macOS 导出的文件里韩文常为 NFD 分解形式，不统一会导致“비중”等匹配失败。
func NormalizeLabel(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// NormalizeColumns 规范化表头：空列名补为 "Unnamed: i"，重复列名追加 ".1" ".2"
func NormalizeColumns(names []string) []string {
	out := make([]string, len(names))
	used := make(map[string]bool, len(names))
	next := make(map[string]int)
	for i, n := range names {
		n = NormalizeLabel(n)
		if n == "" {
			n = fmt.Sprintf("Unnamed: %d", i)
		}
		if used[n] {
			base := n
			k := next[base]
			for {
				k++
				n = fmt.Sprintf("%s.%d", base, k)
				if !used[n] {
					break
				}
			}
			next[base] = k
		}
		used[n] = true
		out[i] = n
	}
	return out
}

// TabInfo 工作表（月份标签页）信息
type TabInfo struct {
	Name     string `json:"name"`
	RowCount int    `json:"rowCount"`
}
