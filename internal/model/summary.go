package model

import "strings"

const (
	// TotalLabel 汇总列的上层表头
	TotalLabel = "합계"
	// ShareLabel 占比列的下层表头
	ShareLabel = "비중(%)"
	// ShareMarker 占比列识别关键字
	ShareMarker = "비중"
	// WeightColumn 列数不足时追加的权重列
	WeightColumn = "가중치"
	// ValueColumn 无数值列时合成的常量列
	ValueColumn = "값"
)

// HeaderPair 两级表头中的一列：(上层标签, 下层标签)
type HeaderPair struct {
	Top string `json:"top"`
	Sub string `json:"sub"`
}

// label 用于识别列含义的标签：两级表头取下层，单级取上层
func (p HeaderPair) label(twoLevel bool) string {
	if twoLevel {
		return p.Sub
	}
	return p.Top
}

// SummaryTable 汇总结果
type SummaryTable struct {
	Header   []HeaderPair `json:"header"`
	TwoLevel bool         `json:"twoLevel"`
	Rows     [][]Cell     `json:"rows"`
}

// PassthroughSummary 将输入表格原样包装为单级表头的结果
func PassthroughSummary(t *Table) *SummaryTable {
	s := &SummaryTable{
		Header: make([]HeaderPair, 0, t.NumCols()),
		Rows:   make([][]Cell, 0, t.NumRows()),
	}
	for _, c := range t.Columns {
		s.Header = append(s.Header, HeaderPair{Top: c})
	}
	for _, r := range t.Rows {
		s.Rows = append(s.Rows, fitRow(r, len(t.Columns)))
	}
	return s
}

// NumRows 行数
func (s *SummaryTable) NumRows() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// NumCols 列数
func (s *SummaryTable) NumCols() int {
	if s == nil {
		return 0
	}
	return len(s.Header)
}

// TopLabels 上层标签
func (s *SummaryTable) TopLabels() []string {
	out := make([]string, len(s.Header))
	for i, h := range s.Header {
		out[i] = h.Top
	}
	return out
}

// SubLabels 下层标签
func (s *SummaryTable) SubLabels() []string {
	out := make([]string, len(s.Header))
	for i, h := range s.Header {
		out[i] = h.Sub
	}
	return out
}

// IsShareColumn 列是否为占比列（标签包含“비중”）
func (s *SummaryTable) IsShareColumn(col int) bool {
	if col < 0 || col >= len(s.Header) {
		return false
	}
	return strings.Contains(NormalizeLabel(s.Header[col].label(s.TwoLevel)), ShareMarker)
}

// ShareColumn 第一个占比列的索引，不存在返回 -1
func (s *SummaryTable) ShareColumn() int {
	for i := range s.Header {
		if s.IsShareColumn(i) {
			return i
		}
	}
	return -1
}

// Column 按 (上层, 下层) 查找列索引
func (s *SummaryTable) Column(top, sub string) int {
	for i, h := range s.Header {
		if h.Top == top && h.Sub == sub {
			return i
		}
	}
	return -1
}

// At 取单元格；越界返回空单元格
func (s *SummaryTable) At(row, col int) Cell {
	if row < 0 || row >= len(s.Rows) {
		return Empty()
	}
	r := s.Rows[row]
	if col < 0 || col >= len(r) {
		return Empty()
	}
	return r[col]
}

// HeaderBand 连续相同上层标签构成的区段 [Start, End]
type HeaderBand struct {
	Label string
	Start int
	End   int
}

// Span 区段宽度
func (b HeaderBand) Span() int {
	return b.End - b.Start + 1
}

// HeaderBands 将连续相同的标签合并为区段；长度为 1 的区段同样返回
func HeaderBands(labels []string) []HeaderBand {
	if len(labels) == 0 {
		return nil
	}
	bands := make([]HeaderBand, 0, len(labels))
	start := 0
	for j := 1; j <= len(labels); j++ {
		if j == len(labels) || labels[j] != labels[start] {
			bands = append(bands, HeaderBand{Label: labels[start], Start: start, End: j - 1})
			start = j
		}
	}
	return bands
}
