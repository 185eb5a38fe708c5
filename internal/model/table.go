package model

import (
	"math"
	"strconv"
	"strings"
)

// CellKind 单元格值类型
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// Cell 表格单元格（文本 / 数值 / 空）
type Cell struct {
	Kind CellKind `json:"kind"`
	Text string   `json:"text,omitempty"`
	Num  float64  `json:"num,omitempty"`
}

// Text 构造文本单元格
func Text(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

// Number 构造数值单元格
func Number(f float64) Cell {
	return Cell{Kind: CellNumber, Num: f}
}

// Empty 构造空单元格
func Empty() Cell {
	return Cell{Kind: CellEmpty}
}

// IsNumber 是否为数值
func (c Cell) IsNumber() bool {
	return c.Kind == CellNumber
}

// IsBlank 空单元格或纯空白文本
func (c Cell) IsBlank() bool {
	switch c.Kind {
	case CellEmpty:
		return true
	case CellText:
		return strings.TrimSpace(c.Text) == ""
	}
	return false
}

// Float 返回数值；文本可解析时按数值处理，否则为 0
func (c Cell) Float() (float64, bool) {
	switch c.Kind {
	case CellNumber:
		if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
			return 0, false
		}
		return c.Num, true
	case CellText:
		return ParseNumber(c.Text)
	}
	return 0, false
}

// String 单元格的文本形式（数值不带多余的 0）
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return FormatNumber(c.Num)
	}
	return ""
}

// FormatNumber 避免 1 vs 1.0 的字符串差异
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseNumber 解析文本数值，兼容千分位、首尾空白
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ColumnKind 列类型
type ColumnKind int

const (
	KindUnknown ColumnKind = iota
	KindText
	KindNumber
)

func (k ColumnKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	}
	return "unknown"
}

// ColumnSchema 列名 + 类型
type ColumnSchema struct {
	Name string
	Kind ColumnKind
}

// Schema 分类后的列结构，顺序与表格列一致
type Schema []ColumnSchema

// Numeric 数值列名（保持原顺序）
func (s Schema) Numeric() []string {
	out := make([]string, 0, len(s))
	for _, c := range s {
		if c.Kind == KindNumber {
			out = append(out, c.Name)
		}
	}
	return out
}

// NonNumeric 非数值列名（保持原顺序）
func (s Schema) NonNumeric() []string {
	out := make([]string, 0, len(s))
	for _, c := range s {
		if c.Kind != KindNumber {
			out = append(out, c.Name)
		}
	}
	return out
}

// Table 输入表格：有序命名列 + 行数据
//
// Kinds 可选，由数据源声明列类型；为空时由分类过程推断。
type Table struct {
	Columns []string     `json:"columns"`
	Rows    [][]Cell     `json:"rows"`
	Kinds   []ColumnKind `json:"kinds,omitempty"`
}

// NewTable 创建表格，行长度不足时补空单元格
func NewTable(columns []string, rows [][]Cell) *Table {
	t := &Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([][]Cell, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, fitRow(r, len(columns)))
	}
	return t
}

func fitRow(r []Cell, n int) []Cell {
	out := make([]Cell, n)
	copy(out, r)
	return out
}

// NumRows 行数
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// NumCols 列数
func (t *Table) NumCols() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// ColumnIndex 列名索引，不存在返回 -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// At 取单元格；越界返回空单元格
func (t *Table) At(row, col int) Cell {
	if row < 0 || row >= len(t.Rows) {
		return Empty()
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return Empty()
	}
	return r[col]
}

// DeclaredKind 数据源声明的列类型
func (t *Table) DeclaredKind(col int) ColumnKind {
	if col < 0 || col >= len(t.Kinds) {
		return KindUnknown
	}
	return t.Kinds[col]
}

// Clone 深拷贝，派生表格不影响原始输入
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]Cell, len(t.Rows)),
	}
	if t.Kinds != nil {
		out.Kinds = make([]ColumnKind, len(t.Columns))
		copy(out.Kinds, t.Kinds)
	}
	for i, r := range t.Rows {
		out.Rows[i] = fitRow(r, len(t.Columns))
	}
	return out
}

// WithConstantColumn 追加一列常量数值，返回新表格
func (t *Table) WithConstantColumn(name string, v float64) *Table {
	out := t.Clone()
	out.Columns = append(out.Columns, name)
	if out.Kinds != nil {
		out.Kinds = append(out.Kinds, KindNumber)
	}
	for i := range out.Rows {
		out.Rows[i] = append(out.Rows[i], Number(v))
	}
	return out
}
