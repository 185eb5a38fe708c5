package calculator

import (
	"sort"
	"strings"

	"github.com/Gitae-Kwon/mmreport/internal/model"
)

// minColumns 少于该列数的表格不做汇总
const minColumns = 3

// group 一个分组键组合的累计结果
type group struct {
	keys  []model.Cell
	sums  []float64
	share float64
}

func (g *group) total() float64 {
	var t float64
	for _, v := range g.sums {
		t += v
	}
	return t
}

// ComputeSummary 将任意输入表格转换为两级表头的汇总表
//
// 纯函数：不修改输入，不做 I/O。退化输入（空表、列数不足、无数值列、
// 合计为 0、数值列中混入文本）都不会报错。
func ComputeSummary(t *model.Table) *model.SummaryTable {
	if t == nil {
		return &model.SummaryTable{}
	}
	if t.NumRows() == 0 {
		return model.PassthroughSummary(t)
	}
	if t.NumCols() < minColumns {
		return model.PassthroughSummary(t.WithConstantColumn(model.WeightColumn, 1))
	}

	schema := ClassifyColumns(t)
	if len(schema.Numeric()) == 0 {
		t = t.WithConstantColumn(model.ValueColumn, 1)
		schema = append(schema, model.ColumnSchema{Name: model.ValueColumn, Kind: model.KindNumber})
	}

	keys := SelectKeys(t, schema)
	metrics := metricColumns(schema, keys)

	groups := aggregateSums(t, keys, metrics)
	calcShares(groups)
	sortGroups(groups)

	return buildSummary(keys, metrics, groups)
}

// metricColumns 参与求和的数值列；分组键不重复计入
func metricColumns(schema model.Schema, keys []string) []string {
	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}
	out := make([]string, 0, len(schema))
	for _, name := range schema.Numeric() {
		if !isKey[name] {
			out = append(out, name)
		}
	}
	return out
}

// aggregateSums 按分组键聚合各数值列
// 数值列中的非数值单元格按 0 计入。
func aggregateSums(t *model.Table, keys, metrics []string) []*group {
	keyIdx := columnIndexes(t, keys)
	metricIdx := columnIndexes(t, metrics)

	byKey := make(map[string]*group)
	order := make([]*group, 0)
	for i := range t.Rows {
		keyCells := make([]model.Cell, len(keyIdx))
		for k, j := range keyIdx {
			keyCells[k] = t.At(i, j)
		}
		id := groupID(keyCells)
		g, ok := byKey[id]
		if !ok {
			g = &group{keys: keyCells, sums: make([]float64, len(metricIdx))}
			byKey[id] = g
			order = append(order, g)
		}
		for m, j := range metricIdx {
			if v, ok := t.At(i, j).Float(); ok {
				g.sums[m] += v
			}
		}
	}
	return order
}

// calcShares 计算各分组占比（%）；总计为 0 时全部为 0
func calcShares(groups []*group) {
	var grand float64
	for _, g := range groups {
		grand += g.total()
	}
	for _, g := range groups {
		if grand == 0 {
			g.share = 0
			continue
		}
		g.share = g.total() / grand * 100
	}
}

// sortGroups 先按分组键升序确定基准顺序，再按占比稳定降序
func sortGroups(groups []*group) {
	sort.SliceStable(groups, func(a, b int) bool {
		return compareKeys(groups[a].keys, groups[b].keys) < 0
	})
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].share > groups[b].share
	})
}

func buildSummary(keys, metrics []string, groups []*group) *model.SummaryTable {
	header := make([]model.HeaderPair, 0, len(keys)+len(metrics)+1)
	for _, k := range keys {
		header = append(header, model.HeaderPair{Top: k})
	}
	for _, m := range metrics {
		header = append(header, model.HeaderPair{Top: model.TotalLabel, Sub: m})
	}
	header = append(header, model.HeaderPair{Top: model.TotalLabel, Sub: model.ShareLabel})

	rows := make([][]model.Cell, 0, len(groups))
	for _, g := range groups {
		row := make([]model.Cell, 0, len(header))
		row = append(row, g.keys...)
		for _, v := range g.sums {
			row = append(row, model.Number(v))
		}
		row = append(row, model.Number(g.share))
		rows = append(rows, row)
	}

	return &model.SummaryTable{
		Header:   header,
		TwoLevel: true,
		Rows:     rows,
	}
}

func columnIndexes(t *model.Table, names []string) []int {
	out := make([]int, 0, len(names))
	for _, n := range names {
		out = append(out, t.ColumnIndex(n))
	}
	return out
}

// groupID 分组键的唯一标识；空单元格与空白文本视为同一组
func groupID(keys []model.Cell) string {
	var sb strings.Builder
	for i, c := range keys {
		if i > 0 {
			sb.WriteString("\x1f")
		}
		switch {
		case c.IsBlank():
			sb.WriteString("e:")
		case c.IsNumber():
			sb.WriteString("n:")
			sb.WriteString(model.FormatNumber(c.Num))
		default:
			sb.WriteString("t:")
			sb.WriteString(c.Text)
		}
	}
	return sb.String()
}

// compareKeys 空值在前，数值按大小，数值排在文本之前，文本按字典序
func compareKeys(a, b []model.Cell) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareCell(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func compareCell(a, b model.Cell) int {
	ra, rb := cellRank(a), cellRank(b)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case 1:
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		}
		return 0
	case 2:
		return strings.Compare(a.Text, b.Text)
	}
	return 0
}

func cellRank(c model.Cell) int {
	switch {
	case c.IsBlank():
		return 0
	case c.IsNumber():
		return 1
	}
	return 2
}
