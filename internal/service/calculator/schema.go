package calculator

import "github.com/Gitae-Kwon/mmreport/internal/model"

// ClassifyColumns 对每列做一次类型标记，下游只看 Schema，不再临时判断单元格
//
// 数据源声明的类型优先；未声明时：至少一个非空单元格，且所有非空单元格
// 都是数值（或可解析为数值的文本）才算数值列。全空列按文本处理。
func ClassifyColumns(t *model.Table) model.Schema {
	schema := make(model.Schema, 0, t.NumCols())
	for j, name := range t.Columns {
		kind := t.DeclaredKind(j)
		if kind == model.KindUnknown {
			kind = inferKind(t, j)
		}
		schema = append(schema, model.ColumnSchema{Name: name, Kind: kind})
	}
	return schema
}

func inferKind(t *model.Table, col int) model.ColumnKind {
	seen := false
	for i := range t.Rows {
		c := t.At(i, col)
		if c.IsBlank() {
			continue
		}
		if _, ok := c.Float(); !ok {
			return model.KindText
		}
		seen = true
	}
	if !seen {
		return model.KindText
	}
	return model.KindNumber
}

// SelectKeys 分组键：前一到两个非数值列；没有时退回第一列（即使是数值列）
func SelectKeys(t *model.Table, schema model.Schema) []string {
	keys := schema.NonNumeric()
	if len(keys) > 2 {
		keys = keys[:2]
	}
	if len(keys) == 0 && t.NumCols() > 0 {
		keys = []string{t.Columns[0]}
	}
	return keys
}
