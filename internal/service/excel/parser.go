package excel

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/Gitae-Kwon/mmreport/internal/model"
)

// ErrTabNotFound 工作簿中不存在该标签页
var ErrTabNotFound = errors.New("tab not found")

// Workbook 上传的工作簿（本地 xlsx 数据源）
type Workbook struct {
	file *excelize.File
	id   string
	// 样式 ID → 是否为日期/时间格式
	dateStyles map[int]bool
}

// OpenWorkbook 从 reader 加载 xlsx
func OpenWorkbook(r io.Reader) (*Workbook, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	return &Workbook{
		file:       file,
		id:         uuid.New().String(),
		dateStyles: make(map[int]bool),
	}, nil
}

// ID 工作簿标识
func (w *Workbook) ID() string {
	return w.id
}

// Close 释放工作簿
func (w *Workbook) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	return w.file.Close()
}

// ListTabs 标签页列表（按工作簿顺序）
func (w *Workbook) ListTabs() ([]model.TabInfo, error) {
	if w == nil || w.file == nil {
		return nil, errors.New("no file loaded")
	}

	sheets := w.file.GetSheetList()
	result := make([]model.TabInfo, 0, len(sheets))
	for _, name := range sheets {
		rows, err := w.file.GetRows(name)
		if err != nil {
			continue
		}
		count := len(rows) - 1
		if count < 0 {
			count = 0
		}
		result = append(result, model.TabInfo{
			Name:     name,
			RowCount: count,
		})
	}
	return result, nil
}

// HasTab 是否存在该标签页
func (w *Workbook) HasTab(tab string) bool {
	if w == nil || w.file == nil {
		return false
	}
	for _, name := range w.file.GetSheetList() {
		if name == tab {
			return true
		}
	}
	return false
}

// ReadTable 读取标签页：第一行为表头，其余为数据
// 数值单元格转换为数值；整行为空的数据行跳过。
func (w *Workbook) ReadTable(tab string) (*model.Table, error) {
	if !w.HasTab(tab) {
		return nil, fmt.Errorf("%w: %s", ErrTabNotFound, tab)
	}

	rows, err := w.file.GetRows(tab, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read tab %s: %w", tab, err)
	}
	if len(rows) == 0 {
		return model.NewTable(nil, nil), nil
	}

	width := len(rows[0])
	for _, r := range rows[1:] {
		if len(r) > width {
			width = len(r)
		}
	}
	header := make([]string, width)
	copy(header, rows[0])
	columns := model.NormalizeColumns(header)

	data := make([][]model.Cell, 0, len(rows)-1)
	for i, raw := range rows[1:] {
		rowNum := i + 2
		cells := make([]model.Cell, width)
		blank := true
		for j, v := range raw {
			cells[j] = w.readCell(tab, j+1, rowNum, v)
			if !cells[j].IsBlank() {
				blank = false
			}
		}
		if blank {
			continue
		}
		data = append(data, cells)
	}

	return model.NewTable(columns, data), nil
}

// readCell 按单元格类型转换；未标注类型的单元格在 OOXML 中即为数值
func (w *Workbook) readCell(tab string, col, row int, raw string) model.Cell {
	if strings.TrimSpace(raw) == "" {
		return model.Empty()
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return model.Text(raw)
	}
	typ, err := w.file.GetCellType(tab, axis)
	if err != nil {
		return model.Text(raw)
	}
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeFormula:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			break
		}
		// 日期以序列号存储，按显示文本读取，不参与求和
		if w.isDateCell(tab, axis) {
			if v, err := w.file.GetCellValue(tab, axis); err == nil && v != "" {
				return model.Text(v)
			}
			return model.Text(raw)
		}
		return model.Number(f)
	case excelize.CellTypeBool:
		if raw == "1" {
			return model.Text("TRUE")
		}
		return model.Text("FALSE")
	}
	return model.Text(raw)
}

func (w *Workbook) isDateCell(tab, axis string) bool {
	styleID, err := w.file.GetCellStyle(tab, axis)
	if err != nil || styleID == 0 {
		return false
	}
	if v, ok := w.dateStyles[styleID]; ok {
		return v
	}
	style, err := w.file.GetStyle(styleID)
	isDate := err == nil && isDateFormat(style.NumFmt, style.CustomNumFmt)
	w.dateStyles[styleID] = isDate
	return isDate
}

// isDateFormat 内置日期/时间格式（含 CJK 区域格式）或含日期时间占位符的自定义格式
func isDateFormat(numFmt int, custom *string) bool {
	if custom != nil {
		return isDateFormatCode(*custom)
	}
	switch {
	case numFmt >= 14 && numFmt <= 22,
		numFmt >= 27 && numFmt <= 36,
		numFmt >= 45 && numFmt <= 47,
		numFmt >= 50 && numFmt <= 58:
		return true
	}
	return false
}

// isDateFormatCode 去掉引号文本、转义字符和 [Red]/[$-409] 等修饰后查找 y/m/d/h/s
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	bracket := ""
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case inQuote:
			if ch == '"' {
				inQuote = false
			}
		case inBracket:
			if ch == ']' {
				inBracket = false
				// [h] [mm] [ss] 为经过时间
				if t := strings.ToLower(bracket); strings.Trim(t, "hms") == "" && t != "" {
					b.WriteString(t)
				}
				bracket = ""
				continue
			}
			bracket += string(ch)
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		case ch == '\\', ch == '_', ch == '*':
			i++
		default:
			b.WriteByte(ch)
		}
	}
	return strings.ContainsAny(strings.ToLower(b.String()), "ymdhs")
}
