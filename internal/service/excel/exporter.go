package excel

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/Gitae-Kwon/mmreport/internal/model"
)

const (
	// DefaultTitlePrefix 报表标题前缀
	DefaultTitlePrefix = "플랫폼 기술본부 M/M 산정표"
	// DefaultMonthLabel 未选择标签页时的月份标签
	DefaultMonthLabel = "선택월"
	// DefaultColumnWidth 固定列宽（字符单位）
	DefaultColumnWidth = 14.0
	// ContentType xlsx MIME 类型
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// 模板行号（1-based）：标题 / 上层表头 / 下层表头 / 数据起始
	titleRow     = 1
	topHeaderRow = 3
	subHeaderRow = 4
	firstDataRow = 5

	maxSheetNameLen = 31
)

// Layout 报表版式
type Layout struct {
	TitlePrefix string
	ColumnWidth float64
	Styles      StyleSheet
}

// DefaultLayout 公司报表默认版式
func DefaultLayout() Layout {
	return Layout{
		TitlePrefix: DefaultTitlePrefix,
		ColumnWidth: DefaultColumnWidth,
		Styles:      DefaultStyleSheet(),
	}
}

// Title 报表标题
func (l Layout) Title(monthLabel string) string {
	return fmt.Sprintf("%s (%s)", l.TitlePrefix, monthLabel)
}

// WorkbookWriter 汇总表 → 格式化 xlsx
type WorkbookWriter struct {
	layout Layout
}

// NewWorkbookWriter 创建导出器；未设置的版式项使用默认值
func NewWorkbookWriter(layout Layout) *WorkbookWriter {
	def := DefaultLayout()
	if layout.TitlePrefix == "" {
		layout.TitlePrefix = def.TitlePrefix
	}
	if layout.ColumnWidth <= 0 {
		layout.ColumnWidth = def.ColumnWidth
	}
	if layout.Styles == (StyleSheet{}) {
		layout.Styles = def.Styles
	}
	return &WorkbookWriter{layout: layout}
}

// RenderWorkbook 使用默认版式生成 xlsx
func RenderWorkbook(summary *model.SummaryTable, monthLabel string) ([]byte, error) {
	return NewWorkbookWriter(DefaultLayout()).Render(summary, monthLabel)
}

// Render 生成只含一个工作表（以月份命名）的 xlsx 并返回完整字节
func (w *WorkbookWriter) Render(summary *model.SummaryTable, monthLabel string) ([]byte, error) {
	if summary == nil {
		summary = &model.SummaryTable{}
	}
	if strings.TrimSpace(monthLabel) == "" {
		monthLabel = DefaultMonthLabel
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(monthLabel)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet %q: %w", sheet, err)
	}

	styles, err := registerStyles(f, w.layout.Styles)
	if err != nil {
		return nil, fmt.Errorf("failed to register styles: %w", err)
	}

	if err := writeTitle(f, sheet, w.layout.Title(monthLabel), styles); err != nil {
		return nil, err
	}
	if err := writeHeader(f, sheet, summary, styles); err != nil {
		return nil, err
	}
	if err := writeRows(f, sheet, summary, styles); err != nil {
		return nil, err
	}
	if err := setColumnWidths(f, sheet, summary.NumCols(), w.layout.ColumnWidth); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTitle(f *excelize.File, sheet, title string, styles styleIDs) error {
	axis := cellName(1, titleRow)
	if err := f.SetCellStr(sheet, axis, title); err != nil {
		return fmt.Errorf("failed to write title: %w", err)
	}
	return f.SetCellStyle(sheet, axis, axis, styles.title)
}

// writeHeader 表头：两级表头写两行，上层连续相同标签合并
func writeHeader(f *excelize.File, sheet string, summary *model.SummaryTable, styles styleIDs) error {
	n := summary.NumCols()
	if n == 0 {
		return nil
	}

	top := summary.TopLabels()
	for j, v := range top {
		if err := setStyledStr(f, sheet, cellName(j+1, topHeaderRow), v, styles.header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	// 单层表头的下层行为空，但保留表头样式
	for j, v := range summary.SubLabels() {
		if err := setStyledStr(f, sheet, cellName(j+1, subHeaderRow), v, styles.header); err != nil {
			return fmt.Errorf("failed to write sub header: %w", err)
		}
	}
	if !summary.TwoLevel {
		return nil
	}

	for _, band := range model.HeaderBands(top) {
		if band.Span() < 2 {
			continue
		}
		start := cellName(band.Start+1, topHeaderRow)
		end := cellName(band.End+1, topHeaderRow)
		if err := f.MergeCell(sheet, start, end); err != nil {
			return fmt.Errorf("failed to merge %s:%s: %w", start, end, err)
		}
		if err := f.SetCellStyle(sheet, start, end, styles.header); err != nil {
			return err
		}
	}
	return nil
}

// writeRows 数据区：首列文本左对齐；占比列 /100 按百分比；其他数值千分位 1 位小数
func writeRows(f *excelize.File, sheet string, summary *model.SummaryTable, styles styleIDs) error {
	n := summary.NumCols()
	share := make([]bool, n)
	for j := 0; j < n; j++ {
		share[j] = summary.IsShareColumn(j)
	}

	for i := range summary.Rows {
		row := firstDataRow + i
		for j := 0; j < n; j++ {
			c := summary.At(i, j)
			axis := cellName(j+1, row)

			var err error
			switch {
			case j == 0:
				err = setStyledStr(f, sheet, axis, c.String(), styles.text)
			case share[j] && c.IsNumber():
				err = setStyledFloat(f, sheet, axis, c.Num/100, styles.percent)
			case c.IsNumber():
				err = setStyledFloat(f, sheet, axis, c.Num, styles.number)
			default:
				err = setStyledStr(f, sheet, axis, c.String(), styles.text)
			}
			if err != nil {
				return fmt.Errorf("failed to write cell %s: %w", axis, err)
			}
		}
	}
	return nil
}

func setColumnWidths(f *excelize.File, sheet string, n int, width float64) error {
	if n == 0 {
		return nil
	}
	last, err := excelize.ColumnNumberToName(n)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, width)
}

func setStyledStr(f *excelize.File, sheet, axis, v string, style int) error {
	if v != "" {
		if err := f.SetCellStr(sheet, axis, v); err != nil {
			return err
		}
	}
	return f.SetCellStyle(sheet, axis, axis, style)
}

func setStyledFloat(f *excelize.File, sheet, axis string, v float64, style int) error {
	if err := f.SetCellFloat(sheet, axis, v, -1, 64); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, axis, axis, style)
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// SheetName 将月份标签转换为合法的工作表名：去掉 []:*?/\ ，最长 31 字符
func SheetName(label string) string {
	label = strings.TrimSpace(label)
	label = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '_'
		}
		return r
	}, label)
	label = strings.Trim(label, "'")
	if utf8.RuneCountInString(label) > maxSheetNameLen {
		label = string([]rune(label)[:maxSheetNameLen])
	}
	if label == "" {
		return DefaultMonthLabel
	}
	return label
}

// DownloadFilename 下载文件名
func DownloadFilename(monthLabel string) string {
	if strings.TrimSpace(monthLabel) == "" {
		monthLabel = DefaultMonthLabel
	}
	return fmt.Sprintf("MM_변환_%s.xlsx", monthLabel)
}
