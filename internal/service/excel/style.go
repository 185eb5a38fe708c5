package excel

import "github.com/xuri/excelize/v2"

// CellStyle 一类单元格的样式（不可变值）
type CellStyle struct {
	Bold       bool
	FontSize   float64
	Horizontal string
	Vertical   string
	Border     bool
	FillColor  string
	NumFmt     string
}

// StyleSheet 报表中各类单元格的样式
type StyleSheet struct {
	Title   CellStyle
	Header  CellStyle
	Number  CellStyle
	Text    CellStyle
	Percent CellStyle
}

// DefaultStyleSheet 公司报表模板样式
func DefaultStyleSheet() StyleSheet {
	return StyleSheet{
		Title: CellStyle{
			Bold:       true,
			FontSize:   14,
			Horizontal: "left",
		},
		Header: CellStyle{
			Bold:       true,
			Horizontal: "center",
			Vertical:   "center",
			Border:     true,
			FillColor:  "#F2F2F2",
		},
		Number: CellStyle{
			Horizontal: "right",
			Border:     true,
			NumFmt:     "#,##0.0",
		},
		Text: CellStyle{
			Horizontal: "left",
			Border:     true,
		},
		Percent: CellStyle{
			Horizontal: "right",
			Border:     true,
			NumFmt:     "0.0%",
		},
	}
}

// toExcelize 转换为 excelize 样式定义
func (s CellStyle) toExcelize() *excelize.Style {
	st := &excelize.Style{}
	if s.Bold || s.FontSize > 0 {
		st.Font = &excelize.Font{Bold: s.Bold, Size: s.FontSize}
	}
	if s.Horizontal != "" || s.Vertical != "" {
		st.Alignment = &excelize.Alignment{Horizontal: s.Horizontal, Vertical: s.Vertical}
	}
	if s.Border {
		st.Border = thinBorder()
	}
	if s.FillColor != "" {
		st.Fill = excelize.Fill{Type: "pattern", Color: []string{s.FillColor}, Pattern: 1}
	}
	if s.NumFmt != "" {
		numFmt := s.NumFmt
		st.CustomNumFmt = &numFmt
	}
	return st
}

func thinBorder() []excelize.Border {
	sides := []string{"left", "top", "right", "bottom"}
	out := make([]excelize.Border, 0, len(sides))
	for _, side := range sides {
		out = append(out, excelize.Border{Type: side, Color: "000000", Style: 1})
	}
	return out
}

// styleIDs 注册到工作簿后的样式 ID
type styleIDs struct {
	title   int
	header  int
	number  int
	text    int
	percent int
}

func registerStyles(f *excelize.File, sheet StyleSheet) (styleIDs, error) {
	var ids styleIDs
	for _, item := range []struct {
		dst   *int
		style CellStyle
	}{
		{&ids.title, sheet.Title},
		{&ids.header, sheet.Header},
		{&ids.number, sheet.Number},
		{&ids.text, sheet.Text},
		{&ids.percent, sheet.Percent},
	} {
		id, err := f.NewStyle(item.style.toExcelize())
		if err != nil {
			return styleIDs{}, err
		}
		*item.dst = id
	}
	return ids, nil
}
