package preview

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Gitae-Kwon/mmreport/internal/model"
)

// TableClass 预览表格的 class 属性
const TableClass = "table"

// Render 生成汇总表的 HTML 片段（非完整文档）
// 数值统一保留 1 位小数；两级表头输出两行表头，单级输出一行；不输出行号。
// 样式通过表格 id 限定作用域，同一输入得到相同输出。
func Render(summary *model.SummaryTable) string {
	if summary == nil {
		summary = &model.SummaryTable{}
	}

	var body strings.Builder
	writeHead(&body, summary)
	writeBody(&body, summary)

	id := scopeID(body.String())

	var b strings.Builder
	b.Grow(body.Len() + 256)
	b.WriteString(`<style type="text/css">` + "\n")
	fmt.Fprintf(&b, "#%s th {text-align: center; background-color: #f6f8fa;}\n", id)
	fmt.Fprintf(&b, "#%s td {text-align: right;}\n", id)
	fmt.Fprintf(&b, "#%s td.text {text-align: left;}\n", id)
	b.WriteString("</style>\n")
	fmt.Fprintf(&b, "<table id=\"%s\" class=\"%s\">\n", id, TableClass)
	b.WriteString(body.String())
	b.WriteString("</table>\n")
	return b.String()
}

// scopeID 由表格内容派生的稳定 id
func scopeID(content string) string {
	u := uuid.NewSHA1(uuid.NameSpaceOID, []byte(content))
	return "T_" + strings.ReplaceAll(u.String(), "-", "")[:12]
}

func writeHead(b *strings.Builder, s *model.SummaryTable) {
	b.WriteString("<thead>\n")
	if s.NumCols() > 0 {
		if s.TwoLevel {
			b.WriteString("<tr>")
			for _, band := range model.HeaderBands(s.TopLabels()) {
				if band.Span() > 1 {
					fmt.Fprintf(b, `<th colspan="%d">%s</th>`, band.Span(), html.EscapeString(band.Label))
				} else {
					fmt.Fprintf(b, "<th>%s</th>", html.EscapeString(band.Label))
				}
			}
			b.WriteString("</tr>\n")
			writeHeaderRow(b, s.SubLabels())
		} else {
			writeHeaderRow(b, s.TopLabels())
		}
	}
	b.WriteString("</thead>\n")
}

func writeHeaderRow(b *strings.Builder, labels []string) {
	b.WriteString("<tr>")
	for _, l := range labels {
		fmt.Fprintf(b, "<th>%s</th>", html.EscapeString(l))
	}
	b.WriteString("</tr>\n")
}

func writeBody(b *strings.Builder, s *model.SummaryTable) {
	b.WriteString("<tbody>\n")
	n := s.NumCols()
	for i := range s.Rows {
		b.WriteString("<tr>")
		for j := 0; j < n; j++ {
			c := s.At(i, j)
			if c.IsNumber() {
				fmt.Fprintf(b, "<td>%s</td>", FormatValue(c.Num))
				continue
			}
			fmt.Fprintf(b, `<td class="text">%s</td>`, html.EscapeString(c.String()))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n")
}

// FormatValue 数值保留 1 位小数
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
