package excel_test

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Gitae-Kwon/mmreport/internal/model"
	"github.com/Gitae-Kwon/mmreport/internal/service/calculator"
	"github.com/Gitae-Kwon/mmreport/internal/service/excel"
)

// buildUpload 构造一个包含两个月份标签页的上传文件
func buildUpload(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "9월"); err != nil {
		t.Fatalf("SetSheetName failed: %v", err)
	}
	if _, err := f.NewSheet("10월"); err != nil {
		t.Fatalf("NewSheet failed: %v", err)
	}

	rows := [][]interface{}{
		{"부서", "이름", "M/M", "부서"},
		{"플랫폼", "kim", 0.5, "x"},
		{"플랫폼", "lee", 1, "y"},
		{},
		{"인프라", "park", 1.5, "z"},
	}
	for i, r := range rows {
		axis, _ := excelize.CoordinatesToCellName(1, i+1)
		row := r
		if err := f.SetSheetRow("9월", axis, &row); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}
	if err := f.SetCellStr("9월", "C6", "0.25"); err != nil {
		t.Fatalf("SetCellStr failed: %v", err)
	}
	if err := f.SetCellStr("9월", "A6", "인프라"); err != nil {
		t.Fatalf("SetCellStr failed: %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	return buf.Bytes()
}

func TestWorkbook_ListTabs(t *testing.T) {
	wb, err := excel.OpenWorkbook(bytes.NewReader(buildUpload(t)))
	if err != nil {
		t.Fatalf("OpenWorkbook failed: %v", err)
	}
	defer wb.Close()

	if wb.ID() == "" {
		t.Fatalf("workbook id should not be empty")
	}

	tabs, err := wb.ListTabs()
	if err != nil {
		t.Fatalf("ListTabs failed: %v", err)
	}
	if len(tabs) != 2 || tabs[0].Name != "9월" || tabs[1].Name != "10월" {
		t.Fatalf("tabs=%+v", tabs)
	}
	if tabs[0].RowCount != 5 {
		t.Fatalf("9월 rows=%d, want 5", tabs[0].RowCount)
	}
	if tabs[1].RowCount != 0 {
		t.Fatalf("10월 rows=%d, want 0", tabs[1].RowCount)
	}
}

func TestWorkbook_ReadTable(t *testing.T) {
	wb, err := excel.OpenWorkbook(bytes.NewReader(buildUpload(t)))
	if err != nil {
		t.Fatalf("OpenWorkbook failed: %v", err)
	}
	defer wb.Close()

	table, err := wb.ReadTable("9월")
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}

	wantCols := []string{"부서", "이름", "M/M", "부서.1"}
	for i, c := range wantCols {
		if table.Columns[i] != c {
			t.Fatalf("columns=%q, want %q", table.Columns, wantCols)
		}
	}
	// 空行被跳过
	if table.NumRows() != 4 {
		t.Fatalf("rows=%d, want 4", table.NumRows())
	}
	if c := table.At(0, 2); !c.IsNumber() || c.Num != 0.5 {
		t.Fatalf("M/M cell=%+v", c)
	}
	if c := table.At(0, 0); c.Kind != model.CellText || c.Text != "플랫폼" {
		t.Fatalf("부서 cell=%+v", c)
	}
	// 文本形式的数值保持为文本，由分类过程解析
	if c := table.At(3, 2); c.Kind != model.CellText || c.Text != "0.25" {
		t.Fatalf("text number cell=%+v", c)
	}
}

func TestWorkbook_ReadTable_UnknownTab(t *testing.T) {
	wb, err := excel.OpenWorkbook(bytes.NewReader(buildUpload(t)))
	if err != nil {
		t.Fatalf("OpenWorkbook failed: %v", err)
	}
	defer wb.Close()

	_, err = wb.ReadTable("11월")
	if !errors.Is(err, excel.ErrTabNotFound) {
		t.Fatalf("err=%v, want ErrTabNotFound", err)
	}
}

func TestWorkbook_ReadTable_EmptyTab(t *testing.T) {
	wb, err := excel.OpenWorkbook(bytes.NewReader(buildUpload(t)))
	if err != nil {
		t.Fatalf("OpenWorkbook failed: %v", err)
	}
	defer wb.Close()

	table, err := wb.ReadTable("10월")
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if table.NumRows() != 0 || table.NumCols() != 0 {
		t.Fatalf("table=%+v", table)
	}
}

func TestOpenWorkbook_InvalidFile(t *testing.T) {
	if _, err := excel.OpenWorkbook(bytes.NewReader([]byte("not a zip"))); err == nil {
		t.Fatalf("expected error for invalid file")
	}
}

// TestReadComputeRender 上传 → 汇总 → 导出 全流程
func TestReadComputeRender(t *testing.T) {
	wb, err := excel.OpenWorkbook(bytes.NewReader(buildUpload(t)))
	if err != nil {
		t.Fatalf("OpenWorkbook failed: %v", err)
	}
	defer wb.Close()

	table, err := wb.ReadTable("9월")
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	summary := calculator.ComputeSummary(table)
	if !summary.TwoLevel || summary.NumRows() != 4 {
		t.Fatalf("summary rows=%d header=%+v", summary.NumRows(), summary.Header)
	}

	data, err := excel.RenderWorkbook(summary, "9월")
	if err != nil {
		t.Fatalf("RenderWorkbook failed: %v", err)
	}
	out := openRendered(t, data)
	merges, err := out.GetMergeCells("9월")
	if err != nil {
		t.Fatalf("GetMergeCells failed: %v", err)
	}
	if len(merges) != 1 {
		t.Fatalf("merges=%v", merges)
	}
}

// buildDatedUpload 部서 / 날짜（内置日期格式）/ 기준일（自定义格式）/ 매출（千分位格式）
func buildDatedUpload(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"

	for i, h := range []string{"부서", "날짜", "기준일", "매출"} {
		axis, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellStr(sheet, axis, h); err != nil {
			t.Fatalf("SetCellStr failed: %v", err)
		}
	}

	custom := `yyyy"년" mm"월" dd"일"`
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &custom})
	if err != nil {
		t.Fatalf("NewStyle failed: %v", err)
	}
	thousands := "#,##0"
	numStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &thousands})
	if err != nil {
		t.Fatalf("NewStyle failed: %v", err)
	}

	data := []struct {
		dept  string
		day   time.Time
		sales float64
	}{
		{"A", time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), 10},
		{"B", time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC), 30},
	}
	for i, d := range data {
		row := i + 2
		cell := func(col int) string {
			axis, _ := excelize.CoordinatesToCellName(col, row)
			return axis
		}
		if err := f.SetCellStr(sheet, cell(1), d.dept); err != nil {
			t.Fatalf("SetCellStr failed: %v", err)
		}
		if err := f.SetCellValue(sheet, cell(2), d.day); err != nil {
			t.Fatalf("SetCellValue failed: %v", err)
		}
		if err := f.SetCellValue(sheet, cell(3), d.day); err != nil {
			t.Fatalf("SetCellValue failed: %v", err)
		}
		if err := f.SetCellStyle(sheet, cell(3), cell(3), dateStyle); err != nil {
			t.Fatalf("SetCellStyle failed: %v", err)
		}
		if err := f.SetCellFloat(sheet, cell(4), d.sales, -1, 64); err != nil {
			t.Fatalf("SetCellFloat failed: %v", err)
		}
		if err := f.SetCellStyle(sheet, cell(4), cell(4), numStyle); err != nil {
			t.Fatalf("SetCellStyle failed: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	return buf.Bytes()
}

func TestWorkbook_ReadTable_DateCellsAreText(t *testing.T) {
	wb, err := excel.OpenWorkbook(bytes.NewReader(buildDatedUpload(t)))
	if err != nil {
		t.Fatalf("OpenWorkbook failed: %v", err)
	}
	defer wb.Close()

	table, err := wb.ReadTable("Sheet1")
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if table.NumRows() != 2 {
		t.Fatalf("rows=%d, want 2", table.NumRows())
	}
	for _, col := range []int{1, 2} {
		c := table.At(0, col)
		if c.Kind != model.CellText || c.Text == "" {
			t.Fatalf("date cell (0,%d)=%+v, want text", col, c)
		}
	}
	if c := table.At(0, 2); !strings.Contains(c.Text, "2024") {
		t.Fatalf("custom date text=%q", c.Text)
	}
	if c := table.At(1, 3); !c.IsNumber() || c.Num != 30 {
		t.Fatalf("매출 cell=%+v", c)
	}

	schema := calculator.ClassifyColumns(table)
	if got := schema.Numeric(); len(got) != 1 || got[0] != "매출" {
		t.Fatalf("numeric columns=%v, want [매출]", got)
	}

	// 日期列作为分组键，不计入合计
	summary := calculator.ComputeSummary(table)
	if summary.Column(model.TotalLabel, "날짜") >= 0 {
		t.Fatalf("date column summed: header=%+v", summary.Header)
	}
	if summary.Column("날짜", "") < 0 {
		t.Fatalf("date column should be a key: header=%+v", summary.Header)
	}
	share := summary.ShareColumn()
	if share < 0 || summary.NumRows() != 2 {
		t.Fatalf("summary header=%+v rows=%d", summary.Header, summary.NumRows())
	}
	want := map[string]float64{"B": 75, "A": 25}
	for i := 0; i < summary.NumRows(); i++ {
		dept := summary.At(i, 0).Text
		if got := summary.At(i, share).Num; math.Abs(got-want[dept]) > 1e-9 {
			t.Fatalf("%s share=%v, want %v", dept, got, want[dept])
		}
	}
	if summary.At(0, 0).Text != "B" {
		t.Fatalf("first row=%+v, want B", summary.Rows[0])
	}
}
