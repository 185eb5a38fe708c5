package gsheet

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Gitae-Kwon/mmreport/internal/model"
)

var (
	// ErrEmptyTab 标签页没有任何单元格（连表头都没有）
	ErrEmptyTab = errors.New("tab is empty")
	// ErrNoSpreadsheet 未提供表格 ID 或 URL
	ErrNoSpreadsheet = errors.New("spreadsheet id is required")
)

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// ParseSpreadsheetID 支持完整 URL 或裸 ID
func ParseSpreadsheetID(s string) (string, error) {
	if m := spreadsheetIDPattern.FindStringSubmatch(s); m != nil {
		return m[1], nil
	}
	id := strings.TrimSpace(s)
	if id == "" {
		return "", ErrNoSpreadsheet
	}
	return id, nil
}

// Client Google Sheets 只读客户端（远程数据源）
type Client struct {
	svc *sheets.Service
}

// NewClient 使用服务账号 JSON 创建客户端
// credentialsJSON 为空时只使用调用方传入的 option（测试中用于指向本地 endpoint）。
func NewClient(ctx context.Context, credentialsJSON []byte, opts ...option.ClientOption) (*Client, error) {
	all := make([]option.ClientOption, 0, len(opts)+2)
	if len(credentialsJSON) > 0 {
		all = append(all,
			option.WithCredentialsJSON(credentialsJSON),
			option.WithScopes(sheets.SpreadsheetsReadonlyScope),
		)
	}
	all = append(all, opts...)

	svc, err := sheets.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// ListTabs 标签页列表（按表格中的顺序）
// RowCount 取网格行数减去表头，仅作参考。
func (c *Client) ListTabs(ctx context.Context, spreadsheetID string) ([]model.TabInfo, error) {
	resp, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet %s: %w", spreadsheetID, err)
	}

	tabs := make([]model.TabInfo, 0, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh == nil || sh.Properties == nil {
			continue
		}
		info := model.TabInfo{Name: sh.Properties.Title}
		if g := sh.Properties.GridProperties; g != nil && g.RowCount > 1 {
			info.RowCount = int(g.RowCount - 1)
		}
		tabs = append(tabs, info)
	}
	return tabs, nil
}

// ReadTable 读取整个标签页：第一行为表头，其余为数据，值一律按显示文本读取
func (c *Client) ReadTable(ctx context.Context, spreadsheetID, tab string) (*model.Table, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, quoteRange(tab)).
		ValueRenderOption("FORMATTED_VALUE").
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read tab %s: %w", tab, err)
	}
	if len(resp.Values) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyTab, tab)
	}
	return valuesToTable(resp.Values), nil
}

// quoteRange A1 表示法中整个标签页的范围，单引号需要转义
func quoteRange(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

// valuesToTable 接口会省略行尾空单元格，按最宽的行补齐
func valuesToTable(values [][]interface{}) *model.Table {
	width := 0
	for _, r := range values {
		if len(r) > width {
			width = len(r)
		}
	}

	header := make([]string, width)
	for j, v := range values[0] {
		header[j] = fmt.Sprint(v)
	}

	// 整行为空的数据行跳过，与 xlsx 读取一致
	rows := make([][]model.Cell, 0, len(values)-1)
	for _, r := range values[1:] {
		cells := make([]model.Cell, width)
		blank := true
		for j, v := range r {
			s := fmt.Sprint(v)
			if v == nil || s == "" {
				cells[j] = model.Empty()
				continue
			}
			cells[j] = model.Text(s)
			if !cells[j].IsBlank() {
				blank = false
			}
		}
		if blank {
			continue
		}
		rows = append(rows, cells)
	}
	return model.NewTable(model.NormalizeColumns(header), rows)
}
