package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gitae-Kwon/mmreport/internal/converter"
	"github.com/Gitae-Kwon/mmreport/internal/model"
	"github.com/Gitae-Kwon/mmreport/internal/service/gsheet"
	"github.com/Gitae-Kwon/mmreport/internal/store"
)

const sheetsTimeout = 30 * time.Second

// SheetTabsRequest 标签页列表请求
// Credentials 可以是 JSON 对象，也可以是包含 JSON 的字符串；省略时使用服务端配置。
type SheetTabsRequest struct {
	Credentials json.RawMessage `json:"credentials"`
	Spreadsheet string          `json:"spreadsheet" binding:"required,spreadsheet"`
}

// SheetConvertRequest 远程标签页转换请求
type SheetConvertRequest struct {
	SheetTabsRequest
	Tab        string `json:"tab" binding:"required,label"`
	MonthLabel string `json:"monthLabel" binding:"omitempty,label"`
}

// SheetTabsResponse 标签页列表
type SheetTabsResponse struct {
	SpreadsheetID string          `json:"spreadsheetId"`
	Tabs          []model.TabInfo `json:"tabs"`
}

// ListSheetTabs 列出 Google 表格的标签页
// POST /api/gsheet/tabs
func (h *Handler) ListSheetTabs(c *gin.Context) {
	var req SheetTabsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), sheetsTimeout)
	defer cancel()

	id, src, err := h.openSheet(ctx, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	tabs, err := src.ListTabs(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.remember(ctx, store.KeyLastSpreadsheet, id)

	c.JSON(http.StatusOK, SheetTabsResponse{SpreadsheetID: id, Tabs: tabs})
}

// ConvertSheet 读取 Google 表格的一个标签页并转换
// POST /api/gsheet/convert
func (h *Handler) ConvertSheet(c *gin.Context) {
	var req SheetConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), sheetsTimeout)
	defer cancel()

	id, src, err := h.openSheet(ctx, req.SheetTabsRequest)
	if err != nil {
		h.writeError(c, err)
		return
	}

	table, err := src.ReadTable(ctx, id, req.Tab)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.convertAndRespond(c, table, converter.Options{
		MonthLabel: req.MonthLabel,
		Source:     model.SourceGSheet,
		SourceName: id,
		Tab:        req.Tab,
	})
}

func (h *Handler) openSheet(ctx context.Context, req SheetTabsRequest) (string, SheetSource, error) {
	id, err := gsheet.ParseSpreadsheetID(req.Spreadsheet)
	if err != nil {
		return "", nil, err
	}
	creds, err := h.credentials(req.Credentials)
	if err != nil {
		return "", nil, err
	}
	src, err := h.opts.Sheets(ctx, creds)
	if err != nil {
		return "", nil, err
	}
	return id, src, nil
}

// credentials 解析请求中的服务账号 JSON
func (h *Handler) credentials(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 || string(raw) == "null" {
		if len(h.opts.Credentials) == 0 {
			return nil, errNoCredentials
		}
		return h.opts.Credentials, nil
	}

	data := []byte(raw)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return h.credentials(nil)
		}
		data = []byte(s)
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, errBadCredentials
	}
	return data, nil
}
