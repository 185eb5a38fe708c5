package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gitae-Kwon/mmreport/internal/model"
	"github.com/Gitae-Kwon/mmreport/internal/store"
)

const maxHistoryLimit = 200

// StatusResponse 系统状态
type StatusResponse struct {
	Version          string         `json:"version"`
	Uptime           string         `json:"uptime"`
	GoogleSheets     bool           `json:"googleSheets"`
	MaxUploadBytes   int64          `json:"maxUploadBytes"`
	PendingUploads   int            `json:"pendingUploads"`
	PendingDownloads int            `json:"pendingDownloads"`
	Conversions      map[string]int `json:"conversions"`
	LastMonthLabel   string         `json:"lastMonthLabel"`
	LastSpreadsheet  string         `json:"lastSpreadsheet"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()
	resp := StatusResponse{
		Version:          h.opts.Version,
		Uptime:           time.Since(h.started).Truncate(time.Second).String(),
		GoogleSheets:     len(h.opts.Credentials) > 0,
		MaxUploadBytes:   h.opts.MaxUploadBytes,
		PendingUploads:   h.uploads.size(),
		PendingDownloads: h.downloads.size(),
		Conversions:      map[string]int{},
	}

	if h.opts.History != nil {
		if counts, err := h.opts.History.CountConversions(ctx); err == nil {
			resp.Conversions = counts
		}
		resp.LastMonthLabel = h.opts.History.GetConfigDefault(ctx, store.KeyLastMonthLabel, "")
		resp.LastSpreadsheet = h.opts.History.GetConfigDefault(ctx, store.KeyLastSpreadsheet, "")
	}

	c.JSON(http.StatusOK, resp)
}

// ListHistory 最近的转换历史
// GET /api/history?limit=50
func (h *Handler) ListHistory(c *gin.Context) {
	limit := store.DefaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit 값이 올바르지 않습니다"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	if h.opts.History == nil {
		c.JSON(http.StatusOK, gin.H{"items": []model.Conversion{}})
		return
	}

	items, err := h.opts.History.ListConversions(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
