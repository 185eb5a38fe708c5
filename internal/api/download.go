package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// DownloadExport 一次性下载转换结果
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token이 필요합니다"})
		return
	}

	item, ok := h.downloads.take(token)
	h.refreshGauges()
	if !ok {
		h.opts.Metrics.ObserveDownload("expired")
		h.writeError(c, errDownloadExpired)
		return
	}
	h.opts.Metrics.ObserveDownload("ok")

	c.Header("Content-Disposition", contentDisposition(item.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, item.ContentType, item.Bytes)
}

// contentDisposition attachment 头：ASCII 回退名 + RFC 5987 UTF-8 文件名
func contentDisposition(filename string) string {
	fallback := asciiFilename(filename)
	return fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", fallback, url.PathEscape(filename))
}

func asciiFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('_')
		case r >= 0x20 && r < 0x7f:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), "_ ")
	if out == "" || strings.HasPrefix(out, ".") {
		return "mm-report.xlsx"
	}
	return out
}
