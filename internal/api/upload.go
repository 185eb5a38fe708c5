package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Gitae-Kwon/mmreport/internal/converter"
	"github.com/Gitae-Kwon/mmreport/internal/model"
	"github.com/Gitae-Kwon/mmreport/internal/service/excel"
)

// UploadResponse 上传结果
type UploadResponse struct {
	Token    string          `json:"token"`
	FileName string          `json:"fileName"`
	FileSize int64           `json:"fileSize"`
	Tabs     []model.TabInfo `json:"tabs"`
}

// ConvertUploadRequest 本地文件转换请求
type ConvertUploadRequest struct {
	Tab        string `json:"tab" binding:"required,label"`
	MonthLabel string `json:"monthLabel" binding:"omitempty,label"`
}

// Upload 上传 xlsx 并返回标签页列表
// POST /api/upload
func (h *Handler) Upload(c *gin.Context) {
	// multipart 额外开销预留 1MB
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes+1<<20)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "파일을 업로드해 주세요"})
		return
	}
	defer file.Close()

	if header.Size > h.opts.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("파일이 너무 큽니다 (최대 %dMB)", h.opts.MaxUploadBytes>>20),
		})
		return
	}

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "xlsx 파일만 지원합니다"})
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "파일을 읽을 수 없습니다"})
		return
	}

	wb, err := excel.OpenWorkbook(bytes.NewReader(content))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "엑셀 파일을 열 수 없습니다: " + err.Error()})
		return
	}
	defer wb.Close()

	tabs, err := wb.ListTabs()
	if err != nil {
		h.writeError(c, err)
		return
	}

	token, _ := h.uploads.put(&uploadedWorkbook{
		FileName: header.Filename,
		Bytes:    content,
		Tabs:     tabs,
	})
	h.opts.Metrics.ObserveUpload()
	h.refreshGauges()

	c.JSON(http.StatusOK, UploadResponse{
		Token:    token,
		FileName: header.Filename,
		FileSize: int64(len(content)),
		Tabs:     tabs,
	})
}

// GetUpload 已上传文件的标签页列表
// GET /api/upload/:token
func (h *Handler) GetUpload(c *gin.Context) {
	up, ok := h.uploads.get(c.Param("token"))
	if !ok {
		h.writeError(c, errUploadExpired)
		return
	}
	c.JSON(http.StatusOK, UploadResponse{
		Token:    c.Param("token"),
		FileName: up.FileName,
		FileSize: int64(len(up.Bytes)),
		Tabs:     up.Tabs,
	})
}

// DeleteUpload 提前释放已上传的文件
// DELETE /api/upload/:token
func (h *Handler) DeleteUpload(c *gin.Context) {
	h.uploads.delete(c.Param("token"))
	h.refreshGauges()
	c.Status(http.StatusNoContent)
}

// ConvertUpload 转换已上传文件中的一个标签页
// POST /api/upload/:token/convert
func (h *Handler) ConvertUpload(c *gin.Context) {
	up, ok := h.uploads.get(c.Param("token"))
	if !ok {
		h.writeError(c, errUploadExpired)
		return
	}

	var req ConvertUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}

	wb, err := excel.OpenWorkbook(bytes.NewReader(up.Bytes))
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer wb.Close()

	table, err := wb.ReadTable(req.Tab)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.convertAndRespond(c, table, converter.Options{
		MonthLabel: req.MonthLabel,
		Source:     model.SourceXLSX,
		SourceName: up.FileName,
		Tab:        req.Tab,
	})
}
