package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/api/googleapi"

	"github.com/Gitae-Kwon/mmreport/internal/converter"
	"github.com/Gitae-Kwon/mmreport/internal/model"
	"github.com/Gitae-Kwon/mmreport/internal/service/excel"
	"github.com/Gitae-Kwon/mmreport/internal/service/gsheet"
	"github.com/Gitae-Kwon/mmreport/internal/store"
)

var (
	errNoCredentials   = errors.New("google service account credentials are required")
	errBadCredentials  = errors.New("credentials must be a service account JSON object")
	errUploadExpired   = errors.New("upload token expired")
	errDownloadExpired = errors.New("download token expired")
)

// ConvertResponse 转换结果（预览 + 一次性下载链接）
type ConvertResponse struct {
	ID          string             `json:"id"`
	MonthLabel  string             `json:"monthLabel"`
	Filename    string             `json:"filename"`
	HTML        string             `json:"html"`
	Rows        int                `json:"rows"`
	TwoLevel    bool               `json:"twoLevel"`
	Header      []model.HeaderPair `json:"header"`
	DownloadURL string             `json:"downloadUrl"`
	ExpiresAt   time.Time          `json:"expiresAt"`
}

// convertAndRespond 执行转换，暂存工作簿并返回预览
func (h *Handler) convertAndRespond(c *gin.Context, table *model.Table, opts converter.Options) {
	ctx := c.Request.Context()

	res, err := h.conv.Convert(ctx, table, opts)
	if err != nil {
		h.writeError(c, err)
		return
	}

	token, expiresAt := h.downloads.put(&pendingDownload{
		Filename:    res.Filename,
		ContentType: res.ContentType,
		Bytes:       res.Workbook,
	})
	h.refreshGauges()
	h.remember(ctx, store.KeyLastMonthLabel, res.MonthLabel)

	c.JSON(http.StatusOK, ConvertResponse{
		ID:          res.ID,
		MonthLabel:  res.MonthLabel,
		Filename:    res.Filename,
		HTML:        res.HTML,
		Rows:        res.Summary.NumRows(),
		TwoLevel:    res.Summary.TwoLevel,
		Header:      res.Summary.Header,
		DownloadURL: "/api/export/download/" + token,
		ExpiresAt:   expiresAt,
	})
}

// writeError 错误 → HTTP 状态码 + {"error": "..."}
func (h *Handler) writeError(c *gin.Context, err error) {
	status, msg := classifyError(err)
	if status >= http.StatusInternalServerError {
		h.opts.Logger.ErrorContext(c.Request.Context(), "request failed",
			"path", c.FullPath(), "error", err.Error())
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": msg})
}

func classifyError(err error) (int, string) {
	var gerr *googleapi.Error
	switch {
	case errors.Is(err, excel.ErrTabNotFound):
		return http.StatusNotFound, "탭을 찾을 수 없습니다: " + err.Error()
	case errors.Is(err, gsheet.ErrEmptyTab):
		return http.StatusUnprocessableEntity, "탭에 데이터가 없습니다"
	case errors.Is(err, gsheet.ErrNoSpreadsheet):
		return http.StatusBadRequest, "스프레드시트 ID 또는 URL을 입력해 주세요"
	case errors.Is(err, errNoCredentials):
		return http.StatusBadRequest, "서비스 계정 JSON이 필요합니다"
	case errors.Is(err, errBadCredentials):
		return http.StatusBadRequest, "서비스 계정 JSON 형식이 올바르지 않습니다"
	case errors.Is(err, errUploadExpired):
		return http.StatusNotFound, "업로드가 만료되었습니다. 파일을 다시 올려 주세요"
	case errors.Is(err, errDownloadExpired):
		return http.StatusNotFound, "다운로드 링크가 만료되었습니다"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "요청 시간이 초과되었습니다"
	case errors.As(err, &gerr):
		switch gerr.Code {
		case http.StatusNotFound:
			return http.StatusNotFound, "스프레드시트를 찾을 수 없습니다"
		case http.StatusBadRequest:
			// 不存在的标签页表现为无法解析 range
			return http.StatusNotFound, "탭을 찾을 수 없습니다: " + gerr.Message
		case http.StatusForbidden, http.StatusUnauthorized:
			return http.StatusForbidden, "스프레드시트에 접근할 권한이 없습니다"
		}
		return http.StatusBadGateway, "Google Sheets 요청 실패: " + gerr.Message
	}
	return http.StatusInternalServerError, "변환 실패: " + err.Error()
}
