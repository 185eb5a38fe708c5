package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gitae-Kwon/mmreport/internal/converter"
	"github.com/Gitae-Kwon/mmreport/internal/metrics"
	"github.com/Gitae-Kwon/mmreport/internal/model"
	"github.com/Gitae-Kwon/mmreport/internal/service/gsheet"
)

// HistoryStore 转换历史与键值配置
type HistoryStore interface {
	ListConversions(ctx context.Context, limit int) ([]model.Conversion, error)
	CountConversions(ctx context.Context) (map[string]int, error)
	SetConfig(ctx context.Context, key, value string) error
	GetConfigDefault(ctx context.Context, key, def string) string
}

// SheetSource 远程表格数据源
type SheetSource interface {
	ListTabs(ctx context.Context, spreadsheetID string) ([]model.TabInfo, error)
	ReadTable(ctx context.Context, spreadsheetID, tab string) (*model.Table, error)
}

// SheetSourceFactory 按服务账号凭据创建数据源
type SheetSourceFactory func(ctx context.Context, credentials []byte) (SheetSource, error)

// Options 处理器配置
type Options struct {
	Version        string
	MaxUploadBytes int64
	UploadTTL      time.Duration
	DownloadTTL    time.Duration
	// Credentials 请求未携带凭据时使用的服务账号 JSON
	Credentials []byte
	Sheets      SheetSourceFactory
	History     HistoryStore
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

const (
	defaultMaxUploadBytes = 20 << 20
	defaultUploadTTL      = 30 * time.Minute
	defaultDownloadTTL    = 10 * time.Minute
)

type uploadedWorkbook struct {
	FileName string
	Bytes    []byte
	Tabs     []model.TabInfo
}

type pendingDownload struct {
	Filename    string
	ContentType string
	Bytes       []byte
}

// Handler HTTP API 处理器
type Handler struct {
	conv      *converter.Converter
	opts      Options
	uploads   *blobStore[*uploadedWorkbook]
	downloads *blobStore[*pendingDownload]
	started   time.Time
}

// NewHandler 创建 API 处理器
func NewHandler(conv *converter.Converter, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.UploadTTL <= 0 {
		opts.UploadTTL = defaultUploadTTL
	}
	if opts.DownloadTTL <= 0 {
		opts.DownloadTTL = defaultDownloadTTL
	}
	if opts.Sheets == nil {
		opts.Sheets = defaultSheetSource
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	registerValidators()

	return &Handler{
		conv:      conv,
		opts:      opts,
		uploads:   newBlobStore[*uploadedWorkbook](opts.UploadTTL),
		downloads: newBlobStore[*pendingDownload](opts.DownloadTTL),
		started:   time.Now(),
	}
}

func defaultSheetSource(ctx context.Context, credentials []byte) (SheetSource, error) {
	c, err := gsheet.NewClient(ctx, credentials)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.GetStatus)
	router.GET("/history", h.ListHistory)

	// 本地 xlsx
	router.POST("/upload", h.Upload)
	router.GET("/upload/:token", h.GetUpload)
	router.DELETE("/upload/:token", h.DeleteUpload)
	router.POST("/upload/:token/convert", h.ConvertUpload)

	// Google Sheets
	router.POST("/gsheet/tabs", h.ListSheetTabs)
	router.POST("/gsheet/convert", h.ConvertSheet)

	// 下载（一次性）
	router.GET("/export/download/:token", h.DownloadExport)
}

func (h *Handler) refreshGauges() {
	h.opts.Metrics.SetPendingBlobs(h.uploads.size() + h.downloads.size())
}

// remember 记录最近使用的值；失败只记日志
func (h *Handler) remember(ctx context.Context, key, value string) {
	if h.opts.History == nil || value == "" {
		return
	}
	if err := h.opts.History.SetConfig(ctx, key, value); err != nil {
		h.opts.Logger.WarnContext(ctx, "failed to save config", slog.String("key", key), slog.String("error", err.Error()))
	}
}
