package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gitae-Kwon/mmreport/internal/api"
	"github.com/Gitae-Kwon/mmreport/internal/config"
	"github.com/Gitae-Kwon/mmreport/internal/converter"
	"github.com/Gitae-Kwon/mmreport/internal/logging"
	"github.com/Gitae-Kwon/mmreport/internal/metrics"
	"github.com/Gitae-Kwon/mmreport/internal/service/excel"
	"github.com/Gitae-Kwon/mmreport/internal/store"
)

//go:embed web/index.html
var webFS embed.FS

// Version 构建版本（由 -ldflags 注入）
var Version = "dev"

// Server HTTP 服务器
type Server struct {
	router  *gin.Engine
	store   *store.Store
	api     *api.Handler
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewServer 创建服务器：初始化存储、转换器与路由
func NewServer(cfg *config.AppConfig, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	sqliteStore, err := store.New(filepath.Join(dataDir, store.DefaultFilename))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	creds, err := config.ReadCredentials(cfg)
	if err != nil {
		// 没有默认凭据时仍可在请求中提供
		logger.Warn("google credentials unavailable", slog.String("error", err.Error()))
	}

	m := metrics.New()
	conv := converter.New(converter.Config{
		Layout: excel.Layout{
			TitlePrefix: cfg.Report.TitlePrefix,
			ColumnWidth: cfg.Report.ColumnWidth,
		},
		DefaultMonthLabel: cfg.Report.DefaultMonthLabel,
	},
		converter.WithHistory(sqliteStore),
		converter.WithMetrics(m),
		converter.WithLogger(logger),
	)

	handler := api.NewHandler(conv, api.Options{
		Version:        Version,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		DownloadTTL:    cfg.DownloadTTL(),
		Credentials:    creds,
		History:        sqliteStore,
		Metrics:        m,
		Logger:         logger,
	})

	router := gin.New()
	router.Use(gin.Recovery(), logging.Middleware(logger))

	s := &Server{
		router:  router,
		store:   sqliteStore,
		api:     handler,
		metrics: m,
		logger:  logger,
	}
	s.setupRoutes(cfg.Server.DevMode)
	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) {
	if devMode {
		// 开发模式允许前端从其他端口访问
		s.router.Use(func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type")
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
			c.Next()
		})
	}

	s.api.RegisterRoutes(s.router.Group("/api"))
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	s.router.GET("/", s.serveIndex)
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

func (s *Server) serveIndex(c *gin.Context) {
	data, err := webFS.ReadFile("web/index.html")
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

// Handler 底层 http.Handler（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器，ctx 结束后优雅关闭
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Close 释放存储
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
