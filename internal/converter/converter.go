package converter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Gitae-Kwon/mmreport/internal/metrics"
	"github.com/Gitae-Kwon/mmreport/internal/model"
	"github.com/Gitae-Kwon/mmreport/internal/service/calculator"
	"github.com/Gitae-Kwon/mmreport/internal/service/excel"
	"github.com/Gitae-Kwon/mmreport/internal/service/preview"
)

// HistoryRecorder 转换历史的持久化接口
type HistoryRecorder interface {
	RecordConversion(ctx context.Context, c model.Conversion) error
}

// Config 转换配置
type Config struct {
	Layout            excel.Layout
	DefaultMonthLabel string
}

// Converter 转换协调器：汇总 → 预览 → 工作簿
type Converter struct {
	writer       *excel.WorkbookWriter
	defaultLabel string
	history      HistoryRecorder
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time
}

// Option 可选依赖
type Option func(*Converter)

// WithHistory 记录转换历史
func WithHistory(h HistoryRecorder) Option {
	return func(c *Converter) { c.history = h }
}

// WithMetrics 记录转换指标
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Converter) { c.metrics = m }
}

// WithLogger 指定 logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// New 创建转换协调器
func New(cfg Config, opts ...Option) *Converter {
	label := strings.TrimSpace(cfg.DefaultMonthLabel)
	if label == "" {
		label = excel.DefaultMonthLabel
	}
	c := &Converter{
		writer:       excel.NewWorkbookWriter(cfg.Layout),
		defaultLabel: label,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Options 单次转换参数
type Options struct {
	MonthLabel string // 为空时取 Tab，再为空取默认标签
	Source     string // xlsx / gsheet
	SourceName string // 文件名或表格 ID
	Tab        string
	Progress   ProgressFunc
}

// Result 转换结果
type Result struct {
	ID          string              `json:"id"`
	MonthLabel  string              `json:"monthLabel"`
	Summary     *model.SummaryTable `json:"summary"`
	HTML        string              `json:"html"`
	Workbook    []byte              `json:"-"`
	Filename    string              `json:"filename"`
	ContentType string              `json:"contentType"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// MonthLabel 解析最终使用的月份标签
func (c *Converter) MonthLabel(opts Options) string {
	if l := strings.TrimSpace(opts.MonthLabel); l != "" {
		return l
	}
	if t := strings.TrimSpace(opts.Tab); t != "" {
		return t
	}
	return c.defaultLabel
}

// Convert 对一个标签页执行完整转换
func (c *Converter) Convert(ctx context.Context, table *model.Table, opts Options) (*Result, error) {
	start := c.now()
	label := c.MonthLabel(opts)
	rec := model.Conversion{
		ID:         uuid.NewString(),
		Source:     opts.Source,
		SourceName: opts.SourceName,
		Tab:        opts.Tab,
		MonthLabel: label,
		InputRows:  table.NumRows(),
		CreatedAt:  start,
	}

	reportProgress(opts.Progress, StageStart, 0, fmt.Sprintf("开始转换 %s", label))

	if err := ctx.Err(); err != nil {
		return nil, c.fail(ctx, rec, opts, start, err)
	}

	summary := calculator.ComputeSummary(table)
	rec.SummaryRows = summary.NumRows()
	reportProgress(opts.Progress, StageSummary, 30, fmt.Sprintf("汇总完成: %d 行", summary.NumRows()))

	html := preview.Render(summary)
	reportProgress(opts.Progress, StagePreview, 50, "预览已生成")

	if err := ctx.Err(); err != nil {
		return nil, c.fail(ctx, rec, opts, start, err)
	}

	data, err := c.writer.Render(summary, label)
	if err != nil {
		return nil, c.fail(ctx, rec, opts, start, fmt.Errorf("failed to render workbook: %w", err))
	}
	rec.Bytes = len(data)
	reportProgress(opts.Progress, StageWorkbook, 90, fmt.Sprintf("工作簿已生成: %d 字节", len(data)))

	rec.Status = model.ConversionOK
	c.record(ctx, rec)
	c.metrics.ObserveConversion(opts.Source, c.now().Sub(start), summary.NumRows(), nil)

	c.logger.InfoContext(ctx, "conversion finished",
		slog.String("id", rec.ID),
		slog.String("source", opts.Source),
		slog.String("tab", opts.Tab),
		slog.String("month", label),
		slog.Int("input_rows", rec.InputRows),
		slog.Int("summary_rows", rec.SummaryRows),
	)
	reportProgress(opts.Progress, StageDone, 100, "转换完成")

	return &Result{
		ID:          rec.ID,
		MonthLabel:  label,
		Summary:     summary,
		HTML:        html,
		Workbook:    data,
		Filename:    excel.DownloadFilename(label),
		ContentType: excel.ContentType,
		CreatedAt:   start,
	}, nil
}

func (c *Converter) fail(ctx context.Context, rec model.Conversion, opts Options, start time.Time, err error) error {
	rec.Status = model.ConversionFailed
	rec.Error = err.Error()
	c.record(context.WithoutCancel(ctx), rec)
	c.metrics.ObserveConversion(opts.Source, c.now().Sub(start), 0, err)
	c.logger.ErrorContext(ctx, "conversion failed",
		slog.String("id", rec.ID),
		slog.String("tab", opts.Tab),
		slog.String("error", err.Error()),
	)
	reportProgress(opts.Progress, StageError, 100, err.Error())
	return err
}

// record 历史写入失败只记录日志，不影响转换结果
func (c *Converter) record(ctx context.Context, rec model.Conversion) {
	if c.history == nil {
		return
	}
	if err := c.history.RecordConversion(ctx, rec); err != nil {
		c.logger.WarnContext(ctx, "failed to record conversion",
			slog.String("id", rec.ID),
			slog.String("error", err.Error()),
		)
	}
}
