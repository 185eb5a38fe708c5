package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mmreport"

// Metrics 转换相关指标；每个实例拥有独立的 Registry，便于测试
type Metrics struct {
	registry *prometheus.Registry

	conversions  *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	summaryRows  prometheus.Gauge
	uploads      prometheus.Counter
	downloads    *prometheus.CounterVec
	pendingBlobs prometheus.Gauge
}

// New 创建并注册全部指标
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Number of conversions by source and result.",
		}, []string{"source", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Time spent summarizing and rendering a tab.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"source"}),
		summaryRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_summary_rows",
			Help:      "Row count of the most recent summary table.",
		}),
		uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Number of accepted workbook uploads.",
		}),
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Download attempts by result.",
		}, []string{"result"}),
		pendingBlobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_blobs",
			Help:      "Uploads and rendered workbooks held in memory.",
		}),
	}

	reg.MustRegister(
		m.conversions,
		m.duration,
		m.summaryRows,
		m.uploads,
		m.downloads,
		m.pendingBlobs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveConversion 记录一次转换
func (m *Metrics) ObserveConversion(source string, elapsed time.Duration, rows int, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.conversions.WithLabelValues(source, result).Inc()
	m.duration.WithLabelValues(source).Observe(elapsed.Seconds())
	if err == nil {
		m.summaryRows.Set(float64(rows))
	}
}

// ObserveUpload 记录一次上传
func (m *Metrics) ObserveUpload() {
	if m == nil {
		return
	}
	m.uploads.Inc()
}

// ObserveDownload 记录下载结果（ok / expired）
func (m *Metrics) ObserveDownload(result string) {
	if m == nil {
		return
	}
	m.downloads.WithLabelValues(result).Inc()
}

// SetPendingBlobs 内存中暂存的对象数
func (m *Metrics) SetPendingBlobs(n int) {
	if m == nil {
		return
	}
	m.pendingBlobs.Set(float64(n))
}

// Registry 底层 Registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
