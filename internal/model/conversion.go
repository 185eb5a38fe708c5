package model

import "time"

// 数据来源
const (
	SourceXLSX   = "xlsx"
	SourceGSheet = "gsheet"
)

// 转换状态
const (
	ConversionOK     = "ok"
	ConversionFailed = "failed"
)

// Conversion 一次转换的历史记录（只保存元数据，不保存汇总结果）
type Conversion struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	SourceName  string    `json:"sourceName"`
	Tab         string    `json:"tab"`
	MonthLabel  string    `json:"monthLabel"`
	InputRows   int       `json:"inputRows"`
	SummaryRows int       `json:"summaryRows"`
	Bytes       int       `json:"bytes"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
