package converter

import "time"

// 进度阶段
const (
	StageStart    = "start"
	StageSummary  = "summary"
	StagePreview  = "preview"
	StageWorkbook = "workbook"
	StageDone     = "done"
	StageError    = "error"
)

// ProgressEvent 转换进度事件（同步回调）
type ProgressEvent struct {
	Type      string    `json:"type"`
	Percent   int       `json:"percent"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ProgressFunc 进度回调
type ProgressFunc func(ProgressEvent)

func reportProgress(progress ProgressFunc, stage string, percent int, message string) {
	if progress == nil {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	progress(ProgressEvent{
		Type:      stage,
		Percent:   percent,
		Message:   message,
		Timestamp: time.Now(),
	})
}
