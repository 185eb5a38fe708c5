package converter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Gitae-Kwon/mmreport/internal/metrics"
	"github.com/Gitae-Kwon/mmreport/internal/model"
)

type memoryHistory struct {
	mu      sync.Mutex
	records []model.Conversion
	err     error
}

func (h *memoryHistory) RecordConversion(_ context.Context, c model.Conversion) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.records = append(h.records, c)
	return nil
}

func revenueTable() *model.Table {
	return model.NewTable(
		[]string{"부서", "매출", "비용"},
		[][]model.Cell{
			{model.Text("A"), model.Number(10), model.Number(1)},
			{model.Text("A"), model.Number(20), model.Number(1)},
			{model.Text("B"), model.Number(30), model.Number(0)},
		},
	)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestConvert(t *testing.T) {
	history := &memoryHistory{}
	m := metrics.New()
	c := New(Config{}, WithHistory(history), WithMetrics(m), WithLogger(quietLogger()))

	var stages []string
	res, err := c.Convert(context.Background(), revenueTable(), Options{
		Source:     model.SourceXLSX,
		SourceName: "mm.xlsx",
		Tab:        "9월",
		Progress: func(ev ProgressEvent) {
			stages = append(stages, ev.Type)
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{StageStart, StageSummary, StagePreview, StageWorkbook, StageDone}, stages)
	assert.Equal(t, "9월", res.MonthLabel)
	assert.Equal(t, "MM_변환_9월.xlsx", res.Filename)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", res.ContentType)
	assert.NotEmpty(t, res.ID)
	assert.Contains(t, res.HTML, "<table")
	assert.Equal(t, 2, res.Summary.NumRows())

	f, err := excelize.OpenReader(bytes.NewReader(res.Workbook))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"9월"}, f.GetSheetList())

	require.Len(t, history.records, 1)
	rec := history.records[0]
	assert.Equal(t, res.ID, rec.ID)
	assert.Equal(t, model.ConversionOK, rec.Status)
	assert.Equal(t, 3, rec.InputRows)
	assert.Equal(t, 2, rec.SummaryRows)
	assert.Equal(t, len(res.Workbook), rec.Bytes)
	assert.Equal(t, "mm.xlsx", rec.SourceName)

	assert.Equal(t, 1, testutil.CollectAndCount(m.Registry(), "mmreport_conversions_total"))
}

func TestConvert_MonthLabelFallback(t *testing.T) {
	c := New(Config{DefaultMonthLabel: "당월"}, WithLogger(quietLogger()))

	assert.Equal(t, "10월", c.MonthLabel(Options{MonthLabel: " 10월 ", Tab: "9월"}))
	assert.Equal(t, "9월", c.MonthLabel(Options{Tab: "9월"}))
	assert.Equal(t, "당월", c.MonthLabel(Options{}))

	res, err := c.Convert(context.Background(), revenueTable(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "MM_변환_당월.xlsx", res.Filename)
}

func TestConvert_EmptyTable(t *testing.T) {
	c := New(Config{}, WithLogger(quietLogger()))

	res, err := c.Convert(context.Background(), model.NewTable(nil, nil), Options{Tab: "빈탭"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Summary.NumRows())
	assert.NotEmpty(t, res.Workbook)
}

func TestConvert_Cancelled(t *testing.T) {
	history := &memoryHistory{}
	c := New(Config{}, WithHistory(history), WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var last ProgressEvent
	_, err := c.Convert(ctx, revenueTable(), Options{Tab: "9월", Progress: func(ev ProgressEvent) { last = ev }})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StageError, last.Type)

	require.Len(t, history.records, 1)
	assert.Equal(t, model.ConversionFailed, history.records[0].Status)
	assert.NotEmpty(t, history.records[0].Error)
}

func TestConvert_HistoryFailureIsNotFatal(t *testing.T) {
	history := &memoryHistory{err: errors.New("disk full")}
	c := New(Config{}, WithHistory(history), WithLogger(quietLogger()))

	res, err := c.Convert(context.Background(), revenueTable(), Options{Tab: "9월"})
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestConvert_Idempotent(t *testing.T) {
	c := New(Config{}, WithLogger(quietLogger()))

	a, err := c.Convert(context.Background(), revenueTable(), Options{Tab: "9월"})
	require.NoError(t, err)
	b, err := c.Convert(context.Background(), revenueTable(), Options{Tab: "9월"})
	require.NoError(t, err)

	assert.Equal(t, a.HTML, b.HTML)
	assert.Equal(t, a.Summary, b.Summary)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestReportProgress_Clamps(t *testing.T) {
	var got []int
	fn := func(ev ProgressEvent) { got = append(got, ev.Percent) }
	reportProgress(fn, StageStart, -5, "")
	reportProgress(fn, StageDone, 150, "")
	reportProgress(nil, StageDone, 100, "")
	assert.Equal(t, []int{0, 100}, got)
}
