package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveConversion(t *testing.T) {
	m := New()

	m.ObserveConversion("xlsx", 10*time.Millisecond, 4, nil)
	m.ObserveConversion("xlsx", 5*time.Millisecond, 0, errors.New("boom"))
	m.ObserveConversion("gsheet", time.Millisecond, 2, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.conversions.WithLabelValues("xlsx", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conversions.WithLabelValues("xlsx", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.summaryRows))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveConversion("xlsx", time.Second, 1, nil)
	m.ObserveUpload()
	m.ObserveDownload("ok")
	m.SetPendingBlobs(3)
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveUpload()
	m.ObserveDownload("expired")
	m.SetPendingBlobs(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "mmreport_uploads_total 1")
	assert.Contains(t, string(body), `mmreport_downloads_total{result="expired"} 1`)
	assert.Contains(t, string(body), "mmreport_pending_blobs 2")
}
