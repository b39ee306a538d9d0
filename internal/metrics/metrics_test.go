package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCommit(t *testing.T) {
	m := New()
	m.RecordCommit("task", nil)
	m.RecordCommit("project", nil)
	m.RecordCommit("project", errors.New("boom"))

	assert.InDelta(t, 1, testutil.ToFloat64(m.TimerCommitsTotal.WithLabelValues("task", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.TimerCommitsTotal.WithLabelValues("project", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.TimerCommitsTotal.WithLabelValues("project", "error")), 0)
}

func TestRecordResetSkipsPeriodsOnError(t *testing.T) {
	m := New()
	m.RecordReset([]string{"daily", "weekly"}, nil)
	m.RecordReset([]string{"monthly"}, errors.New("commit failed"))

	assert.InDelta(t, 1, testutil.ToFloat64(m.ResetBatchesTotal.WithLabelValues("ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ResetBatchesTotal.WithLabelValues("error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ResetFieldsTotal.WithLabelValues("daily")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.ResetFieldsTotal.WithLabelValues("monthly")), 0)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.AddTracked(125)
	m.SetTimerActive(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "focusflow_tracked_seconds_total 125"))
	assert.True(t, strings.Contains(body, "focusflow_timer_active 1"))
}
