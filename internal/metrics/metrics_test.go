package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtier-engine/internal/domain"
)

func TestObserveFetch(t *testing.T) {
	m := New()
	m.ObserveFetch(domain.PlatformLever, "ok", 120*time.Millisecond, 4)
	m.ObserveFetch(domain.PlatformLever, "error", time.Second, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("lever", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("lever", "error")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.FetchedJobs.WithLabelValues("lever")))
}

func TestRunLifecycle(t *testing.T) {
	m := New()
	m.RunStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunInProgress))

	at := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	m.RunFinished("ok", 3*time.Second, 42, 2, at)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RunInProgress))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.LastRunJobs))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LastRunErrors))
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(m.LastRunTimestamp))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("ok")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveFetch(domain.PlatformGreenhouse, "ok", time.Millisecond, 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `jobtier_adapter_fetch_total{outcome="ok",platform="greenhouse"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
