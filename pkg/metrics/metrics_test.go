package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ShowCacheRequests.WithLabelValues("hit").Inc()
	m.SyncActions.WithLabelValues("scrobble", "ok").Add(2)
	m.ScanProgress.Set(0.5)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ShowCacheRequests.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SyncActions.WithLabelValues("scrobble", "ok")))
	assert.Equal(t, 0.5, testutil.ToFloat64(m.ScanProgress))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "shokoz_resolver_show_requests_total")
	assert.Contains(t, names, "shokoz_sync_scan_progress_ratio")
}

func TestNew_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

func TestOrDiscard(t *testing.T) {
	m := Discard()
	assert.Same(t, m, OrDiscard(m))
	assert.NotNil(t, OrDiscard(nil))
}
