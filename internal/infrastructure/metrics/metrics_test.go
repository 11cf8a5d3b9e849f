package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveArchive("completed", 2*time.Second, 130)
	m.ObserveArchive("aborted", time.Second, 0)
	m.IncFiles("stored")
	m.IncFiles("stored")
	m.IncFiles("rejected")
	m.IncSearch("semantic")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.archiveRuns.WithLabelValues("completed")))
	assert.Equal(t, 130.0, testutil.ToFloat64(m.archiveMessages))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.archiveFiles.WithLabelValues("stored")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.searchQueries.WithLabelValues("semantic")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.IncSearch("keyword")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `archy_search_queries_total{source="keyword"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
