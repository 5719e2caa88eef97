package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"matchchains/internal/indexer"
)

func TestObserveAndWrite(t *testing.T) {
	b := New()
	b.Observe(&indexer.Stats{
		Reads: 12, IndexedHashes: 4, DiscardedHashes: 1,
		Stages: []indexer.Stage{{Name: indexer.StageIngest, Duration: 1500 * time.Millisecond}},
	}, time.Unix(1700000000, 0))

	require.Equal(t, 12.0, testutil.ToFloat64(b.reads))
	require.Equal(t, 1.5, testutil.ToFloat64(b.stageSeconds.WithLabelValues("ingest")))

	n, err := testutil.GatherAndCount(b.Gatherer())
	require.NoError(t, err)
	require.Equal(t, 11, n)

	path := filepath.Join(t.TempDir(), "index.prom")
	require.NoError(t, b.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.True(t, strings.Contains(text, "matchchains_index_reads 12"), text)
	require.True(t, strings.Contains(text, `matchchains_index_stage_duration_seconds{stage="ingest"} 1.5`), text)
	require.True(t, strings.Contains(text, "matchchains_index_last_success_timestamp_seconds 1.7e+09"), text)
}
