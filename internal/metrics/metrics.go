// Package metrics exports the counters of a finished build in the
// Prometheus text format, for node-exporter's textfile collector.
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"matchchains/internal/indexer"
)

const namespace = "matchchains_index"

// Build holds the gauges of one build on a private registry.
type Build struct {
	reg *prometheus.Registry

	reads            prometheus.Gauge
	totalPositions   prometheus.Gauge
	distinctHashes   prometheus.Gauge
	indexedHashes    prometheus.Gauge
	discardedHashes  prometheus.Gauge
	maxCoverage      prometheus.Gauge
	indexedReads     prometheus.Gauge
	indexedPositions prometheus.Gauge
	tempBytes        prometheus.Gauge
	stageSeconds     *prometheus.GaugeVec
	lastSuccess      prometheus.Gauge
}

func gauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
}

// New registers all build gauges.
func New() *Build {
	b := &Build{
		reg:              prometheus.NewRegistry(),
		reads:            gauge("reads", "Reads ingested."),
		totalPositions:   gauge("positions_total", "Fingerprint occurrences extracted from all reads."),
		distinctHashes:   gauge("distinct_hashes", "Distinct fingerprints."),
		indexedHashes:    gauge("indexed_hashes", "Fingerprints seen at least twice."),
		discardedHashes:  gauge("discarded_hashes", "Indexed fingerprints above the max coverage."),
		maxCoverage:      gauge("max_coverage", "Largest fingerprint coverage found."),
		indexedReads:     gauge("indexed_reads", "Reads with at least one position in the index."),
		indexedPositions: gauge("indexed_positions", "Positions written to the index."),
		tempBytes:        gauge("temp_bytes", "Peak on-disk size of the temp streams."),
		lastSuccess:      gauge("last_success_timestamp_seconds", "Unix time of the last successful build."),
		stageSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "stage_duration_seconds", Help: "Wall time per build stage.",
		}, []string{"stage"}),
	}
	b.reg.MustRegister(b.reads, b.totalPositions, b.distinctHashes, b.indexedHashes,
		b.discardedHashes, b.maxCoverage, b.indexedReads, b.indexedPositions, b.tempBytes,
		b.lastSuccess, b.stageSeconds)
	return b
}

// Observe sets every gauge from st.
func (b *Build) Observe(st *indexer.Stats, finished time.Time) {
	b.reads.Set(float64(st.Reads))
	b.totalPositions.Set(float64(st.TotalPositions))
	b.distinctHashes.Set(float64(st.DistinctHashes))
	b.indexedHashes.Set(float64(st.IndexedHashes))
	b.discardedHashes.Set(float64(st.DiscardedHashes))
	b.maxCoverage.Set(float64(st.MaxCoverage))
	b.indexedReads.Set(float64(st.IndexedReads))
	b.indexedPositions.Set(float64(st.IndexedPositions))
	b.tempBytes.Set(float64(st.TempBytes))
	for _, s := range st.Stages {
		b.stageSeconds.WithLabelValues(s.Name).Set(s.Duration.Seconds())
	}
	b.lastSuccess.Set(float64(finished.Unix()))
}

// Gatherer exposes the registry.
func (b *Build) Gatherer() prometheus.Gatherer { return b.reg }

// WriteTextfile atomically writes all gauges to path.
func (b *Build) WriteTextfile(path string) error {
	return errors.Wrapf(prometheus.WriteToTextfile(path, b.reg), "write metrics %s", path)
}
