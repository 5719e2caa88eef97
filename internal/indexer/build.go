package indexer

import (
	"context"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"matchchains/internal/indexfile"
	"matchchains/internal/pipeline"
	"matchchains/internal/reads"
)

// Stage names, in execution order.
const (
	StageIngest   = "ingest"
	StageResolve  = "resolve"
	StageFilter   = "filter"
	StageMetadata = "metadata"
	StageCompact  = "compact"
)

type build struct {
	cfg   *Config
	log   logrus.FieldLogger
	reads *reads.Storage
	stats *Stats
}

// Build indexes the reads of files into <prefix>.metadata and
// <prefix>.positions.
//
// Ingestion runs on cfg.Threads workers; every later stage is
// single-threaded and starts only after the previous one completes. On any
// error the temp files and in-progress outputs are removed and nothing is
// written under the final names. Existing final outputs are replaced only
// when the build succeeds.
func Build(ctx context.Context, cfg Config, files []string, ex pipeline.Extractor) (*Stats, error) {
	if err := cfg.Validate(files); err != nil {
		return nil, err
	}
	b := &build{cfg: &cfg, log: cfg.logger(), reads: &reads.Storage{}, stats: &Stats{}}

	b.log.WithFields(logrus.Fields{
		"k": cfg.K, "n": cfg.WindowCount, "w": cfg.WindowSize,
		"hpc": cfg.Normalize, "maxcoverage": formatCoverage(cfg.MaxCoverage),
	}).Info("indexing")
	b.log.WithFields(logrus.Fields{
		"threads": cfg.Threads, "tmp_file_count": cfg.Partitions,
		"output": cfg.OutputPrefix, "compress_tmp": cfg.CompressTemp,
	}).Info("other parameters")
	b.log.WithField("files", files).Info("indexing from files")

	if err := b.run(ctx, files, ex); err != nil {
		if cerr := b.cleanup(); cerr != nil {
			b.log.WithError(cerr).Warn("cleanup after failed build")
		}
		return nil, err
	}
	return b.stats, nil
}

func (b *build) run(ctx context.Context, files []string, ex pipeline.Extractor) error {
	start := time.Now()
	if err := b.ingest(ctx, files, ex); err != nil {
		return err
	}
	b.stats.TempBytes = diskUsage(b.tmpPaths()...)
	b.stats.stage(StageIngest, start)
	b.log.WithFields(logrus.Fields{
		"reads":           b.stats.Reads,
		"total_positions": b.stats.TotalPositions,
		"tmp_size":        humanize.Bytes(b.stats.TempBytes),
	}).Info("ingested reads")
	if err := ctx.Err(); err != nil {
		return err
	}

	start = time.Now()
	table, err := b.resolve()
	if err != nil {
		return errors.Wrap(err, "resolve fingerprint frequencies")
	}
	b.stats.stage(StageResolve, start)

	start = time.Now()
	cs := FilterCoverage(table.Coverages(), b.cfg.MaxCoverage)
	b.stats.KeptHashes = cs.Kept()
	b.stats.DiscardedHashes = cs.Discarded
	b.stats.MaxCoverage = cs.MaxCoverage
	b.stats.MaxIndexedCoverage = cs.MaxKeptCoverage
	b.stats.stage(StageFilter, start)
	b.log.WithFields(logrus.Fields{
		"discarded":            cs.Discarded,
		"max_coverage":         cs.MaxCoverage,
		"max_indexed_coverage": cs.MaxKeptCoverage,
		"distinct_hashes":      b.stats.DistinctHashes,
		"indexed_hashes":       b.stats.IndexedHashes,
	}).Info("resolved fingerprints")
	if err := ctx.Err(); err != nil {
		return err
	}

	start = time.Now()
	metaPath := partialPath(MetadataPath(b.cfg.OutputPrefix))
	meta := buildMetadata(b.cfg, b.reads, cs.Kept())
	if err := writeFileSync(metaPath, func(f *os.File) error { return indexfile.WriteMetadata(f, meta) }); err != nil {
		return errors.Wrap(err, "write metadata")
	}
	b.stats.stage(StageMetadata, start)
	if err := ctx.Err(); err != nil {
		return err
	}

	start = time.Now()
	if err := b.compactPositions(table); err != nil {
		return errors.Wrap(err, "compact positions")
	}
	b.stats.stage(StageCompact, start)
	b.log.WithFields(logrus.Fields{
		"indexed_reads":     b.stats.IndexedReads,
		"indexed_positions": b.stats.IndexedPositions,
	}).Info("wrote index")

	return b.publish()
}

// publish renames the partial outputs to their final names. The metadata
// is renamed last: its presence marks a complete build. A stale metadata
// file is removed first so it never sits next to newer positions.
func (b *build) publish() error {
	metaPath := MetadataPath(b.cfg.OutputPrefix)
	posPath := PositionsPath(b.cfg.OutputPrefix)
	if err := removeFiles(metaPath); err != nil {
		return errors.Wrap(err, "remove previous metadata")
	}
	if err := os.Rename(partialPath(posPath), posPath); err != nil {
		return errors.Wrap(err, "publish positions")
	}
	if err := os.Rename(partialPath(metaPath), metaPath); err != nil {
		_ = removeFiles(posPath)
		return errors.Wrap(err, "publish metadata")
	}
	return nil
}

func (b *build) compactPositions(table *HashTable) error {
	rawPath := b.cfg.rawPositionsPath()
	r, err := openTmp(rawPath, b.cfg.CompressTemp)
	if err != nil {
		return err
	}
	defer r.Close()

	var w *indexfile.PositionsWriter
	err = writeFileSync(partialPath(PositionsPath(b.cfg.OutputPrefix)), func(f *os.File) error {
		w = indexfile.NewPositionsWriter(f)
		if err := compact(r, w, table, b.cfg.MaxCoverage); err != nil {
			return err
		}
		return w.Flush()
	})
	if err != nil {
		return err
	}
	b.stats.IndexedReads = w.Records()
	b.stats.IndexedPositions = w.Entries()
	return removeFiles(rawPath)
}

func formatCoverage(max uint64) string {
	switch {
	case max == indexfile.Unbounded:
		return "unbounded"
	case max > math.MaxInt64:
		return strconv.FormatUint(max, 10)
	}
	return humanize.Comma(int64(max))
}

func (b *build) tmpPaths() []string {
	paths := []string{b.cfg.rawPositionsPath()}
	for i := 0; i < b.cfg.Partitions; i++ {
		paths = append(paths, b.cfg.partitionPath(i))
	}
	return paths
}

// cleanup removes everything a failed build may have left behind.
func (b *build) cleanup() error {
	paths := append(b.tmpPaths(),
		partialPath(MetadataPath(b.cfg.OutputPrefix)),
		partialPath(PositionsPath(b.cfg.OutputPrefix)))
	return removeFiles(paths...)
}
