package indexer

import "time"

// Stats accumulates the counters of one build. It is threaded through the
// stages explicitly; nothing is global.
type Stats struct {
	Reads              uint64 `toml:"reads"`
	ReadsWithPositions uint64 `toml:"reads_with_positions"`
	TotalPositions     uint64 `toml:"total_positions"`
	DistinctHashes     uint64 `toml:"distinct_hashes"`
	IndexedHashes      uint64 `toml:"indexed_hashes"`
	KeptHashes         uint64 `toml:"kept_hashes"`
	DiscardedHashes    uint64 `toml:"discarded_hashes"`
	MaxCoverage        uint64 `toml:"max_coverage"`
	MaxIndexedCoverage uint64 `toml:"max_indexed_coverage"`
	IndexedReads       uint64 `toml:"indexed_reads"`
	IndexedPositions   uint64 `toml:"indexed_positions"`
	TempBytes          uint64 `toml:"temp_bytes"`

	Stages []Stage `toml:"stage"`
}

// Stage is the wall time of one build stage.
type Stage struct {
	Name     string        `toml:"name"`
	Duration time.Duration `toml:"-"`
	Seconds  float64       `toml:"seconds"`
}

func (s *Stats) stage(name string, start time.Time) {
	d := time.Since(start)
	s.Stages = append(s.Stages, Stage{Name: name, Duration: d, Seconds: d.Seconds()})
}
