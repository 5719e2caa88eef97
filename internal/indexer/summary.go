package indexer

import (
	"os"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"matchchains/internal/indexfile"
)

// Summary is the TOML report of a finished build.
type Summary struct {
	Created    time.Time     `toml:"created"`
	Inputs     []string      `toml:"inputs"`
	Outputs    SummaryFiles  `toml:"outputs"`
	Parameters SummaryParams `toml:"parameters"`
	Stats      Stats         `toml:"stats"`
}

// SummaryFiles names the outputs.
type SummaryFiles struct {
	Metadata  string `toml:"metadata"`
	Positions string `toml:"positions"`
}

// SummaryParams is the build configuration. MaxCoverage is omitted when
// unbounded.
type SummaryParams struct {
	K            int    `toml:"k"`
	WindowCount  int    `toml:"window_count"`
	WindowSize   int    `toml:"window_size"`
	HPC          bool   `toml:"hpc"`
	MaxCoverage  uint64 `toml:"max_coverage,omitempty"`
	Unbounded    bool   `toml:"max_coverage_unbounded"`
	Partitions   int    `toml:"tmp_file_count"`
	Threads      int    `toml:"threads"`
	KeepNameTags bool   `toml:"keep_sequence_name_tags"`
	CompressTemp bool   `toml:"compress_tmp"`
}

// NewSummary assembles the report for a build of files with cfg.
func NewSummary(cfg Config, files []string, st *Stats) *Summary {
	s := &Summary{
		Created: time.Now().UTC().Truncate(time.Second),
		Inputs:  files,
		Outputs: SummaryFiles{
			Metadata:  MetadataPath(cfg.OutputPrefix),
			Positions: PositionsPath(cfg.OutputPrefix),
		},
		Parameters: SummaryParams{
			K:            cfg.K,
			WindowCount:  cfg.WindowCount,
			WindowSize:   cfg.WindowSize,
			HPC:          cfg.Normalize,
			Partitions:   cfg.Partitions,
			Threads:      cfg.Threads,
			KeepNameTags: cfg.KeepNameTags,
			CompressTemp: cfg.CompressTemp,
		},
		Stats: *st,
	}
	if cfg.MaxCoverage == indexfile.Unbounded {
		s.Parameters.Unbounded = true
	} else {
		s.Parameters.MaxCoverage = cfg.MaxCoverage
	}
	return s
}

// WriteSummary writes s as TOML to path.
func WriteSummary(path string, s *Summary) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode summary")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write summary %s", path)
}
