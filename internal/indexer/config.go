package indexer

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"matchchains/internal/indexfile"
)

// ErrInvalidConfig marks configuration errors. They are reported before any
// file is created.
var ErrInvalidConfig = errors.New("invalid index configuration")

// Config is the value-only configuration of one build.
type Config struct {
	Threads int // ingestion workers (>=1)

	// Fingerprint parameters, recorded in the metadata. The extractor passed
	// to Build must have been created with the same values.
	K           int
	WindowCount int
	WindowSize  int

	MaxCoverage  uint64 // indexfile.Unbounded keeps every repeated fingerprint
	Partitions   int    // temp partition files for frequency counting
	Normalize    bool   // homopolymer compression
	KeepNameTags bool   // write full read headers instead of the first word
	OutputPrefix string
	CompressTemp bool // snappy-frame the temp streams

	Logger logrus.FieldLogger
}

// DefaultConfig mirrors the command-line defaults.
func DefaultConfig() Config {
	return Config{
		Threads:     1,
		K:           201,
		WindowCount: 4,
		WindowSize:  500,
		MaxCoverage: indexfile.Unbounded,
		Partitions:  16,
	}
}

// Validate checks cfg and the input file list.
func (c *Config) Validate(files []string) error {
	switch {
	case len(files) == 0:
		return errors.Wrap(ErrInvalidConfig, "at least one input read file is required")
	case c.OutputPrefix == "":
		return errors.Wrap(ErrInvalidConfig, "output prefix is required")
	case c.Threads < 1:
		return errors.Wrapf(ErrInvalidConfig, "threads must be >= 1, got %d", c.Threads)
	case c.Partitions < 1:
		return errors.Wrapf(ErrInvalidConfig, "partition count must be >= 1, got %d", c.Partitions)
	case c.Partitions > math.MaxUint16:
		return errors.Wrapf(ErrInvalidConfig, "partition count must be <= %d, got %d", math.MaxUint16, c.Partitions)
	case c.K < 1 || c.WindowCount < 1 || c.WindowSize < 1:
		return errors.Wrapf(ErrInvalidConfig, "k, window count and window size must be >= 1, got k=%d n=%d w=%d",
			c.K, c.WindowCount, c.WindowSize)
	}
	return nil
}

func (c *Config) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}

// MetadataPath is the metadata output of a build with prefix.
func MetadataPath(prefix string) string { return prefix + ".metadata" }

// PositionsPath is the final index output of a build with prefix.
func PositionsPath(prefix string) string { return prefix + ".positions" }

func (c *Config) rawPositionsPath() string { return c.OutputPrefix + ".tmp" }

func (c *Config) partitionPath(i int) string { return c.OutputPrefix + ".tmp" + strconv.Itoa(i) }

func partialPath(final string) string { return final + ".partial" }
