// internal/cli/options.go
package cli

import (
	"runtime"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"matchchains/internal/cliutil"
	"matchchains/internal/cmdutil"
	"matchchains/internal/indexer"
	"matchchains/internal/indexfile"
	"matchchains/internal/version"
	"matchchains/internal/windowhash"
)

// UsageError is a command-line error (bad flag, bad value, no inputs). The
// app maps it to exit code 2.
type UsageError struct{ Err error }

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

func usagef(format string, args ...interface{}) error {
	return &UsageError{Err: errors.Errorf(format, args...)}
}

// Options holds all CLI flags and arguments.
type Options struct {
	// Fingerprint parameters
	K           int
	WindowSize  int
	WindowCount int
	HPC         bool

	// Index parameters
	MaxCoverage    uint64
	MaxCoverageSet bool
	KeepNameTags   bool

	// Performance
	Threads      int
	TmpFileCount int
	CompressTmp  bool

	// Output
	Output      string
	SummaryFile string
	MetricsFile string

	// Logging
	LogFormat string
	Quiet     bool
	Verbose   bool

	ReadFiles []string
}

const long = `Builds an index of read fingerprints for chaining-based read matching.

Every read is reduced to fingerprints of n consecutive window minimizers.
Fingerprints seen only once in the whole corpus are dropped, the rest get
compact integer ids. The build writes <output>.metadata and
<output>.positions; temp files <output>.tmp* are removed on exit.

Read files may be FASTA or FASTQ, optionally gzipped. Globs are expanded and
"-" reads from stdin.`

// NewCommand returns the matchchains-index command. run is called with the
// validated options.
func NewCommand(run func(cmd *cobra.Command, opt Options) error) *cobra.Command {
	var opt Options

	cmd := &cobra.Command{
		Use:           "matchchains-index -o PREFIX [flags] reads.fa [reads.fq.gz ...]",
		Short:         "Build a read fingerprint index",
		Long:          long,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opt.MaxCoverageSet = cmd.Flags().Changed("max-coverage")
			files, err := cliutil.ExpandPositionals(args)
			if err != nil {
				return &UsageError{Err: err}
			}
			opt.ReadFiles = files
			if err := Validate(&opt); err != nil {
				return err
			}
			return run(cmd, opt)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	registerFlags(cmd.Flags(), &opt, indexer.DefaultConfig())
	return cmd
}

func registerFlags(f *pflag.FlagSet, opt *Options, d indexer.Config) {
	f.SortFlags = false
	f.IntVarP(&opt.K, "kmer", "k", d.K, "k-mer size")
	f.IntVarP(&opt.WindowSize, "window", "w", d.WindowSize, "minimizer window size in k-mers")
	f.IntVarP(&opt.WindowCount, "windows", "n", d.WindowCount, "minimizers per fingerprint")
	f.BoolVar(&opt.HPC, "hpc", false, "homopolymer-compress reads before hashing")
	f.Uint64Var(&opt.MaxCoverage, "max-coverage", 0, "discard fingerprints seen more than this many times (default unbounded)")
	f.BoolVar(&opt.KeepNameTags, "keep-sequence-name-tags", false, "keep read header text after the first whitespace")
	f.IntVarP(&opt.Threads, "threads", "t", d.Threads, "worker threads (0 = all CPUs)")
	f.IntVar(&opt.TmpFileCount, "tmp-file-count", d.Partitions, "temp partition files used for counting")
	f.BoolVar(&opt.CompressTmp, "compress-tmp", false, "snappy-compress temp files")
	f.StringVarP(&opt.Output, "output", "o", "", "output prefix (required)")
	f.StringVar(&opt.SummaryFile, "summary", "", "write a TOML build summary to FILE")
	f.StringVar(&opt.MetricsFile, "metrics-file", "", "write build metrics in Prometheus textfile format to FILE")
	f.StringVar(&opt.LogFormat, "log-format", cmdutil.LogFormatText, "log format: text | json")
	f.BoolVarP(&opt.Quiet, "quiet", "q", false, "only log warnings and errors")
	f.BoolVarP(&opt.Verbose, "verbose", "v", false, "log per-partition progress")
}

// Validate checks option values that the indexer config cannot express and
// resolves --threads 0.
func Validate(opt *Options) error {
	if len(opt.ReadFiles) == 0 {
		return usagef("at least one read file is required")
	}
	if opt.Output == "" {
		return usagef("--output is required")
	}
	if opt.Threads < 0 {
		return usagef("--threads must be >= 0")
	}
	if opt.Threads == 0 {
		opt.Threads = runtime.NumCPU()
	}
	if opt.TmpFileCount < 1 {
		return usagef("--tmp-file-count must be >= 1")
	}
	if opt.LogFormat != cmdutil.LogFormatText && opt.LogFormat != cmdutil.LogFormatJSON {
		return usagef("invalid --log-format %q", opt.LogFormat)
	}
	if err := opt.HashParams().Validate(); err != nil {
		return &UsageError{Err: err}
	}
	return nil
}

// HashParams returns the fingerprint parameters.
func (o Options) HashParams() windowhash.Params {
	return windowhash.Params{K: o.K, WindowSize: o.WindowSize, WindowCount: o.WindowCount}
}

// IndexerConfig maps the options onto a build configuration.
func (o Options) IndexerConfig() indexer.Config {
	cfg := indexer.DefaultConfig()
	cfg.Threads = o.Threads
	cfg.K = o.K
	cfg.WindowSize = o.WindowSize
	cfg.WindowCount = o.WindowCount
	cfg.Normalize = o.HPC
	cfg.KeepNameTags = o.KeepNameTags
	cfg.Partitions = o.TmpFileCount
	cfg.CompressTemp = o.CompressTmp
	cfg.OutputPrefix = o.Output
	cfg.MaxCoverage = indexfile.Unbounded
	if o.MaxCoverageSet {
		cfg.MaxCoverage = o.MaxCoverage
	}
	return cfg
}
