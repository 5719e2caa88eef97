package cli

import (
	"io"
	"runtime"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"matchchains/internal/indexfile"
)

func parse(t *testing.T, args ...string) (Options, error) {
	t.Helper()
	var got Options
	cmd := NewCommand(func(_ *cobra.Command, opt Options) error {
		got = opt
		return nil
	})
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return got, err
}

func TestParse_Defaults(t *testing.T) {
	opt, err := parse(t, "-o", "idx", "a.fa")
	require.NoError(t, err)
	require.Equal(t, []string{"a.fa"}, opt.ReadFiles)

	cfg := opt.IndexerConfig()
	require.Equal(t, 1, cfg.Threads)
	require.Equal(t, 201, cfg.K)
	require.Equal(t, 500, cfg.WindowSize)
	require.Equal(t, 4, cfg.WindowCount)
	require.Equal(t, 16, cfg.Partitions)
	require.Equal(t, indexfile.Unbounded, cfg.MaxCoverage)
	require.Equal(t, "idx", cfg.OutputPrefix)
	require.False(t, cfg.Normalize)
	require.False(t, cfg.KeepNameTags)
}

func TestParse_AllFlags(t *testing.T) {
	opt, err := parse(t,
		"-k", "15", "-w", "10", "-n", "3", "--hpc",
		"--max-coverage", "0", "--keep-sequence-name-tags",
		"-t", "4", "--tmp-file-count", "7", "--compress-tmp",
		"-o", "out/idx", "--summary", "s.toml", "--metrics-file", "m.prom",
		"--log-format", "json", "-v",
		"a.fa", "-")
	require.NoError(t, err)
	require.Equal(t, []string{"a.fa", "-"}, opt.ReadFiles)
	require.Equal(t, "s.toml", opt.SummaryFile)
	require.Equal(t, "m.prom", opt.MetricsFile)
	require.True(t, opt.Verbose)

	cfg := opt.IndexerConfig()
	require.Equal(t, uint64(0), cfg.MaxCoverage)
	require.True(t, cfg.Normalize)
	require.True(t, cfg.KeepNameTags)
	require.True(t, cfg.CompressTemp)
	require.Equal(t, 4, cfg.Threads)
	require.Equal(t, 7, cfg.Partitions)

	p := opt.HashParams()
	require.Equal(t, 15, p.K)
	require.Equal(t, 10, p.WindowSize)
	require.Equal(t, 3, p.WindowCount)
}

func TestParse_ThreadsZeroMeansAllCPUs(t *testing.T) {
	opt, err := parse(t, "-t", "0", "-o", "idx", "a.fa")
	require.NoError(t, err)
	require.Equal(t, runtime.NumCPU(), opt.Threads)
}

func TestParse_UsageErrors(t *testing.T) {
	cases := map[string][]string{
		"no inputs":       {"-o", "idx"},
		"no output":       {"a.fa"},
		"bad flag":        {"--nope", "-o", "idx", "a.fa"},
		"negative thread": {"-t", "-1", "-o", "idx", "a.fa"},
		"no partitions":   {"--tmp-file-count", "0", "-o", "idx", "a.fa"},
		"bad log format":  {"--log-format", "xml", "-o", "idx", "a.fa"},
		"zero k":          {"-k", "0", "-o", "idx", "a.fa"},
		"bad int":         {"-w", "many", "-o", "idx", "a.fa"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parse(t, args...)
			require.Error(t, err)
			var ue *UsageError
			require.True(t, errors.As(err, &ue), "want UsageError, got %v", err)
		})
	}
}

func TestParse_RunErrorPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	cmd := NewCommand(func(*cobra.Command, Options) error { return boom })
	cmd.SetArgs([]string{"-o", "idx", "a.fa"})
	cmd.SetOut(io.Discard)
	err := cmd.Execute()
	require.ErrorIs(t, err, boom)
	var ue *UsageError
	require.False(t, errors.As(err, &ue))
}
