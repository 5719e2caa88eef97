package indexer

import (
	"os"

	"github.com/pkg/errors"

	"matchchains/internal/indexfile"
	"matchchains/internal/reads"
)

func buildMetadata(cfg *Config, rs *reads.Storage, kept uint64) *indexfile.Metadata {
	m := &indexfile.Metadata{
		Normalized:  cfg.Normalize,
		K:           uint64(cfg.K),
		WindowCount: uint64(cfg.WindowCount),
		WindowSize:  uint64(cfg.WindowSize),
		MaxCoverage: cfg.MaxCoverage,
		HashCount:   kept,
		Reads:       make([]indexfile.ReadInfo, rs.Len()),
	}
	for i := range m.Reads {
		name := rs.Name(uint32(i))
		if !cfg.KeepNameTags {
			name = reads.StripTags(name)
		}
		m.Reads[i] = indexfile.ReadInfo{Length: rs.Length(uint32(i)), Name: name}
	}
	return m
}

// writeFileSync creates path, lets write fill it, and syncs before close so
// the file is durable before the next stage starts.
func writeFileSync(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "sync %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
