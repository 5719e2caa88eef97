package indexer

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"matchchains/internal/pipeline"
	"matchchains/internal/reads"
)

// Raw positions stream record: [read:u32][count:u32] then count x
// [hash:u64][start:u32][end:u32]. Partition streams are flat [hash:u64].
const (
	rawHeaderSize = 8
	rawTripleSize = 16
	hashSize      = 8
)

var le = binary.LittleEndian

// ingester owns every piece of state the ingestion workers share. visit is
// only ever called under the pipeline's mutex.
type ingester struct {
	normalize  bool
	reads      *reads.Storage
	positions  *tmpWriter
	partitions []*tmpWriter
	stats      *Stats
	buf        [rawTripleSize]byte
}

func (in *ingester) visit(r pipeline.Read) error {
	length := r.Length
	if in.normalize {
		length = r.NormalizedLength
	}
	in.reads.Set(r.ID, r.Name, length)
	if len(r.Triples) == 0 {
		return nil
	}
	if uint64(len(r.Triples)) > math.MaxUint32 {
		return errors.Errorf("read %d has %d fingerprints, more than a record holds", r.ID, len(r.Triples))
	}
	in.stats.ReadsWithPositions++
	in.stats.TotalPositions += uint64(len(r.Triples))

	le.PutUint32(in.buf[0:], r.ID)
	le.PutUint32(in.buf[4:], uint32(len(r.Triples)))
	if _, err := in.positions.Write(in.buf[:rawHeaderSize]); err != nil {
		return err
	}
	n := uint64(len(in.partitions))
	for _, t := range r.Triples {
		le.PutUint64(in.buf[0:], t.Hash)
		le.PutUint32(in.buf[8:], t.Start)
		le.PutUint32(in.buf[12:], t.End)
		if _, err := in.partitions[t.Hash%n].Write(in.buf[:hashSize]); err != nil {
			return err
		}
		if _, err := in.positions.Write(in.buf[:]); err != nil {
			return err
		}
	}
	return nil
}

// ingest runs the parallel ingestion stage and closes every temp stream.
// On return the raw positions file and all partition files are complete.
func (b *build) ingest(ctx context.Context, files []string, ex pipeline.Extractor) (err error) {
	in := &ingester{
		normalize: b.cfg.Normalize,
		reads:     b.reads,
		stats:     b.stats,
	}
	closeAll := func() error {
		var first error
		if in.positions != nil {
			first = in.positions.Close()
		}
		for _, p := range in.partitions {
			if cerr := p.Close(); cerr != nil && first == nil {
				first = cerr
			}
		}
		return first
	}
	defer func() {
		if cerr := closeAll(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if in.positions, err = createTmp(b.cfg.rawPositionsPath(), b.cfg.CompressTemp, 1<<20); err != nil {
		return err
	}
	for i := 0; i < b.cfg.Partitions; i++ {
		w, err := createTmp(b.cfg.partitionPath(i), b.cfg.CompressTemp, 1<<18)
		if err != nil {
			return err
		}
		in.partitions = append(in.partitions, w)
	}

	err = pipeline.ForEachRead(ctx, pipeline.Config{Threads: b.cfg.Threads, Normalize: b.cfg.Normalize},
		files, ex, in.visit)
	if err != nil {
		return errors.Wrap(err, "ingest reads")
	}
	b.stats.Reads = uint64(b.reads.Len())
	return nil
}
