// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"math"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"matchchains/internal/fasta"
	"matchchains/internal/reads"
)

// Config controls the ingestion pipeline.
type Config struct {
	Threads   int  // number of worker goroutines (>=1)
	Normalize bool // homopolymer-compress before extraction; also fills NormalizedLength
}

// Triple is one fingerprint occurrence within a read.
type Triple struct {
	Hash       uint64
	Start, End uint32
}

// Read is a fully extracted read handed to visit.
type Read struct {
	ID               uint32 // dense id, input order across all files
	Name             string // raw header, tags included
	Length           uint64 // raw sequence length
	NormalizedLength uint64 // run count; zero unless Config.Normalize
	Triples          []Triple
}

// ErrTooManyReads is returned when the input exceeds the 32-bit id space.
var ErrTooManyReads = errors.New("pipeline: more reads than fit a 32-bit read id")

// ForEachRead reads every record of files in order, assigns dense ids in
// that order, runs the extractor on cfg.Threads workers, and calls visit
// for every read, including reads with no triples.
//
// Calls to visit are serialized by a single mutex and arrive in worker
// completion order, not id order. Extraction happens outside the lock.
// The first error (I/O, visit, or ctx cancellation) stops the pipeline and
// is returned.
func ForEachRead(
	ctx context.Context,
	cfg Config,
	files []string,
	ex Extractor,
	visit func(Read) error,
) error {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}

	type job struct {
		id  uint32
		rec fasta.Record
	}
	jobs := make(chan job, cfg.Threads*2)

	g, gctx := errgroup.WithContext(ctx)

	// Feed work
	g.Go(func() error {
		defer close(jobs)
		var next uint64
		for _, path := range files {
			err := fasta.StreamPathCtx(gctx, path, func(rec fasta.Record) error {
				id, err := readID(next)
				if err != nil {
					return err
				}
				select {
				case <-gctx.Done():
					return gctx.Err()
				case jobs <- job{id: id, rec: rec}:
				}
				next++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	// Workers
	var mu sync.Mutex
	for w := 0; w < cfg.Threads; w++ {
		g.Go(func() error {
			for j := range jobs {
				r := Read{ID: j.id, Name: j.rec.Name, Length: uint64(len(j.rec.Seq))}
				if cfg.Normalize {
					r.NormalizedLength = reads.NormalizedLength(j.rec.Seq)
				}
				ex.Extract(j.rec.Seq, cfg.Normalize, func(h uint64, s, e uint32) {
					r.Triples = append(r.Triples, Triple{Hash: h, Start: s, End: e})
				})

				mu.Lock()
				err := visit(r)
				mu.Unlock()
				if err != nil {
					return err
				}
				if gctx.Err() != nil {
					return gctx.Err()
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// readID converts the feeder's counter to a read id. Ids stop below
// math.MaxUint32 so the read count itself fits in 32 bits.
func readID(next uint64) (uint32, error) {
	if next >= math.MaxUint32 {
		return 0, ErrTooManyReads
	}
	return uint32(next), nil
}
