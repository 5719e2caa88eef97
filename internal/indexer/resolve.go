package indexer

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

// ErrPartitionMismatch means a partition stream holds a fingerprint that
// belongs to another partition. The fan-out is broken; the build aborts.
var ErrPartitionMismatch = errors.New("fingerprint in wrong partition")

// ErrTruncatedStream means a temp stream ends inside a record.
var ErrTruncatedStream = errors.New("truncated temp stream")

// ErrIndexOverflow means more repeated fingerprints than fit a 32-bit index.
var ErrIndexOverflow = errors.New("compact index space exhausted")

// HashTable maps repeated fingerprints to dense compact indices and keeps
// an occurrence count per index. Only fingerprints seen at least twice are
// present.
type HashTable struct {
	index    map[uint64]uint32
	coverage []uint32
}

func newHashTable() *HashTable {
	return &HashTable{index: make(map[uint64]uint32)}
}

// Len is the number of compact indices minted.
func (t *HashTable) Len() int { return len(t.coverage) }

// Lookup returns the compact index of hash, if it has one.
func (t *HashTable) Lookup(hash uint64) (uint32, bool) {
	idx, ok := t.index[hash]
	return idx, ok
}

// Coverage returns the total occurrence count behind idx.
func (t *HashTable) Coverage(idx uint32) uint64 { return uint64(t.coverage[idx]) }

// Coverages exposes the coverage table, indexed by compact index.
func (t *HashTable) Coverages() []uint32 { return t.coverage }

// repeat records a second-or-later sighting of hash. The first repeat mints
// the next index with coverage 2; later ones add one, saturating.
func (t *HashTable) repeat(hash uint64) error {
	if idx, ok := t.index[hash]; ok {
		if t.coverage[idx] < math.MaxUint32 {
			t.coverage[idx]++
		}
		return nil
	}
	if uint64(len(t.coverage)) > math.MaxUint32 {
		return ErrIndexOverflow
	}
	t.index[hash] = uint32(len(t.coverage))
	t.coverage = append(t.coverage, 2)
	return nil
}

// resolvePartition consumes one partition stream. Memory is bounded by the
// partition's distinct fingerprints; returns that count.
func resolvePartition(r io.Reader, part, n int, t *HashTable) (uint64, error) {
	seenOnce := make(map[uint64]struct{})
	var buf [hashSize]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err == io.EOF {
			break
		} else if err == io.ErrUnexpectedEOF {
			return 0, errors.Wrapf(ErrTruncatedStream, "partition %d", part)
		} else if err != nil {
			return 0, errors.Wrapf(err, "read partition %d", part)
		}
		hash := le.Uint64(buf[:])
		if hash%uint64(n) != uint64(part) {
			return 0, errors.Wrapf(ErrPartitionMismatch, "fingerprint %#x in partition %d of %d", hash, part, n)
		}
		if _, ok := seenOnce[hash]; !ok {
			seenOnce[hash] = struct{}{}
			continue
		}
		if err := t.repeat(hash); err != nil {
			return 0, err
		}
	}
	return uint64(len(seenOnce)), nil
}

// resolve runs the frequency pass over every partition in order, deleting
// each partition file once it has been consumed.
func (b *build) resolve() (*HashTable, error) {
	t := newHashTable()
	for i := 0; i < b.cfg.Partitions; i++ {
		path := b.cfg.partitionPath(i)
		r, err := openTmp(path, b.cfg.CompressTemp)
		if err != nil {
			return nil, err
		}
		distinct, err := resolvePartition(r, i, b.cfg.Partitions, t)
		_ = r.Close()
		if err != nil {
			return nil, err
		}
		if err := removeFiles(path); err != nil {
			return nil, err
		}
		b.stats.DistinctHashes += distinct
		b.log.WithField("partition", i).WithField("distinct", distinct).Debug("resolved partition")
	}
	b.stats.IndexedHashes = uint64(t.Len())
	return t, nil
}
