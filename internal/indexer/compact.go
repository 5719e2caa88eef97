package indexer

import (
	"io"

	"github.com/pkg/errors"

	"matchchains/internal/indexfile"
)

// compact streams the raw positions once, keeps only triples whose
// fingerprint has a kept compact index, and writes one record per read with
// at least one survivor. Per-read triple order is preserved.
func compact(r io.Reader, w *indexfile.PositionsWriter, t *HashTable, max uint64) error {
	var (
		hdr     [rawHeaderSize]byte
		triple  [rawTripleSize]byte
		entries []indexfile.Entry
	)
	for {
		if _, err := io.ReadFull(r, hdr[:]); err == io.EOF {
			return nil
		} else if err == io.ErrUnexpectedEOF {
			return errors.Wrap(ErrTruncatedStream, "raw positions record header")
		} else if err != nil {
			return errors.Wrap(err, "read raw positions")
		}
		read := le.Uint32(hdr[0:])
		count := le.Uint32(hdr[4:])

		entries = entries[:0]
		for i := uint32(0); i < count; i++ {
			if _, err := io.ReadFull(r, triple[:]); err == io.EOF || err == io.ErrUnexpectedEOF {
				return errors.Wrapf(ErrTruncatedStream, "raw positions of read %d", read)
			} else if err != nil {
				return errors.Wrap(err, "read raw positions")
			}
			idx, ok := t.Lookup(le.Uint64(triple[0:]))
			if !ok || !kept(t.coverage[idx], max) {
				continue
			}
			entries = append(entries, indexfile.Entry{
				Index: idx,
				Start: le.Uint32(triple[8:]),
				End:   le.Uint32(triple[12:]),
			})
		}
		if len(entries) == 0 {
			continue
		}
		if err := w.WriteRecord(read, entries); err != nil {
			return err
		}
	}
}
