package indexfile

import (
	"bufio"
	"io"
	"math"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

const (
	recordHeaderSize = 8
	entrySize        = 12
)

// Entry is one surviving fingerprint occurrence of a read.
type Entry struct {
	Index      uint32
	Start, End uint32
}

// Record is all surviving entries of one read, in extraction order.
type Record struct {
	Read    uint32
	Entries []Entry
}

// PositionsWriter appends records to a positions stream.
type PositionsWriter struct {
	bw      *bufio.Writer
	buf     [entrySize]byte
	records uint64
	entries uint64
}

// NewPositionsWriter returns a buffered writer over w. Call Flush when done.
func NewPositionsWriter(w io.Writer) *PositionsWriter {
	return &PositionsWriter{bw: bufio.NewWriterSize(w, 1<<20)}
}

// WriteRecord appends one record. Records without entries are rejected;
// a read with nothing left is simply absent from the stream.
func (w *PositionsWriter) WriteRecord(read uint32, entries []Entry) error {
	if len(entries) == 0 {
		return errors.Errorf("indexfile: empty record for read %d", read)
	}
	if uint64(len(entries)) > math.MaxUint32 {
		return errors.Errorf("indexfile: read %d has %d entries", read, len(entries))
	}
	le.PutUint32(w.buf[0:], read)
	le.PutUint32(w.buf[4:], uint32(len(entries)))
	if _, err := w.bw.Write(w.buf[:recordHeaderSize]); err != nil {
		return errors.Wrap(err, "write positions record")
	}
	for _, e := range entries {
		le.PutUint32(w.buf[0:], e.Index)
		le.PutUint32(w.buf[4:], e.Start)
		le.PutUint32(w.buf[8:], e.End)
		if _, err := w.bw.Write(w.buf[:]); err != nil {
			return errors.Wrap(err, "write positions record")
		}
	}
	w.records++
	w.entries += uint64(len(entries))
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (w *PositionsWriter) Flush() error {
	return errors.Wrap(w.bw.Flush(), "flush positions")
}

// Records is the number of records written so far.
func (w *PositionsWriter) Records() uint64 { return w.records }

// Entries is the number of entries written so far.
func (w *PositionsWriter) Entries() uint64 { return w.entries }

// Positions is a read-only, memory-mapped positions file.
type Positions struct {
	f    *os.File
	data mmap.MMap
}

// OpenPositions maps the positions file at path.
func OpenPositions(path string) (*Positions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open positions %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "stat positions %s", path)
	}
	p := &Positions{f: f}
	// Zero-length files cannot be mapped.
	if info.Size() > 0 {
		p.data, err = mmap.Map(f, mmap.RDONLY, 0)
		if err != nil {
			_ = f.Close()
			return nil, errors.Wrapf(err, "mmap positions %s", path)
		}
	}
	return p, nil
}

// Size is the file size in bytes.
func (p *Positions) Size() int { return len(p.data) }

// ForEach decodes every record in file order. The Entries slice passed to
// fn is reused between calls.
func (p *Positions) ForEach(fn func(Record) error) error {
	var (
		data = p.data
		rec  Record
		off  int
	)
	for off < len(data) {
		if len(data)-off < recordHeaderSize {
			return errors.Wrapf(ErrTruncated, "record header at offset %d", off)
		}
		rec.Read = le.Uint32(data[off:])
		n := int(le.Uint32(data[off+4:]))
		off += recordHeaderSize
		if n == 0 {
			return errors.Wrapf(ErrInvalidFormat, "empty record for read %d", rec.Read)
		}
		if (len(data)-off)/entrySize < n {
			return errors.Wrapf(ErrTruncated, "record for read %d", rec.Read)
		}
		rec.Entries = rec.Entries[:0]
		for i := 0; i < n; i++ {
			rec.Entries = append(rec.Entries, Entry{
				Index: le.Uint32(data[off:]),
				Start: le.Uint32(data[off+4:]),
				End:   le.Uint32(data[off+8:]),
			})
			off += entrySize
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

// Close unmaps and closes the file.
func (p *Positions) Close() error {
	var err error
	if p.data != nil {
		err = p.data.Unmap()
	}
	if cerr := p.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
