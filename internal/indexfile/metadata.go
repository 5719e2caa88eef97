package indexfile

import (
	"bufio"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
)

// ErrInvalidFormat means the bytes do not decode as an index file.
var ErrInvalidFormat = errors.New("indexfile: invalid format")

// ErrTruncated means the file ends inside a field or record.
var ErrTruncated = errors.New("indexfile: truncated file")

// Unbounded is the max coverage value meaning no coverage limit.
const Unbounded uint64 = math.MaxUint64

// ReadInfo is the per-read part of Metadata.
type ReadInfo struct {
	Length uint64
	Name   string
}

// Metadata is the global build parameters plus per-read names and lengths.
type Metadata struct {
	Normalized  bool
	K           uint64
	WindowCount uint64
	WindowSize  uint64
	MaxCoverage uint64
	HashCount   uint64
	Reads       []ReadInfo
}

// WriteMetadata encodes m to w.
func WriteMetadata(w io.Writer, m *Metadata) error {
	bw := bufio.NewWriter(w)
	var buf [8]byte
	put := func(v uint64) error {
		le.PutUint64(buf[:], v)
		_, err := bw.Write(buf[:])
		return err
	}

	flag := byte(0)
	if m.Normalized {
		flag = 1
	}
	if err := bw.WriteByte(flag); err != nil {
		return errors.Wrap(err, "write metadata header")
	}
	for _, v := range []uint64{m.K, m.WindowCount, m.WindowSize, m.MaxCoverage, m.HashCount, uint64(len(m.Reads))} {
		if err := put(v); err != nil {
			return errors.Wrap(err, "write metadata header")
		}
	}
	for i, r := range m.Reads {
		if err := put(r.Length); err != nil {
			return errors.Wrapf(err, "write metadata read %d", i)
		}
		if err := put(uint64(len(r.Name))); err != nil {
			return errors.Wrapf(err, "write metadata read %d", i)
		}
		if _, err := bw.WriteString(r.Name); err != nil {
			return errors.Wrapf(err, "write metadata read %d", i)
		}
	}
	return errors.Wrap(bw.Flush(), "flush metadata")
}

// ReadMetadata decodes metadata from r.
func ReadMetadata(r io.Reader) (*Metadata, error) {
	br := bufio.NewReader(r)
	var buf [8]byte
	get := func() (uint64, error) {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return 0, truncated(err)
		}
		return le.Uint64(buf[:]), nil
	}

	flag, err := br.ReadByte()
	if err != nil {
		return nil, truncated(err)
	}
	if flag > 1 {
		return nil, errors.Wrapf(ErrInvalidFormat, "normalized flag %d", flag)
	}
	m := &Metadata{Normalized: flag == 1}
	var nreads uint64
	for _, dst := range []*uint64{&m.K, &m.WindowCount, &m.WindowSize, &m.MaxCoverage, &m.HashCount, &nreads} {
		if *dst, err = get(); err != nil {
			return nil, err
		}
	}
	if nreads > math.MaxUint32+1 {
		return nil, errors.Wrapf(ErrInvalidFormat, "read count %d", nreads)
	}

	m.Reads = make([]ReadInfo, 0, min(nreads, 1<<20))
	for i := uint64(0); i < nreads; i++ {
		length, err := get()
		if err != nil {
			return nil, err
		}
		nameLen, err := get()
		if err != nil {
			return nil, err
		}
		if nameLen > 1<<30 {
			return nil, errors.Wrapf(ErrInvalidFormat, "read %d name length %d", i, nameLen)
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(br, name); err != nil {
			return nil, truncated(err)
		}
		m.Reads = append(m.Reads, ReadInfo{Length: length, Name: string(name)})
	}
	if _, err := br.ReadByte(); err != io.EOF {
		return nil, errors.Wrap(ErrInvalidFormat, "trailing bytes after metadata")
	}
	return m, nil
}

// LoadMetadata reads the metadata file at path.
func LoadMetadata(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open metadata %s", path)
	}
	defer f.Close()
	m, err := ReadMetadata(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode metadata %s", path)
	}
	return m, nil
}

func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrTruncated
	}
	return err
}
