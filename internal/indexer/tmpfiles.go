package indexer

import (
	"bufio"
	"io"
	"os"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// tmpWriter is a buffered, optionally snappy-framed temp stream.
type tmpWriter struct {
	path string
	f    *os.File
	zw   *snappy.Writer
	bw   *bufio.Writer
}

func createTmp(path string, compress bool, bufSize int) (*tmpWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "create temp file %s", path)
	}
	w := &tmpWriter{path: path, f: f}
	var dst io.Writer = f
	if compress {
		w.zw = snappy.NewBufferedWriter(f)
		dst = w.zw
	}
	w.bw = bufio.NewWriterSize(dst, bufSize)
	return w, nil
}

func (w *tmpWriter) Write(p []byte) (int, error) {
	n, err := w.bw.Write(p)
	if err != nil {
		return n, errors.Wrapf(err, "write temp file %s", w.path)
	}
	return n, nil
}

// Close flushes everything and closes the file. The file stays on disk.
func (w *tmpWriter) Close() error {
	err := w.bw.Flush()
	if w.zw != nil {
		if zerr := w.zw.Close(); zerr != nil && err == nil {
			err = zerr
		}
	}
	if cerr := w.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "close temp file %s", w.path)
}

// diskUsage sums the sizes of the paths that exist.
func diskUsage(paths ...string) uint64 {
	var total uint64
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			total += uint64(info.Size())
		}
	}
	return total
}

type tmpReader struct {
	*bufio.Reader
	f *os.File
}

func openTmp(path string, compress bool) (*tmpReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open temp file %s", path)
	}
	var src io.Reader = f
	if compress {
		src = snappy.NewReader(f)
	}
	return &tmpReader{Reader: bufio.NewReaderSize(src, 1<<20), f: f}, nil
}

func (r *tmpReader) Close() error { return r.f.Close() }

// removeFiles deletes paths, ignoring files that are already gone.
func removeFiles(paths ...string) error {
	var first error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && first == nil {
			first = errors.Wrapf(err, "remove %s", p)
		}
	}
	return first
}
