// internal/fasta/stream.go
package fasta

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"github.com/pkg/errors"
)

// Record is one read: the full header line (without the leading '>' or
// '@', tags included) and its sequence.
type Record struct {
	Name string
	Seq  []byte
}

// maxLine allows very long single-line reads (256 MiB).
const maxLine = 256 * 1024 * 1024

// StreamPathCtx opens path and emits every FASTA or FASTQ record in file
// order. The format is chosen from the first non-empty line.
//
// emit owns the Record it receives. Return a non-nil error to stop early.
func StreamPathCtx(ctx context.Context, path string, emit func(Record) error) error {
	rc, err := Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := StreamCtx(ctx, rc, emit); err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	return nil
}

// StreamCtx parses FASTA or FASTQ from r. It is cancelable between lines.
func StreamCtx(ctx context.Context, r io.Reader, emit func(Record) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var (
		name    string
		haveRec bool
		seq     = make([]byte, 0, 1<<16)
		fastq   bool
		started bool
		// FASTQ line within the current record: 1 seq, 2 '+', 3 quality.
		fqLine int
	)

	flush := func() error {
		if !haveRec {
			return nil
		}
		rec := Record{Name: name, Seq: append([]byte(nil), seq...)}
		seq = seq[:0]
		haveRec = false
		return emit(rec)
	}

	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := bytes.TrimRight(sc.Bytes(), "\r")
		if !started {
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			started = true
			switch line[0] {
			case '>':
			case '@':
				fastq = true
			default:
				return errors.Errorf("unrecognized read format: line starts with %q", line[0])
			}
		}
		if fastq {
			if fqLine == 0 {
				if len(line) == 0 {
					continue
				}
				if line[0] != '@' {
					return errors.Errorf("fastq: expected '@' header, got %q", truncate(line))
				}
				if err := flush(); err != nil {
					return err
				}
				name = parseHeader(line[1:])
				haveRec = true
				fqLine = 1
				continue
			}
			switch fqLine {
			case 1:
				seq = append(seq, bytes.TrimSpace(line)...)
			case 2:
				if len(line) == 0 || line[0] != '+' {
					return errors.Errorf("fastq: expected '+' separator in record %s", name)
				}
			}
			fqLine = (fqLine + 1) % 4
			continue
		}
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return err
			}
			name = parseHeader(line[1:])
			haveRec = true
			continue
		}
		seq = append(seq, bytes.TrimSpace(line)...)
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "scan")
	}
	if fastq && fqLine != 0 {
		return errors.Errorf("fastq: truncated record %s", name)
	}
	return flush()
}

func parseHeader(hdr []byte) string {
	return string(bytes.TrimSpace(hdr))
}

func truncate(b []byte) string {
	if len(b) > 32 {
		return string(b[:32]) + "..."
	}
	return string(b)
}
