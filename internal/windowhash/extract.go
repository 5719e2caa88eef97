// Package windowhash turns a read into window-chunk fingerprints.
//
// Every k-mer is hashed; window minimizers are picked over `WindowSize`
// consecutive k-mers; each run of `WindowCount` consecutive minimizers
// becomes one fingerprint spanning from the first minimizer's start to the
// end of the last minimizer's k-mer.
package windowhash

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// Params are the fingerprint/window size triple.
type Params struct {
	K           int // k-mer size
	WindowSize  int // k-mers per minimizer window
	WindowCount int // minimizers per fingerprint
}

// Validate rejects non-positive sizes.
func (p Params) Validate() error {
	if p.K < 1 {
		return errors.Errorf("k-mer size must be >= 1, got %d", p.K)
	}
	if p.WindowSize < 1 {
		return errors.Errorf("window size must be >= 1, got %d", p.WindowSize)
	}
	if p.WindowCount < 1 {
		return errors.Errorf("window count must be >= 1, got %d", p.WindowCount)
	}
	return nil
}

// Extractor is safe for concurrent use; it holds no mutable state.
type Extractor struct {
	p Params
}

// New returns an Extractor for p.
func New(p Params) (*Extractor, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{p: p}, nil
}

// Params returns the extractor's sizes.
func (x *Extractor) Params() Params { return x.p }

// Extract calls emit for every fingerprint of seq in left-to-right order.
// With normalize set, seq is homopolymer-collapsed first and positions
// refer to the collapsed sequence.
func (x *Extractor) Extract(seq []byte, normalize bool, emit func(hash uint64, start, end uint32)) {
	s := upper(seq)
	if normalize {
		s = Collapse(s)
	}
	k := x.p.K
	if len(s) < k || len(s) > math.MaxUint32 {
		return
	}

	nk := len(s) - k + 1
	kh := make([]uint64, nk)
	for i := range kh {
		kh[i] = xxhash.Sum64(s[i : i+k])
	}

	mins := minimizers(kh, x.p.WindowSize)
	n := x.p.WindowCount
	if len(mins) < n {
		return
	}

	buf := make([]byte, 8*n)
	for j := 0; j+n <= len(mins); j++ {
		for t := 0; t < n; t++ {
			binary.LittleEndian.PutUint64(buf[8*t:], kh[mins[j+t]])
		}
		emit(xxhash.Sum64(buf), uint32(mins[j]), uint32(mins[j+n-1]+k))
	}
}

// minimizers returns the positions of the leftmost minimal hash of every
// window of w consecutive hashes, without consecutive repeats. Fewer than w
// hashes form a single window.
func minimizers(kh []uint64, w int) []int {
	if w > len(kh) {
		w = len(kh)
	}
	var (
		out  []int
		dq   = make([]int, 0, len(kh))
		head int
	)
	for i, h := range kh {
		for len(dq) > head && kh[dq[len(dq)-1]] > h {
			dq = dq[:len(dq)-1]
		}
		dq = append(dq, i)
		if dq[head] <= i-w {
			head++
		}
		if i < w-1 {
			continue
		}
		m := dq[head]
		if len(out) == 0 || out[len(out)-1] != m {
			out = append(out, m)
		}
	}
	return out
}

// Collapse replaces every run of identical symbols with a single symbol.
func Collapse(seq []byte) []byte {
	if len(seq) == 0 {
		return nil
	}
	out := make([]byte, 1, len(seq))
	out[0] = seq[0]
	for i := 1; i < len(seq); i++ {
		if seq[i] != seq[i-1] {
			out = append(out, seq[i])
		}
	}
	return out
}

func upper(seq []byte) []byte {
	for i, c := range seq {
		if 'a' <= c && c <= 'z' {
			out := make([]byte, len(seq))
			copy(out, seq[:i])
			for j := i; j < len(seq); j++ {
				c := seq[j]
				if 'a' <= c && c <= 'z' {
					c -= 'a' - 'A'
				}
				out[j] = c
			}
			return out
		}
	}
	return seq
}
