// Package reads holds per-read bookkeeping for an index build: dense ids,
// display names and lengths.
package reads

import "strings"

// Storage maps dense read ids to names and lengths. It is not safe for
// concurrent use; the ingestion stage serializes every Set.
type Storage struct {
	names   []string
	lengths []uint64
}

// Set records the name and length of read id. Ids may arrive out of order;
// the tables grow to cover the largest id seen.
func (s *Storage) Set(id uint32, name string, length uint64) {
	if n := uint64(id) + 1; n > uint64(len(s.names)) {
		grow := int(n - uint64(len(s.names)))
		s.names = append(s.names, make([]string, grow)...)
		s.lengths = append(s.lengths, make([]uint64, grow)...)
	}
	s.names[id] = name
	s.lengths[id] = length
}

// Len is the number of read ids covered.
func (s *Storage) Len() int { return len(s.names) }

// Name returns the raw name of read id, tags included.
func (s *Storage) Name(id uint32) string { return s.names[id] }

// Length returns the recorded length of read id.
func (s *Storage) Length(id uint32) uint64 { return s.lengths[id] }

// NormalizedLength is the number of maximal runs of identical symbols in
// seq, i.e. its length after homopolymer compression.
func NormalizedLength(seq []byte) uint64 {
	if len(seq) == 0 {
		return 0
	}
	n := uint64(1)
	for i := 1; i < len(seq); i++ {
		if seq[i] != seq[i-1] {
			n++
		}
	}
	return n
}

// StripTags truncates name at its first space, tab, CR or LF.
func StripTags(name string) string {
	if i := strings.IndexAny(name, " \t\r\n"); i >= 0 {
		return name[:i]
	}
	return name
}
