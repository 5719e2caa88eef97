// Package indexfile encodes and decodes the two outputs of an index build.
//
// Metadata (<prefix>.metadata), little-endian, no padding:
//
//	normalized flag, 1 byte (0 or 1)
//	k, window count, window size, max coverage, 8 bytes each
//	indexed hash count, read count, 8 bytes each
//	per read, in read id order:
//		length, 8 bytes (homopolymer-collapsed when the flag is set)
//		name length, 8 bytes
//		name bytes
//
// Positions (<prefix>.positions), little-endian, no padding, a sequence of
// records terminated by end of file:
//
//	read id, 4 bytes
//	count, 4 bytes
//	count x (compact index, start, end), 4 bytes each
//
// The build itself only writes. LoadMetadata and OpenPositions (mmap-backed,
// iterated with ForEach) are the read API for downstream matchers.
//
// Compact indices are dense within one build only. They depend on the
// partition count and discovery order, so two builds of the same reads may
// number the same fingerprint differently; never persist them as an
// identity across builds. Indices are not renumbered after coverage
// filtering either, so the indexed hash count in the metadata counts kept
// indices and is not an upper bound on the indices in the positions file.
package indexfile

import "encoding/binary"

var le = binary.LittleEndian
