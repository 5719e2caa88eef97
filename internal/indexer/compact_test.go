package indexer

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"matchchains/internal/indexfile"
)

type rawTriple struct {
	hash       uint64
	start, end uint32
}

func rawStream(groups map[uint32][]rawTriple, order ...uint32) *bytes.Buffer {
	var buf bytes.Buffer
	for _, read := range order {
		g := groups[read]
		_ = binary.Write(&buf, binary.LittleEndian, read)
		_ = binary.Write(&buf, binary.LittleEndian, uint32(len(g)))
		for _, tr := range g {
			_ = binary.Write(&buf, binary.LittleEndian, tr.hash)
			_ = binary.Write(&buf, binary.LittleEndian, tr.start)
			_ = binary.Write(&buf, binary.LittleEndian, tr.end)
		}
	}
	return &buf
}

func decodePositions(t *testing.T, data []byte) []indexfile.Record {
	t.Helper()
	path := filepath.Join(t.TempDir(), "p.positions")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	p, err := indexfile.OpenPositions(path)
	require.NoError(t, err)
	defer p.Close()
	var out []indexfile.Record
	require.NoError(t, p.ForEach(func(r indexfile.Record) error {
		out = append(out, indexfile.Record{Read: r.Read, Entries: append([]indexfile.Entry(nil), r.Entries...)})
		return nil
	}))
	return out
}

func TestCompact_DropsAndPreservesOrder(t *testing.T) {
	tbl := newHashTable()
	for _, h := range []uint64{100, 200, 200, 300, 300, 300} {
		require.NoError(t, tbl.repeat(h))
	}
	// 100 -> 0 (cov 2), 200 -> 1 (cov 3), 300 -> 2 (cov 4)

	raw := rawStream(map[uint32][]rawTriple{
		5: {{300, 0, 9}, {999, 1, 2}, {100, 4, 8}, {200, 6, 7}},
		1: {{999, 0, 1}},
		2: {{300, 3, 4}},
	}, 5, 1, 2)

	var out bytes.Buffer
	w := indexfile.NewPositionsWriter(&out)
	require.NoError(t, compact(raw, w, tbl, 3))
	require.NoError(t, w.Flush())

	want := []indexfile.Record{
		{Read: 5, Entries: []indexfile.Entry{{Index: 0, Start: 4, End: 8}, {Index: 1, Start: 6, End: 7}}},
	}
	if diff := cmp.Diff(want, decodePositions(t, out.Bytes())); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, uint64(1), w.Records())
	require.Equal(t, uint64(2), w.Entries())
}

func TestCompact_Truncated(t *testing.T) {
	raw := rawStream(map[uint32][]rawTriple{0: {{1, 0, 1}, {2, 1, 2}}}, 0)
	raw.Truncate(raw.Len() - 5)
	w := indexfile.NewPositionsWriter(&bytes.Buffer{})
	require.ErrorIs(t, compact(raw, w, newHashTable(), 10), ErrTruncatedStream)

	w = indexfile.NewPositionsWriter(&bytes.Buffer{})
	require.ErrorIs(t, compact(bytes.NewReader([]byte{1, 2, 3}), w, newHashTable(), 10), ErrTruncatedStream)
}
