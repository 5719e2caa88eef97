package windowhash

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

type triple struct {
	hash       uint64
	start, end uint32
}

func extractAll(x *Extractor, seq string, normalize bool) []triple {
	var out []triple
	x.Extract([]byte(seq), normalize, func(h uint64, s, e uint32) {
		out = append(out, triple{h, s, e})
	})
	return out
}

func randomSeq(r *rand.Rand, n int) string {
	const alphabet = "ACGT"
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[r.Intn(4)]
	}
	return string(b)
}

func mustNew(t *testing.T, p Params) *Extractor {
	t.Helper()
	x, err := New(p)
	require.NoError(t, err)
	return x
}

func TestParamsValidate(t *testing.T) {
	require.Error(t, Params{K: 0, WindowSize: 1, WindowCount: 1}.Validate())
	require.Error(t, Params{K: 5, WindowSize: 0, WindowCount: 1}.Validate())
	require.Error(t, Params{K: 5, WindowSize: 1, WindowCount: 0}.Validate())
	require.NoError(t, Params{K: 5, WindowSize: 1, WindowCount: 1}.Validate())
}

func TestExtract_ShortSequenceYieldsNothing(t *testing.T) {
	x := mustNew(t, Params{K: 11, WindowSize: 4, WindowCount: 2})
	require.Empty(t, extractAll(x, "ACGTACGT", false))
	require.Empty(t, extractAll(x, "", false))
}

func TestExtract_EveryKmerWhenWindowIsOne(t *testing.T) {
	x := mustNew(t, Params{K: 4, WindowSize: 1, WindowCount: 1})
	got := extractAll(x, "ACGTTGCA", false)
	require.Len(t, got, 5)
	for i, tr := range got {
		require.Equal(t, uint32(i), tr.start)
		require.Equal(t, uint32(i+4), tr.end)
	}
}

func TestExtract_DeterministicAndOrdered(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	seq := randomSeq(r, 5000)
	x := mustNew(t, Params{K: 15, WindowSize: 20, WindowCount: 3})

	a := extractAll(x, seq, false)
	b := extractAll(x, seq, false)
	require.NotEmpty(t, a)
	require.Equal(t, a, b)

	for i, tr := range a {
		require.Less(t, tr.start, tr.end)
		require.LessOrEqual(t, int(tr.end), len(seq))
		if i > 0 {
			require.Greater(t, tr.start, a[i-1].start)
		}
	}
}

func TestExtract_CaseInsensitive(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	seq := randomSeq(r, 800)
	lower := []byte(seq)
	for i := range lower {
		lower[i] += 'a' - 'A'
	}
	x := mustNew(t, Params{K: 9, WindowSize: 8, WindowCount: 2})
	require.Equal(t, extractAll(x, seq, false), extractAll(x, string(lower), false))
}

func TestExtract_NormalizeUsesCollapsedCoordinates(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	base := randomSeq(r, 600)
	// Inflate homopolymers; collapsing must recover the collapsed base.
	var inflated []byte
	for i := 0; i < len(base); i++ {
		inflated = append(inflated, base[i])
		if i%5 == 0 {
			inflated = append(inflated, base[i], base[i])
		}
	}
	x := mustNew(t, Params{K: 9, WindowSize: 6, WindowCount: 2})
	collapsed := string(Collapse([]byte(base)))
	require.Equal(t, extractAll(x, collapsed, false), extractAll(x, string(inflated), true))
}

func TestCollapse(t *testing.T) {
	require.Equal(t, "ACGTA", string(Collapse([]byte("AACCCGTTTTA"))))
	require.Nil(t, Collapse(nil))
}

func TestMinimizers_MatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	for trial := 0; trial < 50; trial++ {
		n := 1 + r.Intn(200)
		w := 1 + r.Intn(30)
		kh := make([]uint64, n)
		for i := range kh {
			kh[i] = uint64(r.Intn(50))
		}
		require.Equal(t, bruteMinimizers(kh, w), minimizers(kh, w), "n=%d w=%d", n, w)
	}
}

func bruteMinimizers(kh []uint64, w int) []int {
	if w > len(kh) {
		w = len(kh)
	}
	var out []int
	for s := 0; s+w <= len(kh); s++ {
		m := s
		for i := s + 1; i < s+w; i++ {
			if kh[i] < kh[m] {
				m = i
			}
		}
		if len(out) == 0 || out[len(out)-1] != m {
			out = append(out, m)
		}
	}
	return out
}
