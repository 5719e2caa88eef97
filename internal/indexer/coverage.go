package indexer

// CoverageSummary describes how a max-coverage threshold splits the
// compact indices. Indices themselves are never renumbered.
type CoverageSummary struct {
	Indexed         uint64 // indices minted
	Discarded       uint64 // coverage above the threshold
	MaxCoverage     uint64 // over all indices
	MaxKeptCoverage uint64 // over kept indices only
}

// Kept is the number of indices at or below the threshold.
func (s CoverageSummary) Kept() uint64 { return s.Indexed - s.Discarded }

// FilterCoverage classifies every index of coverage against max.
func FilterCoverage(coverage []uint32, max uint64) CoverageSummary {
	s := CoverageSummary{Indexed: uint64(len(coverage))}
	for _, c := range coverage {
		cov := uint64(c)
		if cov > s.MaxCoverage {
			s.MaxCoverage = cov
		}
		if !kept(c, max) {
			s.Discarded++
			continue
		}
		if cov > s.MaxKeptCoverage {
			s.MaxKeptCoverage = cov
		}
	}
	return s
}

func kept(coverage uint32, max uint64) bool { return uint64(coverage) <= max }
