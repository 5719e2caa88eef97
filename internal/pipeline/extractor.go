// internal/pipeline/extractor.go
package pipeline

// Extractor is the minimal capability the pipeline needs: a deterministic
// function from a sequence to its fingerprint triples. Any hasher
// (including fakes in tests) can satisfy this. Implementations must be
// safe for concurrent use.
type Extractor interface {
	Extract(seq []byte, normalize bool, emit func(hash uint64, start, end uint32))
}
