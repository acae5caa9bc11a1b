package decoder

// Descriptor is the immutable, per-decoder metadata record. Descriptors
// live for the process lifetime as registry singletons.
type Descriptor struct {
	// Name is the decoder's stable identifier, e.g. "base64", "caesar".
	Name string
	// Description is a short human-readable summary.
	Description string
	// Link is an optional reference URL.
	Link string
	// Tags categorize the decoder ("encoding", "cipher", "substitution").
	Tags []string
	// Popularity is a scheduling-priority score in [0,1]; higher runs
	// earlier, all else equal.
	Popularity float64

	// ExpectedRuntime is a soft, informational runtime hint in
	// milliseconds. Nothing in the search engine reads it; it never
	// affects correctness or scheduling order.
	ExpectedRuntime uint32
	// ExpectedSuccess is a soft hint: historical success rate in [0,1].
	ExpectedSuccess float64
	// FailureRuntime is a soft hint: typical runtime in milliseconds when
	// the decoder determines it is not applicable.
	FailureRuntime uint32
	// NormalisedEntropy is an optional per-decoder entropy fingerprint of
	// its typical output, restored as a scheduling hint alongside the
	// other interface.rs fields; unused by the core's priority function.
	NormalisedEntropy []float64
}
