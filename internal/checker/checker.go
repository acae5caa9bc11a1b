// Package checker implements the plaintext-detection pipeline: a layered
// composition of cheap-to-expensive tests, with an optional human
// arbitration escape hatch.
package checker

// Sensitivity tunes how aggressively a layer accepts marginal matches.
// Decoders pass a coarser sensitivity during wide enumerations (e.g. all
// 25 Caesar shifts) to avoid paying the most expensive layers per shift.
type Sensitivity int

const (
	// Low only accepts very strong signals; used for exhaustive
	// enumerations where most candidates are noise.
	Low Sensitivity = iota
	// Medium is the default sensitivity for a single-path decoder.
	Medium
	// High accepts weaker signals, for callers that already suspect the
	// text is plaintext.
	High
)

// Result is produced by a checker layer, or by the composite Pipeline.
type Result struct {
	// IsIdentified is true iff this layer (or the pipeline) judged the
	// text to be plaintext.
	IsIdentified bool

	// Text is the text that was tested, echoed back for convenience.
	Text string

	// Description explains why the text was (or wasn't) identified.
	Description string

	// CheckerName identifies the winning layer ("structural", "crib",
	// "identify", "wordlist", "language_model", "default").
	CheckerName string

	// Link is an optional reference URL for the checker's method.
	Link string

	// CheckerDescription is a static, human-readable description of the
	// checker that produced this result.
	CheckerDescription string

	// Confidence is this layer's own confidence in [0,1], used by the
	// search engine's top_results tie-break.
	Confidence float64
}

// Checker is a single layer of the pipeline.
type Checker interface {
	// Name is the stable identifier used by config.CheckersToRun filters.
	Name() string
	// Check tests text at the given sensitivity.
	Check(text string, sensitivity Sensitivity) Result
}
