// Package decoder implements the Decoder Trait & Registry: the uniform
// contract every decoder implements, plus a process-wide registry of
// decoder descriptors and their implementations.
package decoder

import (
	"github.com/kenneth/autocrack/internal/checker"
)

// Decoder is the uniform contract every decoder implements.
//
// Crack attempts the decoder's transformation(s) against input, checking
// each candidate output against pipeline as it goes so enumerations (e.g.
// 25 Caesar shifts) can short-circuit on the first positive identification.
// Crack must never panic on attacker-controlled input in normal operation;
// the registry's Run wrapper additionally recovers any panic that escapes.
type Decoder interface {
	Descriptor() Descriptor
	Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult
}

// checkStringSuccess is the sanity predicate every decoder should apply to
// each candidate before accepting it: reject candidates identical to the
// input or empty, signalling the transform did nothing useful.
func checkStringSuccess(candidate, input string) bool {
	if candidate == "" {
		return false
	}
	if candidate == input {
		return false
	}
	return true
}

// minOutputLength is the degenerate-collapse floor: decoders producing
// shorter output after a long input are dropped.
const minOutputLength = 3
