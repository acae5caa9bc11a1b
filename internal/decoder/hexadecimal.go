package decoder

import (
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/kenneth/autocrack/internal/checker"
)

// HexadecimalDecoder decodes a hex string, optionally space-separated or
// "0x"-prefixed, grounded on original_source/src/decoders/hexadecimal_decoder.rs.
type HexadecimalDecoder struct{}

func (HexadecimalDecoder) Descriptor() Descriptor {
	return Descriptor{
		Name:            "hexadecimal",
		Description:     "Decodes hexadecimal-encoded text",
		Tags:            []string{"encoding", "common"},
		Popularity:      0.85,
		ExpectedRuntime: 1,
		ExpectedSuccess: 0.55,
	}
}

func (h HexadecimalDecoder) Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult {
	result := New(h.Descriptor(), input)

	cleaned := strings.TrimSpace(input)
	cleaned = strings.TrimPrefix(cleaned, "0x")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "\n", "")
	if len(cleaned)%2 != 0 {
		return result
	}

	decoded, err := hex.DecodeString(cleaned)
	if err != nil {
		return result
	}
	if !utf8.Valid(decoded) {
		return result
	}
	candidate := string(decoded)
	if !checkStringSuccess(candidate, input) || len(candidate) < minOutputLength {
		return result
	}

	result.UnencryptedText = []string{candidate}
	if pipeline != nil {
		if check := pipeline.Check(candidate, sensitivity); check.IsIdentified {
			result.UpdateChecker(check)
		}
	}
	return result
}
