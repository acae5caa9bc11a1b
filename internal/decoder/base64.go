package decoder

import (
	"encoding/base64"
	"unicode/utf8"

	"github.com/kenneth/autocrack/internal/checker"
)

// Base64Decoder decodes standard and URL-safe base64, with and without
// padding, grounded on original_source/src/decoders/ (base64 family).
type Base64Decoder struct{}

func (Base64Decoder) Descriptor() Descriptor {
	return Descriptor{
		Name:            "base64",
		Description:     "Decodes base64 (standard and URL-safe, padded or not)",
		Tags:            []string{"encoding", "common"},
		Popularity:      0.9,
		ExpectedRuntime: 1,
		ExpectedSuccess: 0.6,
	}
}

func (b Base64Decoder) Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult {
	result := New(b.Descriptor(), input)

	encodings := []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding,
		base64.URLEncoding, base64.RawURLEncoding,
	}

	seen := make(map[string]bool)
	for _, enc := range encodings {
		decoded, err := enc.DecodeString(input)
		if err != nil {
			continue
		}
		if !utf8.Valid(decoded) {
			continue
		}
		candidate := string(decoded)
		if !checkStringSuccess(candidate, input) || len(candidate) < minOutputLength {
			continue
		}
		if seen[candidate] {
			continue
		}
		seen[candidate] = true

		result.UnencryptedText = append(result.UnencryptedText, candidate)
		if pipeline != nil {
			if check := pipeline.Check(candidate, sensitivity); check.IsIdentified {
				result.UpdateChecker(check)
				return result
			}
		}
	}
	return result
}
