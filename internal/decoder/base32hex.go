package decoder

import (
	"encoding/base32"
	"strings"
	"unicode/utf8"

	"github.com/kenneth/autocrack/internal/checker"
)

// Base32HexDecoder decodes the extended-hex base32 alphabet (RFC 4648
// §7), grounded on original_source/src/decoders/base32hex_decoder.rs.
type Base32HexDecoder struct{}

func (Base32HexDecoder) Descriptor() Descriptor {
	return Descriptor{
		Name:            "base32hex",
		Description:     "Decodes base32 (extended hex alphabet)",
		Tags:            []string{"encoding"},
		Popularity:      0.3,
		ExpectedRuntime: 1,
		ExpectedSuccess: 0.08,
	}
}

func (b Base32HexDecoder) Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult {
	result := New(b.Descriptor(), input)

	cleaned := strings.ToUpper(strings.TrimSpace(input))
	for _, enc := range []*base32.Encoding{base32.HexEncoding, base32.HexEncoding.WithPadding(base32.NoPadding)} {
		decoded, err := enc.DecodeString(cleaned)
		if err != nil || !utf8.Valid(decoded) {
			continue
		}
		candidate := string(decoded)
		if !checkStringSuccess(candidate, input) || len(candidate) < minOutputLength {
			continue
		}
		result.UnencryptedText = []string{candidate}
		if pipeline != nil {
			if check := pipeline.Check(candidate, sensitivity); check.IsIdentified {
				result.UpdateChecker(check)
			}
		}
		return result
	}
	return result
}
