package decoder

import (
	"strings"

	"github.com/kenneth/autocrack/internal/checker"
)

// BaconianDecoder decodes the 26-letter Bacon cipher (groups of
// 5 A/B symbols, or 0/1), grounded on
// original_source/src/decoders/baconian_decoder.rs and bacon_cipher_decoder.rs.
type BaconianDecoder struct{}

func (BaconianDecoder) Descriptor() Descriptor {
	return Descriptor{
		Name:            "baconian",
		Description:     "Decodes the Baconian (A/B or 0/1) cipher",
		Tags:            []string{"cipher", "steganography"},
		Popularity:      0.15,
		ExpectedRuntime: 1,
		ExpectedSuccess: 0.02,
	}
}

// baconTable maps each 5-symbol code (using 'A'/'B') to a letter. This is
// the 26-letter table: I/J and U/V each have their own code.
var baconTable = map[string]byte{
	"AAAAA": 'a', "AAAAB": 'b', "AAABA": 'c', "AAABB": 'd', "AABAA": 'e',
	"AABAB": 'f', "AABBA": 'g', "AABBB": 'h', "ABAAA": 'i', "ABAAB": 'j',
	"ABABA": 'k', "ABABB": 'l', "ABBAA": 'm', "ABBAB": 'n', "ABBBA": 'o',
	"ABBBB": 'p', "BAAAA": 'q', "BAAAB": 'r', "BAABA": 's', "BAABB": 't',
	"BABAA": 'u', "BABAB": 'v', "BABBA": 'w', "BABBB": 'x', "BBAAA": 'y',
	"BBAAB": 'z',
}

func (b BaconianDecoder) Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult {
	result := New(b.Descriptor(), input)

	normalized := normalizeBacon(input)
	if normalized == "" || len(normalized)%5 != 0 {
		return result
	}

	var out []byte
	for i := 0; i < len(normalized); i += 5 {
		code := normalized[i : i+5]
		letter, ok := baconTable[code]
		if !ok {
			return result
		}
		out = append(out, letter)
	}
	candidate := string(out)
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

func normalizeBacon(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case 'A', 'a', '0':
			b.WriteByte('A')
		case 'B', 'b', '1':
			b.WriteByte('B')
		case ' ', '\n', '\t', '\r':
			continue
		default:
			return ""
		}
	}
	return b.String()
}
