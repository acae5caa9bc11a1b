package decoder

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kenneth/autocrack/internal/checker"
)

// BinaryDecoder decodes whitespace-separated (or unseparated, 8-bit
// aligned) binary digits, grounded on
// original_source/src/decoders/binary_decoder.rs.
type BinaryDecoder struct{}

func (BinaryDecoder) Descriptor() Descriptor {
	return Descriptor{
		Name:            "binary",
		Description:     "Decodes binary digit strings into bytes",
		Tags:            []string{"encoding"},
		Popularity:      0.5,
		ExpectedRuntime: 1,
		ExpectedSuccess: 0.2,
	}
}

func (b BinaryDecoder) Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult {
	result := New(b.Descriptor(), input)

	fields := strings.Fields(input)
	var groups []string
	if len(fields) > 1 {
		groups = fields
	} else {
		cleaned := strings.ReplaceAll(input, " ", "")
		if len(cleaned)%8 != 0 || cleaned == "" {
			return result
		}
		for i := 0; i < len(cleaned); i += 8 {
			groups = append(groups, cleaned[i:i+8])
		}
	}

	var out []byte
	for _, g := range groups {
		if len(g) == 0 || len(g) > 8 {
			return result
		}
		v, err := strconv.ParseUint(g, 2, 8)
		if err != nil {
			return result
		}
		out = append(out, byte(v))
	}
	if !utf8.Valid(out) {
		return result
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
