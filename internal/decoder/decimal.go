package decoder

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kenneth/autocrack/internal/checker"
)

// DecimalDecoder decodes whitespace-separated decimal byte groups,
// grounded on original_source/src/decoders/decimal_decoder.rs.
type DecimalDecoder struct{}

func (DecimalDecoder) Descriptor() Descriptor {
	return Descriptor{
		Name:            "decimal",
		Description:     "Decodes decimal digit groups into bytes",
		Tags:            []string{"encoding"},
		Popularity:      0.35,
		ExpectedRuntime: 1,
		ExpectedSuccess: 0.12,
	}
}

func (d DecimalDecoder) Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult {
	result := New(d.Descriptor(), input)

	fields := strings.Fields(input)
	if len(fields) == 0 {
		return result
	}
	var out []byte
	for _, f := range fields {
		v, err := strconv.ParseUint(f, 10, 32)
		if err != nil || v > 255 {
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
