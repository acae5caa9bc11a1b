package decoder

import (
	"io"
	"mime/quotedprintable"
	"strings"
	"unicode/utf8"

	"github.com/kenneth/autocrack/internal/checker"
)

// QuotedPrintableDecoder decodes MIME quoted-printable text, grounded on
// original_source/src/decoders/quoted_printable_decoder.rs.
type QuotedPrintableDecoder struct{}

func (QuotedPrintableDecoder) Descriptor() Descriptor {
	return Descriptor{
		Name:            "quoted_printable",
		Description:     "Decodes MIME quoted-printable text",
		Tags:            []string{"encoding"},
		Popularity:      0.3,
		ExpectedRuntime: 1,
		ExpectedSuccess: 0.1,
	}
}

func (q QuotedPrintableDecoder) Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult {
	result := New(q.Descriptor(), input)

	if !strings.Contains(input, "=") {
		return result
	}
	reader := quotedprintable.NewReader(strings.NewReader(input))
	decoded, err := io.ReadAll(reader)
	if err != nil || !utf8.Valid(decoded) {
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
