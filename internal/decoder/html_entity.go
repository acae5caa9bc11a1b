package decoder

import (
	"html"

	"github.com/kenneth/autocrack/internal/checker"
)

// HTMLEntityDecoder unescapes named and numeric HTML entities, grounded
// on original_source/src/decoders/html_entity_decoder.rs.
type HTMLEntityDecoder struct{}

func (HTMLEntityDecoder) Descriptor() Descriptor {
	return Descriptor{
		Name:            "html_entity",
		Description:     "Unescapes HTML entities",
		Tags:            []string{"encoding"},
		Popularity:      0.4,
		ExpectedRuntime: 1,
		ExpectedSuccess: 0.15,
	}
}

func (h HTMLEntityDecoder) Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult {
	result := New(h.Descriptor(), input)

	candidate := html.UnescapeString(input)
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
