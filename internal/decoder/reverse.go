package decoder

import "github.com/kenneth/autocrack/internal/checker"

// ReverseDecoder reverses the input string by rune, grounded on
// original_source/src/decoders/reverse_decoder.rs.
type ReverseDecoder struct{}

func (ReverseDecoder) Descriptor() Descriptor {
	return Descriptor{
		Name:            "reverse",
		Description:     "Reverses the input text",
		Tags:            []string{"transposition", "common"},
		Popularity:      0.5,
		ExpectedRuntime: 1,
		ExpectedSuccess: 0.1,
	}
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func (r ReverseDecoder) Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult {
	result := New(r.Descriptor(), input)

	candidate := reverseString(input)
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
