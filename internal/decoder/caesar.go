package decoder

import (
	"fmt"
	"strconv"

	"github.com/kenneth/autocrack/internal/checker"
)

// CaesarDecoder enumerates all 25 non-trivial shifts, grounded on
// original_source's Caesar cipher decoder. ROT13 is shift 13 of this
// enumeration, not a separate decoder.
type CaesarDecoder struct{}

func (CaesarDecoder) Descriptor() Descriptor {
	return Descriptor{
		Name:            "caesar",
		Description:     "Enumerates all 25 Caesar cipher shifts",
		Tags:            []string{"cipher", "substitution"},
		Popularity:      0.7,
		ExpectedRuntime: 3,
		ExpectedSuccess: 0.3,
	}
}

func caesarShift(s string, shift int) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, 'a'+(r-'a'+rune(shift))%26)
		case r >= 'A' && r <= 'Z':
			out = append(out, 'A'+(r-'A'+rune(shift))%26)
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

func (c CaesarDecoder) Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult {
	result := New(c.Descriptor(), input)

	for shift := 1; shift < 26; shift++ {
		candidate := caesarShift(input, shift)
		if !checkStringSuccess(candidate, input) || len(candidate) < minOutputLength {
			continue
		}
		result.UnencryptedText = append(result.UnencryptedText, candidate)
		if pipeline != nil {
			if check := pipeline.Check(candidate, checker.Low); check.IsIdentified {
				result.Key = strconv.Itoa(shift)
				result.UpdateChecker(check)
				return result
			}
		}
	}
	if len(result.UnencryptedText) > 0 {
		result.Key = fmt.Sprintf("1..25 (%d candidates)", len(result.UnencryptedText))
	}
	return result
}
