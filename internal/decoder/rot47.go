package decoder

import "github.com/kenneth/autocrack/internal/checker"

// Rot47Decoder applies the single, keyless ROT47 transform over the
// printable ASCII range 33..126, grounded on
// original_source/src/decoders/rot47_decoder.rs.
type Rot47Decoder struct{}

func (Rot47Decoder) Descriptor() Descriptor {
	return Descriptor{
		Name:            "rot47",
		Description:     "Applies the ROT47 substitution over printable ASCII",
		Tags:            []string{"cipher", "substitution"},
		Popularity:      0.4,
		ExpectedRuntime: 1,
		ExpectedSuccess: 0.1,
	}
}

func rot47(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b >= 33 && b <= 126 {
			out[i] = 33 + (b-33+47)%94
		} else {
			out[i] = b
		}
	}
	return string(out)
}

func (r Rot47Decoder) Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult {
	result := New(r.Descriptor(), input)
	candidate := rot47(input)
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
