package decoder

import (
	"strings"

	"github.com/kenneth/autocrack/internal/checker"
)

// NatoPhoneticDecoder maps NATO phonetic alphabet words back to letters,
// grounded on original_source/src/decoders/nato_phonetic_decoder.rs.
type NatoPhoneticDecoder struct{}

func (NatoPhoneticDecoder) Descriptor() Descriptor {
	return Descriptor{
		Name:            "nato_phonetic",
		Description:     "Decodes NATO phonetic alphabet words into letters",
		Tags:            []string{"encoding"},
		Popularity:      0.15,
		ExpectedRuntime: 1,
		ExpectedSuccess: 0.02,
	}
}

var natoAlphabet = map[string]byte{
	"alpha": 'a', "bravo": 'b', "charlie": 'c', "delta": 'd',
	"echo": 'e', "foxtrot": 'f', "golf": 'g', "hotel": 'h',
	"india": 'i', "juliett": 'j', "juliet": 'j', "kilo": 'k',
	"lima": 'l', "mike": 'm', "november": 'n', "oscar": 'o',
	"papa": 'p', "quebec": 'q', "romeo": 'r', "sierra": 's',
	"tango": 't', "uniform": 'u', "victor": 'v', "whiskey": 'w',
	"xray": 'x', "x-ray": 'x', "yankee": 'y', "zulu": 'z',
}

func (n NatoPhoneticDecoder) Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult {
	result := New(n.Descriptor(), input)

	words := strings.Fields(strings.ToLower(input))
	if len(words) < 2 {
		return result
	}
	var out []byte
	for _, w := range words {
		letter, ok := natoAlphabet[strings.Trim(w, ".,")]
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
