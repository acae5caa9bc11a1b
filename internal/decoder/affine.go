package decoder

import (
	"fmt"

	"github.com/kenneth/autocrack/internal/checker"
)

// AffineDecoder enumerates the 12 valid `a` coefficients (coprime with 26)
// times 26 `b` offsets = 312 keys, grounded on
// original_source/src/decoders/affine_cipher.rs.
type AffineDecoder struct{}

func (AffineDecoder) Descriptor() Descriptor {
	return Descriptor{
		Name:            "affine",
		Description:     "Enumerates all 312 affine cipher keys",
		Tags:            []string{"cipher", "substitution"},
		Popularity:      0.3,
		ExpectedRuntime: 8,
		ExpectedSuccess: 0.08,
	}
}

// validAValues are the integers in [1,25] coprime with 26.
var validAValues = []int{1, 3, 5, 7, 9, 11, 15, 17, 19, 21, 23, 25}

// modInverse returns the multiplicative inverse of a mod m, assuming
// gcd(a, m) == 1 (guaranteed by validAValues).
func modInverse(a, m int) int {
	a = ((a % m) + m) % m
	for x := 1; x < m; x++ {
		if (a*x)%m == 1 {
			return x
		}
	}
	return 1
}

func affineDecode(s string, a, b int) string {
	aInv := modInverse(a, 26)
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			y := int(r - 'a')
			x := (aInv * (y - b + 26*26)) % 26
			out = append(out, 'a'+rune(x))
		case r >= 'A' && r <= 'Z':
			y := int(r - 'A')
			x := (aInv * (y - b + 26*26)) % 26
			out = append(out, 'A'+rune(x))
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

func (d AffineDecoder) Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult {
	result := New(d.Descriptor(), input)

	for _, a := range validAValues {
		for b := 0; b < 26; b++ {
			candidate := affineDecode(input, a, b)
			if !checkStringSuccess(candidate, input) || len(candidate) < minOutputLength {
				continue
			}
			result.UnencryptedText = append(result.UnencryptedText, candidate)
			if pipeline != nil {
				if check := pipeline.Check(candidate, checker.Low); check.IsIdentified {
					result.Key = fmt.Sprintf("a=%d,b=%d", a, b)
					result.UpdateChecker(check)
					return result
				}
			}
		}
	}
	return result
}
