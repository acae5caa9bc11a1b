package decoder

import (
	"math"
	"strings"

	"github.com/kenneth/autocrack/internal/checker"
)

// englishFreq is the standard English letter frequency table, a-z, used
// by the Vigenère/Beaufort breaker's chi-squared key search.
var englishFreq = [26]float64{
	0.08167, 0.01492, 0.02782, 0.04253, 0.12702, 0.02228, 0.02015,
	0.06094, 0.06966, 0.00153, 0.00772, 0.04025, 0.02406, 0.06749,
	0.07507, 0.01929, 0.00095, 0.05987, 0.06327, 0.09056, 0.02758,
	0.00978, 0.02360, 0.00150, 0.01974, 0.00074,
}

// breakKeyLength runs a chi-squared key search for the given key length
// over letters, combining each column's best shift. decodeLetter performs
// the cipher-specific inverse shift (Vigenère subtracts the key letter,
// Beaufort subtracts the ciphertext from the key).
func breakKeyLength(letters []rune, keyLen int, decodeLetter func(c, k rune) rune) (key string, plain []rune) {
	keyRunes := make([]rune, keyLen)
	for col := 0; col < keyLen; col++ {
		var column []rune
		for i := col; i < len(letters); i += keyLen {
			column = append(column, letters[i])
		}
		keyRunes[col] = bestShiftForColumn(column, decodeLetter)
	}

	out := make([]rune, len(letters))
	for i, c := range letters {
		out[i] = decodeLetter(c, keyRunes[i%keyLen])
	}
	return string(keyRunes), out
}

func bestShiftForColumn(column []rune, decodeLetter func(c, k rune) rune) rune {
	bestScore := math.MaxFloat64
	bestKey := rune('a')
	for k := rune('a'); k <= 'z'; k++ {
		var counts [26]int
		for _, c := range column {
			d := decodeLetter(c, k)
			counts[d-'a']++
		}
		score := chiSquared(counts, len(column))
		if score < bestScore {
			bestScore = score
			bestKey = k
		}
	}
	return bestKey
}

func chiSquared(counts [26]int, total int) float64 {
	if total == 0 {
		return math.MaxFloat64
	}
	var sum float64
	for i, c := range counts {
		expected := englishFreq[i] * float64(total)
		if expected == 0 {
			continue
		}
		diff := float64(c) - expected
		sum += diff * diff / expected
	}
	return sum
}

func extractLowerLetters(s string) (letters []rune, positions []int, isUpper []bool) {
	for i, r := range []rune(s) {
		switch {
		case r >= 'a' && r <= 'z':
			letters = append(letters, r)
			positions = append(positions, i)
			isUpper = append(isUpper, false)
		case r >= 'A' && r <= 'Z':
			letters = append(letters, r-'A'+'a')
			positions = append(positions, i)
			isUpper = append(isUpper, true)
		}
	}
	return
}

func reinsert(original string, positions []int, isUpper []bool, decoded []rune) string {
	runes := []rune(original)
	for i, pos := range positions {
		r := decoded[i]
		if isUpper[i] {
			r = r - 'a' + 'A'
		}
		runes[pos] = r
	}
	return string(runes)
}

// VigenereDecoder breaks a Vigenère cipher over key lengths 3..19,
// grounded on original_source's beaufort/vigenere decoder family.
type VigenereDecoder struct{}

func (VigenereDecoder) Descriptor() Descriptor {
	return Descriptor{
		Name:            "vigenere",
		Description:     "Breaks a Vigenère cipher via chi-squared key search (key lengths 3-19)",
		Tags:            []string{"cipher", "polyalphabetic"},
		Popularity:      0.25,
		ExpectedRuntime: 15,
		ExpectedSuccess: 0.05,
	}
}

func vigenereDecodeLetter(c, k rune) rune {
	return 'a' + ((c-'a')-(k-'a')+26)%26
}

func (v VigenereDecoder) Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult {
	return breakPolyalphabetic(v.Descriptor(), input, pipeline, vigenereDecodeLetter)
}

// BeaufortDecoder breaks a Beaufort cipher (reciprocal of Vigenère: key
// minus ciphertext rather than ciphertext minus key), over key lengths
// 3..19, grounded on original_source's beaufort_decoder.rs.
type BeaufortDecoder struct{}

func (BeaufortDecoder) Descriptor() Descriptor {
	return Descriptor{
		Name:            "beaufort",
		Description:     "Breaks a Beaufort cipher via chi-squared key search (key lengths 3-19)",
		Tags:            []string{"cipher", "polyalphabetic"},
		Popularity:      0.2,
		ExpectedRuntime: 15,
		ExpectedSuccess: 0.04,
	}
}

func beaufortDecodeLetter(c, k rune) rune {
	return 'a' + ((k-'a')-(c-'a')+26)%26
}

func (b BeaufortDecoder) Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult {
	return breakPolyalphabetic(b.Descriptor(), input, pipeline, beaufortDecodeLetter)
}

func breakPolyalphabetic(desc Descriptor, input string, pipeline *checker.Pipeline, decodeLetter func(c, k rune) rune) CrackResult {
	result := New(desc, input)

	lower := strings.ToLower(input)
	letters, positions, isUpper := extractLowerLetters(lower)
	if len(letters) < 9 {
		return result
	}

	for keyLen := 3; keyLen <= 19; keyLen++ {
		if keyLen > len(letters) {
			break
		}
		key, decoded := breakKeyLength(letters, keyLen, decodeLetter)
		candidate := reinsert(input, positions, isUpper, decoded)
		if !checkStringSuccess(candidate, input) || len(candidate) < minOutputLength {
			continue
		}
		result.UnencryptedText = append(result.UnencryptedText, candidate)
		if pipeline != nil {
			if check := pipeline.Check(candidate, checker.Low); check.IsIdentified {
				result.Key = key
				result.UpdateChecker(check)
				return result
			}
		}
	}
	return result
}
