package decoder

import (
	"strings"

	"github.com/kenneth/autocrack/internal/checker"
)

// PunycodeDecoder decodes an xn-- prefixed internationalized domain
// label per RFC 3492, grounded on
// original_source/src/decoders/punycode_decoder.rs.
type PunycodeDecoder struct{}

func (PunycodeDecoder) Descriptor() Descriptor {
	return Descriptor{
		Name:            "punycode",
		Description:     "Decodes punycode-encoded internationalized domain labels",
		Tags:            []string{"encoding"},
		Popularity:      0.15,
		ExpectedRuntime: 1,
		ExpectedSuccess: 0.03,
	}
}

const (
	punyBase        = 36
	punyTMin        = 1
	punyTMax        = 26
	punySkew        = 38
	punyDamp        = 700
	punyInitialBias = 72
	punyInitialN    = 128
)

func punyAdapt(delta, numPoints int, firstTime bool) int {
	if firstTime {
		delta /= punyDamp
	} else {
		delta /= 2
	}
	delta += delta / numPoints
	k := 0
	for delta > ((punyBase-punyTMin)*punyTMax)/2 {
		delta /= punyBase - punyTMin
		k += punyBase
	}
	return k + (punyBase-punyTMin+1)*delta/(delta+punySkew)
}

func punyDigitValue(c byte) (int, bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return int(c - 'a'), true
	case c >= 'A' && c <= 'Z':
		return int(c - 'A'), true
	case c >= '0' && c <= '9':
		return int(c-'0') + 26, true
	}
	return 0, false
}

// decodePunycodeLabel decodes a single label's bare (no "xn--" prefix)
// punycode payload.
func decodePunycodeLabel(input string) (string, bool) {
	n := punyInitialN
	i := 0
	bias := punyInitialBias
	var output []rune

	lastDelim := strings.LastIndexByte(input, '-')
	if lastDelim > 0 {
		output = []rune(input[:lastDelim])
		input = input[lastDelim+1:]
	}

	pos := 0
	for pos < len(input) {
		oldI := i
		w := 1
		for k := punyBase; ; k += punyBase {
			if pos >= len(input) {
				return "", false
			}
			digit, ok := punyDigitValue(input[pos])
			pos++
			if !ok {
				return "", false
			}
			i += digit * w
			var t int
			switch {
			case k <= bias:
				t = punyTMin
			case k >= bias+punyTMax:
				t = punyTMax
			default:
				t = k - bias
			}
			if digit < t {
				break
			}
			w *= punyBase - t
		}
		bias = punyAdapt(i-oldI, len(output)+1, oldI == 0)
		n += i / (len(output) + 1)
		i %= len(output) + 1
		if n > 0x10FFFF {
			return "", false
		}
		output = append(output[:i], append([]rune{rune(n)}, output[i:]...)...)
		i++
	}
	return string(output), true
}

func (p PunycodeDecoder) Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult {
	result := New(p.Descriptor(), input)

	if !strings.Contains(strings.ToLower(input), "xn--") {
		return result
	}

	var labels []string
	for _, label := range strings.Split(input, ".") {
		lower := strings.ToLower(label)
		if strings.HasPrefix(lower, "xn--") {
			decoded, ok := decodePunycodeLabel(label[4:])
			if !ok {
				return result
			}
			labels = append(labels, decoded)
		} else {
			labels = append(labels, label)
		}
	}
	candidate := strings.Join(labels, ".")
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
