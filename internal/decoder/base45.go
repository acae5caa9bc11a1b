package decoder

import (
	"strings"
	"unicode/utf8"

	"github.com/kenneth/autocrack/internal/checker"
)

// Base45Decoder decodes RFC 9285 base45 (used by EU health certificates
// and similar QR-friendly payloads), grounded on
// original_source/src/decoders/base45_decoder.rs. The standard library
// has no base45 codec, so this is a direct RFC 9285 implementation.
type Base45Decoder struct{}

func (Base45Decoder) Descriptor() Descriptor {
	return Descriptor{
		Name:            "base45",
		Description:     "Decodes base45 (RFC 9285)",
		Tags:            []string{"encoding"},
		Popularity:      0.2,
		ExpectedRuntime: 1,
		ExpectedSuccess: 0.04,
	}
}

const base45Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

func base45Decode(s string) ([]byte, bool) {
	index := func(c byte) (int, bool) {
		i := strings.IndexByte(base45Alphabet, c)
		if i < 0 {
			return 0, false
		}
		return i, true
	}

	var out []byte
	i := 0
	for i+2 < len(s) {
		a, ok1 := index(s[i])
		b, ok2 := index(s[i+1])
		c, ok3 := index(s[i+2])
		if !ok1 || !ok2 || !ok3 {
			return nil, false
		}
		n := a + b*45 + c*45*45
		if n > 65535 {
			return nil, false
		}
		out = append(out, byte(n/256), byte(n%256))
		i += 3
	}
	if rem := len(s) - i; rem == 2 {
		a, ok1 := index(s[i])
		b, ok2 := index(s[i+1])
		if !ok1 || !ok2 {
			return nil, false
		}
		n := a + b*45
		if n > 255 {
			return nil, false
		}
		out = append(out, byte(n))
	} else if rem != 0 {
		return nil, false
	}
	return out, true
}

func (b Base45Decoder) Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult {
	result := New(b.Descriptor(), input)

	cleaned := strings.ToUpper(strings.TrimSpace(input))
	decoded, ok := base45Decode(cleaned)
	if !ok || !utf8.Valid(decoded) {
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
