package decoder

import (
	"strings"

	"github.com/kenneth/autocrack/internal/checker"
)

// CitrixCTX1Decoder reverses the Citrix CTX1 password-obfuscation cipher,
// grounded on original_source/src/decoders/citrix_ctx1_decoder.rs: the
// input (uppercase ASCII, length a multiple of 4) is byte-reversed, then
// walked two bytes at a time, each byte's "nibble" recovered as
// (byte - 'A') with the high nibble coming from the following byte
// shifted left 4, XORed against the same extraction one pair ahead and
// against the running constant 0xA5, with zero bytes dropped and the
// result reversed back to restore original byte order.
type CitrixCTX1Decoder struct{}

func (CitrixCTX1Decoder) Descriptor() Descriptor {
	return Descriptor{
		Name:            "citrix_ctx1",
		Description:     "Citrix CTX1 is a very old encoding that was used for encoding Citrix passwords.",
		Link:            "https://www.remkoweijnen.nl/blog/2012/05/13/encoding-and-decoding-citrix-passwords/",
		Tags:            []string{"citrix_ctx1", "citrix", "passwords"},
		Popularity:      0.1,
		ExpectedRuntime: 1,
		ExpectedSuccess: 1.0,
	}
}

// decodeCitrixCTX1 returns (decoded, true) when text is structurally a
// valid CTX1 string (multiple of 4 bytes, already-uppercase ASCII); the
// decoded string may still be empty or garbage, exactly mirroring
// original_source's "None only on the length/charset gate" contract.
func decodeCitrixCTX1(text string) (string, bool) {
	if len(text)%4 != 0 {
		return "", false
	}
	if strings.ToUpper(text) != text {
		return "", false
	}
	for i := 0; i < len(text); i++ {
		if text[i] > 0x7F {
			return "", false
		}
	}

	rev := []byte(text)
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}

	result := make([]byte, 0, len(rev)/2)
	for i := 0; i < len(rev); i += 2 {
		var temp byte
		if i+2 >= len(rev) {
			temp = 0
		} else {
			temp = ((rev[i+2] - 0x41) & 0xF) ^ (((rev[i+3] - 0x41) << 4) & 0xF0)
		}
		temp ^= (((rev[i] - 0x41) & 0xF) ^ (((rev[i+1] - 0x41) << 4) & 0xF0)) ^ 0xA5
		result = append(result, temp)
	}

	filtered := result[:0]
	for _, b := range result {
		if b != 0 {
			filtered = append(filtered, b)
		}
	}
	for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	}

	return string(filtered), true
}

func (d CitrixCTX1Decoder) Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult {
	result := New(d.Descriptor(), input)

	decoded, ok := decodeCitrixCTX1(input)
	if !ok {
		return result
	}
	if !checkStringSuccess(decoded, input) {
		return result
	}

	result.UnencryptedText = []string{decoded}
	if pipeline != nil {
		if check := pipeline.Check(decoded, sensitivity); check.IsIdentified {
			result.UpdateChecker(check)
		}
	}
	return result
}
