package decoder

import (
	"strings"
	"unicode/utf8"

	"github.com/kenneth/autocrack/internal/checker"
)

// UUEncodeDecoder decodes classic Unix-to-Unix encoded text (the "begin
// MODE FILENAME" / "end" envelope), grounded on
// original_source/src/decoders/uuencode_decoder.rs.
type UUEncodeDecoder struct{}

func (UUEncodeDecoder) Descriptor() Descriptor {
	return Descriptor{
		Name:            "uuencode",
		Description:     "Decodes uuencoded text",
		Tags:            []string{"encoding"},
		Popularity:      0.1,
		ExpectedRuntime: 2,
		ExpectedSuccess: 0.02,
	}
}

func uuDecodeLine(line string) []byte {
	if line == "" {
		return nil
	}
	length := int(line[0]-' ') & 0x3f
	if length == 0 {
		return nil
	}
	data := line[1:]
	var out []byte
	for i := 0; i+4 <= len(data) && len(out) < length; i += 4 {
		var chunk [4]byte
		for j := 0; j < 4; j++ {
			c := data[i+j]
			chunk[j] = (c - ' ') & 0x3f
		}
		out = append(out,
			chunk[0]<<2|chunk[1]>>4,
			chunk[1]<<4|chunk[2]>>2,
			chunk[2]<<6|chunk[3],
		)
	}
	if len(out) > length {
		out = out[:length]
	}
	return out
}

func (u UUEncodeDecoder) Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult {
	result := New(u.Descriptor(), input)

	lines := strings.Split(input, "\n")
	var payload []string
	inBody := false
	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\r")
		if strings.HasPrefix(trimmed, "begin ") {
			inBody = true
			continue
		}
		if trimmed == "end" {
			break
		}
		if inBody {
			payload = append(payload, trimmed)
		}
	}
	if len(payload) == 0 {
		return result
	}

	var out []byte
	for _, line := range payload {
		if line == "`" || line == "" {
			continue
		}
		out = append(out, uuDecodeLine(line)...)
	}
	if !utf8.Valid(out) {
		return result
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
