package decoder

import "github.com/kenneth/autocrack/internal/checker"

// CrackResult is the per-step record produced by every decoder attempt.
// It is serializable to JSON via the struct tags below; that JSON is
// exactly what the Cache Store writes for each step of a Decoding Path.
type CrackResult struct {
	DecoderName string `json:"decoder_name"`
	Input       string `json:"input"`

	// UnencryptedText is nil/empty when the decoder rejected the input;
	// otherwise an ordered, non-empty list of candidate outputs.
	UnencryptedText []string `json:"unencrypted_text,omitempty"`

	// Key is the textual key used, for decoders that chose one (Caesar
	// shift, Vigenère key, Affine a/b pair, ...).
	Key string `json:"key,omitempty"`

	CheckerName string  `json:"checker_name,omitempty"`
	Success     bool    `json:"success"`
	Confidence  float64 `json:"confidence,omitempty"`

	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
}

// New initializes a CrackResult with decoder identity and input set, every
// other field cleared.
func New(desc Descriptor, input string) CrackResult {
	return CrackResult{
		DecoderName: desc.Name,
		Input:       input,
		Description: desc.Description,
		Link:        desc.Link,
	}
}

// UpdateChecker sets Success, CheckerName, Description, and Link from a
// positive Check Result, and promotes the confirmed text to the front of
// UnencryptedText so the invariant "success implies candidates[0] is the
// confirmed plaintext" holds.
func (c *CrackResult) UpdateChecker(check checker.Result) {
	if !check.IsIdentified {
		return
	}
	c.Success = true
	c.CheckerName = check.CheckerName
	c.Description = check.Description
	c.Link = check.Link
	c.Confidence = check.Confidence
	c.promote(check.Text)
}

func (c *CrackResult) promote(text string) {
	for i, candidate := range c.UnencryptedText {
		if candidate == text {
			if i != 0 {
				c.UnencryptedText[0], c.UnencryptedText[i] = c.UnencryptedText[i], c.UnencryptedText[0]
			}
			return
		}
	}
	c.UnencryptedText = append([]string{text}, c.UnencryptedText...)
}

// DefaultDecoderResult builds the sentinel one-element Decoding Path for
// input that is itself already plaintext.
func DefaultDecoderResult(input string, check checker.Result) CrackResult {
	cr := CrackResult{
		DecoderName:     "Default decoder",
		Input:           input,
		UnencryptedText: []string{input},
	}
	cr.UpdateChecker(check)
	return cr
}
