package checker

import (
	"unicode/utf8"

	"github.com/coregx/coregex"
	"github.com/kenneth/autocrack/internal/identify"
	"github.com/kenneth/autocrack/internal/wordlist"
)

// Structural is layer 1: non-empty, minimum length, printable UTF-8.
type Structural struct {
	MinLength int
}

// NewStructural returns a Structural checker with the default minimum
// length of 3 characters.
func NewStructural() *Structural {
	return &Structural{MinLength: 3}
}

func (s *Structural) Name() string { return "structural" }

func (s *Structural) Check(text string, sensitivity Sensitivity) Result {
	min := s.MinLength
	if min <= 0 {
		min = 3
	}
	if len([]rune(text)) < min {
		return Result{Text: text, CheckerName: s.Name(), Description: "text shorter than minimum length"}
	}
	if !utf8.ValidString(text) {
		return Result{Text: text, CheckerName: s.Name(), Description: "text is not valid UTF-8"}
	}
	for _, r := range text {
		if r < 0x20 && r != '\n' && r != '\t' && r != '\r' {
			return Result{Text: text, CheckerName: s.Name(), Description: "text contains non-printable control characters"}
		}
	}
	return Result{
		IsIdentified:       true,
		Text:               text,
		CheckerName:        s.Name(),
		Description:        "text is non-empty, printable, and meets the minimum length",
		CheckerDescription: "structural sanity checker",
		Confidence:         0.1,
	}
}

// Crib is layer 2: when configured with a pattern, it is authoritative —
// a negative verdict short-circuits every other layer.
type Crib struct {
	pattern *coregex.Regex
	raw     string
}

// NewCrib compiles pattern, or returns a Crib with no pattern (always
// "not authoritative") if pattern is empty.
func NewCrib(pattern string) (*Crib, error) {
	if pattern == "" {
		return &Crib{}, nil
	}
	re, err := coregex.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Crib{pattern: re, raw: pattern}, nil
}

func (c *Crib) Name() string { return "crib" }

// Active reports whether a pattern was configured, meaning this layer is
// authoritative and every other layer should be bypassed.
func (c *Crib) Active() bool { return c.pattern != nil }

func (c *Crib) Check(text string, _ Sensitivity) Result {
	if c.pattern == nil {
		return Result{Text: text, CheckerName: c.Name(), Description: "no crib pattern configured"}
	}
	if c.pattern.MatchString(text) {
		return Result{
			IsIdentified:       true,
			Text:               text,
			CheckerName:        c.Name(),
			Description:        "text matches configured crib pattern " + c.raw,
			CheckerDescription: "regex/crib checker",
			Confidence:         1.0,
		}
	}
	return Result{Text: text, CheckerName: c.Name(), Description: "text does not match configured crib pattern"}
}

// Identify is layer 3: pattern identification via internal/identify.
type Identify struct {
	id   *identify.Identifier
	opts identify.Options
}

// NewIdentify wraps a pre-built identifier with its configured options.
func NewIdentify(id *identify.Identifier, opts identify.Options) *Identify {
	return &Identify{id: id, opts: opts}
}

func (i *Identify) Name() string { return "identify" }

func (i *Identify) Check(text string, sensitivity Sensitivity) Result {
	opts := i.opts
	if sensitivity == High {
		opts.Boundaryless = true
	}
	matches := i.id.Identify(text, opts)
	if len(matches) == 0 {
		return Result{Text: text, CheckerName: i.Name(), Description: "no known pattern recognized"}
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Rarity > best.Rarity {
			best = m
		}
	}
	return Result{
		IsIdentified:       true,
		Text:               text,
		CheckerName:        i.Name(),
		Description:        "matched known pattern: " + best.Name,
		CheckerDescription: "pattern identification checker",
		Confidence:         0.7,
	}
}

// Wordlist is layer 4: Bloom-filter-backed plausible-word detection.
type Wordlist struct {
	idx *wordlist.Index
}

// NewWordlist wraps a pre-built wordlist index.
func NewWordlist(idx *wordlist.Index) *Wordlist {
	return &Wordlist{idx: idx}
}

func (w *Wordlist) Name() string { return "wordlist" }

func (w *Wordlist) Check(text string, sensitivity Sensitivity) Result {
	if w.idx == nil || w.idx.Size() == 0 {
		return Result{Text: text, CheckerName: w.Name(), Description: "no wordlist loaded"}
	}
	if w.idx.Contains(text) {
		return Result{
			IsIdentified:       true,
			Text:               text,
			CheckerName:        w.Name(),
			Description:        "text contains a known wordlist entry",
			CheckerDescription: "bloom-filter wordlist checker",
			Confidence:         0.5,
		}
	}
	return Result{Text: text, CheckerName: w.Name(), Description: "no wordlist entry found"}
}
