// Package identify recognizes well-known textual formats (IP addresses,
// emails, URIs, UUIDs, base64/hex signatures, JWTs, ...). It stands in
// for an external pattern-identification library, built on
// github.com/coregx/coregex rather than a regexp-package lookalike, for
// its claimed prefilter speedups across a large pattern set.
package identify

import (
	"strings"

	"github.com/coregx/coregex"
)

// Match describes one recognized pattern occurrence.
type Match struct {
	// Name is the pattern's stable identifier ("ipv4", "email", ...).
	Name string
	// Rarity is a static estimate in [0,1] of how rare this pattern is to
	// appear by coincidence; higher means a stronger signal.
	Rarity float64
	// Tags categorize the pattern ("networking", "identifier", "encoding").
	Tags []string
	// Text is the exact substring that matched.
	Text string
	// Boundaryless indicates the pattern was matched without requiring
	// word boundaries around it.
	Boundaryless bool
}

type pattern struct {
	name         string
	re           *coregex.Regex
	rarity       float64
	tags         []string
	boundaryless bool
}

// Identifier holds the compiled pattern set and applies the configured
// rarity/tag filters.
type Identifier struct {
	patterns []pattern
}

// Options mirrors the lemmeknow_* configuration knobs exposed in config.Config.
type Options struct {
	MinRarity    float64
	MaxRarity    float64
	Tags         []string
	ExcludeTags  []string
	Boundaryless bool
}

// New compiles the built-in pattern set. Panics only on a programmer error
// (an invalid built-in pattern), never on caller input.
func New() *Identifier {
	id := &Identifier{}
	for _, def := range builtinPatterns {
		id.patterns = append(id.patterns, pattern{
			name:         def.name,
			re:           coregex.MustCompile(def.expr),
			rarity:       def.rarity,
			tags:         def.tags,
			boundaryless: def.boundaryless,
		})
	}
	return id
}

type patternDef struct {
	name         string
	expr         string
	rarity       float64
	tags         []string
	boundaryless bool
}

var builtinPatterns = []patternDef{
	{"ipv4", `\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`, 0.6, []string{"networking"}, false},
	{"email", `[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`, 0.7, []string{"identifier"}, false},
	{"url", `https?://[^\s]+`, 0.8, []string{"networking"}, false},
	{"uuid", `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`, 0.9, []string{"identifier"}, false},
	{"base64_signature", `^(?:[A-Za-z0-9+/]{4})*(?:[A-Za-z0-9+/]{2}==|[A-Za-z0-9+/]{3}=)?$`, 0.2, []string{"encoding"}, true},
	{"hex_signature", `^(?:[0-9a-fA-F]{2})+$`, 0.15, []string{"encoding"}, true},
	{"jwt", `eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`, 0.95, []string{"identifier", "encoding"}, false},
	{"ipv6", `\b(?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}\b`, 0.6, []string{"networking"}, false},
	{"phone_us", `\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`, 0.4, []string{"identifier"}, false},
	{"credit_card", `\b(?:\d[ -]*?){13,16}\b`, 0.5, []string{"identifier", "sensitive"}, false},
}

// Identify returns every built-in pattern matching text, after applying
// opts' rarity and tag filters.
func (id *Identifier) Identify(text string, opts Options) []Match {
	var matches []Match
	for _, p := range id.patterns {
		if p.rarity < opts.MinRarity || (opts.MaxRarity > 0 && p.rarity > opts.MaxRarity) {
			continue
		}
		if !tagsAllowed(p.tags, opts.Tags, opts.ExcludeTags) {
			continue
		}
		if p.boundaryless && !opts.Boundaryless {
			// A boundaryless-only pattern needs the whole text to match,
			// not merely contain, a substring instance.
			if p.re.MatchString(text) {
				matches = append(matches, Match{
					Name: p.name, Rarity: p.rarity, Tags: p.tags,
					Text: text, Boundaryless: true,
				})
			}
			continue
		}
		if loc := p.re.FindStringIndex(text); loc != nil {
			matches = append(matches, Match{
				Name: p.name, Rarity: p.rarity, Tags: p.tags,
				Text: text[loc[0]:loc[1]],
			})
		}
	}
	return matches
}

func tagsAllowed(patternTags, include, exclude []string) bool {
	for _, t := range patternTags {
		for _, ex := range exclude {
			if strings.EqualFold(t, ex) {
				return false
			}
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, t := range patternTags {
		for _, in := range include {
			if strings.EqualFold(t, in) {
				return true
			}
		}
	}
	return false
}
