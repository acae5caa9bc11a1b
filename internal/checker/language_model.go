package checker

import "strings"

// LanguageModel is the pluggable interface for the checker pipeline's
// most expensive layer. The default implementation below is a lightweight
// trigram-frequency heuristic; it stands in for a full ML/English-
// detection model and makes no claim of parity with one.
type LanguageModel interface {
	// Score returns a naturalness estimate in [0,1]; higher means more
	// plausibly natural-language text.
	Score(text string) float64
}

// NgramLanguageModel scores text by the fraction of character trigrams
// that appear in a small table of common English trigrams. It is
// deliberately simple: a real deployment supplies its own LanguageModel,
// loaded from Config.ModelPath.
type NgramLanguageModel struct {
	threshold float64
}

// NewNgramLanguageModel returns the default language model. The threshold
// (0.15 when not positive) is stored on the model but Score does not use
// it; LanguageModelChecker applies its own per-sensitivity thresholds to
// the score (0.25 Low, 0.15 Medium, 0.08 High).
func NewNgramLanguageModel(threshold float64) *NgramLanguageModel {
	if threshold <= 0 {
		threshold = 0.15
	}
	return &NgramLanguageModel{threshold: threshold}
}

// commonTrigrams are the most frequent English letter trigrams, lowercase.
var commonTrigrams = map[string]bool{
	"the": true, "and": true, "ing": true, "ion": true, "tio": true,
	"ent": true, "ati": true, "for": true, "her": true, "ter": true,
	"hat": true, "tha": true, "ere": true, "ate": true, "his": true,
	"con": true, "res": true, "ver": true, "all": true, "ons": true,
	"nce": true, "men": true, "ith": true, "ted": true, "ers": true,
}

func (m *NgramLanguageModel) Score(text string) float64 {
	lowered := strings.ToLower(text)
	runes := []rune(lowered)
	if len(runes) < 3 {
		return 0
	}
	total := 0
	hits := 0
	for i := 0; i+3 <= len(runes); i++ {
		tri := string(runes[i : i+3])
		if !isAllLetters(tri) {
			continue
		}
		total++
		if commonTrigrams[tri] {
			hits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

func isAllLetters(s string) bool {
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return true
}

// LanguageModelChecker is layer 5, wrapping a LanguageModel.
type LanguageModelChecker struct {
	model LanguageModel
}

// NewLanguageModelChecker wraps model as a Checker layer.
func NewLanguageModelChecker(model LanguageModel) *LanguageModelChecker {
	if model == nil {
		model = NewNgramLanguageModel(0)
	}
	return &LanguageModelChecker{model: model}
}

func (l *LanguageModelChecker) Name() string { return "language_model" }

func (l *LanguageModelChecker) Check(text string, sensitivity Sensitivity) Result {
	score := l.model.Score(text)
	threshold := 0.15
	switch sensitivity {
	case Low:
		threshold = 0.25
	case High:
		threshold = 0.08
	}
	if score >= threshold {
		return Result{
			IsIdentified:       true,
			Text:               text,
			CheckerName:        l.Name(),
			Description:        "text scores above the natural-language threshold",
			CheckerDescription: "language model / gibberish checker",
			Confidence:         score,
		}
	}
	return Result{Text: text, CheckerName: l.Name(), Description: "text scores below the natural-language threshold"}
}
