package identify

import "testing"

func TestIdentifyRecognizesIPv4(t *testing.T) {
	id := New()
	matches := id.Identify("the host is 192.168.0.1 today", Options{})
	if !containsName(matches, "ipv4") {
		t.Fatalf("expected an ipv4 match, got %+v", matches)
	}
}

func TestIdentifyRecognizesEmail(t *testing.T) {
	id := New()
	matches := id.Identify("contact admin@example.com for help", Options{})
	if !containsName(matches, "email") {
		t.Fatalf("expected an email match, got %+v", matches)
	}
}

func TestIdentifyBoundarylessPatternRequiresWholeTextMatch(t *testing.T) {
	id := New()
	// base64_signature is boundaryless: a substring occurrence inside a
	// longer sentence should not match without Options.Boundaryless.
	matches := id.Identify("here is aGVsbG8= in a sentence", Options{})
	if containsName(matches, "base64_signature") {
		t.Fatalf("expected no base64_signature match inside a sentence, got %+v", matches)
	}

	wholeMatches := id.Identify("aGVsbG8=", Options{})
	if !containsName(wholeMatches, "base64_signature") {
		t.Fatalf("expected base64_signature to match when it is the whole text, got %+v", wholeMatches)
	}
}

func TestIdentifyMinRarityFiltersOutLowSignalPatterns(t *testing.T) {
	id := New()
	matches := id.Identify("68656c6c6f", Options{MinRarity: 0.5})
	if containsName(matches, "hex_signature") {
		t.Fatalf("expected hex_signature (rarity 0.15) filtered out by MinRarity 0.5, got %+v", matches)
	}
}

func TestIdentifyMaxRarityFiltersOutHighSignalPatterns(t *testing.T) {
	id := New()
	matches := id.Identify("admin@example.com", Options{MaxRarity: 0.5})
	if containsName(matches, "email") {
		t.Fatalf("expected email (rarity 0.7) filtered out by MaxRarity 0.5, got %+v", matches)
	}
}

func TestIdentifyExcludeTagsRemovesMatchingPatterns(t *testing.T) {
	id := New()
	matches := id.Identify("reach me at 192.168.0.1", Options{ExcludeTags: []string{"networking"}})
	if containsName(matches, "ipv4") {
		t.Fatalf("expected ipv4 excluded via ExcludeTags, got %+v", matches)
	}
}

func TestIdentifyIncludeTagsRestrictsToMatchingPatterns(t *testing.T) {
	id := New()
	matches := id.Identify("admin@example.com at 192.168.0.1", Options{Tags: []string{"identifier"}})
	if containsName(matches, "ipv4") {
		t.Fatalf("expected ipv4 (networking-only) excluded by Tags filter, got %+v", matches)
	}
	if !containsName(matches, "email") {
		t.Fatalf("expected email (identifier-tagged) to survive the Tags filter, got %+v", matches)
	}
}

func TestIdentifyReturnsNoMatchesForPlainText(t *testing.T) {
	id := New()
	matches := id.Identify("just an ordinary sentence with nothing special", Options{})
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %+v", matches)
	}
}

func containsName(matches []Match, name string) bool {
	for _, m := range matches {
		if m.Name == name {
			return true
		}
	}
	return false
}
