package checker

import (
	"testing"

	"github.com/kenneth/autocrack/internal/identify"
)

func TestStructuralAcceptsAnyPrintableTextAtMinLength(t *testing.T) {
	p := New(Config{})
	result := p.Check("hello world", Medium)
	if !result.IsIdentified {
		t.Fatalf("expected structural fallback to accept, got %+v", result)
	}
	if result.CheckerName != "structural" {
		t.Errorf("expected structural as the winning layer, got %q", result.CheckerName)
	}
}

func TestStructuralRejectsTooShortText(t *testing.T) {
	p := New(Config{})
	result := p.Check("ab", Medium)
	if result.IsIdentified {
		t.Fatalf("expected rejection below minimum length, got %+v", result)
	}
}

func TestStructuralRejectsControlCharacters(t *testing.T) {
	p := New(Config{})
	result := p.Check("hi\x01there", Medium)
	if result.IsIdentified {
		t.Fatalf("expected rejection for control characters, got %+v", result)
	}
}

func TestCribMatchShortCircuitsAsWinner(t *testing.T) {
	crib, err := NewCrib("flag\\{.*\\}")
	if err != nil {
		t.Fatal(err)
	}
	p := New(Config{Crib: crib})
	result := p.Check("here is flag{found_it} in the text", Medium)
	if !result.IsIdentified || result.CheckerName != "crib" {
		t.Fatalf("expected a crib match to win, got %+v", result)
	}
}

func TestCribMissIsAuthoritativeRejection(t *testing.T) {
	crib, err := NewCrib("flag\\{.*\\}")
	if err != nil {
		t.Fatal(err)
	}
	p := New(Config{Crib: crib})
	// Without the fix, this would fall back to the structural layer's
	// near-universal positive verdict for any printable >=3 char string.
	result := p.Check("a perfectly ordinary English sentence", Medium)
	if result.IsIdentified {
		t.Fatalf("expected crib miss to be authoritative, got %+v", result)
	}
	if result.CheckerName != "crib" {
		t.Errorf("expected the crib's own verdict to be returned, got %q", result.CheckerName)
	}
}

func TestPipelineStopsAtFirstPositiveLayerWithoutCollectAll(t *testing.T) {
	id := NewIdentify(identify.New(), identify.Options{})
	idx := NewWordlist(nil)
	p := New(Config{Identify: id, Wordlist: idx})
	result := p.Check("192.168.0.1", Low)
	if !result.IsIdentified {
		t.Fatalf("expected identify layer to accept an IPv4 literal, got %+v", result)
	}
	all := p.All()
	for _, r := range all {
		if r.CheckerName == "wordlist" {
			t.Fatalf("wordlist layer should not have run once identify already won")
		}
	}
}

func TestPipelineCollectAllRunsEveryLayer(t *testing.T) {
	id := NewIdentify(identify.New(), identify.Options{})
	p := New(Config{Identify: id, CollectAll: true})
	p.Check("192.168.0.1", Low)
	var sawIdentify bool
	for _, r := range p.All() {
		if r.CheckerName == "identify" {
			sawIdentify = true
		}
	}
	if !sawIdentify {
		t.Fatalf("expected identify layer to run under CollectAll")
	}
}
