package decoder

import (
	"testing"

	"github.com/kenneth/autocrack/internal/checker"
)

type fakeDecoder struct {
	name  string
	panic bool
}

func (f fakeDecoder) Descriptor() Descriptor {
	return Descriptor{Name: f.name, Description: "test fixture"}
}

func (f fakeDecoder) Crack(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) CrackResult {
	if f.panic {
		panic("boom")
	}
	result := New(f.Descriptor(), input)
	result.UnencryptedText = []string{input + "-decoded"}
	result.Success = true
	return result
}

func TestNewRegistryPreservesGivenOrder(t *testing.T) {
	reg := NewRegistry([]Decoder{
		fakeDecoder{name: "zeta"},
		fakeDecoder{name: "alpha"},
		fakeDecoder{name: "mu"},
	}, nil, nil)
	enabled := reg.Enabled()
	if len(enabled) != 3 {
		t.Fatalf("expected 3 enabled decoders, got %d", len(enabled))
	}
	want := []string{"zeta", "alpha", "mu"}
	for i, d := range enabled {
		if d.Descriptor().Name != want[i] {
			t.Errorf("position %d: got %q, want %q", i, d.Descriptor().Name, want[i])
		}
	}
}

func TestNewRegistryDescriptorsAreSortedByName(t *testing.T) {
	reg := NewRegistry([]Decoder{
		fakeDecoder{name: "zeta"},
		fakeDecoder{name: "alpha"},
	}, nil, nil)
	descs := reg.Descriptors()
	if len(descs) != 2 || descs[0].Name != "alpha" || descs[1].Name != "zeta" {
		t.Fatalf("expected sorted [alpha zeta], got %+v", descs)
	}
}

func TestNewRegistryGlobFilterSelectsSubset(t *testing.T) {
	reg := NewRegistry([]Decoder{
		fakeDecoder{name: "base64"},
		fakeDecoder{name: "base32"},
		fakeDecoder{name: "caesar"},
	}, []string{"base*"}, nil)
	enabled := reg.Enabled()
	if len(enabled) != 2 {
		t.Fatalf("expected 2 decoders matching base*, got %d", len(enabled))
	}
	for _, d := range enabled {
		if d.Descriptor().Name == "caesar" {
			t.Fatalf("caesar should have been filtered out")
		}
	}
}

func TestNewRegistryEmptyFilterEnablesAll(t *testing.T) {
	reg := NewRegistry([]Decoder{
		fakeDecoder{name: "a"},
		fakeDecoder{name: "b"},
	}, nil, nil)
	if len(reg.Enabled()) != 2 {
		t.Fatalf("expected empty filter to enable everything")
	}
}

func TestRunRecoversFromPanickingDecoder(t *testing.T) {
	reg := NewRegistry([]Decoder{
		fakeDecoder{name: "stable"},
		fakeDecoder{name: "unstable", panic: true},
	}, nil, nil)
	results := reg.Run("input", nil, checker.Low)
	if len(results) != 2 {
		t.Fatalf("expected 2 results despite the panic, got %d", len(results))
	}
	if results[0].Panicked {
		t.Errorf("stable decoder should not report panicked")
	}
	if !results[1].Panicked {
		t.Errorf("unstable decoder should report panicked")
	}
	if !results[0].CrackResult.Success {
		t.Errorf("stable decoder's result should have been preserved")
	}
}

func TestRunPreservesRegistryOrderRegardlessOfOutcome(t *testing.T) {
	reg := NewRegistry([]Decoder{
		fakeDecoder{name: "first"},
		fakeDecoder{name: "second", panic: true},
		fakeDecoder{name: "third"},
	}, nil, nil)
	results := reg.Run("x", nil, checker.Low)
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Descriptor.Name
	}
	want := []string{"first", "second", "third"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got order %v, want %v", names, want)
		}
	}
}
