package decoder

import (
	"sort"
	"time"

	"github.com/kenneth/autocrack/internal/checker"
	"github.com/ryanuber/go-glob"
	"github.com/sirupsen/logrus"
)

// entry pairs a Decoder implementation with its descriptor, mirroring the
// teacher's ProviderConfig static-registry pattern (internal/s3/providers.go)
// adapted from a provider map to a decoder slice, since ordering (not just
// lookup) matters here: decoders must run in a stable registry order
// for deterministic fan-out.
type entry struct {
	decoder Decoder
	desc    Descriptor
}

// Registry is the process-wide, ordered set of decoder descriptors,
// materialized at startup and filtered by configuration.
type Registry struct {
	all      []entry
	enabled  []entry
	byName   map[string]int
	logger   *logrus.Logger
}

// NewRegistry builds a registry from decoders, preserving the given order
// as the stable registry order required for deterministic fan-out.
// decodersToRun is a glob filter list; empty means "all".
func NewRegistry(decoders []Decoder, decodersToRun []string, logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	r := &Registry{byName: make(map[string]int), logger: logger}
	for _, d := range decoders {
		desc := d.Descriptor()
		r.byName[desc.Name] = len(r.all)
		r.all = append(r.all, entry{decoder: d, desc: desc})
	}
	r.applyFilter(decodersToRun)
	return r
}

func (r *Registry) applyFilter(patterns []string) {
	if len(patterns) == 0 {
		r.enabled = r.all
		return
	}
	var enabled []entry
	for _, e := range r.all {
		for _, p := range patterns {
			if glob.Glob(p, e.desc.Name) {
				enabled = append(enabled, e)
				break
			}
		}
	}
	r.enabled = enabled
}

// Enabled returns the decoders selected by the configured filter, in
// stable registry order.
func (r *Registry) Enabled() []Decoder {
	out := make([]Decoder, len(r.enabled))
	for i, e := range r.enabled {
		out[i] = e.decoder
	}
	return out
}

// Descriptors returns every descriptor in the registry (not filtered),
// sorted by name, for introspection/display purposes.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.all))
	for i, e := range r.all {
		out[i] = e.desc
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RunResult is one decoder's contribution to a node expansion: its
// produced CrackResult plus how long it took, for statistics.
type RunResult struct {
	CrackResult CrackResult
	Descriptor  Descriptor
	Duration    time.Duration
	Panicked    bool
}

// Run invokes every enabled decoder against input, in stable registry
// order, recovering any panic so one bad decoder can't sink a run. The
// returned slice preserves registry order regardless of whether the
// caller parallelized the underlying work — callers that do parallelize
// MUST re-sort by decoder name before returning to keep results
// deterministic; this sequential implementation already satisfies that
// by construction.
func (r *Registry) Run(input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) []RunResult {
	results := make([]RunResult, 0, len(r.enabled))
	for _, e := range r.enabled {
		results = append(results, r.runOne(e, input, pipeline, sensitivity))
	}
	return results
}

func (r *Registry) runOne(e entry, input string, pipeline *checker.Pipeline, sensitivity checker.Sensitivity) (rr RunResult) {
	start := time.Now()
	rr.Descriptor = e.desc
	defer func() {
		rr.Duration = time.Since(start)
		if rec := recover(); rec != nil {
			r.logger.WithFields(logrus.Fields{
				"decoder": e.desc.Name,
				"panic":   rec,
			}).Warn("decoder: recovered from panic")
			rr.Panicked = true
			rr.CrackResult = New(e.desc, input)
		}
	}()
	rr.CrackResult = e.decoder.Crack(input, pipeline, sensitivity)
	return rr
}
