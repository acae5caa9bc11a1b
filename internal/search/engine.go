// Package search implements the Search Engine: a best-first expansion
// of the decoder-composition tree over an input string, bounded by a
// timer, a priority frontier, and a seen-set.
package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kenneth/autocrack/internal/cache"
	"github.com/kenneth/autocrack/internal/checker"
	"github.com/kenneth/autocrack/internal/decoder"
	"github.com/kenneth/autocrack/internal/statlog"
	"github.com/kenneth/autocrack/internal/timer"
	"github.com/sirupsen/logrus"
)

// hardDepthCap is the safety net depth limit, independent of the
// configured depth penalty.
const hardDepthCap = 50

// ErrNoPathFound is returned by Run when the frontier empties or the
// timer expires without an identified candidate.
var ErrNoPathFound = fmt.Errorf("search: no path found within timeout")

// Config holds the subset of process configuration the engine consumes.
type Config struct {
	DepthPenalty      float64
	DecoderBatchSize  int
	TopResults        bool
	Sensitivity       checker.Sensitivity
	MaxSeenSetEntries int
}

// Engine explores decoder compositions over an input, fanning out
// through registry across every enabled decoder at each node.
type Engine struct {
	registry *decoder.Registry
	pipeline *checker.Pipeline
	store    cache.Store
	stats    *statlog.Logger
	cfg      Config
	logger   *logrus.Logger
}

// NewEngine wires the registry, checker pipeline, cache store, and
// statistics sink the engine needs. store and stats may be nil.
func NewEngine(registry *decoder.Registry, pipeline *checker.Pipeline, store cache.Store, stats *statlog.Logger, cfg Config, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if cfg.DecoderBatchSize <= 0 {
		cfg.DecoderBatchSize = 1
	}
	return &Engine{registry: registry, pipeline: pipeline, store: store, stats: stats, cfg: cfg, logger: logger}
}

// candidate is a side-channel entry recorded in top_results mode: an
// identified node plus the confidence of the check that identified it,
// for later ranking.
type candidate struct {
	node       *Node
	confidence float64
	popularity float64
}

// Run explores compositions of decoders over input until a plaintext is
// identified, the frontier empties, or t expires. On success it returns
// the ordered path from root to the identified node. On failure it
// returns ErrNoPathFound.
func (e *Engine) Run(ctx context.Context, runID, input string, t *timer.Timer) ([]decoder.CrackResult, error) {
	frontier := NewFrontier()
	seen := NewSeenSet(e.seenSetCap())
	seen.Add(input)

	root := &Node{Text: input, Depth: 0}
	frontier.Push(root)

	var topResults []candidate

	for frontier.Len() > 0 {
		select {
		case <-ctx.Done():
			return e.finish(topResults, ErrNoPathFound)
		default:
		}
		if t != nil && t.Expired() {
			return e.finish(topResults, ErrNoPathFound)
		}

		node := frontier.Pop()
		if node.Depth >= hardDepthCap {
			continue
		}

		results := e.registry.Run(node.Text, e.pipeline, e.cfg.Sensitivity)
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Descriptor.Name < results[j].Descriptor.Name
		})

		for _, rr := range results {
			e.recordStats(runID, node.Depth, rr)

			cr := rr.CrackResult
			if len(cr.UnencryptedText) == 0 {
				continue
			}

			if cr.Success {
				winner := &Node{
					Text:   cr.UnencryptedText[0],
					Depth:  node.Depth + 1,
					Parent: node,
					Edge:   cr,
				}
				if !e.cfg.TopResults {
					path := winner.Path()
					e.writeCache(ctx, input, path)
					return path, nil
				}
				topResults = append(topResults, candidate{node: winner, confidence: cr.Confidence, popularity: rr.Descriptor.Popularity})
				continue
			}

			for _, cand := range cr.UnencryptedText {
				if cand == node.Text || cand == "" {
					continue
				}
				if !seen.Add(cand) {
					continue
				}
				edge := cr
				edge.UnencryptedText = []string{cand}
				child := &Node{
					Text:     cand,
					Depth:    node.Depth + 1,
					Parent:   node,
					Edge:     edge,
					Priority: rr.Descriptor.Popularity - e.cfg.DepthPenalty*float64(node.Depth+1),
				}
				frontier.Push(child)
			}
		}
	}

	return e.finish(topResults, ErrNoPathFound)
}

func (e *Engine) finish(topResults []candidate, fallback error) ([]decoder.CrackResult, error) {
	if len(topResults) == 0 {
		return nil, fallback
	}
	best := bestCandidate(topResults)
	path := best.node.Path()
	return path, nil
}

// bestCandidate ranks by shortest path, then checker confidence, then
// decoder popularity at the winning edge: the top_results tie-break rule.
func bestCandidate(candidates []candidate) candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.node.Depth < best.node.Depth {
			best = c
			continue
		}
		if c.node.Depth > best.node.Depth {
			continue
		}
		if c.confidence > best.confidence {
			best = c
			continue
		}
		if c.confidence < best.confidence {
			continue
		}
		if c.popularity > best.popularity {
			best = c
		}
	}
	return best
}

func (e *Engine) recordStats(runID string, depth int, rr decoder.RunResult) {
	if e.stats == nil {
		return
	}
	e.stats.LogAttempt(runID, rr.Descriptor.Name, depth, len(rr.CrackResult.UnencryptedText), rr.CrackResult.Success, rr.Duration, nil)
	if e.store != nil {
		_ = e.store.PutStats(context.Background(), cache.StatsRow{
			RunID:         runID,
			DecoderName:   rr.Descriptor.Name,
			SuccessCount:  boolToInt(rr.CrackResult.Success),
			TotalAttempts: len(rr.CrackResult.UnencryptedText),
			SearchDepth:   depth,
			CreatedAt:     time.Now(),
		})
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (e *Engine) writeCache(ctx context.Context, input string, path []decoder.CrackResult) {
	if e.store == nil {
		return
	}
	if err := e.store.Put(ctx, input, path); err != nil {
		e.logger.WithError(err).Warn("search: cache write failed")
	}
}

func (e *Engine) seenSetCap() int {
	if e.cfg.MaxSeenSetEntries > 0 {
		return e.cfg.MaxSeenSetEntries
	}
	return defaultMaxSeenSetEntries
}
