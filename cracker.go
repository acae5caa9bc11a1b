// Package autocrack is the library entry point: given an input string
// and a process configuration, it identifies the Decoding Path that
// turns the input into readable plaintext.
package autocrack

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/kenneth/autocrack/internal/cache"
	"github.com/kenneth/autocrack/internal/checker"
	"github.com/kenneth/autocrack/internal/config"
	"github.com/kenneth/autocrack/internal/cryptoutil"
	"github.com/kenneth/autocrack/internal/decoder"
	"github.com/kenneth/autocrack/internal/identify"
	"github.com/kenneth/autocrack/internal/keymanager"
	"github.com/kenneth/autocrack/internal/metrics"
	"github.com/kenneth/autocrack/internal/search"
	"github.com/kenneth/autocrack/internal/statlog"
	"github.com/kenneth/autocrack/internal/timer"
	"github.com/kenneth/autocrack/internal/tracing"
	"github.com/kenneth/autocrack/internal/wordlist"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// DecoderResult is the outcome of a successful crack: the decoded text
// (a slice because some decoders, like Caesar, report several candidate
// texts) and the Decoding Path of CrackResults that produced it.
type DecoderResult struct {
	Text []string             `json:"text"`
	Path []decoder.CrackResult `json:"path"`
}

// Cracker bundles every long-lived component a crack run needs: the
// decoder registry, checker pipeline, cache store, statistics sink, and
// tracer. Build one with New and reuse it across runs.
type Cracker struct {
	cfg       config.Config
	registry  *decoder.Registry
	pipeline  *checker.Pipeline
	store     cache.Store
	statsLog  *statlog.Logger
	metrics   *metrics.Metrics
	tracer    *tracing.Provider
	keyMgr    keymanager.KeyManager
	logger    *logrus.Logger
}

// New wires every component from cfg: the decoder registry (every
// built-in decoder, filtered by cfg.DecodersToRun), the checker pipeline
// (structural, crib, identify, wordlist, and optionally language-model
// layers), the cache store (Redis or in-memory, optionally envelope-
// encrypting rows via keyMgr), and the tracer provider. logger and m may
// be nil; keyMgr may be nil if cfg.Cache.EncryptAtRest is false.
func New(cfg config.Config, logger *logrus.Logger, m *metrics.Metrics) (*Cracker, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	var keyMgr keymanager.KeyManager
	if cfg.Cache.EncryptAtRest {
		km, err := newKeyManager(cfg.KeyManager)
		if err != nil {
			return nil, fmt.Errorf("autocrack: build key manager: %w", err)
		}
		keyMgr = km
	}

	store := cache.NewStore(cfg.Cache, keyMgr, logger)

	registry := decoder.NewRegistry(decoder.All(), cfg.DecodersToRun, logger)

	pipeline, err := buildPipeline(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("autocrack: build checker pipeline: %w", err)
	}

	tracerProvider, err := tracing.NewProvider(context.Background(), cfg.Tracing, "dev", logger)
	if err != nil {
		return nil, fmt.Errorf("autocrack: build tracer provider: %w", err)
	}

	var statsLog *statlog.Logger
	if cfg.Verbose > 0 {
		statsLog = statlog.NewLogger(1000, &statlog.StdoutSink{})
	}

	if m != nil {
		m.SetHardwareAccelerationStatus("aes", cryptoutil.IsHardwareAccelerationEnabled(cfg.Hardware))
	}

	return &Cracker{
		cfg:      cfg,
		registry: registry,
		pipeline: pipeline,
		store:    store,
		statsLog: statsLog,
		metrics:  m,
		tracer:   tracerProvider,
		keyMgr:   keyMgr,
		logger:   logger,
	}, nil
}

func newKeyManager(cfg config.KeyManagerConfig) (keymanager.KeyManager, error) {
	switch cfg.Provider {
	case "", "local":
		secret := os.Getenv(cfg.LocalMasterSecretEnv)
		if secret == "" {
			return nil, fmt.Errorf("keymanager: environment variable %q is unset or empty", cfg.LocalMasterSecretEnv)
		}
		return keymanager.NewLocal([]byte(secret))
	case "kmip":
		keys := make([]keymanager.KMIPKeyReference, 0, len(cfg.KMIP.KeyIDs))
		for _, id := range cfg.KMIP.KeyIDs {
			keys = append(keys, keymanager.KMIPKeyReference{ID: id, Version: 1})
		}
		timeout := time.Duration(cfg.KMIP.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		return keymanager.NewCosmianKMIPManager(keymanager.CosmianKMIPOptions{
			Endpoint:       cfg.KMIP.Endpoint,
			Keys:           keys,
			Timeout:        timeout,
			Provider:       "kmip",
			DualReadWindow: cfg.KMIP.DualReadWindow,
		})
	default:
		return nil, fmt.Errorf("keymanager: unknown provider %q", cfg.Provider)
	}
}

func buildPipeline(cfg config.Config, logger *logrus.Logger) (*checker.Pipeline, error) {
	var crib *checker.Crib
	if cfg.Regex != "" {
		c, err := checker.NewCrib(cfg.Regex)
		if err != nil {
			return nil, fmt.Errorf("compile crib regex: %w", err)
		}
		crib = c
	}

	identifier := identify.New()
	identifyLayer := checker.NewIdentify(identifier, identify.Options{
		MinRarity:    cfg.IdentifyMinRarity,
		MaxRarity:    cfg.IdentifyMaxRarity,
		Tags:         cfg.IdentifyTags,
		ExcludeTags:  cfg.IdentifyExcludeTags,
		Boundaryless: cfg.IdentifyBoundaryless,
	})

	wordIndex := wordlist.New(cfg.Wordlist.BloomFalsePositiveRate, logger)
	if len(cfg.Wordlist.Paths) > 0 {
		if err := wordIndex.LoadPaths(cfg.Wordlist.Paths); err != nil {
			logger.WithError(err).Warn("autocrack: failed loading wordlist paths")
		}
	}
	wordlistLayer := checker.NewWordlist(wordIndex)

	var model *checker.LanguageModelChecker
	if cfg.EnhancedDetection {
		model = checker.NewLanguageModelChecker(checker.NewNgramLanguageModel(0.15))
	}

	return checker.New(checker.Config{
		Crib:           crib,
		Identify:       identifyLayer,
		Wordlist:       wordlistLayer,
		Model:          model,
		CheckersToRun:  cfg.CheckersToRun,
		HumanCheckerOn: cfg.HumanCheckerOn,
		CollectAll:     cfg.TopResults,
		Logger:         logger,
	}), nil
}

// Crack runs the full decode pipeline over input: a cache lookup, an
// early-exit check for input that is already plaintext, and otherwise a
// bounded search over decoder compositions. Returns nil for empty input,
// and if no path was found within cfg.Timeout seconds.
func (c *Cracker) Crack(ctx context.Context, input string) *DecoderResult {
	// Empty input is rejected up front: never searched, never cached.
	if input == "" {
		return nil
	}
	start := time.Now()
	runID := uuid.NewString()

	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.StartRun(ctx, runID, input)
		defer span.End()
	}

	if entry, err := c.store.Get(ctx, input); err == nil {
		c.recordOutcome("cache_hit", start)
		return &DecoderResult{Text: lastTexts(entry.Path), Path: entry.Path}
	}

	if check := c.pipeline.Check(input, checker.Low); check.IsIdentified {
		cr := decoder.DefaultDecoderResult(input, check)
		result := &DecoderResult{Text: []string{input}, Path: []decoder.CrackResult{cr}}
		if err := c.store.Put(ctx, input, result.Path); err != nil {
			c.logger.WithError(err).Warn("autocrack: cache write failed for plaintext early exit")
		}
		c.recordOutcome("success", start)
		return result
	}

	t := timer.New(time.Duration(c.cfg.Timeout) * time.Second)
	engine := search.NewEngine(c.registry, c.pipeline, c.store, c.statsLog, search.Config{
		DepthPenalty:      c.cfg.DepthPenalty,
		DecoderBatchSize:  c.cfg.DecoderBatchSize,
		TopResults:        c.cfg.TopResults,
		MaxSeenSetEntries: c.cfg.Cache.MaxSeenSetEntries,
	}, c.logger)

	path, err := engine.Run(ctx, runID, input, t)
	if err != nil {
		c.recordOutcome(outcomeFor(err), start)
		return nil
	}

	c.recordOutcome("success", start)
	return &DecoderResult{Text: lastTexts(path), Path: path}
}

func outcomeFor(err error) string {
	if err == search.ErrNoPathFound {
		return "no_path"
	}
	return "error"
}

func (c *Cracker) recordOutcome(outcome string, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordCrackRun(context.Background(), outcome, time.Since(start))
	}
}

func lastTexts(path []decoder.CrackResult) []string {
	if len(path) == 0 {
		return nil
	}
	last := path[len(path)-1]
	if len(last.UnencryptedText) == 0 {
		return nil
	}
	return []string{last.UnencryptedText[0]}
}

// HealthCheck verifies the key manager backend (if any) is reachable.
// Used by readiness probes; a nil key manager (no at-rest encryption
// configured) is always healthy.
func (c *Cracker) HealthCheck(ctx context.Context) error {
	if c.keyMgr == nil {
		return nil
	}
	return c.keyMgr.HealthCheck(ctx)
}

// Close releases the cache store, key manager, and tracer provider.
func (c *Cracker) Close(ctx context.Context) error {
	var firstErr error
	if c.store != nil {
		if err := c.store.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.keyMgr != nil {
		if err := c.keyMgr.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.tracer != nil {
		if err := c.tracer.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.statsLog != nil {
		if err := c.statsLog.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
