// Package config provides the process-wide configuration surface consumed
// by every other component. It is read once at process start, snapshotted
// into a package-level singleton, and treated as read-only for the
// lifetime of a search.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the process configuration. All fields map 1:1 onto the
// user-facing options table.
type Config struct {
	// Verbose is a log level: 0=off/warn, 1=info, 2=debug, 3=trace.
	Verbose int `yaml:"verbose"`

	// Timeout is the search timeout in seconds.
	Timeout int `yaml:"timeout"`

	// HumanCheckerOn toggles human arbitration on positive checks.
	HumanCheckerOn bool `yaml:"human_checker_on"`

	// APIMode suppresses decorated stdout output; structured output only.
	APIMode bool `yaml:"api_mode"`

	// Regex, if set, is a crib pattern that overrides the standard checkers.
	Regex string `yaml:"regex"`

	// TopResults collects every identified candidate instead of stopping
	// at the first.
	TopResults bool `yaml:"top_results"`

	// EnhancedDetection enables the language-model checker.
	EnhancedDetection bool `yaml:"enhanced_detection"`

	// ModelPath is the path to the language model file (used only when
	// EnhancedDetection is set and a model-backed LanguageModel is wired
	// in by the caller; the default LanguageModel ignores it).
	ModelPath string `yaml:"model_path"`

	// IdentifyMinRarity / IdentifyMaxRarity bound the pattern identifier's
	// rarity score. The yaml keys keep the lemmeknow_* naming from the
	// upstream pattern-identification library this replaces internally.
	IdentifyMinRarity float64 `yaml:"lemmeknow_min_rarity"`
	IdentifyMaxRarity float64 `yaml:"lemmeknow_max_rarity"`

	// IdentifyTags / IdentifyExcludeTags filter which pattern tags are
	// considered.
	IdentifyTags        []string `yaml:"lemmeknow_tags"`
	IdentifyExcludeTags []string `yaml:"lemmeknow_exclude_tags"`

	// IdentifyBoundaryless toggles boundary-free pattern matching.
	IdentifyBoundaryless bool `yaml:"lemmeknow_boundaryless"`

	// DepthPenalty is the per-depth-level priority penalty, in [0,5].
	DepthPenalty float64 `yaml:"depth_penalty"`

	// DecoderBatchSize bounds decoders-per-node-expansion when parallelizing.
	DecoderBatchSize int `yaml:"decoder_batch_size"`

	// DecodersToRun / CheckersToRun are name (glob) filters; empty = all.
	DecodersToRun []string `yaml:"decoders_to_run"`
	CheckersToRun []string `yaml:"checkers_to_run"`

	// Colourscheme maps a named role to an "R,G,B" string; consumed by a
	// frontend, not by the core.
	Colourscheme map[string]string `yaml:"colourscheme"`

	// Hardware gates hardware-accelerated crypto paths used by the cache's
	// optional at-rest encryption.
	Hardware HardwareConfig `yaml:"hardware"`

	// Cache configures the persistent Cache Store.
	Cache CacheConfig `yaml:"cache"`

	// KeyManager configures the backend that wraps/unwraps cache-row DEKs
	// when Cache.EncryptAtRest is set.
	KeyManager KeyManagerConfig `yaml:"key_manager"`

	// Wordlist configures the Bloom/Aho-Corasick wordlist checker.
	Wordlist WordlistConfig `yaml:"wordlist"`

	// Tracing configures the OpenTelemetry exporter.
	Tracing TracingConfig `yaml:"tracing"`
}

// HardwareConfig toggles hardware-accelerated AES paths.
type HardwareConfig struct {
	EnableAESNI    bool `yaml:"enable_aesni"`
	EnableARMv8AES bool `yaml:"enable_armv8_aes"`
}

// CacheConfig configures the Cache Store.
type CacheConfig struct {
	// RedisAddr is the backing Redis address ("host:port"). Empty means
	// "use the in-memory store."
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`

	// Namespace prefixes every key, allowing several autocrack instances
	// to share one Redis.
	Namespace string `yaml:"namespace"`

	// EncryptAtRest envelope-encrypts decoded_text before persisting it.
	EncryptAtRest bool `yaml:"encrypt_at_rest"`

	// MaxSeenSetEntries bounds the search engine's de-duplication set,
	// default 100000.
	MaxSeenSetEntries int `yaml:"max_seen_set_entries"`
}

// KeyManagerConfig selects and configures the cache-at-rest key-wrapping
// backend.
type KeyManagerConfig struct {
	// Provider is "local" or "kmip". Ignored unless Cache.EncryptAtRest
	// is set.
	Provider string `yaml:"provider"`

	// LocalMasterSecretEnv names the environment variable holding the
	// Local provider's master secret.
	LocalMasterSecretEnv string `yaml:"local_master_secret_env"`

	// KMIP configures the Cosmian KMIP-backed provider.
	KMIP KMIPConfig `yaml:"kmip"`
}

// KMIPConfig mirrors keymanager.CosmianKMIPOptions in a YAML-serializable
// shape.
type KMIPConfig struct {
	Endpoint       string            `yaml:"endpoint"`
	KeyIDs         []string          `yaml:"key_ids"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
	DualReadWindow int               `yaml:"dual_read_window"`
}

// WordlistConfig configures the wordlist checker layer.
type WordlistConfig struct {
	// Paths are files or directories of newline-delimited words, loaded
	// at startup and hot-reloaded via fsnotify.
	Paths []string `yaml:"paths"`

	// BloomFalsePositiveRate targets the Bloom filter's sizing.
	BloomFalsePositiveRate float64 `yaml:"bloom_false_positive_rate"`
}

// TracingConfig configures the OpenTelemetry tracer provider.
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // "stdout", "otlp", or "" (disabled)
	Endpoint string `yaml:"endpoint"`
}

// Default returns the default configuration, matching
// original_source/src/config/mod.rs's Config::default().
func Default() Config {
	cfg := Config{
		Verbose:           0,
		Timeout:           5,
		HumanCheckerOn:    false,
		APIMode:           true,
		TopResults:        false,
		EnhancedDetection: false,
		DepthPenalty:      1.0,
		DecoderBatchSize:  8,
		Colourscheme:      defaultColourscheme(),
		Hardware:          HardwareConfig{EnableAESNI: true, EnableARMv8AES: true},
		Cache: CacheConfig{
			Namespace:         "autocrack",
			MaxSeenSetEntries: 100_000,
		},
		Wordlist: WordlistConfig{
			BloomFalsePositiveRate: 0.01,
		},
		KeyManager: KeyManagerConfig{
			Provider:              "local",
			LocalMasterSecretEnv:  "AUTOCRACK_MASTER_SECRET",
		},
	}
	return cfg
}

func defaultColourscheme() map[string]string {
	return map[string]string{
		"informational": "255,215,0",
		"warning":       "255,0,0",
		"success":       "0,255,0",
		"error":         "255,0,0",
	}
}

// knownKeys lists every recognized top-level YAML key, used to warn (not
// fail) on unknown configuration, matching
// original_source/src/config/mod.rs's parse_toml_with_unknown_keys.
var knownKeys = map[string]bool{
	"verbose": true, "timeout": true, "human_checker_on": true,
	"api_mode": true, "regex": true, "top_results": true,
	"enhanced_detection": true, "model_path": true,
	"lemmeknow_min_rarity": true, "lemmeknow_max_rarity": true,
	"lemmeknow_tags": true, "lemmeknow_exclude_tags": true,
	"lemmeknow_boundaryless": true, "depth_penalty": true,
	"decoder_batch_size": true, "decoders_to_run": true,
	"checkers_to_run": true, "colourscheme": true, "hardware": true,
	"cache": true, "wordlist": true, "tracing": true,
	"key_manager": true,
}

// Load reads and parses a YAML configuration file, returning defaults
// overlaid with whatever the file specifies. Unknown top-level keys are
// logged as warnings, never treated as errors, so old configs keep
// working across additions to the schema.
func Load(path string, logger *logrus.Logger) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}
	for key := range raw {
		if !knownKeys[key] {
			if logger != nil {
				logger.WithField("key", key).Warn("config: ignoring unknown key")
			}
		}
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config file: %w", err)
	}

	return Validate(cfg, logger), nil
}

// Validate applies cross-field constraints, warning and correcting
// rather than failing.
func Validate(cfg Config, logger *logrus.Logger) Config {
	if cfg.TopResults && cfg.HumanCheckerOn {
		if logger != nil {
			logger.Warn("config: top_results and human_checker_on are mutually exclusive; disabling human_checker_on")
		}
		cfg.HumanCheckerOn = false
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5
	}
	if cfg.DepthPenalty < 0 {
		cfg.DepthPenalty = 0
	}
	if cfg.DepthPenalty > 5 {
		cfg.DepthPenalty = 5
	}
	if cfg.DecoderBatchSize <= 0 {
		cfg.DecoderBatchSize = 8
	}
	if cfg.DecoderBatchSize > 20 {
		cfg.DecoderBatchSize = 20
	}
	if cfg.Cache.MaxSeenSetEntries <= 0 {
		cfg.Cache.MaxSeenSetEntries = 100_000
	}
	if cfg.Colourscheme == nil {
		cfg.Colourscheme = defaultColourscheme()
	}
	return cfg
}

// global holds the process-wide snapshot, set once via SetGlobal.
var global atomic.Pointer[Config]
var globalOnce sync.Once

// SetGlobal installs the process-wide configuration snapshot. Safe to
// call multiple times in tests; production call sites should call it
// exactly once, at startup.
func SetGlobal(cfg Config) {
	c := cfg
	global.Store(&c)
}

// Get returns the global configuration, defaulting it on first access if
// SetGlobal was never called.
func Get() Config {
	globalOnce.Do(func() {
		if global.Load() == nil {
			SetGlobal(Default())
		}
	})
	if p := global.Load(); p != nil {
		return *p
	}
	return Default()
}

// HomeDirectory returns the well-known autocrack directory under the
// user's home, creating it if necessary.
func HomeDirectory() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".autocrack")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create autocrack directory: %w", err)
	}
	return dir, nil
}
