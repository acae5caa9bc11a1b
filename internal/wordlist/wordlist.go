// Package wordlist implements the checker pipeline's wordlist layer: a
// Bloom filter fast path backed by an Aho-Corasick index for exact
// multi-pattern confirmation, loaded from user-supplied files and
// hot-reloaded on change.
package wordlist

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/coregx/ahocorasick"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Index answers "does this text plausibly contain a known word" queries.
// The Bloom filter is the fast, probabilistic path; the Aho-Corasick
// matcher confirms with zero false positives whenever the filter hits.
type Index struct {
	mu      sync.RWMutex
	bloom   *bloomFilter
	matcher *ahocorasick.Matcher
	words   []string

	falsePositiveRate float64
	logger            *logrus.Logger

	watcher *fsnotify.Watcher
	paths   []string
	closed  atomic.Bool
}

// New builds an empty index; call LoadPaths to populate it and Watch to
// reload it when the files change.
func New(falsePositiveRate float64, logger *logrus.Logger) *Index {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	idx := &Index{falsePositiveRate: falsePositiveRate, logger: logger}
	idx.rebuild(nil)
	return idx
}

// Contains tokenizes text on non-alphanumeric runes and reports true as soon as
// any token is confirmed present by both the Bloom filter and the
// Aho-Corasick matcher.
func (idx *Index) Contains(text string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.matcher == nil {
		return false
	}
	lowered := strings.ToLower(text)
	for _, token := range tokenize(lowered) {
		if len(token) < 2 {
			continue
		}
		if !idx.bloom.mightContain(token) {
			continue
		}
		if idx.matcher.ContainsString(token) {
			return true
		}
	}
	return false
}

// Size returns the number of loaded words.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.words)
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
}

// LoadPaths reads every file (or every file under a directory) in paths,
// one word per line, and (re)builds the index. Missing paths are skipped
// with a warning rather than failing the load.
func (idx *Index) LoadPaths(paths []string) error {
	var words []string
	for _, p := range paths {
		files, err := expandPath(p)
		if err != nil {
			idx.logger.WithError(err).WithField("path", p).Warn("wordlist: skipping unreadable path")
			continue
		}
		for _, f := range files {
			ws, err := readWords(f)
			if err != nil {
				idx.logger.WithError(err).WithField("file", f).Warn("wordlist: skipping unreadable file")
				continue
			}
			words = append(words, ws...)
		}
	}
	idx.paths = paths
	idx.rebuild(words)
	return nil
}

func expandPath(p string) ([]string, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{p}, nil
	}
	var files []string
	entries, err := os.ReadDir(p)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, filepath.Join(p, e.Name()))
	}
	return files, nil
}

func readWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		w := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		words = append(words, w)
	}
	return words, scanner.Err()
}

func (idx *Index) rebuild(words []string) {
	bloom := newBloomFilter(len(words)+1, idx.falsePositiveRateOrDefault())
	dict := make([][]byte, 0, len(words))
	for _, w := range words {
		bloom.add(w)
		dict = append(dict, []byte(w))
	}
	var matcher *ahocorasick.Matcher
	if len(dict) > 0 {
		matcher = ahocorasick.NewMatcher(dict)
	} else {
		matcher = ahocorasick.NewMatcher([][]byte{[]byte("\x00unused")})
	}

	idx.mu.Lock()
	idx.bloom = bloom
	idx.matcher = matcher
	idx.words = words
	idx.mu.Unlock()
}

func (idx *Index) falsePositiveRateOrDefault() float64 {
	if idx.falsePositiveRate <= 0 {
		return 0.01
	}
	return idx.falsePositiveRate
}

// Watch starts an fsnotify watcher on every configured path, reloading
// the index whenever a watched file changes. Watch is a no-op on an index
// with no paths loaded yet; call LoadPaths first.
func (idx *Index) Watch() error {
	if len(idx.paths) == 0 {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	idx.watcher = w
	for _, p := range idx.paths {
		if err := w.Add(p); err != nil {
			idx.logger.WithError(err).WithField("path", p).Warn("wordlist: failed to watch path")
		}
	}
	go idx.watchLoop()
	return nil
}

func (idx *Index) watchLoop() {
	for {
		select {
		case event, ok := <-idx.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				idx.logger.WithField("file", event.Name).Info("wordlist: reloading on change")
				if err := idx.LoadPaths(idx.paths); err != nil {
					idx.logger.WithError(err).Warn("wordlist: reload failed")
				}
			}
		case err, ok := <-idx.watcher.Errors:
			if !ok {
				return
			}
			idx.logger.WithError(err).Warn("wordlist: watcher error")
		}
	}
}

// Close stops the hot-reload watcher, if any. Safe to call multiple times.
func (idx *Index) Close() error {
	if !idx.closed.CompareAndSwap(false, true) {
		return nil
	}
	if idx.watcher != nil {
		return idx.watcher.Close()
	}
	return nil
}
