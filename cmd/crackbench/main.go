// Command crackbench load-tests and regression-tests a running
// autocrack deployment: it fires a corpus of known ciphertexts at a
// target QPS from a worker pool, records latency and success-rate
// statistics, and compares them against a saved baseline so a
// regression of either metric fails the run.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// sample is one corpus entry: a ciphertext and the plaintext it is
// expected to decode to.
type sample struct {
	Text     string `json:"text"`
	Expected string `json:"expected"`
}

// defaultCorpus exercises one layer of each decoder family so a
// regression in any one of them shows up in the pass rate.
var defaultCorpus = []sample{
	{Text: "aGVsbG8gdGhlcmUgZ2VuZXJhbA==", Expected: "hello there general"},
	{Text: "uryyb jbeyq", Expected: "hello world"},
	{Text: "Uryyb Jbeyq", Expected: "Hello World"},
	{Text: "192.168.1.1", Expected: "192.168.1.1"},
	{Text: "ALPHA BRAVO CHARLIE", Expected: "abc"},
}

type runResult struct {
	Requests     int64   `json:"requests"`
	Successes    int64   `json:"successes"`
	Failures     int64   `json:"failures"`
	SuccessRate  float64 `json:"success_rate"`
	P50Millis    float64 `json:"p50_ms"`
	P95Millis    float64 `json:"p95_ms"`
	P99Millis    float64 `json:"p99_ms"`
	MaxMillis    float64 `json:"max_ms"`
	DurationSecs float64 `json:"duration_s"`
}

func main() {
	var (
		serverURL   = flag.String("url", "http://localhost:8080", "autocrack server URL")
		duration    = flag.Duration("duration", 30*time.Second, "benchmark duration")
		workers     = flag.Int("workers", 4, "number of concurrent worker goroutines")
		qps         = flag.Int("qps", 10, "target requests per second, per worker")
		baselineFile = flag.String("baseline", "testdata/crackbench_baseline.json", "path to the baseline results file")
		threshold   = flag.Float64("threshold", 20.0, "regression threshold: success-rate percentage points, or percent of the baseline p99 latency")
		updateBaseline = flag.Bool("update-baseline", false, "write this run's results as the new baseline instead of comparing")
		verbose     = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	fmt.Println("=== autocrack Bench ===")
	fmt.Printf("Target: %s\n", *serverURL)
	fmt.Printf("Duration: %v, Workers: %d, QPS/worker: %d\n", *duration, *workers, *qps)

	result := run(*serverURL, *workers, *duration, *qps, logger)
	printResult(result)

	if *updateBaseline {
		if err := saveBaseline(*baselineFile, result); err != nil {
			logger.WithError(err).Fatal("crackbench: failed to write baseline")
		}
		fmt.Printf("Baseline written to %s\n", *baselineFile)
		return
	}

	baseline, err := loadBaseline(*baselineFile)
	if err != nil {
		logger.WithError(err).Warn("crackbench: no baseline found, skipping regression check")
		return
	}

	if regressed, reasons := checkRegression(baseline, result, *threshold); regressed {
		fmt.Println("FAIL: regression detected")
		for _, reason := range reasons {
			fmt.Printf("  - %s\n", reason)
		}
		os.Exit(1)
	}

	fmt.Println("PASS: no regression detected")
}

func run(serverURL string, workers int, duration time.Duration, qps int, logger *logrus.Logger) runResult {
	var (
		requests  int64
		successes int64
		failures  int64
		latencies []float64
		mu        sync.Mutex
		wg        sync.WaitGroup
	)

	client := &http.Client{Timeout: 30 * time.Second}
	deadline := time.Now().Add(duration)
	interval := time.Second / time.Duration(qps)
	if interval <= 0 {
		interval = time.Millisecond
	}

	start := time.Now()
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			i := 0
			for time.Now().Before(deadline) {
				<-ticker.C
				sample := defaultCorpus[i%len(defaultCorpus)]
				i++

				reqStart := time.Now()
				ok := fireOne(client, serverURL, sample, logger)
				elapsed := time.Since(reqStart)

				atomic.AddInt64(&requests, 1)
				if ok {
					atomic.AddInt64(&successes, 1)
				} else {
					atomic.AddInt64(&failures, 1)
				}

				mu.Lock()
				latencies = append(latencies, float64(elapsed.Microseconds())/1000.0)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	totalDuration := time.Since(start)

	sort.Float64s(latencies)
	result := runResult{
		Requests:     requests,
		Successes:    successes,
		Failures:     failures,
		DurationSecs: totalDuration.Seconds(),
	}
	if requests > 0 {
		result.SuccessRate = float64(successes) / float64(requests)
	}
	if len(latencies) > 0 {
		result.P50Millis = percentile(latencies, 0.50)
		result.P95Millis = percentile(latencies, 0.95)
		result.P99Millis = percentile(latencies, 0.99)
		result.MaxMillis = latencies[len(latencies)-1]
	}
	return result
}

func fireOne(client *http.Client, serverURL string, s sample, logger *logrus.Logger) bool {
	body, err := json.Marshal(map[string]string{"text": s.Text})
	if err != nil {
		return false
	}
	resp, err := client.Post(serverURL+"/v1/crack", "application/json", bytes.NewReader(body))
	if err != nil {
		logger.WithError(err).Debug("crackbench: request failed")
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	var decoded struct {
		Text []string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return false
	}
	for _, text := range decoded.Text {
		if text == s.Expected {
			return true
		}
	}
	return false
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func printResult(r runResult) {
	fmt.Println("--- Results ---")
	fmt.Printf("Requests:     %d (success %d, failure %d)\n", r.Requests, r.Successes, r.Failures)
	fmt.Printf("Success rate: %.1f%%\n", r.SuccessRate*100)
	fmt.Printf("Latency p50/p95/p99/max (ms): %.2f / %.2f / %.2f / %.2f\n", r.P50Millis, r.P95Millis, r.P99Millis, r.MaxMillis)
}

func loadBaseline(path string) (runResult, error) {
	var result runResult
	data, err := os.ReadFile(path)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, err
	}
	return result, nil
}

func saveBaseline(path string, result runResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// checkRegression compares current against baseline. A success-rate drop
// of more than thresholdPct percentage points, or a p99-latency increase
// of more than thresholdPct percent of the baseline p99, counts as a
// regression.
func checkRegression(baseline, current runResult, thresholdPct float64) (bool, []string) {
	var reasons []string

	successDrop := (baseline.SuccessRate - current.SuccessRate) * 100
	if successDrop > thresholdPct {
		reasons = append(reasons, fmt.Sprintf("success rate dropped %.1f%% (baseline %.1f%%, current %.1f%%)",
			successDrop, baseline.SuccessRate*100, current.SuccessRate*100))
	}

	if baseline.P99Millis > 0 {
		latencyIncrease := (current.P99Millis - baseline.P99Millis) / baseline.P99Millis * 100
		if latencyIncrease > thresholdPct {
			reasons = append(reasons, fmt.Sprintf("p99 latency increased %.1f%% (baseline %.2fms, current %.2fms)",
				latencyIncrease, baseline.P99Millis, current.P99Millis))
		}
	}

	return len(reasons) > 0, reasons
}
