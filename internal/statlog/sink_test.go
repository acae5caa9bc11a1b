package statlog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	mu     sync.Mutex
	events []*Event
}

func (w *mockWriter) WriteEvent(event *Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, event)
	return nil
}

func (w *mockWriter) WriteBatch(events []*Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, events...)
	return nil
}

func TestBatchSink(t *testing.T) {
	mock := &mockWriter{}
	sink := NewBatchSink(mock, 5, 100*time.Millisecond, 0, 0)

	for i := 0; i < 3; i++ {
		sink.WriteEvent(&Event{DecoderName: "base64"})
	}

	time.Sleep(10 * time.Millisecond)
	mock.mu.Lock()
	assert.Len(t, mock.events, 0)
	mock.mu.Unlock()

	time.Sleep(150 * time.Millisecond)
	mock.mu.Lock()
	assert.Len(t, mock.events, 3)
	mock.mu.Unlock()

	for i := 0; i < 5; i++ {
		sink.WriteEvent(&Event{DecoderName: "caesar"})
	}

	time.Sleep(50 * time.Millisecond)
	mock.mu.Lock()
	assert.Len(t, mock.events, 8)
	mock.mu.Unlock()

	sink.Close()
}

func TestHTTPSink(t *testing.T) {
	var captured []*Event
	var mu sync.Mutex

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var events []*Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&events))
		mu.Lock()
		captured = append(captured, events...)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	sink := NewHTTPSink(ts.URL, map[string]string{"X-Test": "true"})
	require.NoError(t, sink.WriteEvent(&Event{DecoderName: "rot47"}))

	mu.Lock()
	require.Len(t, captured, 1)
	assert.Equal(t, "rot47", captured[0].DecoderName)
	mu.Unlock()
}

func TestFileSink(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "statlog-*.json")
	require.NoError(t, err)
	path := tmpfile.Name()
	tmpfile.Close()
	defer os.Remove(path)

	sink := NewFileSink(path)
	require.NoError(t, sink.WriteEvent(&Event{DecoderName: "hex"}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded Event
	require.NoError(t, json.Unmarshal(content, &loaded))
	assert.Equal(t, "hex", loaded.DecoderName)
}

func TestLoggerBoundedRing(t *testing.T) {
	logger := NewLogger(2, &StdoutSink{})
	logger.LogAttempt("run-1", "base64", 0, 1, true, time.Millisecond, nil)
	logger.LogAttempt("run-1", "hex", 1, 1, false, time.Millisecond, nil)
	logger.LogAttempt("run-1", "caesar", 1, 25, false, time.Millisecond, nil)

	events := logger.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "hex", events[0].DecoderName)
	assert.Equal(t, "caesar", events[1].DecoderName)
}
