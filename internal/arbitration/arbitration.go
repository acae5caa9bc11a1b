// Package arbitration implements the Human-Arbitration Bridge: channel
// plumbing that lets an interactive frontend approve or reject a
// candidate plaintext without the checker pipeline blocking on stdin.
//
// Global state mirrors original_source/src/tui/human_checker_bridge.rs:
// a mutex-guarded, replaceable channel pair rather than a once-initialized
// singleton, so a bridge can be re-installed across repeated runs within
// the same process (tests, repeated TUI queries).
package arbitration

import (
	"errors"
	"sync"
	"time"

	"github.com/kenneth/autocrack/internal/timer"
)

// ErrDetached is returned by RequestConfirmation when the installed
// bridge's request channel is full, or when the bridge is detached or
// replaced while a request waits for its reply. With no bridge installed
// at all, RequestConfirmation falls back without an error.
var ErrDetached = errors.New("arbitration: no frontend attached")

// Request is a confirmation request sent from the checker pipeline to the
// attached frontend.
type Request struct {
	// Text is the candidate plaintext awaiting confirmation.
	Text string
	// CheckerName identifies the checker layer that flagged Text.
	CheckerName string
	// Description is the checker's human-readable rationale.
	Description string

	responseCh chan bool
}

// Respond replies to the request; exactly one call should be made. A
// second call is a no-op.
func (r *Request) Respond(accept bool) {
	select {
	case r.responseCh <- accept:
	default:
	}
}

// Bridge is the installed request/reply channel pair.
type Bridge struct {
	requests chan *Request
}

var (
	mu      sync.Mutex
	current *Bridge
)

// Install creates (or replaces) the bridge's request channel with the
// given capacity, returning the new Bridge. Re-installing silently
// orphans any requests already in flight on the prior channel; a call
// still waiting for a reply from the prior bridge returns ErrDetached.
func Install(capacity int) *Bridge {
	mu.Lock()
	defer mu.Unlock()
	if capacity <= 0 {
		capacity = 1
	}
	b := &Bridge{requests: make(chan *Request, capacity)}
	current = b
	return b
}

// Detach removes the installed bridge. Subsequent RequestConfirmation
// calls fall through to the no-frontend path.
func Detach() {
	mu.Lock()
	defer mu.Unlock()
	current = nil
}

func installed() *Bridge {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// Requests returns the channel a frontend should range over to receive
// confirmation requests. Returns nil if no bridge is installed.
func (b *Bridge) Requests() <-chan *Request {
	if b == nil {
		return nil
	}
	return b.requests
}

// RequestConfirmation sends a confirmation request to the installed
// bridge and blocks until a reply arrives or the bridge is detached. The
// search timer, if non-nil, is paused for the duration of the wait.
//
// When no bridge is installed, humanCheckerOn selects the fallback:
// true means unconditional accept, false means unconditional reject
// (stdin prompting is a frontend concern, out of scope for the core).
func RequestConfirmation(text, checkerName, description string, t *timer.Timer, humanCheckerOn bool) (bool, error) {
	b := installed()
	if b == nil {
		return humanCheckerOn, nil
	}

	req := &Request{
		Text:        text,
		CheckerName: checkerName,
		Description: description,
		responseCh:  make(chan bool, 1),
	}

	if t != nil {
		t.Pause()
		defer t.Resume()
	}

	select {
	case b.requests <- req:
	default:
		// Request channel is full or was replaced/closed concurrently;
		// treat as detached rather than blocking indefinitely.
		return false, ErrDetached
	}

	// Wait for the reply, giving up once this bridge has been detached or
	// replaced by a later Install.
	for {
		select {
		case accept := <-req.responseCh:
			return accept, nil
		case <-time.After(50 * time.Millisecond):
			if installed() != b {
				return false, ErrDetached
			}
		}
	}
}
