package arbitration

import (
	"testing"
	"time"
)

func TestRequestConfirmationFallsBackWhenNoBridgeInstalled(t *testing.T) {
	Detach()
	accept, err := RequestConfirmation("candidate", "crib", "matched", nil, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !accept {
		t.Errorf("expected humanCheckerOn=true to fall back to accept")
	}

	accept, err = RequestConfirmation("candidate", "crib", "matched", nil, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accept {
		t.Errorf("expected humanCheckerOn=false to fall back to reject")
	}
}

func TestRequestConfirmationRoundTripsThroughInstalledBridge(t *testing.T) {
	bridge := Install(1)
	defer Detach()

	done := make(chan bool, 1)
	go func() {
		accept, err := RequestConfirmation("candidate", "identify", "looks like an ipv4", nil, false)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		done <- accept
	}()

	select {
	case req := <-bridge.Requests():
		if req.Text != "candidate" {
			t.Errorf("got text %q", req.Text)
		}
		req.Respond(true)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for request on bridge")
	}

	select {
	case accept := <-done:
		if !accept {
			t.Errorf("expected accept=true from Respond(true)")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for RequestConfirmation to return")
	}
}

func TestDetachCausesFallbackPath(t *testing.T) {
	Install(1)
	Detach()
	accept, err := RequestConfirmation("candidate", "wordlist", "hit", nil, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !accept {
		t.Errorf("expected fallback accept after Detach")
	}
}

func TestRequestRespondSecondCallIsNoOp(t *testing.T) {
	req := &Request{Text: "x", responseCh: make(chan bool, 1)}
	req.Respond(true)
	req.Respond(false)
	accept := <-req.responseCh
	if !accept {
		t.Errorf("expected the first Respond call to win")
	}
	select {
	case <-req.responseCh:
		t.Fatal("second Respond should not have queued a value")
	default:
	}
}
