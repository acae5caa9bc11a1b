package debug

import (
	"os"
	"testing"
)

func TestSetEnabledRoundTrips(t *testing.T) {
	SetEnabled(true)
	if !Enabled() {
		t.Fatal("expected Enabled() to report true after SetEnabled(true)")
	}
	SetEnabled(false)
	if Enabled() {
		t.Fatal("expected Enabled() to report false after SetEnabled(false)")
	}
}

func TestInitFromEnvReadsAutocrackDebug(t *testing.T) {
	defer os.Unsetenv("AUTOCRACK_DEBUG")
	defer os.Unsetenv("AUTOCRACK_LOG_LEVEL")

	os.Setenv("AUTOCRACK_DEBUG", "true")
	InitFromEnv()
	if !Enabled() {
		t.Fatal("expected AUTOCRACK_DEBUG=true to enable debug logging")
	}

	os.Unsetenv("AUTOCRACK_DEBUG")
	os.Setenv("AUTOCRACK_LOG_LEVEL", "debug")
	InitFromEnv()
	if !Enabled() {
		t.Fatal("expected AUTOCRACK_LOG_LEVEL=debug to enable debug logging")
	}

	os.Unsetenv("AUTOCRACK_LOG_LEVEL")
	InitFromEnv()
	if Enabled() {
		t.Fatal("expected no environment variables set to disable debug logging")
	}
}

func TestInitFromLogLevelOnlyAppliesWhenEnvUnset(t *testing.T) {
	defer os.Unsetenv("AUTOCRACK_DEBUG")
	defer os.Unsetenv("AUTOCRACK_LOG_LEVEL")
	os.Unsetenv("AUTOCRACK_DEBUG")
	os.Unsetenv("AUTOCRACK_LOG_LEVEL")

	SetEnabled(false)
	InitFromLogLevel("debug")
	if !Enabled() {
		t.Fatal("expected InitFromLogLevel(\"debug\") to enable debug logging when env is unset")
	}

	os.Setenv("AUTOCRACK_DEBUG", "true")
	SetEnabled(false)
	InitFromLogLevel("debug")
	if Enabled() {
		t.Fatal("expected InitFromLogLevel to be a no-op when AUTOCRACK_DEBUG is already set")
	}
}
