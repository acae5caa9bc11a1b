//go:build integration
// +build integration

package test

import (
	"strings"
	"testing"

	"github.com/kenneth/autocrack/internal/config"
	"github.com/kenneth/autocrack/internal/cryptoutil"
	"github.com/kenneth/autocrack/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHardwareAccelerationIntegration verifies the integration between
// config, the hardware-detection logic, and metrics reporting for the
// cache store's at-rest encryption fast path.
func TestHardwareAccelerationIntegration(t *testing.T) {
	hw := config.HardwareConfig{EnableAESNI: true, EnableARMv8AES: true}

	info := cryptoutil.AccelerationInfo(&hw)
	require.Contains(t, info, "aes_hardware_support")
	require.Contains(t, info, "architecture")
	require.Contains(t, info, "hardware_acceleration_active")
	require.Contains(t, info, "aes_ni_enabled")
	require.Contains(t, info, "armv8_aes_enabled")

	hasSupport := info["aes_hardware_support"].(bool)
	isActive := info["hardware_acceleration_active"].(bool)
	if hasSupport {
		assert.True(t, isActive, "hardware acceleration should be active when supported and enabled")
	} else {
		assert.False(t, isActive, "hardware acceleration should be inactive when not supported")
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewMetricsWithRegistry(reg)

	arch := info["architecture"].(string)
	accelType := "unknown"
	switch {
	case strings.Contains(arch, "amd64") || strings.Contains(arch, "386"):
		accelType = "aes-ni"
	case strings.Contains(arch, "arm"):
		accelType = "armv8-aes"
	case strings.Contains(arch, "s390x"):
		accelType = "s390x-aes"
	}
	m.SetHardwareAccelerationStatus(accelType, isActive)

	expected := 0.0
	if isActive {
		expected = 1.0
	}
	val := testutil.ToFloat64(m.GetHardwareAccelerationEnabledMetric().WithLabelValues(accelType))
	assert.Equal(t, expected, val)
}

// TestHardwareAccelerationConfigDisable verifies that disabling hardware
// acceleration in config is honored regardless of what the CPU supports.
func TestHardwareAccelerationConfigDisable(t *testing.T) {
	hw := config.HardwareConfig{EnableAESNI: false, EnableARMv8AES: false}

	info := cryptoutil.AccelerationInfo(&hw)
	if !info["aes_hardware_support"].(bool) {
		return
	}
	arch := info["architecture"].(string)
	if strings.Contains(arch, "amd64") || strings.Contains(arch, "arm64") {
		assert.False(t, info["hardware_acceleration_active"].(bool),
			"hardware acceleration should be inactive when disabled in config")
	}
}
