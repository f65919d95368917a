// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package webnn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeviceType(t *testing.T) {
	for name, want := range map[string]DeviceType{"cpu": DeviceCPU, "GPU": DeviceGPU, "Npu": DeviceNPU} {
		got, err := ParseDeviceType(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, deviceNames[want], got.String())
	}
	_, err := ParseDeviceType("tpu")
	require.Error(t, err)
	assert.Equal(t, "invalid", DeviceType(7).String())
}

func TestDefaultDeviceType(t *testing.T) {
	t.Setenv(WEBNN_DEVICE, "")
	device, err := DefaultDeviceType()
	require.NoError(t, err)
	assert.Equal(t, DefaultDevice, device)

	t.Setenv(WEBNN_DEVICE, "npu")
	device, err = DefaultDeviceType()
	require.NoError(t, err)
	assert.Equal(t, DeviceNPU, device)

	t.Setenv(WEBNN_DEVICE, "quantum")
	_, err = DefaultDeviceType()
	require.ErrorContains(t, err, WEBNN_DEVICE)
}
