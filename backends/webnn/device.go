// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package webnn

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// DeviceType of a WebNN context.
type DeviceType int

const (
	DeviceCPU DeviceType = iota
	DeviceGPU
	DeviceNPU
)

var deviceNames = []string{"cpu", "gpu", "npu"}

// String implements fmt.Stringer.
func (d DeviceType) String() string {
	if d < 0 || int(d) >= len(deviceNames) {
		return "invalid"
	}
	return deviceNames[d]
}

// ParseDeviceType parses "cpu", "gpu" or "npu" (case-insensitive).
func ParseDeviceType(name string) (DeviceType, error) {
	for ii, deviceName := range deviceNames {
		if strings.EqualFold(name, deviceName) {
			return DeviceType(ii), nil
		}
	}
	return DeviceCPU, errors.Errorf("unknown WebNN device type %q, valid values are %q", name, deviceNames)
}

// WEBNN_DEVICE is the environment variable with the default device type to partition for.
const WEBNN_DEVICE = "WEBNN_DEVICE"

// DefaultDevice is the device used by DefaultDeviceType if WEBNN_DEVICE is not set.
var DefaultDevice = DeviceCPU

// DefaultDeviceType returns the device set in the environment variable WEBNN_DEVICE if defined,
// or DefaultDevice otherwise.
func DefaultDeviceType() (DeviceType, error) {
	if name, found := os.LookupEnv(WEBNN_DEVICE); found && name != "" {
		device, err := ParseDeviceType(name)
		if err != nil {
			return DefaultDevice, errors.WithMessagef(err, "invalid $%s", WEBNN_DEVICE)
		}
		return device, nil
	}
	return DefaultDevice, nil
}
