// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package module

import (
	"fmt"
	"sync/atomic"
)

// Device where parameter storage is allocated.
type Device int32

const (
	// Host allocates the parameter bytes in the Go heap.
	Host Device = iota

	// Meta allocates no bytes at all: parameters only carry their shape.
	// It is used to inspect the structure of large models without paying for their weights.
	Meta
)

// String implements fmt.Stringer.
func (d Device) String() string {
	switch d {
	case Host:
		return "host"
	case Meta:
		return "meta"
	default:
		return fmt.Sprintf("Device(%d)", int32(d))
	}
}

// defaultDevice is process-wide: parameters created with NewParameter are placed on it.
var defaultDevice atomic.Int32

// DefaultDevice returns the device new parameters are currently allocated on.
func DefaultDevice() Device {
	return Device(defaultDevice.Load())
}

// SetDefaultDevice changes the process-wide default device and returns the previous one.
//
// Prefer UseDevice, which guarantees the previous value is restored.
func SetDefaultDevice(d Device) (previous Device) {
	return Device(defaultDevice.Swap(int32(d)))
}

// UseDevice sets the default device to d and returns a function that restores the previous device.
// The usual pattern is:
//
//	defer module.UseDevice(module.Meta)()
func UseDevice(d Device) (restore func()) {
	previous := SetDefaultDevice(d)
	return func() { SetDefaultDevice(previous) }
}
