// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package module

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/gomlx/gomlx/pkg/core/shapes"
)

// StorageKey identifies the storage backing one or more parameters.
//
// Two parameters with the same key alias each other (tied weights). Keys are unique within the process
// lifetime but carry no meaning across runs.
type StorageKey uint64

var lastStorageKey atomic.Uint64

// storage backs a Parameter. It is shared by aliases.
type storage struct {
	key    StorageKey
	device Device
	data   []byte // nil on Meta.
}

// Parameter is a weight tensor of a model: a shape and, depending on the device, its bytes.
//
// Always use it by reference (pointer). Two fields pointing to the same *Parameter, or to parameters
// created with Alias, share storage.
type Parameter struct {
	shape   shapes.Shape
	storage *storage
}

// NewParameter creates a parameter with the given dtype and dimensions, allocated on the DefaultDevice.
func NewParameter(dtype dtypes.DType, dimensions ...int) *Parameter {
	return NewParameterOn(DefaultDevice(), dtype, dimensions...)
}

// NewParameterOn creates a parameter allocated on the given device.
func NewParameterOn(device Device, dtype dtypes.DType, dimensions ...int) *Parameter {
	shape := shapes.Make(dtype, dimensions...)
	s := &storage{
		key:    StorageKey(lastStorageKey.Add(1)),
		device: device,
	}
	if device == Host {
		s.data = make([]byte, shape.Memory())
	}
	return &Parameter{shape: shape, storage: s}
}

// Alias returns a new parameter handle sharing p's storage, as used for tied weights.
func (p *Parameter) Alias() *Parameter {
	return &Parameter{shape: p.shape.Clone(), storage: p.storage}
}

// Shape of the parameter.
func (p *Parameter) Shape() shapes.Shape { return p.shape }

// DType of the parameter.
func (p *Parameter) DType() dtypes.DType { return p.shape.DType }

// Dimensions of the parameter, in declared order. Empty for scalars.
func (p *Parameter) Dimensions() []int { return p.shape.Dimensions }

// Numel returns the number of elements of the parameter.
func (p *Parameter) Numel() int { return p.shape.Size() }

// StorageKey returns the identity of the storage backing the parameter.
func (p *Parameter) StorageKey() StorageKey { return p.storage.key }

// Device where the parameter storage lives.
func (p *Parameter) Device() Device { return p.storage.device }

// IsMaterialized returns whether the parameter has actual bytes allocated.
func (p *Parameter) IsMaterialized() bool { return p.storage.data != nil }

// Bytes returns the raw storage, or nil if the parameter is not materialized.
func (p *Parameter) Bytes() []byte { return p.storage.data }

// ShapeString returns the dimensions joined by commas, e.g. "768,3072". Scalars return "".
func (p *Parameter) ShapeString() string {
	parts := make([]string, len(p.shape.Dimensions))
	for ii, dim := range p.shape.Dimensions {
		parts[ii] = strconv.Itoa(dim)
	}
	return strings.Join(parts, ",")
}

// String implements fmt.Stringer.
func (p *Parameter) String() string {
	if p == nil {
		return "<nil>"
	}
	return fmt.Sprintf("Parameter(%s, device=%s)", p.shape, p.storage.device)
}
