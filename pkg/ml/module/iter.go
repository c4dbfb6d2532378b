// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package module

import (
	"cmp"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strings"

	"github.com/gomlx/gomlx/pkg/support/sets"
	"github.com/gomlx/gomlx/pkg/support/xslices"
	"github.com/pkg/errors"
)

// TagKey is the struct tag used to name a field in parameter paths: `module:"name"`.
// Use `module:"-"` to hide a field from iteration and navigation.
const TagKey = "module"

// Separator between the segments of a parameter or submodule path.
const Separator = "."

var parameterType = reflect.TypeFor[Parameter]()

// NamedParameter is a parameter within a model struct, at the dotted Name location.
type NamedParameter struct {
	Name      string
	Parameter *Parameter
}

// fieldSegment returns the path segment for the struct field, or "" if the field is not part of the model.
func fieldSegment(field reflect.StructField) string {
	if !field.IsExported() {
		return ""
	}
	tag, ok := field.Tag.Lookup(TagKey)
	if !ok {
		return field.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// mapKeySegment converts a map key to its path segment.
func mapKeySegment(k reflect.Value) (string, bool) {
	switch k.Kind() {
	case reflect.String:
		return k.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%d", k.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%d", k.Uint()), true
	default:
		return "", false
	}
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + Separator + segment
}

// IterParameters returns an iterator over the model's non-nil parameters, performing a depth first search into
// the model, in a deterministic order (always the same for the same contents).
//
// Struct fields are iterated in the order they are defined in the struct. Maps are iterated in key order.
// Slices and arrays in index order.
//
// A parameter reachable through more than one path (tied weights) is yielded once per path: it is up to the
// caller to detect aliasing, see Parameter.StorageKey. A submodule that is its own ancestor is not re-entered.
//
// Example:
//
//	type Block struct { Weight *Parameter `module:"weight"` }
//	type Net struct { Layers []*Block `module:"layer"` }
//	IterParameters(net) -> {"layer.0.weight", p0}, {"layer.1.weight", p1}
//
// It yields an error (and stops) if the model is invalid: a Parameter included by value (as opposed to
// by pointer), or maps with keys that are not strings or numbers.
func IterParameters(model any) iter.Seq2[NamedParameter, error] {
	return func(yield func(NamedParameter, error) bool) {
		ancestors := sets.Make[uintptr]()
		var iterValue func(v reflect.Value, path string) bool

		iterStruct := func(v reflect.Value, path string) bool {
			t := v.Type()
			for fieldIdx := range t.NumField() {
				segment := fieldSegment(t.Field(fieldIdx))
				if segment == "" {
					continue
				}
				if !iterValue(v.Field(fieldIdx), joinPath(path, segment)) {
					return false
				}
			}
			return true
		}

		iterSliceOrArray := func(v reflect.Value, path string) bool {
			for ii := range v.Len() {
				if !iterValue(v.Index(ii), joinPath(path, fmt.Sprintf("%d", ii))) {
					return false
				}
			}
			return true
		}

		iterMap := func(v reflect.Value, path string) bool {
			if v.IsNil() {
				return true
			}
			keys := v.MapKeys()
			segments := make([]string, len(keys))
			for ii, k := range keys {
				segment, ok := mapKeySegment(k)
				if !ok {
					yield(NamedParameter{}, errors.Errorf("map key type %v not supported at path %q", k.Type(), path))
					return false
				}
				segments[ii] = segment
			}
			indices := xslices.Iota(0, len(keys))
			slices.SortFunc(indices, func(i, j int) int { return cmp.Compare(segments[i], segments[j]) })
			for _, index := range indices {
				if !iterValue(v.MapIndex(keys[index]), joinPath(path, segments[index])) {
					return false
				}
			}
			return true
		}

		iterValue = func(v reflect.Value, path string) bool {
			switch v.Kind() {
			case reflect.Pointer:
				if v.IsNil() {
					return true
				}
				if v.Type().Elem() == parameterType {
					return yield(NamedParameter{Name: path, Parameter: v.Interface().(*Parameter)}, nil)
				}
				pointer := v.Pointer()
				if ancestors.Has(pointer) {
					return true
				}
				ancestors.Insert(pointer)
				ok := iterValue(v.Elem(), path)
				delete(ancestors, pointer)
				return ok

			case reflect.Interface:
				if v.IsNil() {
					return true
				}
				return iterValue(v.Elem(), path)

			case reflect.Struct:
				if v.Type() == parameterType {
					yield(NamedParameter{Name: path}, errors.Errorf("model has Parameter passed by value, at path %q", path))
					return false
				}
				return iterStruct(v, path)

			case reflect.Slice, reflect.Array:
				return iterSliceOrArray(v, path)

			case reflect.Map:
				return iterMap(v, path)

			default:
				return true
			}
		}

		iterValue(reflect.ValueOf(model), "")
	}
}
