// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package module

import (
	"reflect"
	"strconv"
	"strings"
)

// Navigator can be implemented by modules that resolve their own children, instead of relying on
// the reflection based navigation over struct fields, slices and maps.
type Navigator interface {
	// Submodule returns the direct child with the given name (one path segment), and whether it exists.
	Submodule(name string) (any, bool)
}

// Submodule resolves the submodule at the dotted path, starting from root.
// An empty path returns root itself.
//
// Each segment is looked up as a link from the current module: a Navigator is asked directly; otherwise
// the segment is matched against struct fields (by their `module` tag or name), slice/array indices, or map keys.
//
// It returns (nil, false) if any segment cannot be resolved or leads to a nil value. It never modifies the model.
func Submodule(root any, path string) (any, bool) {
	current := root
	if current == nil {
		return nil, false
	}
	if path == "" {
		return current, true
	}
	for _, segment := range strings.Split(path, Separator) {
		next, found := child(current, segment)
		if !found {
			return nil, false
		}
		current = next
	}
	return current, true
}

// child resolves one path segment from m.
func child(m any, segment string) (any, bool) {
	if nav, ok := m.(Navigator); ok {
		next, found := nav.Submodule(segment)
		if !found || isNil(next) {
			return nil, false
		}
		return next, true
	}

	v := reflect.ValueOf(m)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	var next reflect.Value
	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for fieldIdx := range t.NumField() {
			if fieldSegment(t.Field(fieldIdx)) == segment {
				next = v.Field(fieldIdx)
				break
			}
		}
	case reflect.Slice, reflect.Array:
		index, err := strconv.Atoi(segment)
		if err != nil || index < 0 || index >= v.Len() {
			return nil, false
		}
		next = v.Index(index)
	case reflect.Map:
		for _, k := range v.MapKeys() {
			if keySegment, ok := mapKeySegment(k); ok && keySegment == segment {
				next = v.MapIndex(k)
				break
			}
		}
	}
	if !next.IsValid() || !next.CanInterface() {
		return nil, false
	}
	result := next.Interface()
	if isNil(result) {
		return nil, false
	}
	return result, true
}

// isNil also catches typed nil pointers, maps and slices held in an interface.
func isNil(m any) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
