// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package module

import (
	"reflect"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

var (
	muTypes     sync.RWMutex
	typeSources = make(map[reflect.Type]string)
)

// Register records the source file declaring the module type T, so SourceFile can find it later.
//
// It must be called from the file where T is declared, typically in its init function:
//
//	func init() { module.Register[Linear]() }
func Register[T any]() {
	_, file, _, ok := runtime.Caller(1)
	if !ok {
		return
	}
	RegisterSource(reflect.TypeFor[T](), file)
}

// RegisterSource associates the given type (pointer types are dereferenced) with a source file.
func RegisterSource(t reflect.Type, file string) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	muTypes.Lock()
	defer muTypes.Unlock()
	typeSources[t] = file
}

// ClassName returns the fully qualified name of the type of m, as "<package path>.<TypeName>".
// Pointers are dereferenced. Unnamed types return their Go representation.
func ClassName(m any) string {
	t := reflect.TypeOf(m)
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// SourceFile returns the absolute path of the file declaring the type of m.
// It returns an error if the type was never registered (see Register).
func SourceFile(m any) (string, error) {
	t := reflect.TypeOf(m)
	if t == nil {
		return "", errors.New("no source file for nil module")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	muTypes.RLock()
	file, found := typeSources[t]
	muTypes.RUnlock()
	if !found {
		return "", errors.Errorf("source file for type %s not registered", t)
	}
	return file, nil
}
