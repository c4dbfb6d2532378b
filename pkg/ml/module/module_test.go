// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package module

import (
	"testing"

	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLinear struct {
	Weight *Parameter `module:"weight"`
	Bias   *Parameter `module:"bias"`
}

type testBlock struct {
	Dense  testLinear  `module:"dense"`
	Norm   *testLinear `module:"norm"`
	Hidden int         // Hyperparameter, ignored.
}

type testModel struct {
	Embed   *testLinear           `module:"embed"`
	Layers  []*testBlock          `module:"layer"`
	Heads   map[string]*Parameter `module:"heads"`
	Skipped *Parameter            `module:"-"`
	hidden  *Parameter
	Output  *testLinear `module:"output"`
}

func init() {
	Register[testLinear]()
}

func newTestModel() *testModel {
	embed := &testLinear{Weight: NewParameterOn(Meta, dtypes.Float32, 10, 4)}
	m := &testModel{
		Embed: embed,
		Layers: []*testBlock{
			{Dense: testLinear{Weight: NewParameterOn(Meta, dtypes.Float32, 4, 4), Bias: NewParameterOn(Meta, dtypes.Float32, 4)}},
			{Dense: testLinear{Weight: NewParameterOn(Meta, dtypes.Float32, 4, 4)}, Norm: &testLinear{Weight: NewParameterOn(Meta, dtypes.Float32, 4)}},
		},
		Heads: map[string]*Parameter{
			"b": NewParameterOn(Meta, dtypes.Float32, 2),
			"a": NewParameterOn(Meta, dtypes.Float32, 3),
		},
		Skipped: NewParameterOn(Meta, dtypes.Float32, 1),
		hidden:  NewParameterOn(Meta, dtypes.Float32, 1),
		Output:  &testLinear{Weight: embed.Weight},
	}
	return m
}

func TestIterParameters(t *testing.T) {
	m := newTestModel()
	var names []string
	var params []*Parameter
	for np, err := range IterParameters(m) {
		require.NoError(t, err)
		names = append(names, np.Name)
		params = append(params, np.Parameter)
	}
	want := []string{
		"embed.weight",
		"layer.0.dense.weight",
		"layer.0.dense.bias",
		"layer.1.dense.weight",
		"layer.1.norm.weight",
		"heads.a",
		"heads.b",
		"output.weight",
	}
	require.Equal(t, want, names)

	// Tied weight is yielded on both paths, with the same storage.
	assert.Same(t, params[0], params[7])
	assert.Equal(t, params[0].StorageKey(), params[7].StorageKey())
	assert.NotEqual(t, params[1].StorageKey(), params[2].StorageKey())

	// Enumeration is deterministic.
	var again []string
	for np, err := range IterParameters(m) {
		require.NoError(t, err)
		again = append(again, np.Name)
	}
	require.Equal(t, names, again)
}

func TestIterParametersInvalid(t *testing.T) {
	type byValue struct {
		W Parameter
	}
	var gotErr error
	for _, err := range IterParameters(&byValue{}) {
		gotErr = err
	}
	require.Error(t, gotErr)

	type badMap struct {
		M map[float64]*Parameter
	}
	gotErr = nil
	for _, err := range IterParameters(&badMap{M: map[float64]*Parameter{1.5: NewParameterOn(Meta, dtypes.Float32)}}) {
		gotErr = err
	}
	require.Error(t, gotErr)
}

type cyclic struct {
	W    *Parameter `module:"w"`
	Self *cyclic    `module:"self"`
}

func TestIterParametersCycle(t *testing.T) {
	c := &cyclic{W: NewParameterOn(Meta, dtypes.Float32, 2)}
	c.Self = c
	var names []string
	for np, err := range IterParameters(c) {
		require.NoError(t, err)
		names = append(names, np.Name)
	}
	require.Equal(t, []string{"w"}, names)
}

func TestSubmodule(t *testing.T) {
	m := newTestModel()

	got, found := Submodule(m, "")
	require.True(t, found)
	assert.Same(t, m, got)

	got, found = Submodule(m, "layer.1.norm")
	require.True(t, found)
	assert.Same(t, m.Layers[1].Norm, got)

	got, found = Submodule(m, "layer.0.dense")
	require.True(t, found)
	assert.IsType(t, testLinear{}, got)

	got, found = Submodule(m, "heads.a")
	require.True(t, found)
	assert.Same(t, m.Heads["a"], got)

	for _, path := range []string{"layer.0.norm", "layer.2", "layer.x", "missing", "embed.weight.more", "hidden"} {
		_, found = Submodule(m, path)
		assert.Falsef(t, found, "path %q should not resolve", path)
	}
	_, found = Submodule(nil, "embed")
	assert.False(t, found)
}

type navigated struct {
	children map[string]any
}

func (n *navigated) Submodule(name string) (any, bool) {
	c, ok := n.children[name]
	return c, ok
}

func TestSubmoduleNavigator(t *testing.T) {
	leaf := &testLinear{}
	root := &navigated{children: map[string]any{
		"inner": &navigated{children: map[string]any{"leaf": leaf}},
	}}
	got, found := Submodule(root, "inner.leaf")
	require.True(t, found)
	assert.Same(t, leaf, got)
	_, found = Submodule(root, "inner.other")
	assert.False(t, found)
}

func TestClassNameAndSourceFile(t *testing.T) {
	assert.Equal(t, "github.com/attentionmech/dex/pkg/ml/module.testLinear", ClassName(&testLinear{}))
	assert.Equal(t, "github.com/attentionmech/dex/pkg/ml/module.testLinear", ClassName(testLinear{}))

	file, err := SourceFile(&testLinear{})
	require.NoError(t, err)
	assert.Contains(t, file, "module_test.go")

	_, err = SourceFile(&testBlock{})
	require.Error(t, err)
	_, err = SourceFile(nil)
	require.Error(t, err)
}

func TestDevice(t *testing.T) {
	require.Equal(t, Host, DefaultDevice())
	p := NewParameter(dtypes.Float32, 2, 3)
	assert.True(t, p.IsMaterialized())
	assert.Len(t, p.Bytes(), 24)

	func() {
		defer UseDevice(Meta)()
		require.Equal(t, Meta, DefaultDevice())
		p = NewParameter(dtypes.BFloat16, 1024, 1024)
		assert.False(t, p.IsMaterialized())
		assert.Equal(t, Meta, p.Device())
		assert.Equal(t, 1024*1024, p.Numel())
		assert.Equal(t, "1024,1024", p.ShapeString())
	}()
	require.Equal(t, Host, DefaultDevice())

	scalar := NewParameterOn(Meta, dtypes.Float32)
	assert.Equal(t, "", scalar.ShapeString())
	assert.Equal(t, 1, scalar.Numel())

	alias := p.Alias()
	assert.NotSame(t, p, alias)
	assert.Equal(t, p.StorageKey(), alias.StorageKey())
}
