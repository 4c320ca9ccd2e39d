package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counting(name string, calls *int, result Object, params ...Param) *Function {
	return &Function{
		Name:   name,
		Module: "tests",
		Params: params,
		Body: func(rt *Runtime, args []Object) (Object, error) {
			*calls++
			return result, nil
		},
	}
}

func class(t *testing.T, name string, bases []*Class, attrs map[string]Object) *Class {
	t.Helper()
	ns := NewNamespace()
	for k, v := range attrs {
		ns.Set(k, v)
	}
	c, err := NewClass(name, "tests", bases, ns)
	require.NoError(t, err)
	return c
}

func TestC3Linearization(t *testing.T) {
	o := class(t, "O", nil, nil)
	a := class(t, "A", []*Class{o}, nil)
	b := class(t, "B", []*Class{o}, nil)
	c := class(t, "C", []*Class{o}, nil)
	d := class(t, "D", []*Class{o}, nil)
	e := class(t, "E", []*Class{o}, nil)
	k1 := class(t, "K1", []*Class{a, b, c}, nil)
	k2 := class(t, "K2", []*Class{d, b, e}, nil)
	k3 := class(t, "K3", []*Class{d, a}, nil)
	z := class(t, "Z", []*Class{k1, k2, k3}, nil)

	assert.Equal(t, []*Class{z, k1, k2, k3, d, a, b, c, e, o, ObjectClass}, z.MRO())
	assert.True(t, z.IsSubclass(e))
	assert.False(t, e.IsSubclass(z))

	_, err := NewClass("Bad", "tests", []*Class{o, a}, nil)
	assert.ErrorIs(t, err, ErrType)
}

func TestMetaclassInheritance(t *testing.T) {
	meta := class(t, "Meta", []*Class{TypeClass}, nil)
	base := class(t, "Base", nil, nil)
	base.Meta = meta
	derived := class(t, "Derived", []*Class{base}, nil)

	assert.Same(t, meta, derived.Class())
	assert.Same(t, TypeClass, IntClass.Class())
}

func TestNamespaceIsOrderedAndNilSafe(t *testing.T) {
	var nilNS *Namespace
	_, ok := nilNS.Get("x")
	assert.False(t, ok)
	assert.Zero(t, nilNS.Len())
	assert.Empty(t, nilNS.Keys())

	ns := NewNamespace()
	ns.Set("b", Int(1))
	ns.Set("a", Int(2))
	ns.Set("b", Int(3))
	assert.Equal(t, []string{"b", "a"}, ns.Keys())
	v, _ := ns.Get("b")
	assert.Equal(t, Int(3), v)
}

func TestDictKeys(t *testing.T) {
	d := NewDict()
	require.NoError(t, d.Set(Int(1), Str("int")))
	require.NoError(t, d.Set(Float(1), Str("float")))
	require.NoError(t, d.Set(Str("1"), Str("str")))
	assert.Equal(t, 2, d.Len(), "1 and 1.0 are the same key")

	v, ok, err := d.Get(Bool(true))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Str("float"), v)

	err = d.Set(NewList(), None)
	assert.ErrorIs(t, err, ErrType)
	_, _, err = d.Get(NewDict())
	assert.ErrorIs(t, err, ErrType)

	require.NoError(t, d.Set(NewTuple(Int(1), Str("x")), None))
	_, ok, err = d.Get(NewTuple(Int(1), Str("x")))
	require.NoError(t, err)
	assert.True(t, ok)

	pairs := NewDict()
	require.NoError(t, pairs.Set(NewTuple(Str("a"), Str("b")), Int(1)))
	require.NoError(t, pairs.Set(NewTuple(Str("a\x00sb")), Int(2)))
	assert.Equal(t, 2, pairs.Len(), "tuple keys with separator bytes stay distinct")
	v, ok, err = pairs.Get(NewTuple(Str("a"), Str("b")))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Int(1), v)
}

func TestModuleDefaults(t *testing.T) {
	m := NewModule("pkg", "/src/pkg.py", "Docs.")
	name, _ := m.Dict.Get("__name__")
	file, _ := m.Dict.Get("__file__")
	assert.Equal(t, Str("pkg"), name)
	assert.Equal(t, Str("/src/pkg.py"), file)

	_, hasFile := NewModule("native", "", "").Dict.Get("__file__")
	assert.False(t, hasFile)
}
