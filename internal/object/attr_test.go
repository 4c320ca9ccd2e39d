package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupStaticDoesNotRunHandlers(t *testing.T) {
	rt := New(DefaultVersion)
	calls := 0
	prop := &Property{Get: counting("value", &calls, Int(7), Param{Name: "self"})}
	c := class(t, "Box", nil, map[string]Object{"value": prop})
	inst := NewInstance(c)
	inst.Dict.Set("value", Int(0))

	attr, isDesc, err := LookupStatic(inst, "value")
	require.NoError(t, err)
	assert.Same(t, prop, attr, "data descriptors win over instance storage")
	assert.True(t, isDesc)
	assert.Zero(t, calls)

	v, err := GetAttr(rt, inst, "value")
	require.NoError(t, err)
	assert.Equal(t, Int(7), v)
	assert.Equal(t, 1, calls)
}

func TestLookupStaticInstanceShadowsMethods(t *testing.T) {
	calls := 0
	method := counting("m", &calls, None, Param{Name: "self"})
	c := class(t, "Box", nil, map[string]Object{"m": method})
	inst := NewInstance(c)

	attr, isDesc, err := LookupStatic(inst, "m")
	require.NoError(t, err)
	assert.Same(t, method, attr)
	assert.True(t, isDesc)

	inst.Dict.Set("m", Int(1))
	attr, isDesc, err = LookupStatic(inst, "m")
	require.NoError(t, err)
	assert.Equal(t, Int(1), attr)
	assert.False(t, isDesc)
}

func TestLookupStaticIgnoresGetattrHook(t *testing.T) {
	rt := New(DefaultVersion)
	calls := 0
	c := class(t, "Dyn", nil, map[string]Object{
		"__getattr__": counting("__getattr__", &calls, Str("dynamic"), Param{Name: "self"}, Param{Name: "name"}),
	})
	inst := NewInstance(c)

	_, _, err := LookupStatic(inst, "anything")
	assert.ErrorIs(t, err, ErrAttribute)
	assert.Zero(t, calls)

	v, err := GetAttr(rt, inst, "anything")
	require.NoError(t, err)
	assert.Equal(t, Str("dynamic"), v)
	assert.Equal(t, 1, calls)
}

func TestLookupStaticOnClasses(t *testing.T) {
	attr, isDesc, err := LookupStatic(StrClass, "__name__")
	require.NoError(t, err)
	assert.IsType(t, &GetSetDescriptor{}, attr, "metaclass data descriptors win")
	assert.True(t, isDesc)

	attr, isDesc, err = LookupStatic(StrClass, "replace")
	require.NoError(t, err)
	assert.IsType(t, &MethodDescriptor{}, attr)
	assert.True(t, isDesc)

	_, _, err = LookupStatic(StrClass, "nope")
	assert.ErrorIs(t, err, ErrAttribute)
}

func TestSetOnlyDescriptorIsShadowedByStorage(t *testing.T) {
	rt := New(DefaultVersion)
	setter := class(t, "SetOnly", nil, map[string]Object{
		"__set__": counting("__set__", new(int), None, Param{Name: "self"}, Param{Name: "obj"}, Param{Name: "value"}),
	})
	gets := 0
	full := class(t, "Full", nil, map[string]Object{
		"__get__": counting("__get__", &gets, Str("managed"), Param{Name: "self"}, Param{Name: "obj"}, Param{Name: "owner"}),
		"__set__": counting("__set__", new(int), None, Param{Name: "self"}, Param{Name: "obj"}, Param{Name: "value"}),
	})
	c := class(t, "Holder", nil, map[string]Object{
		"loose":   NewInstance(setter),
		"managed": NewInstance(full),
	})
	inst := NewInstance(c)
	inst.Dict.Set("loose", Int(1))
	inst.Dict.Set("managed", Int(2))

	attr, isDesc, err := LookupStatic(inst, "loose")
	require.NoError(t, err)
	assert.Equal(t, Int(1), attr)
	assert.False(t, isDesc)

	v, err := GetAttr(rt, inst, "loose")
	require.NoError(t, err)
	assert.Equal(t, Int(1), v)

	attr, isDesc, err = LookupStatic(inst, "managed")
	require.NoError(t, err)
	assert.IsType(t, &Instance{}, attr, "get and set together win over storage")
	assert.True(t, isDesc)

	v, err = GetAttr(rt, inst, "managed")
	require.NoError(t, err)
	assert.Equal(t, Str("managed"), v)
	assert.Equal(t, 1, gets)
}

func TestGetAttrDescriptorKinds(t *testing.T) {
	rt := New(DefaultVersion)
	cm := counting("make", new(int), None, Param{Name: "cls"})
	sm := counting("helper", new(int), None)
	method := counting("run", new(int), None, Param{Name: "self"})
	c := class(t, "Tool", nil, map[string]Object{
		"make":   &ClassMethod{Func: cm},
		"helper": &StaticMethod{Func: sm},
		"run":    method,
	})
	inst := NewInstance(c)

	v, err := GetAttr(rt, inst, "make")
	require.NoError(t, err)
	bm, ok := v.(*BoundMethod)
	require.True(t, ok)
	assert.Same(t, c, bm.Self)

	v, err = GetAttr(rt, inst, "helper")
	require.NoError(t, err)
	assert.Same(t, sm, v)

	v, err = GetAttr(rt, inst, "run")
	require.NoError(t, err)
	bm, ok = v.(*BoundMethod)
	require.True(t, ok)
	assert.Same(t, inst, bm.Self)

	v, err = GetAttr(rt, c, "run")
	require.NoError(t, err)
	assert.Same(t, method, v, "class reads return plain functions")

	v, err = GetAttr(rt, StrClass, "__name__")
	require.NoError(t, err)
	assert.Equal(t, Str("str"), v)

	v, err = GetAttr(rt, &Slice{Start: Int(2)}, "stop")
	require.NoError(t, err)
	assert.Equal(t, None, v)

	v, err = GetAttr(rt, DictClass, "fromkeys")
	require.NoError(t, err)
	b, ok := v.(*Builtin)
	require.True(t, ok)
	assert.Same(t, DictClass, b.Self)
}

func TestDirIsSortedAndStatic(t *testing.T) {
	calls := 0
	c := class(t, "Listed", nil, map[string]Object{
		"__dir__": counting("__dir__", &calls, NewList(), Param{Name: "self"}),
		"zeta":    Int(1),
		"alpha":   Int(2),
	})
	inst := NewInstance(c)
	inst.Dict.Set("mid", Int(3))

	names := Dir(inst)
	assert.IsIncreasing(t, names)
	assert.Subset(t, names, []string{"alpha", "mid", "zeta", "__init__", "__class__"})
	assert.Zero(t, calls)

	m := NewModule("pkg", "", "")
	m.Define("x", Int(1))
	assert.Equal(t, []string{"__doc__", "__name__", "x"}, Dir(m))
}
